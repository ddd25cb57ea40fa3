package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schemaSQL string

// Sentinel errors callers can match with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("duplicate")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Store struct {
	db *sqlx.DB
}

// NewStore connects to Postgres and verifies the connection.
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// Migrate applies the embedded schema. Statements are idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// --- categories ---

// CreateCategory inserts a category and fills in generated fields.
func (s *Store) CreateCategory(ctx context.Context, cat *models.Category) error {
	cat.ID = uuid.New().String()
	query := `
		INSERT INTO categories (id, name, description)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query, cat.ID, cat.Name, cat.Description).
		Scan(&cat.CreatedAt, &cat.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("category %q: %w", cat.Name, ErrDuplicate)
	}
	return err
}

// GetCategories retrieves all categories ordered by name.
func (s *Store) GetCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	err := s.db.SelectContext(ctx, &cats, "SELECT * FROM categories ORDER BY name")
	return cats, err
}

// GetCategoryByID retrieves a single category.
func (s *Store) GetCategoryByID(ctx context.Context, id string) (*models.Category, error) {
	var cat models.Category
	err := s.db.GetContext(ctx, &cat, "SELECT * FROM categories WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// --- products ---

// ProductFilter narrows GetProducts. Zero values mean "no constraint".
type ProductFilter struct {
	CategoryID string
	Featured   bool
	Search     string
}

// CreateProduct inserts a product and fills in generated fields.
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	p.ID = uuid.New().String()
	query := `
		INSERT INTO products (id, name, description, price, stock, featured, image, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	return s.db.QueryRowxContext(ctx, query,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.Featured, p.Image, p.CategoryID).
		Scan(&p.CreatedAt, &p.UpdatedAt)
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProducts retrieves products matching the filter, newest first.
func (s *Store) GetProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := "SELECT * FROM products"
	var conds []string
	var args []interface{}

	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		conds = append(conds, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if filter.Featured {
		conds = append(conds, "featured = TRUE")
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	var products []models.Product
	err := s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// GetProductsByIDs retrieves multiple products by IDs
func (s *Store) GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM products WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var products []models.Product
	err = s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// UpdateProduct overwrites the mutable product fields.
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, stock = $4,
		    featured = $5, image = $6, category_id = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		p.Name, p.Description, p.Price, p.Stock, p.Featured, p.Image, p.CategoryID, p.ID).
		Scan(&p.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("product %s: %w", p.ID, ErrNotFound)
	}
	return err
}

// DeleteProduct removes a product.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return nil
}

// AttachCategories loads and attaches the category of each product.
func (s *Store) AttachCategories(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}

	idSet := make(map[string]struct{})
	for _, p := range products {
		idSet[p.CategoryID] = struct{}{}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	query, args, err := sqlx.In("SELECT * FROM categories WHERE id IN (?)", ids)
	if err != nil {
		return err
	}
	query = s.db.Rebind(query)

	var cats []models.Category
	if err := s.db.SelectContext(ctx, &cats, query, args...); err != nil {
		return err
	}

	byID := make(map[string]*models.Category, len(cats))
	for i := range cats {
		byID[cats[i].ID] = &cats[i]
	}
	for i := range products {
		products[i].Category = byID[products[i].CategoryID]
	}
	return nil
}

// --- users ---

// CreateUser inserts a user and fills in generated fields.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.ID = uuid.New().String()
	query := `
		INSERT INTO users (id, email, password_hash, name, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := s.db.QueryRowxContext(ctx, query,
		u.ID, u.Email, u.PasswordHash, u.Name, u.IsAdmin).Scan(&u.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %s: %w", u.Email, ErrDuplicate)
	}
	return err
}

// GetUserByID retrieves a user by ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email. Returns (nil, nil) when absent
// so callers can branch without unwrapping.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE email = $1", email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	// 23505 unique_violation
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
