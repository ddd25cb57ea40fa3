package service

import (
	"context"
	"fmt"

	"storefront-service/internal/catalog"
	"storefront-service/internal/models"
	"storefront-service/internal/redisclient"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// CatalogService handles category and product management.
type CatalogService struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service. redis may be nil,
// in which case product reads always hit the database.
func NewCatalogService(store *store.Store, redis *redisclient.Client) *CatalogService {
	return &CatalogService{
		store:  store,
		redis:  redis,
		logger: util.GetLogger(),
	}
}

// ListCategories returns all categories ordered by name.
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.GetCategories(ctx)
}

// CreateCategory creates a category. Name is required.
func (s *CatalogService) CreateCategory(ctx context.Context, name, description string) (*models.Category, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	cat := &models.Category{Name: name, Description: description}
	if err := s.store.CreateCategory(ctx, cat); err != nil {
		return nil, fromStore(err)
	}

	s.logger.Info("Category created", zap.String("category_id", cat.ID), zap.String("name", name))
	return cat, nil
}

// ProductInput carries the writable product fields.
type ProductInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Stock       *int   `json:"stock"`
	Featured    *bool  `json:"featured"`
	Image       string `json:"image"`
	CategoryID  string `json:"category_id"`
}

// ListProducts returns products matching the filter, newest first, then
// applies the requested sort order.
func (s *CatalogService) ListProducts(ctx context.Context, filter store.ProductFilter, sortBy string) ([]models.Product, error) {
	products, err := s.store.GetProducts(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := s.store.AttachCategories(ctx, products); err != nil {
		return nil, err
	}
	if sortBy != "" {
		products = catalog.Apply(products, catalog.Filter{SortBy: sortBy})
	}
	return products, nil
}

// GetProduct returns a product, read through the cache when available.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetProduct")
	defer span.End()

	if s.redis != nil {
		cached, err := s.redis.GetCachedProduct(ctx, id)
		if err != nil {
			s.logger.Warn("Product cache read failed, falling back to DB",
				zap.String("product_id", id), zap.Error(err))
		} else if cached != nil {
			util.ProductCacheRequestsTotal.WithLabelValues("hit").Inc()
			return cached, nil
		} else {
			util.ProductCacheRequestsTotal.WithLabelValues("miss").Inc()
		}
	}

	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, fromStore(err)
	}

	if cat, err := s.store.GetCategoryByID(ctx, product.CategoryID); err == nil {
		product.Category = cat
	}

	if s.redis != nil {
		if err := s.redis.CacheProduct(ctx, product); err != nil {
			s.logger.Warn("Failed to cache product", zap.String("product_id", id), zap.Error(err))
		}
	}
	return product, nil
}

// CreateProduct validates the input and creates a product. Name, price
// and category are required; the category must exist.
func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if in.Name == "" || in.Price == "" || in.CategoryID == "" {
		return nil, fmt.Errorf("%w: name, price and category_id are required", ErrValidation)
	}

	price, err := parsePrice(in.Price)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetCategoryByID(ctx, in.CategoryID); err != nil {
		return nil, fromStore(err)
	}

	product := &models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       price,
		Image:       in.Image,
		CategoryID:  in.CategoryID,
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, fmt.Errorf("%w: stock must not be negative", ErrValidation)
		}
		product.Stock = *in.Stock
	}
	if in.Featured != nil {
		product.Featured = *in.Featured
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, fromStore(err)
	}

	s.logger.Info("Product created", zap.String("product_id", product.ID), zap.String("name", product.Name))
	return product, nil
}

// UpdateProduct applies the non-empty fields of the input to an existing
// product and invalidates its cache entry.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, fromStore(err)
	}

	if in.Name != "" {
		product.Name = in.Name
	}
	if in.Description != "" {
		product.Description = in.Description
	}
	if in.Price != "" {
		price, err := parsePrice(in.Price)
		if err != nil {
			return nil, err
		}
		product.Price = price
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, fmt.Errorf("%w: stock must not be negative", ErrValidation)
		}
		product.Stock = *in.Stock
	}
	if in.Featured != nil {
		product.Featured = *in.Featured
	}
	if in.Image != "" {
		product.Image = in.Image
	}
	if in.CategoryID != "" {
		if _, err := s.store.GetCategoryByID(ctx, in.CategoryID); err != nil {
			return nil, fromStore(err)
		}
		product.CategoryID = in.CategoryID
	}

	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, fromStore(err)
	}
	s.invalidate(ctx, id)
	return product, nil
}

// DeleteProduct removes a product and its cache entry.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return fromStore(err)
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context, productID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.InvalidateProduct(ctx, productID); err != nil {
		s.logger.Warn("Failed to invalidate product cache",
			zap.String("product_id", productID), zap.Error(err))
	}
}
