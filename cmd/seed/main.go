// Command seed applies the schema and loads a demo catalog with an
// admin and a customer account.
package main

import (
	"context"
	"log"

	"storefront-service/config"
	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type seedProduct struct {
	name        string
	description string
	price       string
	stock       int
	featured    bool
	image       string
	category    string
}

var seedCategories = []models.Category{
	{Name: "Electronics", Description: "Electronics and technology"},
	{Name: "Clothing", Description: "Apparel and accessories"},
	{Name: "Home & Garden", Description: "Products for home and garden"},
	{Name: "Sports", Description: "Sporting and fitness goods"},
}

var seedProducts = []seedProduct{
	{"Samsung Galaxy Smartphone", "6.5 inch display, 128GB storage, triple camera", "1299.99", 50, true, "/images/smartphone.jpg", "Electronics"},
	{"Dell Inspiron Notebook", "Intel i5, 8GB RAM, 256GB SSD", "2499.99", 25, true, "/images/notebook.jpg", "Electronics"},
	{"Bluetooth Headphones", "Wireless over-ear headphones with noise cancelling", "349.90", 80, false, "/images/headphones.jpg", "Electronics"},
	{"Polo Shirt", "Classic cotton polo shirt, several colors", "89.99", 100, false, "/images/polo.jpg", "Clothing"},
	{"Running Jacket", "Lightweight water-resistant running jacket", "199.90", 60, false, "/images/jacket.jpg", "Clothing"},
	{"Garden Tool Set", "Six-piece stainless steel garden tool set", "129.50", 40, false, "/images/garden-tools.jpg", "Home & Garden"},
	{"LED Desk Lamp", "Dimmable desk lamp with USB charging port", "79.90", 70, true, "/images/lamp.jpg", "Home & Garden"},
	{"Yoga Mat", "Non-slip 6mm yoga mat", "59.90", 120, false, "/images/yoga-mat.jpg", "Sports"},
	{"Dumbbell Set", "Adjustable dumbbell set, 2x10kg", "299.00", 30, true, "/images/dumbbells.jpg", "Sports"},
}

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	categoryIDs := make(map[string]string, len(seedCategories))
	for i := range seedCategories {
		cat := seedCategories[i]
		if err := db.CreateCategory(ctx, &cat); err != nil {
			log.Fatalf("Failed to seed category %q: %v", cat.Name, err)
		}
		categoryIDs[cat.Name] = cat.ID
	}

	for _, sp := range seedProducts {
		price, err := decimal.NewFromString(sp.price)
		if err != nil {
			log.Fatalf("Bad seed price %q: %v", sp.price, err)
		}
		product := &models.Product{
			Name:        sp.name,
			Description: sp.description,
			Price:       price,
			Stock:       sp.stock,
			Featured:    sp.featured,
			Image:       sp.image,
			CategoryID:  categoryIDs[sp.category],
		}
		if err := db.CreateProduct(ctx, product); err != nil {
			log.Fatalf("Failed to seed product %q: %v", sp.name, err)
		}
	}

	users := []struct {
		email    string
		password string
		name     string
		isAdmin  bool
	}{
		{"admin@store.test", "admin123", "Administrator", true},
		{"customer@store.test", "customer123", "Demo Customer", false},
	}

	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Failed to hash seed password: %v", err)
		}
		user := &models.User{
			Email:        u.email,
			PasswordHash: string(hash),
			Name:         u.name,
			IsAdmin:      u.isAdmin,
		}
		if err := db.CreateUser(ctx, user); err != nil {
			log.Fatalf("Failed to seed user %q: %v", u.email, err)
		}
	}

	log.Printf("Seeded %d categories, %d products, %d users",
		len(seedCategories), len(seedProducts), len(users))
}
