// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the admin user (admin@example.com) already exists.
package main

import (
	"context"
	"log"
	"os"
	"time"

	categorydomain "ecommerce-platform/backend/internal/category/domain"
	categoryrepo "ecommerce-platform/backend/internal/category/repository"
	"ecommerce-platform/backend/internal/config"
	"ecommerce-platform/backend/internal/db"
	"ecommerce-platform/backend/internal/platform/rbac"
	productdomain "ecommerce-platform/backend/internal/product/domain"
	productrepo "ecommerce-platform/backend/internal/product/repository"
	"ecommerce-platform/backend/internal/security"
	userdomain "ecommerce-platform/backend/internal/user/domain"
	userrepo "ecommerce-platform/backend/internal/user/repository"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "password123"
	adminID       = "seed-admin-001"
	customerID    = "seed-user-001"
	customerEmail = "customer@example.com"
	categoryID    = "seed-category-001"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(conn)
	categories := categoryrepo.NewPostgresRepository(conn)
	products := productrepo.NewPostgresRepository(conn)

	existing, err := users.GetByEmail(ctx, adminEmail)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (admin@example.com exists). Skipping.")
		os.Exit(0)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	passwordHash, err := hasher.Hash([]byte(adminPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()

	admin := &userdomain.User{
		ID:                    adminID,
		Username:              "admin",
		Email:                 adminEmail,
		PasswordHash:          passwordHash,
		FirstName:             "Admin",
		LastName:              "User",
		Enabled:               true,
		AccountNonExpired:     true,
		AccountNonLocked:      true,
		CredentialsNonExpired: true,
		EmailVerified:         true,
		Status:                userdomain.StatusActive,
		Roles:                 []rbac.Role{rbac.RoleAdmin, rbac.RoleUser},
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Fatalf("create admin user: %v", err)
	}

	customer := &userdomain.User{
		ID:                    customerID,
		Username:              "customer",
		Email:                 customerEmail,
		PasswordHash:          passwordHash,
		FirstName:             "Sample",
		LastName:              "Customer",
		Enabled:               true,
		AccountNonExpired:     true,
		AccountNonLocked:      true,
		CredentialsNonExpired: true,
		EmailVerified:         true,
		Status:                userdomain.StatusActive,
		Roles:                 []rbac.Role{rbac.RoleUser},
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := users.Create(ctx, customer); err != nil {
		log.Fatalf("create customer user: %v", err)
	}

	category := &categorydomain.Category{
		ID:        categoryID,
		Name:      "Electronics",
		Slug:      "electronics",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := categories.Create(ctx, category); err != nil {
		log.Fatalf("create category: %v", err)
	}

	sample := []*productdomain.Product{
		{
			ID:                "seed-product-001",
			Name:              "Wireless Headphones",
			Description:       "Over-ear wireless headphones with noise cancellation.",
			SKU:               "WH-1000",
			PriceCents:        19999,
			CostCents:         9000,
			StockQuantity:     50,
			MinimumStockLevel: cfg.DefaultMinStockLevel,
			Active:            true,
			Featured:          true,
			Brand:             "Acme Audio",
			Status:            productdomain.ProductActive,
			CategoryID:        categoryID,
			CreatedAt:         now,
			UpdatedAt:         now,
		},
		{
			ID:                "seed-product-002",
			Name:              "Mechanical Keyboard",
			Description:       "Tenkeyless mechanical keyboard, brown switches.",
			SKU:               "KB-0087",
			PriceCents:        8999,
			CostCents:         4200,
			StockQuantity:     120,
			MinimumStockLevel: cfg.DefaultMinStockLevel,
			Active:            true,
			Brand:             "Acme Input",
			Status:            productdomain.ProductActive,
			CategoryID:        categoryID,
			CreatedAt:         now,
			UpdatedAt:         now,
		},
	}
	for _, p := range sample {
		if err := products.Create(ctx, p); err != nil {
			log.Fatalf("create product %s: %v", p.SKU, err)
		}
	}

	log.Println("Seed completed successfully.")
	log.Printf("Admin login: admin / %s", adminPassword)
	log.Printf("Customer login: customer / %s", adminPassword)
}
