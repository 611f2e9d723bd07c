package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"minimart/internal/config"
	"minimart/internal/db"
	"minimart/internal/model"
	"minimart/internal/repository"
)

var demoProducts = []model.Product{
	{Name: "widget", Reference: "WDG-001", Price: decimal.RequireFromString("10.00"), Quantity: 5},
	{Name: "gadget", Reference: "GDG-001", Price: decimal.RequireFromString("24.50"), Quantity: 12},
	{Name: "doohickey", Reference: "DHK-001", Price: decimal.RequireFromString("3.75"), Quantity: 40},
}

func main() {
	log.Println("Starting seed script...")

	_ = godotenv.Load()
	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Token{}, &model.Product{}, &model.Purchase{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()

	if err := seedAdmin(ctx, repository.NewUserRepository(gormDB)); err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}

	created, updated, err := seedProducts(ctx, repository.NewProductRepository(gormDB))
	if err != nil {
		log.Fatalf("Failed to seed products: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New products created: %d", created)
	log.Printf("  - Existing products updated: %d", updated)
}

// seedAdmin creates the initial admin account if it does not exist yet.
func seedAdmin(ctx context.Context, repo repository.UserRepository) error {
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@minimart.local"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	if _, err := repo.FindByEmail(ctx, email); err == nil {
		log.Printf("Admin %s already present, skipping", email)
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check admin: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	admin := &model.User{
		FirstName:    "Admin",
		Email:        email,
		PasswordHash: string(hashed),
		Role:         model.RoleAdmin,
		Verified:     true,
	}
	if err := repo.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Printf("Created admin %s", email)
	return nil
}

// seedProducts inserts the demo catalog, updating price and stock for
// products that already exist.
func seedProducts(ctx context.Context, repo repository.ProductRepository) (created int, updated int, err error) {
	for _, product := range demoProducts {
		existing, err := repo.FindByName(ctx, product.Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, updated, fmt.Errorf("error checking product %s: %w", product.Name, err)
		}

		if existing != nil {
			existing.Reference = product.Reference
			existing.Price = product.Price
			existing.Quantity = product.Quantity
			if err := repo.Save(ctx, existing); err != nil {
				return created, updated, fmt.Errorf("error updating product %s: %w", product.Name, err)
			}
			updated++
		} else {
			p := product
			if err := repo.Create(ctx, &p); err != nil {
				return created, updated, fmt.Errorf("error creating product %s: %w", product.Name, err)
			}
			created++
		}
	}

	return created, updated, nil
}
