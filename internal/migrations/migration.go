package migrations

import (
	"context"
	"errors"
	"log"

	"furniture_shop/internal/config"
	"furniture_shop/internal/database"
	"furniture_shop/internal/models"
	"furniture_shop/internal/repository"
	"furniture_shop/internal/services"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// DefaultCategories are created on first start so the storefront has a menu.
var DefaultCategories = []string{
	"Chairs",
	"Tables",
	"Beds",
	"Sofas",
	"Wardrobes",
	"Office",
	"Outdoor",
	"Kids",
}

// RunMigrations migrates the schema and creates default data. It is safe to
// run on every start.
func RunMigrations(db *gorm.DB, cfg *config.Config) error {
	log.Println("Running database migrations...")

	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	if err := createDefaultData(context.Background(), db, cfg); err != nil {
		log.Printf("Warning: Failed to create default data: %v", err)
	}

	log.Println("Database migrations completed successfully!")
	return nil
}

// Reset drops every table and migrates from scratch.
func Reset(db *gorm.DB, cfg *config.Config) error {
	log.Println("Dropping existing tables...")
	tables := database.Models()
	// children first
	for i := len(tables) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(tables[i]); err != nil {
			log.Printf("Warning: Error dropping table: %v", err)
		}
	}
	return RunMigrations(db, cfg)
}

// createDefaultData creates the admin user and the default categories
func createDefaultData(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	log.Println("Creating default data...")

	userRepo := repository.NewUserRepository(db)
	userService := services.NewUserService(userRepo)
	categoryRepo := repository.NewCategoryRepository(db)

	for _, name := range DefaultCategories {
		categorySlug := slug.Make(name)
		_, err := categoryRepo.GetBySlug(ctx, categorySlug)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := categoryRepo.Create(ctx, &models.Category{Name: name, Slug: categorySlug}); err != nil {
			return err
		}
		log.Printf("Created category %s", name)
	}

	// Check if admin already exists
	if _, err := userRepo.GetByUsername(ctx, cfg.AdminUsername); err == nil {
		log.Println("Admin user already exists")
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	admin := &models.User{
		Username: cfg.AdminUsername,
		Email:    cfg.AdminEmail,
		Role:     string(models.Admin),
		IsActive: true,
	}
	if err := userService.CreateUser(ctx, admin, cfg.AdminPassword); err != nil {
		return err
	}
	log.Printf("Admin user %s created (ID: %d)", admin.Username, admin.ID)
	return nil
}
