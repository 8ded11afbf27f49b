package database

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"furniture_shop/internal/config"
	"furniture_shop/internal/models"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// pq registers itself as "postgres"; pgx is what the gorm driver uses by default.
const libpqDriverName = "postgres"

func Initialize(cfg *config.Config) (*gorm.DB, error) {
	// Configure GORM
	logLevel := logger.Warn
	if cfg.GinMode == "debug" {
		logLevel = logger.Info
	}
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	}

	pgConfig := postgres.Config{DSN: cfg.DatabaseURL}
	if cfg.DatabaseDriver == libpqDriverName {
		pgConfig.DriverName = libpqDriverName
	}

	// Connect to database
	db, err := gorm.Open(postgres.New(pgConfig), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Printf("Database connected (%s driver)", cfg.DatabaseDriver)
	return db, nil
}

// Models lists every table in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// IsDuplicateKey reports whether err is a unique constraint violation, for
// either postgres driver and for sqlite.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
