package config

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Roshan11032005/nutri-backend/models"
)

var loadEnvOnce sync.Once

// LoadEnv reads .env once per process. A missing file is fine in
// production where the environment is provided externally.
func LoadEnv() {
	loadEnvOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			slog.Info("no .env file loaded, using process environment")
		}
	})
}

// InitDB opens the Postgres credential store and migrates the schema.
// The handle is returned rather than stored globally; callers inject it
// into the services that need it.
func InitDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.FoodLog{}); err != nil {
		return nil, fmt.Errorf("auto-migrate failed: %w", err)
	}
	return db, nil
}
