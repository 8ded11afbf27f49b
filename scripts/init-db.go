package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"furniture_shop/internal/config"
	"furniture_shop/internal/database"
	"furniture_shop/internal/migrations"
	"furniture_shop/internal/redis"
)

func main() {
	fmt.Println("Initializing database...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Drop, recreate and seed
	if err := migrations.Reset(db, cfg); err != nil {
		log.Fatal("Failed to reset database:", err)
	}

	// Carts and pending logins may point at rows that no longer exist
	fmt.Println("Clearing sessions...")
	redisClient, err := redis.Initialize(cfg.RedisURL, time.Duration(cfg.SessionTimeout)*time.Second)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis, sessions not cleared: %v", err)
	} else {
		defer redisClient.Close()
		n, err := redisClient.Clear(context.Background())
		if err != nil {
			log.Printf("Warning: Failed to clear sessions: %v", err)
		} else {
			fmt.Printf("Cleared %d session(s)\n", n)
		}
	}

	fmt.Println("Admin username:", cfg.AdminUsername)
	fmt.Println("Database initialization completed successfully!")
}
