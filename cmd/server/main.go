package main

import (
	"log"
	"time"

	"furniture_shop/internal/config"
	"furniture_shop/internal/database"
	"furniture_shop/internal/handlers"
	"furniture_shop/internal/migrations"
	"furniture_shop/internal/redis"
	"furniture_shop/internal/repository"
	"furniture_shop/internal/services"
	"furniture_shop/internal/session"
	"furniture_shop/pkg/mailer"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// Initialize database
	db, err := database.Initialize(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := migrations.RunMigrations(db, cfg); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis session store
	sessionTTL := time.Duration(cfg.SessionTimeout) * time.Second
	redisClient, err := redis.Initialize(cfg.RedisURL, sessionTTL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	// Initialize mail sender
	var sender mailer.Sender
	if cfg.MailAPIURL == "" {
		log.Println("MAIL_API_URL not set, OTP emails will be logged instead of sent")
		sender = mailer.LogSender{}
	} else {
		sender = mailer.NewClient(cfg.MailAPIURL, cfg.MailUsername, cfg.MailPassword, cfg.MailPath, cfg.DefaultFromEmail)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	orderItemRepo := repository.NewOrderItemRepository(db)

	// Initialize services
	userService := services.NewUserService(userRepo)
	authService := services.NewAuthService(userService, userRepo, sender)
	catalogService := services.NewCatalogService(categoryRepo, productRepo, orderItemRepo)
	cartService := services.NewCartService(productRepo)
	checkoutService := services.NewCheckoutService(cartService, orderRepo, cfg.OrderCodeAttempts)
	orderService := services.NewOrderService(orderRepo)

	// Initialize handlers
	shopHandler := handlers.NewShopHandler(catalogService, cartService, checkoutService, orderService)
	authHandler := handlers.NewAuthHandler(userService, authService)
	adminHandler := handlers.NewAdminHandler(orderService, catalogService)

	// Setup routes
	router := gin.Default()
	router.Use(session.Middleware(redisClient, session.NewCodec(cfg.JWTSecret, sessionTTL), sessionTTL))
	handlers.RegisterRoutes(router, shopHandler, authHandler, adminHandler, authService)

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
