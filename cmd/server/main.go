package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/storely/storely-backend/config"
	"github.com/storely/storely-backend/internal/app/controller"
	"github.com/storely/storely-backend/internal/app/repository"
	"github.com/storely/storely-backend/internal/app/service"
	"github.com/storely/storely-backend/internal/db"
	"github.com/storely/storely-backend/internal/middleware"
	"github.com/storely/storely-backend/internal/router"
	"github.com/storely/storely-backend/internal/scheduler"
	"github.com/storely/storely-backend/internal/storage"
	"github.com/storely/storely-backend/pkg/logger"
	"github.com/storely/storely-backend/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Storely Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis backs the token blacklist; the server runs without it
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, token revocation disabled", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer redis.Close()

	// Repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	brandRepo := repository.NewBrandRepository(db.GetDB())
	supplierRepo := repository.NewSupplierRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	favoriteRepo := repository.NewFavoriteRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	invoiceRepo := repository.NewInvoiceRepository(db.GetDB())
	reviewRepo := repository.NewReviewRepository(db.GetDB())

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWT, cfg.Lockout)
	productService := service.NewProductService(productRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	brandService := service.NewBrandService(brandRepo)
	supplierService := service.NewSupplierService(supplierRepo)
	cartService := service.NewCartService(cartRepo, productRepo)
	favoriteService := service.NewFavoriteService(favoriteRepo, productRepo)
	orderService := service.NewOrderService(orderRepo, db.GetDB())
	invoiceService := service.NewInvoiceService(invoiceRepo, supplierRepo, db.GetDB())
	reviewService := service.NewReviewService(reviewRepo, productRepo, db.GetDB())

	// Storage
	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Controllers
	authController := controller.NewAuthController(authService)
	productController := controller.NewProductController(productService)
	categoryController := controller.NewCategoryController(categoryService)
	brandController := controller.NewBrandController(brandService)
	supplierController := controller.NewSupplierController(supplierService)
	cartController := controller.NewCartController(cartService)
	favoriteController := controller.NewFavoriteController(favoriteService)
	orderController := controller.NewOrderController(orderService)
	invoiceController := controller.NewInvoiceController(invoiceService)
	reviewController := controller.NewReviewController(reviewService)
	uploadController := controller.NewUploadController(s3Storage)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	r := router.NewRouter(
		authController,
		productController,
		categoryController,
		brandController,
		supplierController,
		cartController,
		favoriteController,
		orderController,
		invoiceController,
		reviewController,
		uploadController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	ratingScheduler := scheduler.NewRatingScheduler(reviewService)
	if err := ratingScheduler.Start(); err != nil {
		logger.Error("Failed to start rating scheduler", err)
	}
	defer ratingScheduler.Stop()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
