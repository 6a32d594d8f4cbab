package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/getter-shop/getter-backend/config"
	"github.com/getter-shop/getter-backend/internal/app/controller"
	"github.com/getter-shop/getter-backend/internal/app/repository"
	"github.com/getter-shop/getter-backend/internal/app/service"
	"github.com/getter-shop/getter-backend/internal/db"
	"github.com/getter-shop/getter-backend/internal/middleware"
	"github.com/getter-shop/getter-backend/internal/router"
	"github.com/getter-shop/getter-backend/internal/scheduler"
	"github.com/getter-shop/getter-backend/internal/storage"
	"github.com/getter-shop/getter-backend/pkg/logger"
	"github.com/getter-shop/getter-backend/pkg/mailer"
	"github.com/getter-shop/getter-backend/pkg/redis"
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

	logger.Info("Starting Getter Backend Server", map[string]interface{}{
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

	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, continuing without cache", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer func() {
				if err := redis.Close(); err != nil {
					logger.Error("Failed to close Redis connection", err)
				}
			}()
		}
	}

	var ratingCache *redis.RatingCache
	if redis.GetClient() != nil {
		ratingCache = redis.NewRatingCache(redis.GetClient(), cfg.Maintenance.RatingCacheTTL)
	}

	var mail mailer.Mailer
	if cfg.SMTP.Host != "" {
		mail = mailer.NewSMTPMailer(mailer.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	} else {
		mail = mailer.NewNoopMailer()
	}

	// Repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	reviewRepo := repository.NewReviewRepository(db.GetDB())
	wishlistRepo := repository.NewWishlistRepository(db.GetDB())

	// Services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	categoryService := service.NewCategoryService(categoryRepo)
	productService := service.NewProductService(productRepo, categoryRepo, ratingCache)
	cartService := service.NewCartService(orderRepo, productRepo)
	orderService := service.NewOrderService(orderRepo, cartService, mail, cfg.Checkout, db.GetDB())
	reviewService := service.NewReviewService(reviewRepo, orderRepo, productRepo)
	wishlistService := service.NewWishlistService(wishlistRepo, productRepo)
	maintenanceService := service.NewMaintenanceService(productRepo, orderRepo, reviewRepo, ratingCache, cfg.Maintenance)
	accountService := service.NewAccountService(userRepo, mail, cfg.Maintenance)
	reportService := service.NewReportService(orderRepo, userRepo, cfg.Maintenance)

	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Scheduler
	maintenanceScheduler := scheduler.NewMaintenanceScheduler(
		maintenanceService,
		accountService,
		reportService,
		cfg.Maintenance,
	)
	if err := maintenanceScheduler.Start(); err != nil {
		logger.Fatal("Failed to start maintenance scheduler", err)
	}
	defer maintenanceScheduler.Stop()

	// Controllers
	authController := controller.NewAuthController(authService)
	categoryController := controller.NewCategoryController(categoryService)
	productController := controller.NewProductController(productService)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService)
	reviewController := controller.NewReviewController(reviewService)
	wishlistController := controller.NewWishlistController(wishlistService)
	uploadController := controller.NewUploadController(s3Storage)
	taskController := controller.NewTaskController(maintenanceScheduler)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	r := router.NewRouter(
		authController,
		categoryController,
		productController,
		cartController,
		orderController,
		reviewController,
		wishlistController,
		uploadController,
		taskController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

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
