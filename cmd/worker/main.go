package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/getter-shop/getter-backend/config"
	"github.com/getter-shop/getter-backend/internal/app/repository"
	"github.com/getter-shop/getter-backend/internal/app/service"
	"github.com/getter-shop/getter-backend/internal/db"
	"github.com/getter-shop/getter-backend/internal/scheduler"
	"github.com/getter-shop/getter-backend/pkg/logger"
	"github.com/getter-shop/getter-backend/pkg/mailer"
	"github.com/getter-shop/getter-backend/pkg/redis"
)

// Standalone maintenance worker. Runs the periodic jobs without the
// HTTP surface so the API and the job runner can scale separately.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logger.Initialize(logger.Config{
		Level:  "info",
		Format: "json",
	})

	logger.Info("Starting Getter maintenance worker", map[string]interface{}{
		"environment": cfg.Server.Environment,
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

	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, rating cache disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer redis.Close()
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

	userRepo := repository.NewUserRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	reviewRepo := repository.NewReviewRepository(db.GetDB())

	maintenanceService := service.NewMaintenanceService(productRepo, orderRepo, reviewRepo, ratingCache, cfg.Maintenance)
	accountService := service.NewAccountService(userRepo, mail, cfg.Maintenance)
	reportService := service.NewReportService(orderRepo, userRepo, cfg.Maintenance)

	maintenanceScheduler := scheduler.NewMaintenanceScheduler(
		maintenanceService,
		accountService,
		reportService,
		cfg.Maintenance,
	)
	if err := maintenanceScheduler.Start(); err != nil {
		logger.Fatal("Failed to start maintenance scheduler", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down maintenance worker...")
	maintenanceScheduler.Stop()
	logger.Info("Maintenance worker stopped")
}
