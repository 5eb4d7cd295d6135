package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/automarket/automarket-backend/config"
	"github.com/automarket/automarket-backend/internal/app/controller"
	"github.com/automarket/automarket-backend/internal/app/repository"
	"github.com/automarket/automarket-backend/internal/app/service"
	"github.com/automarket/automarket-backend/internal/cart"
	"github.com/automarket/automarket-backend/internal/db"
	"github.com/automarket/automarket-backend/internal/events"
	"github.com/automarket/automarket-backend/internal/middleware"
	"github.com/automarket/automarket-backend/internal/router"
	"github.com/automarket/automarket-backend/internal/scheduler"
	"github.com/automarket/automarket-backend/internal/search"
	"github.com/automarket/automarket-backend/internal/storage"
	"github.com/automarket/automarket-backend/pkg/logger"
	"github.com/automarket/automarket-backend/pkg/redis"
)

const (
	cartEvictionSpec = "@every 10m"
	cartIdleTimeout  = 30 * time.Minute
	shutdownTimeout  = 10 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting AutoMarket Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
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

	// Redis backs the token blacklist and cart snapshots. Without it both
	// live in process memory.
	blacklist := redis.NewMemoryBlacklist()
	var cartStorage cart.Storage = cart.NewMemoryStorage()
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, using in-memory blacklist and cart storage", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		defer redisClient.Close()
		blacklist = redis.NewBlacklist(redisClient)
		cartStorage = cart.NewRedisStorage(redisClient, cfg.Cart.TTL)
	}
	cartManager := cart.NewManager(cartStorage, cfg.Cart.KeyPrefix)

	imageStore := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", err)
		}
	}()

	var index service.SearchIndex
	if cfg.Elasticsearch.URL != "" {
		index = newListingIndex(&cfg.Elasticsearch)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	profileRepo := repository.NewProfileRepository(db.GetDB())
	listingRepo := repository.NewListingRepository(db.GetDB())
	favoriteRepo := repository.NewFavoriteRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		blacklist,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	profileService := service.NewProfileService(profileRepo, userRepo)
	listingService := service.NewListingService(
		listingRepo,
		favoriteRepo,
		profileService,
		imageStore,
		index,
		publisher,
	)
	catalogService := service.NewCatalogService(listingRepo, index)
	favoriteService := service.NewFavoriteService(favoriteRepo, listingRepo, publisher)
	productService := service.NewProductService(productRepo)
	cartService := service.NewCartService(cartManager, productRepo)
	orderService := service.NewOrderService(orderRepo, cartManager)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	profileController := controller.NewProfileController(profileService)
	vehicleController := controller.NewVehicleController(listingService, catalogService)
	favoriteController := controller.NewFavoriteController(favoriteService)
	compareController := controller.NewCompareController(catalogService)
	productController := controller.NewProductController(productService)
	cartController := controller.NewCartController(cartService, orderService)
	orderController := controller.NewOrderController(orderService)
	uploadController := controller.NewUploadController(imageStore)

	sweeper := scheduler.NewOrphanImageSweeper(imageStore, listingRepo, "vehicles/", cfg.Scheduler.OrphanGracePeriod)
	maintenanceController := controller.NewMaintenanceController(sweeper)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, blacklist)

	// Background jobs
	jobs := scheduler.New()
	if err := jobs.Register("orphan_image_sweep", cfg.Scheduler.OrphanSweepSpec, sweeper.Job()); err != nil {
		logger.Fatal("Failed to schedule orphan image sweep", err)
	}
	if err := jobs.Register("cart_eviction", cartEvictionSpec, scheduler.CartEvictionJob(cartManager, cartIdleTimeout)); err != nil {
		logger.Fatal("Failed to schedule cart eviction", err)
	}
	jobs.Start()
	defer jobs.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		profileController,
		vehicleController,
		favoriteController,
		compareController,
		productController,
		cartController,
		orderController,
		uploadController,
		maintenanceController,
		authMiddleware,
		cfg,
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r.Setup(),
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully")
}

// newListingIndex returns nil when Elasticsearch cannot be reached, which
// sends catalog search through the in-memory filter.
func newListingIndex(cfg *config.ElasticsearchConfig) service.SearchIndex {
	client, err := search.NewClient(cfg)
	if err != nil {
		logger.Warn("Elasticsearch unavailable, search falls back to catalog filter", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	index := search.NewListingIndex(client, cfg.Index)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := index.EnsureIndex(ctx); err != nil {
		logger.Warn("Failed to ensure listing index", map[string]interface{}{
			"index": cfg.Index,
			"error": err.Error(),
		})
		return nil
	}
	return index
}
