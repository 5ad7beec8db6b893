package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Rvd99/ali-baba/config"
	"github.com/Rvd99/ali-baba/controllers"
	"github.com/Rvd99/ali-baba/database"
	applog "github.com/Rvd99/ali-baba/logger"
	"github.com/Rvd99/ali-baba/models"
	"github.com/Rvd99/ali-baba/repository"
	"github.com/Rvd99/ali-baba/routes"
	"github.com/Rvd99/ali-baba/services"
	"github.com/Rvd99/ali-baba/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := applog.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.ConnectPostgres(cfg, logger,
		&models.User{},
		&models.Address{},
		&models.Category{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Wishlist{},
		&models.WishlistItem{},
		&models.Review{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db) //nolint:errcheck

	redisClient := database.NewRedisClient(cfg.RedisURL, logger)

	var imageStore *storage.ImageStore
	if cfg.S3BucketImages != "" {
		imageStore, err = storage.NewImageStore(context.Background(), cfg.S3BucketImages)
		if err != nil {
			logger.Warn("S3 unavailable, image uploads disabled", zap.Error(err))
			imageStore = nil
		}
	}

	// Repositories
	userRepo := repository.NewGormUserRepository(db)
	productRepo := repository.NewGormProductRepository(db)
	categoryRepo := repository.NewGormCategoryRepository(db)
	cartRepo := repository.NewGormCartRepository(db)
	wishlistRepo := repository.NewGormWishlistRepository(db)
	reviewRepo := repository.NewGormReviewRepository(db)
	orderRepo := repository.NewGormOrderRepository(db)

	// Services
	productCache := services.NewProductCache(redisClient, logger)
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, logger)
	catalogService := services.NewCatalogService(productRepo, categoryRepo, productCache, logger)
	cartService := services.NewCartService(cartRepo, productRepo, logger)
	orderService := services.NewOrderService(orderRepo, productRepo, logger)
	stripeService := services.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookKey, cfg.FrontendURL)
	checkoutService := services.NewCheckoutService(orderRepo, productRepo, stripeService, logger)

	ctrls := &routes.Controllers{
		Auth:     controllers.NewAuthController(authService),
		User:     controllers.NewUserController(userRepo, logger),
		Product:  controllers.NewProductController(catalogService, imageStore, logger),
		Category: controllers.NewCategoryController(categoryRepo, productRepo, logger),
		Cart:     controllers.NewCartController(cartService),
		Order:    controllers.NewOrderController(orderService),
		Checkout: controllers.NewCheckoutController(checkoutService, stripeService, logger),
		Review:   controllers.NewReviewController(reviewRepo, productRepo, userRepo, logger),
		Wishlist: controllers.NewWishlistController(wishlistRepo, productRepo, logger),
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(applog.RequestLogger(logger))

	// 30-second request timeout
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "marketplace-api"})
	})

	routes.Register(r, ctrls, []byte(cfg.JWTSecret))

	// Background sweep of abandoned checkout orders.
	sweeperCtx, stopSweeper := context.WithCancel(context.Background())
	sweeper := services.NewOrderSweeper(orderRepo, cfg.SweepInterval, cfg.SweepMaxAge, logger)
	go sweeper.Run(sweeperCtx)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info("Marketplace API started", zap.String("port", cfg.Port))
	<-quit
	logger.Info("Shutting down...")
	stopSweeper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited cleanly")
}
