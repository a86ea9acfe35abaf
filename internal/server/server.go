package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shoe-store/internal/config"
	"shoe-store/internal/database"
	"shoe-store/internal/domain"
	custommiddleware "shoe-store/internal/middleware"
	"shoe-store/internal/repository"
	"shoe-store/internal/service"
	"shoe-store/internal/storage"
	"shoe-store/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *database.Service
	redis  *redis.Client
}

// routeRegistrar is implemented by every HTTP handler
type routeRegistrar interface {
	RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler)
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *database.Service, redisClient *redis.Client) (*Server, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	images, err := storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize image storage: %w", err)
	}

	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.IsDevelopment()))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	if cfg.RateLimit.Enabled && redisClient != nil {
		router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "rl",
		}, logger))
	}

	s := &Server{
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	// Health check endpoint
	router.Get("/health", s.health)

	// Uploaded images are served by the API itself when stored on disk
	if cfg.Storage.Driver == "" || cfg.Storage.Driver == "disk" {
		if prefix := strings.TrimRight(cfg.Storage.PublicBaseURL, "/"); strings.HasPrefix(prefix, "/") {
			files := http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.Storage.UploadDir)))
			router.Handle(prefix+"/*", files)
		}
	}

	sqlDB := db.DB()

	// Initialize repositories
	userRepo := repository.NewUserRepository(sqlDB)
	refreshTokenRepo := repository.NewRefreshTokenRepository(sqlDB)
	categoryRepo := repository.NewCategoryRepository(sqlDB)
	productRepo := repository.NewProductRepository(sqlDB)
	variantRepo := repository.NewVariantRepository(sqlDB)
	bannerRepo := repository.NewBannerRepository(sqlDB)
	cartRepo := repository.NewCartRepository(sqlDB)
	voucherRepo := repository.NewVoucherRepository(sqlDB)
	orderRepo := repository.NewOrderRepository(sqlDB)
	reviewRepo := repository.NewReviewRepository(sqlDB)
	messageRepo := repository.NewMessageRepository(sqlDB)
	analyticsRepo := repository.NewAnalyticsRepository(sqlDB)
	txManager := repository.NewTxManager(sqlDB)

	// Initialize services
	userOpts := []service.UserServiceOption{
		service.WithTokenExpiry(
			time.Duration(cfg.JWT.AccessExpiry)*time.Minute,
			time.Duration(cfg.JWT.RefreshExpiry)*24*time.Hour,
		),
		service.WithAvatarStore(images),
		service.WithUserLogger(logger),
	}
	if redisClient != nil {
		userOpts = append(userOpts, service.WithPasswordReset(
			service.NewRedisResetCodeStore(redisClient),
			service.NewLogNotifier(logger),
			cfg.Shop.ResetCodeTTL,
		))
	}
	userService := service.NewUserService(userRepo, refreshTokenRepo, cfg.JWT.Secret, userOpts...)
	categoryService := service.NewCategoryService(categoryRepo)
	productService := service.NewProductService(productRepo, variantRepo, categoryRepo, reviewRepo, txManager, images, logger)
	variantService := service.NewVariantService(variantRepo, productRepo, images, logger)
	bannerService := service.NewBannerService(bannerRepo, images, logger)
	cartService := service.NewCartService(cartRepo, variantRepo)
	voucherService := service.NewVoucherService(voucherRepo)
	orderService := service.NewOrderService(orderRepo, txManager, domain.ShippingPolicy{
		FlatFee:           cfg.Shop.ShippingFee,
		FreeShippingAbove: cfg.Shop.FreeShippingAbove,
	}, logger)
	reviewService := service.NewReviewService(reviewRepo, orderRepo)
	messageService := service.NewMessageService(messageRepo, userRepo)
	analyticsService := service.NewAnalyticsService(analyticsRepo, cfg.Shop.LowStockThreshold)

	// Create auth middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	optionalAuth := custommiddleware.OptionalAuthMiddleware(cfg.JWT.Secret, logger)

	// Register routes
	maxUpload := cfg.Storage.MaxUploadBytes
	handlers := []routeRegistrar{
		transport.NewUserHandler(userService, logger, maxUpload),
		transport.NewCategoryHandler(categoryService, logger),
		transport.NewProductHandler(productService, optionalAuth, logger),
		transport.NewVariantHandler(variantService, logger, maxUpload),
		transport.NewBannerHandler(bannerService, logger, maxUpload),
		transport.NewCartHandler(cartService, logger),
		transport.NewVoucherHandler(voucherService, logger),
		transport.NewOrderHandler(orderService, logger),
		transport.NewReviewHandler(reviewService, logger),
		transport.NewMessageHandler(messageService, logger),
		transport.NewAnalyticsHandler(analyticsService, logger),
	}
	for _, h := range handlers {
		h.RegisterRoutes(router, authMiddleware)
	}

	s.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s, nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]interface{}{"status": "ok"}

	dbHealth := s.db.Health(r.Context())
	body["database"] = dbHealth
	if dbHealth["status"] != "up" {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
	}

	if s.redis != nil {
		if err := s.redis.Ping(r.Context()).Err(); err != nil {
			body["redis"] = "down"
			body["status"] = "degraded"
		} else {
			body["redis"] = "up"
		}
	}

	custommiddleware.RespondWithJSON(w, status, body)
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
