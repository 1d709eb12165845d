package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"eleya-storefront/internal/cache"
	"eleya-storefront/internal/catalog"
	"eleya-storefront/internal/config"
	"eleya-storefront/internal/database"
	custommiddleware "eleya-storefront/internal/middleware"
	"eleya-storefront/internal/repository"
	"eleya-storefront/internal/service"
	"eleya-storefront/internal/shopify"
	"eleya-storefront/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SweepInterval is how often idle browse sessions are evicted
const SweepInterval = time.Minute

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client

	stopSweeper context.CancelFunc
}

func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.PrometheusMetrics())
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.Env == "development"))

	// Initialize the catalog client, cached when enabled
	var client catalog.Client = shopify.NewClient(shopify.Config{
		StoreDomain:     cfg.Shopify.StoreDomain,
		APIVersion:      cfg.Shopify.APIVersion,
		StorefrontToken: cfg.Shopify.StorefrontToken,
		Timeout:         cfg.Shopify.Timeout,
	}, logger)
	if cfg.Cache.Enabled {
		client = cache.NewCatalogCache(client, redisClient, cache.Config{
			ProductTTL: cfg.Cache.ProductTTL,
			VendorTTL:  cfg.Cache.VendorTTL,
		}, logger)
	}

	// Initialize repositories
	cartRepo := repository.NewCartRepository(db.DB())

	// Initialize services
	collectionService := service.NewCollectionService(client, cfg.Shopify.PageSize, logger)
	sessions := service.NewSessionStore(collectionService, service.SessionConfig{
		TTL:      cfg.Browse.SessionTTL,
		Debounce: cfg.Browse.Debounce,
	}, logger)
	cartTokens := service.NewCartTokens(cfg.Cart.TokenSecret, cfg.Cart.TokenTTL)
	cartService := service.NewCartService(cartRepo, client, cartTokens, logger)

	// Initialize handlers
	catalogHandler := transport.NewCatalogHandler(collectionService, sessions, logger)
	cartHandler := transport.NewCartHandler(cartService, logger)

	// Create cart auth middleware
	cartAuth := custommiddleware.CartAuthMiddleware(cartTokens, service.ErrTokenExpired, logger)

	server := &Server{
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	router.Get("/health", server.health)
	router.Handle("/metrics", promhttp.Handler())

	// Register routes
	router.Group(func(r chi.Router) {
		r.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
		}, logger))
		catalogHandler.RegisterRoutes(r)
		cartHandler.RegisterRoutes(r, cartAuth)
	})

	sweepCtx, stop := context.WithCancel(context.Background())
	go sessions.Run(sweepCtx, SweepInterval)
	server.stopSweeper = stop

	server.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}

// health reports database and redis status. Either being down answers 503.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Second)
	defer cancel()

	dbHealth := s.db.Health()
	redisStatus := "up"
	if err := s.redis.Ping(ctx).Err(); err != nil {
		s.logger.Warn("Redis health check failed", zap.Error(err))
		redisStatus = "down"
	}

	status, code := "ok", http.StatusOK
	if dbHealth["status"] != "up" || redisStatus != "up" {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	custommiddleware.RespondWithJSON(w, code, map[string]interface{}{
		"status":   status,
		"database": dbHealth,
		"redis":    redisStatus,
	})
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.stopSweeper != nil {
		s.stopSweeper()
	}

	// Close redis connection
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
