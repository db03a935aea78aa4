package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/config"
	"github.com/staynest/booking-backend/internal/database"
	"github.com/staynest/booking-backend/internal/handlers"
	"github.com/staynest/booking-backend/internal/middleware"
	"github.com/staynest/booking-backend/internal/services"
	"github.com/staynest/booking-backend/pkg/jwt"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.WithFields(logrus.Fields{"version": version, "build_time": buildTime}).Info("Starting StayNest booking backend")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Repositories
	userRepository := database.NewUserRepository(db)
	roomRepository := database.NewRoomRepository(db.DB)
	bookingRepository := database.NewBookingRepository(db.DB)
	auditRepository := database.NewPaymentAuditRepository(db.DB, logger)

	// Services
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	auditService := services.NewAuditService(auditRepository, logger)
	rateLimitService := services.NewRateLimitService(cfg.RateLimit)

	var intents services.PaymentIntentAPI
	if cfg.Stripe.SecretKey != "" {
		stripe.Key = cfg.Stripe.SecretKey
		intents = client.New(cfg.Stripe.SecretKey, nil).PaymentIntents
		logger.Info("Stripe client initialized")
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set, payment intents are disabled")
	}
	paymentIntentService := services.NewPaymentIntentService(intents, cfg.Stripe, cfg.Checkout, auditService, logger)

	var roleStore services.RedisStore
	if rdb := connectRedis(cfg.Redis, logger); rdb != nil {
		defer rdb.Close()
		roleStore = rdb
	}
	roleCache := services.NewRoleCache(roleStore, userRepository, cfg.Redis.RoleTTL, logger)

	reconciliationService := services.NewReconciliationService(roomRepository, auditService, logger)
	cronService := services.NewCronService(reconciliationService, rateLimitService, cfg.Reconciliation, logger)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}
	defer cronService.Stop()

	h := handlers.Handlers{
		User:    handlers.NewUserHandler(jwtService, userRepository, roleCache, services.NewMenuService(), logger),
		Room:    handlers.NewRoomHandler(roomRepository, logger),
		Payment: handlers.NewPaymentHandler(paymentIntentService, logger),
		Booking: handlers.NewBookingHandler(bookingRepository, paymentIntentService, auditService, logger),
		Health:  handlers.NewHealthHandler(db, cronService),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handlers.RegisterRoutes(router, h,
		middleware.AuthMiddleware(jwtService, roleCache, logger),
		func(limitType string) gin.HandlerFunc {
			return middleware.RateLimit(rateLimitService, limitType, logger)
		},
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}
	logger.Info("Server exited")
}

// connectRedis returns nil when no address is configured or the server is unreachable
func connectRedis(cfg config.RedisConfig, logger *logrus.Logger) *redis.Client {
	if cfg.Addr == "" {
		logger.Info("REDIS_ADDR not set, role cache disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("Redis unreachable, role cache disabled")
		rdb.Close()
		return nil
	}

	logger.WithField("addr", cfg.Addr).Info("Redis connected")
	return rdb
}
