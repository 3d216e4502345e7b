package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/domain"
	"github.com/kristofaser/eagle-golf-app-sub006/internal/gateway"
	"github.com/kristofaser/eagle-golf-app-sub006/internal/handler"
	"github.com/kristofaser/eagle-golf-app-sub006/internal/policy"
	"github.com/kristofaser/eagle-golf-app-sub006/internal/pricing"
	"github.com/kristofaser/eagle-golf-app-sub006/internal/repository"
	"github.com/kristofaser/eagle-golf-app-sub006/internal/service"
	"github.com/kristofaser/eagle-golf-app-sub006/pkg/config"
	"github.com/kristofaser/eagle-golf-app-sub006/pkg/database"
	"github.com/kristofaser/eagle-golf-app-sub006/pkg/logger"
	"github.com/kristofaser/eagle-golf-app-sub006/pkg/middleware"
	pkgredis "github.com/kristofaser/eagle-golf-app-sub006/pkg/redis"
	"github.com/kristofaser/eagle-golf-app-sub006/pkg/telemetry"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(&logger.Config{
		Level:       "info",
		ServiceName: "booking-api",
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Booking API...")

	ctx := context.Background()

	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Warn(fmt.Sprintf("Telemetry init failed: %v", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = telemetry.Shutdown(shutdownCtx)
	}()

	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info("Database connected")

	var redisClient *pkgredis.Client
	redisClient, err = pkgredis.NewClient(ctx, &pkgredis.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Redis connection failed, idempotency middleware disabled: %v", err))
		redisClient = nil
	} else {
		defer redisClient.Close()
		appLog.Info("Redis connected")
	}

	var publisher service.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err := service.NewKafkaEventPublisher(&service.EventPublisherConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.NotificationsTopic,
			ServiceName: "booking-api",
			ClientID:    cfg.Kafka.ClientID,
		})
		if err != nil {
			appLog.Warn(fmt.Sprintf("Kafka publisher init failed, notifications disabled: %v", err))
			publisher = service.NewNoOpEventPublisher()
		} else {
			defer kafkaPublisher.Close()
			publisher = kafkaPublisher
			appLog.Info("Kafka event publisher connected")
		}
	} else {
		publisher = service.NewNoOpEventPublisher()
		appLog.Warn("No Kafka brokers configured, notifications disabled")
	}

	var paymentGateway gateway.PaymentGateway
	if cfg.Stripe.SecretKey != "" {
		paymentGateway, err = gateway.NewStripeGateway(&gateway.StripeGatewayConfig{
			SecretKey:     cfg.Stripe.SecretKey,
			WebhookSecret: cfg.Stripe.WebhookSecret,
			Environment:   cfg.App.Environment,
		})
		if err != nil {
			appLog.Fatal(fmt.Sprintf("Failed to create Stripe gateway: %v", err))
		}
		appLog.Info("Using Stripe payment gateway")
	} else {
		paymentGateway = gateway.NewMockGateway(nil)
		appLog.Warn("STRIPE_SECRET_KEY not set, using mock payment gateway")
	}

	pool := db.Pool()
	bookingRepo := repository.NewPostgresBookingRepository(pool)
	slotRepo := repository.NewPostgresSlotRepository(pool)
	paymentRepo := repository.NewPostgresPaymentRepository(pool)
	validationRepo := repository.NewPostgresValidationRepository(pool)
	commissionRepo := repository.NewPostgresCommissionRepository(pool)

	paymentSvc := service.NewPaymentService(paymentRepo, bookingRepo, slotRepo, validationRepo, paymentGateway, publisher)
	bookingSvc := service.NewBookingService(bookingRepo, slotRepo, commissionRepo, paymentSvc, publisher, &service.BookingServiceConfig{
		RefundPolicy: refundPolicyFromConfig(&cfg.Booking),
		Floors: &pricing.Floors{
			MinProFee:      domain.Money(cfg.Booking.MinProFeeCents),
			MinPlatformFee: domain.Money(cfg.Booking.MinPlatformFeeCents),
		},
		HoldTTL:  cfg.Booking.HoldTTL,
		Currency: cfg.Booking.Currency,
	})
	validationSvc := service.NewValidationService(validationRepo, bookingRepo, bookingSvc, publisher)

	bookingHandler := handler.NewBookingHandler(bookingSvc)
	adminHandler := handler.NewAdminHandler(validationSvc)
	webhookHandler := handler.NewWebhookHandler(paymentSvc, cfg.Stripe.WebhookSecret)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(telemetry.TracingMiddleware("booking-api"))

	router.GET("/health", func(c *gin.Context) {
		if err := db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": err.Error()})
			return
		}
		status := gin.H{"status": "healthy"}
		if redisClient != nil {
			if err := redisClient.HealthCheck(c.Request.Context()); err != nil {
				status["redis"] = err.Error()
			}
		}
		c.JSON(http.StatusOK, status)
	})

	var idempotency gin.HandlerFunc
	if redisClient != nil {
		idempotency = middleware.Idempotency(&middleware.Config{Redis: redisClient})
	} else {
		idempotency = func(c *gin.Context) { c.Next() }
	}

	v1 := router.Group("/api/v1")
	{
		bookings := v1.Group("/bookings")
		{
			bookings.POST("", idempotency, bookingHandler.CreateBooking)
			bookings.GET("/:id", bookingHandler.GetBooking)
			bookings.POST("/:id/cancel", idempotency, bookingHandler.CancelBooking)
			bookings.POST("/:id/validation", adminHandler.RequestValidation)
		}

		v1.GET("/amateurs/:id/bookings", bookingHandler.GetAmateurBookings)

		validations := v1.Group("/validations")
		{
			validations.POST("/:id/alternative/accept", adminHandler.AcceptAlternative)
			validations.POST("/:id/alternative/decline", adminHandler.DeclineAlternative)
		}

		admin := v1.Group("/admin")
		{
			admin.GET("/validations/pending", adminHandler.ListPending)
			admin.POST("/validations/:id/decide", adminHandler.Decide)
		}

		v1.POST("/webhooks/stripe", webhookHandler.HandleStripeWebhook)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		appLog.Info(fmt.Sprintf("Booking API listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}

// refundPolicyFromConfig builds the tier table from the aligned config pairs,
// falling back to the marketplace default when absent or malformed.
func refundPolicyFromConfig(cfg *config.BookingConfig) *policy.RefundPolicy {
	if len(cfg.RefundTierHours) == 0 || len(cfg.RefundTierHours) != len(cfg.RefundTierPercents) {
		return policy.DefaultRefundPolicy()
	}
	tiers := make([]policy.RefundTier, 0, len(cfg.RefundTierHours))
	for i, hours := range cfg.RefundTierHours {
		tiers = append(tiers, policy.RefundTier{
			MinHoursBefore: hours,
			Percentage:     cfg.RefundTierPercents[i],
		})
	}
	return policy.NewRefundPolicy(tiers)
}
