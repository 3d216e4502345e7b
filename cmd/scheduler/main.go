package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/domain"
	"github.com/kristofaser/eagle-golf-app-sub006/internal/gateway"
	"github.com/kristofaser/eagle-golf-app-sub006/internal/policy"
	"github.com/kristofaser/eagle-golf-app-sub006/internal/pricing"
	"github.com/kristofaser/eagle-golf-app-sub006/internal/repository"
	"github.com/kristofaser/eagle-golf-app-sub006/internal/service"
	"github.com/kristofaser/eagle-golf-app-sub006/internal/worker"
	"github.com/kristofaser/eagle-golf-app-sub006/pkg/config"
	"github.com/kristofaser/eagle-golf-app-sub006/pkg/database"
	"github.com/kristofaser/eagle-golf-app-sub006/pkg/logger"
	"github.com/kristofaser/eagle-golf-app-sub006/pkg/telemetry"
)

// The scheduler runs the two background sweeps (expiry and completion) as a
// separate process so API deploys never interrupt them.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(&logger.Config{
		Level:       "info",
		ServiceName: "booking-scheduler",
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Booking Scheduler...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName + "-scheduler",
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Warn(fmt.Sprintf("Telemetry init failed: %v", err))
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = telemetry.Shutdown(shutdownCtx)
	}()

	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        10,
		MinConns:        2,
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

	var publisher service.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err := service.NewKafkaEventPublisher(&service.EventPublisherConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.NotificationsTopic,
			ServiceName: "booking-scheduler",
			ClientID:    cfg.Kafka.ClientID + "-scheduler",
		})
		if err != nil {
			appLog.Warn(fmt.Sprintf("Kafka publisher init failed, notifications disabled: %v", err))
			publisher = service.NewNoOpEventPublisher()
		} else {
			defer kafkaPublisher.Close()
			publisher = kafkaPublisher
		}
	} else {
		publisher = service.NewNoOpEventPublisher()
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
		RefundPolicy: policy.DefaultRefundPolicy(),
		Floors: &pricing.Floors{
			MinProFee:      domain.Money(cfg.Booking.MinProFeeCents),
			MinPlatformFee: domain.Money(cfg.Booking.MinPlatformFeeCents),
		},
		HoldTTL:  cfg.Booking.HoldTTL,
		Currency: cfg.Booking.Currency,
	})

	expiryWorker := worker.NewExpiryWorker(bookingSvc, &worker.ExpiryWorkerConfig{
		ScanInterval: cfg.Booking.SweepInterval,
		BatchSize:    cfg.Booking.SweepBatchSize,
	})
	completionWorker := worker.NewCompletionWorker(bookingSvc, &worker.CompletionWorkerConfig{
		ScanInterval: 5 * cfg.Booking.SweepInterval,
		BatchSize:    cfg.Booking.SweepBatchSize,
	})

	if err := expiryWorker.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start expiry worker: %v", err))
	}
	if err := completionWorker.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start completion worker: %v", err))
	}

	// Small stats server so operators can watch the sweeps.
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/health", func(c *gin.Context) {
		if err := db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"expiry":     expiryWorker.GetStats(),
			"completion": completionWorker.GetStats(),
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port+1)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
	}
	go func() {
		appLog.Info(fmt.Sprintf("Scheduler stats listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start stats server: %v", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down scheduler...")

	expiryWorker.Stop()
	completionWorker.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)

	appLog.Info("Scheduler exited gracefully")
}
