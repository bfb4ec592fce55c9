package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/redis/go-redis/v9"

	"TalentHive/internal/config"
	"TalentHive/internal/database"
	"TalentHive/internal/events"
	"TalentHive/internal/handlers"
	"TalentHive/internal/locks"
	"TalentHive/internal/logger"
	"TalentHive/internal/payments"
	"TalentHive/internal/routes"
	"TalentHive/internal/services"
	"TalentHive/internal/store"
)

func main() {
	cfg, err := config.Load()
	log, logErr := logger.New(cfg.Env)
	if logErr != nil {
		panic(logErr)
	}
	defer log.Sync()
	if err != nil {
		log.Fatal("invalid configuration", "error", err)
	}

	log.Info("configuration loaded",
		"env", cfg.Env,
		"port", cfg.Port,
		"jwt_secret", logger.Mask(cfg.JWTSecret),
		"paystack_secret_key", logger.Mask(cfg.Paystack.SecretKey),
		"cloudinary_cloud_name", cfg.Cloudinary.CloudName,
		"commission_bps", cfg.Platform.CommissionBPS,
	)

	db, err := database.Connect(cfg.Database, cfg.Env, log)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	defer database.Close(db)
	if err := database.Migrate(db, log); err != nil {
		log.Fatal("failed to migrate database", "error", err)
	}
	st := store.NewGormStore(db)

	var locker locks.Locker = locks.NewLocalLocker()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("failed to connect to redis", "addr", cfg.Redis.Addr, "error", err)
		}
		defer rdb.Close()
		locker = locks.NewRedisLocker(rdb)
		log.Info("using redis locks", "addr", cfg.Redis.Addr)
	} else {
		log.Warn("REDIS_ADDR not set, using in-process locks")
	}

	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		p, err := events.NewPublisher(cfg.AMQPURL)
		if err != nil {
			log.Fatal("failed to connect to rabbitmq", "error", err)
		}
		defer p.Close()
		publisher = p
		log.Info("publishing contract events", "exchange", events.ExchangeName)
	}

	var email services.EmailSender
	if cfg.Email.ResendAPIKey != "" {
		email = services.NewEmailService(cfg.Email.ResendAPIKey, cfg.Email.From, log)
	} else {
		log.Warn("RESEND_API_KEY not set, notifications are in-app only")
	}

	var uploader handlers.DeliverableUploader
	if cld, err := services.NewCloudinaryService(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret); err != nil {
		log.Warn("deliverable uploads disabled", "error", err)
	} else {
		uploader = cld
		log.Info("cloudinary service initialized successfully")
	}

	processor := payments.NewGuarded(
		payments.NewPaystackClient(cfg.Paystack.SecretKey, cfg.Paystack.BaseURL, cfg.Paystack.Timeout),
		payments.NewBreaker(payments.DefaultBreakerConfig()),
	)

	notifier := services.NewNotificationService(st, email, publisher, log.With("component", "notifications"))
	contracts := services.NewContractService(st, notifier, log.With("component", "contracts"), services.ContractServiceConfig{
		WriteRetries:    cfg.Platform.ContractWriteRetries,
		DefaultCurrency: cfg.Platform.DefaultCurrency,
	})
	paymentSvc := services.NewPaymentService(st, processor, locker, notifier, log.With("component", "payments"), services.PaymentConfig{
		CommissionBPS:   cfg.Platform.CommissionBPS,
		MinEscrowAmount: cfg.Platform.MinEscrowAmount,
		EscrowHoldDays:  cfg.Platform.EscrowHoldDays,
		ReconcileAfter:  cfg.Platform.ReconcileAfter,
		WriteRetries:    cfg.Platform.ContractWriteRetries,
		LockTTL:         cfg.Platform.LockTTL,
		WebhookSecret:   cfg.Paystack.SecretKey,
	})

	app := fiber.New(fiber.Config{
		AppName:   "TalentHive Contracts API v1.0",
		BodyLimit: 10 * 1024 * 1024,
	})
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	routes.SetupRoutes(app, routes.Handlers{
		Contracts:     handlers.NewContractHandler(contracts, log),
		Escrow:        handlers.NewEscrowHandler(paymentSvc, log),
		Notifications: handlers.NewNotificationHandler(notifier, log),
		Files:         handlers.NewFileHandler(uploader, contracts, log),
		Admin:         handlers.NewAdminHandler(paymentSvc, log),
	}, routes.Options{JWTSecret: cfg.JWTSecret, AdminKey: cfg.AdminSetupKey})

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go reconcileLoop(ctx, paymentSvc, cfg.Platform.ReconcileAfter, log)

	go func() {
		log.Info("server starting", "addr", ":"+cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down gracefully")
	stop()
	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		log.Error("server shutdown error", "error", err)
	}
	log.Info("shutdown complete")
}

// reconcileLoop settles escrow payments the client never confirmed.
func reconcileLoop(ctx context.Context, svc *services.PaymentService, every time.Duration, log *logger.Logger) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.Reconcile(ctx); err != nil {
				log.Error("reconcile failed", "error", err)
			}
		}
	}
}
