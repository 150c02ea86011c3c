package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/rajasekharstrikes1/society-pay/api/handler"
	"github.com/rajasekharstrikes1/society-pay/internal/config"
	"github.com/rajasekharstrikes1/society-pay/internal/gateway/razorpay"
	"github.com/rajasekharstrikes1/society-pay/internal/gateway/whatsapp"
	"github.com/rajasekharstrikes1/society-pay/internal/infrastructure/monitor"
	"github.com/rajasekharstrikes1/society-pay/internal/infrastructure/outbox"
	pgInfra "github.com/rajasekharstrikes1/society-pay/internal/infrastructure/postgres"
	redisInfra "github.com/rajasekharstrikes1/society-pay/internal/infrastructure/redis"
	"github.com/rajasekharstrikes1/society-pay/internal/middleware"
	"github.com/rajasekharstrikes1/society-pay/internal/router"
	"github.com/rajasekharstrikes1/society-pay/internal/services"
	"github.com/rajasekharstrikes1/society-pay/internal/services/lifecycle"
	"github.com/rajasekharstrikes1/society-pay/pkg/httpcontext"
	"github.com/rajasekharstrikes1/society-pay/pkg/logger"
	"github.com/rajasekharstrikes1/society-pay/repository/postgres"
	redisRepo "github.com/rajasekharstrikes1/society-pay/repository/redis"
	authUC "github.com/rajasekharstrikes1/society-pay/usecase/auth"
	gateUC "github.com/rajasekharstrikes1/society-pay/usecase/gate"
	paymentUC "github.com/rajasekharstrikes1/society-pay/usecase/payment"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	outboxStore, err := outbox.Open(cfg.Outbox.Path, "outbox")
	if err != nil {
		zapLogger.Fatal("failed to open notification outbox", zap.Error(err))
	}
	manager.Register("outbox", func(ctx context.Context) error {
		return outboxStore.Close()
	})

	mon := monitor.New(pool, redisClient, outboxStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	communityRepo := postgres.NewCommunityRepository(pool)
	planRepo := postgres.NewPlanRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.Gate.SessionTTL)
	flagRepo := redisRepo.NewFlagRepository(redisClient, cfg.Gate.PaymentGrace, cfg.Gate.SessionTTL)

	razorpayClient := razorpay.NewClient(
		cfg.Razorpay.BaseURL,
		cfg.Razorpay.KeyID,
		cfg.Razorpay.KeySecret,
		cfg.Razorpay.Timeout,
		zapLogger,
	)
	whatsappClient := whatsapp.NewClient(
		cfg.WhatsApp.BaseURL,
		cfg.WhatsApp.APIKey,
		cfg.WhatsApp.WabaNumber,
		cfg.WhatsApp.Timeout,
		zapLogger,
	)

	notifier := services.NewNotifier(
		outboxStore,
		mon,
		whatsappClient,
		zapLogger,
		services.NotifierConfig{
			Interval:   cfg.Outbox.SyncInterval,
			BatchSize:  50,
			MaxRetries: cfg.Outbox.MaxRetry,
			Retention:  time.Duration(cfg.Outbox.RetentionHours) * time.Hour,
		},
	)
	notifier.Start()
	manager.Register("notifier", func(ctx context.Context) error {
		notifier.Stop(ctx)
		return nil
	})

	authUseCase := authUC.New(userRepo, sessionRepo, zapLogger)
	gateUseCase := gateUC.New(communityRepo, flagRepo, gateUC.Config{
		RedirectCooldown: cfg.Gate.RedirectCooldown,
		PaymentGrace:     cfg.Gate.PaymentGrace,
		ResolverTimeout:  cfg.Gate.ResolverTimeout,
	}, zapLogger)
	paymentUseCase := paymentUC.New(
		orderRepo,
		planRepo,
		communityRepo,
		flagRepo,
		razorpayClient,
		notifier,
		cfg.Razorpay.KeySecret,
		zapLogger,
	)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:      apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, time.Hour),
		Gate:      apiHandler.NewGateHandler(gateUseCase, ctxAdapter, zapLogger),
		Payment:   apiHandler.NewPaymentHandler(paymentUseCase, orderRepo, cfg.Razorpay.WebhookSecret, ctxAdapter, zapLogger),
		Community: apiHandler.NewCommunityHandler(communityRepo, gateUseCase, ctxAdapter, zapLogger),
		Plan:      apiHandler.NewPlanHandler(planRepo, ctxAdapter, zapLogger),
		Health:    apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
