package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/tidyhome/backend/api/handler"
	"github.com/tidyhome/backend/internal/config"
	"github.com/tidyhome/backend/internal/infrastructure/monitor"
	"github.com/tidyhome/backend/internal/infrastructure/outbox"
	pgInfra "github.com/tidyhome/backend/internal/infrastructure/postgres"
	redisInfra "github.com/tidyhome/backend/internal/infrastructure/redis"
	"github.com/tidyhome/backend/internal/infrastructure/storage"
	"github.com/tidyhome/backend/internal/middleware"
	"github.com/tidyhome/backend/internal/router"
	"github.com/tidyhome/backend/internal/services"
	"github.com/tidyhome/backend/internal/services/lifecycle"
	"github.com/tidyhome/backend/pkg/httpcontext"
	"github.com/tidyhome/backend/pkg/logger"
	"github.com/tidyhome/backend/repository/postgres"
	redisRepo "github.com/tidyhome/backend/repository/redis"
	authUC "github.com/tidyhome/backend/usecase/auth"
	profileUC "github.com/tidyhome/backend/usecase/profile"
	reminderUC "github.com/tidyhome/backend/usecase/reminder"
	taskUC "github.com/tidyhome/backend/usecase/task"
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
		zapLogger.Fatal("failed to open event outbox", zap.Error(err))
	}
	manager.Register("outbox", func(ctx context.Context) error {
		return outboxStore.Close()
	})

	attachments, err := storage.NewLocal(cfg.Storage.AttachmentsDir)
	if err != nil {
		zapLogger.Fatal("failed to prepare attachment storage", zap.Error(err))
	}

	mon := monitor.New(pool, redisClient, outboxStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.JWT.SessionTTL)

	publisher := services.NewEventPublisher(
		redisClient,
		outboxStore,
		mon,
		zapLogger,
		services.PublisherConfig{
			DrainInterval: cfg.Outbox.DrainInterval,
			BatchSize:     cfg.Outbox.BatchSize,
			MaxRetries:    cfg.Outbox.MaxRetry,
		},
	)
	publisher.Start()
	manager.Register("event_publisher", func(ctx context.Context) error {
		publisher.Stop(ctx)
		return nil
	})

	taskUseCase := taskUC.New(taskRepo, publisher, attachments, zapLogger)
	reminderUseCase := reminderUC.New(taskRepo)
	authUseCase := authUC.New(userRepo, sessionRepo, cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)
	profileUseCase := profileUC.New(userRepo, taskUseCase, zapLogger)

	if cfg.Reset.Enabled {
		resetScheduler, err := services.NewResetScheduler(taskUseCase, services.ResetSchedule{
			Daily:   cfg.Reset.DailySpec,
			Weekly:  cfg.Reset.WeeklySpec,
			Monthly: cfg.Reset.MonthlySpec,
		}, zapLogger)
		if err != nil {
			zapLogger.Fatal("invalid reset schedule", zap.Error(err))
		}
		resetScheduler.Start()
		manager.Register("reset_scheduler", func(ctx context.Context) error {
			resetScheduler.Stop(ctx)
			return nil
		})
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, cfg.JWT.SessionTTL),
		Profile: apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, reminderUseCase, ctxAdapter, zapLogger, cfg.Reminder.Window),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:            r.Handler,
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		MaxRequestBodySize: cfg.HTTP.MaxBodySize,
		Name:               cfg.AppName,
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
