package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/taskpilot/backend/api/handler"
	"github.com/taskpilot/backend/internal/config"
	"github.com/taskpilot/backend/internal/infrastructure/journal"
	"github.com/taskpilot/backend/internal/infrastructure/monitor"
	pgInfra "github.com/taskpilot/backend/internal/infrastructure/postgres"
	redisInfra "github.com/taskpilot/backend/internal/infrastructure/redis"
	"github.com/taskpilot/backend/internal/middleware"
	"github.com/taskpilot/backend/internal/router"
	"github.com/taskpilot/backend/internal/services"
	"github.com/taskpilot/backend/internal/services/lifecycle"
	"github.com/taskpilot/backend/pkg/httpcontext"
	"github.com/taskpilot/backend/pkg/logger"
	"github.com/taskpilot/backend/repository/postgres"
	redisRepo "github.com/taskpilot/backend/repository/redis"
	attachmentUC "github.com/taskpilot/backend/usecase/attachment"
	authUC "github.com/taskpilot/backend/usecase/auth"
	taskUC "github.com/taskpilot/backend/usecase/task"
	userUC "github.com/taskpilot/backend/usecase/user"
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

	// The uploads directory is provisioned here, as an explicit startup
	// step, so a missing path fails loudly instead of at first upload.
	if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
		zapLogger.Fatal("failed to create uploads directory", zap.String("dir", cfg.Uploads.Dir), zap.Error(err))
	}
	zapLogger.Info("uploads directory ready", zap.String("dir", cfg.Uploads.Dir))

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

	journalStore, err := journal.Open(cfg.Journal.Path, "activity")
	if err != nil {
		zapLogger.Fatal("failed to open activity journal", zap.Error(err))
	}
	manager.Register("journal", func(ctx context.Context) error {
		return journalStore.Close()
	})

	mon := monitor.New(pool, redisClient, journalStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	attachmentRepo := postgres.NewAttachmentRepository(pool)
	activityRepo := postgres.NewActivityRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, 24*time.Hour)

	journalProcessor := services.NewJournalProcessor(
		journalStore,
		mon,
		activityRepo,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Journal.SyncInterval,
			BatchSize:  50,
			MaxRetries: cfg.Journal.MaxRetry,
			Retention:  time.Duration(cfg.Journal.RetentionHours) * time.Hour,
		},
	)
	journalProcessor.Start()
	manager.Register("journal_processor", func(ctx context.Context) error {
		journalProcessor.Stop(ctx)
		return nil
	})

	recorder := services.NewActivityJournal(journalStore)

	authUseCase := authUC.New(userRepo, sessionRepo, zapLogger)
	taskUseCase := taskUC.New(taskRepo, recorder, zapLogger)
	userUseCase := userUC.New(userRepo, taskRepo, zapLogger)
	attachmentUseCase := attachmentUC.New(attachmentRepo, taskRepo, cfg.Uploads.Dir, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:       apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, time.Hour),
		Task:       apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		User:       apiHandler.NewUserHandler(userUseCase, ctxAdapter, zapLogger),
		Attachment: apiHandler.NewAttachmentHandler(attachmentUseCase, ctxAdapter, zapLogger, cfg.Uploads.MaxFileSize),
		Health:     apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
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
