package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/sravanmaichrla/campus-placement-hub/internal/repository"
	"github.com/sravanmaichrla/campus-placement-hub/internal/service"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/cache"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/config"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/database"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/jobs"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/logger"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/mail"
)

// notification-worker consumes dispatch tasks published by the API when NOTIFY_QUEUE_BACKEND=redis.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg, "notification-worker")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	applications := repository.NewApplicationRepository(db)
	selector := service.NewCandidateSelector(repository.NewStudentRepository(db), applications, cfg.Notifications.PageSize, logr)
	notifier := service.NewNotificationService(
		repository.NewJobRepository(db),
		repository.NewCompanyRepository(db),
		selector,
		mail.New(cfg.Mail, logr),
		service.NotificationConfig{
			From:          cfg.Mail.From,
			BatchSize:     cfg.Notifications.BatchSize,
			BatchDelay:    cfg.Notifications.BatchDelay,
			MaxConcurrent: cfg.Notifications.MaxConcurrentDispatch,
			PortalURL:     cfg.Notifications.PortalURL,
		},
		service.NewMetricsService(),
		logr,
	)

	srv := jobs.NewAsynqServer(asynq.RedisClientOpt{
		Addr:     cache.Addr(cfg.Redis),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, "notifications", cfg.Notifications.Workers, logr)

	mux := asynq.NewServeMux()
	mux.Handle(service.TaskTypeDispatch, jobs.AsynqHandler(notifier.HandleTask))

	if err := srv.Start(mux); err != nil {
		logr.Fatal("worker failed to start", zap.Error(err))
	}
	logr.Info("notification worker started", zap.Int("concurrency", cfg.Notifications.Workers))

	<-ctx.Done()
	logr.Info("shutdown signal received")
	srv.Shutdown()
}
