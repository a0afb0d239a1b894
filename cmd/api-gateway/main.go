package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	_ "github.com/sravanmaichrla/campus-placement-hub/api/swagger"
	"github.com/sravanmaichrla/campus-placement-hub/internal/repository"
	"github.com/sravanmaichrla/campus-placement-hub/internal/service"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/cache"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/config"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/database"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/export"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/jobs"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/logger"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/mail"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/storage"
)

// @title Campus Placement Hub API
// @version 1.0.0
// @description Job postings, eligibility, applications, placements and reports for the placement cell.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const notificationQueue = "notifications"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg, "api-gateway")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	validate := validator.New()
	metrics := service.NewMetricsService()

	students := repository.NewStudentRepository(db)
	jobRepo := repository.NewJobRepository(db)
	companies := repository.NewCompanyRepository(db)
	applications := repository.NewApplicationRepository(db)
	placements := repository.NewPlacementRepository(db)
	reports := repository.NewReportRepository(db)

	store, err := storage.NewLocalStorage(cfg.Uploads.Dir, cfg.Uploads.MaxFileSizeBytes)
	if err != nil {
		logr.Fatal("upload directory unavailable", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)
	files := service.NewFileService(store, signer, cfg.APIPrefix+"/files", logr)

	cacheSvc := newCache(ctx, cfg, metrics, logr)

	selector := service.NewCandidateSelector(students, applications, cfg.Notifications.PageSize, logr)
	notifier := service.NewNotificationService(jobRepo, companies, selector, mail.New(cfg.Mail, logr), service.NotificationConfig{
		From:          cfg.Mail.From,
		BatchSize:     cfg.Notifications.BatchSize,
		BatchDelay:    cfg.Notifications.BatchDelay,
		MaxConcurrent: cfg.Notifications.MaxConcurrentDispatch,
		PortalURL:     cfg.Notifications.PortalURL,
	}, metrics, logr)

	queue, closeQueue := newQueue(ctx, cfg, notifier, logr)
	defer closeQueue()

	services := routerServices{
		tokens: service.NewTokenService(cfg.JWT),
		jobs: service.NewJobService(jobRepo, companies, students, applications, db, validate, logr, service.JobServiceConfig{
			Queue:    queue,
			Cache:    cacheSvc,
			Files:    files,
			CacheTTL: cfg.Cache.TTL,
		}),
		applications: service.NewApplicationService(applications, jobRepo, students, validate, logr),
		placements:   service.NewPlacementService(placements, files, validate, logr),
		companies:    service.NewCompanyService(companies, jobRepo, logr),
		reports:      service.NewReportService(reports, jobRepo, export.NewRegistry(), logr),
		files:        files,
		metrics:      metrics,
		db:           db,
	}

	r := newRouter(cfg, logr, services)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newCache returns a disabled cache service when Redis is off or unreachable.
func newCache(ctx context.Context, cfg *config.Config, metrics *service.MetricsService, logr *zap.Logger) *service.CacheService {
	if !cfg.Cache.Enabled {
		return service.NewCacheService(nil, metrics, cfg.Cache.TTL, logr, false)
	}
	client, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, job cache disabled", zap.Error(err))
		return service.NewCacheService(nil, metrics, cfg.Cache.TTL, logr, false)
	}
	return service.NewCacheService(repository.NewCacheRepository(client, "placement"), metrics, cfg.Cache.TTL, logr, true)
}

// newQueue picks the dispatch backend. The returned Enqueuer is nil when notifications are disabled.
func newQueue(ctx context.Context, cfg *config.Config, notifier *service.NotificationService, logr *zap.Logger) (jobs.Enqueuer, func()) {
	nc := cfg.Notifications
	if !nc.Enabled {
		logr.Info("job notifications disabled")
		return nil, func() {}
	}

	if nc.QueueBackend == config.QueueBackendRedis {
		client := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cache.Addr(cfg.Redis),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		q := jobs.NewAsynqQueue(client, notificationQueue, nc.TaskTimeout)
		logr.Info("dispatch tasks published to redis", zap.String("queue", notificationQueue))
		return q, func() {
			if err := q.Close(); err != nil {
				logr.Warn("asynq client close failed", zap.Error(err))
			}
		}
	}

	q := jobs.NewQueue(notificationQueue, notifier.HandleTask, jobs.QueueConfig{
		Workers:     nc.Workers,
		BufferSize:  nc.QueueBufferSize,
		TaskTimeout: nc.TaskTimeout,
		Logger:      logr,
	})
	q.Start(ctx)
	return q, func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), nc.WorkerShutdownDeadline)
		defer cancel()
		if err := q.Stop(stopCtx); err != nil {
			logr.Warn("notification workers did not drain", zap.Error(err))
		}
	}
}
