package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
	appErrors "github.com/sravanmaichrla/campus-placement-hub/pkg/errors"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CacheService keeps job detail payloads in Redis. Cache failures never fail the caller.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service. A nil repo or enabled=false makes every call a miss.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Job returns the cached detail of job id, if present.
func (s *CacheService) Job(ctx context.Context, id int64) (*models.JobDetail, bool) {
	if !s.Enabled() {
		return nil, false
	}
	key := jobCacheKey(id)
	start := time.Now()
	var detail models.JobDetail
	err := s.repo.Get(ctx, key, &detail)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return &detail, true
}

// PutJob caches detail for ttl, or the default TTL when ttl <= 0.
func (s *CacheService) PutJob(ctx context.Context, detail *models.JobDetail, ttl time.Duration) {
	if !s.Enabled() || detail == nil {
		return
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	key := jobCacheKey(detail.ID)
	start := time.Now()
	err := s.repo.Set(ctx, key, detail, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// DropJob evicts job id after a write.
func (s *CacheService) DropJob(ctx context.Context, id int64) {
	if !s.Enabled() {
		return
	}
	if err := s.repo.Delete(ctx, jobCacheKey(id)); err != nil {
		s.logger.Warn("cache invalidate failed", zap.Int64("job_id", id), zap.Error(err))
	}
}

func jobCacheKey(id int64) string {
	return fmt.Sprintf("job:%d", id)
}
