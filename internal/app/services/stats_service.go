package services

import (
	"context"
	"time"

	"github.com/kindergarten-canvas/backend/internal/app/models/dto"
	"github.com/kindergarten-canvas/backend/internal/app/repositories"
	"github.com/kindergarten-canvas/backend/internal/pkg/cache"
	"github.com/rs/zerolog"
)

const contentCountsKey = "content-counts"

// StatsService serves the dashboard summary.
type StatsService interface {
	GetContentCounts(ctx context.Context) (*dto.ContentCounts, error)
	CountsInvalidator
}

type statsServiceImpl struct {
	newsRepo    repositories.INewsRepository
	teacherRepo repositories.ITeacherRepository
	cache       *cache.Helper
	logger      zerolog.Logger
}

// NewStatsService creates a new StatsService. A helper without a Redis
// client disables caching.
func NewStatsService(
	newsRepo repositories.INewsRepository,
	teacherRepo repositories.ITeacherRepository,
	cacheHelper *cache.Helper,
	logger zerolog.Logger,
) StatsService {
	if cacheHelper == nil {
		cacheHelper = cache.NewHelper(nil, cache.StatsConfig)
	}
	return &statsServiceImpl{
		newsRepo:    newsRepo,
		teacherRepo: teacherRepo,
		cache:       cacheHelper,
		logger:      logger,
	}
}

func (s *statsServiceImpl) GetContentCounts(ctx context.Context) (*dto.ContentCounts, error) {
	var counts dto.ContentCounts
	err := s.cache.GetOrLoad(ctx, contentCountsKey, &counts, func(ctx context.Context) (interface{}, error) {
		return s.loadCounts(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &counts, nil
}

// loadCounts leaves the sections this service does not manage at zero.
func (s *statsServiceImpl) loadCounts(ctx context.Context) (*dto.ContentCounts, error) {
	news, err := s.newsRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	teachers, err := s.teacherRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ContentCounts{News: news, Teachers: teachers}, nil
}

// InvalidateCounts drops the cached summary. Failures only delay freshness
// until the TTL expires, so they are logged.
func (s *statsServiceImpl) InvalidateCounts() {
	if !s.cache.Available() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, contentCountsKey); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to invalidate content counts")
	}
}
