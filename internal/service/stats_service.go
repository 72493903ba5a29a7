package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ensa-dev/student-records-api/internal/models"
	appErrors "github.com/ensa-dev/student-records-api/pkg/errors"
)

const (
	statsSummaryCacheKey = "stats:summary"
	recentStudentsLimit  = 5
)

type statsRepository interface {
	CountAll(ctx context.Context) (int, error)
	GroupCount(ctx context.Context, field string) ([]models.GroupCount, error)
	Recent(ctx context.Context, limit int) ([]models.Student, error)
}

// StatsService composes the dashboard summary over the student table.
type StatsService struct {
	repo   statsRepository
	cache  *CacheService
	logger *zap.Logger
}

// NewStatsService constructs the stats service.
func NewStatsService(repo statsRepository, cache *CacheService, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{repo: repo, cache: cache, logger: logger}
}

// Summary returns roster statistics and indicates cache utilisation.
func (s *StatsService) Summary(ctx context.Context) (*models.StudentStats, bool, error) {
	if s.cache != nil {
		var cached models.StudentStats
		if hit, err := s.cache.Get(ctx, statsSummaryCacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	total, err := s.repo.CountAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	byFiliere, err := s.repo.GroupCount(ctx, "filiere")
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to group by filiere")
	}
	byNiveau, err := s.repo.GroupCount(ctx, "niveau")
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to group by niveau")
	}
	recent, err := s.repo.Recent(ctx, recentStudentsLimit)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent students")
	}

	stats := &models.StudentStats{
		TotalStudents:  total,
		ParFiliere:     byFiliere,
		ParNiveau:      byNiveau,
		RecentStudents: recent,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, statsSummaryCacheKey, stats, 0); err != nil {
			s.logger.Warn("failed to cache stats summary", zap.Error(err))
		}
	}

	return stats, false, nil
}
