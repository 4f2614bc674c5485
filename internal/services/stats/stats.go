// Package stats отдает сводную статистику админской панели с кешированием в Redis.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/WarmUp-AI/WebDev/internal/lib/sl"
	"github.com/WarmUp-AI/WebDev/internal/models"
)

const (
	cacheKey = "admin:stats"
	cacheTTL = 60 * time.Second
)

// StatsRepository считает агрегаты по базе данных.
type StatsRepository interface {
	CountStats(ctx context.Context) (*models.Stats, error)
}

// StatsCache описывает кеш для сводной статистики.
type StatsCache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

// StatsService отвечает за подсчет сводной статистики.
type StatsService struct {
	log   *slog.Logger
	repo  StatsRepository
	cache StatsCache
}

// NewStatsService создает новый экземпляр StatsService.
func NewStatsService(log *slog.Logger, repo StatsRepository, cache StatsCache) *StatsService {
	return &StatsService{
		log:   log,
		repo:  repo,
		cache: cache,
	}
}

// Count возвращает сводную статистику, из кеша при наличии.
// Сбой кеша не блокирует ответ, агрегаты считаются по базе.
func (s *StatsService) Count(ctx context.Context) (*models.Stats, error) {
	const op = "stats.Count"

	if s.cache != nil {
		var cached models.Stats
		found, err := s.cache.Get(cacheKey, &cached)
		if err != nil {
			s.log.Warn("failed to read stats from cache", sl.Err(err))
		}
		if found {
			return &cached, nil
		}
	}

	result, err := s.repo.CountStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(cacheKey, result, cacheTTL); err != nil {
			s.log.Warn("failed to save stats to cache", sl.Err(err))
		}
	}
	return result, nil
}
