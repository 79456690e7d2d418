package services

import (
	"context"
	"sync"

	"github.com/architect/elective-advisor/internal/electives/repository"
	"github.com/architect/elective-advisor/internal/metrics"
	"github.com/architect/elective-advisor/internal/scoring"
	"github.com/architect/elective-advisor/pkg/logger"
	"go.uber.org/zap"
)

// PopulationCache memoizes the peer population between attempt submissions.
type PopulationCache interface {
	Get(ctx context.Context) (*scoring.Population, bool, error)
	Set(ctx context.Context, pop *scoring.Population) error
	Invalidate(ctx context.Context) error
}

// Publisher pushes an event to the live connections of one user.
type Publisher interface {
	Publish(userID uint, eventType string, payload interface{})
}

// EventRecommendationUpdated is published after a recommendation is stored.
const EventRecommendationUpdated = "recommendation.updated"

var deps struct {
	sync.RWMutex
	cache     PopulationCache
	publisher Publisher
}

// SetPopulationCache installs the cache used for peer comparisons. nil disables caching.
func SetPopulationCache(c PopulationCache) {
	deps.Lock()
	defer deps.Unlock()
	deps.cache = c
}

// SetPublisher installs the live update publisher. nil disables publishing.
func SetPublisher(p Publisher) {
	deps.Lock()
	defer deps.Unlock()
	deps.publisher = p
}

func populationCache() PopulationCache {
	deps.RLock()
	defer deps.RUnlock()
	return deps.cache
}

func publish(userID uint, eventType string, payload interface{}) {
	deps.RLock()
	p := deps.publisher
	deps.RUnlock()
	if p != nil {
		p.Publish(userID, eventType, payload)
	}
}

// loadPopulation returns the peer population, preferring the cache. Cache
// failures fall back to the database.
func loadPopulation(ctx context.Context) (*scoring.Population, error) {
	c := populationCache()
	if c != nil {
		pop, ok, err := c.Get(ctx)
		if err != nil {
			logger.Warn("population cache read failed", zap.Error(err))
		}
		if ok {
			metrics.PopulationCacheHits.Inc()
			return pop, nil
		}
		metrics.PopulationCacheMisses.Inc()
	}

	pop, err := repository.LoadPopulation(ctx)
	if err != nil {
		return nil, err
	}

	if c != nil {
		if err := c.Set(ctx, pop); err != nil {
			logger.Warn("population cache write failed", zap.Error(err))
		}
	}
	return pop, nil
}

func invalidatePopulation(ctx context.Context) {
	c := populationCache()
	if c == nil {
		return
	}
	if err := c.Invalidate(ctx); err != nil {
		logger.Warn("population cache invalidation failed", zap.Error(err))
	}
}
