package cache

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/architect/elective-advisor/internal/scoring"
	goredis "github.com/redis/go-redis/v9"
)

const populationKey = "electives:population:v1"

// Options configures the Redis connection of the population cache.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// PopulationCache stores the materialized peer population in Redis. A nil
// *PopulationCache is valid and caches nothing.
type PopulationCache struct {
	rdb *goredis.Client
	ttl time.Duration
}

// New connects to Redis and verifies the connection.
func New(opts Options) (*PopulationCache, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	if opts.TTL <= 0 {
		return nil, fmt.Errorf("population cache ttl must be positive")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &PopulationCache{rdb: rdb, ttl: opts.TTL}, nil
}

type cachedPopulation struct {
	Engagement     float64   `json:"engagement"`
	TimeEfficiency float64   `json:"time_efficiency"`
	Scores         []float64 `json:"scores"`
}

// Get returns the cached population. ok is false on a miss.
func (c *PopulationCache) Get(ctx context.Context) (pop *scoring.Population, ok bool, err error) {
	if c == nil {
		return nil, false, nil
	}
	raw, err := c.rdb.Get(ctx, populationKey).Bytes()
	if stderrors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var cached cachedPopulation
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false, fmt.Errorf("decode cached population: %w", err)
	}
	return &scoring.Population{
		Averages: scoring.PeerAverages{Engagement: cached.Engagement, TimeEfficiency: cached.TimeEfficiency},
		Scores:   cached.Scores,
	}, true, nil
}

// Set stores pop until the TTL expires or Invalidate is called.
func (c *PopulationCache) Set(ctx context.Context, pop *scoring.Population) error {
	if c == nil || pop == nil {
		return nil
	}
	raw, err := json.Marshal(cachedPopulation{
		Engagement:     pop.Averages.Engagement,
		TimeEfficiency: pop.Averages.TimeEfficiency,
		Scores:         pop.Scores,
	})
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, populationKey, raw, c.ttl).Err()
}

// Invalidate drops the cached population.
func (c *PopulationCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.rdb.Del(ctx, populationKey).Err()
}

// Ping reports whether Redis is reachable.
func (c *PopulationCache) Ping(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("population cache disabled")
	}
	return c.rdb.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (c *PopulationCache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
