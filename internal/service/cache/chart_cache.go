package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"Astrolabe/internal/domain/models"
	"Astrolabe/internal/domain/repository"
	applogger "Astrolabe/pkg/logger"
)

// ChartCache stores assembled charts as JSON in a BytesCache.
type ChartCache struct {
	store  BytesCache
	ttl    time.Duration
	prefix string
	log    *applogger.Logger
}

func NewChartCache(store BytesCache, ttl time.Duration, log *applogger.Logger) *ChartCache {
	return &ChartCache{store: store, ttl: ttl, prefix: "astrolabe:chart:", log: log}
}

// Get treats backend and decode errors as a miss.
func (c *ChartCache) Get(ctx context.Context, key string) (*models.StoredChart, bool) {
	b, ok, err := c.store.GetBytes(ctx, c.prefix+key)
	if err != nil {
		c.log.Warn("chart cache read failed", applogger.String("key", key), applogger.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var sc models.StoredChart
	if err := json.Unmarshal(b, &sc); err != nil {
		c.log.Warn("chart cache entry corrupt", applogger.String("key", key), applogger.Error(err))
		return nil, false
	}
	return &sc, true
}

func (c *ChartCache) Set(ctx context.Context, key string, sc *models.StoredChart) error {
	b, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("encode chart: %w", err)
	}
	return c.store.SetBytes(ctx, c.prefix+key, b, c.ttl)
}

var _ repository.ChartCache = (*ChartCache)(nil)
