package repository

import (
	"context"
	"errors"

	"Astrolabe/internal/domain/models"
)

// ErrChartNotFound is returned by ChartStore.Get for unknown ids.
var ErrChartNotFound = errors.New("chart not found")

// ChartStore persists assembled charts.
type ChartStore interface {
	Init(ctx context.Context) error // ensure tables
	Save(ctx context.Context, c *models.StoredChart) error
	Get(ctx context.Context, id string) (*models.StoredChart, error)
	Health(ctx context.Context) error
	Close() error
}

// Event topics published by the service.
const (
	EventChartAssembled = "chart.assembled"
	EventSynastryScored = "synastry.scored"
)

// EventPublisher fans out domain events.
type EventPublisher interface {
	PublishChart(ctx context.Context, c *models.StoredChart) error
	PublishSynastry(ctx context.Context, r *models.SynastryReport) error
	Close() error
}

// ChartCache holds assembled charts keyed by a birth data fingerprint.
type ChartCache interface {
	Get(ctx context.Context, key string) (*models.StoredChart, bool)
	Set(ctx context.Context, key string, c *models.StoredChart) error
}

type Metrics interface {
	RecordChartAssembled(source string, bodies, aspects int)
	RecordCompatibility(score int)
	RecordCacheLookup(hit bool)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
