package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"Astrolabe/internal/domain/models"
	domrepo "Astrolabe/internal/domain/repository"
	domsvc "Astrolabe/internal/domain/service"
	applogger "Astrolabe/pkg/logger"
)

// Chart sources, used as the metrics label.
const (
	SourceEphemeris = "ephemeris"
	SourceProvider  = "provider"
	SourceKafka     = "kafka"
)

// ChartBuilder turns ephemeris output into stored charts.
type ChartBuilder struct {
	assembler domsvc.ChartAssembler
	provider  domsvc.EphemerisProvider
	store     domrepo.ChartStore
	cache     domrepo.ChartCache
	pub       domrepo.EventPublisher
	metrics   domrepo.Metrics
	log       *applogger.Logger

	newID func() string
	now   func() time.Time
}

func NewChartBuilder(
	assembler domsvc.ChartAssembler,
	provider domsvc.EphemerisProvider,
	store domrepo.ChartStore,
	cache domrepo.ChartCache,
	pub domrepo.EventPublisher,
	metrics domrepo.Metrics,
	log *applogger.Logger,
) *ChartBuilder {
	return &ChartBuilder{
		assembler: assembler,
		provider:  provider,
		store:     store,
		cache:     cache,
		pub:       pub,
		metrics:   metrics,
		log:       log,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// FromEphemeris assembles data, stores the chart and publishes chart.assembled.
// birth is optional and only recorded with the chart.
func (b *ChartBuilder) FromEphemeris(ctx context.Context, subject string, data models.EphemerisData, birth *models.BirthData) (*models.StoredChart, error) {
	return b.build(ctx, SourceEphemeris, subject, data, birth)
}

// Ingest is FromEphemeris for charts arriving over Kafka.
func (b *ChartBuilder) Ingest(ctx context.Context, subject string, data models.EphemerisData, birth *models.BirthData) (*models.StoredChart, error) {
	return b.build(ctx, SourceKafka, subject, data, birth)
}

// FromBirthData asks the provider for positions unless an identical birth was
// assembled recently.
func (b *ChartBuilder) FromBirthData(ctx context.Context, subject string, birth models.BirthData) (*models.StoredChart, error) {
	if birth.HouseSystem == "" {
		birth.HouseSystem = models.Placidus
	}
	key := BirthKey(birth)
	if c, ok := b.cache.Get(ctx, key); ok {
		b.metrics.RecordCacheLookup(true)
		b.log.Debug("chart cache hit", applogger.String("chart_id", c.ID), applogger.String("key", key))
		return c, nil
	}
	b.metrics.RecordCacheLookup(false)

	start := time.Now()
	data, err := b.provider.Positions(ctx, birth)
	b.metrics.RecordLatency("ephemeris", time.Since(start).Seconds())
	if err != nil {
		b.metrics.RecordError("ephemeris")
		b.log.Error("ephemeris lookup failed", applogger.Error(err))
		return nil, fmt.Errorf("fetch positions: %w", err)
	}

	c, err := b.build(ctx, SourceProvider, subject, data, &birth)
	if err != nil {
		return nil, err
	}
	if err := b.cache.Set(ctx, key, c); err != nil {
		b.log.Warn("chart cache set failed", applogger.String("chart_id", c.ID), applogger.Error(err))
	}
	return c, nil
}

// Get loads a stored chart. Unknown ids return domrepo.ErrChartNotFound.
func (b *ChartBuilder) Get(ctx context.Context, id string) (*models.StoredChart, error) {
	c, err := b.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load chart %s: %w", id, err)
	}
	return c, nil
}

// Catalog returns the aspect definitions the assembler uses.
func (b *ChartBuilder) Catalog() []models.AspectDefinition {
	return b.assembler.Catalog()
}

func (b *ChartBuilder) Health(ctx context.Context) error {
	return b.store.Health(ctx)
}

func (b *ChartBuilder) build(ctx context.Context, source, subject string, data models.EphemerisData, birth *models.BirthData) (*models.StoredChart, error) {
	start := time.Now()
	nc, err := b.assembler.Assemble(data.Bodies, data.Cusps)
	b.metrics.RecordLatency("assemble", time.Since(start).Seconds())
	if err != nil {
		b.metrics.RecordError("assemble")
		b.log.Warn("chart assembly rejected input",
			applogger.String("source", source),
			applogger.String("subject", subject),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("assemble chart: %w", err)
	}

	c := &models.StoredChart{
		ID:        b.newID(),
		Subject:   subject,
		Birth:     birth,
		Chart:     *nc,
		CreatedAt: b.now().UTC(),
	}
	if err := b.store.Save(ctx, c); err != nil {
		b.metrics.RecordError("store")
		return nil, fmt.Errorf("store chart: %w", err)
	}
	b.metrics.RecordChartAssembled(source, len(nc.Bodies), len(nc.Aspects))

	if err := b.pub.PublishChart(ctx, c); err != nil {
		b.metrics.RecordError("publish")
		b.log.Warn("publish chart event failed", applogger.String("chart_id", c.ID), applogger.Error(err))
	}
	b.log.Info("chart assembled",
		applogger.String("chart_id", c.ID),
		applogger.String("source", source),
		applogger.Int("bodies", len(nc.Bodies)),
		applogger.Int("aspects", len(nc.Aspects)),
	)
	return c, nil
}

// BirthKey fingerprints the inputs the provider sees.
func BirthKey(b models.BirthData) string {
	h := sha256.New()
	h.Write([]byte(b.Time.UTC().Format(time.RFC3339Nano)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatFloat(b.Latitude, 'f', -1, 64)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatFloat(b.Longitude, 'f', -1, 64)))
	h.Write([]byte{0})
	h.Write([]byte(b.HouseSystem))
	return hex.EncodeToString(h.Sum(nil))
}
