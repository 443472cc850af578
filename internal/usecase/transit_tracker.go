package usecase

import (
	"context"
	"fmt"
	"time"

	"Astrolabe/internal/domain/models"
	domrepo "Astrolabe/internal/domain/repository"
	domsvc "Astrolabe/internal/domain/service"
	applogger "Astrolabe/pkg/logger"
)

// TransitTracker compares the current sky with a natal chart.
type TransitTracker struct {
	charts    *ChartBuilder
	provider  domsvc.EphemerisProvider
	assembler domsvc.ChartAssembler
	scorer    domsvc.CompatibilityScorer
	metrics   domrepo.Metrics
	log       *applogger.Logger
	now       func() time.Time
}

func NewTransitTracker(
	charts *ChartBuilder,
	provider domsvc.EphemerisProvider,
	assembler domsvc.ChartAssembler,
	scorer domsvc.CompatibilityScorer,
	metrics domrepo.Metrics,
	log *applogger.Logger,
) *TransitTracker {
	return &TransitTracker{
		charts:    charts,
		provider:  provider,
		assembler: assembler,
		scorer:    scorer,
		metrics:   metrics,
		log:       log,
		now:       time.Now,
	}
}

// Snapshot returns the aspects transiting bodies at at make to the natal
// chart. BodyA of each aspect is the transiting body.
func (t *TransitTracker) Snapshot(ctx context.Context, chartID string, at time.Time) (*models.TransitSnapshot, error) {
	natal, err := t.charts.Get(ctx, chartID)
	if err != nil {
		return nil, err
	}
	return t.snapshot(ctx, natal, at)
}

// Stream sends one snapshot immediately and then one per interval until ctx
// ends or emit fails. Snapshot errors other than cancellation end the stream.
func (t *TransitTracker) Stream(ctx context.Context, chartID string, interval time.Duration, emit func(*models.TransitSnapshot) error) error {
	natal, err := t.charts.Get(ctx, chartID)
	if err != nil {
		return err
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		snap, err := t.snapshot(ctx, natal, t.now())
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if err := emit(snap); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (t *TransitTracker) snapshot(ctx context.Context, natal *models.StoredChart, at time.Time) (*models.TransitSnapshot, error) {
	sky := models.BirthData{Time: at.UTC(), HouseSystem: models.Placidus}
	if natal.Birth != nil {
		sky.Latitude = natal.Birth.Latitude
		sky.Longitude = natal.Birth.Longitude
		sky.HouseSystem = natal.Birth.HouseSystem
	}
	data, err := t.provider.Positions(ctx, sky)
	if err != nil {
		t.metrics.RecordError("ephemeris")
		return nil, fmt.Errorf("fetch transit positions: %w", err)
	}
	transit, err := t.assembler.Assemble(data.Bodies, data.Cusps)
	if err != nil {
		t.metrics.RecordError("assemble")
		return nil, fmt.Errorf("assemble transit chart: %w", err)
	}
	aspects := t.scorer.CrossAspects(transit, &natal.Chart)
	t.log.Debug("transit snapshot",
		applogger.String("chart_id", natal.ID),
		applogger.Int("aspects", len(aspects)),
	)
	return &models.TransitSnapshot{ChartID: natal.ID, At: sky.Time, Aspects: aspects}, nil
}
