package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"Astrolabe/internal/domain/models"
	domrepo "Astrolabe/internal/domain/repository"
	domsvc "Astrolabe/internal/domain/service"
	applogger "Astrolabe/pkg/logger"
)

// ErrMissingChartRef means a synastry side named neither a chart id nor ephemeris data.
var ErrMissingChartRef = errors.New("synastry side needs chart_id or ephemeris")

// SynastrySide references a stored chart or carries data for a new one.
type SynastrySide struct {
	ChartID   string
	Subject   string
	Ephemeris *models.EphemerisData
}

type SynastryInput struct {
	A SynastrySide
	B SynastrySide
}

// Synastry compares two charts.
type Synastry struct {
	charts  *ChartBuilder
	scorer  domsvc.CompatibilityScorer
	pub     domrepo.EventPublisher
	metrics domrepo.Metrics
	log     *applogger.Logger

	newID func() string
	now   func() time.Time
}

func NewSynastry(charts *ChartBuilder, scorer domsvc.CompatibilityScorer, pub domrepo.EventPublisher, metrics domrepo.Metrics, log *applogger.Logger) *Synastry {
	return &Synastry{
		charts:  charts,
		scorer:  scorer,
		pub:     pub,
		metrics: metrics,
		log:     log,
		newID:   uuid.NewString,
		now:     time.Now,
	}
}

func (s *Synastry) Compare(ctx context.Context, in SynastryInput) (*models.SynastryReport, error) {
	a, err := s.resolve(ctx, in.A)
	if err != nil {
		return nil, fmt.Errorf("side a: %w", err)
	}
	b, err := s.resolve(ctx, in.B)
	if err != nil {
		return nil, fmt.Errorf("side b: %w", err)
	}

	start := time.Now()
	res, err := s.scorer.Score(&a.Chart, &b.Chart)
	s.metrics.RecordLatency("score", time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordError("score")
		return nil, fmt.Errorf("score charts: %w", err)
	}
	s.metrics.RecordCompatibility(res.OverallScore)

	r := &models.SynastryReport{
		ID:       s.newID(),
		ChartA:   a.ID,
		ChartB:   b.ID,
		Result:   *res,
		ScoredAt: s.now().UTC(),
	}
	if err := s.pub.PublishSynastry(ctx, r); err != nil {
		s.metrics.RecordError("publish")
		s.log.Warn("publish synastry event failed", applogger.String("synastry_id", r.ID), applogger.Error(err))
	}
	s.log.Info("synastry scored",
		applogger.String("chart_a", a.ID),
		applogger.String("chart_b", b.ID),
		applogger.Int("score", res.OverallScore),
		applogger.Int("cross_aspects", len(res.CrossAspects)),
	)
	return r, nil
}

func (s *Synastry) resolve(ctx context.Context, side SynastrySide) (*models.StoredChart, error) {
	switch {
	case side.ChartID != "":
		return s.charts.Get(ctx, side.ChartID)
	case side.Ephemeris != nil:
		return s.charts.FromEphemeris(ctx, side.Subject, *side.Ephemeris, nil)
	default:
		return nil, ErrMissingChartRef
	}
}
