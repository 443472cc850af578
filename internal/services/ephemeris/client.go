package ephemeris

import (
	"context"
	"fmt"
	"time"

	"Astrolabe/internal/domain/models"
	domsvc "Astrolabe/internal/domain/service"
	xhttp "Astrolabe/pkg/http"
	applogger "Astrolabe/pkg/logger"
)

// Option configures HTTPProvider.
type Option func(*httpServiceBase)

// WithRetry sets the attempt count and backoff range.
func WithRetry(attempts int, min, max time.Duration) Option {
	return func(b *httpServiceBase) {
		b.attempts = attempts
		b.backoffMin = min
		b.backoffMax = max
	}
}

// HTTPProvider asks a remote ephemeris service for positions.
type HTTPProvider struct {
	base *httpServiceBase
}

func NewHTTPProvider(baseURL string, timeout time.Duration, log *applogger.Logger, opts ...Option) *HTTPProvider {
	b := &httpServiceBase{
		client:     xhttp.NewClient(xhttp.WithBaseURL(baseURL), xhttp.WithTimeout(timeout)),
		log:        log,
		attempts:   3,
		backoffMin: 200 * time.Millisecond,
		backoffMax: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(b)
	}
	return &HTTPProvider{base: b}
}

type positionsRequest struct {
	Time        time.Time          `json:"time"`
	Latitude    float64            `json:"latitude"`
	Longitude   float64            `json:"longitude"`
	HouseSystem models.HouseSystem `json:"house_system"`
	Bodies      []models.BodyID    `json:"bodies"`
}

type positionsResponse struct {
	Bodies []models.CelestialBody `json:"bodies"`
	Cusps  []float64              `json:"cusps"`
	Angles *models.Angles         `json:"angles"`
}

// Positions returns every known body plus the cusps for birth. The payload
// is passed through as received; the chart assembler validates it.
func (p *HTTPProvider) Positions(ctx context.Context, birth models.BirthData) (models.EphemerisData, error) {
	hs := birth.HouseSystem
	if hs == "" {
		hs = models.Placidus
	}
	req := positionsRequest{
		Time:        birth.Time.UTC(),
		Latitude:    birth.Latitude,
		Longitude:   birth.Longitude,
		HouseSystem: hs,
		Bodies:      models.AllBodies(),
	}

	var resp positionsResponse
	if err := p.base.postJSONWithRetry(ctx, "/positions", req, &resp); err != nil {
		return models.EphemerisData{}, err
	}
	if len(resp.Bodies) == 0 {
		return models.EphemerisData{}, fmt.Errorf("%w: empty positions payload", ErrUnavailable)
	}
	return models.EphemerisData{
		Bodies: resp.Bodies,
		Cusps:  models.HouseCusps(resp.Cusps),
		Angles: resp.Angles,
	}, nil
}

var _ domsvc.EphemerisProvider = (*HTTPProvider)(nil)
