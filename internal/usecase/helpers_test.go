package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"Astrolabe/internal/domain/models"
	"Astrolabe/internal/repository"
	"Astrolabe/internal/services/chart"
	"Astrolabe/pkg/metrics"
	applogger "Astrolabe/pkg/logger"
)

func uniformCusps() models.HouseCusps {
	c := make(models.HouseCusps, 12)
	for i := range c {
		c[i] = float64(i * 30)
	}
	return c
}

func ephemerisOf(lons map[models.BodyID]float64) models.EphemerisData {
	data := models.EphemerisData{Cusps: uniformCusps()}
	for _, id := range models.AllBodies() {
		if lon, ok := lons[id]; ok {
			data.Bodies = append(data.Bodies, models.CelestialBody{ID: id, Longitude: lon, Speed: 1})
		}
	}
	return data
}

type fakeProvider struct {
	mu    sync.Mutex
	calls []models.BirthData
	data  models.EphemerisData
	err   error
}

func (p *fakeProvider) Positions(_ context.Context, b models.BirthData) (models.EphemerisData, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, b)
	return p.data, p.err
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

type mapCache struct {
	m map[string]*models.StoredChart
}

func (c *mapCache) Get(_ context.Context, key string) (*models.StoredChart, bool) {
	v, ok := c.m[key]
	return v, ok
}

func (c *mapCache) Set(_ context.Context, key string, v *models.StoredChart) error {
	c.m[key] = v
	return nil
}

type fakePublisher struct {
	charts   []*models.StoredChart
	synastry []*models.SynastryReport
	err      error
}

func (p *fakePublisher) PublishChart(_ context.Context, c *models.StoredChart) error {
	p.charts = append(p.charts, c)
	return p.err
}

func (p *fakePublisher) PublishSynastry(_ context.Context, r *models.SynastryReport) error {
	p.synastry = append(p.synastry, r)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

type failingStore struct {
	*repository.MemoryChartStore
}

func (failingStore) Save(context.Context, *models.StoredChart) error {
	return errors.New("disk full")
}

type fixture struct {
	builder  *ChartBuilder
	provider *fakeProvider
	cache    *mapCache
	pub      *fakePublisher
	store    *repository.MemoryChartStore
}

func newFixture() *fixture {
	f := &fixture{
		provider: &fakeProvider{},
		cache:    &mapCache{m: map[string]*models.StoredChart{}},
		pub:      &fakePublisher{},
		store:    repository.NewMemoryChartStore(),
	}
	f.builder = NewChartBuilder(chart.NewAssembler(), f.provider, f.store, f.cache, f.pub, metrics.Nop{}, applogger.Nop())
	n := 0
	f.builder.newID = func() string {
		n++
		return fmt.Sprintf("chart-%d", n)
	}
	return f
}
