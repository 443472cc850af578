package repository

import (
	"context"
	"sync"

	"Astrolabe/internal/domain/models"
	"Astrolabe/internal/domain/repository"
)

// MemoryChartStore keeps charts in process. Charts are copied on the way
// in and out so callers cannot mutate stored state.
type MemoryChartStore struct {
	mu     sync.RWMutex
	charts map[string]models.StoredChart
}

func NewMemoryChartStore() *MemoryChartStore {
	return &MemoryChartStore{charts: make(map[string]models.StoredChart)}
}

func (s *MemoryChartStore) Init(context.Context) error { return nil }

func (s *MemoryChartStore) Save(_ context.Context, c *models.StoredChart) error {
	s.mu.Lock()
	s.charts[c.ID] = cloneStored(c)
	s.mu.Unlock()
	return nil
}

func (s *MemoryChartStore) Get(_ context.Context, id string) (*models.StoredChart, error) {
	s.mu.RLock()
	c, ok := s.charts[id]
	s.mu.RUnlock()
	if !ok {
		return nil, repository.ErrChartNotFound
	}
	out := cloneStored(&c)
	return &out, nil
}

func (s *MemoryChartStore) Health(context.Context) error { return nil }

func (s *MemoryChartStore) Close() error { return nil }

func cloneStored(c *models.StoredChart) models.StoredChart {
	out := *c
	if c.Birth != nil {
		b := *c.Birth
		out.Birth = &b
	}
	out.Chart.Bodies = make(map[models.BodyID]models.BodyPlacement, len(c.Chart.Bodies))
	for k, v := range c.Chart.Bodies {
		out.Chart.Bodies[k] = v
	}
	out.Chart.Houses = append([]float64(nil), c.Chart.Houses...)
	out.Chart.Aspects = append([]models.Aspect(nil), c.Chart.Aspects...)
	return out
}

var _ repository.ChartStore = (*MemoryChartStore)(nil)
