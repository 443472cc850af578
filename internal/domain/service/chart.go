package service

import (
	"context"

	"Astrolabe/internal/domain/models"
)

// ChartAssembler builds a normalized chart from raw ephemeris output.
type ChartAssembler interface {
	Assemble(bodies []models.CelestialBody, cusps models.HouseCusps) (*models.NormalizedChart, error)
	Catalog() []models.AspectDefinition
}

// CompatibilityScorer compares two normalized charts.
type CompatibilityScorer interface {
	Score(a, b *models.NormalizedChart) (*models.CompatibilityResult, error)
	CrossAspects(a, b *models.NormalizedChart) []models.Aspect
}

// EphemerisProvider is the remote service computing body positions and cusps.
type EphemerisProvider interface {
	Positions(ctx context.Context, birth models.BirthData) (models.EphemerisData, error)
}
