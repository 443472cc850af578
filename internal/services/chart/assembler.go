package chart

import (
	"fmt"

	"Astrolabe/internal/domain/models"
	domsvc "Astrolabe/internal/domain/service"
)

// Assembler turns raw ephemeris bodies and cusps into a NormalizedChart. It
// holds only immutable configuration and is safe for concurrent use.
type Assembler struct {
	catalog      *Catalog
	strictHouses bool
}

// AssemblerOption configures Assembler.
type AssemblerOption func(*Assembler)

// WithCatalog sets the aspect catalog (default: DefaultCatalog).
func WithCatalog(c *Catalog) AssemblerOption {
	return func(a *Assembler) {
		if c != nil {
			a.catalog = c
		}
	}
}

// WithStrictHouses makes an unmatched house an error instead of house 1.
func WithStrictHouses(strict bool) AssemblerOption {
	return func(a *Assembler) {
		a.strictHouses = strict
	}
}

func NewAssembler(opts ...AssemblerOption) *Assembler {
	a := &Assembler{catalog: DefaultCatalog()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble resolves sign, house and retrograde flag for every body, derives
// the angles and detects same-chart aspects. Either a complete chart or an
// error is returned.
func (a *Assembler) Assemble(bodies []models.CelestialBody, cusps models.HouseCusps) (*models.NormalizedChart, error) {
	if len(bodies) == 0 {
		return nil, fmt.Errorf("%w: no bodies", ErrIncompleteChartData)
	}
	houses := make(models.HouseCusps, len(cusps))
	for i, c := range cusps {
		houses[i] = NormalizeLongitude(c)
	}
	if err := ValidateCusps(houses); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIncompleteChartData, err)
	}

	resolveHouse := ResolveHouse
	if a.strictHouses {
		resolveHouse = ResolveHouseStrict
	}

	placements := make(map[models.BodyID]models.BodyPlacement, len(bodies))
	for _, b := range bodies {
		if !b.ID.Valid() {
			return nil, fmt.Errorf("%w: unknown body id %d", ErrIncompleteChartData, int(b.ID))
		}
		if _, dup := placements[b.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate body %s", ErrIncompleteChartData, b.ID)
		}
		lon := NormalizeLongitude(b.Longitude)
		sign, deg, err := ResolveSign(lon)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.ID, err)
		}
		house, err := resolveHouse(lon, houses)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.ID, err)
		}
		placements[b.ID] = models.BodyPlacement{
			Longitude:    lon,
			Sign:         sign,
			DegreeInSign: deg,
			House:        house,
			Retrograde:   b.Speed < 0,
		}
	}

	chart := &models.NormalizedChart{
		Bodies: placements,
		Houses: []float64(houses),
		Angles: AnglesFromCusps(houses),
	}
	chart.Aspects = DetectAllAspects(Positions(chart), a.catalog, DefaultDetectOptions)
	return chart, nil
}

// Catalog returns the definitions the assembler detects with.
func (a *Assembler) Catalog() []models.AspectDefinition { return a.catalog.Definitions() }

// AspectCatalog exposes the underlying catalog for cross-chart detection.
func (a *Assembler) AspectCatalog() *Catalog { return a.catalog }

// AnglesFromCusps derives the four angles from validated cusps.
func AnglesFromCusps(cusps models.HouseCusps) models.Angles {
	return models.Angles{
		Ascendant:  cusps[0],
		ImumCoeli:  cusps[3],
		Descendant: cusps[6],
		Midheaven:  cusps[9],
	}
}

var _ domsvc.ChartAssembler = (*Assembler)(nil)
