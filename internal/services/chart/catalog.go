package chart

import (
	"fmt"
	"sort"

	"Astrolabe/internal/domain/models"
)

// Catalog is an immutable, validated set of aspect definitions. Detection
// walks definitions in ascending exact angle.
type Catalog struct {
	defs   []models.AspectDefinition
	byType map[models.AspectType]models.AspectDefinition
}

var defaultDefinitions = []models.AspectDefinition{
	{Type: models.Conjunction, ExactAngle: 0, Orb: 8, Nature: models.Neutral, Major: true},
	{Type: models.SemiSextile, ExactAngle: 30, Orb: 3, Nature: models.Neutral},
	{Type: models.Sextile, ExactAngle: 60, Orb: 6, Nature: models.Harmonious, Major: true},
	{Type: models.Quintile, ExactAngle: 72, Orb: 2, Nature: models.Harmonious},
	{Type: models.Square, ExactAngle: 90, Orb: 8, Nature: models.Challenging, Major: true},
	{Type: models.Trine, ExactAngle: 120, Orb: 8, Nature: models.Harmonious, Major: true},
	{Type: models.BiQuintile, ExactAngle: 144, Orb: 2, Nature: models.Harmonious},
	{Type: models.Quincunx, ExactAngle: 150, Orb: 3, Nature: models.Challenging},
	{Type: models.Opposition, ExactAngle: 180, Orb: 8, Nature: models.Challenging, Major: true},
}

var defaultCatalog = mustCatalog(defaultDefinitions)

// DefaultCatalog returns the standard five major and four minor aspects.
func DefaultCatalog() *Catalog { return defaultCatalog }

// DefaultDefinitions returns a copy of the standard definitions, handy as a
// base for orb overrides.
func DefaultDefinitions() []models.AspectDefinition {
	out := make([]models.AspectDefinition, len(defaultDefinitions))
	copy(out, defaultDefinitions)
	return out
}

// NewCatalog validates defs and builds a catalog. Types must be unique,
// angles within [0,180], orbs positive, and no two orb ranges may overlap:
// the detector does not suppress duplicate matches, so the catalog must not
// produce them.
func NewCatalog(defs []models.AspectDefinition) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("%w: no definitions", ErrInvalidCatalog)
	}
	sorted := make([]models.AspectDefinition, len(defs))
	copy(sorted, defs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ExactAngle < sorted[j].ExactAngle })

	byType := make(map[models.AspectType]models.AspectDefinition, len(sorted))
	for i, d := range sorted {
		if d.Type == "" {
			return nil, fmt.Errorf("%w: definition %d has no type", ErrInvalidCatalog, i)
		}
		if _, dup := byType[d.Type]; dup {
			return nil, fmt.Errorf("%w: duplicate type %s", ErrInvalidCatalog, d.Type)
		}
		if d.ExactAngle < 0 || d.ExactAngle > 180 {
			return nil, fmt.Errorf("%w: %s angle %g outside [0,180]", ErrInvalidCatalog, d.Type, d.ExactAngle)
		}
		if !(d.Orb > 0) {
			return nil, fmt.Errorf("%w: %s orb must be positive", ErrInvalidCatalog, d.Type)
		}
		if i > 0 {
			prev := sorted[i-1]
			if prev.ExactAngle+prev.Orb >= d.ExactAngle-d.Orb {
				return nil, fmt.Errorf("%w: %s and %s orbs overlap", ErrInvalidCatalog, prev, d)
			}
		}
		byType[d.Type] = d
	}
	return &Catalog{defs: sorted, byType: byType}, nil
}

func mustCatalog(defs []models.AspectDefinition) *Catalog {
	c, err := NewCatalog(defs)
	if err != nil {
		panic(err)
	}
	return c
}

// WithOrbs returns a new catalog with the orbs of the named types replaced.
func (c *Catalog) WithOrbs(orbs map[models.AspectType]float64) (*Catalog, error) {
	defs := c.Definitions()
	seen := 0
	for i := range defs {
		if orb, ok := orbs[defs[i].Type]; ok {
			defs[i].Orb = orb
			seen++
		}
	}
	if seen != len(orbs) {
		for t := range orbs {
			if _, ok := c.byType[t]; !ok {
				return nil, fmt.Errorf("%w: unknown aspect type %s", ErrInvalidCatalog, t)
			}
		}
	}
	return NewCatalog(defs)
}

// Definitions returns a copy of the definitions in ascending angle order.
func (c *Catalog) Definitions() []models.AspectDefinition {
	out := make([]models.AspectDefinition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Lookup returns the definition for t.
func (c *Catalog) Lookup(t models.AspectType) (models.AspectDefinition, bool) {
	d, ok := c.byType[t]
	return d, ok
}

func (c *Catalog) Len() int { return len(c.defs) }
