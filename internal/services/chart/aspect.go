package chart

import (
	"math"

	"Astrolabe/internal/domain/models"
)

// Match is one aspect found between two longitudes, before bodies are attached.
type Match struct {
	Definition        models.AspectDefinition
	AngularDifference float64
	OrbDeviation      float64
	Strength          float64
}

// Position is a body longitude fed to the detector.
type Position struct {
	ID        models.BodyID
	Longitude float64
}

// DetectOptions tunes DetectAllAspects.
type DetectOptions struct {
	// ExcludeSelfPairs skips comparing a body with itself.
	ExcludeSelfPairs bool
}

// orbTolerance absorbs rounding in the longitude subtraction so a pair
// sitting exactly on the orb boundary still matches.
const orbTolerance = 1e-9

// DefaultDetectOptions excludes self pairs.
var DefaultDetectOptions = DetectOptions{ExcludeSelfPairs: true}

// DetectAspects returns every catalog aspect formed by two longitudes. The
// boundary is inclusive: a difference of exactly exact±orb still counts.
// The result is symmetric in a and b.
func DetectAspects(a, b float64, catalog *Catalog) []Match {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	diff := minorArc(NormalizeLongitude(a), NormalizeLongitude(b))
	if math.IsNaN(diff) {
		return nil
	}
	var out []Match
	for _, d := range catalog.defs {
		dev := math.Abs(diff - d.ExactAngle)
		if dev > d.Orb+orbTolerance {
			continue
		}
		out = append(out, Match{
			Definition:        d,
			AngularDifference: diff,
			OrbDeviation:      dev,
			Strength:          clamp01(1 - dev/d.Orb),
		})
	}
	return out
}

// DetectAllAspects finds aspects between every unordered pair of bodies in
// one chart, in input order.
func DetectAllAspects(bodies []Position, catalog *Catalog, opts DetectOptions) []models.Aspect {
	var out []models.Aspect
	for i := range bodies {
		j := i + 1
		if !opts.ExcludeSelfPairs {
			j = i
		}
		for ; j < len(bodies); j++ {
			out = appendMatches(out, bodies[i], bodies[j], catalog)
		}
	}
	return out
}

// DetectCrossAspects compares every body of a with every body of b. Bodies
// sharing an id are compared too: a Sun to Sun contact is meaningful here.
func DetectCrossAspects(a, b []Position, catalog *Catalog) []models.Aspect {
	var out []models.Aspect
	for _, pa := range a {
		for _, pb := range b {
			out = appendMatches(out, pa, pb, catalog)
		}
	}
	return out
}

func appendMatches(out []models.Aspect, a, b Position, catalog *Catalog) []models.Aspect {
	for _, m := range DetectAspects(a.Longitude, b.Longitude, catalog) {
		out = append(out, models.Aspect{
			BodyA:             a.ID,
			BodyB:             b.ID,
			Type:              m.Definition.Type,
			Nature:            m.Definition.Nature,
			AngularDifference: m.AngularDifference,
			OrbDeviation:      m.OrbDeviation,
			Strength:          m.Strength,
		})
	}
	return out
}

// Positions extracts detector input from a chart in canonical body order.
func Positions(c *models.NormalizedChart) []Position {
	ids := c.BodyOrder()
	out := make([]Position, 0, len(ids))
	for _, id := range ids {
		out = append(out, Position{ID: id, Longitude: c.Bodies[id].Longitude})
	}
	return out
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
