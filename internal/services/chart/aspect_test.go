package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Astrolabe/internal/domain/models"
)

func TestDetectAspectsExactOpposition(t *testing.T) {
	got := DetectAspects(0, 180, nil)
	require.Len(t, got, 1)
	assert.Equal(t, models.Opposition, got[0].Definition.Type)
	assert.Equal(t, 180.0, got[0].AngularDifference)
	assert.Equal(t, 0.0, got[0].OrbDeviation)
	assert.Equal(t, 1.0, got[0].Strength)
}

func TestDetectAspectsWithinOrb(t *testing.T) {
	got := DetectAspects(0, 185, DefaultCatalog())
	require.Len(t, got, 1)
	assert.Equal(t, models.Opposition, got[0].Definition.Type)
	assert.InDelta(t, 175, got[0].AngularDifference, 1e-9)
	assert.InDelta(t, 5, got[0].OrbDeviation, 1e-9)
	assert.InDelta(t, 0.375, got[0].Strength, 1e-9)
}

func TestDetectAspectsMinorArcAcrossZero(t *testing.T) {
	got := DetectAspects(357, 3, nil)
	require.Len(t, got, 1)
	assert.Equal(t, models.Conjunction, got[0].Definition.Type)
	assert.InDelta(t, 6, got[0].AngularDifference, 1e-9)
	assert.InDelta(t, 0.25, got[0].Strength, 1e-9)

	// Inputs outside [0,360) are folded first.
	assert.Equal(t, DetectAspects(357, 3, nil), DetectAspects(-3, 363, nil))
}

func TestDetectAspectsNoMatch(t *testing.T) {
	assert.Empty(t, DetectAspects(0, 45, nil))
	assert.Empty(t, DetectAspects(0, 100, nil))
}

func TestDetectAspectsSymmetric(t *testing.T) {
	for a := 0.0; a < 360; a += 7.3 {
		for b := 0.0; b < 360; b += 11.7 {
			assert.Equal(t, DetectAspects(a, b, nil), DetectAspects(b, a, nil), "a=%v b=%v", a, b)
		}
	}
}

func TestDetectAspectsBoundaryInclusive(t *testing.T) {
	const eps = 1e-6
	for _, d := range DefaultCatalog().Definitions() {
		edges := []float64{d.ExactAngle + d.Orb}
		if d.ExactAngle-d.Orb >= 0 {
			edges = append(edges, d.ExactAngle-d.Orb)
		}
		for _, edge := range edges {
			in := DetectAspects(0, edge, nil)
			require.Len(t, in, 1, "%s at %v", d.Type, edge)
			assert.Equal(t, d.Type, in[0].Definition.Type)
			assert.InDelta(t, d.Orb, in[0].OrbDeviation, 1e-9)
			assert.InDelta(t, 0, in[0].Strength, 1e-9)

			outside := edge + eps
			if edge < d.ExactAngle {
				outside = edge - eps
			}
			for _, m := range DetectAspects(0, outside, nil) {
				assert.NotEqual(t, d.Type, m.Definition.Type, "%s at %v", d.Type, outside)
			}
		}
	}
}

func TestDetectAspectsBoundaryFractionalLongitudes(t *testing.T) {
	// 288.7-100.7 rounds to slightly more than 188.
	got := DetectAspects(100.7, 288.7, nil)
	require.Len(t, got, 1)
	assert.Equal(t, models.Opposition, got[0].Definition.Type)
	assert.InDelta(t, 8, got[0].OrbDeviation, 1e-9)
	assert.InDelta(t, 0, got[0].Strength, 1e-9)

	assert.Empty(t, DetectAspects(100.7, 288.8, nil))
}

func TestDetectAllAspectsSameChart(t *testing.T) {
	bodies := []Position{
		{ID: models.Sun, Longitude: 0},
		{ID: models.Moon, Longitude: 120},
		{ID: models.Mars, Longitude: 240},
	}
	got := DetectAllAspects(bodies, nil, DefaultDetectOptions)
	require.Len(t, got, 3)
	for _, a := range got {
		assert.Equal(t, models.Trine, a.Type)
		assert.NotEqual(t, a.BodyA, a.BodyB)
	}
	assert.Equal(t, models.Sun, got[0].BodyA)
	assert.Equal(t, models.Moon, got[0].BodyB)

	withSelf := DetectAllAspects(bodies, nil, DetectOptions{ExcludeSelfPairs: false})
	assert.Len(t, withSelf, 6)
}

func TestDetectCrossAspectsIncludesSameBody(t *testing.T) {
	a := []Position{{ID: models.Sun, Longitude: 10}}
	b := []Position{{ID: models.Sun, Longitude: 12}, {ID: models.Venus, Longitude: 104}}
	got := DetectCrossAspects(a, b, nil)
	require.Len(t, got, 2)
	assert.Equal(t, models.Sun, got[0].BodyA)
	assert.Equal(t, models.Sun, got[0].BodyB)
	assert.Equal(t, models.Conjunction, got[0].Type)
	assert.Equal(t, models.Square, got[1].Type)
	assert.InDelta(t, 0.5, got[1].Strength, 1e-9)
}
