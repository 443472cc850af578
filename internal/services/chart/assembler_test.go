package chart

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Astrolabe/internal/domain/models"
)

func TestAssemble(t *testing.T) {
	bodies := []models.CelestialBody{
		{ID: models.Mars, Longitude: 195},
		{ID: models.Sun, Longitude: 15, Speed: 1},
		{ID: models.Mercury, Longitude: 45, Speed: -0.5},
	}
	c, err := NewAssembler().Assemble(bodies, uniformCusps(0))
	require.NoError(t, err)
	require.Len(t, c.Bodies, 3)

	sun := c.Bodies[models.Sun]
	assert.Equal(t, models.Aries, sun.Sign)
	assert.InDelta(t, 15, sun.DegreeInSign, 1e-9)
	assert.Equal(t, 1, sun.House)
	assert.False(t, sun.Retrograde)

	mercury := c.Bodies[models.Mercury]
	assert.Equal(t, models.Taurus, mercury.Sign)
	assert.Equal(t, 2, mercury.House)
	assert.True(t, mercury.Retrograde)

	mars := c.Bodies[models.Mars]
	assert.Equal(t, models.Libra, mars.Sign)
	assert.Equal(t, 7, mars.House)

	assert.Equal(t, models.Angles{Ascendant: 0, ImumCoeli: 90, Descendant: 180, Midheaven: 270}, c.Angles)
	assert.Len(t, c.Houses, 12)

	require.Len(t, c.Aspects, 3)
	want := []struct {
		a, b models.BodyID
		typ  models.AspectType
	}{
		{models.Sun, models.Mercury, models.SemiSextile},
		{models.Sun, models.Mars, models.Opposition},
		{models.Mercury, models.Mars, models.Quincunx},
	}
	for i, w := range want {
		assert.Equal(t, w.a, c.Aspects[i].BodyA, "aspect %d", i)
		assert.Equal(t, w.b, c.Aspects[i].BodyB, "aspect %d", i)
		assert.Equal(t, w.typ, c.Aspects[i].Type, "aspect %d", i)
		assert.InDelta(t, 1, c.Aspects[i].Strength, 1e-9)
	}
}

func TestAssembleNormalizesLongitude(t *testing.T) {
	c, err := NewAssembler().Assemble([]models.CelestialBody{{ID: models.Moon, Longitude: -15}}, uniformCusps(0))
	require.NoError(t, err)
	moon := c.Bodies[models.Moon]
	assert.InDelta(t, 345, moon.Longitude, 1e-9)
	assert.Equal(t, models.Pisces, moon.Sign)
	assert.InDelta(t, 15, moon.DegreeInSign, 1e-9)
	assert.Equal(t, 12, moon.House)
	assert.Empty(t, c.Aspects)
}

func TestAssembleErrors(t *testing.T) {
	a := NewAssembler()

	_, err := a.Assemble(nil, uniformCusps(0))
	assert.ErrorIs(t, err, ErrIncompleteChartData)

	sun := []models.CelestialBody{{ID: models.Sun, Longitude: 10}}
	_, err = a.Assemble(sun, uniformCusps(0)[:11])
	assert.ErrorIs(t, err, ErrIncompleteChartData)
	assert.ErrorIs(t, err, ErrInvalidCuspData)

	dup := []models.CelestialBody{{ID: models.Sun, Longitude: 10}, {ID: models.Sun, Longitude: 20}}
	_, err = a.Assemble(dup, uniformCusps(0))
	assert.ErrorIs(t, err, ErrIncompleteChartData)

	unknown := []models.CelestialBody{{ID: models.BodyID(99), Longitude: 10}}
	_, err = a.Assemble(unknown, uniformCusps(0))
	assert.ErrorIs(t, err, ErrIncompleteChartData)

	nan := []models.CelestialBody{{ID: models.Sun, Longitude: math.NaN()}}
	_, err = a.Assemble(nan, uniformCusps(0))
	assert.ErrorIs(t, err, ErrInvalidLongitude)
	assert.True(t, IsInputError(err))
}

func TestAssembleStrictHouses(t *testing.T) {
	a := NewAssembler(WithStrictHouses(true))
	c, err := a.Assemble([]models.CelestialBody{{ID: models.Venus, Longitude: 5}}, placidusLike)
	require.NoError(t, err)
	assert.Equal(t, 6, c.Bodies[models.Venus].House)
}

func TestAssembleCustomCatalog(t *testing.T) {
	cat, err := NewCatalog([]models.AspectDefinition{
		{Type: models.Opposition, ExactAngle: 180, Orb: 1, Nature: models.Challenging, Major: true},
	})
	require.NoError(t, err)

	bodies := []models.CelestialBody{
		{ID: models.Sun, Longitude: 0},
		{ID: models.Moon, Longitude: 120},
		{ID: models.Saturn, Longitude: 180.5},
	}
	c, err := NewAssembler(WithCatalog(cat)).Assemble(bodies, uniformCusps(0))
	require.NoError(t, err)
	require.Len(t, c.Aspects, 1)
	assert.Equal(t, models.Opposition, c.Aspects[0].Type)
	assert.Len(t, NewAssembler(WithCatalog(cat)).Catalog(), 1)
}
