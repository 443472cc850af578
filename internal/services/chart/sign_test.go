package chart

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Astrolabe/internal/domain/models"
)

func TestResolveSign(t *testing.T) {
	cases := []struct {
		lon  float64
		sign models.Sign
		deg  float64
	}{
		{0, models.Aries, 0},
		{29.999, models.Aries, 29.999},
		{30, models.Taurus, 0},
		{95.5, models.Cancer, 5.5},
		{359.5, models.Pisces, 29.5},
	}
	for _, tc := range cases {
		sign, deg, err := ResolveSign(tc.lon)
		require.NoError(t, err, "lon %v", tc.lon)
		assert.Equal(t, tc.sign, sign, "lon %v", tc.lon)
		assert.InDelta(t, tc.deg, deg, 1e-9, "lon %v", tc.lon)
	}
}

func TestResolveSignRejectsOutOfRange(t *testing.T) {
	for _, lon := range []float64{-0.001, 360, 725, math.NaN(), math.Inf(1)} {
		_, _, err := ResolveSign(lon)
		assert.ErrorIs(t, err, ErrInvalidLongitude, "lon %v", lon)
	}
}

func TestSignBandsPartitionCircle(t *testing.T) {
	seen := make(map[models.Sign]int)
	for i := 0; i < 3600; i++ {
		lon := float64(i) / 10
		sign, deg, err := ResolveSign(lon)
		require.NoError(t, err)
		require.True(t, deg >= 0 && deg < 30, "degree %v at %v", deg, lon)
		require.Equal(t, models.Sign(i/300), sign, "lon %v", lon)
		seen[sign]++
	}
	assert.Len(t, seen, models.SignCount)
	for s, n := range seen {
		assert.Equal(t, 300, n, "sign %s", s)
	}
}

func TestNormalizeLongitude(t *testing.T) {
	cases := map[float64]float64{
		-30:   330,
		720.5: 0.5,
		360:   0,
		0:     0,
		-360:  0,
		45:    45,
	}
	for in, want := range cases {
		assert.InDelta(t, want, NormalizeLongitude(in), 1e-9, "in %v", in)
	}
	assert.False(t, math.Signbit(NormalizeLongitude(math.Copysign(0, -1))))
}

func TestSignClassification(t *testing.T) {
	assert.Equal(t, models.Fire, models.Leo.Element())
	assert.Equal(t, models.Water, models.Pisces.Element())
	assert.Equal(t, models.Fixed, models.Scorpio.Modality())
	assert.Equal(t, models.Mutable, models.Sagittarius.Modality())
	assert.Equal(t, models.Cardinal, models.Capricorn.Modality())
}
