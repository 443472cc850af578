package chart

import (
	"fmt"
	"math"

	"Astrolabe/internal/domain/models"
)

const signWidth = 30.0

// ResolveSign maps a normalized longitude to its sign and the degree within
// it. Bands are half-open, so 30° is 0° Taurus.
func ResolveSign(longitude float64) (models.Sign, float64, error) {
	if !validLongitude(longitude) {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidLongitude, longitude)
	}
	idx := int(math.Floor(longitude / signWidth))
	if idx >= models.SignCount {
		idx = models.SignCount - 1
	}
	return models.Sign(idx), longitude - float64(idx)*signWidth, nil
}
