package chart

import (
	"errors"
	"fmt"

	"Astrolabe/internal/domain/models"
)

// HouseCount is the number of houses and therefore of cusps.
const HouseCount = 12

// ValidateCusps checks that cusps holds exactly 12 normalized longitudes.
func ValidateCusps(cusps models.HouseCusps) error {
	if len(cusps) != HouseCount {
		return fmt.Errorf("%w: want %d cusps, got %d", ErrInvalidCuspData, HouseCount, len(cusps))
	}
	for i, c := range cusps {
		if !validLongitude(c) {
			return fmt.Errorf("%w: cusp %d out of range: %v", ErrInvalidCuspData, i+1, c)
		}
	}
	return nil
}

// ResolveHouse returns the house (1..12) containing longitude. When no
// segment matches, which only happens with malformed cusps, it falls back to
// house 1 so that chart rendering is never blocked.
func ResolveHouse(longitude float64, cusps models.HouseCusps) (int, error) {
	house, err := ResolveHouseStrict(longitude, cusps)
	if err == nil {
		return house, nil
	}
	if errors.Is(err, ErrHouseResolution) {
		return 1, nil
	}
	return 0, err
}

// ResolveHouseStrict is ResolveHouse without the house 1 fallback.
func ResolveHouseStrict(longitude float64, cusps models.HouseCusps) (int, error) {
	if err := ValidateCusps(cusps); err != nil {
		return 0, err
	}
	if !validLongitude(longitude) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidLongitude, longitude)
	}
	for i := 0; i < HouseCount; i++ {
		start, end := cusps[i], cusps[(i+1)%HouseCount]
		if end > start {
			if longitude >= start && longitude < end {
				return i + 1, nil
			}
			continue
		}
		// Segment wraps through 0°.
		if longitude >= start || longitude < end {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: %v", ErrHouseResolution, longitude)
}
