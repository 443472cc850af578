package chart

import "errors"

// Input errors. They describe malformed collaborator data and are never
// worth retrying.
var (
	ErrInvalidLongitude    = errors.New("chart: invalid longitude")
	ErrInvalidCuspData     = errors.New("chart: invalid cusp data")
	ErrIncompleteChartData = errors.New("chart: incomplete chart data")
	ErrHouseResolution     = errors.New("chart: no house matches longitude")
	ErrInvalidCatalog      = errors.New("chart: invalid aspect catalog")
)

// IsInputError reports whether err was caused by bad engine input.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidLongitude) ||
		errors.Is(err, ErrInvalidCuspData) ||
		errors.Is(err, ErrIncompleteChartData) ||
		errors.Is(err, ErrHouseResolution)
}
