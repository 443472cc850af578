package models

// Requests for the chart HTTP endpoints.

// ChartRequest builds a chart either from birth data, through the ephemeris
// service, or from ephemeris output the caller already has.
type ChartRequest struct {
	Subject   string         `json:"subject" validate:"max=200"`
	Birth     *BirthData     `json:"birth" validate:"required_without=Ephemeris,excluded_with=Ephemeris"`
	Ephemeris *EphemerisData `json:"ephemeris"`
}

// ChartRef points at a stored chart or carries ephemeris data for a new one.
type ChartRef struct {
	ChartID   string         `json:"chart_id" validate:"required_without=Ephemeris,excluded_with=Ephemeris,max=64"`
	Subject   string         `json:"subject" validate:"max=200"`
	Ephemeris *EphemerisData `json:"ephemeris"`
}

type SynastryRequest struct {
	A ChartRef `json:"a"`
	B ChartRef `json:"b"`
}

type TransitRequest struct {
	ChartID string `query:"chart_id" json:"chart_id" validate:"required,max=64"`
}
