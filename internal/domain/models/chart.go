package models

import (
	"sort"
	"time"
)

// BodyPlacement is where one body sits in a normalized chart.
type BodyPlacement struct {
	Longitude    float64 `json:"longitude"`
	Sign         Sign    `json:"sign"`
	DegreeInSign float64 `json:"degree_in_sign"`
	House        int     `json:"house"`
	Retrograde   bool    `json:"retrograde"`
}

// NormalizedChart is built once per request and not mutated afterwards.
type NormalizedChart struct {
	Bodies  map[BodyID]BodyPlacement `json:"bodies"`
	Houses  []float64                `json:"houses"`
	Angles  Angles                   `json:"angles"`
	Aspects []Aspect                 `json:"aspects"`
}

// BodyOrder returns the chart's body ids in canonical order.
func (c *NormalizedChart) BodyOrder() []BodyID {
	ids := make([]BodyID, 0, len(c.Bodies))
	for id := range c.Bodies {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

type ElementScores struct {
	Fire  float64 `json:"fire"`
	Earth float64 `json:"earth"`
	Air   float64 `json:"air"`
	Water float64 `json:"water"`
}

type ModalityScores struct {
	Cardinal float64 `json:"cardinal"`
	Fixed    float64 `json:"fixed"`
	Mutable  float64 `json:"mutable"`
}

// CompatibilityResult is recomputed on every comparison.
type CompatibilityResult struct {
	OverallScore     int            `json:"overall_score"` // 0..100
	MeanStrength     float64        `json:"mean_strength"`
	ElementScores    ElementScores  `json:"element_scores"`
	ModalityScores   ModalityScores `json:"modality_scores"`
	HarmoniousCount  int            `json:"harmonious_count"`
	ChallengingCount int            `json:"challenging_count"`
	CrossAspects     []Aspect       `json:"cross_aspects"`
}

// HouseSystem selects how the ephemeris collaborator computes cusps. It does
// not change how houses are resolved here.
type HouseSystem string

const (
	Placidus  HouseSystem = "placidus"
	Koch      HouseSystem = "koch"
	WholeSign HouseSystem = "whole_sign"
	Equal     HouseSystem = "equal"
	Porphyry  HouseSystem = "porphyry"
)

// BirthData is what the ephemeris collaborator needs to compute positions.
type BirthData struct {
	Time        time.Time   `json:"time" validate:"required"`
	Latitude    float64     `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude   float64     `json:"longitude" validate:"gte=-180,lte=180"`
	HouseSystem HouseSystem `json:"house_system" default:"placidus" validate:"oneof=placidus koch whole_sign equal porphyry"`
}

// EphemerisData is the raw collaborator output fed to the chart assembler.
type EphemerisData struct {
	Bodies []CelestialBody `json:"bodies"`
	Cusps  HouseCusps      `json:"cusps"`
	Angles *Angles         `json:"angles,omitempty"`
}

// StoredChart is an assembled chart with its identity, as persisted.
type StoredChart struct {
	ID        string          `json:"id"`
	Subject   string          `json:"subject"`
	Birth     *BirthData      `json:"birth,omitempty"`
	Chart     NormalizedChart `json:"chart"`
	CreatedAt time.Time       `json:"created_at"`
}

// SynastryReport pairs a compatibility result with the charts it compares.
type SynastryReport struct {
	ID       string              `json:"id"`
	ChartA   string              `json:"chart_a"`
	ChartB   string              `json:"chart_b"`
	Result   CompatibilityResult `json:"result"`
	ScoredAt time.Time           `json:"scored_at"`
}

// TransitSnapshot lists aspects between the sky at At and a natal chart.
type TransitSnapshot struct {
	ChartID string    `json:"chart_id"`
	At      time.Time `json:"at"`
	Aspects []Aspect  `json:"aspects"`
}
