package models

import "fmt"

// AspectType names an angular relationship between two bodies.
type AspectType string

const (
	Conjunction AspectType = "conjunction"
	SemiSextile AspectType = "semi_sextile"
	Sextile     AspectType = "sextile"
	Quintile    AspectType = "quintile"
	Square      AspectType = "square"
	Trine       AspectType = "trine"
	BiQuintile  AspectType = "bi_quintile"
	Quincunx    AspectType = "quincunx"
	Opposition  AspectType = "opposition"
)

// AspectNature classifies how an aspect is read.
type AspectNature string

const (
	Harmonious  AspectNature = "harmonious"
	Challenging AspectNature = "challenging"
	Neutral     AspectNature = "neutral"
)

// AspectDefinition is one row of the aspect catalog.
type AspectDefinition struct {
	Type       AspectType   `json:"type" yaml:"type"`
	ExactAngle float64      `json:"exact_angle" yaml:"exact_angle"` // 0..180
	Orb        float64      `json:"orb" yaml:"orb"`
	Nature     AspectNature `json:"nature" yaml:"nature"`
	Major      bool         `json:"major" yaml:"major"`
}

func (d AspectDefinition) String() string {
	return fmt.Sprintf("%s(%g±%g)", d.Type, d.ExactAngle, d.Orb)
}

// Aspect is a detected relationship between BodyA and BodyB. For cross-chart
// aspects BodyA always belongs to the first chart.
type Aspect struct {
	BodyA             BodyID       `json:"body_a"`
	BodyB             BodyID       `json:"body_b"`
	Type              AspectType   `json:"type"`
	Nature            AspectNature `json:"nature"`
	AngularDifference float64      `json:"angular_difference"`
	OrbDeviation      float64      `json:"orb_deviation"`
	Strength          float64      `json:"strength"`
}
