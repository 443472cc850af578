package models

import "fmt"

// BodyID identifies a celestial body or calculated point. The set is closed:
// anything outside it is rejected when decoding input.
type BodyID int

const (
	Sun BodyID = iota
	Moon
	Mercury
	Venus
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
	Pluto
	NorthNode
	Chiron
	Lilith
)

var bodyNames = [...]string{
	Sun:       "sun",
	Moon:      "moon",
	Mercury:   "mercury",
	Venus:     "venus",
	Mars:      "mars",
	Jupiter:   "jupiter",
	Saturn:    "saturn",
	Uranus:    "uranus",
	Neptune:   "neptune",
	Pluto:     "pluto",
	NorthNode: "north_node",
	Chiron:    "chiron",
	Lilith:    "lilith",
}

// AllBodies lists every known body in canonical order.
func AllBodies() []BodyID {
	out := make([]BodyID, len(bodyNames))
	for i := range bodyNames {
		out[i] = BodyID(i)
	}
	return out
}

// IsPlanet reports whether b is one of the ten classical bodies (luminaries included).
func (b BodyID) IsPlanet() bool { return b >= Sun && b <= Pluto }

func (b BodyID) Valid() bool { return b >= 0 && int(b) < len(bodyNames) }

func (b BodyID) String() string {
	if !b.Valid() {
		return fmt.Sprintf("body(%d)", int(b))
	}
	return bodyNames[b]
}

// ParseBodyID maps a lowercase name to its BodyID.
func ParseBodyID(s string) (BodyID, error) {
	for i, n := range bodyNames {
		if n == s {
			return BodyID(i), nil
		}
	}
	return 0, fmt.Errorf("unknown body %q", s)
}

func (b BodyID) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("invalid body id %d", int(b))
	}
	return []byte(bodyNames[b]), nil
}

func (b *BodyID) UnmarshalText(text []byte) error {
	id, err := ParseBodyID(string(text))
	if err != nil {
		return err
	}
	*b = id
	return nil
}

// CelestialBody is one body as reported by the ephemeris collaborator.
// Speed < 0 means apparent retrograde motion.
type CelestialBody struct {
	ID            BodyID  `json:"id"`
	Longitude     float64 `json:"longitude"`
	Latitude      float64 `json:"latitude"`
	Distance      float64 `json:"distance"`
	Speed         float64 `json:"speed"`
	SpeedLatitude float64 `json:"speed_latitude"`
	SpeedDistance float64 `json:"speed_distance"`
}

// HouseCusps holds the 12 house boundaries, cusp[0] = house 1. The slice form
// lets malformed collaborator data reach validation instead of failing to decode.
type HouseCusps []float64

// Angles duplicates the four chart angles derived from the cusps.
type Angles struct {
	Ascendant  float64 `json:"ascendant"`
	Midheaven  float64 `json:"midheaven"`
	Descendant float64 `json:"descendant"`
	ImumCoeli  float64 `json:"imum_coeli"`
}
