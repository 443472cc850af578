package models

import "fmt"

// Sign is one of the twelve 30° zodiac bands, Aries first.
type Sign int

const (
	Aries Sign = iota
	Taurus
	Gemini
	Cancer
	Leo
	Virgo
	Libra
	Scorpio
	Sagittarius
	Capricorn
	Aquarius
	Pisces
)

// SignCount is the number of zodiac signs.
const SignCount = 12

var signNames = [SignCount]string{
	"aries", "taurus", "gemini", "cancer", "leo", "virgo",
	"libra", "scorpio", "sagittarius", "capricorn", "aquarius", "pisces",
}

func (s Sign) Valid() bool { return s >= Aries && s <= Pisces }

func (s Sign) String() string {
	if !s.Valid() {
		return fmt.Sprintf("sign(%d)", int(s))
	}
	return signNames[s]
}

func (s Sign) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid sign %d", int(s))
	}
	return []byte(signNames[s]), nil
}

func (s *Sign) UnmarshalText(text []byte) error {
	for i, n := range signNames {
		if n == string(text) {
			*s = Sign(i)
			return nil
		}
	}
	return fmt.Errorf("unknown sign %q", string(text))
}

// Element is the fire/earth/air/water classification. Signs cycle through
// the elements in that order starting at Aries.
type Element int

const (
	Fire Element = iota
	Earth
	Air
	Water
)

func (e Element) String() string {
	switch e {
	case Fire:
		return "fire"
	case Earth:
		return "earth"
	case Air:
		return "air"
	case Water:
		return "water"
	default:
		return fmt.Sprintf("element(%d)", int(e))
	}
}

// Modality is the cardinal/fixed/mutable classification, cycling from Aries.
type Modality int

const (
	Cardinal Modality = iota
	Fixed
	Mutable
)

func (m Modality) String() string {
	switch m {
	case Cardinal:
		return "cardinal"
	case Fixed:
		return "fixed"
	case Mutable:
		return "mutable"
	default:
		return fmt.Sprintf("modality(%d)", int(m))
	}
}

func (s Sign) Element() Element { return Element(int(s) % 4) }

func (s Sign) Modality() Modality { return Modality(int(s) % 3) }
