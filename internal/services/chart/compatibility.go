package chart

import (
	"fmt"
	"math"

	"Astrolabe/internal/domain/models"
	domsvc "Astrolabe/internal/domain/service"
)

// Per-aspect weights feeding the overall score. They depend on the aspect
// type only, never on sign placement, so tightening an aspect across a sign
// boundary cannot lower the score.
var natureWeight = map[models.AspectNature]float64{
	models.Harmonious:  1.0,
	models.Neutral:     0.8,
	models.Challenging: 0.6,
}

const defaultSaturation = 8.0

// Scorer compares two assembled charts.
type Scorer struct {
	catalog    *Catalog
	saturation float64
}

// ScorerOption configures Scorer.
type ScorerOption func(*Scorer)

// WithScorerCatalog sets the catalog used for cross-chart aspects.
func WithScorerCatalog(c *Catalog) ScorerOption {
	return func(s *Scorer) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithSaturation sets the weighted strength at which the overall score
// reaches about 63.
func WithSaturation(v float64) ScorerOption {
	return func(s *Scorer) {
		if v > 0 {
			s.saturation = v
		}
	}
}

func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{catalog: DefaultCatalog(), saturation: defaultSaturation}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CrossAspects returns aspects between every body of a and every body of b.
func (s *Scorer) CrossAspects(a, b *models.NormalizedChart) []models.Aspect {
	return DetectCrossAspects(Positions(a), Positions(b), s.catalog)
}

// Score runs cross-chart detection and aggregates the result.
//
// Element and modality scores are the share (0..100) of total aspect
// strength carried by aspects whose two bodies sit in signs of that element
// or modality. The overall score saturates a strength sum weighted by aspect
// nature, so it is 0 exactly when there are no cross aspects and otherwise
// between 1 and 100.
func (s *Scorer) Score(a, b *models.NormalizedChart) (*models.CompatibilityResult, error) {
	if a == nil || b == nil || len(a.Bodies) == 0 || len(b.Bodies) == 0 {
		return nil, fmt.Errorf("%w: both charts need bodies", ErrIncompleteChartData)
	}
	cross := s.CrossAspects(a, b)
	res := &models.CompatibilityResult{CrossAspects: cross}
	if len(cross) == 0 {
		res.CrossAspects = []models.Aspect{}
		return res, nil
	}

	var (
		total    float64
		weighted float64
		elem     [4]float64
		modal    [3]float64
	)
	for _, asp := range cross {
		sa := a.Bodies[asp.BodyA].Sign
		sb := b.Bodies[asp.BodyB].Sign
		total += asp.Strength
		weighted += asp.Strength * natureWeight[asp.Nature]

		if sa.Element() == sb.Element() {
			elem[sa.Element()] += asp.Strength
		}
		if sa.Modality() == sb.Modality() {
			modal[sa.Modality()] += asp.Strength
		}

		switch asp.Nature {
		case models.Harmonious:
			res.HarmoniousCount++
		case models.Challenging:
			res.ChallengingCount++
		}
	}

	res.MeanStrength = total / float64(len(cross))
	if total > 0 {
		res.ElementScores = models.ElementScores{
			Fire:  share(elem[models.Fire], total),
			Earth: share(elem[models.Earth], total),
			Air:   share(elem[models.Air], total),
			Water: share(elem[models.Water], total),
		}
		res.ModalityScores = models.ModalityScores{
			Cardinal: share(modal[models.Cardinal], total),
			Fixed:    share(modal[models.Fixed], total),
			Mutable:  share(modal[models.Mutable], total),
		}
	}
	res.OverallScore = s.overall(weighted)
	return res, nil
}

func (s *Scorer) overall(weighted float64) int {
	v := int(math.Round(100 * (1 - math.Exp(-weighted/s.saturation))))
	if v < 1 {
		return 1
	}
	if v > 100 {
		return 100
	}
	return v
}

func share(part, total float64) float64 { return 100 * part / total }

var _ domsvc.CompatibilityScorer = (*Scorer)(nil)
