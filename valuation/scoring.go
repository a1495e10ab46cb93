package valuation

import (
	"time"

	"comp-machine/models"
)

// ScoringWeights are the factor weights of the composite comp score. They
// must sum to 1.00 including the fixed style placeholder.
type ScoringWeights struct {
	Distance           float64
	Recency            float64
	GLA                float64
	Condition          float64
	Location           float64
	PropertyType       float64
	Style              float64
	WholesalePotential float64
}

// DefaultScoringWeights biases toward condition-matched comps. Condition is
// deliberately the heaviest comparable factor: a distressed-asset strategy
// lives or dies on not valuing a fixer against remodeled sales.
var DefaultScoringWeights = ScoringWeights{
	Distance:           0.20,
	Recency:            0.20,
	GLA:                0.15,
	Condition:          0.25,
	Location:           0.10,
	PropertyType:       0.05,
	Style:              0.03,
	WholesalePotential: 0.02,
}

// Sum returns the total weight.
func (w ScoringWeights) Sum() float64 {
	return w.Distance + w.Recency + w.GLA + w.Condition + w.Location +
		w.PropertyType + w.Style + w.WholesalePotential
}

// Scorer computes comp similarity scores. The zero value is not usable;
// construct with NewScorer.
type Scorer struct {
	weights ScoringWeights
	now     func() time.Time
}

// NewScorer returns a Scorer using the given weights.
func NewScorer(weights ScoringWeights) *Scorer {
	return &Scorer{weights: weights, now: time.Now}
}

// DistanceScore maps miles from the subject onto [0,1] step bands.
func DistanceScore(miles float64) float64 {
	switch {
	case miles <= 0.5:
		return 1.0
	case miles <= 1.0:
		return 0.8
	case miles <= 2.0:
		return 0.6
	case miles <= 3.0:
		return 0.4
	default:
		return 0.2
	}
}

// RecencyScore maps the age of a sale onto [0,1] step bands using 30-day
// months. A comp with no sale date scores the stalest band; an undated sale
// cannot vouch for current market levels.
func (s *Scorer) RecencyScore(saleDate *time.Time) float64 {
	if saleDate == nil {
		return 0.2
	}
	months := s.now().Sub(*saleDate).Hours() / (24 * 30)
	switch {
	case months <= 3:
		return 1.0
	case months <= 6:
		return 0.8
	case months <= 9:
		return 0.6
	case months <= 12:
		return 0.4
	default:
		return 0.2
	}
}

// GLAScore compares living area as a percent difference relative to the
// subject. Missing size on either side returns the neutral 0.5.
func GLAScore(subject, comp models.Property) float64 {
	if subject.GLASqft <= 0 || comp.GLASqft <= 0 {
		return 0.5
	}
	diff := subject.GLASqft - comp.GLASqft
	if diff < 0 {
		diff = -diff
	}
	pct := diff / subject.GLASqft
	switch {
	case pct <= 0.1:
		return 1.0
	case pct <= 0.2:
		return 0.8
	case pct <= 0.3:
		return 0.6
	case pct <= 0.4:
		return 0.4
	default:
		return 0.2
	}
}

// ConditionMatchScore scores the rank distance between two conditions.
// Symmetric in its arguments.
func ConditionMatchScore(a, b models.Condition) float64 {
	switch a.RankDistance(b) {
	case 0:
		return 1.0
	case 1:
		return 0.7
	case 2:
		return 0.4
	case 3:
		return 0.2
	default:
		return 0.1
	}
}

// PropertyTypeScore allows single_family and townhouse to substitute for
// each other at a discount; anything else mismatched scores low.
func PropertyTypeScore(subject, comp models.Property) float64 {
	if subject.PropertyType == comp.PropertyType {
		return 1.0
	}
	if (subject.PropertyType == "single_family" && comp.PropertyType == "townhouse") ||
		(subject.PropertyType == "townhouse" && comp.PropertyType == "single_family") {
		return 0.7
	}
	return 0.3
}

// WholesalePotentialScore prefers comps that will not inflate ARV beyond
// what a distressed subject can fetch: same-or-worse condition comps score
// full, better-condition comps are discounted, and the two classic
// over-valuation pairings are penalized hardest.
func WholesalePotentialScore(subject, comp models.Property) float64 {
	if comp.Condition == models.ConditionRenovated && subject.Condition == models.ConditionFair {
		return 0.3
	}
	if comp.Condition == models.ConditionLikeNew && subject.Condition == models.ConditionPoor {
		return 0.2
	}
	if comp.Condition.Rank() <= subject.Condition.Rank() {
		return 1.0
	}
	return 0.6
}

// LocationScore starts at 1.0 and applies boundary penalties for each
// geography field that both sides carry and disagree on, plus a
// market-condition compatibility adjustment. Clamped to [0,1].
func LocationScore(subject, comp models.Property) float64 {
	score := 1.0

	if subject.ZipCode != "" && comp.ZipCode != "" && subject.ZipCode != comp.ZipCode {
		score -= 0.02
	}
	if subject.City != "" && comp.City != "" && subject.City != comp.City {
		score -= 0.04
	}
	if subject.County != "" && comp.County != "" && subject.County != comp.County {
		score -= 0.10
	}
	if subject.SchoolDistrict != "" && comp.SchoolDistrict != "" && subject.SchoolDistrict != comp.SchoolDistrict {
		score -= 0.05
	}
	if subject.Neighborhood != "" && comp.Neighborhood != "" && subject.Neighborhood != comp.Neighborhood {
		score -= 0.03
	}

	if subject.MarketCondition != "" && comp.MarketCondition != "" {
		switch {
		case subject.MarketCondition == comp.MarketCondition:
			score += 0.05
		case (subject.MarketCondition == models.MarketHot && comp.MarketCondition == models.MarketStable) ||
			(subject.MarketCondition == models.MarketStable && comp.MarketCondition == models.MarketHot):
			score += 0.02
		default:
			score -= 0.03
		}
	}

	return clamp01(score)
}

// Score combines all factor scores into a weighted composite with the full
// breakdown attached for explainability.
func (s *Scorer) Score(comp, subject models.Property) models.CompScore {
	breakdown := models.ScoreBreakdown{
		Distance:           DistanceScore(comp.DistanceMiles),
		Recency:            s.RecencyScore(comp.SaleDate),
		GLA:                GLAScore(subject, comp),
		Condition:          ConditionMatchScore(subject.Condition, comp.Condition),
		Location:           LocationScore(subject, comp),
		PropertyType:       PropertyTypeScore(subject, comp),
		Style:              s.weights.Style,
		WholesalePotential: WholesalePotentialScore(subject, comp),
	}

	score := breakdown.Distance*s.weights.Distance +
		breakdown.Recency*s.weights.Recency +
		breakdown.GLA*s.weights.GLA +
		breakdown.Condition*s.weights.Condition +
		breakdown.Location*s.weights.Location +
		breakdown.PropertyType*s.weights.PropertyType +
		s.weights.Style + // style match placeholder, applied at full weight
		breakdown.WholesalePotential*s.weights.WholesalePotential

	return models.CompScore{Comp: comp, Score: score, Breakdown: breakdown}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
