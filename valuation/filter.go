package valuation

import (
	"sort"

	"comp-machine/models"
)

// maxConditionRankDistance is the widest condition gap a comp may have from
// the subject and still inform its valuation.
const maxConditionRankDistance = 2

// Filter decides which comps are admissible for valuation by combining the
// condition-distance rule with the validator's verdict.
type Filter struct {
	scorer    *Scorer
	validator *Validator
}

// NewFilter returns a Filter built on the given scorer and validator.
func NewFilter(scorer *Scorer, validator *Validator) *Filter {
	return &Filter{scorer: scorer, validator: validator}
}

// Admissible reports whether a single comp may be used to value the subject.
// The predicates are independent and side-effect free; all must hold.
func (f *Filter) Admissible(comp, subject models.Property) bool {
	// Hard category exclusions regardless of numeric score.
	if comp.Condition == models.ConditionRenovated && subject.Condition == models.ConditionFair {
		return false
	}
	if comp.Condition == models.ConditionLikeNew && subject.Condition == models.ConditionPoor {
		return false
	}

	if comp.Condition.RankDistance(subject.Condition) > maxConditionRankDistance {
		return false
	}

	if !f.validator.Validate(comp).IsValid {
		return false
	}

	// Explicit guards kept alongside the validator's penalties.
	if comp.TransactionType == models.TransactionShortSale {
		return false
	}
	if comp.ConditionImprovements {
		return false
	}

	return true
}

// ForValuation returns the admissible subset of comps. Filtering an already
// filtered set returns the same set.
func (f *Filter) ForValuation(comps []models.Property, subject models.Property) []models.Property {
	admissible := make([]models.Property, 0, len(comps))
	for _, comp := range comps {
		if f.Admissible(comp, subject) {
			admissible = append(admissible, comp)
		}
	}
	return admissible
}

// Rank orders comps by composite score descending.
func (f *Filter) Rank(comps []models.Property, subject models.Property) []models.CompScore {
	scored := make([]models.CompScore, len(comps))
	for i, comp := range comps {
		scored[i] = f.scorer.Score(comp, subject)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// QualityMetrics summarizes the score distribution of a comp set against a
// subject. An empty set yields zero metrics.
func (f *Filter) QualityMetrics(comps []models.Property, subject models.Property) models.CompQualityMetrics {
	if len(comps) == 0 {
		return models.CompQualityMetrics{}
	}

	scored := f.Rank(comps, subject)

	var scoreSum, conditionSum float64
	for _, s := range scored {
		scoreSum += s.Score
		conditionSum += s.Breakdown.Condition
	}

	top := scored[0].Score
	bottom := scored[len(scored)-1].Score

	return models.CompQualityMetrics{
		TotalComps:            len(comps),
		AverageScore:          scoreSum / float64(len(scored)),
		AverageConditionScore: conditionSum / float64(len(scored)),
		TopCompScore:          top,
		BottomCompScore:       bottom,
		ScoreRange:            top - bottom,
	}
}
