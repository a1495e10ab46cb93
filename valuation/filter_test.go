package valuation

import (
	"testing"
	"time"

	"comp-machine/models"
)

func newTestFilter() *Filter {
	scorer := NewScorer(DefaultScoringWeights)
	validator := NewValidator(DefaultValidatorConfig)
	return NewFilter(scorer, validator)
}

func cleanComp(condition models.Condition) models.Property {
	saleDate := time.Now().AddDate(0, -2, 0)
	return models.Property{
		Address:         "200 Oak St",
		Condition:       condition,
		GLASqft:         1480,
		PropertyType:    "single_family",
		SalePrice:       200000,
		DistanceMiles:   0.4,
		SaleDate:        &saleDate,
		TransactionType: models.TransactionArmLength,
	}
}

func TestAdmissible(t *testing.T) {
	filter := newTestFilter()

	tests := []struct {
		name     string
		subject  models.Condition
		comp     models.Property
		expected bool
	}{
		{
			name:     "matching condition arms-length",
			subject:  models.ConditionFair,
			comp:     cleanComp(models.ConditionFair),
			expected: true,
		},
		{
			name:     "renovated comp against fair subject excluded",
			subject:  models.ConditionFair,
			comp:     cleanComp(models.ConditionRenovated),
			expected: false,
		},
		{
			name:     "like_new comp against poor subject excluded",
			subject:  models.ConditionPoor,
			comp:     cleanComp(models.ConditionLikeNew),
			expected: false,
		},
		{
			name:     "two ranks away admitted",
			subject:  models.ConditionPoor,
			comp:     cleanComp(models.ConditionAverage),
			expected: true,
		},
		{
			name:     "three ranks away excluded",
			subject:  models.ConditionPoor,
			comp:     cleanComp(models.ConditionRenovated),
			expected: false,
		},
		{
			name:    "short sale excluded",
			subject: models.ConditionFair,
			comp: func() models.Property {
				c := cleanComp(models.ConditionFair)
				c.TransactionType = models.TransactionShortSale
				return c
			}(),
			expected: false,
		},
		{
			name:    "condition improvements excluded",
			subject: models.ConditionFair,
			comp: func() models.Property {
				c := cleanComp(models.ConditionFair)
				c.ConditionImprovements = true
				return c
			}(),
			expected: false,
		},
		{
			name:    "invalid by validator excluded",
			subject: models.ConditionFair,
			comp: func() models.Property {
				c := cleanComp(models.ConditionFair)
				c.TransactionType = models.TransactionFamilySale
				c.SellerConcessions = 8000
				c.ConditionAtSale = models.ConditionAverage
				return c
			}(),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject := models.Property{Condition: tt.subject, GLASqft: 1500, PropertyType: "single_family"}
			got := filter.Admissible(tt.comp, subject)
			if got != tt.expected {
				t.Errorf("Admissible = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestForValuation_Idempotent(t *testing.T) {
	filter := newTestFilter()
	subject := models.Property{Condition: models.ConditionFair, GLASqft: 1500, PropertyType: "single_family"}

	shortSale := cleanComp(models.ConditionFair)
	shortSale.TransactionType = models.TransactionShortSale

	comps := []models.Property{
		cleanComp(models.ConditionFair),
		shortSale,
		cleanComp(models.ConditionAverage),
	}

	first := filter.ForValuation(comps, subject)
	if len(first) != 2 {
		t.Fatalf("Expected 2 admissible comps, got %d", len(first))
	}

	second := filter.ForValuation(first, subject)
	if len(second) != len(first) {
		t.Errorf("Filtering a filtered set changed its size: %d -> %d", len(first), len(second))
	}
}

func TestRank_OrdersByScoreDescending(t *testing.T) {
	filter := newTestFilter()
	subject := models.Property{Condition: models.ConditionFair, GLASqft: 1500, PropertyType: "single_family"}

	near := cleanComp(models.ConditionFair)
	near.DistanceMiles = 0.2

	far := cleanComp(models.ConditionAverage)
	far.DistanceMiles = 4.0

	ranked := filter.Rank([]models.Property{far, near}, subject)
	if len(ranked) != 2 {
		t.Fatalf("Expected 2 ranked comps, got %d", len(ranked))
	}
	if ranked[0].Score < ranked[1].Score {
		t.Errorf("Expected descending order, got %f before %f", ranked[0].Score, ranked[1].Score)
	}
	if ranked[0].Comp.DistanceMiles != 0.2 {
		t.Errorf("Expected the near comp to rank first")
	}
}

func TestQualityMetrics(t *testing.T) {
	filter := newTestFilter()
	subject := models.Property{Condition: models.ConditionFair, GLASqft: 1500, PropertyType: "single_family"}

	t.Run("empty set", func(t *testing.T) {
		metrics := filter.QualityMetrics(nil, subject)
		if metrics.TotalComps != 0 || metrics.AverageScore != 0 {
			t.Errorf("Expected zero metrics for empty set, got %+v", metrics)
		}
	})

	t.Run("populated set", func(t *testing.T) {
		comps := []models.Property{
			cleanComp(models.ConditionFair),
			cleanComp(models.ConditionAverage),
		}
		metrics := filter.QualityMetrics(comps, subject)

		if metrics.TotalComps != 2 {
			t.Errorf("Expected TotalComps 2, got %d", metrics.TotalComps)
		}
		if metrics.AverageScore <= 0 || metrics.AverageScore > 1 {
			t.Errorf("Expected average score in (0,1], got %f", metrics.AverageScore)
		}
		if metrics.TopCompScore < metrics.BottomCompScore {
			t.Errorf("Top score %f below bottom score %f", metrics.TopCompScore, metrics.BottomCompScore)
		}
		if metrics.ScoreRange != metrics.TopCompScore-metrics.BottomCompScore {
			t.Errorf("ScoreRange %f inconsistent with top/bottom", metrics.ScoreRange)
		}
	})
}
