package performance

import (
	"fmt"

	"comp-machine/models"
)

// RecommenderConfig holds the advisory trigger thresholds.
type RecommenderConfig struct {
	TargetMargin        float64
	PreferredMargin     float64
	MinCompQuality      float64
	MaxVolatility       float64
	MinMarginConfidence float64
}

// DefaultRecommenderConfig targets a 25% minimum margin with a 35%
// preference, the usual wholesaling spread.
var DefaultRecommenderConfig = RecommenderConfig{
	TargetMargin:        0.25,
	PreferredMargin:     0.35,
	MinCompQuality:      0.7,
	MaxVolatility:       0.3,
	MinMarginConfidence: 0.6,
}

// Recommender emits rule-based advisory text for a tracked deal. Each
// trigger is independent; a weak deal can fire several at once.
type Recommender struct {
	cfg RecommenderConfig
}

// NewRecommender returns a Recommender using the given config.
func NewRecommender(cfg RecommenderConfig) *Recommender {
	return &Recommender{cfg: cfg}
}

// Recommend evaluates the deal against its market trend and comp set.
func (r *Recommender) Recommend(deal models.DealPerformance, trend models.MarketTrend, comps []models.Property) []string {
	recommendations := []string{}

	if deal.EstimatedMargin < r.cfg.TargetMargin {
		recommendations = append(recommendations, fmt.Sprintf(
			"Margin %.1f%% is below the %.0f%% target - negotiate a lower acquisition price or pass",
			deal.EstimatedMargin*100, r.cfg.TargetMargin*100))
	}
	if deal.EstimatedMargin < r.cfg.PreferredMargin {
		recommendations = append(recommendations, fmt.Sprintf(
			"Margin %.1f%% is below the preferred %.0f%% - limited buffer for surprises",
			deal.EstimatedMargin*100, r.cfg.PreferredMargin*100))
	}
	if deal.CompQualityScore < r.cfg.MinCompQuality {
		recommendations = append(recommendations, fmt.Sprintf(
			"Comp quality %.2f is weak - widen the search radius or loosen recency before trusting the ARV",
			deal.CompQualityScore))
	}
	if trend.PriceTrend == models.TrendDecreasing {
		recommendations = append(recommendations,
			"Market prices are trending down - shade the ARV and move quickly on exit")
	}
	if trend.VolatilityIndex > r.cfg.MaxVolatility {
		recommendations = append(recommendations, fmt.Sprintf(
			"Price volatility %.2f is elevated - widen the expected resale range",
			trend.VolatilityIndex))
	}
	if deal.MarginConfidence < r.cfg.MinMarginConfidence {
		recommendations = append(recommendations, fmt.Sprintf(
			"Margin confidence %.2f is low - gather more comps before committing",
			deal.MarginConfidence))
	}

	return recommendations
}
