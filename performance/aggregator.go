package performance

import (
	"math"
	"sort"

	"comp-machine/models"
)

// trendWindowDeals caps how many of the earliest/most recent deals feed the
// windowed trend comparisons.
const trendWindowDeals = 10

// Aggregator rolls tracked deals and trend snapshots into portfolio-level
// metrics.
type Aggregator struct{}

// NewAggregator returns an Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Aggregate computes performance metrics over the given deals and trend
// snapshots. An empty deal list returns all-zero metrics; only settled
// (closed or flipped) deals contribute to accuracy, velocity, and ROI.
func (a *Aggregator) Aggregate(deals []models.DealPerformance, trends []models.MarketTrend) models.PerformanceMetrics {
	metrics := models.PerformanceMetrics{TotalDeals: len(deals)}
	if len(deals) == 0 {
		return metrics
	}

	ordered := make([]models.DealPerformance, len(deals))
	copy(ordered, deals)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	var marginSum float64
	for _, d := range ordered {
		marginSum += d.EstimatedMargin
	}
	metrics.AverageMargin = marginSum / float64(len(ordered))

	metrics.MarginAccuracy = accuracyOverSettled(ordered, func(d models.DealPerformance) (float64, float64, bool) {
		if d.ActualMargin == nil {
			return 0, 0, false
		}
		return d.EstimatedMargin, *d.ActualMargin, true
	})
	metrics.ARVAccuracyTrend = accuracyOverSettled(ordered, func(d models.DealPerformance) (float64, float64, bool) {
		if d.ActualARV == nil {
			return 0, 0, false
		}
		est, _ := d.EstimatedARV.Float64()
		actual, _ := d.ActualARV.Float64()
		return est, actual, true
	})
	metrics.RepairCostAccuracy = accuracyOverSettled(ordered, func(d models.DealPerformance) (float64, float64, bool) {
		if d.ActualRepairCosts == nil {
			return 0, 0, false
		}
		est, _ := d.EstimatedRepairCosts.Float64()
		actual, _ := d.ActualRepairCosts.Float64()
		return est, actual, true
	})

	metrics.DealVelocityDays = dealVelocity(ordered)
	metrics.CompQualityTrend = windowedDelta(ordered, func(d models.DealPerformance) (float64, bool) {
		return d.CompQualityScore, true
	})
	metrics.ROITrend = windowedDelta(ordered, func(d models.DealPerformance) (float64, bool) {
		if !d.IsSettled() || d.ROIPercentage == nil {
			return 0, false
		}
		return *d.ROIPercentage, true
	})

	if len(trends) > 0 {
		var confidenceSum, volatilitySum float64
		for _, t := range trends {
			confidenceSum += t.TrendConfidence
			volatilitySum += t.VolatilityIndex
		}
		metrics.MarketTrendAccuracy = confidenceSum / float64(len(trends))
		avgVolatility := volatilitySum / float64(len(trends))
		metrics.RiskAdjustedReturn = metrics.AverageMargin * (1 - avgVolatility*0.5)
	} else {
		metrics.RiskAdjustedReturn = metrics.AverageMargin
	}

	return metrics
}

// accuracyOverSettled averages 1 - |estimate-actual|/|actual| across settled
// deals, floored at zero per deal. Deals without the actual are skipped.
func accuracyOverSettled(deals []models.DealPerformance, extract func(models.DealPerformance) (est, actual float64, ok bool)) float64 {
	var sum float64
	var count int
	for _, d := range deals {
		if !d.IsSettled() {
			continue
		}
		est, actual, ok := extract(d)
		if !ok || actual == 0 {
			continue
		}
		relErr := math.Abs(est-actual) / math.Abs(actual)
		sum += math.Max(0, 1-relErr)
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// dealVelocity is the mean creation-to-close interval in days.
func dealVelocity(deals []models.DealPerformance) float64 {
	var days float64
	var count int
	for _, d := range deals {
		if !d.IsSettled() || d.ClosedAt == nil {
			continue
		}
		days += d.ClosedAt.Sub(d.CreatedAt).Hours() / 24
		count++
	}
	if count == 0 {
		return 0
	}
	return days / float64(count)
}

// windowedDelta compares the average of the most recent deals against the
// average of the earliest deals, each window capped at trendWindowDeals.
func windowedDelta(deals []models.DealPerformance, extract func(models.DealPerformance) (float64, bool)) float64 {
	values := make([]float64, 0, len(deals))
	for _, d := range deals {
		if v, ok := extract(d); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return 0
	}

	early := values[:min(trendWindowDeals, len(values))]
	recent := values[max(0, len(values)-trendWindowDeals):]
	return average(recent) - average(early)
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
