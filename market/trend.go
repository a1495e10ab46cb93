package market

import (
	"math"
	"sort"
	"time"

	"comp-machine/models"
)

const (
	// minTrendSamples is the smallest sales history that supports trend
	// analysis; anything smaller degrades to the low-confidence default.
	minTrendSamples = 3

	// trendWindow caps how many of the earliest/most recent sales feed the
	// directional comparison.
	trendWindow = 5

	// trendThreshold is the relative price delta that separates a
	// directional trend from a stable one.
	trendThreshold = 0.05
)

// TrendAnalyzer derives directional trends from historical sales series.
type TrendAnalyzer struct {
	now func() time.Time
}

// NewTrendAnalyzer returns a TrendAnalyzer.
func NewTrendAnalyzer() *TrendAnalyzer {
	return &TrendAnalyzer{now: time.Now}
}

// Analyze computes trend direction, strength, volatility, momentum, and
// cycle phase for a zip code from its historical sales. Fewer than three
// sales returns the stable low-confidence default as an explicit branch
// rather than running the general formula on a degenerate sample.
func (a *TrendAnalyzer) Analyze(zipCode string, history []models.Property, windowDays int) models.MarketTrend {
	if len(history) < minTrendSamples {
		return models.MarketTrend{
			ZipCode:          zipCode,
			TrendPeriodDays:  windowDays,
			PriceTrend:       models.TrendStable,
			TrendStrength:    0,
			TrendConfidence:  0.1,
			VolatilityIndex:  0,
			MomentumScore:    0,
			MarketCyclePhase: cyclePhase(models.TrendStable, 0),
			LastUpdated:      a.now(),
		}
	}

	sorted := make([]models.Property, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, tj := sorted[i].SaleDate, sorted[j].SaleDate
		if ti == nil || tj == nil {
			return tj != nil
		}
		return ti.Before(*tj)
	})

	prices := make([]float64, len(sorted))
	for i, sale := range sorted {
		prices[i] = sale.ComparablePrice()
	}

	early := mean(prices[:min(trendWindow, len(prices))])
	recent := mean(prices[max(0, len(prices)-trendWindow):])

	var delta float64
	if early > 0 {
		delta = (recent - early) / early
	}

	direction := models.TrendStable
	strength := 0.1
	momentum := delta * 2
	switch {
	case delta > trendThreshold:
		direction = models.TrendIncreasing
		strength = math.Min(1, delta*10)
	case delta < -trendThreshold:
		direction = models.TrendDecreasing
		strength = math.Min(1, -delta*10)
	}

	volatility := math.Min(1, coefficientOfVariation(prices))
	confidence := math.Min(1, float64(len(prices))/10) * (1 - volatility*0.5)

	return models.MarketTrend{
		ZipCode:          zipCode,
		TrendPeriodDays:  windowDays,
		PriceTrend:       direction,
		TrendStrength:    strength,
		TrendConfidence:  confidence,
		VolatilityIndex:  volatility,
		MomentumScore:    momentum,
		MarketCyclePhase: cyclePhase(direction, momentum),
		LastUpdated:      a.now(),
	}
}

// cyclePhase maps direction and momentum onto a market cycle position:
// strong upward momentum is expansion flattening into peak, strong downward
// momentum is contraction bottoming into trough.
func cyclePhase(direction models.TrendDirection, momentum float64) models.CyclePhase {
	switch direction {
	case models.TrendIncreasing:
		if momentum >= 0.2 {
			return models.CycleExpansion
		}
		return models.CyclePeak
	case models.TrendDecreasing:
		if momentum <= -0.2 {
			return models.CycleContraction
		}
		return models.CycleTrough
	default:
		if momentum > 0 {
			return models.CyclePeak
		}
		return models.CycleTrough
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// coefficientOfVariation is the population standard deviation over the mean.
func coefficientOfVariation(values []float64) float64 {
	m := mean(values)
	if m == 0 {
		return 0
	}
	variance := 0.0
	for _, v := range values {
		d := v - m
		variance += d * d
	}
	variance /= float64(len(values))
	return math.Sqrt(variance) / m
}
