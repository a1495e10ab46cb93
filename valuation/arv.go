package valuation

import (
	"errors"
	"math"
	"sort"

	"comp-machine/models"
)

// ErrNoComps is returned when ARV is requested with an empty comp list.
// This is the one invariant violation that must always propagate; it is
// never silently defaulted.
var ErrNoComps = errors.New("no comps provided for ARV calculation")

// ARVConfig holds the percentile weights, safety margin, and per-market
// adjustments of the ARV calculation.
type ARVConfig struct {
	LowestWeight    float64
	MedianWeight    float64
	HighestWeight   float64
	SafetyMargin    float64
	HotAdjustment   float64
	ColdAdjustment  float64
	RangeLowFactor  float64
	RangeHighFactor float64
}

// DefaultARVConfig weights the low end of the comp set heaviest: an
// acquisition model has to survive the pessimistic resale, not the
// optimistic one.
var DefaultARVConfig = ARVConfig{
	LowestWeight:    0.40,
	MedianWeight:    0.35,
	HighestWeight:   0.25,
	SafetyMargin:    0.95,
	HotAdjustment:   0.98,
	ColdAdjustment:  1.02,
	RangeLowFactor:  0.92,
	RangeHighFactor: 1.08,
}

// ARVCalculator computes weighted-percentile after-repair values.
type ARVCalculator struct {
	cfg ARVConfig
}

// NewARVCalculator returns a calculator using the given config.
func NewARVCalculator(cfg ARVConfig) *ARVCalculator {
	return &ARVCalculator{cfg: cfg}
}

// Estimate computes the ARV from an admissible comp set, with an optional
// subject supplying the market-condition adjustment. Comps are sorted by
// comparable price; the weighted value combines the lowest comp, the
// element at floor(n/2) (the upper-middle element for even n, not an
// averaged median), and the highest comp, then applies the safety margin.
//
// The returned range is taken from comp extremes independently of the point
// value and may not bracket it; see models.ARVResult.
func (c *ARVCalculator) Estimate(comps []models.Property, subject *models.Property) (models.ARVResult, error) {
	if len(comps) == 0 {
		return models.ARVResult{}, ErrNoComps
	}

	sorted := make([]models.Property, len(comps))
	copy(sorted, comps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ComparablePrice() < sorted[j].ComparablePrice()
	})

	lowest := sorted[0].ComparablePrice()
	median := sorted[len(sorted)/2].ComparablePrice()
	highest := sorted[len(sorted)-1].ComparablePrice()

	value := lowest*c.cfg.LowestWeight +
		median*c.cfg.MedianWeight +
		highest*c.cfg.HighestWeight

	value *= c.cfg.SafetyMargin

	if subject != nil {
		switch subject.MarketCondition {
		case models.MarketHot:
			value *= c.cfg.HotAdjustment
		case models.MarketCold:
			value *= c.cfg.ColdAdjustment
		}
	}

	rangeLow := math.Min(lowest, value*c.cfg.RangeLowFactor)
	rangeHigh := math.Max(highest, value*c.cfg.RangeHighFactor)

	return models.ARVResult{
		Value:     math.Round(value),
		RangeLow:  math.Round(rangeLow),
		RangeHigh: math.Round(rangeHigh),
		Method:    "wholesaling_weighted_median",
		WeightsApplied: models.ARVWeights{
			Lowest:  c.cfg.LowestWeight,
			Median:  c.cfg.MedianWeight,
			Highest: c.cfg.HighestWeight,
		},
		SafetyMargin: c.cfg.SafetyMargin,
	}, nil
}

// TrendAdjustedValue applies a momentum-based adjustment to an ARV point
// value: value x (1 + momentum x 0.02).
func TrendAdjustedValue(arv models.ARVResult, trend models.MarketTrend) float64 {
	return math.Round(arv.Value * (1 + trend.MomentumScore*0.02))
}
