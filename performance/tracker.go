package performance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"comp-machine/models"
	"comp-machine/valuation"
)

// TrackerConfig holds the confidence adjustments of deal tracking.
type TrackerConfig struct {
	BaseConfidence    float64
	HighQualityBonus  float64
	QualityThreshold  float64
	DeepCompSetBonus  float64
	MinCompsForBonus  int
	StableMarketBonus float64
	HotMarketPenalty  float64
	ConfidenceFloor   float64
	ConfidenceCeiling float64
}

// DefaultTrackerConfig starts every deal at moderate confidence and adjusts
// for comp quality, comp depth, and market temperature.
var DefaultTrackerConfig = TrackerConfig{
	BaseConfidence:    0.7,
	HighQualityBonus:  0.2,
	QualityThreshold:  0.8,
	DeepCompSetBonus:  0.1,
	MinCompsForBonus:  5,
	StableMarketBonus: 0.1,
	HotMarketPenalty:  0.1,
	ConfidenceFloor:   0.3,
	ConfidenceCeiling: 1.0,
}

// Tracker creates DealPerformance records from valuation outputs.
type Tracker struct {
	cfg    TrackerConfig
	filter *valuation.Filter
}

// NewTracker returns a Tracker that uses the given filter for comp quality.
func NewTracker(cfg TrackerConfig, filter *valuation.Filter) *Tracker {
	return &Tracker{cfg: cfg, filter: filter}
}

// Track opens a deal record in the analyzing state with projected margin
// and a confidence score derived from comp quality and market condition.
// An empty id gets a generated one.
func (t *Tracker) Track(id string, subject models.Property, acquisitionPrice, arv, repairCost decimal.Decimal, comps []models.Property) models.DealPerformance {
	if id == "" {
		id = uuid.NewString()
	}

	quality := t.filter.QualityMetrics(comps, subject)

	var margin float64
	if !acquisitionPrice.IsZero() {
		margin, _ = arv.Sub(acquisitionPrice).Sub(repairCost).
			Div(acquisitionPrice).Float64()
	}

	confidence := t.cfg.BaseConfidence
	if quality.AverageScore > t.cfg.QualityThreshold {
		confidence += t.cfg.HighQualityBonus
	}
	if len(comps) >= t.cfg.MinCompsForBonus {
		confidence += t.cfg.DeepCompSetBonus
	}
	switch subject.MarketCondition {
	case models.MarketStable:
		confidence += t.cfg.StableMarketBonus
	case models.MarketHot:
		confidence -= t.cfg.HotMarketPenalty
	}
	if confidence < t.cfg.ConfidenceFloor {
		confidence = t.cfg.ConfidenceFloor
	}
	if confidence > t.cfg.ConfidenceCeiling {
		confidence = t.cfg.ConfidenceCeiling
	}

	return models.DealPerformance{
		ID:                   id,
		SubjectAddress:       subject.Address,
		AcquisitionPrice:     acquisitionPrice,
		EstimatedARV:         arv,
		EstimatedRepairCosts: repairCost,
		EstimatedMargin:      margin,
		MarginConfidence:     confidence,
		CompQualityScore:     quality.AverageScore,
		MarketCondition:      subject.MarketCondition,
		Status:               models.DealStatusAnalyzing,
		CreatedAt:            time.Now(),
	}
}
