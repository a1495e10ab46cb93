package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DealStatus tracks a deal through its lifecycle:
// analyzing -> under_contract -> closed|flipped.
type DealStatus string

const (
	DealStatusAnalyzing     DealStatus = "analyzing"
	DealStatusUnderContract DealStatus = "under_contract"
	DealStatusClosed        DealStatus = "closed"
	DealStatusFlipped       DealStatus = "flipped"
)

// DealPerformance is a tracked acquisition: the estimates made at analysis
// time and, once the deal closes, the actual outcomes. Records are mutated
// only through the explicit transition methods and are never deleted here;
// retention is the persistence layer's concern.
type DealPerformance struct {
	ID                   string          `json:"deal_id"`
	SubjectAddress       string          `json:"subject_address"`
	AcquisitionPrice     decimal.Decimal `json:"acquisition_price"`
	EstimatedARV         decimal.Decimal `json:"estimated_arv"`
	EstimatedRepairCosts decimal.Decimal `json:"estimated_repair_costs"`
	EstimatedMargin      float64         `json:"estimated_margin"`
	MarginConfidence     float64         `json:"margin_confidence"`
	CompQualityScore     float64         `json:"comp_quality_score"`
	MarketCondition      MarketCondition `json:"market_condition"`
	Status               DealStatus      `json:"deal_status"`
	CreatedAt            time.Time       `json:"created_date"`
	ClosedAt             *time.Time      `json:"closed_date,omitempty"`

	ActualARV         *decimal.Decimal `json:"actual_arv,omitempty"`
	ActualRepairCosts *decimal.Decimal `json:"actual_repair_costs,omitempty"`
	ActualMargin      *float64         `json:"actual_margin,omitempty"`
	ROIPercentage     *float64         `json:"roi_percentage,omitempty"`
}

// MarkUnderContract transitions the deal out of analysis.
func (d *DealPerformance) MarkUnderContract() {
	d.Status = DealStatusUnderContract
}

// Close records the actual outcome of the deal and computes realized margin
// and ROI against the acquisition price.
func (d *DealPerformance) Close(actualARV, actualRepairCosts decimal.Decimal) {
	d.settle(DealStatusClosed, actualARV, actualRepairCosts)
}

// Flip is Close for deals exited by assignment rather than resale.
func (d *DealPerformance) Flip(actualARV, actualRepairCosts decimal.Decimal) {
	d.settle(DealStatusFlipped, actualARV, actualRepairCosts)
}

func (d *DealPerformance) settle(status DealStatus, actualARV, actualRepairCosts decimal.Decimal) {
	now := time.Now()
	d.Status = status
	d.ClosedAt = &now
	d.ActualARV = &actualARV
	d.ActualRepairCosts = &actualRepairCosts

	if d.AcquisitionPrice.IsZero() {
		return
	}
	margin, _ := actualARV.Sub(d.AcquisitionPrice).Sub(actualRepairCosts).
		Div(d.AcquisitionPrice).Float64()
	roi := margin * 100
	d.ActualMargin = &margin
	d.ROIPercentage = &roi
}

// IsSettled reports whether the deal has a recorded outcome.
func (d *DealPerformance) IsSettled() bool {
	return d.Status == DealStatusClosed || d.Status == DealStatusFlipped
}

// PerformanceMetrics is an aggregate over a collection of tracked deals plus
// market-trend snapshots. Accuracy figures only consider settled deals; an
// empty input yields all-zero metrics rather than an error.
type PerformanceMetrics struct {
	TotalDeals          int     `json:"total_deals"`
	AverageMargin       float64 `json:"average_margin"`
	MarginAccuracy      float64 `json:"margin_accuracy"`
	CompQualityTrend    float64 `json:"comp_quality_trend"`
	ARVAccuracyTrend    float64 `json:"arv_accuracy_trend"`
	RepairCostAccuracy  float64 `json:"repair_cost_accuracy"`
	DealVelocityDays    float64 `json:"deal_velocity"`
	MarketTrendAccuracy float64 `json:"market_trend_accuracy"`
	ROITrend            float64 `json:"roi_trend"`
	RiskAdjustedReturn  float64 `json:"risk_adjusted_return"`
}
