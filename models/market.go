package models

import "time"

// MicroMarketData is a point-in-time market-health snapshot for a zip code.
// It is regenerated per call and never persisted.
type MicroMarketData struct {
	ZipCode                  string          `json:"zip_code"`
	MarketHealthScore        float64         `json:"market_health_score"`
	InventoryLevel           InventoryLevel  `json:"inventory_level"`
	DOMTrend                 TrendDirection  `json:"dom_trend"`
	MarketCondition          MarketCondition `json:"market_condition"`
	PriceTrend               TrendDirection  `json:"price_trend"`
	SeasonalFactor           float64         `json:"seasonal_factor"`
	SchoolDistrictRating     float64         `json:"school_district_rating"`
	NeighborhoodDesirability float64         `json:"neighborhood_desirability"`
}

// CyclePhase names the position of a market in its cycle.
type CyclePhase string

const (
	CycleExpansion   CyclePhase = "expansion"
	CyclePeak        CyclePhase = "peak"
	CycleContraction CyclePhase = "contraction"
	CycleTrough      CyclePhase = "trough"
)

// MarketTrend is derived from a time-ordered series of historical sales for
// one zip code over a window. Fewer than the minimum sample size degrades to
// a stable, low-confidence default rather than an error.
type MarketTrend struct {
	ZipCode          string         `json:"zip_code"`
	TrendPeriodDays  int            `json:"trend_period"`
	PriceTrend       TrendDirection `json:"price_trend"`
	TrendStrength    float64        `json:"trend_strength"`
	TrendConfidence  float64        `json:"trend_confidence"`
	VolatilityIndex  float64        `json:"volatility_index"`
	MomentumScore    float64        `json:"momentum_score"`
	MarketCyclePhase CyclePhase     `json:"market_cycle_phase"`
	LastUpdated      time.Time      `json:"last_updated"`
}
