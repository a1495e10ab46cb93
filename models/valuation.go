package models

// ScoreBreakdown carries every sub-score that fed a composite comp score,
// so a valuation can be explained factor by factor.
type ScoreBreakdown struct {
	Distance           float64 `json:"distance"`
	Recency            float64 `json:"recency"`
	GLA                float64 `json:"gla"`
	Condition          float64 `json:"condition"`
	Location           float64 `json:"location"`
	PropertyType       float64 `json:"property_type"`
	Style              float64 `json:"style"`
	WholesalePotential float64 `json:"wholesale_potential"`
}

// CompScore is the weighted composite similarity of a comp to a subject.
type CompScore struct {
	Comp      Property       `json:"comp"`
	Score     float64        `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

// ValidationResult is the reliability verdict for a single comp's
// transaction metadata. The score starts at 1.0 and is floored at 0; a comp
// is valid when the score is at least the validity threshold.
type ValidationResult struct {
	Comp            Property `json:"comp"`
	IsValid         bool     `json:"is_valid"`
	ValidationScore float64  `json:"validation_score"`
	Issues          []string `json:"issues"`
	Warnings        []string `json:"warnings"`
	Recommendations []string `json:"recommendations"`
}

// ARVWeights records the percentile weights applied to the sorted comp set.
type ARVWeights struct {
	Lowest  float64 `json:"lowest"`
	Median  float64 `json:"median"`
	Highest float64 `json:"highest"`
}

// ARVResult is a weighted-percentile after-repair value estimate.
//
// RangeLow and RangeHigh are computed from comp extremes independently of
// Value and are not guaranteed to bracket it; callers must not assume
// range_low <= value <= range_high.
type ARVResult struct {
	Value          float64    `json:"value"`
	RangeLow       float64    `json:"range_low"`
	RangeHigh      float64    `json:"range_high"`
	Method         string     `json:"method"`
	WeightsApplied ARVWeights `json:"weights_applied"`
	SafetyMargin   float64    `json:"safety_margin"`
}

// RepairMethod describes how a repair estimate was produced.
type RepairMethod string

const (
	RepairMethodConditionBased RepairMethod = "condition_based"
	RepairMethodPhotoInferred  RepairMethod = "photo_inferred"
	RepairMethodUserProvided   RepairMethod = "user_provided"
	RepairMethodHybrid         RepairMethod = "hybrid"
)

// RepairBreakdown splits a repair estimate into cost categories.
type RepairBreakdown struct {
	Structural float64 `json:"structural"`
	Cosmetic   float64 `json:"cosmetic"`
	Mechanical float64 `json:"mechanical"`
	Other      float64 `json:"other"`
}

// RepairAdjustments records the market factors applied to the base numbers.
type RepairAdjustments struct {
	InflationFactor    float64 `json:"inflation_factor"`
	RegionalMultiplier float64 `json:"regional_multiplier"`
	FinalAdjustment    float64 `json:"final_adjustment"`
}

// RepairEstimate is a condition-driven renovation cost estimate.
type RepairEstimate struct {
	Estimate          float64           `json:"estimate"`
	RangeLow          float64           `json:"range_low"`
	RangeHigh         float64           `json:"range_high"`
	Method            RepairMethod      `json:"method"`
	Confidence        float64           `json:"confidence"`
	Breakdown         RepairBreakdown   `json:"breakdown"`
	Assumptions       []string          `json:"assumptions"`
	MarketAdjustments RepairAdjustments `json:"market_adjustments"`
}

// CompQualityMetrics summarizes the score distribution of a comp set.
type CompQualityMetrics struct {
	TotalComps            int     `json:"total_comps"`
	AverageScore          float64 `json:"average_score"`
	AverageConditionScore float64 `json:"average_condition_score"`
	TopCompScore          float64 `json:"top_comp_score"`
	BottomCompScore       float64 `json:"bottom_comp_score"`
	ScoreRange            float64 `json:"score_range"`
}
