package models

import "time"

// Condition is the canonical five-point property condition scale.
// Ordering matters: poor < fair < average < renovated < like_new.
type Condition string

const (
	ConditionPoor      Condition = "poor"
	ConditionFair      Condition = "fair"
	ConditionAverage   Condition = "average"
	ConditionRenovated Condition = "renovated"
	ConditionLikeNew   Condition = "like_new"
)

// conditionRanks orders conditions for distance comparisons.
var conditionRanks = map[Condition]int{
	ConditionPoor:      1,
	ConditionFair:      2,
	ConditionAverage:   3,
	ConditionRenovated: 4,
	ConditionLikeNew:   5,
}

// Rank returns the ordinal position of the condition on the scale.
// Unknown labels rank as average so malformed input degrades to neutral
// rather than failing.
func (c Condition) Rank() int {
	if rank, ok := conditionRanks[c]; ok {
		return rank
	}
	return conditionRanks[ConditionAverage]
}

// IsValid reports whether the condition is one of the five known labels.
func (c Condition) IsValid() bool {
	_, ok := conditionRanks[c]
	return ok
}

// RankDistance returns the absolute rank distance between two conditions.
func (c Condition) RankDistance(other Condition) int {
	d := c.Rank() - other.Rank()
	if d < 0 {
		return -d
	}
	return d
}

type TransactionType string

const (
	TransactionArmLength  TransactionType = "arm_length"
	TransactionFamilySale TransactionType = "family_sale"
	TransactionShortSale  TransactionType = "short_sale"
	TransactionBankOwned  TransactionType = "bank_owned"
)

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentConventional PaymentMethod = "conventional"
	PaymentFHA          PaymentMethod = "fha"
	PaymentVA           PaymentMethod = "va"
)

type MarketCondition string

const (
	MarketHot    MarketCondition = "hot"
	MarketCold   MarketCondition = "cold"
	MarketStable MarketCondition = "stable"
)

type InventoryLevel string

const (
	InventoryLow    InventoryLevel = "low"
	InventoryMedium InventoryLevel = "medium"
	InventoryHigh   InventoryLevel = "high"
)

// TrendDirection describes the direction of a market series such as
// days-on-market or prices.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendStable     TrendDirection = "stable"
	TrendDecreasing TrendDirection = "decreasing"
)

// Property is an immutable snapshot of a parcel, either the subject of a
// valuation or a comparable sale. Optional fields are zero-valued when the
// source record did not carry them; scorers treat those as missing data.
type Property struct {
	Address      string    `json:"address"`
	Condition    Condition `json:"condition"`
	GLASqft      float64   `json:"gla_sqft"`
	Beds         int       `json:"beds"`
	Baths        float64   `json:"baths"`
	LotSqft      float64   `json:"lot_sqft,omitempty"`
	YearBuilt    int       `json:"year_built,omitempty"`
	PropertyType string    `json:"property_type"`

	// Sale attributes, present on comps.
	SalePrice             float64         `json:"sale_price,omitempty"`
	AdjustedPrice         float64         `json:"adjusted_price,omitempty"`
	DistanceMiles         float64         `json:"distance_miles,omitempty"`
	SaleDate              *time.Time      `json:"sale_date,omitempty"`
	TransactionType       TransactionType `json:"transaction_type,omitempty"`
	PaymentMethod         PaymentMethod   `json:"payment_method,omitempty"`
	SellerConcessions     float64         `json:"seller_concessions,omitempty"`
	ConditionAtSale       Condition       `json:"condition_at_sale,omitempty"`
	ConditionImprovements bool            `json:"condition_improvements,omitempty"`
	MLSID                 string          `json:"mls_id,omitempty"`
	CountyRecordID        string          `json:"county_record_id,omitempty"`

	// Geography.
	ZipCode        string `json:"zip_code,omitempty"`
	City           string `json:"city,omitempty"`
	County         string `json:"county,omitempty"`
	SchoolDistrict string `json:"school_district,omitempty"`
	Neighborhood   string `json:"neighborhood,omitempty"`

	// Market-state tags.
	MarketCondition MarketCondition `json:"market_condition,omitempty"`
	InventoryLevel  InventoryLevel  `json:"inventory_level,omitempty"`
	DOMTrend        TrendDirection  `json:"dom_trend,omitempty"`
}

// ComparablePrice returns the price used for valuation math: the adjusted
// price when present, otherwise the raw sale price.
func (p Property) ComparablePrice() float64 {
	if p.AdjustedPrice > 0 {
		return p.AdjustedPrice
	}
	return p.SalePrice
}
