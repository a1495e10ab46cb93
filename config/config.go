package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// External service configuration
	MarketData MarketDataConfig

	// Comp scoring configuration
	Scoring ScoringConfig

	// Valuation pipeline configuration
	Valuation ValuationConfig

	// Repair estimation configuration
	Repair RepairConfig

	// Offer sizing configuration
	Offer OfferConfig

	// Performance tracking configuration
	Performance PerformanceConfig

	// HTTP configuration
	HTTP HTTPConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// MarketDataConfig holds market data API configuration
type MarketDataConfig struct {
	APIKey  string
	BaseURL string
}

// ScoringConfig holds the comp similarity factor weights
type ScoringConfig struct {
	WeightDistance           float64
	WeightRecency            float64
	WeightGLA                float64
	WeightCondition          float64
	WeightLocation           float64
	WeightPropertyType       float64
	WeightStyle              float64
	WeightWholesalePotential float64
}

// ValuationConfig holds valuation pipeline configuration
type ValuationConfig struct {
	TimeoutSeconds   int
	ConcurrencyLimit int
	TrendWindowDays  int
	SafetyMargin     float64
	ValidityScoreMin float64
	ARVWeightLowest  float64
	ARVWeightMedian  float64
	ARVWeightHighest float64
	HotAdjustment    float64
	ColdAdjustment   float64
}

// RepairConfig holds repair estimation configuration
type RepairConfig struct {
	InflationFactor    float64
	RegionalMultiplier float64
}

// OfferConfig holds offer sizing configuration
type OfferConfig struct {
	ARVPercent           float64
	MinOffer             int64
	UseConfidenceScaling bool
}

// PerformanceConfig holds deal tracking configuration
type PerformanceConfig struct {
	TargetMargin    float64
	PreferredMargin float64
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port               int
	CORSAllowedOrigins string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		MarketData: MarketDataConfig{
			APIKey:  os.Getenv("MARKET_DATA_API_KEY"),
			BaseURL: getEnvString("MARKET_DATA_BASE_URL", "https://api.marketdata.example.com/v1"),
		},
		Scoring: ScoringConfig{
			WeightDistance:           getEnvFloat("SCORING_WEIGHT_DISTANCE", 0.20),
			WeightRecency:            getEnvFloat("SCORING_WEIGHT_RECENCY", 0.20),
			WeightGLA:                getEnvFloat("SCORING_WEIGHT_GLA", 0.15),
			WeightCondition:          getEnvFloat("SCORING_WEIGHT_CONDITION", 0.25),
			WeightLocation:           getEnvFloat("SCORING_WEIGHT_LOCATION", 0.10),
			WeightPropertyType:       getEnvFloat("SCORING_WEIGHT_PROPERTY_TYPE", 0.05),
			WeightStyle:              getEnvFloat("SCORING_WEIGHT_STYLE", 0.03),
			WeightWholesalePotential: getEnvFloat("SCORING_WEIGHT_WHOLESALE", 0.02),
		},
		Valuation: ValuationConfig{
			TimeoutSeconds:   getEnvInt("VALUATION_TIMEOUT_SECONDS", 30),
			ConcurrencyLimit: getEnvInt("VALUATION_CONCURRENCY_LIMIT", 3),
			TrendWindowDays:  getEnvInt("VALUATION_TREND_WINDOW_DAYS", 180),
			SafetyMargin:     getEnvFloat("VALUATION_SAFETY_MARGIN", 0.95),
			ValidityScoreMin: getEnvFloat("VALUATION_VALIDITY_SCORE_MIN", 0.6),
			ARVWeightLowest:  getEnvFloat("VALUATION_ARV_WEIGHT_LOWEST", 0.40),
			ARVWeightMedian:  getEnvFloat("VALUATION_ARV_WEIGHT_MEDIAN", 0.35),
			ARVWeightHighest: getEnvFloat("VALUATION_ARV_WEIGHT_HIGHEST", 0.25),
			HotAdjustment:    getEnvFloatRange("VALUATION_HOT_ADJUSTMENT", 0.98, 0.8, 1.2),
			ColdAdjustment:   getEnvFloatRange("VALUATION_COLD_ADJUSTMENT", 1.02, 0.8, 1.2),
		},
		Repair: RepairConfig{
			InflationFactor:    getEnvFloatRange("REPAIR_INFLATION_FACTOR", 1.15, 1.0, 2.0),
			RegionalMultiplier: getEnvFloatRange("REPAIR_REGIONAL_MULTIPLIER", 1.0, 0.5, 2.0),
		},
		Offer: OfferConfig{
			ARVPercent:           getEnvFloat("OFFER_ARV_PERCENT", 0.70),
			MinOffer:             int64(getEnvInt("OFFER_MIN", 0)),
			UseConfidenceScaling: getEnvBool("OFFER_USE_CONFIDENCE_SCALING", true),
		},
		Performance: PerformanceConfig{
			TargetMargin:    getEnvFloat("PERFORMANCE_TARGET_MARGIN", 0.25),
			PreferredMargin: getEnvFloat("PERFORMANCE_PREFERRED_MARGIN", 0.35),
		},
		HTTP: HTTPConfig{
			Port:               getEnvInt("HTTP_PORT", 8080),
			CORSAllowedOrigins: getEnvString("CORS_ALLOWED_ORIGINS", "*"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate scoring weights sum to 1.0
	weightSum := c.Scoring.WeightDistance + c.Scoring.WeightRecency + c.Scoring.WeightGLA +
		c.Scoring.WeightCondition + c.Scoring.WeightLocation + c.Scoring.WeightPropertyType +
		c.Scoring.WeightStyle + c.Scoring.WeightWholesalePotential
	if weightSum < 0.99 || weightSum > 1.01 {
		return fmt.Errorf("scoring weights must sum to 1.0, got %.2f", weightSum)
	}

	if c.Valuation.SafetyMargin <= 0 || c.Valuation.SafetyMargin > 1 {
		return fmt.Errorf("VALUATION_SAFETY_MARGIN must be in (0, 1], got %.2f", c.Valuation.SafetyMargin)
	}
	if c.Valuation.ValidityScoreMin < 0 || c.Valuation.ValidityScoreMin > 1 {
		return fmt.Errorf("VALUATION_VALIDITY_SCORE_MIN must be between 0 and 1, got %.2f", c.Valuation.ValidityScoreMin)
	}

	// Validate ARV percentile weights sum to 1.0
	arvWeightSum := c.Valuation.ARVWeightLowest + c.Valuation.ARVWeightMedian + c.Valuation.ARVWeightHighest
	if arvWeightSum < 0.99 || arvWeightSum > 1.01 {
		return fmt.Errorf("ARV percentile weights must sum to 1.0, got %.2f", arvWeightSum)
	}

	if c.Offer.ARVPercent <= 0 || c.Offer.ARVPercent > 1 {
		return fmt.Errorf("OFFER_ARV_PERCENT must be in (0, 1], got %.2f", c.Offer.ARVPercent)
	}
	if c.Performance.TargetMargin > c.Performance.PreferredMargin {
		return fmt.Errorf("PERFORMANCE_TARGET_MARGIN (%.2f) must not exceed PERFORMANCE_PREFERRED_MARGIN (%.2f)",
			c.Performance.TargetMargin, c.Performance.PreferredMargin)
	}

	// Validate positive integers
	if c.Valuation.TimeoutSeconds <= 0 {
		return fmt.Errorf("VALUATION_TIMEOUT_SECONDS must be positive, got %d", c.Valuation.TimeoutSeconds)
	}
	if c.Valuation.ConcurrencyLimit <= 0 {
		return fmt.Errorf("VALUATION_CONCURRENCY_LIMIT must be positive, got %d", c.Valuation.ConcurrencyLimit)
	}
	if c.Valuation.TrendWindowDays <= 0 {
		return fmt.Errorf("VALUATION_TREND_WINDOW_DAYS must be positive, got %d", c.Valuation.TrendWindowDays)
	}

	return nil
}

// HasDatabase returns true if database configuration is available
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// HasMarketData returns true if market data API configuration is available
func (c *Config) HasMarketData() bool {
	return c.MarketData.APIKey != ""
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil && parsed >= 0 && parsed <= 1 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloatRange(key string, defaultValue, minVal, maxVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil && parsed >= minVal && parsed <= maxVal {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			URL: "",
		},
		MarketData: MarketDataConfig{
			APIKey:  "",
			BaseURL: "https://api.marketdata.example.com/v1",
		},
		Scoring: ScoringConfig{
			WeightDistance:           0.20,
			WeightRecency:            0.20,
			WeightGLA:                0.15,
			WeightCondition:          0.25,
			WeightLocation:           0.10,
			WeightPropertyType:       0.05,
			WeightStyle:              0.03,
			WeightWholesalePotential: 0.02,
		},
		Valuation: ValuationConfig{
			TimeoutSeconds:   30,
			ConcurrencyLimit: 3,
			TrendWindowDays:  180,
			SafetyMargin:     0.95,
			ValidityScoreMin: 0.6,
			ARVWeightLowest:  0.40,
			ARVWeightMedian:  0.35,
			ARVWeightHighest: 0.25,
			HotAdjustment:    0.98,
			ColdAdjustment:   1.02,
		},
		Repair: RepairConfig{
			InflationFactor:    1.15,
			RegionalMultiplier: 1.0,
		},
		Offer: OfferConfig{
			ARVPercent:           0.70,
			MinOffer:             0,
			UseConfidenceScaling: true,
		},
		Performance: PerformanceConfig{
			TargetMargin:    0.25,
			PreferredMargin: 0.35,
		},
		HTTP: HTTPConfig{
			Port:               8080,
			CORSAllowedOrigins: "*",
		},
	}
}
