package market

import (
	"testing"
	"time"

	"comp-machine/models"
)

type fixedHealthProvider struct {
	snapshot HealthSnapshot
}

func (f fixedHealthProvider) Health(zipCode string) HealthSnapshot {
	return f.snapshot
}

func TestAnalyze_HealthBands(t *testing.T) {
	tests := []struct {
		name              string
		health            float64
		expectedCondition models.MarketCondition
		expectedInventory models.InventoryLevel
		expectedDOM       models.TrendDirection
		expectedPrice     models.TrendDirection
	}{
		{"hot market", 0.9, models.MarketHot, models.InventoryLow, models.TrendDecreasing, models.TrendIncreasing},
		{"stable market", 0.7, models.MarketStable, models.InventoryMedium, models.TrendStable, models.TrendStable},
		{"cold market", 0.5, models.MarketCold, models.InventoryHigh, models.TrendIncreasing, models.TrendDecreasing},
		{"stable boundary", 0.8, models.MarketStable, models.InventoryMedium, models.TrendStable, models.TrendStable},
		{"cold boundary", 0.6, models.MarketCold, models.InventoryHigh, models.TrendIncreasing, models.TrendDecreasing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := NewMicroMarketAnalyzer(fixedHealthProvider{
				snapshot: HealthSnapshot{HealthScore: tt.health},
			})

			data := analyzer.Analyze("78701", "100 Main St")

			if data.MarketCondition != tt.expectedCondition {
				t.Errorf("Expected condition %s, got %s", tt.expectedCondition, data.MarketCondition)
			}
			if data.InventoryLevel != tt.expectedInventory {
				t.Errorf("Expected inventory %s, got %s", tt.expectedInventory, data.InventoryLevel)
			}
			if data.DOMTrend != tt.expectedDOM {
				t.Errorf("Expected DOM trend %s, got %s", tt.expectedDOM, data.DOMTrend)
			}
			if data.PriceTrend != tt.expectedPrice {
				t.Errorf("Expected price trend %s, got %s", tt.expectedPrice, data.PriceTrend)
			}
			if data.MarketHealthScore != tt.health {
				t.Errorf("Expected health score %f passed through, got %f", tt.health, data.MarketHealthScore)
			}
			if data.ZipCode != "78701" {
				t.Errorf("Expected zip code preserved, got %q", data.ZipCode)
			}
		})
	}
}

func TestAnalyze_SeasonalFactor(t *testing.T) {
	tests := []struct {
		name     string
		month    time.Month
		expected float64
	}{
		{"spring premium", time.March, 1.05},
		{"summer premium", time.August, 1.05},
		{"winter discount", time.December, 0.95},
		{"late winter discount", time.February, 0.95},
		{"fall discount", time.September, 0.95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := NewMicroMarketAnalyzer(fixedHealthProvider{
				snapshot: HealthSnapshot{HealthScore: 0.7},
			})
			analyzer.now = func() time.Time {
				return time.Date(2026, tt.month, 15, 0, 0, 0, 0, time.UTC)
			}

			data := analyzer.Analyze("78701", "")
			if data.SeasonalFactor != tt.expected {
				t.Errorf("Expected seasonal factor %f for %s, got %f", tt.expected, tt.month, data.SeasonalFactor)
			}
		})
	}
}

func TestAnalyze_ProviderFiguresPassThrough(t *testing.T) {
	analyzer := NewMicroMarketAnalyzer(fixedHealthProvider{
		snapshot: HealthSnapshot{
			HealthScore:              0.75,
			SchoolDistrictRating:     0.85,
			NeighborhoodDesirability: 0.65,
		},
	})

	data := analyzer.Analyze("78701", "")

	if data.SchoolDistrictRating != 0.85 {
		t.Errorf("Expected school rating 0.85, got %f", data.SchoolDistrictRating)
	}
	if data.NeighborhoodDesirability != 0.65 {
		t.Errorf("Expected neighborhood desirability 0.65, got %f", data.NeighborhoodDesirability)
	}
}

func TestNewMicroMarketAnalyzer_NilProviderFallsBack(t *testing.T) {
	analyzer := NewMicroMarketAnalyzer(nil)

	data := analyzer.Analyze("78701", "")
	if data.MarketHealthScore < 0.6 || data.MarketHealthScore >= 1.0 {
		t.Errorf("Expected hash-provider health in [0.6, 1.0), got %f", data.MarketHealthScore)
	}
}

func TestHashHealthProvider_Deterministic(t *testing.T) {
	provider := HashHealthProvider{}

	first := provider.Health("78701")
	second := provider.Health("78701")

	if first != second {
		t.Errorf("Expected identical snapshots for the same zip: %+v vs %+v", first, second)
	}
}

func TestHashHealthProvider_Range(t *testing.T) {
	provider := HashHealthProvider{}

	for _, zip := range []string{"78701", "99502", "02134", "10001", "60601"} {
		snap := provider.Health(zip)

		for name, v := range map[string]float64{
			"health":       snap.HealthScore,
			"schools":      snap.SchoolDistrictRating,
			"neighborhood": snap.NeighborhoodDesirability,
		} {
			if v < 0.6 || v >= 1.0 {
				t.Errorf("Expected %s for %s in [0.6, 1.0), got %f", name, zip, v)
			}
		}
	}
}

func TestHashHealthProvider_VariesByZip(t *testing.T) {
	provider := HashHealthProvider{}

	a := provider.Health("78701")
	b := provider.Health("99502")

	if a == b {
		t.Error("Expected different zips to produce different snapshots")
	}
}
