package valuation

import (
	"errors"
	"testing"

	"comp-machine/models"
)

func compAt(price float64) models.Property {
	return models.Property{
		Condition:    models.ConditionFair,
		GLASqft:      1500,
		PropertyType: "single_family",
		SalePrice:    price,
	}
}

func TestEstimate_NoComps(t *testing.T) {
	calc := NewARVCalculator(DefaultARVConfig)

	_, err := calc.Estimate(nil, nil)
	if err == nil {
		t.Fatal("Expected error for empty comp list")
	}
	if !errors.Is(err, ErrNoComps) {
		t.Errorf("Expected ErrNoComps, got %v", err)
	}
}

func TestEstimate_WeightedMedian(t *testing.T) {
	calc := NewARVCalculator(DefaultARVConfig)

	comps := []models.Property{compAt(180000), compAt(200000), compAt(150000)}

	result, err := calc.Estimate(comps, nil)
	if err != nil {
		t.Fatalf("Estimate returned error: %v", err)
	}

	// 150000*0.40 + 180000*0.35 + 200000*0.25 = 173000, then *0.95
	if result.Value != 164350 {
		t.Errorf("Expected value 164350, got %f", result.Value)
	}
	// Range low is the lowest comp, which beats value*0.92 here
	if result.RangeLow != 150000 {
		t.Errorf("Expected range low 150000, got %f", result.RangeLow)
	}
	if result.RangeHigh != 200000 {
		t.Errorf("Expected range high 200000, got %f", result.RangeHigh)
	}
	if result.Method != "wholesaling_weighted_median" {
		t.Errorf("Unexpected method %q", result.Method)
	}
	if result.SafetyMargin != 0.95 {
		t.Errorf("Expected safety margin 0.95, got %f", result.SafetyMargin)
	}
}

func TestEstimate_EvenCountUsesUpperMiddle(t *testing.T) {
	calc := NewARVCalculator(DefaultARVConfig)

	comps := []models.Property{compAt(100000), compAt(150000), compAt(200000), compAt(250000)}

	result, err := calc.Estimate(comps, nil)
	if err != nil {
		t.Fatalf("Estimate returned error: %v", err)
	}

	// Median element is index 2 (200000), not the averaged middle pair:
	// 100000*0.40 + 200000*0.35 + 250000*0.25 = 172500, then *0.95
	if result.Value != 163875 {
		t.Errorf("Expected value 163875, got %f", result.Value)
	}
}

func TestEstimate_MarketAdjustments(t *testing.T) {
	calc := NewARVCalculator(DefaultARVConfig)
	comps := []models.Property{compAt(180000), compAt(200000), compAt(150000)}

	tests := []struct {
		name      string
		condition models.MarketCondition
		expected  float64
	}{
		{"hot market shades down", models.MarketHot, 161063},
		{"cold market pads up", models.MarketCold, 167637},
		{"stable market unadjusted", models.MarketStable, 164350},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject := models.Property{MarketCondition: tt.condition}
			result, err := calc.Estimate(comps, &subject)
			if err != nil {
				t.Fatalf("Estimate returned error: %v", err)
			}
			if result.Value != tt.expected {
				t.Errorf("Expected value %f, got %f", tt.expected, result.Value)
			}
		})
	}
}

func TestEstimate_UsesAdjustedPrice(t *testing.T) {
	calc := NewARVCalculator(DefaultARVConfig)

	comp := compAt(300000)
	comp.AdjustedPrice = 100000

	result, err := calc.Estimate([]models.Property{comp}, nil)
	if err != nil {
		t.Fatalf("Estimate returned error: %v", err)
	}

	// Single comp: 100000*(0.40+0.35+0.25)*0.95
	if result.Value != 95000 {
		t.Errorf("Expected value 95000 from adjusted price, got %f", result.Value)
	}
}

func TestEstimate_DoesNotMutateInput(t *testing.T) {
	calc := NewARVCalculator(DefaultARVConfig)

	comps := []models.Property{compAt(200000), compAt(150000)}
	if _, err := calc.Estimate(comps, nil); err != nil {
		t.Fatalf("Estimate returned error: %v", err)
	}

	if comps[0].SalePrice != 200000 {
		t.Errorf("Estimate reordered the caller's slice")
	}
}

func TestTrendAdjustedValue(t *testing.T) {
	arv := models.ARVResult{Value: 200000}

	tests := []struct {
		momentum float64
		expected float64
	}{
		{0, 200000},
		{0.5, 202000},
		{-0.5, 198000},
	}

	for _, tt := range tests {
		got := TrendAdjustedValue(arv, models.MarketTrend{MomentumScore: tt.momentum})
		if got != tt.expected {
			t.Errorf("TrendAdjustedValue(momentum=%f) = %f, expected %f", tt.momentum, got, tt.expected)
		}
	}
}
