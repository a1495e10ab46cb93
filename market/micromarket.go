package market

import (
	"time"

	"comp-machine/models"
)

// HealthSnapshot is the raw per-zip input of a micro-market analysis.
type HealthSnapshot struct {
	HealthScore              float64
	SchoolDistrictRating     float64
	NeighborhoodDesirability float64
}

// HealthProvider supplies zip-level market health figures. Production
// wiring backs this with the external market data service; the default is
// a deterministic stand-in so identical inputs give identical snapshots.
type HealthProvider interface {
	Health(zipCode string) HealthSnapshot
}

// MicroMarketAnalyzer derives a market snapshot from a single health figure.
type MicroMarketAnalyzer struct {
	provider HealthProvider
	now      func() time.Time
}

// NewMicroMarketAnalyzer returns an analyzer over the given provider. A nil
// provider falls back to the deterministic hash provider.
func NewMicroMarketAnalyzer(provider HealthProvider) *MicroMarketAnalyzer {
	if provider == nil {
		provider = HashHealthProvider{}
	}
	return &MicroMarketAnalyzer{provider: provider, now: time.Now}
}

// Analyze produces the market-health snapshot for a zip code. The subject
// address is accepted for parity with the valuation pipeline but does not
// influence the zip-level figures.
func (a *MicroMarketAnalyzer) Analyze(zipCode, address string) models.MicroMarketData {
	snap := a.provider.Health(zipCode)
	health := snap.HealthScore

	var (
		inventory models.InventoryLevel
		domTrend  models.TrendDirection
		condition models.MarketCondition
	)
	switch {
	case health > 0.8:
		inventory = models.InventoryLow
		domTrend = models.TrendDecreasing
		condition = models.MarketHot
	case health > 0.6:
		inventory = models.InventoryMedium
		domTrend = models.TrendStable
		condition = models.MarketStable
	default:
		inventory = models.InventoryHigh
		domTrend = models.TrendIncreasing
		condition = models.MarketCold
	}

	// Price trend moves opposite to days-on-market.
	var priceTrend models.TrendDirection
	switch domTrend {
	case models.TrendDecreasing:
		priceTrend = models.TrendIncreasing
	case models.TrendIncreasing:
		priceTrend = models.TrendDecreasing
	default:
		priceTrend = models.TrendStable
	}

	return models.MicroMarketData{
		ZipCode:                  zipCode,
		MarketHealthScore:        health,
		InventoryLevel:           inventory,
		DOMTrend:                 domTrend,
		MarketCondition:          condition,
		PriceTrend:               priceTrend,
		SeasonalFactor:           seasonalFactor(a.now()),
		SchoolDistrictRating:     snap.SchoolDistrictRating,
		NeighborhoodDesirability: snap.NeighborhoodDesirability,
	}
}

// seasonalFactor applies the spring/summer listing premium.
func seasonalFactor(t time.Time) float64 {
	if t.Month() >= time.March && t.Month() <= time.August {
		return 1.05
	}
	return 0.95
}
