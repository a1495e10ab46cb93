package valuation

import (
	"github.com/shopspring/decimal"

	"comp-machine/models"
)

// OfferSizer calculates the maximum allowable offer for a subject property.
type OfferSizer interface {
	// CalculateMAO determines the highest acquisition price that preserves
	// the target margin, given the ARV, repair estimate, and the confidence
	// of the underlying valuation.
	CalculateMAO(arv models.ARVResult, repairs models.RepairEstimate, confidence float64) decimal.Decimal
}

// OfferConfig holds configuration for offer sizing.
type OfferConfig struct {
	// ARVPercent is the fraction of ARV available before repairs (the
	// classic 70% rule).
	ARVPercent float64

	// MinOffer is the floor below which no offer is worth writing.
	MinOffer int64

	// UseConfidenceScaling whether to shade the offer by valuation confidence.
	UseConfidenceScaling bool
}

// DefaultOfferConfig returns sensible defaults for offer sizing.
func DefaultOfferConfig() OfferConfig {
	return OfferConfig{
		ARVPercent:           0.70,
		MinOffer:             0,
		UseConfidenceScaling: true,
	}
}

// DefaultOfferSizer implements the 70%-rule offer calculation.
type DefaultOfferSizer struct {
	config OfferConfig
}

// NewDefaultOfferSizer creates a new DefaultOfferSizer.
func NewDefaultOfferSizer(config OfferConfig) *DefaultOfferSizer {
	return &DefaultOfferSizer{config: config}
}

// CalculateMAO computes ARV x ARVPercent - repairs, optionally shaded by
// confidence: low-confidence valuations offer between 90% and 100% of the
// formula amount. Negative results floor at the configured minimum.
func (os *DefaultOfferSizer) CalculateMAO(arv models.ARVResult, repairs models.RepairEstimate, confidence float64) decimal.Decimal {
	arvValue := decimal.NewFromFloat(arv.Value)
	repairCost := decimal.NewFromFloat(repairs.Estimate)

	offer := arvValue.Mul(decimal.NewFromFloat(os.config.ARVPercent)).Sub(repairCost)

	if os.config.UseConfidenceScaling {
		// Maps confidence 0-1 to a 0.9-1.0 shading factor.
		factor := 0.9 + clamp01(confidence)*0.1
		offer = offer.Mul(decimal.NewFromFloat(factor))
	}

	minOffer := decimal.NewFromInt(os.config.MinOffer)
	if offer.LessThan(minOffer) {
		return minOffer
	}

	return offer.Round(0)
}
