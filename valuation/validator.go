package valuation

import (
	"fmt"

	"comp-machine/models"
)

// ValidatorConfig holds the deductions and threshold of comp validation.
type ValidatorConfig struct {
	ShortSalePenalty            float64
	FamilySalePenalty           float64
	ConcessionsPenalty          float64
	ConditionImprovementPenalty float64
	ConditionChangePenalty      float64
	CashBonus                   float64
	ValidityThreshold           float64
}

// DefaultValidatorConfig weights transaction type and condition drift as the
// strongest distorting factors; concessions and financing are second-order.
var DefaultValidatorConfig = ValidatorConfig{
	ShortSalePenalty:            0.3,
	FamilySalePenalty:           0.2,
	ConcessionsPenalty:          0.1,
	ConditionImprovementPenalty: 0.15,
	ConditionChangePenalty:      0.25,
	CashBonus:                   0.1,
	ValidityThreshold:           0.6,
}

// Validator inspects a comp's transaction metadata and produces a validity
// verdict with an independent reliability score.
type Validator struct {
	cfg ValidatorConfig
}

// NewValidator returns a Validator using the given config.
func NewValidator(cfg ValidatorConfig) *Validator {
	return &Validator{cfg: cfg}
}

// Validate scores a single comp. The score starts at 1.0, takes deductions
// for distorting transaction attributes, gains for cash sales, and is
// floored at zero. A comp is valid when the score reaches the threshold.
func (v *Validator) Validate(comp models.Property) models.ValidationResult {
	issues := []string{}
	warnings := []string{}
	recommendations := []string{}
	score := 1.0

	if comp.TransactionType == models.TransactionShortSale {
		issues = append(issues, "Short sale - unreliable for valuation")
		score -= v.cfg.ShortSalePenalty
	}

	if comp.TransactionType == models.TransactionFamilySale {
		warnings = append(warnings, "Family sale - may not reflect market value")
		score -= v.cfg.FamilySalePenalty
	}

	if comp.PaymentMethod == models.PaymentCash {
		recommendations = append(recommendations, "Cash transaction - more reliable")
		score += v.cfg.CashBonus
	}

	if comp.SellerConcessions > 0 {
		warnings = append(warnings, fmt.Sprintf("Seller concessions: $%.0f", comp.SellerConcessions))
		score -= v.cfg.ConcessionsPenalty
	}

	if comp.ConditionImprovements {
		warnings = append(warnings, "Property condition improved between listing and sale")
		score -= v.cfg.ConditionImprovementPenalty
	}

	if comp.ConditionAtSale != "" && comp.ConditionAtSale != comp.Condition {
		issues = append(issues, "Condition changed between listing and sale")
		score -= v.cfg.ConditionChangePenalty
	}

	if score < 0 {
		score = 0
	}

	return models.ValidationResult{
		Comp:            comp,
		IsValid:         score >= v.cfg.ValidityThreshold,
		ValidationScore: score,
		Issues:          issues,
		Warnings:        warnings,
		Recommendations: recommendations,
	}
}
