package valuation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"comp-machine/models"
	"comp-machine/observability"
)

// ServiceRepository defines the repository operations needed by Service
type ServiceRepository interface {
	CreateValuationRun(ctx context.Context, run *models.ValuationRun) error
	UpdateValuationRun(ctx context.Context, run *models.ValuationRun) error
}

// MarketAnalyzer supplies the zip-level market snapshot for a subject.
type MarketAnalyzer interface {
	Analyze(zipCode, address string) models.MicroMarketData
}

// TrendProvider derives the directional trend from the comp sale history.
type TrendProvider interface {
	Analyze(zipCode string, history []models.Property, windowDays int) models.MarketTrend
}

// ValuationRequest carries everything one valuation needs: the subject, its
// candidate comps, and optional repair inputs.
type ValuationRequest struct {
	Subject       models.Property       `json:"subject"`
	Comps         []models.Property     `json:"comps"`
	TrendDays     int                   `json:"trend_days,omitempty"`
	RepairOptions RepairEstimateOptions `json:"repair_options,omitempty"`
}

// ValuationReport is the full output of one valuation run.
type ValuationReport struct {
	RunID            string                    `json:"run_id"`
	Subject          models.Property           `json:"subject"`
	Market           models.MicroMarketData    `json:"market"`
	Trend            models.MarketTrend        `json:"trend"`
	TotalComps       int                       `json:"total_comps"`
	AdmissibleComps  int                       `json:"admissible_comps"`
	RankedComps      []models.CompScore        `json:"ranked_comps"`
	Quality          models.CompQualityMetrics `json:"quality"`
	ARV              models.ARVResult          `json:"arv"`
	TrendAdjustedARV float64                   `json:"trend_adjusted_arv"`
	Repairs          models.RepairEstimate     `json:"repairs"`
	MaxOffer         decimal.Decimal           `json:"max_offer"`
}

// Service orchestrates the valuation pipeline: market snapshot, comp
// filtering and ranking, ARV, repairs, and the maximum allowable offer.
type Service struct {
	filter    *Filter
	arv       *ARVCalculator
	repairs   *RepairEstimator
	offers    OfferSizer
	market    MarketAnalyzer
	trends    TrendProvider
	repo      ServiceRepository
	trendDays int
}

// NewService creates a Service. A nil repo disables run persistence; the
// pipeline itself still runs.
func NewService(filter *Filter, arv *ARVCalculator, repairs *RepairEstimator, offers OfferSizer, market MarketAnalyzer, trends TrendProvider, repo ServiceRepository, trendDays int) *Service {
	if trendDays <= 0 {
		trendDays = 180
	}
	return &Service{
		filter:    filter,
		arv:       arv,
		repairs:   repairs,
		offers:    offers,
		market:    market,
		trends:    trends,
		repo:      repo,
		trendDays: trendDays,
	}
}

// Valuate runs the full pipeline for one subject and persists the run record.
func (s *Service) Valuate(ctx context.Context, req ValuationRequest) (*ValuationReport, error) {
	metrics := observability.GetMetrics()
	metrics.RecordValuationRequest(req.Subject.ZipCode)
	timer := metrics.NewTimer()

	run := models.NewValuationRun(req.Subject.Address, req.Subject.ZipCode)
	s.createRun(ctx, run)

	subject := req.Subject
	snapshot := s.market.Analyze(subject.ZipCode, subject.Address)
	if subject.MarketCondition == "" {
		subject.MarketCondition = snapshot.MarketCondition
	}

	trendDays := req.TrendDays
	if trendDays <= 0 {
		trendDays = s.trendDays
	}
	trend := s.trends.Analyze(subject.ZipCode, req.Comps, trendDays)

	admissible := s.filter.ForValuation(req.Comps, subject)
	for i := 0; i < len(admissible); i++ {
		metrics.RecordCompFiltered(true)
	}
	for i := 0; i < len(req.Comps)-len(admissible); i++ {
		metrics.RecordCompFiltered(false)
	}

	if len(admissible) == 0 {
		err := fmt.Errorf("valuing %s: %w", subject.Address, ErrNoComps)
		run.Fail(err)
		s.updateRun(ctx, run)
		timer.ObserveValuation("error")
		metrics.RecordValuationError("no_admissible_comps")
		return nil, err
	}

	ranked := s.filter.Rank(admissible, subject)
	for _, cs := range ranked {
		metrics.RecordCompScore(cs.Score)
	}
	quality := s.filter.QualityMetrics(admissible, subject)

	arv, err := s.arv.Estimate(admissible, &subject)
	if err != nil {
		run.Fail(err)
		s.updateRun(ctx, run)
		timer.ObserveValuation("error")
		metrics.RecordValuationError("arv_failed")
		return nil, fmt.Errorf("estimating ARV for %s: %w", subject.Address, err)
	}
	metrics.RecordARV(string(subject.MarketCondition), arv.Value)

	repairs := s.repairs.Estimate(subject, req.RepairOptions)
	metrics.RecordRepairEstimate(string(repairs.Method), repairs.Estimate)

	maxOffer := s.offers.CalculateMAO(arv, repairs, quality.AverageScore)

	report := &ValuationReport{
		RunID:            run.ID.String(),
		Subject:          subject,
		Market:           snapshot,
		Trend:            trend,
		TotalComps:       len(req.Comps),
		AdmissibleComps:  len(admissible),
		RankedComps:      ranked,
		Quality:          quality,
		ARV:              arv,
		TrendAdjustedARV: TrendAdjustedValue(arv, trend),
		Repairs:          repairs,
		MaxOffer:         maxOffer,
	}

	run.Complete(map[string]interface{}{
		"arv":              arv.Value,
		"repair_estimate":  repairs.Estimate,
		"max_offer":        maxOffer.String(),
		"admissible_comps": len(admissible),
		"comp_quality":     quality.AverageScore,
		"market_condition": string(subject.MarketCondition),
	})
	s.updateRun(ctx, run)
	timer.ObserveValuation("success")

	observability.Info("valuation completed",
		"address", subject.Address,
		"zip_code", subject.ZipCode,
		"arv", arv.Value,
		"max_offer", maxOffer.String(),
		"admissible_comps", len(admissible))

	return report, nil
}

func (s *Service) createRun(ctx context.Context, run *models.ValuationRun) {
	if s.repo == nil {
		return
	}
	if err := s.repo.CreateValuationRun(ctx, run); err != nil {
		observability.Warn("failed to persist valuation run",
			"run_id", run.ID,
			"error", err)
	}
}

func (s *Service) updateRun(ctx context.Context, run *models.ValuationRun) {
	if s.repo == nil {
		return
	}
	if err := s.repo.UpdateValuationRun(ctx, run); err != nil {
		observability.Warn("failed to update valuation run",
			"run_id", run.ID,
			"error", err)
	}
}
