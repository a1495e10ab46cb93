package app

import (
	"context"
	"fmt"

	"comp-machine/config"
	"comp-machine/models"
	"comp-machine/observability"
	"comp-machine/performance"
	"comp-machine/valuation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RepositoryInterface defines the repository operations needed by App
type RepositoryInterface interface {
	Close()
	Health(ctx context.Context) error
	GetValuationRun(ctx context.Context, id uuid.UUID) (*models.ValuationRun, error)
	GetValuationRuns(ctx context.Context, zipCode string, limit int) ([]models.ValuationRun, error)
	CreateDeal(ctx context.Context, deal *models.DealPerformance) error
	UpdateDeal(ctx context.Context, deal *models.DealPerformance) error
	GetDeal(ctx context.Context, id string) (*models.DealPerformance, error)
	GetDeals(ctx context.Context, status models.DealStatus, limit int) ([]models.DealPerformance, error)
	UpsertMarketTrend(ctx context.Context, trend *models.MarketTrend) error
	GetMarketTrend(ctx context.Context, zipCode string) (*models.MarketTrend, error)
	GetMarketTrends(ctx context.Context, limit int) ([]models.MarketTrend, error)
}

// ValuationServiceInterface defines the valuation pipeline operations
type ValuationServiceInterface interface {
	Valuate(ctx context.Context, req valuation.ValuationRequest) (*valuation.ValuationReport, error)
}

// MarketAnalyzerInterface supplies zip-level market snapshots
type MarketAnalyzerInterface interface {
	Analyze(zipCode, address string) models.MicroMarketData
}

// TrendAnalyzerInterface derives trends from sales history
type TrendAnalyzerInterface interface {
	Analyze(zipCode string, history []models.Property, windowDays int) models.MarketTrend
}

// SalesHistoryInterface supplies recent closed sales for a zip code. The
// market data service satisfies this when configured.
type SalesHistoryInterface interface {
	GetSalesHistory(ctx context.Context, zipCode string, days int) ([]models.Property, error)
}

// App struct holds application dependencies using interfaces for testability
type App struct {
	cfg          *config.Config
	repo         RepositoryInterface
	valuations   ValuationServiceInterface
	scorer       *valuation.Scorer
	validator    *valuation.Validator
	filter       *valuation.Filter
	repairs      *valuation.RepairEstimator
	market       MarketAnalyzerInterface
	trends       TrendAnalyzerInterface
	sales        SalesHistoryInterface
	tracker      *performance.Tracker
	aggregator   *performance.Aggregator
	recommender  *performance.Recommender
	valuationSem chan struct{}
}

// Dependencies collects everything New needs; nil repo means no persistence.
type Dependencies struct {
	Repo        RepositoryInterface
	Valuations  ValuationServiceInterface
	Scorer      *valuation.Scorer
	Validator   *valuation.Validator
	Filter      *valuation.Filter
	Repairs     *valuation.RepairEstimator
	Market      MarketAnalyzerInterface
	Trends      TrendAnalyzerInterface
	Sales       SalesHistoryInterface
	Tracker     *performance.Tracker
	Aggregator  *performance.Aggregator
	Recommender *performance.Recommender
}

// New creates a new App application struct
func New(cfg *config.Config, deps Dependencies) *App {
	return &App{
		cfg:          cfg,
		repo:         deps.Repo,
		valuations:   deps.Valuations,
		scorer:       deps.Scorer,
		validator:    deps.Validator,
		filter:       deps.Filter,
		repairs:      deps.Repairs,
		market:       deps.Market,
		trends:       deps.Trends,
		sales:        deps.Sales,
		tracker:      deps.Tracker,
		aggregator:   deps.Aggregator,
		recommender:  deps.Recommender,
		valuationSem: make(chan struct{}, cfg.Valuation.ConcurrencyLimit),
	}
}

// Shutdown is called when the app is closing
func (a *App) Shutdown(ctx context.Context) {
	if a.repo != nil {
		a.repo.Close()
	}
}

// Repo returns the repository interface for API handlers
func (a *App) Repo() RepositoryInterface {
	return a.repo
}

// ValueProperty runs the full valuation pipeline for a subject
func (a *App) ValueProperty(ctx context.Context, req valuation.ValuationRequest) (*valuation.ValuationReport, error) {
	if a.valuations == nil {
		return nil, fmt.Errorf("valuation service not initialized")
	}

	select {
	case a.valuationSem <- struct{}{}:
		defer func() { <-a.valuationSem }()
	default:
		return nil, fmt.Errorf("valuation queue full, too many concurrent requests - try again later")
	}

	return a.valuations.Valuate(ctx, req)
}

// ScoreComp scores one comp against a subject
func (a *App) ScoreComp(comp, subject models.Property) models.CompScore {
	return a.scorer.Score(comp, subject)
}

// ValidateComp checks one comp's transaction reliability
func (a *App) ValidateComp(comp models.Property) models.ValidationResult {
	return a.validator.Validate(comp)
}

// FilterComps returns the admissible comps ranked by score
func (a *App) FilterComps(comps []models.Property, subject models.Property) []models.CompScore {
	admissible := a.filter.ForValuation(comps, subject)
	return a.filter.Rank(admissible, subject)
}

// EstimateRepairs computes a repair estimate for a subject
func (a *App) EstimateRepairs(subject models.Property, opts valuation.RepairEstimateOptions) models.RepairEstimate {
	return a.repairs.Estimate(subject, opts)
}

// GetMarketSnapshot returns the micro-market snapshot for a zip code
func (a *App) GetMarketSnapshot(zipCode, address string) models.MicroMarketData {
	return a.market.Analyze(zipCode, address)
}

// AnalyzeTrend computes and persists the market trend for a zip code. When
// the caller supplies no history and a sales source is configured, the
// window's closed sales are fetched for them.
func (a *App) AnalyzeTrend(ctx context.Context, zipCode string, history []models.Property, windowDays int) models.MarketTrend {
	if windowDays <= 0 {
		windowDays = a.cfg.Valuation.TrendWindowDays
	}

	if len(history) == 0 && a.sales != nil {
		fetched, err := a.sales.GetSalesHistory(ctx, zipCode, windowDays)
		if err != nil {
			observability.Warn("failed to fetch sales history for trend analysis",
				"zip_code", zipCode,
				"error", err)
		} else {
			history = fetched
		}
	}

	trend := a.trends.Analyze(zipCode, history, windowDays)

	if a.repo != nil {
		if err := a.repo.UpsertMarketTrend(ctx, &trend); err != nil {
			observability.Warn("failed to persist market trend",
				"zip_code", zipCode,
				"error", err)
		}
	}

	return trend
}

// TrackDeal opens a deal record from valuation outputs and persists it
func (a *App) TrackDeal(ctx context.Context, id string, subject models.Property, acquisitionPrice, arv, repairCost decimal.Decimal, comps []models.Property) (*models.DealPerformance, error) {
	deal := a.tracker.Track(id, subject, acquisitionPrice, arv, repairCost, comps)

	if a.repo != nil {
		if err := a.repo.CreateDeal(ctx, &deal); err != nil {
			return nil, fmt.Errorf("failed to save deal: %w", err)
		}
	}

	return &deal, nil
}

// ContractDeal moves a deal to under_contract
func (a *App) ContractDeal(ctx context.Context, id string) (*models.DealPerformance, error) {
	deal, err := a.loadDeal(ctx, id)
	if err != nil {
		return nil, err
	}

	deal.MarkUnderContract()
	if err := a.repo.UpdateDeal(ctx, deal); err != nil {
		return nil, fmt.Errorf("failed to update deal: %w", err)
	}

	return deal, nil
}

// CloseDeal settles a deal with its actual outcome
func (a *App) CloseDeal(ctx context.Context, id string, actualARV, actualRepairCosts decimal.Decimal) (*models.DealPerformance, error) {
	deal, err := a.loadDeal(ctx, id)
	if err != nil {
		return nil, err
	}

	deal.Close(actualARV, actualRepairCosts)
	if err := a.repo.UpdateDeal(ctx, deal); err != nil {
		return nil, fmt.Errorf("failed to update deal: %w", err)
	}

	return deal, nil
}

// FlipDeal settles a deal exited by assignment
func (a *App) FlipDeal(ctx context.Context, id string, actualARV, actualRepairCosts decimal.Decimal) (*models.DealPerformance, error) {
	deal, err := a.loadDeal(ctx, id)
	if err != nil {
		return nil, err
	}

	deal.Flip(actualARV, actualRepairCosts)
	if err := a.repo.UpdateDeal(ctx, deal); err != nil {
		return nil, fmt.Errorf("failed to update deal: %w", err)
	}

	return deal, nil
}

// GetDeal returns a single deal
func (a *App) GetDeal(ctx context.Context, id string) (*models.DealPerformance, error) {
	return a.loadDeal(ctx, id)
}

// GetDeals returns recent deals
func (a *App) GetDeals(ctx context.Context, status models.DealStatus, limit int) ([]models.DealPerformance, error) {
	if a.repo == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	return a.repo.GetDeals(ctx, status, limit)
}

// GetValuationRuns returns recent valuation runs
func (a *App) GetValuationRuns(ctx context.Context, zipCode string, limit int) ([]models.ValuationRun, error) {
	if a.repo == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	return a.repo.GetValuationRuns(ctx, zipCode, limit)
}

// GetPerformance aggregates tracked deals and stored trends into
// portfolio-level metrics
func (a *App) GetPerformance(ctx context.Context) (*models.PerformanceMetrics, error) {
	if a.repo == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	deals, err := a.repo.GetDeals(ctx, "", 0)
	if err != nil {
		return nil, err
	}
	trends, err := a.repo.GetMarketTrends(ctx, 0)
	if err != nil {
		return nil, err
	}

	metrics := a.aggregator.Aggregate(deals, trends)
	return &metrics, nil
}

// RecommendForDeal evaluates a tracked deal against its market trend
func (a *App) RecommendForDeal(ctx context.Context, id string) ([]string, error) {
	deal, err := a.loadDeal(ctx, id)
	if err != nil {
		return nil, err
	}

	var trend models.MarketTrend
	if stored, err := a.repo.GetMarketTrend(ctx, zipFromAddress(deal)); err == nil && stored != nil {
		trend = *stored
	}

	return a.recommender.Recommend(*deal, trend, nil), nil
}

func (a *App) loadDeal(ctx context.Context, id string) (*models.DealPerformance, error) {
	if a.repo == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	deal, err := a.repo.GetDeal(ctx, id)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, fmt.Errorf("deal %s not found", id)
	}
	return deal, nil
}

// zipFromAddress extracts a trailing zip code from a subject address, if any.
func zipFromAddress(deal *models.DealPerformance) string {
	addr := deal.SubjectAddress
	if len(addr) < 5 {
		return ""
	}
	tail := addr[len(addr)-5:]
	for _, c := range tail {
		if c < '0' || c > '9' {
			return ""
		}
	}
	return tail
}

// ValuationSemCapacity returns the capacity of the valuation semaphore (for testing)
func (a *App) ValuationSemCapacity() int {
	return cap(a.valuationSem)
}
