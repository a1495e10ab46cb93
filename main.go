package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"comp-machine/config"
	"comp-machine/internal/api"
	"comp-machine/internal/app"
	"comp-machine/market"
	"comp-machine/observability"
	"comp-machine/performance"
	"comp-machine/repository"
	"comp-machine/services"
	"comp-machine/valuation"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	observability.InitLogger(os.Getenv("ENV") == "production")
	observability.InitMetrics()

	cfg, err := config.Load()
	if err != nil {
		observability.Fatal("invalid configuration", "error", err)
	}

	ctx := context.Background()

	// Initialize database (graceful degradation when unavailable)
	var repo *repository.Repository
	if cfg.HasDatabase() {
		repo, err = repository.NewRepository(ctx, cfg.Database.URL)
		if err != nil {
			observability.Warn("failed to initialize database, running without persistence", "error", err)
			repo = nil
		}
	} else {
		observability.Warn("DATABASE_URL not set, running without persistence")
	}

	// Market health provider: live feed with fallback when configured,
	// deterministic hash provider otherwise. The same API backs photo
	// analysis and the sales-history fallback for trend requests.
	var healthProvider market.HealthProvider
	var photoAnalyzer valuation.PhotoAnalyzer
	var salesHistory app.SalesHistoryInterface
	if cfg.HasMarketData() {
		marketDataService := services.NewMarketDataService(cfg.MarketData.APIKey, cfg.MarketData.BaseURL)
		var healthCache services.HealthCache
		if repo != nil {
			healthCache = repo
		}
		healthProvider = services.NewLiveHealthProvider(marketDataService, healthCache)
		photoAnalyzer = services.NewLivePhotoAnalyzer(services.NewPhotoAnalysisService(cfg.MarketData.APIKey, cfg.MarketData.BaseURL))
		salesHistory = marketDataService
		observability.Info("market data service configured", "base_url", cfg.MarketData.BaseURL)
	} else {
		observability.Warn("MARKET_DATA_API_KEY not set, using deterministic market health")
		healthProvider = market.HashHealthProvider{}
	}

	// Valuation engines
	scorer := valuation.NewScorer(valuation.ScoringWeights{
		Distance:           cfg.Scoring.WeightDistance,
		Recency:            cfg.Scoring.WeightRecency,
		GLA:                cfg.Scoring.WeightGLA,
		Condition:          cfg.Scoring.WeightCondition,
		Location:           cfg.Scoring.WeightLocation,
		PropertyType:       cfg.Scoring.WeightPropertyType,
		Style:              cfg.Scoring.WeightStyle,
		WholesalePotential: cfg.Scoring.WeightWholesalePotential,
	})
	validatorConfig := valuation.DefaultValidatorConfig
	validatorConfig.ValidityThreshold = cfg.Valuation.ValidityScoreMin
	validator := valuation.NewValidator(validatorConfig)
	filter := valuation.NewFilter(scorer, validator)

	arvConfig := valuation.DefaultARVConfig
	arvConfig.LowestWeight = cfg.Valuation.ARVWeightLowest
	arvConfig.MedianWeight = cfg.Valuation.ARVWeightMedian
	arvConfig.HighestWeight = cfg.Valuation.ARVWeightHighest
	arvConfig.SafetyMargin = cfg.Valuation.SafetyMargin
	arvConfig.HotAdjustment = cfg.Valuation.HotAdjustment
	arvConfig.ColdAdjustment = cfg.Valuation.ColdAdjustment
	arvCalculator := valuation.NewARVCalculator(arvConfig)

	repairConfig := valuation.DefaultRepairConfig
	repairConfig.InflationFactor = cfg.Repair.InflationFactor
	repairConfig.RegionalMultiplier = cfg.Repair.RegionalMultiplier
	repairEstimator := valuation.NewRepairEstimator(repairConfig, photoAnalyzer)

	offerSizer := valuation.NewDefaultOfferSizer(valuation.OfferConfig{
		ARVPercent:           cfg.Offer.ARVPercent,
		MinOffer:             cfg.Offer.MinOffer,
		UseConfidenceScaling: cfg.Offer.UseConfidenceScaling,
	})

	marketAnalyzer := market.NewMicroMarketAnalyzer(healthProvider)
	trendAnalyzer := market.NewTrendAnalyzer()

	var runStore valuation.ServiceRepository
	if repo != nil {
		runStore = repo
	}
	valuationService := valuation.NewService(filter, arvCalculator, repairEstimator, offerSizer,
		marketAnalyzer, trendAnalyzer, runStore, cfg.Valuation.TrendWindowDays)

	// Performance engines
	tracker := performance.NewTracker(performance.DefaultTrackerConfig, filter)
	recommenderConfig := performance.DefaultRecommenderConfig
	recommenderConfig.TargetMargin = cfg.Performance.TargetMargin
	recommenderConfig.PreferredMargin = cfg.Performance.PreferredMargin

	var appRepo app.RepositoryInterface
	if repo != nil {
		appRepo = repo
	}
	application := app.New(cfg, app.Dependencies{
		Repo:        appRepo,
		Sales:       salesHistory,
		Valuations:  valuationService,
		Scorer:      scorer,
		Validator:   validator,
		Filter:      filter,
		Repairs:     repairEstimator,
		Market:      marketAnalyzer,
		Trends:      trendAnalyzer,
		Tracker:     tracker,
		Aggregator:  performance.NewAggregator(),
		Recommender: performance.NewRecommender(recommenderConfig),
	})

	handler := api.NewHandler(application, cfg)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		observability.Info("starting server", "port", cfg.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			observability.Fatal("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	observability.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.Fatal("server forced to shutdown", "error", err)
	}

	application.Shutdown(shutdownCtx)
	observability.Info("server stopped")
}
