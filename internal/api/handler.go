package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"comp-machine/config"
	"comp-machine/internal/app"
	"comp-machine/models"
	"comp-machine/observability"
	"comp-machine/services"
	"comp-machine/valuation"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// Handler handles HTTP API requests
type Handler struct {
	app *app.App
	cfg *config.Config
}

// NewHandler creates a new Handler
func NewHandler(application *app.App, cfg *config.Config) *Handler {
	return &Handler{app: application, cfg: cfg}
}

// HandleHealth returns the health status of the application
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "ok",
		"services": map[string]string{
			"database": "unknown",
		},
	}

	if h.app.Repo() != nil {
		ctx := r.Context()
		if err := h.app.Repo().Health(ctx); err == nil {
			status["services"].(map[string]string)["database"] = "connected"
		} else {
			status["services"].(map[string]string)["database"] = "disconnected"
			status["status"] = "degraded"
		}
	} else {
		status["services"].(map[string]string)["database"] = "not_configured"
	}

	// Add circuit breaker status
	cbStatus := services.GetGlobalRegistry().Status()
	status["circuit_breakers"] = cbStatus

	// Check if any breakers are open (degraded state)
	for _, cb := range cbStatus {
		if cb.State == "open" {
			status["status"] = "degraded"
			break
		}
	}

	h.jsonResponse(w, status)
}

// CompPairRequest represents a single comp scored against a subject
type CompPairRequest struct {
	Comp    models.Property `json:"comp"`
	Subject models.Property `json:"subject"`
}

// CompSetRequest represents a comp set filtered against a subject
type CompSetRequest struct {
	Comps   []models.Property `json:"comps"`
	Subject models.Property   `json:"subject"`
}

// HandleScoreComp scores one comp against a subject
func (h *Handler) HandleScoreComp(w http.ResponseWriter, r *http.Request) {
	var req CompPairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	h.jsonResponse(w, h.app.ScoreComp(req.Comp, req.Subject))
}

// HandleValidateComp checks a comp's transaction reliability
func (h *Handler) HandleValidateComp(w http.ResponseWriter, r *http.Request) {
	var comp models.Property
	if err := json.NewDecoder(r.Body).Decode(&comp); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	h.jsonResponse(w, h.app.ValidateComp(comp))
}

// HandleFilterComps returns the admissible comps ranked by similarity
func (h *Handler) HandleFilterComps(w http.ResponseWriter, r *http.Request) {
	var req CompSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Comps) == 0 {
		h.jsonError(w, "at least one comp is required", http.StatusBadRequest)
		return
	}

	ranked := h.app.FilterComps(req.Comps, req.Subject)
	h.jsonResponse(w, map[string]interface{}{
		"total_comps":      len(req.Comps),
		"admissible_comps": len(ranked),
		"ranked":           ranked,
	})
}

// HandleValuate runs the full valuation pipeline for a subject
func (h *Handler) HandleValuate(w http.ResponseWriter, r *http.Request) {
	var req valuation.ValuationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Subject.Address == "" {
		h.jsonError(w, "subject address is required", http.StatusBadRequest)
		return
	}
	if len(req.Comps) == 0 {
		h.jsonError(w, "at least one comp is required", http.StatusBadRequest)
		return
	}

	report, err := h.app.ValueProperty(r.Context(), req)
	if err != nil {
		observability.Error("valuation failed",
			"address", req.Subject.Address,
			"error", err)
		h.jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	h.jsonResponse(w, report)
}

// RepairRequest represents a repair estimate request
type RepairRequest struct {
	Subject models.Property                 `json:"subject"`
	Options valuation.RepairEstimateOptions `json:"options"`
}

// HandleEstimateRepairs returns a condition-based repair estimate
func (h *Handler) HandleEstimateRepairs(w http.ResponseWriter, r *http.Request) {
	var req RepairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Subject.GLASqft <= 0 {
		h.jsonError(w, "subject living area is required", http.StatusBadRequest)
		return
	}

	h.jsonResponse(w, h.app.EstimateRepairs(req.Subject, req.Options))
}

// HandleGetMarket returns the micro-market snapshot for a zip code
func (h *Handler) HandleGetMarket(w http.ResponseWriter, r *http.Request) {
	zip := chi.URLParam(r, "zip")
	if err := h.ValidateZipCode(zip); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.jsonResponse(w, h.app.GetMarketSnapshot(zip, r.URL.Query().Get("address")))
}

// TrendRequest represents a trend analysis request
type TrendRequest struct {
	History    []models.Property `json:"history"`
	WindowDays int               `json:"window_days"`
}

// HandleAnalyzeTrend computes and persists the market trend for a zip code
func (h *Handler) HandleAnalyzeTrend(w http.ResponseWriter, r *http.Request) {
	zip := chi.URLParam(r, "zip")
	if err := h.ValidateZipCode(zip); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req TrendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	trend := h.app.AnalyzeTrend(r.Context(), zip, req.History, req.WindowDays)
	h.jsonResponse(w, trend)
}

// HandleGetTrend returns the stored trend snapshot for a zip code
func (h *Handler) HandleGetTrend(w http.ResponseWriter, r *http.Request) {
	zip := chi.URLParam(r, "zip")
	if err := h.ValidateZipCode(zip); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	repo := h.app.Repo()
	if repo == nil {
		h.jsonError(w, "database not configured", http.StatusServiceUnavailable)
		return
	}

	trend, err := repo.GetMarketTrend(r.Context(), zip)
	if err != nil {
		h.jsonError(w, "failed to fetch market trend", http.StatusInternalServerError)
		return
	}
	if trend == nil {
		h.jsonError(w, "no trend recorded for zip code", http.StatusNotFound)
		return
	}

	h.jsonResponse(w, trend)
}

// CreateDealRequest represents a request to open a deal record
type CreateDealRequest struct {
	ID               string            `json:"id"`
	Subject          models.Property   `json:"subject"`
	AcquisitionPrice decimal.Decimal   `json:"acquisition_price"`
	EstimatedARV     decimal.Decimal   `json:"estimated_arv"`
	RepairCosts      decimal.Decimal   `json:"repair_costs"`
	Comps            []models.Property `json:"comps"`
}

// SettleDealRequest represents the actual outcome of a settled deal
type SettleDealRequest struct {
	ActualARV         decimal.Decimal `json:"actual_arv"`
	ActualRepairCosts decimal.Decimal `json:"actual_repair_costs"`
}

// HandleCreateDeal opens a deal record from valuation outputs
func (h *Handler) HandleCreateDeal(w http.ResponseWriter, r *http.Request) {
	var req CreateDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Subject.Address == "" {
		h.jsonError(w, "subject address is required", http.StatusBadRequest)
		return
	}

	deal, err := h.app.TrackDeal(r.Context(), req.ID, req.Subject,
		req.AcquisitionPrice, req.EstimatedARV, req.RepairCosts, req.Comps)
	if err != nil {
		observability.Error("failed to create deal", "error", err)
		h.jsonError(w, "failed to create deal", http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, deal)
}

// HandleGetDeals returns recent deals, optionally filtered by status
func (h *Handler) HandleGetDeals(w http.ResponseWriter, r *http.Request) {
	limit := h.ParseLimitParam(r, 50)
	status := models.DealStatus(r.URL.Query().Get("status"))

	deals, err := h.app.GetDeals(r.Context(), status, limit)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	h.jsonResponse(w, map[string]interface{}{
		"deals": deals,
		"count": len(deals),
	})
}

// HandleGetDeal returns one deal record
func (h *Handler) HandleGetDeal(w http.ResponseWriter, r *http.Request) {
	if h.app.Repo() == nil {
		h.jsonError(w, "database not configured", http.StatusServiceUnavailable)
		return
	}

	deal, err := h.app.GetDeal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusNotFound)
		return
	}

	h.jsonResponse(w, deal)
}

// HandleContractDeal moves a deal to under_contract
func (h *Handler) HandleContractDeal(w http.ResponseWriter, r *http.Request) {
	if h.app.Repo() == nil {
		h.jsonError(w, "database not configured", http.StatusServiceUnavailable)
		return
	}

	deal, err := h.app.ContractDeal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusNotFound)
		return
	}

	h.jsonResponse(w, deal)
}

// HandleCloseDeal settles a deal with its actual outcome
func (h *Handler) HandleCloseDeal(w http.ResponseWriter, r *http.Request) {
	if h.app.Repo() == nil {
		h.jsonError(w, "database not configured", http.StatusServiceUnavailable)
		return
	}

	var req SettleDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	deal, err := h.app.CloseDeal(r.Context(), chi.URLParam(r, "id"), req.ActualARV, req.ActualRepairCosts)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusNotFound)
		return
	}

	h.jsonResponse(w, deal)
}

// HandleFlipDeal settles a deal exited by assignment
func (h *Handler) HandleFlipDeal(w http.ResponseWriter, r *http.Request) {
	if h.app.Repo() == nil {
		h.jsonError(w, "database not configured", http.StatusServiceUnavailable)
		return
	}

	var req SettleDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	deal, err := h.app.FlipDeal(r.Context(), chi.URLParam(r, "id"), req.ActualARV, req.ActualRepairCosts)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusNotFound)
		return
	}

	h.jsonResponse(w, deal)
}

// HandleDealRecommendations returns advisory text for a tracked deal
func (h *Handler) HandleDealRecommendations(w http.ResponseWriter, r *http.Request) {
	if h.app.Repo() == nil {
		h.jsonError(w, "database not configured", http.StatusServiceUnavailable)
		return
	}

	recommendations, err := h.app.RecommendForDeal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusNotFound)
		return
	}

	h.jsonResponse(w, map[string]interface{}{
		"recommendations": recommendations,
		"count":           len(recommendations),
	})
}

// HandleGetPerformance returns aggregate metrics over tracked deals
func (h *Handler) HandleGetPerformance(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.app.GetPerformance(r.Context())
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	h.jsonResponse(w, metrics)
}

// HandleGetValuationRuns returns recent valuation runs
func (h *Handler) HandleGetValuationRuns(w http.ResponseWriter, r *http.Request) {
	limit := h.ParseLimitParam(r, 50)
	zip := r.URL.Query().Get("zip")
	if zip != "" {
		if err := h.ValidateZipCode(zip); err != nil {
			h.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	runs, err := h.app.GetValuationRuns(r.Context(), zip, limit)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	h.jsonResponse(w, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// Helper functions

// ValidateZipCode validates a five digit zip code
func (h *Handler) ValidateZipCode(zip string) error {
	if zip == "" {
		return fmt.Errorf("zip code is required")
	}

	matched, _ := regexp.MatchString("^[0-9]{5}$", zip)
	if !matched {
		return fmt.Errorf("invalid zip code format (five digits required)")
	}

	return nil
}

// ParseLimitParam parses the limit query parameter
func (h *Handler) ParseLimitParam(r *http.Request, defaultLimit int) int {
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			return l
		}
	}
	return defaultLimit
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
