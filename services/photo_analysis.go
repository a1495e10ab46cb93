package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"comp-machine/observability"
	"comp-machine/valuation"
)

// PhotoAnalysisService posts property photo evidence to the analysis API and
// returns a repair cost delta with the findings behind it.
type PhotoAnalysisService struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewPhotoAnalysisService creates a new PhotoAnalysisService instance
func NewPhotoAnalysisService(apiKey, baseURL string) *PhotoAnalysisService {
	if baseURL == "" {
		baseURL = "https://api.marketdata.example.com/v1"
	}
	return &PhotoAnalysisService{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
	}
}

// PhotoAnalysisResponse represents the analysis response from the API
type PhotoAnalysisResponse struct {
	CostDelta float64  `json:"cost_delta"`
	Findings  []string `json:"findings"`
}

// photoAnalysisRequest is the request body; photos marshal as base64.
type photoAnalysisRequest struct {
	Photos [][]byte `json:"photos"`
}

// AnalyzePhotos submits the photos and returns the inferred adjustment
func (s *PhotoAnalysisService) AnalyzePhotos(ctx context.Context, photos [][]byte) (*PhotoAnalysisResponse, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest("photo_analysis", "analyze")
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI("photo_analysis", "analyze")

	body, err := json.Marshal(photoAnalysisRequest{Photos: photos})
	if err != nil {
		return nil, fmt.Errorf("failed to encode photo payload: %w", err)
	}

	params := url.Values{}
	params.Set("apikey", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/photos/analyze?"+params.Encode(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build photo analysis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		metrics.RecordExternalAPIError("photo_analysis", "analyze", "request_failed")
		return nil, fmt.Errorf("failed to analyze photos: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordExternalAPIError("photo_analysis", "analyze", "bad_status")
		return nil, fmt.Errorf("photo analysis request returned status %d", resp.StatusCode)
	}

	var decoded PhotoAnalysisResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		metrics.RecordExternalAPIError("photo_analysis", "analyze", "decode_failed")
		return nil, fmt.Errorf("failed to decode photo analysis: %w", err)
	}

	return &decoded, nil
}

// LivePhotoAnalyzer backs the repair estimator with the photo analysis API,
// degrading to the neutral adjustment when the API is down so an estimate
// never blocks on an outage.
type LivePhotoAnalyzer struct {
	svc     *PhotoAnalysisService
	neutral valuation.NeutralPhotoAnalyzer
	timeout time.Duration
}

// NewLivePhotoAnalyzer creates an analyzer over the given service.
func NewLivePhotoAnalyzer(svc *PhotoAnalysisService) *LivePhotoAnalyzer {
	return &LivePhotoAnalyzer{
		svc:     svc,
		timeout: 30 * time.Second,
	}
}

// Analyze routes the photos through the circuit breaker and maps the API
// response onto a repair adjustment.
func (a *LivePhotoAnalyzer) Analyze(photos [][]byte) valuation.RepairAdjustment {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	resp, err := WithCircuitBreaker(ctx, BreakerPhotoAnalysis, func() (*PhotoAnalysisResponse, error) {
		return a.svc.AnalyzePhotos(ctx, photos)
	})
	if err != nil {
		observability.Warn("photo analysis unavailable, using neutral adjustment",
			"photo_count", len(photos),
			"error", err)
		return a.neutral.Analyze(photos)
	}

	return valuation.RepairAdjustment{
		CostDelta: resp.CostDelta,
		Notes:     resp.Findings,
	}
}
