package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"comp-machine/models"
	"comp-machine/observability"
)

// MarketDataService handles communication with the market data API
type MarketDataService struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewMarketDataService creates a new MarketDataService instance
func NewMarketDataService(apiKey, baseURL string) *MarketDataService {
	if baseURL == "" {
		baseURL = "https://api.marketdata.example.com/v1"
	}
	return &MarketDataService{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
	}
}

// ZipHealthResponse represents the zip-level health response from the API
type ZipHealthResponse struct {
	ZipCode                  string  `json:"zip_code"`
	HealthScore              float64 `json:"health_score"`
	SchoolDistrictRating     float64 `json:"school_district_rating"`
	NeighborhoodDesirability float64 `json:"neighborhood_desirability"`
	MedianDaysOnMarket       int     `json:"median_days_on_market"`
	ActiveListings           int     `json:"active_listings"`
}

// GetZipHealth returns the market health figures for a zip code
func (s *MarketDataService) GetZipHealth(ctx context.Context, zipCode string) (*ZipHealthResponse, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest("market_data", "zip_health")
	timer := metrics.NewTimer()

	var health *ZipHealthResponse

	err := WithRetry(ctx, DefaultRetryConfig, func() error {
		params := url.Values{}
		params.Set("zip", zipCode)
		params.Set("apikey", s.apiKey)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/market/health?"+params.Encode(), nil)
		if err != nil {
			return fmt.Errorf("failed to build health request: %w", err)
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to fetch zip health: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("zip health request returned status %d", resp.StatusCode)
		}

		var decoded ZipHealthResponse
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return fmt.Errorf("failed to decode zip health: %w", err)
		}

		health = &decoded
		return nil
	})

	timer.ObserveExternalAPI("market_data", "zip_health")
	if err != nil {
		metrics.RecordExternalAPIError("market_data", "zip_health", "request_failed")
		return nil, err
	}

	return health, nil
}

// SalesResponse represents the sales history response from the API
type SalesResponse struct {
	ZipCode string `json:"zip_code"`
	Sales   []struct {
		Address         string  `json:"address"`
		SalePrice       float64 `json:"sale_price"`
		AdjustedPrice   float64 `json:"adjusted_price"`
		GLASqft         float64 `json:"gla_sqft"`
		Condition       string  `json:"condition"`
		PropertyType    string  `json:"property_type"`
		SaleDate        string  `json:"sale_date"`
		TransactionType string  `json:"transaction_type"`
	} `json:"sales"`
}

// GetSalesHistory returns recent closed sales for a zip code, newest last
func (s *MarketDataService) GetSalesHistory(ctx context.Context, zipCode string, days int) ([]models.Property, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest("market_data", "sales_history")
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI("market_data", "sales_history")

	params := url.Values{}
	params.Set("zip", zipCode)
	params.Set("days", strconv.Itoa(days))
	params.Set("apikey", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/market/sales?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build sales request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		metrics.RecordExternalAPIError("market_data", "sales_history", "request_failed")
		return nil, fmt.Errorf("failed to fetch sales history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordExternalAPIError("market_data", "sales_history", "bad_status")
		return nil, fmt.Errorf("sales history request returned status %d", resp.StatusCode)
	}

	var salesResp SalesResponse
	if err := json.NewDecoder(resp.Body).Decode(&salesResp); err != nil {
		metrics.RecordExternalAPIError("market_data", "sales_history", "decode_failed")
		return nil, fmt.Errorf("failed to decode sales history: %w", err)
	}

	sales := make([]models.Property, 0, len(salesResp.Sales))
	for _, item := range salesResp.Sales {
		sale := models.Property{
			Address:         item.Address,
			ZipCode:         salesResp.ZipCode,
			SalePrice:       item.SalePrice,
			AdjustedPrice:   item.AdjustedPrice,
			GLASqft:         item.GLASqft,
			Condition:       models.Condition(item.Condition),
			PropertyType:    item.PropertyType,
			TransactionType: models.TransactionType(item.TransactionType),
		}
		if item.SaleDate != "" {
			saleDate, err := time.Parse("2006-01-02", item.SaleDate)
			if err != nil {
				observability.Warn("failed to parse sale date, skipping field",
					"sale_date", item.SaleDate,
					"error", err)
			} else {
				sale.SaleDate = &saleDate
			}
		}
		sales = append(sales, sale)
	}

	return sales, nil
}

// IsHealthy reports whether the market data API answers its ping endpoint
func (s *MarketDataService) IsHealthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/ping", nil)
	if err != nil {
		return false
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
