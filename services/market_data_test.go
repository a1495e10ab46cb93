package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"comp-machine/models"
)

func TestNewMarketDataService(t *testing.T) {
	service := NewMarketDataService("test-api-key", "")
	if service == nil {
		t.Fatal("NewMarketDataService should not return nil")
	}
	if service.apiKey != "test-api-key" {
		t.Errorf("apiKey = %v, want 'test-api-key'", service.apiKey)
	}
	if service.httpClient == nil {
		t.Error("httpClient should not be nil")
	}
	if service.baseURL == "" {
		t.Error("baseURL should have a default")
	}

	custom := NewMarketDataService("key", "http://localhost:9999/v1")
	if custom.baseURL != "http://localhost:9999/v1" {
		t.Errorf("baseURL = %v, want 'http://localhost:9999/v1'", custom.baseURL)
	}
}

func TestZipHealthResponse_Deserialization(t *testing.T) {
	jsonResponse := `{
		"zip_code": "78704",
		"health_score": 0.85,
		"school_district_rating": 0.72,
		"neighborhood_desirability": 0.9,
		"median_days_on_market": 21,
		"active_listings": 134
	}`

	var resp ZipHealthResponse
	if err := json.Unmarshal([]byte(jsonResponse), &resp); err != nil {
		t.Fatalf("Failed to unmarshal ZipHealthResponse: %v", err)
	}

	if resp.ZipCode != "78704" {
		t.Errorf("ZipCode = %v, want '78704'", resp.ZipCode)
	}
	if resp.HealthScore != 0.85 {
		t.Errorf("HealthScore = %v, want 0.85", resp.HealthScore)
	}
	if resp.MedianDaysOnMarket != 21 {
		t.Errorf("MedianDaysOnMarket = %v, want 21", resp.MedianDaysOnMarket)
	}
}

func TestMarketDataService_GetZipHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("zip") != "78704" {
			t.Errorf("zip query = %v, want '78704'", r.URL.Query().Get("zip"))
		}
		json.NewEncoder(w).Encode(ZipHealthResponse{
			ZipCode:     "78704",
			HealthScore: 0.82,
		})
	}))
	defer server.Close()

	service := NewMarketDataService("key", server.URL)
	health, err := service.GetZipHealth(context.Background(), "78704")
	if err != nil {
		t.Fatalf("GetZipHealth returned error: %v", err)
	}
	if health.HealthScore != 0.82 {
		t.Errorf("HealthScore = %v, want 0.82", health.HealthScore)
	}
}

func TestMarketDataService_GetSalesHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"zip_code": "78704",
			"sales": [
				{
					"address": "101 Oak St",
					"sale_price": 250000,
					"adjusted_price": 255000,
					"gla_sqft": 1400,
					"condition": "average",
					"property_type": "single_family",
					"sale_date": "2026-05-10",
					"transaction_type": "arms_length"
				},
				{
					"address": "103 Oak St",
					"sale_price": 260000,
					"gla_sqft": 1500,
					"condition": "fair",
					"sale_date": "not-a-date"
				}
			]
		}`))
	}))
	defer server.Close()

	service := NewMarketDataService("key", server.URL)
	sales, err := service.GetSalesHistory(context.Background(), "78704", 180)
	if err != nil {
		t.Fatalf("GetSalesHistory returned error: %v", err)
	}
	if len(sales) != 2 {
		t.Fatalf("len(sales) = %d, want 2", len(sales))
	}

	first := sales[0]
	if first.Address != "101 Oak St" {
		t.Errorf("Address = %v, want '101 Oak St'", first.Address)
	}
	if first.ComparablePrice() != 255000 {
		t.Errorf("ComparablePrice = %v, want 255000 (adjusted)", first.ComparablePrice())
	}
	if first.Condition != models.ConditionAverage {
		t.Errorf("Condition = %v, want average", first.Condition)
	}
	if first.SaleDate == nil {
		t.Error("SaleDate should be parsed")
	}

	// Unparseable dates drop the field, not the sale.
	if sales[1].SaleDate != nil {
		t.Error("invalid SaleDate should be left nil")
	}
}

func TestMarketDataService_GetSalesHistory_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	service := NewMarketDataService("key", server.URL)
	if _, err := service.GetSalesHistory(context.Background(), "78704", 180); err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestLiveHealthProvider_Fallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	server.Close() // shut down so every call fails fast

	SetGlobalRegistry(NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig))
	service := NewMarketDataService("key", server.URL)
	provider := NewLiveHealthProvider(service, nil)
	snap := provider.Health("78704")

	if snap.HealthScore < 0.6 || snap.HealthScore >= 1.0 {
		t.Errorf("fallback HealthScore = %v, want deterministic value in [0.6, 1.0)", snap.HealthScore)
	}

	// Deterministic: same zip, same snapshot.
	if again := provider.Health("78704"); again != snap {
		t.Errorf("fallback should be deterministic, got %+v then %+v", snap, again)
	}
}

type memoryHealthCache struct {
	data map[string]map[string]interface{}
	sets int
}

func newMemoryHealthCache() *memoryHealthCache {
	return &memoryHealthCache{data: map[string]map[string]interface{}{}}
}

func (c *memoryHealthCache) GetCachedData(ctx context.Context, zipCode, dataType string) (map[string]interface{}, error) {
	return c.data[zipCode+"/"+dataType], nil
}

func (c *memoryHealthCache) SetCachedData(ctx context.Context, zipCode, dataType string, data map[string]interface{}, ttl time.Duration) error {
	c.data[zipCode+"/"+dataType] = data
	c.sets++
	return nil
}

func TestLiveHealthProvider_Cache(t *testing.T) {
	var apiCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiCalls++
		json.NewEncoder(w).Encode(ZipHealthResponse{
			ZipCode:                  "78704",
			HealthScore:              0.82,
			SchoolDistrictRating:     0.7,
			NeighborhoodDesirability: 0.75,
		})
	}))
	defer server.Close()

	SetGlobalRegistry(NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig))
	cache := newMemoryHealthCache()
	provider := NewLiveHealthProvider(NewMarketDataService("key", server.URL), cache)

	first := provider.Health("78704")
	if first.HealthScore != 0.82 {
		t.Errorf("HealthScore = %v, want 0.82", first.HealthScore)
	}
	if apiCalls != 1 {
		t.Errorf("apiCalls = %d, want 1", apiCalls)
	}
	if cache.sets != 1 {
		t.Errorf("cache writes = %d, want 1", cache.sets)
	}

	// Second call is served from the cache.
	second := provider.Health("78704")
	if second != first {
		t.Errorf("cached snapshot differs: %+v vs %+v", second, first)
	}
	if apiCalls != 1 {
		t.Errorf("apiCalls after cache hit = %d, want 1", apiCalls)
	}
}
