package services

import (
	"context"
	"time"

	"comp-machine/market"
	"comp-machine/observability"
)

// zipHealthCacheTTL bounds how stale a cached zip health snapshot may be.
const zipHealthCacheTTL = 6 * time.Hour

// HealthCache stores zip-level API responses between calls. The repository's
// market_data_cache table satisfies this.
type HealthCache interface {
	GetCachedData(ctx context.Context, zipCode, dataType string) (map[string]interface{}, error)
	SetCachedData(ctx context.Context, zipCode, dataType string, data map[string]interface{}, ttl time.Duration) error
}

// LiveHealthProvider backs the micro-market analyzer with the market data
// API, degrading to the deterministic provider when the API is down so a
// valuation never blocks on an outage.
type LiveHealthProvider struct {
	svc      *MarketDataService
	cache    HealthCache
	fallback market.HashHealthProvider
	timeout  time.Duration
}

// NewLiveHealthProvider creates a provider over the given service. A nil
// cache disables caching.
func NewLiveHealthProvider(svc *MarketDataService, cache HealthCache) *LiveHealthProvider {
	return &LiveHealthProvider{
		svc:     svc,
		cache:   cache,
		timeout: 10 * time.Second,
	}
}

// Health fetches the zip health through the cache and circuit breaker,
// falling back to the deterministic snapshot on any failure.
func (p *LiveHealthProvider) Health(zipCode string) market.HealthSnapshot {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if snap, ok := p.cachedHealth(ctx, zipCode); ok {
		return snap
	}

	resp, err := WithCircuitBreaker(ctx, BreakerMarketData, func() (*ZipHealthResponse, error) {
		return p.svc.GetZipHealth(ctx, zipCode)
	})
	if err != nil {
		observability.Warn("zip health unavailable, using deterministic fallback",
			"zip_code", zipCode,
			"error", err)
		return p.fallback.Health(zipCode)
	}

	p.storeHealth(ctx, zipCode, resp)

	return market.HealthSnapshot{
		HealthScore:              resp.HealthScore,
		SchoolDistrictRating:     resp.SchoolDistrictRating,
		NeighborhoodDesirability: resp.NeighborhoodDesirability,
	}
}

func (p *LiveHealthProvider) cachedHealth(ctx context.Context, zipCode string) (market.HealthSnapshot, bool) {
	if p.cache == nil {
		return market.HealthSnapshot{}, false
	}

	data, err := p.cache.GetCachedData(ctx, zipCode, "zip_health")
	if err != nil {
		observability.Warn("zip health cache read failed",
			"zip_code", zipCode,
			"error", err)
		return market.HealthSnapshot{}, false
	}
	if data == nil {
		return market.HealthSnapshot{}, false
	}

	health, ok := data["health_score"].(float64)
	if !ok {
		return market.HealthSnapshot{}, false
	}
	schools, _ := data["school_district_rating"].(float64)
	neighborhood, _ := data["neighborhood_desirability"].(float64)

	return market.HealthSnapshot{
		HealthScore:              health,
		SchoolDistrictRating:     schools,
		NeighborhoodDesirability: neighborhood,
	}, true
}

func (p *LiveHealthProvider) storeHealth(ctx context.Context, zipCode string, resp *ZipHealthResponse) {
	if p.cache == nil {
		return
	}

	err := p.cache.SetCachedData(ctx, zipCode, "zip_health", map[string]interface{}{
		"health_score":              resp.HealthScore,
		"school_district_rating":    resp.SchoolDistrictRating,
		"neighborhood_desirability": resp.NeighborhoodDesirability,
	}, zipHealthCacheTTL)
	if err != nil {
		observability.Warn("zip health cache write failed",
			"zip_code", zipCode,
			"error", err)
	}
}
