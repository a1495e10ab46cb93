package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}

	// Verify all metrics are initialized
	if m.ValuationRequestsTotal == nil {
		t.Error("ValuationRequestsTotal is nil")
	}
	if m.ValuationDuration == nil {
		t.Error("ValuationDuration is nil")
	}
	if m.ValuationErrorsTotal == nil {
		t.Error("ValuationErrorsTotal is nil")
	}
	if m.ARVValues == nil {
		t.Error("ARVValues is nil")
	}
	if m.CompScores == nil {
		t.Error("CompScores is nil")
	}
	if m.CompsFilteredTotal == nil {
		t.Error("CompsFilteredTotal is nil")
	}
	if m.RepairEstimates == nil {
		t.Error("RepairEstimates is nil")
	}
	if m.DealMargins == nil {
		t.Error("DealMargins is nil")
	}
	if m.ExternalAPIRequestsTotal == nil {
		t.Error("ExternalAPIRequestsTotal is nil")
	}
	if m.ExternalAPIErrorsTotal == nil {
		t.Error("ExternalAPIErrorsTotal is nil")
	}
	if m.ExternalAPIDuration == nil {
		t.Error("ExternalAPIDuration is nil")
	}
	if m.DBQueryDuration == nil {
		t.Error("DBQueryDuration is nil")
	}
	if m.DBQueryTotal == nil {
		t.Error("DBQueryTotal is nil")
	}
	if m.DBErrorsTotal == nil {
		t.Error("DBErrorsTotal is nil")
	}
	if m.HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal is nil")
	}
	if m.HTTPRequestDuration == nil {
		t.Error("HTTPRequestDuration is nil")
	}
	if m.CircuitBreakerState == nil {
		t.Error("CircuitBreakerState is nil")
	}
	if m.CircuitBreakerTrips == nil {
		t.Error("CircuitBreakerTrips is nil")
	}
}

func TestRecordValuationRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordValuationRequest("78701")
	m.RecordValuationRequest("78701")
	m.RecordValuationRequest("99502")

	austinCount := testutil.ToFloat64(m.ValuationRequestsTotal.WithLabelValues("78701"))
	if austinCount != 2 {
		t.Errorf("Expected 78701 count to be 2, got %f", austinCount)
	}

	anchorageCount := testutil.ToFloat64(m.ValuationRequestsTotal.WithLabelValues("99502"))
	if anchorageCount != 1 {
		t.Errorf("Expected 99502 count to be 1, got %f", anchorageCount)
	}
}

func TestRecordValuationError(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordValuationError("no_admissible_comps")
	m.RecordValuationError("no_admissible_comps")
	m.RecordValuationError("timeout")

	noComps := testutil.ToFloat64(m.ValuationErrorsTotal.WithLabelValues("no_admissible_comps"))
	if noComps != 2 {
		t.Errorf("Expected no_admissible_comps count to be 2, got %f", noComps)
	}

	timeouts := testutil.ToFloat64(m.ValuationErrorsTotal.WithLabelValues("timeout"))
	if timeouts != 1 {
		t.Errorf("Expected timeout count to be 1, got %f", timeouts)
	}
}

func TestRecordARV(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordARV("hot", 250000)
	m.RecordARV("stable", 180000)

	// Empty market condition falls back to unknown instead of an empty label.
	m.RecordARV("", 90000)
}

func TestRecordCompFiltered(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordCompFiltered(true)
	m.RecordCompFiltered(true)
	m.RecordCompFiltered(false)

	admitted := testutil.ToFloat64(m.CompsFilteredTotal.WithLabelValues("admitted"))
	if admitted != 2 {
		t.Errorf("Expected admitted count to be 2, got %f", admitted)
	}

	rejected := testutil.ToFloat64(m.CompsFilteredTotal.WithLabelValues("rejected"))
	if rejected != 1 {
		t.Errorf("Expected rejected count to be 1, got %f", rejected)
	}
}

func TestRecordCompScore(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordCompScore(0.85)
	m.RecordCompScore(0.42)

	// Histogram values are harder to test directly; just check no panic.
}

func TestRecordRepairEstimate(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordRepairEstimate("condition_based", 28750)
	m.RecordRepairEstimate("user_provided", 35000)
	m.RecordRepairEstimate("hybrid", 31000)
}

func TestRecordDealMargin(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordDealMargin(0.25)
	m.RecordDealMargin(-0.05)
}

func TestRecordExternalAPIRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordExternalAPIRequest("market_data", "get_zip_health")
	m.RecordExternalAPIRequest("market_data", "get_zip_health")
	m.RecordExternalAPIRequest("market_data", "get_sales_history")

	healthCount := testutil.ToFloat64(m.ExternalAPIRequestsTotal.WithLabelValues("market_data", "get_zip_health"))
	if healthCount != 2 {
		t.Errorf("Expected get_zip_health count to be 2, got %f", healthCount)
	}

	salesCount := testutil.ToFloat64(m.ExternalAPIRequestsTotal.WithLabelValues("market_data", "get_sales_history"))
	if salesCount != 1 {
		t.Errorf("Expected get_sales_history count to be 1, got %f", salesCount)
	}
}

func TestRecordExternalAPIError(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordExternalAPIError("market_data", "get_zip_health", "timeout")

	timeouts := testutil.ToFloat64(m.ExternalAPIErrorsTotal.WithLabelValues("market_data", "get_zip_health", "timeout"))
	if timeouts != 1 {
		t.Errorf("Expected timeout count to be 1, got %f", timeouts)
	}
}

func TestRecordDBQuery(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordDBQuery("select", "valuation_runs", 10*time.Millisecond)
	m.RecordDBQuery("insert", "valuation_runs", 5*time.Millisecond)
	m.RecordDBQuery("select", "deal_performance", 8*time.Millisecond)

	selectRuns := testutil.ToFloat64(m.DBQueryTotal.WithLabelValues("select", "valuation_runs"))
	if selectRuns != 1 {
		t.Errorf("Expected select valuation_runs count to be 1, got %f", selectRuns)
	}

	insertRuns := testutil.ToFloat64(m.DBQueryTotal.WithLabelValues("insert", "valuation_runs"))
	if insertRuns != 1 {
		t.Errorf("Expected insert valuation_runs count to be 1, got %f", insertRuns)
	}
}

func TestRecordDBError(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordDBError("select", "valuation_runs")

	selectError := testutil.ToFloat64(m.DBErrorsTotal.WithLabelValues("select", "valuation_runs"))
	if selectError != 1 {
		t.Errorf("Expected select error count to be 1, got %f", selectError)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordHTTPRequest("GET", "/api/health", "200", 10*time.Millisecond, 256)
	m.RecordHTTPRequest("POST", "/api/valuations", "200", 2*time.Second, 4096)
	m.RecordHTTPRequest("GET", "/api/deals", "500", 50*time.Millisecond, 128)

	healthOK := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/health", "200"))
	if healthOK != 1 {
		t.Errorf("Expected GET /api/health 200 count to be 1, got %f", healthOK)
	}

	dealsError := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/deals", "500"))
	if dealsError != 1 {
		t.Errorf("Expected GET /api/deals 500 count to be 1, got %f", dealsError)
	}
}

func TestCircuitBreakerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	// Set initial states
	m.SetCircuitBreakerState("market_data", 0) // closed
	m.SetCircuitBreakerState("photo_analysis", 2)

	marketState := testutil.ToFloat64(m.CircuitBreakerState.WithLabelValues("market_data"))
	if marketState != 0 {
		t.Errorf("Expected market_data state to be 0 (closed), got %f", marketState)
	}

	photoState := testutil.ToFloat64(m.CircuitBreakerState.WithLabelValues("photo_analysis"))
	if photoState != 2 {
		t.Errorf("Expected photo_analysis state to be 2 (open), got %f", photoState)
	}

	// Record trips
	m.RecordCircuitBreakerTrip("market_data")
	m.RecordCircuitBreakerTrip("market_data")

	trips := testutil.ToFloat64(m.CircuitBreakerTrips.WithLabelValues("market_data"))
	if trips != 2 {
		t.Errorf("Expected market_data trips to be 2, got %f", trips)
	}
}

func TestTimer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	timer := m.NewTimer()
	if timer == nil {
		t.Fatal("NewTimer returned nil")
	}

	// Sleep a small amount to ensure duration is measurable
	time.Sleep(10 * time.Millisecond)

	duration := timer.Duration()
	if duration < 10*time.Millisecond {
		t.Errorf("Expected duration to be at least 10ms, got %v", duration)
	}

	// Test ObserveValuation
	timer.ObserveValuation("success")

	// Test ObserveExternalAPI
	timer2 := m.NewTimer()
	time.Sleep(5 * time.Millisecond)
	timer2.ObserveExternalAPI("market_data", "get_zip_health")

	// Test ObserveDB
	timer3 := m.NewTimer()
	time.Sleep(5 * time.Millisecond)
	timer3.ObserveDB("select", "valuation_runs")
}

func TestGetMetrics_Singleton(t *testing.T) {
	// Save and restore global metrics state
	original := globalMetrics
	defer func() { globalMetrics = original }()

	// Create a fresh metrics instance with a dedicated registry
	reg := prometheus.NewRegistry()
	testMetrics := NewMetrics(reg)
	globalMetrics = testMetrics

	m1 := GetMetrics()
	if m1 == nil {
		t.Fatal("GetMetrics returned nil")
	}

	m2 := GetMetrics()
	if m1 != m2 {
		t.Error("GetMetrics should return the same instance")
	}
}
