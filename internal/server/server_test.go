package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/fasalvikas/fasal-vikas/internal/config"
	"github.com/fasalvikas/fasal-vikas/internal/features"
	"github.com/fasalvikas/fasal-vikas/internal/metrics"
	"github.com/fasalvikas/fasal-vikas/internal/models"
	"github.com/fasalvikas/fasal-vikas/internal/nn"
)

// writeModels saves a tiny yield regressor and crop classifier into dir
func writeModels(t *testing.T, dir string) {
	t.Helper()

	width := features.DefaultEncoder().Width()
	coef := make([]float64, width)
	coef[width-1] = 0.5
	yield := &nn.YieldRegressor{
		Width:      width,
		Estimators: []nn.Estimator{{Kind: nn.KindLinear, Coef: coef, Intercept: 1}},
	}
	if err := yield.Save(filepath.Join(dir, "voting_yield.gob")); err != nil {
		t.Fatalf("Failed to save yield model: %v", err)
	}

	crop := &nn.CropClassifier{
		Width:   7,
		Classes: []string{"rice", "maize"},
		Trees: []nn.Tree{{
			Feature:   []int{0, -2, -2},
			Threshold: []float64{50, -2, -2},
			Left:      []int{1, -1, -1},
			Right:     []int{2, -1, -1},
			Value:     []float64{0, 0, 1},
		}},
	}
	if err := crop.Save(filepath.Join(dir, "rf_crop.gob")); err != nil {
		t.Fatalf("Failed to save crop model: %v", err)
	}
}

func testConfig(t *testing.T) config.Config {
	t.Helper()

	dir := t.TempDir()
	writeModels(t, dir)

	cfg := *config.Default()
	cfg.Version = "test"
	cfg.Models.Dir = dir
	cfg.History.DSN = filepath.Join(dir, "history.db")
	cfg.RateLimit.Enabled = false
	return cfg
}

func newTestServer(t *testing.T, cfg config.Config) *Server {
	t.Helper()

	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Stop(); err != nil {
			t.Errorf("Stop failed: %v", err)
		}
	})
	return s
}

func TestNewMissingModel(t *testing.T) {
	cfg := *config.Default()
	cfg.Models.Dir = t.TempDir()

	if _, err := New(cfg); err == nil {
		t.Fatal("Expected error for missing model files")
	}
}

func TestNewWidthMismatch(t *testing.T) {
	cfg := testConfig(t)
	bad := &nn.YieldRegressor{
		Width:      3,
		Estimators: []nn.Estimator{{Kind: nn.KindLinear, Coef: []float64{1, 1, 1}}},
	}
	if err := bad.Save(cfg.Models.YieldPath()); err != nil {
		t.Fatalf("Failed to save model: %v", err)
	}

	if _, err := New(cfg); err == nil {
		t.Fatal("Expected error for a yield model of the wrong width")
	}
}

func TestPredictThroughServer(t *testing.T) {
	s := newTestServer(t, testConfig(t))

	body := `{"state":"West Bengal","crop":"rice","season":"Kharif","ph":5,"rainfall":50,"temperature":30,"area":0.5,"production":5}`
	req := httptest.NewRequest("POST", "/api/predict/yield", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp models.YieldResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.PredictedYieldDisplay != "3.50" {
		t.Errorf("Expected display 3.50, got %s", resp.PredictedYieldDisplay)
	}
	if resp.ID == "" {
		t.Error("Expected prediction to be recorded in history")
	}

	// The stored record is reachable by ID
	req = httptest.NewRequest("GET", "/api/predictions/"+resp.ID, nil)
	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200 for stored prediction, got %d", rr.Code)
	}
}

func TestHistoryUnavailableIsNotFatal(t *testing.T) {
	cfg := testConfig(t)
	cfg.History.DSN = filepath.Join(t.TempDir(), "missing-dir", "history.db")

	s := newTestServer(t, cfg)

	req := httptest.NewRequest("GET", "/api/predictions", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", rr.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t, testConfig(t))

	req := httptest.NewRequest("GET", "/api/health", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	if rr.Header().Get(RequestIDHeader) == "" {
		t.Error("Expected a generated request ID")
	}

	req = httptest.NewRequest("GET", "/api/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	if got := rr.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("Expected request ID abc-123, got %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, testConfig(t))

	// One API call so the request counter has a series
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/api/health", nil))

	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `fasal_http_requests_total{method="GET",route="/api/health",status="200"}`) {
		t.Error("Expected request counter labelled by route template")
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, testConfig(t))

	req := httptest.NewRequest("OPTIONS", "/api/predict/yield", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected Access-Control-Allow-Origin *, got %q", got)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.Requests = 2
	s := newTestServer(t, cfg)

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/api/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, req)
		last = rr.Code
	}

	if last != http.StatusTooManyRequests {
		t.Errorf("Expected status 429 on third request, got %d", last)
	}
}

func TestSPAFallback(t *testing.T) {
	s := newTestServer(t, testConfig(t))

	for _, path := range []string{"/", "/some/client/route"} {
		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, httptest.NewRequest("GET", path, nil))

		if rr.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", path, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "<title>Fasal Vikas</title>") {
			t.Errorf("%s: expected index.html", path)
		}
	}
}

func TestMethodNotAllowedIsInstrumented(t *testing.T) {
	s := newTestServer(t, testConfig(t))
	counter := metrics.APIRequestsTotal.WithLabelValues("POST", "unmatched", "405")
	before := testutil.ToFloat64(counter)

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest("POST", "/api/health", nil))

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("Expected status 405, got %d", rr.Code)
	}
	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("Expected 405 to be counted once, got %v -> %v", before, got)
	}
	if rr.Header().Get(RequestIDHeader) == "" {
		t.Error("Expected a request ID on a 405 response")
	}
}

func TestPanicIsRecovered(t *testing.T) {
	router := mux.NewRouter()
	router.Use(captureRoute)
	router.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	h := chain(testConfig(t), router)

	counter := metrics.APIRequestsTotal.WithLabelValues("GET", "/boom", "500")
	before := testutil.ToFloat64(counter)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/boom", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", rr.Code)
	}
	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("Expected recovered panic to be counted as 500 on /boom, got %v -> %v", before, got)
	}
}
