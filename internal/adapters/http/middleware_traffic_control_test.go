package httpadapter

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	cfg := testConfig()
	cfg.APIRateLimitRPS = 1
	cfg.APIRateLimitBurst = 1
	handler := NewRouter(cfg, &serviceFake{}, nil).Handler()

	res1 := httptest.NewRecorder()
	handler.ServeHTTP(res1, httptest.NewRequest(http.MethodGet, "/v1/categories", nil))
	if res1.Code != http.StatusOK {
		t.Fatalf("first request expected 200, got %d", res1.Code)
	}

	res2 := httptest.NewRecorder()
	handler.ServeHTTP(res2, httptest.NewRequest(http.MethodGet, "/v1/categories", nil))
	if res2.Code != http.StatusTooManyRequests {
		t.Fatalf("second request expected 429, got %d", res2.Code)
	}
	if res2.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header for 429 response")
	}
}

func TestBackpressureMiddlewareReturns503WhenSaturated(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan int, 1)

	base := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started <- struct{}{}
		<-release
		w.WriteHeader(http.StatusNoContent)
	})
	handler := backpressureMiddleware(base, 1, 20*time.Millisecond)

	go func() {
		req := httptest.NewRequest(http.MethodPost, "/classify_file", nil)
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		done <- res.Code
	}()

	<-started

	res2 := httptest.NewRecorder()
	handler.ServeHTTP(res2, httptest.NewRequest(http.MethodPost, "/classify_file", nil))
	if res2.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for saturated backpressure gate, got %d", res2.Code)
	}

	var resp map[string]any
	if err := json.NewDecoder(bytes.NewReader(res2.Body.Bytes())).Decode(&resp); err != nil {
		t.Fatalf("decode overload response: %v", err)
	}
	if resp["error"] == "" {
		t.Fatalf("expected overload error message in response")
	}

	close(release)

	select {
	case code := <-done:
		if code != http.StatusNoContent {
			t.Fatalf("first request expected 204, got %d", code)
		}
	case <-time.After(1 * time.Second):
		t.Fatalf("timed out waiting for first request completion")
	}
}

func TestTrafficControlDisabledByDefault(t *testing.T) {
	handler := NewRouter(testConfig(), &serviceFake{}, nil).Handler()
	for i := 0; i < 20; i++ {
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if res.Code != http.StatusOK {
			t.Fatalf("request %d expected 200, got %d", i, res.Code)
		}
	}
}
