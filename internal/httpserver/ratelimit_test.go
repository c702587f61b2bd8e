package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/time/rate"

	"github.com/fdg312/portion-planner/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func postPlan(h http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/plans", nil)
	req.RemoteAddr = remote
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRateLimit_SecondRequestReturns429(t *testing.T) {
	handler := RateLimitMiddleware(&config.Config{RateLimitRPS: 1, RateLimitBurst: 1}, nil, okHandler())

	if rr := postPlan(handler, "1.2.3.4:12345"); rr.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", rr.Code)
	}

	rr := postPlan(handler, "1.2.3.4:12345")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "1" {
		t.Errorf("expected Retry-After: 1, got %q", rr.Header().Get("Retry-After"))
	}

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Error.Code != "rate_limited" {
		t.Errorf("expected code=rate_limited, got %q", body.Error.Code)
	}
}

func TestRateLimit_DisabledWhenZero(t *testing.T) {
	calls := 0
	handler := RateLimitMiddleware(&config.Config{}, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	for i := 0; i < 10; i++ {
		if rr := postPlan(handler, "1.2.3.4:12345"); rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rr.Code)
		}
	}
	if calls != 10 {
		t.Errorf("expected 10 calls, got %d", calls)
	}
}

func TestRateLimit_BurstDefaultsToRPS(t *testing.T) {
	handler := RateLimitMiddleware(&config.Config{RateLimitRPS: 3}, nil, okHandler())

	for i := 0; i < 3; i++ {
		if rr := postPlan(handler, "9.9.9.9:1"); rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rr.Code)
		}
	}
	if rr := postPlan(handler, "9.9.9.9:1"); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", rr.Code)
	}
}

func TestRateLimit_DifferentIPsIndependent(t *testing.T) {
	handler := RateLimitMiddleware(&config.Config{RateLimitRPS: 1, RateLimitBurst: 1}, nil, okHandler())

	if rr := postPlan(handler, "1.2.3.4:1"); rr.Code != http.StatusOK {
		t.Fatalf("IP1 first request: expected 200, got %d", rr.Code)
	}
	if rr := postPlan(handler, "5.6.7.8:1"); rr.Code != http.StatusOK {
		t.Fatalf("IP2 first request: expected 200, got %d", rr.Code)
	}
}

func TestRateLimiterStore_SweepDropsFullBuckets(t *testing.T) {
	s := newRateLimiterStore(1, 1)
	s.allow("1.1.1.1")
	s.limiters["2.2.2.2"] = rate.NewLimiter(s.rps, s.burst)

	s.mu.Lock()
	s.sweep()
	s.mu.Unlock()

	if _, ok := s.limiters["2.2.2.2"]; ok {
		t.Error("expected idle client to be swept")
	}
	if _, ok := s.limiters["1.1.1.1"]; !ok {
		t.Error("expected active client to be kept")
	}
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		remote string
		want   string
	}{
		{"remote addr", "", "10.0.0.1:5555", "10.0.0.1"},
		{"single forwarded", "203.0.113.7", "10.0.0.1:5555", "203.0.113.7"},
		{"forwarded chain", "203.0.113.7, 10.0.0.2", "10.0.0.1:5555", "203.0.113.7"},
		{"remote without port", "", "10.0.0.1", "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := extractIP(req); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
