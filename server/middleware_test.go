package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/biocule/quotation-api/config"
)

func passThrough() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func TestRealIPMiddleware(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.RemoteAddr
	})

	r := httptest.NewRequest("GET", "/categories", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	RealIPMiddleware(next).ServeHTTP(httptest.NewRecorder(), r)

	if seen != "203.0.113.7" {
		t.Errorf("expected first forwarded IP, got %q", seen)
	}
}

func TestBlockDirectAccess(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		realIP     string
		wantStatus int
	}{
		{"direct external", "203.0.113.9:4444", "", http.StatusForbidden},
		{"localhost dev", "127.0.0.1:4444", "", http.StatusOK},
		{"behind proxy", "203.0.113.9:4444", "198.51.100.2", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, called := passThrough()
			r := httptest.NewRequest("GET", "/categories", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}

			rec := httptest.NewRecorder()
			BlockDirectAccessMiddleware(next).ServeHTTP(rec, r)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if (tt.wantStatus == http.StatusOK) != *called {
				t.Errorf("handler called = %v, want %v", *called, tt.wantStatus == http.StatusOK)
			}
		})
	}
}

func TestRequestSizeMiddlewareBody(t *testing.T) {
	cfg := &config.Config{MaxRequestBody: 10, MaxHeaderSize: 1 << 20}
	next, called := passThrough()

	r := httptest.NewRequest("POST", "/sessions", nil)
	r.Header.Set("Content-Length", "100")

	rec := httptest.NewRecorder()
	RequestSizeMiddleware(cfg)(next).ServeHTTP(rec, r)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
	if *called {
		t.Error("handler should not run for an oversized body")
	}
}

func TestRequestSizeMiddlewareHeaders(t *testing.T) {
	cfg := &config.Config{MaxRequestBody: 1 << 20, MaxHeaderSize: 16}
	next, called := passThrough()

	r := httptest.NewRequest("GET", "/categories", nil)
	r.Header.Set("X-Filler", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")

	rec := httptest.NewRecorder()
	RequestSizeMiddleware(cfg)(next).ServeHTTP(rec, r)

	if rec.Code != http.StatusRequestHeaderFieldsTooLarge {
		t.Fatalf("expected 431, got %d", rec.Code)
	}
	if *called {
		t.Error("handler should not run for oversized headers")
	}
}

func TestGetTokenCost(t *testing.T) {
	tests := []struct {
		path string
		want int64
	}{
		{"/health", 5},
		{"/metrics", 5},
		{"/categories", 10},
		{"/categories/Pharmaceuticals/options", 10},
		{"/resolve", 20},
		{"/guidelines/search/acute", 50},
		{"/otp/send", 200},
		{"/otp/verify", 50},
		{"/quotations/store", 200},
		{"/quotations/some-session", 50},
		{"/sessions", 20},
	}

	for _, tt := range tests {
		r := httptest.NewRequest("GET", tt.path, nil)
		if got := getTokenCost(r); got != tt.want {
			t.Errorf("%s: expected cost %d, got %d", tt.path, tt.want, got)
		}
	}
}

func TestRateLimitHandlerExhaustsBucket(t *testing.T) {
	next, _ := passThrough()
	handler := RateLimitHandler(next)

	// A full bucket holds 1000 tokens; storing a quotation costs 200
	for i := 0; i < 5; i++ {
		r := httptest.NewRequest("POST", "/quotations/store", nil)
		r.RemoteAddr = "198.51.100.77"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
		if rec.Header().Get("X-RateLimit-Limit") != "1000" {
			t.Errorf("request %d: missing rate limit header", i+1)
		}
	}

	r := httptest.NewRequest("POST", "/quotations/store", nil)
	r.RemoteAddr = "198.51.100.77"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 once the bucket is drained, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected a Retry-After header")
	}
}

func TestRateLimitBucketsArePerClient(t *testing.T) {
	next, _ := passThrough()
	handler := RateLimitHandler(next)

	for i := 0; i < 20; i++ {
		r := httptest.NewRequest("GET", "/categories", nil)
		r.RemoteAddr = fmt.Sprintf("203.0.113.%d", i+1)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		if rec.Code != http.StatusOK {
			t.Fatalf("client %d: expected 200, got %d", i+1, rec.Code)
		}
	}
}
