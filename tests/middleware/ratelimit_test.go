package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/fieldmed/fieldsales-api/internal/config"
	"github.com/fieldmed/fieldsales-api/internal/http/middleware"
)

func rateLimitedHandler(cfg *config.RateLimitConfig) http.Handler {
	rl := middleware.NewRateLimiter(cfg, zap.NewNop())
	return rl.LimitByIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func doRequest(handler http.Handler, path, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_DisabledPassesThrough(t *testing.T) {
	handler := rateLimitedHandler(&config.RateLimitConfig{
		Enabled:           false,
		RequestsPerMinute: 1,
	})

	for i := 0; i < 10; i++ {
		rec := doRequest(handler, "/api/v1/orders", "10.0.0.1:1234")
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimiter_ExceededReturns429(t *testing.T) {
	handler := rateLimitedHandler(&config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 2,
	})

	assert.Equal(t, http.StatusOK, doRequest(handler, "/api/v1/orders", "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, doRequest(handler, "/api/v1/orders", "10.0.0.1:1234").Code)

	rec := doRequest(handler, "/api/v1/orders", "10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate limit exceeded")
}

func TestRateLimiter_WhitelistedPathBypasses(t *testing.T) {
	handler := rateLimitedHandler(&config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 1,
		WhitelistPaths:    []string{"/health", "/swagger/*"},
	})

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(handler, "/health", "10.0.0.1:1234").Code)
		assert.Equal(t, http.StatusOK, doRequest(handler, "/swagger/index.html", "10.0.0.1:1234").Code)
	}
}

func TestRateLimiter_WhitelistedIPBypasses(t *testing.T) {
	handler := rateLimitedHandler(&config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 1,
		WhitelistIPs:      []string{"10.0.0.9"},
	})

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(handler, "/api/v1/orders", "10.0.0.9:1234").Code)
	}

	// another IP is still limited
	assert.Equal(t, http.StatusOK, doRequest(handler, "/api/v1/orders", "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(handler, "/api/v1/orders", "10.0.0.1:1234").Code)
}
