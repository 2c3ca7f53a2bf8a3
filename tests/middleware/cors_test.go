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

func corsHandler(cfg *config.CORSConfig, environment string) http.Handler {
	return middleware.CORS(cfg, environment, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func preflight(handler http.Handler, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/orders", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCORS_ExplicitOrigins(t *testing.T) {
	handler := corsHandler(&config.CORSConfig{
		AllowedOrigins: []string{"https://app.fieldmed.io"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}, "production")

	rec := preflight(handler, "https://app.fieldmed.io")
	assert.Equal(t, "https://app.fieldmed.io", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = preflight(handler, "https://evil.example.com")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_DevelopmentAllowsAnyOrigin(t *testing.T) {
	handler := corsHandler(&config.CORSConfig{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}, "development")

	rec := preflight(handler, "http://localhost:3000")
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_ProductionWithoutOriginsDeniesAll(t *testing.T) {
	handler := corsHandler(&config.CORSConfig{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}, "production")

	rec := preflight(handler, "https://app.fieldmed.io")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
