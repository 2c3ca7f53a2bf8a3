package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fieldmed/fieldsales-api/internal/accounting"
	"github.com/fieldmed/fieldsales-api/internal/auth"
	"github.com/fieldmed/fieldsales-api/internal/config"
	"github.com/fieldmed/fieldsales-api/internal/database"
	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/fieldmed/fieldsales-api/internal/http/handler"
	"github.com/fieldmed/fieldsales-api/internal/http/middleware"

	_ "github.com/fieldmed/fieldsales-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg             *config.Config
	logger          *zap.Logger
	db              *gorm.DB
	erpClient       *accounting.Client
	authMiddleware  *auth.Middleware
	rateLimiter     *middleware.RateLimiter
	auditMiddleware *middleware.AuditMiddleware
	authHandler     *handler.AuthHandler
	userHandler     *handler.UserHandler
	clinicHandler   *handler.ClinicHandler
	catalogHandler  *handler.CatalogHandler
	orderHandler    *handler.OrderHandler
	visitHandler    *handler.VisitHandler
	fileHandler     *handler.FileHandler
	auditHandler    *handler.AuditHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	erpClient *accounting.Client,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	auditMiddleware *middleware.AuditMiddleware,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	clinicHandler *handler.ClinicHandler,
	catalogHandler *handler.CatalogHandler,
	orderHandler *handler.OrderHandler,
	visitHandler *handler.VisitHandler,
	fileHandler *handler.FileHandler,
	auditHandler *handler.AuditHandler,
) *Router {
	return &Router{
		cfg:             cfg,
		logger:          logger,
		db:              db,
		erpClient:       erpClient,
		authMiddleware:  authMiddleware,
		rateLimiter:     rateLimiter,
		auditMiddleware: auditMiddleware,
		authHandler:     authHandler,
		userHandler:     userHandler,
		clinicHandler:   clinicHandler,
		catalogHandler:  catalogHandler,
		orderHandler:    orderHandler,
		visitHandler:    visitHandler,
		fileHandler:     fileHandler,
		auditHandler:    auditHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Combined readiness check. A down ERP does not fail readiness since
	// debt classification degrades rather than blocking.
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		if rt.erpClient != nil && rt.erpClient.IsEnabled() {
			erpStatus := rt.erpClient.HealthCheck(r.Context())
			checks["accounting_erp"] = erpStatus
		} else {
			checks["accounting_erp"] = map[string]interface{}{
				"status": "disabled",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		status := "healthy"
		code := http.StatusOK
		if !allHealthy {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": status,
			"checks": checks,
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authMiddleware.Authenticate)
		r.Use(rt.auditMiddleware.Audit)

		// Auth
		r.Get("/auth/me", rt.authHandler.Me)

		// Users and profiles
		r.Route("/users", func(r chi.Router) {
			r.Get("/", rt.userHandler.List)
			r.Post("/", rt.userHandler.Create)
			r.Get("/me/reports", rt.userHandler.DirectReports)
			r.Get("/{id}/profile", rt.userHandler.GetProfile)
			r.Get("/{id}/access-history", rt.userHandler.AccessHistory)
			r.Put("/{id}/organization", rt.userHandler.UpdateOrganization)
			r.Delete("/{id}", rt.userHandler.Deactivate)
		})

		// Clinics
		r.Route("/clinics", func(r chi.Router) {
			r.Get("/", rt.clinicHandler.List)
			r.Post("/", rt.clinicHandler.Create)
			r.Get("/{id}", rt.clinicHandler.Get)
			r.Get("/{id}/debt-status", rt.clinicHandler.DebtStatus)
		})

		// Catalog
		r.Get("/products", rt.catalogHandler.ListProducts)
		r.Get("/warehouses", rt.catalogHandler.ListWarehouses)

		// Orders
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", rt.orderHandler.List)
			r.Post("/", rt.orderHandler.Create)
			r.Get("/{id}", rt.orderHandler.Get)
		})

		// Visits
		r.Route("/visits", func(r chi.Router) {
			r.Get("/", rt.visitHandler.List)
			r.Post("/", rt.visitHandler.Create)
			r.Get("/{id}", rt.visitHandler.Get)
			r.Put("/{id}/review", rt.visitHandler.Review)
			r.Post("/{id}/attachments", rt.fileHandler.Upload)
		})

		// Files
		r.Route("/files", func(r chi.Router) {
			r.Get("/{id}", rt.fileHandler.Download)
			r.Delete("/{id}", rt.fileHandler.Delete)
		})

		// Audit logs (admin only)
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.RequireRole(domain.RoleAdmin))
			r.Get("/audit-logs", rt.auditHandler.List)
		})
	})

	return r
}
