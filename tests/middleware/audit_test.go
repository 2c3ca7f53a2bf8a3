package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fieldmed/fieldsales-api/internal/auth"
	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/fieldmed/fieldsales-api/internal/http/middleware"
	"github.com/fieldmed/fieldsales-api/internal/repository"
	"github.com/fieldmed/fieldsales-api/internal/service"
	"github.com/fieldmed/fieldsales-api/tests/testutil"
)

func TestAudit_SkipsReadsAndRecordsWrites(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	auditService := service.NewAuditLogService(repository.NewAuditLogRepository(db), zap.NewNop())
	rep := testutil.CreateTestUser(t, db, "Rep", domain.RoleMedicalRep)

	auditMw := middleware.NewAuditMiddleware(auditService, nil)
	handler := auditMw.Audit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	actor := &auth.ActorContext{
		UserID: rep.ID,
		Name:   rep.Name,
		Role:   rep.Role,
	}

	// reads are never audited
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req = req.WithContext(auth.WithActorContext(req.Context(), actor))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var count int64
	require.NoError(t, db.Model(&domain.AuditLog{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	// successful writes are
	req = httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader("{}"))
	req.RemoteAddr = "10.0.0.1:5555"
	req = req.WithContext(auth.WithActorContext(req.Context(), actor))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry domain.AuditLog
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, domain.AuditActionCreate, entry.Action)
	assert.Equal(t, "Order", entry.EntityType)
	assert.Equal(t, "/api/v1/orders", entry.Path)
	assert.Equal(t, http.StatusCreated, entry.StatusCode)
	assert.Equal(t, "10.0.0.1", entry.IPAddress)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, rep.ID, *entry.UserID)
	assert.Equal(t, rep.Role, entry.UserRole)
}

func TestAudit_FailedWritesNotRecorded(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	auditService := service.NewAuditLogService(repository.NewAuditLogRepository(db), zap.NewNop())

	auditMw := middleware.NewAuditMiddleware(auditService, nil)
	handler := auditMw.Audit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader("{}"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var count int64
	require.NoError(t, db.Model(&domain.AuditLog{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestAudit_SkipPaths(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	auditService := service.NewAuditLogService(repository.NewAuditLogRepository(db), zap.NewNop())

	auditMw := middleware.NewAuditMiddleware(auditService, nil)
	handler := auditMw.Audit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/health/ready", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var count int64
	require.NoError(t, db.Model(&domain.AuditLog{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
