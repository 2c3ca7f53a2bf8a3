package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/fieldmed/fieldsales-api/internal/http/handler"
	"github.com/fieldmed/fieldsales-api/internal/repository"
	"github.com/fieldmed/fieldsales-api/internal/service"
	"github.com/fieldmed/fieldsales-api/tests/testutil"
)

func createUserHandler(db *gorm.DB) *handler.UserHandler {
	logger := zap.NewNop()
	userRepo := repository.NewUserRepository(db)
	hierarchy := domain.NewRoleHierarchy()
	userService := service.NewUserService(userRepo, hierarchy, logger)
	profileService := service.NewProfileService(
		userRepo,
		repository.NewVisitRepository(db),
		repository.NewOrderRepository(db),
		repository.NewClinicRepository(db),
		repository.NewAccessLogRepository(db),
		hierarchy,
		logger,
	)
	return handler.NewUserHandler(userService, profileService, logger)
}

func getProfile(h *handler.UserHandler, actor *domain.User, targetID string) *httptest.ResponseRecorder {
	ctx := withChiContext(actorContext(actor), map[string]string{"id": targetID})
	req := httptest.NewRequest(http.MethodGet, "/users/"+targetID+"/profile", nil)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	h.GetProfile(rr, req)
	return rr
}

func TestUserHandler_GetProfile_DeniedForUnrelatedRep(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	h := createUserHandler(db)

	rep := testutil.CreateTestUser(t, db, "Rep", domain.RoleMedicalRep)
	other := testutil.CreateTestUser(t, db, "Other Rep", domain.RoleMedicalRep)

	rr := getProfile(h, rep, other.ID.String())
	assert.Equal(t, http.StatusForbidden, rr.Code)

	var errResp domain.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errResp))
	assert.Equal(t, http.StatusForbidden, errResp.Code)
	assert.NotEmpty(t, errResp.Message)

	// the denial leaves no access stamp behind
	var count int64
	require.NoError(t, db.Model(&domain.ProfileAccessLog{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestUserHandler_GetProfile_AllowedForAdmin(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	h := createUserHandler(db)

	admin := testutil.CreateTestUser(t, db, "Admin", domain.RoleAdmin)
	rep := testutil.CreateTestUser(t, db, "Rep", domain.RoleMedicalRep)

	rr := getProfile(h, admin, rep.ID.String())
	assert.Equal(t, http.StatusOK, rr.Code)

	var profile domain.ProfileDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &profile))
	assert.Equal(t, rep.ID, profile.ID)

	// a successful read stamps the access audit synchronously
	var count int64
	require.NoError(t, db.Model(&domain.ProfileAccessLog{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUserHandler_GetProfile_InvalidID(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	h := createUserHandler(db)

	rep := testutil.CreateTestUser(t, db, "Rep", domain.RoleMedicalRep)

	rr := getProfile(h, rep, "not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
