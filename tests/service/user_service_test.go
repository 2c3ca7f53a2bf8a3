package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/fieldmed/fieldsales-api/internal/repository"
	"github.com/fieldmed/fieldsales-api/internal/service"
	"github.com/fieldmed/fieldsales-api/tests/testutil"
)

func newUserService(db *gorm.DB) *service.UserService {
	return service.NewUserService(
		repository.NewUserRepository(db),
		domain.NewRoleHierarchy(),
		zap.NewNop(),
	)
}

func createUserRequest(role domain.Role) *domain.CreateUserRequest {
	return &domain.CreateUserRequest{
		Name:  "New User",
		Email: fmt.Sprintf("new-%d@test.fieldmed.io", time.Now().UnixNano()),
		Role:  role,
	}
}

func TestUserCreate_RequiresStrictlyHigherRank(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	admin := testutil.CreateTestUser(t, db, "Admin", domain.RoleAdmin)
	lineManager := testutil.CreateTestUser(t, db, "LM", domain.RoleLineManager)
	districtManager := testutil.CreateTestUser(t, db, "DM", domain.RoleDistrictManager)

	user, err := svc.Create(ctx, actorFor(admin), createUserRequest(domain.RoleGM))
	require.NoError(t, err)
	assert.Equal(t, domain.RoleGM, user.Role)
	assert.True(t, user.IsActive)

	// a line manager provisions field reps but not a peer line manager
	_, err = svc.Create(ctx, actorFor(lineManager), createUserRequest(domain.RoleMedicalRep))
	require.NoError(t, err)
	_, err = svc.Create(ctx, actorFor(lineManager), createUserRequest(domain.RoleLineManager))
	assert.ErrorIs(t, err, service.ErrPermissionDenied)

	// rank-3 roles are peers of the district manager, not subordinates
	_, err = svc.Create(ctx, actorFor(districtManager), createUserRequest(domain.RoleAccounting))
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestUserCreate_LegacyRoleNormalized(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	admin := testutil.CreateTestUser(t, db, "Admin", domain.RoleAdmin)

	user, err := svc.Create(ctx, actorFor(admin), createUserRequest(domain.Role("sales_rep")))
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMedicalRep, user.Role)
}

func TestUserCreate_InvalidRoleRejected(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	admin := testutil.CreateTestUser(t, db, "Admin", domain.RoleAdmin)

	_, err := svc.Create(ctx, actorFor(admin), createUserRequest(domain.Role("superuser")))
	assert.ErrorIs(t, err, service.ErrInvalidRole)
}

func TestUserCreate_DuplicateEmailConflicts(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	admin := testutil.CreateTestUser(t, db, "Admin", domain.RoleAdmin)
	existing := testutil.CreateTestUser(t, db, "Existing", domain.RoleMedicalRep)

	req := createUserRequest(domain.RoleMedicalRep)
	req.Email = existing.Email
	_, err := svc.Create(ctx, actorFor(admin), req)
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestUserCreate_ManagerMustOutrankReport(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	admin := testutil.CreateTestUser(t, db, "Admin", domain.RoleAdmin)
	lineManager := testutil.CreateTestUser(t, db, "LM", domain.RoleLineManager)
	rep := testutil.CreateTestUser(t, db, "Rep", domain.RoleMedicalRep)

	req := createUserRequest(domain.RoleMedicalRep)
	req.ManagedBy = &lineManager.ID
	user, err := svc.Create(ctx, actorFor(admin), req)
	require.NoError(t, err)
	require.NotNil(t, user.ManagedBy)
	assert.Equal(t, lineManager.ID, *user.ManagedBy)

	// a rep cannot be assigned as another rep's manager
	req = createUserRequest(domain.RoleMedicalRep)
	req.ManagedBy = &rep.ID
	_, err = svc.Create(ctx, actorFor(admin), req)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestUserUpdateOrganization(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	gm := testutil.CreateTestUser(t, db, "GM", domain.RoleGM)
	lineManager := testutil.CreateTestUser(t, db, "LM", domain.RoleLineManager)
	rep := testutil.CreateTestUser(t, db, "Rep", domain.RoleMedicalRep)

	newRole := domain.RoleKeyAccount
	line := domain.LineCardio
	areaID := "cairo-west"
	updated, err := svc.UpdateOrganization(ctx, actorFor(gm), rep.ID, &domain.UpdateUserOrgRequest{
		Role:   &newRole,
		Line:   &line,
		AreaID: &areaID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleKeyAccount, updated.Role)
	require.NotNil(t, updated.Line)
	assert.Equal(t, line, *updated.Line)
	require.NotNil(t, updated.AreaID)
	assert.Equal(t, areaID, *updated.AreaID)

	// promoting to a rank the actor does not outrank is denied
	peerRole := domain.RoleLineManager
	_, err = svc.UpdateOrganization(ctx, actorFor(lineManager), rep.ID, &domain.UpdateUserOrgRequest{Role: &peerRole})
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestUserDeactivate(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	admin := testutil.CreateTestUser(t, db, "Admin", domain.RoleAdmin)
	lineManager := testutil.CreateTestUser(t, db, "LM", domain.RoleLineManager)
	rep := testutil.CreateTestUser(t, db, "Rep", domain.RoleMedicalRep)

	// a line manager cannot deactivate a peer
	err := svc.Deactivate(ctx, actorFor(lineManager), lineManager.ID)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)

	require.NoError(t, svc.Deactivate(ctx, actorFor(admin), rep.ID))

	var reloaded domain.User
	require.NoError(t, db.First(&reloaded, "id = ?", rep.ID).Error)
	assert.False(t, reloaded.IsActive)
}

func TestUserGetSelf(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	// even the lowest-ranked roles read their own record
	rep := testutil.CreateTestUser(t, db, "Rep", domain.RoleMedicalRep)

	user, err := svc.GetSelf(ctx, actorFor(rep))
	require.NoError(t, err)
	assert.Equal(t, rep.ID, user.ID)
	assert.Equal(t, rep.Email, user.Email)
}

func TestUserList_RestrictedToManagersAndAccounting(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	lineManager := testutil.CreateTestUser(t, db, "LM", domain.RoleLineManager)
	accounting := testutil.CreateTestUser(t, db, "Accounting", domain.RoleAccounting)
	rep := testutil.CreateTestUser(t, db, "Rep", domain.RoleMedicalRep)

	_, total, err := svc.List(ctx, actorFor(lineManager), 1, 20, "", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	_, _, err = svc.List(ctx, actorFor(accounting), 1, 20, "", nil)
	require.NoError(t, err)

	_, _, err = svc.List(ctx, actorFor(rep), 1, 20, "", nil)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestUserListDirectReports(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	admin := testutil.CreateTestUser(t, db, "Admin", domain.RoleAdmin)
	lineManager := testutil.CreateTestUser(t, db, "LM", domain.RoleLineManager)

	req := createUserRequest(domain.RoleMedicalRep)
	req.ManagedBy = &lineManager.ID
	report, err := svc.Create(ctx, actorFor(admin), req)
	require.NoError(t, err)

	reports, err := svc.ListDirectReports(ctx, actorFor(lineManager))
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, report.ID, reports[0].ID)
}
