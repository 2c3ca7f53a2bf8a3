package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fieldmed/fieldsales-api/internal/auth"
	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/fieldmed/fieldsales-api/internal/repository"
	"github.com/fieldmed/fieldsales-api/internal/service"
	"github.com/fieldmed/fieldsales-api/tests/testutil"
)

func newProfileService(db *gorm.DB) *service.ProfileService {
	return service.NewProfileService(
		repository.NewUserRepository(db),
		repository.NewVisitRepository(db),
		repository.NewOrderRepository(db),
		repository.NewClinicRepository(db),
		repository.NewAccessLogRepository(db),
		domain.NewRoleHierarchy(),
		zap.NewNop(),
	)
}

func actorFor(user *domain.User) *auth.ActorContext {
	return &auth.ActorContext{
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		ManagedBy: user.ManagedBy,
		Line:      user.Line,
		AreaID:    user.AreaID,
	}
}

func TestProfileAccess_AdminSeesEveryone(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newProfileService(db)
	ctx := context.Background()

	admin := testutil.CreateTestUser(t, db, "Admin", domain.RoleAdmin)
	rep := testutil.CreateTestUser(t, db, "Rep", domain.RoleMedicalRep)

	allowed, err := svc.CanAccessProfile(ctx, actorFor(admin), rep.ID)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestProfileAccess_MissingTargetDeniesEvenAdmin(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newProfileService(db)
	ctx := context.Background()

	admin := testutil.CreateTestUser(t, db, "Admin", domain.RoleAdmin)

	allowed, err := svc.CanAccessProfile(ctx, actorFor(admin), uuid.New())
	require.NoError(t, err)
	assert.False(t, allowed)

	_, err = svc.GetProfile(ctx, actorFor(admin), uuid.New())
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestProfileAccess_SelfView(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newProfileService(db)
	ctx := context.Background()

	// mid-tier roles may self-view through the resolver
	for _, role := range []domain.Role{
		domain.RoleLineManager, domain.RoleAreaManager,
		domain.RoleDistrictManager, domain.RoleKeyAccount,
	} {
		user := testutil.CreateTestUser(t, db, "Self "+string(role), role)
		allowed, err := svc.CanAccessProfile(ctx, actorFor(user), user.ID)
		require.NoError(t, err)
		assert.True(t, allowed, "%s should self-view", role)
	}

	// field and back-office roles may not; they use /auth/me instead
	for _, role := range []domain.Role{
		domain.RoleMedicalRep, domain.RoleWarehouseKeeper, domain.RoleAccounting,
	} {
		user := testutil.CreateTestUser(t, db, "Self "+string(role), role)
		allowed, err := svc.CanAccessProfile(ctx, actorFor(user), user.ID)
		require.NoError(t, err)
		assert.False(t, allowed, "%s should not self-view through the resolver", role)
	}
}

func TestProfileAccess_DirectReport(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newProfileService(db)
	ctx := context.Background()

	manager := testutil.CreateTestUser(t, db, "DM", domain.RoleDistrictManager)
	rep := testutil.CreateTestUser(t, db, "Rep", domain.RoleMedicalRep)
	rep.ManagedBy = &manager.ID
	require.NoError(t, db.Save(rep).Error)

	allowed, err := svc.CanAccessProfile(ctx, actorFor(manager), rep.ID)
	require.NoError(t, err)
	assert.True(t, allowed)

	// someone else's report is not visible
	other := testutil.CreateTestUser(t, db, "Other DM", domain.RoleDistrictManager)
	allowed, err = svc.CanAccessProfile(ctx, actorFor(other), rep.ID)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestProfileAccess_LineManagerSameLine(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newProfileService(db)
	ctx := context.Background()

	cardio := domain.LineCardio
	cns := domain.LineCNS

	manager := testutil.CreateTestUser(t, db, "LM", domain.RoleLineManager)
	manager.Line = &cardio
	require.NoError(t, db.Save(manager).Error)

	sameLine := testutil.CreateTestUser(t, db, "Rep Cardio", domain.RoleMedicalRep)
	sameLine.Line = &cardio
	require.NoError(t, db.Save(sameLine).Error)

	otherLine := testutil.CreateTestUser(t, db, "Rep CNS", domain.RoleMedicalRep)
	otherLine.Line = &cns
	require.NoError(t, db.Save(otherLine).Error)

	allowed, err := svc.CanAccessProfile(ctx, actorFor(manager), sameLine.ID)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = svc.CanAccessProfile(ctx, actorFor(manager), otherLine.ID)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestProfileAccess_AreaManagerSameArea(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newProfileService(db)
	ctx := context.Background()

	east := "cairo-east"
	west := "cairo-west"

	manager := testutil.CreateTestUser(t, db, "AM", domain.RoleAreaManager)
	manager.AreaID = &east
	require.NoError(t, db.Save(manager).Error)

	inArea := testutil.CreateTestUser(t, db, "Rep East", domain.RoleMedicalRep)
	inArea.AreaID = &east
	require.NoError(t, db.Save(inArea).Error)

	outOfArea := testutil.CreateTestUser(t, db, "Rep West", domain.RoleMedicalRep)
	outOfArea.AreaID = &west
	require.NoError(t, db.Save(outOfArea).Error)

	allowed, err := svc.CanAccessProfile(ctx, actorFor(manager), inArea.ID)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = svc.CanAccessProfile(ctx, actorFor(manager), outOfArea.ID)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestProfileAccess_AccountingSeesFieldRolesOnly(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newProfileService(db)
	ctx := context.Background()

	accounting := testutil.CreateTestUser(t, db, "Accountant", domain.RoleAccounting)

	rep := testutil.CreateTestUser(t, db, "Rep", domain.RoleMedicalRep)
	keyAccount := testutil.CreateTestUser(t, db, "KA", domain.RoleKeyAccount)
	lineManager := testutil.CreateTestUser(t, db, "LM", domain.RoleLineManager)

	allowed, err := svc.CanAccessProfile(ctx, actorFor(accounting), rep.ID)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = svc.CanAccessProfile(ctx, actorFor(accounting), keyAccount.ID)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = svc.CanAccessProfile(ctx, actorFor(accounting), lineManager.ID)
	require.NoError(t, err)
	assert.False(t, allowed, "accounting must not see managerial profiles")
}

func TestProfileAccess_DefaultDeny(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newProfileService(db)
	ctx := context.Background()

	repA := testutil.CreateTestUser(t, db, "Rep A", domain.RoleMedicalRep)
	repB := testutil.CreateTestUser(t, db, "Rep B", domain.RoleMedicalRep)

	allowed, err := svc.CanAccessProfile(ctx, actorFor(repA), repB.ID)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestGetProfile_StampsAuditSynchronously(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newProfileService(db)
	ctx := context.Background()

	admin := testutil.CreateTestUser(t, db, "Admin", domain.RoleAdmin)
	rep := testutil.CreateTestUser(t, db, "Rep", domain.RoleMedicalRep)

	profile, err := svc.GetProfile(ctx, actorFor(admin), rep.ID)
	require.NoError(t, err)
	require.NotNil(t, profile.AccessAudit)
	assert.Equal(t, admin.ID, profile.AccessAudit.AccessedBy)
	assert.Equal(t, "admin", profile.AccessAudit.Reason)

	var logs []domain.ProfileAccessLog
	require.NoError(t, db.Where("accessed_user_id = ?", rep.ID).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, admin.ID, logs[0].AccessedBy)
	assert.Equal(t, domain.RoleAdmin, logs[0].AccessedByRole)
	assert.Equal(t, "admin", logs[0].AccessReason)
}

func TestListAccessHistory_Restricted(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newProfileService(db)
	ctx := context.Background()

	admin := testutil.CreateTestUser(t, db, "Admin", domain.RoleAdmin)
	rep := testutil.CreateTestUser(t, db, "Rep", domain.RoleMedicalRep)
	other := testutil.CreateTestUser(t, db, "Other", domain.RoleMedicalRep)

	_, err := svc.GetProfile(ctx, actorFor(admin), rep.ID)
	require.NoError(t, err)

	// the profile owner and admins may read the history
	logs, total, err := svc.ListAccessHistory(ctx, actorFor(rep), rep.ID, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, logs, 1)

	_, _, err = svc.ListAccessHistory(ctx, actorFor(admin), rep.ID, 1, 20)
	require.NoError(t, err)

	// anyone else may not
	_, _, err = svc.ListAccessHistory(ctx, actorFor(other), rep.ID, 1, 20)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}
