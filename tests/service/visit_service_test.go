package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/fieldmed/fieldsales-api/internal/repository"
	"github.com/fieldmed/fieldsales-api/internal/service"
	"github.com/fieldmed/fieldsales-api/tests/testutil"
)

func newVisitService(db *gorm.DB) *service.VisitService {
	return service.NewVisitService(
		repository.NewVisitRepository(db),
		repository.NewClinicRepository(db),
		repository.NewUserRepository(db),
		zap.NewNop(),
	)
}

func visitRequest(clinic *domain.Clinic, visitType domain.VisitType) *domain.CreateVisitRequest {
	return &domain.CreateVisitRequest{
		DoctorID:  uuid.New(),
		ClinicID:  clinic.ID,
		VisitDate: time.Now().AddDate(0, 0, 1),
		VisitType: visitType,
	}
}

func TestVisitCreate_SoloSeedsRequester(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newVisitService(db)
	ctx := context.Background()

	rep := testutil.CreateTestUser(t, db, "Rep", domain.RoleMedicalRep)
	clinic := testutil.CreateTestClinic(t, db, "Clinic")

	visit, err := svc.Create(ctx, actorFor(rep), visitRequest(clinic, domain.VisitTypeSolo))
	require.NoError(t, err)

	assert.Equal(t, domain.VisitStatusPending, visit.Status)
	assert.Equal(t, 1, visit.ParticipantsCount)
	require.Len(t, visit.ParticipantsDetails, 1)
	assert.Equal(t, rep.ID, visit.ParticipantsDetails[0].UserID)
	assert.Equal(t, rep.Name, visit.ParticipantsDetails[0].Name)
	assert.Equal(t, domain.RoleMedicalRep, visit.ParticipantsDetails[0].Role)
}

func TestVisitCreate_ManagerAndOtherAppended(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newVisitService(db)
	ctx := context.Background()

	rep := testutil.CreateTestUser(t, db, "Rep", domain.RoleMedicalRep)
	manager := testutil.CreateTestUser(t, db, "LM", domain.RoleLineManager)
	other := testutil.CreateTestUser(t, db, "KA", domain.RoleKeyAccount)
	clinic := testutil.CreateTestClinic(t, db, "Clinic")

	req := visitRequest(clinic, domain.VisitTypeThreeWithManagerAndOther)
	req.AccompanyingManagerID = &manager.ID
	req.OtherParticipantID = &other.ID

	visit, err := svc.Create(ctx, actorFor(rep), req)
	require.NoError(t, err)

	assert.Equal(t, 3, visit.ParticipantsCount)
	require.Len(t, visit.ParticipantsDetails, 3)

	// the requester always comes first
	assert.Equal(t, rep.ID, visit.ParticipantsDetails[0].UserID)
	assert.Equal(t, manager.ID, visit.ParticipantsDetails[1].UserID)
	assert.Equal(t, other.ID, visit.ParticipantsDetails[2].UserID)

	require.NotNil(t, visit.AccompanyingManagerID)
	assert.Equal(t, manager.ID, *visit.AccompanyingManagerID)
	assert.Equal(t, manager.Name, visit.AccompanyingManagerName)
	require.NotNil(t, visit.AccompanyingManagerRole)
	assert.Equal(t, domain.RoleLineManager, *visit.AccompanyingManagerRole)

	require.NotNil(t, visit.OtherParticipantID)
	assert.Equal(t, other.ID, *visit.OtherParticipantID)
	assert.Equal(t, other.Name, visit.OtherParticipantName)
}

func TestVisitCreate_UnresolvableParticipantsSkipped(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newVisitService(db)
	ctx := context.Background()

	rep := testutil.CreateTestUser(t, db, "Rep", domain.RoleMedicalRep)
	clinic := testutil.CreateTestClinic(t, db, "Clinic")

	ghost := uuid.New()
	req := visitRequest(clinic, domain.VisitTypeDuoWithManager)
	req.AccompanyingManagerID = &ghost

	visit, err := svc.Create(ctx, actorFor(rep), req)
	require.NoError(t, err)

	// the visit type is stored as supplied even though only one
	// participant resolved
	assert.Equal(t, domain.VisitTypeDuoWithManager, visit.VisitType)
	assert.Equal(t, 1, visit.ParticipantsCount)
	assert.Nil(t, visit.AccompanyingManagerID)
	assert.Empty(t, visit.AccompanyingManagerName)
}

func TestVisitCreate_Validation(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newVisitService(db)
	ctx := context.Background()

	rep := testutil.CreateTestUser(t, db, "Rep", domain.RoleMedicalRep)
	manager := testutil.CreateTestUser(t, db, "LM", domain.RoleLineManager)
	clinic := testutil.CreateTestClinic(t, db, "Clinic")

	_, err := svc.Create(ctx, actorFor(rep), visitRequest(clinic, domain.VisitType("GROUP")))
	assert.ErrorIs(t, err, service.ErrInvalidVisitType)

	req := visitRequest(clinic, domain.VisitTypeSolo)
	req.ClinicID = uuid.New()
	_, err = svc.Create(ctx, actorFor(rep), req)
	assert.ErrorIs(t, err, service.ErrClinicNotFound)

	_, err = svc.Create(ctx, actorFor(manager), visitRequest(clinic, domain.VisitTypeSolo))
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestVisitReview(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newVisitService(db)
	ctx := context.Background()

	rep := testutil.CreateTestUser(t, db, "Rep", domain.RoleMedicalRep)
	manager := testutil.CreateTestUser(t, db, "LM", domain.RoleLineManager)
	clinic := testutil.CreateTestClinic(t, db, "Clinic")

	visit, err := svc.Create(ctx, actorFor(rep), visitRequest(clinic, domain.VisitTypeSolo))
	require.NoError(t, err)

	// field reps cannot review, not even their own visit
	_, err = svc.Review(ctx, actorFor(rep), visit.ID, domain.VisitStatusApproved)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)

	// pending is not a review outcome
	_, err = svc.Review(ctx, actorFor(manager), visit.ID, domain.VisitStatusPending)
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	reviewed, err := svc.Review(ctx, actorFor(manager), visit.ID, domain.VisitStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.VisitStatusApproved, reviewed.Status)

	_, err = svc.Review(ctx, actorFor(manager), uuid.New(), domain.VisitStatusRejected)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestVisitVisibility_FieldRepsScopedToOwn(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newVisitService(db)
	ctx := context.Background()

	rep := testutil.CreateTestUser(t, db, "Rep", domain.RoleMedicalRep)
	other := testutil.CreateTestUser(t, db, "Other Rep", domain.RoleMedicalRep)
	clinic := testutil.CreateTestClinic(t, db, "Clinic")

	own, err := svc.Create(ctx, actorFor(rep), visitRequest(clinic, domain.VisitTypeSolo))
	require.NoError(t, err)
	foreign, err := svc.Create(ctx, actorFor(other), visitRequest(clinic, domain.VisitTypeSolo))
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, actorFor(rep), own.ID)
	require.NoError(t, err)
	assert.Equal(t, own.ID, got.ID)

	_, err = svc.GetByID(ctx, actorFor(rep), foreign.ID)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)

	visits, total, err := svc.List(ctx, actorFor(rep), 1, 20, repository.VisitFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, visits, 1)
	assert.Equal(t, rep.ID, visits[0].RequestedByID)
}
