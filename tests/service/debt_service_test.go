package service_test

import (
	"context"
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

func newDebtService(db *gorm.DB) *service.DebtService {
	return service.NewDebtService(
		repository.NewInvoiceRepository(db),
		repository.NewClinicRepository(db),
		zap.NewNop(),
	)
}

func TestDebtClassify_AggregatesUnsettledInvoices(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newDebtService(db)
	ctx := context.Background()

	clinic := testutil.CreateTestClinic(t, db, "Clinic")
	future := time.Now().AddDate(0, 1, 0)
	past := time.Now().AddDate(0, -1, 0)

	testutil.CreateTestInvoice(t, db, clinic.ID, 600, domain.PaymentStatusPending, future)
	testutil.CreateTestInvoice(t, db, clinic.ID, 300, domain.PaymentStatusOverdue, past)
	// paid invoices never count
	testutil.CreateTestInvoice(t, db, clinic.ID, 9999, domain.PaymentStatusPaid, past)

	snapshot := svc.Classify(ctx, clinic.ID)

	assert.Equal(t, clinic.ID, snapshot.ClinicID)
	assert.Equal(t, 900.0, snapshot.OutstandingAmount)
	assert.Equal(t, 300.0, snapshot.OverdueAmount)
	assert.Equal(t, 2, snapshot.InvoiceCount)
	assert.Equal(t, domain.DebtTierClear, snapshot.Tier)
	assert.False(t, snapshot.Unavailable)
	assert.False(t, snapshot.ComputedAt.IsZero())
}

func TestDebtClassify_PartialPaymentUsesOutstanding(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newDebtService(db)
	ctx := context.Background()

	clinic := testutil.CreateTestClinic(t, db, "Clinic")

	invoice := testutil.CreateTestInvoice(t, db, clinic.ID, 4000, domain.PaymentStatusPartiallyPaid, time.Now().AddDate(0, 1, 0))
	remaining := 1200.0
	invoice.OutstandingAmount = &remaining
	require.NoError(t, db.Save(invoice).Error)

	snapshot := svc.Classify(ctx, clinic.ID)
	assert.Equal(t, 1200.0, snapshot.OutstandingAmount)
	assert.Equal(t, domain.DebtTierWarning, snapshot.Tier)
}

func TestDebtClassify_TierThresholds(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newDebtService(db)
	ctx := context.Background()

	cases := []struct {
		amount float64
		tier   domain.DebtTier
	}{
		{1000, domain.DebtTierClear},
		{1000.01, domain.DebtTierWarning},
		{5000, domain.DebtTierWarning},
		{5000.01, domain.DebtTierBlocked},
	}

	for _, tc := range cases {
		clinic := testutil.CreateTestClinic(t, db, "Clinic")
		testutil.CreateTestInvoice(t, db, clinic.ID, tc.amount, domain.PaymentStatusPending, time.Now().AddDate(0, 1, 0))

		snapshot := svc.Classify(ctx, clinic.ID)
		assert.Equal(t, tc.tier, snapshot.Tier, "amount %.2f", tc.amount)
	}
}

func TestDebtClassify_FailsOpenWhenInvoicesUnavailable(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newDebtService(db)
	ctx := context.Background()

	clinic := testutil.CreateTestClinic(t, db, "Clinic")
	testutil.CreateTestInvoice(t, db, clinic.ID, 8000, domain.PaymentStatusPending, time.Now().AddDate(0, 1, 0))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	snapshot := svc.Classify(ctx, clinic.ID)

	assert.True(t, snapshot.Unavailable)
	assert.Equal(t, domain.DebtTierClear, snapshot.Tier)
	assert.Equal(t, 0.0, snapshot.OutstandingAmount)
	assert.Equal(t, 0, snapshot.InvoiceCount)
}

func TestDebtCheckStatus(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newDebtService(db)
	ctx := context.Background()

	rep := testutil.CreateTestUser(t, db, "Rep", domain.RoleMedicalRep)
	manager := testutil.CreateTestUser(t, db, "LM", domain.RoleLineManager)
	clinic := testutil.CreateTestClinic(t, db, "Clinic")
	testutil.CreateTestInvoice(t, db, clinic.ID, 2500, domain.PaymentStatusPending, time.Now().AddDate(0, 1, 0))

	resp, err := svc.CheckStatus(ctx, actorFor(rep), clinic.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.DebtTierWarning, resp.Snapshot.Tier)
	assert.True(t, resp.CanOrder)
	assert.True(t, resp.RequiresWarning)
	assert.Equal(t, domain.OrderColorRed, resp.ColorClassification)
	assert.NotEmpty(t, resp.Message)
	assert.NotEmpty(t, resp.MessageAr)

	// only field reps may query clinic debt status
	_, err = svc.CheckStatus(ctx, actorFor(manager), clinic.ID)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestDebtCheckStatus_BlockedClinicCannotOrder(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	svc := newDebtService(db)
	ctx := context.Background()

	rep := testutil.CreateTestUser(t, db, "Rep", domain.RoleKeyAccount)
	clinic := testutil.CreateTestClinic(t, db, "Clinic")
	testutil.CreateTestInvoice(t, db, clinic.ID, 7000, domain.PaymentStatusOverdue, time.Now().AddDate(0, -2, 0))

	resp, err := svc.CheckStatus(ctx, actorFor(rep), clinic.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.DebtTierBlocked, resp.Snapshot.Tier)
	assert.False(t, resp.CanOrder)
	assert.True(t, resp.RequiresWarning)
}
