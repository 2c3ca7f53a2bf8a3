package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldmed/fieldsales-api/internal/auth"
	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/fieldmed/fieldsales-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DebtService aggregates a clinic's unsettled invoices into a point-in-time
// snapshot and classifies it into a tier. The snapshot is recomputed on
// every evaluation and never cached.
type DebtService struct {
	invoiceRepo *repository.InvoiceRepository
	clinicRepo  *repository.ClinicRepository
	logger      *zap.Logger
}

func NewDebtService(invoiceRepo *repository.InvoiceRepository, clinicRepo *repository.ClinicRepository, logger *zap.Logger) *DebtService {
	return &DebtService{
		invoiceRepo: invoiceRepo,
		clinicRepo:  clinicRepo,
		logger:      logger,
	}
}

// Classify computes the clinic's debt snapshot from its unsettled invoices.
//
// Any failure reading invoices degrades to a clear snapshot with zero
// amounts and Unavailable set, rather than failing the caller. Order
// placement stays available when the invoice data is not; the Unavailable
// flag keeps the degradation visible to clients and tests.
func (s *DebtService) Classify(ctx context.Context, clinicID uuid.UUID) *domain.DebtSnapshot {
	now := time.Now().UTC()

	invoices, err := s.invoiceRepo.ListUnsettledByClinic(ctx, clinicID)
	if err != nil {
		s.logger.Warn("debt classification degraded, invoice source unavailable",
			zap.String("clinic_id", clinicID.String()),
			zap.Error(err),
		)
		return &domain.DebtSnapshot{
			ClinicID:    clinicID,
			Tier:        domain.DebtTierClear,
			Unavailable: true,
			ComputedAt:  now,
		}
	}

	snapshot := &domain.DebtSnapshot{
		ClinicID:   clinicID,
		ComputedAt: now,
	}

	for i := range invoices {
		outstanding := invoices[i].Outstanding()
		snapshot.OutstandingAmount += outstanding
		if invoices[i].DueDate.Before(now) {
			snapshot.OverdueAmount += outstanding
		}
		snapshot.InvoiceCount++
	}

	snapshot.Tier = domain.TierFor(snapshot.OutstandingAmount)
	return snapshot
}

// CheckStatus is the clinic debt status query exposed to field reps.
// Restricted to medical reps and key accounts; other roles get a denial.
func (s *DebtService) CheckStatus(ctx context.Context, actor *auth.ActorContext, clinicID uuid.UUID) (*domain.DebtStatusResponse, error) {
	if !actor.HasAnyRole(domain.RoleMedicalRep, domain.RoleKeyAccount) {
		return nil, ErrPermissionDenied
	}

	if _, err := s.clinicRepo.GetByID(ctx, clinicID); err != nil {
		return nil, ErrClinicNotFound
	}

	snapshot := s.Classify(ctx, clinicID)

	resp := &domain.DebtStatusResponse{
		Snapshot:            *snapshot,
		CanOrder:            snapshot.OutstandingAmount <= domain.DebtBlockedThreshold,
		RequiresWarning:     snapshot.OutstandingAmount > domain.DebtWarningThreshold,
		ColorClassification: domain.ColorFor(snapshot.OutstandingAmount),
	}
	resp.Message, resp.MessageAr = debtAdvisoryMessages(snapshot)

	return resp, nil
}

// debtAdvisoryMessages returns the English and Arabic advisory texts for a
// snapshot. The mobile clients render both.
func debtAdvisoryMessages(snapshot *domain.DebtSnapshot) (string, string) {
	switch snapshot.Tier {
	case domain.DebtTierBlocked:
		return fmt.Sprintf("This clinic has outstanding debt of %.2f which exceeds the blocked threshold. Contact accounting before placing orders.", snapshot.OutstandingAmount),
			fmt.Sprintf("لدى هذه العيادة مديونية قائمة بقيمة %.2f تتجاوز حد الحظر. يرجى التواصل مع قسم الحسابات قبل إنشاء الطلبات.", snapshot.OutstandingAmount)
	case domain.DebtTierWarning:
		return fmt.Sprintf("This clinic has outstanding debt of %.2f. Orders require debt warning acknowledgment.", snapshot.OutstandingAmount),
			fmt.Sprintf("لدى هذه العيادة مديونية قائمة بقيمة %.2f. تتطلب الطلبات الإقرار بتحذير المديونية.", snapshot.OutstandingAmount)
	default:
		if snapshot.Unavailable {
			return "Debt information is currently unavailable. Orders may proceed.",
				"بيانات المديونية غير متاحة حالياً. يمكن متابعة الطلبات."
		}
		return "This clinic has no significant outstanding debt.",
			"لا توجد مديونية قائمة ذات أهمية لدى هذه العيادة."
	}
}
