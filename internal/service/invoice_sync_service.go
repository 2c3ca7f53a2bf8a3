package service

import (
	"context"
	"errors"
	"time"

	"github.com/fieldmed/fieldsales-api/internal/accounting"
	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/fieldmed/fieldsales-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InvoiceSyncService pulls unsettled invoices from the accounting ERP into
// the main database. It implements jobs.InvoiceSyncer.
type InvoiceSyncService struct {
	erpClient   *accounting.Client
	invoiceRepo *repository.InvoiceRepository
	clinicRepo  *repository.ClinicRepository
	logger      *zap.Logger
}

func NewInvoiceSyncService(
	erpClient *accounting.Client,
	invoiceRepo *repository.InvoiceRepository,
	clinicRepo *repository.ClinicRepository,
	logger *zap.Logger,
) *InvoiceSyncService {
	return &InvoiceSyncService{
		erpClient:   erpClient,
		invoiceRepo: invoiceRepo,
		clinicRepo:  clinicRepo,
		logger:      logger,
	}
}

// SyncInvoicesFromERP upserts every unsettled ERP invoice whose customer
// code maps to a known clinic. Rows for unknown clinics are skipped and
// counted, not failed; a single bad row never aborts the run.
func (s *InvoiceSyncService) SyncInvoicesFromERP(ctx context.Context) (synced int, skipped int, failed int, err error) {
	if !s.erpClient.IsEnabled() {
		s.logger.Debug("invoice sync skipped, accounting ERP not connected")
		return 0, 0, 0, nil
	}

	erpInvoices, err := s.erpClient.FetchUnsettledInvoices(ctx)
	if err != nil {
		return 0, 0, 0, err
	}

	for _, erpInv := range erpInvoices {
		clinic, lookupErr := s.clinicRepo.GetByERPCode(ctx, erpInv.ClinicERPCode)
		if lookupErr != nil {
			if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
				s.logger.Debug("skipping ERP invoice for unknown clinic",
					zap.String("erp_reference", erpInv.Reference),
					zap.String("clinic_erp_code", erpInv.ClinicERPCode),
				)
				skipped++
				continue
			}
			failed++
			continue
		}

		status := domain.PaymentStatus(erpInv.PaymentStatus)
		if !status.IsUnsettled() && status != domain.PaymentStatusPaid {
			s.logger.Warn("skipping ERP invoice with unknown payment status",
				zap.String("erp_reference", erpInv.Reference),
				zap.String("payment_status", erpInv.PaymentStatus),
			)
			skipped++
			continue
		}

		invoice := &domain.Invoice{
			ClinicID:          clinic.ID,
			InvoiceNumber:     erpInv.InvoiceNumber,
			TotalAmount:       erpInv.TotalAmount,
			OutstandingAmount: erpInv.OutstandingAmt,
			PaymentStatus:     status,
			DueDate:           erpInv.DueDate,
			ERPReference:      erpInv.Reference,
		}

		if upsertErr := s.invoiceRepo.UpsertFromSync(ctx, invoice); upsertErr != nil {
			s.logger.Error("failed to upsert synced invoice",
				zap.String("erp_reference", erpInv.Reference),
				zap.Error(upsertErr),
			)
			failed++
			continue
		}
		synced++
	}

	return synced, skipped, failed, nil
}

// MarkOverdueInvoices flips pending invoices past their due date to overdue
func (s *InvoiceSyncService) MarkOverdueInvoices(ctx context.Context) (int64, error) {
	return s.invoiceRepo.MarkOverdue(ctx, time.Now().UTC())
}
