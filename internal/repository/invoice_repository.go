package repository

import (
	"context"
	"time"

	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.WithContext(ctx).First(&invoice, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// ListUnsettledByClinic returns the clinic's invoices that still carry debt
func (r *InvoiceRepository) ListUnsettledByClinic(ctx context.Context, clinicID uuid.UUID) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := r.db.WithContext(ctx).
		Where("clinic_id = ?", clinicID).
		Where("payment_status IN ?", []domain.PaymentStatus{
			domain.PaymentStatusPending,
			domain.PaymentStatusPartiallyPaid,
			domain.PaymentStatusOverdue,
		}).
		Order("due_date ASC").
		Find(&invoices).Error
	return invoices, err
}

func (r *InvoiceRepository) ListByClinic(ctx context.Context, clinicID uuid.UUID, page, pageSize int) ([]domain.Invoice, int64, error) {
	var invoices []domain.Invoice
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Invoice{}).Where("clinic_id = ?", clinicID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(page, pageSize)).Order("due_date DESC").Find(&invoices).Error
	return invoices, total, err
}

// UpsertFromSync inserts or refreshes an invoice pulled from the accounting
// ERP, keyed by its ERP reference.
func (r *InvoiceRepository) UpsertFromSync(ctx context.Context, invoice *domain.Invoice) error {
	now := time.Now().UTC()
	invoice.SyncedAt = &now

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "erp_reference"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_amount", "outstanding_amount", "payment_status", "due_date", "synced_at", "updated_at",
		}),
	}).Create(invoice).Error
}

// MarkOverdue flips pending invoices past their due date to overdue.
// Returns the number of rows updated.
func (r *InvoiceRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.Invoice{}).
		Where("payment_status = ? AND due_date < ?", domain.PaymentStatusPending, asOf).
		Update("payment_status", domain.PaymentStatusOverdue)
	return result.RowsAffected, result.Error
}
