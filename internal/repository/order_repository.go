package repository

import (
	"context"

	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists an order together with its line items in one transaction
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Preload("Clinic").
		Preload("Warehouse").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

type OrderFilter struct {
	ClinicID    *uuid.UUID
	CreatedByID *uuid.UUID
	DebtStatus  *domain.DebtTier
	OrderColor  *domain.OrderColor
}

func (r *OrderRepository) List(ctx context.Context, page, pageSize int, filter OrderFilter) ([]domain.Order, int64, error) {
	var orders []domain.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Order{})

	if filter.ClinicID != nil {
		query = query.Where("clinic_id = ?", *filter.ClinicID)
	}
	if filter.CreatedByID != nil {
		query = query.Where("created_by_id = ?", *filter.CreatedByID)
	}
	if filter.DebtStatus != nil {
		query = query.Where("debt_status = ?", *filter.DebtStatus)
	}
	if filter.OrderColor != nil {
		query = query.Where("order_color = ?", *filter.OrderColor)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Items").
		Preload("Clinic").
		Scopes(Paginate(page, pageSize)).
		Order("created_at DESC").
		Find(&orders).Error

	return orders, total, err
}

// CountByCreator counts orders placed by a user, used for profile stats
func (r *OrderRepository) CountByCreator(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("created_by_id = ?", userID).
		Count(&count).Error
	return int(count), err
}
