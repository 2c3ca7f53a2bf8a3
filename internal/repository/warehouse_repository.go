package repository

import (
	"context"

	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WarehouseRepository struct {
	db *gorm.DB
}

func NewWarehouseRepository(db *gorm.DB) *WarehouseRepository {
	return &WarehouseRepository{db: db}
}

func (r *WarehouseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Warehouse, error) {
	var warehouse domain.Warehouse
	err := r.db.WithContext(ctx).First(&warehouse, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &warehouse, nil
}

func (r *WarehouseRepository) List(ctx context.Context, areaID string) ([]domain.Warehouse, error) {
	var warehouses []domain.Warehouse
	query := r.db.WithContext(ctx).Scopes(ActiveOnly)
	if areaID != "" {
		query = query.Scopes(InArea(areaID))
	}
	err := query.Order("name ASC").Find(&warehouses).Error
	return warehouses, err
}
