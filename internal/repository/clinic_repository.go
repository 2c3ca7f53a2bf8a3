package repository

import (
	"context"
	"strings"

	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClinicRepository struct {
	db *gorm.DB
}

func NewClinicRepository(db *gorm.DB) *ClinicRepository {
	return &ClinicRepository{db: db}
}

func (r *ClinicRepository) Create(ctx context.Context, clinic *domain.Clinic) error {
	return r.db.WithContext(ctx).Create(clinic).Error
}

func (r *ClinicRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Clinic, error) {
	var clinic domain.Clinic
	err := r.db.WithContext(ctx).First(&clinic, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &clinic, nil
}

// GetByERPCode looks a clinic up by its accounting ERP customer code
func (r *ClinicRepository) GetByERPCode(ctx context.Context, erpCode string) (*domain.Clinic, error) {
	var clinic domain.Clinic
	err := r.db.WithContext(ctx).First(&clinic, "erp_code = ?", erpCode).Error
	if err != nil {
		return nil, err
	}
	return &clinic, nil
}

func (r *ClinicRepository) Update(ctx context.Context, clinic *domain.Clinic) error {
	return r.db.WithContext(ctx).Save(clinic).Error
}

func (r *ClinicRepository) List(ctx context.Context, page, pageSize int, search, areaID string) ([]domain.Clinic, int64, error) {
	var clinics []domain.Clinic
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Clinic{})

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(city) LIKE ?", searchPattern, searchPattern)
	}
	if areaID != "" {
		query = query.Scopes(InArea(areaID))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(page, pageSize)).Order("name ASC").Find(&clinics).Error
	return clinics, total, err
}

// CountInArea counts active clinics within an area, used for profile stats
func (r *ClinicRepository) CountInArea(ctx context.Context, areaID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Clinic{}).
		Scopes(ActiveOnly, InArea(areaID)).
		Count(&count).Error
	return int(count), err
}
