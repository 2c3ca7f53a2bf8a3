package repository

import (
	"context"

	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VisitRepository struct {
	db *gorm.DB
}

func NewVisitRepository(db *gorm.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

func (r *VisitRepository) Create(ctx context.Context, visit *domain.Visit) error {
	return r.db.WithContext(ctx).Create(visit).Error
}

func (r *VisitRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Visit, error) {
	var visit domain.Visit
	err := r.db.WithContext(ctx).
		Preload("Clinic").
		Preload("Attachments").
		First(&visit, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &visit, nil
}

func (r *VisitRepository) Update(ctx context.Context, visit *domain.Visit) error {
	return r.db.WithContext(ctx).Save(visit).Error
}

type VisitFilter struct {
	RequestedByID *uuid.UUID
	ClinicID      *uuid.UUID
	Status        *domain.VisitStatus
	VisitType     *domain.VisitType
}

func (r *VisitRepository) List(ctx context.Context, page, pageSize int, filter VisitFilter) ([]domain.Visit, int64, error) {
	var visits []domain.Visit
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Visit{})

	if filter.RequestedByID != nil {
		query = query.Where("requested_by_id = ?", *filter.RequestedByID)
	}
	if filter.ClinicID != nil {
		query = query.Where("clinic_id = ?", *filter.ClinicID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.VisitType != nil {
		query = query.Where("visit_type = ?", *filter.VisitType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Clinic").
		Scopes(Paginate(page, pageSize)).
		Order("visit_date DESC").
		Find(&visits).Error

	return visits, total, err
}

// CountByRequester counts visits requested by a user, used for profile stats
func (r *VisitRepository) CountByRequester(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Visit{}).
		Where("requested_by_id = ?", userID).
		Count(&count).Error
	return int(count), err
}
