package repository

import (
	"context"

	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccessLogRepository struct {
	db *gorm.DB
}

func NewAccessLogRepository(db *gorm.DB) *AccessLogRepository {
	return &AccessLogRepository{db: db}
}

func (r *AccessLogRepository) Create(ctx context.Context, log *domain.ProfileAccessLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// GetLatestFor returns the most recent access stamp for a profile, or
// gorm.ErrRecordNotFound when the profile has never been read.
func (r *AccessLogRepository) GetLatestFor(ctx context.Context, accessedUserID uuid.UUID) (*domain.ProfileAccessLog, error) {
	var log domain.ProfileAccessLog
	err := r.db.WithContext(ctx).
		Where("accessed_user_id = ?", accessedUserID).
		Order("access_time DESC").
		First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *AccessLogRepository) ListFor(ctx context.Context, accessedUserID uuid.UUID, page, pageSize int) ([]domain.ProfileAccessLog, int64, error) {
	var logs []domain.ProfileAccessLog
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.ProfileAccessLog{}).
		Where("accessed_user_id = ?", accessedUserID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(page, pageSize)).Order("access_time DESC").Find(&logs).Error
	return logs, total, err
}
