package repository

import (
	"context"
	"strings"

	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID retrieves a user and normalizes any legacy role alias on read
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	user.Role = domain.NormalizeLegacyRole(user.Role)
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	user.Role = domain.NormalizeLegacyRole(user.Role)
	return &user, nil
}

// GetByIDs retrieves the users matching the given ids. Missing ids are
// silently absent from the result; callers decide whether that matters.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error) {
	var users []domain.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Role = domain.NormalizeLegacyRole(users[i].Role)
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// Deactivate marks a user inactive instead of deleting the row
func (r *UserRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("is_active", false).Error
}

func (r *UserRepository) List(ctx context.Context, page, pageSize int, search string, role *domain.Role) ([]domain.User, int64, error) {
	var users []domain.User
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.User{})

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", searchPattern, searchPattern)
	}
	if role != nil {
		query = query.Where("role = ?", *role)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(page, pageSize)).Order("created_at DESC").Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	for i := range users {
		users[i].Role = domain.NormalizeLegacyRole(users[i].Role)
	}
	return users, total, nil
}

// ListDirectReports returns the active users managed by the given user
func (r *UserRepository) ListDirectReports(ctx context.Context, managerID uuid.UUID) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).
		Scopes(ActiveOnly).
		Where("managed_by = ?", managerID).
		Order("name ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Role = domain.NormalizeLegacyRole(users[i].Role)
	}
	return users, nil
}

func (r *UserRepository) CountDirectReports(ctx context.Context, managerID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("managed_by = ? AND is_active = ?", managerID, true).
		Count(&count).Error
	return int(count), err
}
