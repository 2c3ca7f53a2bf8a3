package service

import (
	"context"
	"errors"

	"github.com/fieldmed/fieldsales-api/internal/auth"
	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/fieldmed/fieldsales-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserService handles user provisioning and lifecycle. Accounts are never
// deleted, only deactivated.
type UserService struct {
	userRepo  *repository.UserRepository
	hierarchy *domain.RoleHierarchy
	logger    *zap.Logger
}

func NewUserService(userRepo *repository.UserRepository, hierarchy *domain.RoleHierarchy, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo:  userRepo,
		hierarchy: hierarchy,
		logger:    logger,
	}
}

// Create provisions a new user account. The actor's role must strictly
// outrank the role being assigned; a manager can never provision a peer.
func (s *UserService) Create(ctx context.Context, actor *auth.ActorContext, req *domain.CreateUserRequest) (*domain.User, error) {
	role := domain.NormalizeLegacyRole(req.Role)
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	if !s.hierarchy.CanManage(actor.Role, role) {
		return nil, ErrPermissionDenied
	}

	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// The managed_by reference is weak: it is stored as given when the
	// manager exists, and a later deactivation of the manager does not
	// cascade to reports.
	if req.ManagedBy != nil {
		manager, err := s.userRepo.GetByID(ctx, *req.ManagedBy)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		if !s.hierarchy.CanManage(manager.Role, role) {
			return nil, ErrInvalidInput
		}
	}

	user := &domain.User{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Role:      role,
		ManagedBy: req.ManagedBy,
		Line:      req.Line,
		AreaID:    req.AreaID,
		IsActive:  true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user provisioned",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
		zap.String("provisioned_by", actor.UserID.String()),
	)

	return user, nil
}

// UpdateOrganization mutates a user's role and organizational tags.
// The actor must outrank both the user's current role and the new one.
func (s *UserService) UpdateOrganization(ctx context.Context, actor *auth.ActorContext, userID uuid.UUID, req *domain.UpdateUserOrgRequest) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !s.hierarchy.CanManage(actor.Role, user.Role) {
		return nil, ErrPermissionDenied
	}

	if req.Role != nil {
		newRole := domain.NormalizeLegacyRole(*req.Role)
		if !newRole.IsValid() {
			return nil, ErrInvalidRole
		}
		if !s.hierarchy.CanManage(actor.Role, newRole) {
			return nil, ErrPermissionDenied
		}
		user.Role = newRole
	}
	if req.ManagedBy != nil {
		user.ManagedBy = req.ManagedBy
	}
	if req.Line != nil {
		user.Line = req.Line
	}
	if req.AreaID != nil {
		user.AreaID = req.AreaID
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Deactivate marks a user inactive. The actor must outrank the target.
func (s *UserService) Deactivate(ctx context.Context, actor *auth.ActorContext, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !s.hierarchy.CanManage(actor.Role, user.Role) {
		return ErrPermissionDenied
	}

	if err := s.userRepo.Deactivate(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("user deactivated",
		zap.String("user_id", userID.String()),
		zap.String("deactivated_by", actor.UserID.String()),
	)

	return nil
}

// GetSelf returns the actor's own account. Every authenticated role may
// read its own record; this does not go through the profile access rules.
func (s *UserService) GetSelf(ctx context.Context, actor *auth.ActorContext) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// List returns users. Restricted to managerial roles and accounting.
func (s *UserService) List(ctx context.Context, actor *auth.ActorContext, page, pageSize int, search string, role *domain.Role) ([]domain.User, int64, error) {
	if !actor.IsManagerial() && actor.Role != domain.RoleAccounting {
		return nil, 0, ErrPermissionDenied
	}
	return s.userRepo.List(ctx, page, pageSize, search, role)
}

// ListDirectReports returns the actor's active direct reports
func (s *UserService) ListDirectReports(ctx context.Context, actor *auth.ActorContext) ([]domain.User, error) {
	return s.userRepo.ListDirectReports(ctx, actor.UserID)
}
