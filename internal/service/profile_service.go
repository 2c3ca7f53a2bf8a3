package service

import (
	"context"
	"errors"
	"time"

	"github.com/fieldmed/fieldsales-api/internal/auth"
	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/fieldmed/fieldsales-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Access reasons stamped onto the profile access audit
const (
	accessReasonAdmin          = "admin"
	accessReasonGM             = "general_manager"
	accessReasonSelf           = "self_view"
	accessReasonDirectReport   = "direct_report"
	accessReasonSameLine       = "line_manager_same_line"
	accessReasonSameArea       = "area_manager_same_area"
	accessReasonAccountingView = "accounting_field_role"
)

// ProfileService decides whether an actor may view a target user's profile
// and assembles the profile payload with its aggregates and access stamp.
type ProfileService struct {
	userRepo      *repository.UserRepository
	visitRepo     *repository.VisitRepository
	orderRepo     *repository.OrderRepository
	clinicRepo    *repository.ClinicRepository
	accessLogRepo *repository.AccessLogRepository
	hierarchy     *domain.RoleHierarchy
	logger        *zap.Logger
}

func NewProfileService(
	userRepo *repository.UserRepository,
	visitRepo *repository.VisitRepository,
	orderRepo *repository.OrderRepository,
	clinicRepo *repository.ClinicRepository,
	accessLogRepo *repository.AccessLogRepository,
	hierarchy *domain.RoleHierarchy,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		userRepo:      userRepo,
		visitRepo:     visitRepo,
		orderRepo:     orderRepo,
		clinicRepo:    clinicRepo,
		accessLogRepo: accessLogRepo,
		hierarchy:     hierarchy,
		logger:        logger,
	}
}

// resolveAccess evaluates the profile access rules in order; the first
// matching rule decides and evaluation stops there. No rule matching means
// deny. The returned reason names the rule that granted access and is
// stamped onto the audit record.
//
// The admin, gm and self rules match before the target record is fetched,
// but a nonexistent target still denies for every rule.
func (s *ProfileService) resolveAccess(ctx context.Context, actor *auth.ActorContext, targetUserID uuid.UUID) (*domain.User, string, error) {
	// Rules 1-2: admin and gm see everyone
	headlessReason := ""
	switch actor.Role {
	case domain.RoleAdmin:
		headlessReason = accessReasonAdmin
	case domain.RoleGM:
		headlessReason = accessReasonGM
	}

	// Rule 3: self-view, permitted only for mid and upper roles.
	// medical_rep, warehouse_keeper and accounting self-views go through a
	// narrower channel (the /auth/me endpoint), not this resolver.
	if headlessReason == "" && actor.UserID == targetUserID &&
		actor.HasAnyRole(domain.RoleLineManager, domain.RoleAreaManager, domain.RoleDistrictManager, domain.RoleKeyAccount) {
		headlessReason = accessReasonSelf
	}

	// Rule 4: from here on the target record is required; a missing target
	// always denies, even for rules that would otherwise match.
	target, err := s.userRepo.GetByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", err
	}

	if headlessReason != "" {
		return target, headlessReason, nil
	}

	// Rule 5: direct report, independent of role
	if target.ManagedBy != nil && *target.ManagedBy == actor.UserID {
		return target, accessReasonDirectReport, nil
	}

	// Rule 6: line managers see their own product line
	if actor.Role == domain.RoleLineManager && target.Line != nil && actor.Line != nil && *target.Line == *actor.Line {
		return target, accessReasonSameLine, nil
	}

	// Rule 7: area managers see their own area
	if actor.Role == domain.RoleAreaManager && target.AreaID != nil && actor.AreaID != nil && *target.AreaID == *actor.AreaID {
		return target, accessReasonSameArea, nil
	}

	// Rule 8: accounting sees field roles for debt follow-up
	if actor.Role == domain.RoleAccounting &&
		(target.Role == domain.RoleMedicalRep || target.Role == domain.RoleKeyAccount) {
		return target, accessReasonAccountingView, nil
	}

	// Rule 9: deny by default
	return nil, "", ErrPermissionDenied
}

// CanAccessProfile reports whether the actor may view the target's profile
func (s *ProfileService) CanAccessProfile(ctx context.Context, actor *auth.ActorContext, targetUserID uuid.UUID) (bool, error) {
	_, _, err := s.resolveAccess(ctx, actor, targetUserID)
	if err != nil {
		if errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetProfile returns the target user's profile if the actor is allowed to
// see it. On every granted access an audit stamp is written synchronously
// as part of the same response and echoed in the payload.
func (s *ProfileService) GetProfile(ctx context.Context, actor *auth.ActorContext, targetUserID uuid.UUID) (*domain.ProfileDTO, error) {
	target, reason, err := s.resolveAccess(ctx, actor, targetUserID)
	if err != nil {
		return nil, err
	}

	accessTime := time.Now().UTC()
	accessLog := &domain.ProfileAccessLog{
		AccessedUserID: target.ID,
		AccessedBy:     actor.UserID,
		AccessedByRole: actor.Role,
		AccessReason:   reason,
		AccessTime:     accessTime,
	}
	if err := s.accessLogRepo.Create(ctx, accessLog); err != nil {
		return nil, err
	}

	stats, err := s.collectStats(ctx, target)
	if err != nil {
		return nil, err
	}

	profile := &domain.ProfileDTO{
		UserDTO: domain.UserDTO{
			ID:        target.ID,
			Name:      target.Name,
			Email:     target.Email,
			Phone:     target.Phone,
			Role:      target.Role,
			ManagedBy: target.ManagedBy,
			Line:      target.Line,
			AreaID:    target.AreaID,
			IsActive:  target.IsActive,
			CreatedAt: target.CreatedAt.Format(time.RFC3339),
		},
		Stats: stats,
		AccessAudit: &domain.AccessAuditDTO{
			AccessedBy: actor.UserID,
			AccessTime: accessTime,
			Reason:     reason,
		},
	}

	s.logger.Info("profile accessed",
		zap.String("target_user_id", target.ID.String()),
		zap.String("accessed_by", actor.UserID.String()),
		zap.String("reason", reason),
	)

	return profile, nil
}

// collectStats assembles the aggregate counts shown on a profile
func (s *ProfileService) collectStats(ctx context.Context, target *domain.User) (*domain.ProfileStatsDTO, error) {
	visitCount, err := s.visitRepo.CountByRequester(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	orderCount, err := s.orderRepo.CountByCreator(ctx, target.ID)
	if err != nil {
		return nil, err
	}

	assignedClinics := 0
	if target.AreaID != nil && *target.AreaID != "" {
		assignedClinics, err = s.clinicRepo.CountInArea(ctx, *target.AreaID)
		if err != nil {
			return nil, err
		}
	}

	directReports := 0
	if target.Role.IsManagerial() {
		directReports, err = s.userRepo.CountDirectReports(ctx, target.ID)
		if err != nil {
			return nil, err
		}
	}

	return &domain.ProfileStatsDTO{
		VisitCount:      visitCount,
		OrderCount:      orderCount,
		AssignedClinics: assignedClinics,
		DirectReports:   directReports,
	}, nil
}

// ListAccessHistory returns the access stamps recorded for a profile.
// Restricted to admins and the profile owner.
func (s *ProfileService) ListAccessHistory(ctx context.Context, actor *auth.ActorContext, targetUserID uuid.UUID, page, pageSize int) ([]domain.ProfileAccessLog, int64, error) {
	if !actor.IsAdmin() && actor.UserID != targetUserID {
		return nil, 0, ErrPermissionDenied
	}
	return s.accessLogRepo.ListFor(ctx, targetUserID, page, pageSize)
}
