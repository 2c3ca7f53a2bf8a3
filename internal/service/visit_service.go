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

// VisitService creates and queries field visits, materializing the
// 1/2/3-participant model from the optional manager and other-participant
// references on the request.
type VisitService struct {
	visitRepo  *repository.VisitRepository
	clinicRepo *repository.ClinicRepository
	userRepo   *repository.UserRepository
	logger     *zap.Logger
}

func NewVisitService(
	visitRepo *repository.VisitRepository,
	clinicRepo *repository.ClinicRepository,
	userRepo *repository.UserRepository,
	logger *zap.Logger,
) *VisitService {
	return &VisitService{
		visitRepo:  visitRepo,
		clinicRepo: clinicRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

// Create persists a new visit. Restricted to field reps.
//
// The visit type is stored as supplied and not cross-checked against the
// resolved participant count; a SOLO visit can carry a resolved manager.
// Product has been asked to clarify whether that mismatch should reject.
func (s *VisitService) Create(ctx context.Context, actor *auth.ActorContext, req *domain.CreateVisitRequest) (*domain.Visit, error) {
	if !actor.HasAnyRole(domain.RoleMedicalRep, domain.RoleKeyAccount) {
		return nil, ErrPermissionDenied
	}

	if !req.VisitType.IsValid() {
		return nil, ErrInvalidVisitType
	}

	if _, err := s.clinicRepo.GetByID(ctx, req.ClinicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClinicNotFound
		}
		return nil, err
	}

	visit := &domain.Visit{
		RequestedByID: actor.UserID,
		DoctorID:      req.DoctorID,
		ClinicID:      req.ClinicID,
		VisitDate:     req.VisitDate,
		VisitType:     req.VisitType,
		Status:        domain.VisitStatusPending,
		Notes:         req.Notes,
	}

	s.resolveParticipants(ctx, actor, req, visit)

	if err := s.visitRepo.Create(ctx, visit); err != nil {
		return nil, err
	}

	s.logger.Info("visit created",
		zap.String("visit_id", visit.ID.String()),
		zap.String("clinic_id", visit.ClinicID.String()),
		zap.String("requested_by", actor.UserID.String()),
		zap.String("visit_type", string(visit.VisitType)),
		zap.Int("participants_count", visit.ParticipantsCount),
	)

	return visit, nil
}

// resolveParticipants seeds the participant list with the requester and
// appends the accompanying manager and other participant when their ids
// resolve to existing users. Unresolvable ids are silently skipped and do
// not increment the count.
func (s *VisitService) resolveParticipants(ctx context.Context, actor *auth.ActorContext, req *domain.CreateVisitRequest, visit *domain.Visit) {
	details := domain.ParticipantDetails{{
		UserID: actor.UserID,
		Name:   actor.Name,
		Role:   actor.Role,
	}}

	if req.AccompanyingManagerID != nil {
		if manager := s.lookupParticipant(ctx, *req.AccompanyingManagerID); manager != nil {
			visit.AccompanyingManagerID = &manager.ID
			visit.AccompanyingManagerName = manager.Name
			role := manager.Role
			visit.AccompanyingManagerRole = &role
			details = append(details, domain.ParticipantDetail{
				UserID: manager.ID,
				Name:   manager.Name,
				Role:   manager.Role,
			})
		}
	}

	if req.OtherParticipantID != nil {
		if other := s.lookupParticipant(ctx, *req.OtherParticipantID); other != nil {
			visit.OtherParticipantID = &other.ID
			visit.OtherParticipantName = other.Name
			role := other.Role
			visit.OtherParticipantRole = &role
			details = append(details, domain.ParticipantDetail{
				UserID: other.ID,
				Name:   other.Name,
				Role:   other.Role,
			})
		}
	}

	visit.ParticipantsDetails = details
	visit.ParticipantsCount = len(details)
}

func (s *VisitService) lookupParticipant(ctx context.Context, id uuid.UUID) *domain.User {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Debug("skipping unresolvable visit participant",
			zap.String("user_id", id.String()),
			zap.Error(err),
		)
		return nil
	}
	return user
}

// GetByID returns a visit. Field reps only see their own visits.
func (s *VisitService) GetByID(ctx context.Context, actor *auth.ActorContext, id uuid.UUID) (*domain.Visit, error) {
	visit, err := s.visitRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if actor.HasAnyRole(domain.RoleMedicalRep, domain.RoleKeyAccount) && visit.RequestedByID != actor.UserID {
		return nil, ErrPermissionDenied
	}

	return visit, nil
}

// List returns visits visible to the actor. Field reps are scoped to their
// own visits regardless of the requested filter.
func (s *VisitService) List(ctx context.Context, actor *auth.ActorContext, page, pageSize int, filter repository.VisitFilter) ([]domain.Visit, int64, error) {
	if actor.HasAnyRole(domain.RoleMedicalRep, domain.RoleKeyAccount) {
		own := actor.UserID
		filter.RequestedByID = &own
	}
	return s.visitRepo.List(ctx, page, pageSize, filter)
}

// Review sets the review status of a visit. Restricted to the management
// chain; pending is not a valid review outcome.
func (s *VisitService) Review(ctx context.Context, actor *auth.ActorContext, id uuid.UUID, status domain.VisitStatus) (*domain.Visit, error) {
	if !actor.IsManagerial() {
		return nil, ErrPermissionDenied
	}
	if status != domain.VisitStatusApproved && status != domain.VisitStatusRejected {
		return nil, ErrInvalidInput
	}

	visit, err := s.visitRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	visit.Status = status
	if err := s.visitRepo.Update(ctx, visit); err != nil {
		return nil, err
	}

	return visit, nil
}
