package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fieldmed/fieldsales-api/internal/auth"
	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/fieldmed/fieldsales-api/internal/repository"
)

// ClinicService manages the clinic registry.
type ClinicService struct {
	clinicRepo *repository.ClinicRepository
	logger     *zap.Logger
}

func NewClinicService(clinicRepo *repository.ClinicRepository, logger *zap.Logger) *ClinicService {
	return &ClinicService{
		clinicRepo: clinicRepo,
		logger:     logger,
	}
}

// Create registers a new clinic. Restricted to admin and general manager.
func (s *ClinicService) Create(ctx context.Context, actor *auth.ActorContext, req *domain.CreateClinicRequest) (*domain.Clinic, error) {
	if !actor.HasAnyRole(domain.RoleAdmin, domain.RoleGM) {
		return nil, ErrPermissionDenied
	}

	if req.ERPCode != "" {
		_, err := s.clinicRepo.GetByERPCode(ctx, req.ERPCode)
		if err == nil {
			return nil, ErrConflict
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	clinic := &domain.Clinic{
		Name:        req.Name,
		Address:     req.Address,
		City:        req.City,
		AreaID:      req.AreaID,
		Phone:       req.Phone,
		ERPCode:     req.ERPCode,
		Specialties: req.Specialties,
		IsActive:    true,
	}
	if err := s.clinicRepo.Create(ctx, clinic); err != nil {
		return nil, err
	}

	s.logger.Info("clinic created",
		zap.String("clinic_id", clinic.ID.String()),
		zap.String("created_by", actor.UserID.String()))

	return clinic, nil
}

func (s *ClinicService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Clinic, error) {
	clinic, err := s.clinicRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClinicNotFound
		}
		return nil, err
	}
	return clinic, nil
}

// List returns clinics visible to the actor. Area managers are scoped to
// their own area; every other role sees the full registry.
func (s *ClinicService) List(ctx context.Context, actor *auth.ActorContext, page, pageSize int, search string) ([]domain.Clinic, int64, error) {
	areaID := ""
	if actor.Role == domain.RoleAreaManager && actor.AreaID != nil {
		areaID = *actor.AreaID
	}
	return s.clinicRepo.List(ctx, page, pageSize, search, areaID)
}
