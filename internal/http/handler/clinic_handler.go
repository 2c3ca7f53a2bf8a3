package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/fieldmed/fieldsales-api/internal/auth"
	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/fieldmed/fieldsales-api/internal/mapper"
	"github.com/fieldmed/fieldsales-api/internal/service"
)

type ClinicHandler struct {
	clinicService *service.ClinicService
	debtService   *service.DebtService
	logger        *zap.Logger
}

func NewClinicHandler(clinicService *service.ClinicService, debtService *service.DebtService, logger *zap.Logger) *ClinicHandler {
	return &ClinicHandler{
		clinicService: clinicService,
		debtService:   debtService,
		logger:        logger,
	}
}

// Create godoc
// @Summary Create clinic
// @Description Register a new clinic. Admin and general manager only.
// @Tags Clinics
// @Accept json
// @Produce json
// @Param request body domain.CreateClinicRequest true "Clinic to create"
// @Success 201 {object} domain.ClinicDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /clinics [post]
func (h *ClinicHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustFromContext(r.Context())

	var req domain.CreateClinicRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	clinic, err := h.clinicService.Create(r.Context(), actor, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, mapper.ToClinicDTO(clinic))
}

// List godoc
// @Summary List clinics
// @Description Get paginated list of clinics. Area managers see only their own area.
// @Tags Clinics
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by name or city"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ClinicDTO}
// @Security BearerAuth
// @Router /clinics [get]
func (h *ClinicHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustFromContext(r.Context())
	page, pageSize := parsePagination(r)

	clinics, total, err := h.clinicService.List(r.Context(), actor, page, pageSize, r.URL.Query().Get("search"))
	if err != nil {
		h.logger.Error("failed to list clinics", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	dtos := make([]domain.ClinicDTO, len(clinics))
	for i := range clinics {
		dtos[i] = mapper.ToClinicDTO(&clinics[i])
	}
	respondJSON(w, http.StatusOK, paginated(dtos, page, pageSize, total))
}

// Get godoc
// @Summary Get clinic
// @Tags Clinics
// @Produce json
// @Param id path string true "Clinic ID"
// @Success 200 {object} domain.ClinicDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /clinics/{id} [get]
func (h *ClinicHandler) Get(w http.ResponseWriter, r *http.Request) {
	clinicID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	clinic, err := h.clinicService.GetByID(r.Context(), clinicID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToClinicDTO(clinic))
}

// DebtStatus godoc
// @Summary Get clinic debt status
// @Description Returns the clinic's current debt classification and ordering advisory. Field roles only.
// @Tags Clinics
// @Produce json
// @Param id path string true "Clinic ID"
// @Success 200 {object} domain.DebtStatusResponse
// @Failure 403 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /clinics/{id}/debt-status [get]
func (h *ClinicHandler) DebtStatus(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustFromContext(r.Context())

	clinicID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	status, err := h.debtService.CheckStatus(r.Context(), actor, clinicID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, status)
}
