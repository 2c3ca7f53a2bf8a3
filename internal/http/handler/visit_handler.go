package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fieldmed/fieldsales-api/internal/auth"
	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/fieldmed/fieldsales-api/internal/mapper"
	"github.com/fieldmed/fieldsales-api/internal/repository"
	"github.com/fieldmed/fieldsales-api/internal/service"
)

type VisitHandler struct {
	visitService *service.VisitService
	logger       *zap.Logger
}

func NewVisitHandler(visitService *service.VisitService, logger *zap.Logger) *VisitHandler {
	return &VisitHandler{
		visitService: visitService,
		logger:       logger,
	}
}

// Create godoc
// @Summary Create visit
// @Description Schedule a field visit. Unresolvable accompanying participants are skipped silently.
// @Tags Visits
// @Accept json
// @Produce json
// @Param request body domain.CreateVisitRequest true "Visit to create"
// @Success 201 {object} domain.VisitDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /visits [post]
func (h *VisitHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustFromContext(r.Context())

	var req domain.CreateVisitRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	visit, err := h.visitService.Create(r.Context(), actor, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, mapper.ToVisitDTO(visit))
}

// Get godoc
// @Summary Get visit
// @Description Get a visit by ID. Field roles can only read their own visits.
// @Tags Visits
// @Produce json
// @Param id path string true "Visit ID"
// @Success 200 {object} domain.VisitDTO
// @Failure 403 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /visits/{id} [get]
func (h *VisitHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustFromContext(r.Context())

	visitID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	visit, err := h.visitService.GetByID(r.Context(), actor, visitID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToVisitDTO(visit))
}

// List godoc
// @Summary List visits
// @Description Get paginated list of visits. Field roles see only their own visits.
// @Tags Visits
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param clinicId query string false "Filter by clinic"
// @Param status query string false "Filter by status" Enums(pending, approved, rejected)
// @Param visitType query string false "Filter by visit type" Enums(SOLO, DUO_WITH_MANAGER, THREE_WITH_MANAGER_AND_OTHER)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.VisitDTO}
// @Security BearerAuth
// @Router /visits [get]
func (h *VisitHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustFromContext(r.Context())
	page, pageSize := parsePagination(r)

	var filter repository.VisitFilter
	if raw := r.URL.Query().Get("clinicId"); raw != "" {
		clinicID, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid clinicId filter")
			return
		}
		filter.ClinicID = &clinicID
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.VisitStatus(raw)
		filter.Status = &status
	}
	if raw := r.URL.Query().Get("visitType"); raw != "" {
		visitType := domain.VisitType(raw)
		filter.VisitType = &visitType
	}

	visits, total, err := h.visitService.List(r.Context(), actor, page, pageSize, filter)
	if err != nil {
		h.logger.Error("failed to list visits", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	dtos := make([]domain.VisitDTO, len(visits))
	for i := range visits {
		dtos[i] = mapper.ToVisitDTO(&visits[i])
	}
	respondJSON(w, http.StatusOK, paginated(dtos, page, pageSize, total))
}

type reviewVisitRequest struct {
	Status domain.VisitStatus `json:"status" validate:"required,oneof=approved rejected"`
}

// Review godoc
// @Summary Review visit
// @Description Approve or reject a pending visit. Managerial roles only.
// @Tags Visits
// @Accept json
// @Produce json
// @Param id path string true "Visit ID"
// @Param request body handler.reviewVisitRequest true "Review decision"
// @Success 200 {object} domain.VisitDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /visits/{id}/review [put]
func (h *VisitHandler) Review(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustFromContext(r.Context())

	visitID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req reviewVisitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	visit, err := h.visitService.Review(r.Context(), actor, visitID, req.Status)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToVisitDTO(visit))
}
