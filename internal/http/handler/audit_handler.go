package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fieldmed/fieldsales-api/internal/auth"
	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/fieldmed/fieldsales-api/internal/mapper"
	"github.com/fieldmed/fieldsales-api/internal/repository"
	"github.com/fieldmed/fieldsales-api/internal/service"
)

type AuditHandler struct {
	auditService *service.AuditLogService
	logger       *zap.Logger
}

func NewAuditHandler(auditService *service.AuditLogService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// List godoc
// @Summary List audit logs
// @Description Get paginated audit trail entries. Admin only.
// @Tags Audit
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param userId query string false "Filter by acting user"
// @Param entityType query string false "Filter by entity type"
// @Param entityId query string false "Filter by entity ID"
// @Param action query string false "Filter by action" Enums(create, update, delete)
// @Param from query string false "Start of time range (RFC 3339)"
// @Param to query string false "End of time range (RFC 3339)"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.AuditLogDTO}
// @Failure 403 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /audit-logs [get]
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustFromContext(r.Context())
	page, pageSize := parsePagination(r)

	var filter repository.AuditLogFilter
	if raw := r.URL.Query().Get("userId"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid userId filter")
			return
		}
		filter.UserID = &userID
	}
	filter.EntityType = r.URL.Query().Get("entityType")
	if raw := r.URL.Query().Get("entityId"); raw != "" {
		entityID, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid entityId filter")
			return
		}
		filter.EntityID = &entityID
	}
	if raw := r.URL.Query().Get("action"); raw != "" {
		action := domain.AuditAction(raw)
		filter.Action = &action
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid from timestamp")
			return
		}
		filter.From = &from
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid to timestamp")
			return
		}
		filter.To = &to
	}

	logs, total, err := h.auditService.List(r.Context(), actor, page, pageSize, filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	dtos := make([]domain.AuditLogDTO, len(logs))
	for i := range logs {
		dtos[i] = mapper.ToAuditLogDTO(&logs[i])
	}
	respondJSON(w, http.StatusOK, paginated(dtos, page, pageSize, total))
}
