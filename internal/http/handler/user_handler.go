package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/fieldmed/fieldsales-api/internal/auth"
	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/fieldmed/fieldsales-api/internal/mapper"
	"github.com/fieldmed/fieldsales-api/internal/service"
)

type UserHandler struct {
	userService    *service.UserService
	profileService *service.ProfileService
	logger         *zap.Logger
}

func NewUserHandler(userService *service.UserService, profileService *service.ProfileService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService:    userService,
		profileService: profileService,
		logger:         logger,
	}
}

// Create godoc
// @Summary Create user
// @Description Provision a new user account. The caller's role must outrank the assigned role.
// @Tags Users
// @Accept json
// @Produce json
// @Param request body domain.CreateUserRequest true "User to create"
// @Success 201 {object} domain.UserDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /users [post]
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustFromContext(r.Context())

	var req domain.CreateUserRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	user, err := h.userService.Create(r.Context(), actor, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, mapper.ToUserDTO(user))
}

// List godoc
// @Summary List users
// @Description Get paginated list of users. Restricted to managerial roles and accounting.
// @Tags Users
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by name or email"
// @Param role query string false "Filter by role"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.UserDTO}
// @Failure 403 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustFromContext(r.Context())
	page, pageSize := parsePagination(r)

	var role *domain.Role
	if raw := r.URL.Query().Get("role"); raw != "" {
		normalized := domain.NormalizeLegacyRole(domain.Role(raw))
		if !normalized.IsValid() {
			respondError(w, http.StatusBadRequest, "Invalid role filter")
			return
		}
		role = &normalized
	}

	users, total, err := h.userService.List(r.Context(), actor, page, pageSize, r.URL.Query().Get("search"), role)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	dtos := make([]domain.UserDTO, len(users))
	for i := range users {
		dtos[i] = mapper.ToUserDTO(&users[i])
	}
	respondJSON(w, http.StatusOK, paginated(dtos, page, pageSize, total))
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns a user's profile when the access rules grant it. Every granted read is recorded.
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} domain.ProfileDTO
// @Failure 403 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /users/{id}/profile [get]
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustFromContext(r.Context())

	targetID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.profileService.GetProfile(r.Context(), actor, targetID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// UpdateOrganization godoc
// @Summary Update user organization
// @Description Change a user's role, manager, product line or area. Only non-null fields are applied.
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body domain.UpdateUserOrgRequest true "Fields to update"
// @Success 200 {object} domain.UserDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /users/{id}/organization [put]
func (h *UserHandler) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustFromContext(r.Context())

	userID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req domain.UpdateUserOrgRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	user, err := h.userService.UpdateOrganization(r.Context(), actor, userID, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToUserDTO(user))
}

// Deactivate godoc
// @Summary Deactivate user
// @Description Deactivate a user account. Accounts are never deleted.
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 204
// @Failure 403 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /users/{id} [delete]
func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustFromContext(r.Context())

	userID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.userService.Deactivate(r.Context(), actor, userID); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DirectReports godoc
// @Summary List direct reports
// @Description Returns the caller's active direct reports
// @Tags Users
// @Produce json
// @Success 200 {array} domain.UserDTO
// @Security BearerAuth
// @Router /users/me/reports [get]
func (h *UserHandler) DirectReports(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustFromContext(r.Context())

	reports, err := h.userService.ListDirectReports(r.Context(), actor)
	if err != nil {
		h.logger.Error("failed to list direct reports", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	dtos := make([]domain.UserDTO, len(reports))
	for i := range reports {
		dtos[i] = mapper.ToUserDTO(&reports[i])
	}
	respondJSON(w, http.StatusOK, dtos)
}

// profileAccessEntry is the listing shape of a recorded profile read
type profileAccessEntry struct {
	AccessedBy     string `json:"accessedBy"`
	AccessedByRole string `json:"accessedByRole"`
	Reason         string `json:"reason"`
	AccessTime     string `json:"accessTime"`
}

// AccessHistory godoc
// @Summary List profile access history
// @Description Returns who accessed a user's profile and why. Admins and the user themselves only.
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Success 200 {object} domain.PaginatedResponse{data=[]handler.profileAccessEntry}
// @Failure 403 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /users/{id}/access-history [get]
func (h *UserHandler) AccessHistory(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustFromContext(r.Context())

	targetID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, pageSize := parsePagination(r)
	logs, total, err := h.profileService.ListAccessHistory(r.Context(), actor, targetID, page, pageSize)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	entries := make([]profileAccessEntry, len(logs))
	for i, l := range logs {
		entries[i] = profileAccessEntry{
			AccessedBy:     l.AccessedBy.String(),
			AccessedByRole: string(l.AccessedByRole),
			Reason:         l.AccessReason,
			AccessTime:     l.AccessTime.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}
	respondJSON(w, http.StatusOK, paginated(entries, page, pageSize, total))
}
