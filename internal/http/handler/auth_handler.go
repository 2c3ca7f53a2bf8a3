package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/fieldmed/fieldsales-api/internal/auth"
	"github.com/fieldmed/fieldsales-api/internal/mapper"
	"github.com/fieldmed/fieldsales-api/internal/service"
)

type AuthHandler struct {
	userService *service.UserService
	logger      *zap.Logger
}

func NewAuthHandler(userService *service.UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		logger:      logger,
	}
}

// Me godoc
// @Summary Get current user
// @Description Returns the authenticated user's own account record
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.UserDTO
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.userService.GetSelf(r.Context(), actor)
	if err != nil {
		h.logger.Error("failed to load current user", zap.Error(err), zap.String("user_id", actor.UserID.String()))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToUserDTO(user))
}
