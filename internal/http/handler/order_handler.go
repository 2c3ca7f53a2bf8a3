package handler

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fieldmed/fieldsales-api/internal/auth"
	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/fieldmed/fieldsales-api/internal/mapper"
	"github.com/fieldmed/fieldsales-api/internal/repository"
	"github.com/fieldmed/fieldsales-api/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
	logger       *zap.Logger
}

func NewOrderHandler(orderService *service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// Create godoc
// @Summary Create order
// @Description Create an order through the debt authorization workflow. When the clinic's
// @Description outstanding debt exceeds the warning threshold and the request does not carry
// @Description debtWarningAcknowledged, a 409 with requireAcknowledgment=true is returned and
// @Description the client may resubmit the same request with the flag set.
// @Tags Orders
// @Accept json
// @Produce json
// @Param request body domain.CreateOrderRequest true "Order to create"
// @Success 201 {object} domain.OrderDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.DebtWarningResponse
// @Security BearerAuth
// @Router /orders [post]
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustFromContext(r.Context())

	var req domain.CreateOrderRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	order, err := h.orderService.Create(r.Context(), actor, &req)
	if err != nil {
		if dw, ok := service.AsDebtWarningRequired(err); ok {
			respondJSON(w, http.StatusConflict, domain.DebtWarningResponse{
				Error:      "debt_warning_required",
				DebtAmount: dw.DebtAmount,
				Message: fmt.Sprintf(
					"This clinic has %.2f in outstanding debt. Acknowledge the warning to proceed with the order.",
					dw.DebtAmount),
				MessageAr: fmt.Sprintf(
					"على هذه العيادة مديونية قائمة بقيمة %.2f. يرجى تأكيد التحذير لمتابعة الطلب.",
					dw.DebtAmount),
				RequireAcknowledgment: true,
			})
			return
		}
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, mapper.ToOrderDTO(order))
}

// Get godoc
// @Summary Get order
// @Description Get an order by ID. Field roles can only read their own orders.
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.OrderDTO
// @Failure 403 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /orders/{id} [get]
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustFromContext(r.Context())

	orderID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orderService.GetByID(r.Context(), actor, orderID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToOrderDTO(order))
}

// List godoc
// @Summary List orders
// @Description Get paginated list of orders. Field roles see only their own orders.
// @Tags Orders
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param clinicId query string false "Filter by clinic"
// @Param debtStatus query string false "Filter by debt tier" Enums(clear, warning, blocked)
// @Param orderColor query string false "Filter by color classification" Enums(green, red)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.OrderDTO}
// @Security BearerAuth
// @Router /orders [get]
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustFromContext(r.Context())
	page, pageSize := parsePagination(r)

	var filter repository.OrderFilter
	if raw := r.URL.Query().Get("clinicId"); raw != "" {
		clinicID, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid clinicId filter")
			return
		}
		filter.ClinicID = &clinicID
	}
	if raw := r.URL.Query().Get("debtStatus"); raw != "" {
		tier := domain.DebtTier(raw)
		filter.DebtStatus = &tier
	}
	if raw := r.URL.Query().Get("orderColor"); raw != "" {
		color := domain.OrderColor(raw)
		filter.OrderColor = &color
	}

	orders, total, err := h.orderService.List(r.Context(), actor, page, pageSize, filter)
	if err != nil {
		h.logger.Error("failed to list orders", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	dtos := make([]domain.OrderDTO, len(orders))
	for i := range orders {
		dtos[i] = mapper.ToOrderDTO(&orders[i])
	}
	respondJSON(w, http.StatusOK, paginated(dtos, page, pageSize, total))
}
