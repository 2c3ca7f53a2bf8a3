package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/fieldmed/fieldsales-api/internal/auth"
	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/fieldmed/fieldsales-api/internal/mapper"
	"github.com/fieldmed/fieldsales-api/internal/service"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
	logger         *zap.Logger
}

func NewCatalogHandler(catalogService *service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// ListProducts godoc
// @Summary List products
// @Description Get paginated list of active products. Medical reps see only their product line.
// @Tags Catalog
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param line query string false "Filter by product line" Enums(cardio, cns, gastro, respiratory, general)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ProductDTO}
// @Security BearerAuth
// @Router /products [get]
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustFromContext(r.Context())
	page, pageSize := parsePagination(r)

	var line *domain.ProductLine
	if raw := r.URL.Query().Get("line"); raw != "" {
		l := domain.ProductLine(raw)
		if !l.IsValid() {
			respondError(w, http.StatusBadRequest, "Invalid product line filter")
			return
		}
		line = &l
	}

	products, total, err := h.catalogService.ListProducts(r.Context(), actor, page, pageSize, line)
	if err != nil {
		h.logger.Error("failed to list products", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	dtos := make([]domain.ProductDTO, len(products))
	for i := range products {
		dtos[i] = mapper.ToProductDTO(&products[i])
	}
	respondJSON(w, http.StatusOK, paginated(dtos, page, pageSize, total))
}

// ListWarehouses godoc
// @Summary List warehouses
// @Description Get active warehouses, optionally filtered by area
// @Tags Catalog
// @Produce json
// @Param areaId query string false "Filter by area"
// @Success 200 {array} domain.WarehouseDTO
// @Security BearerAuth
// @Router /warehouses [get]
func (h *CatalogHandler) ListWarehouses(w http.ResponseWriter, r *http.Request) {
	warehouses, err := h.catalogService.ListWarehouses(r.Context(), r.URL.Query().Get("areaId"))
	if err != nil {
		h.logger.Error("failed to list warehouses", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	dtos := make([]domain.WarehouseDTO, len(warehouses))
	for i := range warehouses {
		dtos[i] = mapper.ToWarehouseDTO(&warehouses[i])
	}
	respondJSON(w, http.StatusOK, dtos)
}
