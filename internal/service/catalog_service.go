package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/fieldmed/fieldsales-api/internal/auth"
	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/fieldmed/fieldsales-api/internal/repository"
)

// CatalogService exposes the read-only product and warehouse catalogs
// that order entry works against.
type CatalogService struct {
	productRepo   *repository.ProductRepository
	warehouseRepo *repository.WarehouseRepository
	logger        *zap.Logger
}

func NewCatalogService(productRepo *repository.ProductRepository, warehouseRepo *repository.WarehouseRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		logger:        logger,
	}
}

// ListProducts returns active products. Reps on a product line see only
// their own line's products.
func (s *CatalogService) ListProducts(ctx context.Context, actor *auth.ActorContext, page, pageSize int, line *domain.ProductLine) ([]domain.Product, int64, error) {
	if actor.Role == domain.RoleMedicalRep && actor.Line != nil {
		line = actor.Line
	}
	return s.productRepo.List(ctx, page, pageSize, line)
}

// ListWarehouses returns active warehouses, optionally scoped to an area
func (s *CatalogService) ListWarehouses(ctx context.Context, areaID string) ([]domain.Warehouse, error) {
	return s.warehouseRepo.List(ctx, areaID)
}
