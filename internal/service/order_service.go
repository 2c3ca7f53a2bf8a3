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

// OrderService orchestrates order creation. Every order passes the debt
// authorization workflow; the resulting debt fields are a historical audit
// frozen at creation time.
type OrderService struct {
	orderRepo     *repository.OrderRepository
	clinicRepo    *repository.ClinicRepository
	warehouseRepo *repository.WarehouseRepository
	productRepo   *repository.ProductRepository
	debtService   *DebtService
	logger        *zap.Logger
}

func NewOrderService(
	orderRepo *repository.OrderRepository,
	clinicRepo *repository.ClinicRepository,
	warehouseRepo *repository.WarehouseRepository,
	productRepo *repository.ProductRepository,
	debtService *DebtService,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		clinicRepo:    clinicRepo,
		warehouseRepo: warehouseRepo,
		productRepo:   productRepo,
		debtService:   debtService,
		logger:        logger,
	}
}

// Create runs the order authorization workflow. The attempt either ends
// with a persisted order or a rejection; no partial order is ever written.
//
// The blocked tier is stamped on the order but is not itself a hard stop:
// only a missing acknowledgment at the warning threshold halts creation.
// Two concurrent attempts against the same clinic each compute their own
// snapshot and neither observes the other's in-flight write; there is no
// per-clinic lock around the threshold check.
func (s *OrderService) Create(ctx context.Context, actor *auth.ActorContext, req *domain.CreateOrderRequest) (*domain.Order, error) {
	// Only field reps place orders
	if !actor.HasAnyRole(domain.RoleMedicalRep, domain.RoleKeyAccount) {
		return nil, ErrPermissionDenied
	}

	if _, err := s.clinicRepo.GetByID(ctx, req.ClinicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClinicNotFound
		}
		return nil, err
	}

	snapshot := s.debtService.Classify(ctx, req.ClinicID)

	// Past the warning threshold the request must carry an explicit
	// acknowledgment. This rejection is recoverable: the client resubmits
	// the same payload with debtWarningAcknowledged set.
	if snapshot.OutstandingAmount > domain.DebtWarningThreshold && !req.DebtWarningAcknowledged {
		return nil, &DebtWarningRequiredError{DebtAmount: snapshot.OutstandingAmount}
	}

	if _, err := s.warehouseRepo.GetByID(ctx, req.WarehouseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWarehouseNotFound
		}
		return nil, err
	}

	items, totalAmount, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		CreatedByID:      actor.UserID,
		ClinicID:         req.ClinicID,
		WarehouseID:      req.WarehouseID,
		Items:            items,
		TotalAmount:      totalAmount,
		DebtStatus:       snapshot.Tier,
		DebtAmount:       snapshot.OutstandingAmount,
		DebtWarningShown: snapshot.OutstandingAmount > domain.DebtWarningThreshold,
		OrderColor:       domain.ColorFor(snapshot.OutstandingAmount),
	}

	if req.DebtOverrideReason != "" {
		order.DebtOverrideReason = req.DebtOverrideReason
		overrideBy := actor.UserID
		order.DebtOverrideBy = &overrideBy
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("clinic_id", order.ClinicID.String()),
		zap.String("created_by", actor.UserID.String()),
		zap.Float64("total_amount", order.TotalAmount),
		zap.String("debt_status", string(order.DebtStatus)),
		zap.Float64("debt_amount", order.DebtAmount),
		zap.String("order_color", string(order.OrderColor)),
	)

	return order, nil
}

// resolveItems resolves every line item's product and current unit price.
// Any missing product aborts the whole order; partial orders are never
// created.
func (s *OrderService) resolveItems(ctx context.Context, reqItems []domain.OrderItemRequest) ([]domain.OrderItem, float64, error) {
	ids := make([]uuid.UUID, 0, len(reqItems))
	for _, item := range reqItems {
		ids = append(ids, item.ProductID)
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	byID := make(map[uuid.UUID]*domain.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	items := make([]domain.OrderItem, 0, len(reqItems))
	var totalAmount float64
	for _, reqItem := range reqItems {
		product, ok := byID[reqItem.ProductID]
		if !ok {
			return nil, 0, ErrProductNotFound
		}
		lineTotal := product.UnitPrice * float64(reqItem.Quantity)
		items = append(items, domain.OrderItem{
			ProductID: product.ID,
			Quantity:  reqItem.Quantity,
			UnitPrice: product.UnitPrice,
			Total:     lineTotal,
		})
		totalAmount += lineTotal
	}

	return items, totalAmount, nil
}

// GetByID returns an order. Field reps only see their own orders; managers,
// warehouse keepers and accounting see all.
func (s *OrderService) GetByID(ctx context.Context, actor *auth.ActorContext, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if actor.HasAnyRole(domain.RoleMedicalRep, domain.RoleKeyAccount) && order.CreatedByID != actor.UserID {
		return nil, ErrPermissionDenied
	}

	return order, nil
}

// List returns orders visible to the actor. Field reps are scoped to their
// own orders regardless of the requested filter.
func (s *OrderService) List(ctx context.Context, actor *auth.ActorContext, page, pageSize int, filter repository.OrderFilter) ([]domain.Order, int64, error) {
	if actor.HasAnyRole(domain.RoleMedicalRep, domain.RoleKeyAccount) {
		own := actor.UserID
		filter.CreatedByID = &own
	}
	return s.orderRepo.List(ctx, page, pageSize, filter)
}
