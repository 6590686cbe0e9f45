package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	userRepo  repository.UserRepository
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// PlaceOrder creates a new unpaid order for the user. The pricing breakdown
// is supplied by the caller; it is checked for internal consistency but not
// recomputed from the catalogue.
func (s *orderService) PlaceOrder(ctx context.Context, userID uuid.UUID, req *model.OrderRequest) (*model.Order, error) {
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	now := time.Now()
	order := &model.Order{
		ID:              uuid.New(),
		UserID:          userID,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ItemsPrice:      req.ItemsPrice,
		TaxPrice:        req.TaxPrice,
		ShippingPrice:   req.ShippingPrice,
		TotalPrice:      req.TotalPrice,
		IsPaid:          false,
		IsDelivered:     false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	items := make([]model.OrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
			Image:     item.Image,
		}
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(items)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	order.Items = items

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", userID.String()).
		Int("item_count", len(items)).
		Msg("order placed")

	return order, nil
}

// ListMyOrders retrieves all orders placed by the user.
func (s *orderService) ListMyOrders(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetOrder retrieves an order with its owner resolved to a display
// projection. Requesters who are neither the owner nor admin are rejected;
// existence is not hidden from authenticated non-owners.
func (s *orderService) GetOrder(ctx context.Context, requesterID uuid.UUID, requesterRole model.Role, orderID uuid.UUID) (*model.OrderDetail, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if order.UserID != requesterID && requesterRole != model.RoleAdmin {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("requester_id", requesterID.String()).
			Msg("order access denied")
		return nil, model.ErrNotOrderOwner
	}

	owner, err := s.userRepo.GetByID(ctx, order.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve order owner: %w", err)
	}
	// A dangling owner reference is a data-consistency fault, not a missing
	// order; no partial object is returned.
	if owner == nil {
		s.logger.Error().
			Str("order_id", orderID.String()).
			Str("user_id", order.UserID.String()).
			Msg("order owner record missing")
		return nil, model.ErrOwnerUnresolved
	}

	return &model.OrderDetail{
		Order: *order,
		User: model.UserSummary{
			ID:    owner.ID,
			Name:  owner.Name,
			Email: owner.Email,
		},
	}, nil
}

// validateOrderRequest enforces the order placement constraints, including
// the pricing consistency check.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeValidation, "Request body is required")
	}

	if len(req.Items) == 0 {
		return model.ErrEmptyOrder
	}

	for i, item := range req.Items {
		if item.ProductID == uuid.Nil {
			return model.NewDomainError(model.ErrCodeValidation, fmt.Sprintf("Item %d: product reference is required", i))
		}
		if item.Name == "" {
			return model.NewDomainError(model.ErrCodeValidation, fmt.Sprintf("Item %d: name is required", i))
		}
		if item.Quantity <= 0 {
			return model.NewDomainError(model.ErrCodeValidation, fmt.Sprintf("Item %d: quantity must be greater than zero", i))
		}
		if item.Price < 0 {
			return model.NewDomainError(model.ErrCodeValidation, fmt.Sprintf("Item %d: price must not be negative", i))
		}
	}

	if req.ShippingAddress.Address == "" || req.ShippingAddress.City == "" || req.ShippingAddress.PostalCode == "" {
		return model.NewDomainError(model.ErrCodeValidation, "Shipping address, city and postal code are required")
	}

	if req.PaymentMethod == "" {
		return model.NewDomainError(model.ErrCodeValidation, "Payment method is required")
	}

	if req.ItemsPrice < 0 || req.TaxPrice < 0 || req.ShippingPrice < 0 || req.TotalPrice < 0 {
		return model.NewDomainError(model.ErrCodeValidation, "Prices must not be negative")
	}

	// Cent-exact comparison; prices arrive as floating-point currency
	// amounts.
	if toCents(req.TotalPrice) != toCents(req.ItemsPrice)+toCents(req.TaxPrice)+toCents(req.ShippingPrice) {
		s.logger.Warn().
			Float64("total", req.TotalPrice).
			Float64("items", req.ItemsPrice).
			Float64("tax", req.TaxPrice).
			Float64("shipping", req.ShippingPrice).
			Msg("pricing breakdown mismatch")
		return model.ErrPricingMismatch
	}

	return nil
}

// toCents converts a currency amount to an integer number of cents.
func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
