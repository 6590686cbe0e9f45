package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/gateway"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// paymentService implements PaymentService. It owns the reconciliation flow:
// initiate a gateway transaction, verify the provider's outcome, and apply
// the guarded unpaid-to-paid transition on the ledger.
type paymentService struct {
	orderRepo repository.OrderRepository
	signature SignatureProvider
	polling   PollingProvider
	logger    zerolog.Logger
	now       func() time.Time
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	orderRepo repository.OrderRepository,
	signature SignatureProvider,
	polling PollingProvider,
	logger zerolog.Logger,
) PaymentService {
	return &paymentService{
		orderRepo: orderRepo,
		signature: signature,
		polling:   polling,
		logger:    logger.With().Str("service", "payment").Logger(),
		now:       time.Now,
	}
}

// CreateSignatureOrder initiates a transaction with the signature gateway.
func (s *paymentService) CreateSignatureOrder(ctx context.Context, req *model.SignatureOrderRequest) (*gateway.SignatureOrder, error) {
	if req == nil || req.Amount <= 0 {
		return nil, model.NewDomainError(model.ErrCodeValidation, "A positive amount is required")
	}

	order, err := s.signature.CreateOrder(ctx, req.Amount)
	if err != nil {
		s.logger.Error().Err(err).Float64("amount", req.Amount).Msg("signature order creation failed")
		return nil, err
	}

	return order, nil
}

// VerifySignaturePayment checks a checkout callback's signature and, on
// success, transitions the referenced order to paid. A replayed callback for
// an already-paid order is a no-op success.
func (s *paymentService) VerifySignaturePayment(ctx context.Context, req *model.SignatureVerifyRequest) (*model.PaymentVerifyResponse, error) {
	if req == nil || req.ExternalOrderID == "" || req.ExternalPaymentID == "" || req.Signature == "" {
		return nil, model.NewDomainError(model.ErrCodeValidation, "External order id, payment id and signature are required")
	}
	if req.OrderID == uuid.Nil {
		return nil, model.NewDomainError(model.ErrCodeValidation, "Order reference is required")
	}

	outcome, err := s.signature.Verify(gateway.SignatureCallback{
		ExternalOrderID:   req.ExternalOrderID,
		ExternalPaymentID: req.ExternalPaymentID,
		Signature:         req.Signature,
	})
	if err != nil {
		// The order is left untouched on a failed verification.
		return nil, err
	}

	alreadyPaid, err := s.applyOutcome(ctx, req.OrderID, outcome)
	if err != nil {
		return nil, err
	}

	return &model.PaymentVerifyResponse{
		Status:      "success",
		OrderID:     req.OrderID,
		AlreadyPaid: alreadyPaid,
	}, nil
}

// CreatePollingOrder registers a transaction with the poll-based gateway.
// Customer details come from the authenticated user, not the request body.
func (s *paymentService) CreatePollingOrder(ctx context.Context, user *model.User, req *model.PollingOrderRequest) (json.RawMessage, error) {
	if req == nil || req.Amount <= 0 {
		return nil, model.NewDomainError(model.ErrCodeValidation, "A positive amount is required")
	}
	if req.OrderRef == uuid.Nil {
		return nil, model.NewDomainError(model.ErrCodeValidation, "Order reference is required")
	}
	if user == nil {
		return nil, model.NewDomainError(model.ErrCodeUnauthorised, "Authenticated user is required")
	}

	payload, err := s.polling.CreateOrder(ctx, gateway.PollingOrderRequest{
		Amount:        req.Amount,
		OrderRef:      req.OrderRef.String(),
		CustomerID:    user.ID.String(),
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
		CustomerPhone: "9999999999",
	})
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", req.OrderRef.String()).Msg("polling order creation failed")
		return nil, err
	}

	return payload, nil
}

// VerifyPollingPayment polls the provider for a successful attempt and, on
// success, transitions the order to paid.
func (s *paymentService) VerifyPollingPayment(ctx context.Context, orderID uuid.UUID) (*model.PaymentVerifyResponse, error) {
	if orderID == uuid.Nil {
		return nil, model.NewDomainError(model.ErrCodeValidation, "Order reference is required")
	}

	outcome, err := s.polling.Verify(ctx, orderID.String())
	if err != nil {
		return nil, err
	}

	alreadyPaid, err := s.applyOutcome(ctx, orderID, outcome)
	if err != nil {
		return nil, err
	}

	return &model.PaymentVerifyResponse{
		Status:      "success",
		OrderID:     orderID,
		AlreadyPaid: alreadyPaid,
		PaymentInfo: outcome.Attempt,
	}, nil
}

// MarkPaidDev unconditionally marks an order paid with a synthetic payment
// id. Registered only outside production.
func (s *paymentService) MarkPaidDev(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	if orderID == uuid.Nil {
		return nil, model.NewDomainError(model.ErrCodeValidation, "Order reference is required")
	}

	now := s.now()
	_, err := s.orderRepo.MarkPaid(ctx, orderID, now, model.PaymentResult{
		ID:         "dev-mock",
		Status:     "success",
		UpdateTime: now.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	s.logger.Info().Str("order_id", orderID.String()).Msg("order marked paid via dev bypass")

	return order, nil
}

// applyOutcome applies a successful verification outcome to the ledger.
// Returns true when the order was already paid and nothing changed.
func (s *paymentService) applyOutcome(ctx context.Context, orderID uuid.UUID, outcome *gateway.VerificationOutcome) (bool, error) {
	applied, err := s.orderRepo.MarkPaid(ctx, orderID, s.now(), model.PaymentResult{
		ID:         outcome.ExternalID,
		Status:     outcome.Status,
		UpdateTime: outcome.UpdateTime,
	})
	if err != nil {
		return false, err
	}

	if applied {
		s.logger.Info().
			Str("order_id", orderID.String()).
			Str("payment_id", outcome.ExternalID).
			Msg("payment reconciled")
	}

	return !applied, nil
}
