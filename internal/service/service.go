package service

import (
	"context"
	"encoding/json"

	"storefront/internal/gateway"
	"storefront/internal/model"

	"github.com/google/uuid"
)

// AuthService defines operations for account registration and login.
type AuthService interface {
	// Register creates an account and returns it with a signed token.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)

	// Login checks credentials and returns the account with a signed token.
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
}

// ProductService defines operations for catalogue management.
type ProductService interface {
	// GetAll retrieves all products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// Create adds a product to the catalogue.
	Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error)

	// CreateBulk adds multiple products to the catalogue in one call.
	CreateBulk(ctx context.Context, reqs []model.ProductRequest) ([]model.Product, error)

	// Update applies a partial update to a product.
	Update(ctx context.Context, id uuid.UUID, req *model.ProductUpdateRequest) (*model.Product, error)

	// Delete removes a product from the catalogue.
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderService defines operations for order placement and retrieval.
type OrderService interface {
	// PlaceOrder creates a new unpaid order for the user.
	PlaceOrder(ctx context.Context, userID uuid.UUID, req *model.OrderRequest) (*model.Order, error)

	// ListMyOrders retrieves all orders placed by the user.
	ListMyOrders(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// GetOrder retrieves an order with its owner resolved. Requesters who
	// are neither the owner nor admin are rejected.
	GetOrder(ctx context.Context, requesterID uuid.UUID, requesterRole model.Role, orderID uuid.UUID) (*model.OrderDetail, error)
}

// PaymentService orchestrates the payment gateways and the order ledger's
// paid-state transition.
type PaymentService interface {
	// CreateSignatureOrder initiates a transaction with the signature
	// gateway.
	CreateSignatureOrder(ctx context.Context, req *model.SignatureOrderRequest) (*gateway.SignatureOrder, error)

	// VerifySignaturePayment checks a checkout callback's signature and, on
	// success, marks the referenced order paid.
	VerifySignaturePayment(ctx context.Context, req *model.SignatureVerifyRequest) (*model.PaymentVerifyResponse, error)

	// CreatePollingOrder registers a transaction with the poll-based
	// gateway, correlated with the given order.
	CreatePollingOrder(ctx context.Context, user *model.User, req *model.PollingOrderRequest) (json.RawMessage, error)

	// VerifyPollingPayment polls the provider for a successful attempt and,
	// on success, marks the order paid.
	VerifyPollingPayment(ctx context.Context, orderID uuid.UUID) (*model.PaymentVerifyResponse, error)

	// MarkPaidDev unconditionally marks an order paid with a synthetic
	// payment id. Only wired up outside production.
	MarkPaidDev(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
}

// SignatureProvider is the capability set the payment service needs from the
// signature gateway adapter.
type SignatureProvider interface {
	CreateOrder(ctx context.Context, amount float64) (*gateway.SignatureOrder, error)
	Verify(callback gateway.SignatureCallback) (*gateway.VerificationOutcome, error)
}

// PollingProvider is the capability set the payment service needs from the
// polling gateway adapter.
type PollingProvider interface {
	CreateOrder(ctx context.Context, req gateway.PollingOrderRequest) (json.RawMessage, error)
	Verify(ctx context.Context, orderRef string) (*gateway.VerificationOutcome, error)
}
