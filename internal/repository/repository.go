package repository

import (
	"context"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepository defines the interface for account data access operations.
type UserRepository interface {
	// Create inserts a new user record.
	Create(ctx context.Context, user *model.User) error

	// GetByID retrieves a user by ID. Returns nil when no user exists.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// GetByEmail retrieves a user by email, including the password hash.
	// Returns nil when no user exists.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// ProductRepository defines the interface for catalogue data access operations.
type ProductRepository interface {
	// GetAll retrieves all products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns nil when no
	// product exists.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// Create inserts a new product.
	Create(ctx context.Context, product *model.Product) error

	// CreateBulk inserts multiple products in one round trip.
	CreateBulk(ctx context.Context, products []model.Product) error

	// Update replaces a product's mutable fields. Returns false when no
	// product exists.
	Update(ctx context.Context, product *model.Product) (bool, error)

	// Delete removes a product. Returns false when no product exists.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// OrderRepository defines the interface for order ledger access.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts the order's line items within the provided
	// transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order with its items. Returns nil when no order
	// exists.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListByUser retrieves all orders placed by a user, items included.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// MarkPaid sets the paid fields on an order only if it is currently
	// unpaid. Returns true when the transition was applied, false when the
	// order was already paid. Unknown orders yield model.ErrOrderNotFound.
	MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time, result model.PaymentResult) (bool, error)
}
