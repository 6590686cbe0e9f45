package model

import (
	"time"

	"github.com/google/uuid"
)

// ShippingAddress is the delivery destination for an order. All fields are
// required and immutable after creation.
type ShippingAddress struct {
	Address    string `json:"address" db:"ship_address"`
	City       string `json:"city" db:"ship_city"`
	PostalCode string `json:"postalCode" db:"ship_postal_code"`
}

// PaymentResult records the provider's view of a successful payment.
type PaymentResult struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	UpdateTime string `json:"updateTime"`
}

// OrderItem is a line item snapshotted from the catalogue at order time.
// The product reference is kept for display and audit only; it is never
// re-validated against current catalogue state.
type OrderItem struct {
	ID        uuid.UUID `json:"-" db:"id"`
	OrderID   uuid.UUID `json:"-" db:"order_id"`
	ProductID uuid.UUID `json:"productId" db:"product_id"`
	Name      string    `json:"name" db:"name"`
	Quantity  int       `json:"quantity" db:"quantity"`
	UnitPrice float64   `json:"price" db:"unit_price"`
	Image     string    `json:"image" db:"image"`
}

// Order is the central entity of the payment flow. The payment outcome
// fields are written only by the reconciliation path.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"userId" db:"user_id"`
	Items           []OrderItem     `json:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod" db:"payment_method"`
	ItemsPrice      float64         `json:"itemsPrice" db:"items_price"`
	TaxPrice        float64         `json:"taxPrice" db:"tax_price"`
	ShippingPrice   float64         `json:"shippingPrice" db:"shipping_price"`
	TotalPrice      float64         `json:"totalPrice" db:"total_price"`
	IsPaid          bool            `json:"isPaid" db:"is_paid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty" db:"paid_at"`
	PaymentResult   *PaymentResult  `json:"paymentResult,omitempty"`
	IsDelivered     bool            `json:"isDelivered" db:"is_delivered"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty" db:"delivered_at"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItemRequest is a single line item in an order request.
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	Image     string    `json:"image"`
}

// OrderRequest represents the request payload for placing an order. The
// pricing breakdown is supplied by the caller and checked for internal
// consistency, but never recomputed from the catalogue.
type OrderRequest struct {
	Items           []OrderItemRequest `json:"orderItems"`
	ShippingAddress ShippingAddress    `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
	ItemsPrice      float64            `json:"itemsPrice"`
	TaxPrice        float64            `json:"taxPrice"`
	ShippingPrice   float64            `json:"shippingPrice"`
	TotalPrice      float64            `json:"totalPrice"`
}

// OrderDetail is an order with its owner resolved to a display projection.
type OrderDetail struct {
	Order
	User UserSummary `json:"user"`
}
