package model

import "github.com/google/uuid"

// SignatureOrderRequest asks the signature gateway (gateway-a) to create a
// provider transaction for the given amount.
type SignatureOrderRequest struct {
	Amount float64 `json:"amount"`
}

// SignatureVerifyRequest is the checkout callback relayed by the frontend
// after a signature-gateway payment attempt.
type SignatureVerifyRequest struct {
	ExternalOrderID   string    `json:"externalOrderId"`
	ExternalPaymentID string    `json:"externalPaymentId"`
	Signature         string    `json:"signature"`
	OrderID           uuid.UUID `json:"orderRef"`
}

// PollingOrderRequest asks the poll-based gateway (gateway-b) to register a
// provider transaction correlated with one of our orders.
type PollingOrderRequest struct {
	Amount   float64   `json:"amount"`
	OrderRef uuid.UUID `json:"orderRef"`
}

// DevMarkPaidRequest is the development-only payment bypass payload.
type DevMarkPaidRequest struct {
	OrderID uuid.UUID `json:"orderRef"`
}

// PaymentVerifyResponse reports the result of a verification. AlreadyPaid is
// true when the order had already transitioned and the call was a no-op.
type PaymentVerifyResponse struct {
	Status      string      `json:"status"`
	OrderID     uuid.UUID   `json:"orderId"`
	AlreadyPaid bool        `json:"alreadyPaid,omitempty"`
	PaymentInfo interface{} `json:"paymentInfo,omitempty"`
}
