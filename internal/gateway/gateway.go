// Package gateway contains the adapters for the two external payment
// providers. Both adapters reduce a provider interaction to a
// VerificationOutcome, which is the only thing the reconciliation flow
// consumes.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"storefront/internal/model"
)

// VerificationOutcome is the result of validating a payment attempt as
// genuinely successful.
type VerificationOutcome struct {
	ExternalID string
	Status     string
	UpdateTime string

	// Attempt carries the provider's payment record when verification was
	// poll-based. Nil for signature-based verification.
	Attempt *PaymentAttempt
}

// PaymentAttempt is one payment record returned by the poll-based provider.
type PaymentAttempt struct {
	PaymentID     string  `json:"payment_id"`
	PaymentStatus string  `json:"payment_status"`
	PaymentTime   string  `json:"payment_time"`
	Amount        float64 `json:"payment_amount"`
	Currency      string  `json:"payment_currency"`
}

// defaultTimeout bounds every outbound provider call. Expiry surfaces as a
// gateway timeout, not an upstream error.
const defaultTimeout = 10 * time.Second

// newHTTPClient returns the HTTP client shared by the gateway adapters.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// mapTransportError classifies a failed outbound call. Deadline expiry maps
// to the gateway-timeout error; everything else is an upstream failure.
func mapTransportError(err error, provider string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.ErrGatewayTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.ErrGatewayTimeout
	}
	return model.NewDomainError(model.ErrCodeUpstream, fmt.Sprintf("%s provider call failed: %v", provider, err))
}

// upstreamError builds an upstream error carrying the provider's response
// body for diagnostics.
func upstreamError(provider string, status int, body io.Reader) error {
	payload, _ := io.ReadAll(io.LimitReader(body, 4096))
	return model.NewDomainError(
		model.ErrCodeUpstream,
		fmt.Sprintf("%s provider returned status %d: %s", provider, status, string(payload)),
	)
}
