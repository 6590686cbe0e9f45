package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"storefront/internal/config"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// SignatureGateway talks to the signature-based payment provider
// (gateway-a). Initiation creates a remote transaction; verification checks
// an HMAC-SHA256 signature the provider computed over the transaction pair.
type SignatureGateway struct {
	baseURL string
	keyID   string
	secret  []byte
	client  *http.Client
	logger  zerolog.Logger
	now     func() time.Time
}

// SignatureOrder is the provider's representation of an initiated
// transaction.
type SignatureOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// SignatureCallback is the payload the provider's checkout flow hands back
// after a payment attempt.
type SignatureCallback struct {
	ExternalOrderID   string
	ExternalPaymentID string
	Signature         string
}

// NewSignatureGateway creates a signature gateway client from explicit
// configuration. Credentials are injected, never read from globals.
func NewSignatureGateway(cfg config.SignGatewayConfig, logger zerolog.Logger) *SignatureGateway {
	return &SignatureGateway{
		baseURL: cfg.BaseURL,
		keyID:   cfg.KeyID,
		secret:  []byte(cfg.Secret),
		client:  newHTTPClient(defaultTimeout),
		logger:  logger.With().Str("gateway", "signature").Logger(),
		now:     time.Now,
	}
}

// CreateOrder creates a remote transaction for the given amount. The
// provider works in the smallest currency unit, so the amount is converted
// to paise as an integer before it leaves the process.
func (g *SignatureGateway) CreateOrder(ctx context.Context, amount float64) (*SignatureOrder, error) {
	payload := map[string]interface{}{
		"amount":   int64(math.Round(amount * 100)),
		"currency": "INR",
		"receipt":  fmt.Sprintf("receipt_order_%d", g.now().UnixMilli()),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	req.SetBasicAuth(g.keyID, string(g.secret))
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error().Err(err).Msg("order creation request failed")
		return nil, mapTransportError(err, "signature")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		g.logger.Error().Int("status", resp.StatusCode).Msg("provider rejected order creation")
		return nil, upstreamError("signature", resp.StatusCode, resp.Body)
	}

	var order SignatureOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, model.NewDomainError(model.ErrCodeUpstream, fmt.Sprintf("signature provider returned malformed order: %v", err))
	}

	g.logger.Info().
		Str("external_order_id", order.ID).
		Int64("amount", order.Amount).
		Msg("provider order created")

	return &order, nil
}

// Verify recomputes the HMAC-SHA256 signature over
// externalOrderID + "|" + externalPaymentID and compares it against the
// supplied one. The comparison is constant-time.
func (g *SignatureGateway) Verify(callback SignatureCallback) (*VerificationOutcome, error) {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(callback.ExternalOrderID + "|" + callback.ExternalPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(callback.Signature)) {
		g.logger.Warn().
			Str("external_order_id", callback.ExternalOrderID).
			Str("external_payment_id", callback.ExternalPaymentID).
			Msg("signature mismatch")
		return nil, model.ErrInvalidSignature
	}

	return &VerificationOutcome{
		ExternalID: callback.ExternalPaymentID,
		Status:     "success",
		UpdateTime: g.now().UTC().Format(time.RFC3339),
	}, nil
}

// Sign computes the provider-side signature for a transaction pair. Exported
// for test doubles simulating the provider's checkout callback.
func (g *SignatureGateway) Sign(externalOrderID, externalPaymentID string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(externalOrderID + "|" + externalPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
