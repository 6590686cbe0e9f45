package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"storefront/internal/config"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// PollingGateway talks to the poll-based payment provider (gateway-b).
// Initiation registers a transaction keyed by a caller-supplied correlation
// id; verification polls the provider's transaction-status endpoint.
type PollingGateway struct {
	baseURL      string
	clientID     string
	clientSecret string
	returnURL    string
	client       *http.Client
	logger       zerolog.Logger
}

// PollingOrderRequest carries the fields the provider needs to register a
// transaction.
type PollingOrderRequest struct {
	Amount        float64
	OrderRef      string
	CustomerID    string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

// NewPollingGateway creates a polling gateway client from explicit
// configuration.
func NewPollingGateway(cfg config.PollGatewayConfig, logger zerolog.Logger) *PollingGateway {
	return &PollingGateway{
		baseURL:      cfg.BaseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		returnURL:    cfg.ReturnURL,
		client:       newHTTPClient(defaultTimeout),
		logger:       logger.With().Str("gateway", "polling").Logger(),
	}
}

// setAuthHeaders attaches the provider's credential headers.
func (g *PollingGateway) setAuthHeaders(req *http.Request) {
	req.Header.Set("x-client-id", g.clientID)
	req.Header.Set("x-client-secret", g.clientSecret)
	req.Header.Set("x-api-version", "2023-08-01")
}

// CreateOrder registers a transaction with the provider and returns the
// provider's payload verbatim; callers relay it to the checkout frontend.
func (g *PollingGateway) CreateOrder(ctx context.Context, req PollingOrderRequest) (json.RawMessage, error) {
	payload := map[string]interface{}{
		"order_amount":   req.Amount,
		"order_currency": "INR",
		"order_id":       req.OrderRef,
		"customer_details": map[string]string{
			"customer_id":    req.CustomerID,
			"customer_name":  req.CustomerName,
			"customer_email": req.CustomerEmail,
			"customer_phone": req.CustomerPhone,
		},
		"order_meta": map[string]string{
			"return_url": g.returnURL,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	g.setAuthHeaders(httpReq)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		g.logger.Error().Err(err).Str("order_ref", req.OrderRef).Msg("order creation request failed")
		return nil, mapTransportError(err, "polling")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		g.logger.Error().
			Int("status", resp.StatusCode).
			Str("order_ref", req.OrderRef).
			Msg("provider rejected order creation")
		return nil, upstreamError("polling", resp.StatusCode, resp.Body)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, model.NewDomainError(model.ErrCodeUpstream, fmt.Sprintf("polling provider returned malformed order: %v", err))
	}

	g.logger.Info().Str("order_ref", req.OrderRef).Msg("provider order created")

	return raw, nil
}

// Verify polls the provider's payment attempts for the transaction and
// returns a successful outcome when one attempt has status SUCCESS.
// Providers return at most one successful attempt per transaction, so the
// first match wins.
func (g *PollingGateway) Verify(ctx context.Context, orderRef string) (*VerificationOutcome, error) {
	url := fmt.Sprintf("%s/orders/%s/payments", g.baseURL, orderRef)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build verify request: %w", err)
	}
	g.setAuthHeaders(req)

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error().Err(err).Str("order_ref", orderRef).Msg("verify request failed")
		return nil, mapTransportError(err, "polling")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		g.logger.Error().
			Int("status", resp.StatusCode).
			Str("order_ref", orderRef).
			Msg("provider rejected verify request")
		return nil, upstreamError("polling", resp.StatusCode, resp.Body)
	}

	var attempts []PaymentAttempt
	if err := json.NewDecoder(resp.Body).Decode(&attempts); err != nil {
		return nil, model.NewDomainError(model.ErrCodeUpstream, fmt.Sprintf("polling provider returned malformed payments: %v", err))
	}

	for i := range attempts {
		if attempts[i].PaymentStatus == "SUCCESS" {
			g.logger.Info().
				Str("order_ref", orderRef).
				Str("payment_id", attempts[i].PaymentID).
				Msg("successful payment attempt found")
			return &VerificationOutcome{
				ExternalID: attempts[i].PaymentID,
				Status:     attempts[i].PaymentStatus,
				UpdateTime: attempts[i].PaymentTime,
				Attempt:    &attempts[i],
			}, nil
		}
	}

	g.logger.Warn().
		Str("order_ref", orderRef).
		Int("attempts", len(attempts)).
		Msg("no successful payment attempt")

	return nil, model.ErrPaymentNotSuccess
}
