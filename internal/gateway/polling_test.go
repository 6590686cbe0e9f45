package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPollingGateway(baseURL string) *PollingGateway {
	return NewPollingGateway(config.PollGatewayConfig{
		Enabled:      true,
		BaseURL:      baseURL,
		ClientID:     "client_test",
		ClientSecret: "poll-secret",
		ReturnURL:    "https://shop.example.com/return",
	}, zerolog.Nop())
}

func TestPollingGateway_CreateOrder(t *testing.T) {
	var received map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "client_test", r.Header.Get("x-client-id"))
		assert.Equal(t, "poll-secret", r.Header.Get("x-client-secret"))
		assert.Equal(t, "2023-08-01", r.Header.Get("x-api-version"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"order_id":"ref-1","payment_session_id":"sess_1"}`))
	}))
	defer server.Close()

	g := newTestPollingGateway(server.URL)

	payload, err := g.CreateOrder(context.Background(), PollingOrderRequest{
		Amount:        750.00,
		OrderRef:      "ref-1",
		CustomerID:    "cust-1",
		CustomerName:  "Jane Doe",
		CustomerEmail: "jane@example.com",
		CustomerPhone: "9999999999",
	})

	require.NoError(t, err)

	// The provider payload is relayed verbatim.
	var decoded map[string]string
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "sess_1", decoded["payment_session_id"])

	assert.Equal(t, 750.00, received["order_amount"])
	assert.Equal(t, "INR", received["order_currency"])
	assert.Equal(t, "ref-1", received["order_id"])

	customer, ok := received["customer_details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "jane@example.com", customer["customer_email"])

	meta, ok := received["order_meta"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "https://shop.example.com/return", meta["return_url"])
}

func TestPollingGateway_Verify_SuccessfulAttempt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/orders/ref-1/payments", r.URL.Path)
		assert.Equal(t, "client_test", r.Header.Get("x-client-id"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]PaymentAttempt{
			{PaymentID: "cf_pay_0", PaymentStatus: "FAILED", PaymentTime: "2026-01-02T03:00:00Z"},
			{PaymentID: "cf_pay_1", PaymentStatus: "SUCCESS", PaymentTime: "2026-01-02T03:04:05Z", Amount: 750.00, Currency: "INR"},
		})
	}))
	defer server.Close()

	g := newTestPollingGateway(server.URL)

	outcome, err := g.Verify(context.Background(), "ref-1")

	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.Equal(t, "cf_pay_1", outcome.ExternalID)
	assert.Equal(t, "SUCCESS", outcome.Status)
	assert.Equal(t, "2026-01-02T03:04:05Z", outcome.UpdateTime)
	require.NotNil(t, outcome.Attempt)
	assert.Equal(t, 750.00, outcome.Attempt.Amount)
}

func TestPollingGateway_Verify_NoSuccessfulAttempt(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "Only failed attempts", body: `[{"payment_id":"cf_pay_0","payment_status":"FAILED"}]`},
		{name: "Pending attempt", body: `[{"payment_id":"cf_pay_0","payment_status":"PENDING"}]`},
		{name: "No attempts", body: `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			g := newTestPollingGateway(server.URL)

			outcome, err := g.Verify(context.Background(), "ref-1")

			require.Error(t, err)
			assert.Equal(t, model.ErrPaymentNotSuccess, err)
			assert.Nil(t, outcome)
		})
	}
}

func TestPollingGateway_Verify_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"order not found"}`))
	}))
	defer server.Close()

	g := newTestPollingGateway(server.URL)

	outcome, err := g.Verify(context.Background(), "ref-unknown")

	require.Error(t, err)
	assert.Nil(t, outcome)

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeUpstream, domainErr.Code)
}

func TestPollingGateway_Verify_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	g := newTestPollingGateway(server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	outcome, err := g.Verify(ctx, "ref-1")

	require.Error(t, err)
	assert.Nil(t, outcome)
	assert.Equal(t, model.ErrGatewayTimeout, err)
}

func TestPollingGateway_Verify_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	g := newTestPollingGateway(server.URL)

	outcome, err := g.Verify(context.Background(), "ref-1")

	require.Error(t, err)
	assert.Nil(t, outcome)

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeUpstream, domainErr.Code)
}
