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

func newTestSignatureGateway(baseURL string) *SignatureGateway {
	return NewSignatureGateway(config.SignGatewayConfig{
		Enabled: true,
		BaseURL: baseURL,
		KeyID:   "key_test",
		Secret:  "sig-secret",
	}, zerolog.Nop())
}

func TestSignatureGateway_Verify_Success(t *testing.T) {
	g := newTestSignatureGateway("http://unused")

	sig := g.Sign("order_ext_1", "pay_ext_1")

	outcome, err := g.Verify(SignatureCallback{
		ExternalOrderID:   "order_ext_1",
		ExternalPaymentID: "pay_ext_1",
		Signature:         sig,
	})

	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.Equal(t, "pay_ext_1", outcome.ExternalID)
	assert.Equal(t, "success", outcome.Status)
	assert.NotEmpty(t, outcome.UpdateTime)
}

func TestSignatureGateway_Verify_Mismatch(t *testing.T) {
	g := newTestSignatureGateway("http://unused")

	valid := g.Sign("order_ext_1", "pay_ext_1")

	tests := []struct {
		name     string
		callback SignatureCallback
	}{
		{
			name: "Tampered signature",
			callback: SignatureCallback{
				ExternalOrderID:   "order_ext_1",
				ExternalPaymentID: "pay_ext_1",
				Signature:         "0000000000000000000000000000000000000000000000000000000000000000",
			},
		},
		{
			name: "Signature for a different payment",
			callback: SignatureCallback{
				ExternalOrderID:   "order_ext_1",
				ExternalPaymentID: "pay_ext_2",
				Signature:         valid,
			},
		},
		{
			name: "Signature for a different order",
			callback: SignatureCallback{
				ExternalOrderID:   "order_ext_2",
				ExternalPaymentID: "pay_ext_1",
				Signature:         valid,
			},
		},
		{
			name: "Empty signature",
			callback: SignatureCallback{
				ExternalOrderID:   "order_ext_1",
				ExternalPaymentID: "pay_ext_1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := g.Verify(tt.callback)

			require.Error(t, err)
			assert.Equal(t, model.ErrInvalidSignature, err)
			assert.Nil(t, outcome)
		})
	}
}

func TestSignatureGateway_Verify_DifferentSecretsDisagree(t *testing.T) {
	a := newTestSignatureGateway("http://unused")
	b := NewSignatureGateway(config.SignGatewayConfig{
		BaseURL: "http://unused",
		KeyID:   "key_test",
		Secret:  "other-secret",
	}, zerolog.Nop())

	sig := b.Sign("order_ext_1", "pay_ext_1")

	_, err := a.Verify(SignatureCallback{
		ExternalOrderID:   "order_ext_1",
		ExternalPaymentID: "pay_ext_1",
		Signature:         sig,
	})

	require.Error(t, err)
	assert.Equal(t, model.ErrInvalidSignature, err)
}

func TestSignatureGateway_CreateOrder(t *testing.T) {
	var received map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "key_test", user)
		assert.Equal(t, "sig-secret", pass)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SignatureOrder{
			ID:       "order_ext_1",
			Amount:   49900,
			Currency: "INR",
			Status:   "created",
		})
	}))
	defer server.Close()

	g := newTestSignatureGateway(server.URL)

	order, err := g.CreateOrder(context.Background(), 499.00)

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, "order_ext_1", order.ID)
	assert.Equal(t, int64(49900), order.Amount)

	// The amount crosses the wire in the smallest currency unit.
	assert.Equal(t, float64(49900), received["amount"])
	assert.Equal(t, "INR", received["currency"])
	assert.NotEmpty(t, received["receipt"])
}

func TestSignatureGateway_CreateOrder_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"provider down"}`))
	}))
	defer server.Close()

	g := newTestSignatureGateway(server.URL)

	order, err := g.CreateOrder(context.Background(), 499.00)

	require.Error(t, err)
	assert.Nil(t, order)

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeUpstream, domainErr.Code)
	assert.Contains(t, domainErr.Message, "provider down")
}

func TestSignatureGateway_CreateOrder_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	g := newTestSignatureGateway(server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	order, err := g.CreateOrder(ctx, 499.00)

	require.Error(t, err)
	assert.Nil(t, order)
	assert.Equal(t, model.ErrGatewayTimeout, err)
}
