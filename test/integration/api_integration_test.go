package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/gateway"
	"storefront/internal/handler"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// testServer bundles the assembled HTTP handler with the collaborators the
// tests need to reach behind the API surface.
type testServer struct {
	handler http.Handler
	signGW  *gateway.SignatureGateway
}

func setupTestServer(t *testing.T, testDB *TestDB) *testServer {
	t.Helper()

	logger := zerolog.Nop()

	userRepo := repository.NewUserRepository(testDB.Pool, logger)
	productRepo := repository.NewProductRepository(testDB.Pool, logger)
	orderRepo := repository.NewOrderRepository(testDB.Pool, logger)

	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	issuer := auth.NewTokenIssuer("integration-test-secret", time.Hour)

	// The signature gateway only needs its shared secret for the verify
	// path exercised here; its create-order endpoint is never called.
	signGW := gateway.NewSignatureGateway(config.SignGatewayConfig{
		Enabled: true,
		BaseURL: "http://127.0.0.1:0",
		KeyID:   "key_test",
		Secret:  "integration-sign-secret",
	}, logger)
	pollGW := gateway.NewPollingGateway(config.PollGatewayConfig{
		Enabled:      true,
		BaseURL:      "http://127.0.0.1:0",
		ClientID:     "client_test",
		ClientSecret: "poll-secret",
		ReturnURL:    "http://localhost/return",
	}, logger)

	authService := service.NewAuthService(userRepo, hasher, issuer, logger)
	productService := service.NewProductService(productRepo, logger)
	orderService := service.NewOrderService(orderRepo, userRepo, logger)
	paymentService := service.NewPaymentService(orderRepo, signGW, pollGW, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	productHandler := handler.NewProductHandler(productService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	paymentHandler := handler.NewPaymentHandler(paymentService, logger)

	h := router.New(router.Config{
		Auth:             authHandler,
		Products:         productHandler,
		Orders:           orderHandler,
		Payments:         paymentHandler,
		TokenIssuer:      issuer,
		UserRepo:         userRepo,
		DevPaymentBypass: true,
		Logger:           logger,
	})

	return &testServer{handler: h, signGW: signGW}
}

func (s *testServer) do(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

// login authenticates a seeded account (password "secret123") and returns
// the issued token.
func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()

	w := s.do(t, http.MethodPost, "/auth/login", "", model.LoginRequest{
		Email:    email,
		Password: "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.AuthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// placeOrder creates an unpaid single-item order through the API.
func (s *testServer) placeOrder(t *testing.T, token string, productID uuid.UUID) *model.Order {
	t.Helper()

	w := s.do(t, http.MethodPost, "/orders", token, model.OrderRequest{
		Items: []model.OrderItemRequest{
			{ProductID: productID, Name: "Test Product 1", Quantity: 4, Price: 10.00, Image: "/images/p1.jpg"},
		},
		ShippingAddress: model.ShippingAddress{
			Address:    "1 Test Street",
			City:       "Testville",
			PostalCode: "12345",
		},
		PaymentMethod: "gateway-a",
		ItemsPrice:    40.00,
		TaxPrice:      4.00,
		ShippingPrice: 5.00,
		TotalPrice:    49.00,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var order model.Order
	require.NoError(t, json.NewDecoder(w.Body).Decode(&order))
	return &order
}

func TestAuthAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	t.Run("register then login", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		w := server.do(t, http.MethodPost, "/auth/register", "", model.RegisterRequest{
			Name:     "Grace Hopper",
			Email:    "grace@example.com",
			Password: "secret123",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var registered model.AuthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&registered))
		assert.Equal(t, model.RoleUser, registered.Role)
		assert.NotEmpty(t, registered.Token)

		token := server.login(t, "grace@example.com")
		assert.NotEmpty(t, token)
	})

	t.Run("duplicate registration returns 409", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedUser(t, testDB.Pool, "taken@example.com", model.RoleUser)

		w := server.do(t, http.MethodPost, "/auth/register", "", model.RegisterRequest{
			Name:     "Second",
			Email:    "taken@example.com",
			Password: "secret123",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("login with wrong password returns 401", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedUser(t, testDB.Pool, "wrong@example.com", model.RoleUser)

		w := server.do(t, http.MethodPost, "/auth/login", "", model.LoginRequest{
			Email:    "wrong@example.com",
			Password: "not-the-password",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestProductAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	t.Run("GET /products is public", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		w := server.do(t, http.MethodGet, "/products", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var products []model.Product
		require.NoError(t, json.NewDecoder(w.Body).Decode(&products))
		assert.Len(t, products, 5)
	})

	t.Run("GET /products/{id} returns the product", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		ids := SeedProducts(t, testDB.Pool)

		w := server.do(t, http.MethodGet, "/products/"+ids[0].String(), "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var product model.Product
		require.NoError(t, json.NewDecoder(w.Body).Decode(&product))
		assert.Equal(t, ids[0], product.ID)
		assert.Equal(t, "Test Product 1", product.Name)
	})

	t.Run("GET /products/{id} returns 404 for unknown product", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		w := server.do(t, http.MethodGet, "/products/"+uuid.NewString(), "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("POST /products requires an admin account", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedUser(t, testDB.Pool, "shopper@example.com", model.RoleUser)
		SeedUser(t, testDB.Pool, "admin@example.com", model.RoleAdmin)

		req := model.ProductRequest{
			Name:        "Mechanical Keyboard",
			Description: "Tenkeyless, brown switches",
			Price:       89.99,
			Category:    "Electronics",
			Stock:       12,
		}

		w := server.do(t, http.MethodPost, "/products", "", req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		shopperToken := server.login(t, "shopper@example.com")
		w = server.do(t, http.MethodPost, "/products", shopperToken, req)
		assert.Equal(t, http.StatusForbidden, w.Code)

		adminToken := server.login(t, "admin@example.com")
		w = server.do(t, http.MethodPost, "/products", adminToken, req)
		require.Equal(t, http.StatusCreated, w.Code)

		var created model.Product
		require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
		assert.NotEqual(t, uuid.Nil, created.ID)
		assert.Equal(t, "Mechanical Keyboard", created.Name)
	})

	t.Run("admin can update and delete a product", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		ids := SeedProducts(t, testDB.Pool)
		SeedUser(t, testDB.Pool, "admin2@example.com", model.RoleAdmin)
		adminToken := server.login(t, "admin2@example.com")

		newPrice := 15.00
		w := server.do(t, http.MethodPut, "/products/"+ids[0].String(), adminToken, model.ProductUpdateRequest{
			Price: &newPrice,
		})
		require.Equal(t, http.StatusOK, w.Code)

		var updated model.Product
		require.NoError(t, json.NewDecoder(w.Body).Decode(&updated))
		assert.Equal(t, 15.00, updated.Price)
		assert.Equal(t, "Test Product 1", updated.Name)

		w = server.do(t, http.MethodDelete, "/products/"+ids[0].String(), adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = server.do(t, http.MethodGet, "/products/"+ids[0].String(), "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestOrderAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	t.Run("POST /orders creates an unpaid order", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		ids := SeedProducts(t, testDB.Pool)
		SeedUser(t, testDB.Pool, "buyer@example.com", model.RoleUser)
		token := server.login(t, "buyer@example.com")

		order := server.placeOrder(t, token, ids[0])
		assert.NotEqual(t, uuid.Nil, order.ID)
		assert.False(t, order.IsPaid)
		assert.Equal(t, 49.00, order.TotalPrice)
		require.Len(t, order.Items, 1)
		assert.Equal(t, 4, order.Items[0].Quantity)
	})

	t.Run("POST /orders rejects an inconsistent total", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		ids := SeedProducts(t, testDB.Pool)
		SeedUser(t, testDB.Pool, "sneaky@example.com", model.RoleUser)
		token := server.login(t, "sneaky@example.com")

		w := server.do(t, http.MethodPost, "/orders", token, model.OrderRequest{
			Items: []model.OrderItemRequest{
				{ProductID: ids[0], Name: "Test Product 1", Quantity: 1, Price: 10.00},
			},
			ShippingAddress: model.ShippingAddress{Address: "1 Test Street", City: "Testville", PostalCode: "12345"},
			PaymentMethod:   "gateway-a",
			ItemsPrice:      10.00,
			TaxPrice:        1.00,
			ShippingPrice:   2.00,
			TotalPrice:      12.99,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("POST /orders without a token returns 401", func(t *testing.T) {
		w := server.do(t, http.MethodPost, "/orders", "", model.OrderRequest{})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("GET /orders/myorders lists only the caller's orders", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		ids := SeedProducts(t, testDB.Pool)
		SeedUser(t, testDB.Pool, "mine@example.com", model.RoleUser)
		SeedUser(t, testDB.Pool, "theirs@example.com", model.RoleUser)

		mineToken := server.login(t, "mine@example.com")
		theirsToken := server.login(t, "theirs@example.com")

		server.placeOrder(t, mineToken, ids[0])
		server.placeOrder(t, mineToken, ids[1])
		server.placeOrder(t, theirsToken, ids[2])

		w := server.do(t, http.MethodGet, "/orders/myorders", mineToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var orders []model.Order
		require.NoError(t, json.NewDecoder(w.Body).Decode(&orders))
		assert.Len(t, orders, 2)
	})

	t.Run("GET /orders/{id} enforces ownership", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		ids := SeedProducts(t, testDB.Pool)
		owner := SeedUser(t, testDB.Pool, "owner@example.com", model.RoleUser)
		SeedUser(t, testDB.Pool, "stranger@example.com", model.RoleUser)
		SeedUser(t, testDB.Pool, "boss@example.com", model.RoleAdmin)

		ownerToken := server.login(t, "owner@example.com")
		strangerToken := server.login(t, "stranger@example.com")
		adminToken := server.login(t, "boss@example.com")

		order := server.placeOrder(t, ownerToken, ids[0])
		path := "/orders/" + order.ID.String()

		w := server.do(t, http.MethodGet, path, ownerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var detail model.OrderDetail
		require.NoError(t, json.NewDecoder(w.Body).Decode(&detail))
		assert.Equal(t, order.ID, detail.ID)
		assert.Equal(t, owner.ID, detail.User.ID)
		assert.Equal(t, "owner@example.com", detail.User.Email)

		w = server.do(t, http.MethodGet, path, strangerToken, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = server.do(t, http.MethodGet, path, adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = server.do(t, http.MethodGet, "/orders/"+uuid.NewString(), ownerToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPaymentAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	t.Run("signature verification marks the order paid once", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		ids := SeedProducts(t, testDB.Pool)
		SeedUser(t, testDB.Pool, "payer@example.com", model.RoleUser)
		token := server.login(t, "payer@example.com")

		order := server.placeOrder(t, token, ids[0])

		callback := model.SignatureVerifyRequest{
			ExternalOrderID:   "order_ext_1",
			ExternalPaymentID: "pay_ext_1",
			Signature:         server.signGW.Sign("order_ext_1", "pay_ext_1"),
			OrderID:           order.ID,
		}

		w := server.do(t, http.MethodPost, "/payments/gateway-a/verify-payment", token, callback)
		require.Equal(t, http.StatusOK, w.Code)

		var resp model.PaymentVerifyResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "success", resp.Status)
		assert.False(t, resp.AlreadyPaid)

		w = server.do(t, http.MethodGet, "/orders/"+order.ID.String(), token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var detail model.OrderDetail
		require.NoError(t, json.NewDecoder(w.Body).Decode(&detail))
		assert.True(t, detail.IsPaid)
		require.NotNil(t, detail.PaymentResult)
		assert.Equal(t, "pay_ext_1", detail.PaymentResult.ID)

		// A replayed callback converges on the same paid state.
		w = server.do(t, http.MethodPost, "/payments/gateway-a/verify-payment", token, callback)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "success", resp.Status)
		assert.True(t, resp.AlreadyPaid)
	})

	t.Run("tampered signature leaves the order unpaid", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		ids := SeedProducts(t, testDB.Pool)
		SeedUser(t, testDB.Pool, "victim@example.com", model.RoleUser)
		token := server.login(t, "victim@example.com")

		order := server.placeOrder(t, token, ids[0])

		w := server.do(t, http.MethodPost, "/payments/gateway-a/verify-payment", token, model.SignatureVerifyRequest{
			ExternalOrderID:   "order_ext_2",
			ExternalPaymentID: "pay_ext_2",
			Signature:         "deadbeef",
			OrderID:           order.ID,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = server.do(t, http.MethodGet, "/orders/"+order.ID.String(), token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var detail model.OrderDetail
		require.NoError(t, json.NewDecoder(w.Body).Decode(&detail))
		assert.False(t, detail.IsPaid)
	})

	t.Run("dev bypass marks the order paid", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		ids := SeedProducts(t, testDB.Pool)
		SeedUser(t, testDB.Pool, "dev@example.com", model.RoleUser)
		token := server.login(t, "dev@example.com")

		order := server.placeOrder(t, token, ids[0])

		w := server.do(t, http.MethodPost, "/payments/dev/mark-paid", "", model.DevMarkPaidRequest{
			OrderID: order.ID,
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = server.do(t, http.MethodGet, "/orders/"+order.ID.String(), token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var detail model.OrderDetail
		require.NoError(t, json.NewDecoder(w.Body).Decode(&detail))
		assert.True(t, detail.IsPaid)
		require.NotNil(t, detail.PaidAt)
	})

	t.Run("gateway routes require authentication", func(t *testing.T) {
		w := server.do(t, http.MethodPost, "/payments/gateway-a/create-order", "", model.SignatureOrderRequest{Amount: 49.00})
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = server.do(t, http.MethodGet, "/payments/gateway-b/verify/order_1", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
