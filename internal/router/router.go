package router

import (
	"net/http"
	"strings"

	"storefront/internal/auth"
	"storefront/internal/handler"
	"storefront/internal/middleware"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// Config carries the collaborators the router needs to assemble the HTTP
// surface.
type Config struct {
	Auth     *handler.AuthHandler
	Products *handler.ProductHandler
	Orders   *handler.OrderHandler
	Payments *handler.PaymentHandler

	TokenIssuer *auth.TokenIssuer
	UserRepo    repository.UserRepository

	// DevPaymentBypass registers the development-only mark-paid route. Off
	// in production, which leaves the path a plain 404.
	DevPaymentBypass bool

	Logger zerolog.Logger
}

// New creates a new HTTP router with all routes and middleware configured.
func New(cfg Config) http.Handler {
	mux := http.NewServeMux()
	logger := cfg.Logger

	authed := middleware.BearerAuth(cfg.TokenIssuer, cfg.UserRepo, logger)
	admin := middleware.AdminOnly(logger)

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Public auth endpoints
	mux.HandleFunc("/auth/register", cfg.Auth.Register)
	mux.HandleFunc("/auth/login", cfg.Auth.Login)

	// Catalogue: reads are public, writes require an admin account
	createProduct := authed(admin(http.HandlerFunc(cfg.Products.Create)))
	createBulk := authed(admin(http.HandlerFunc(cfg.Products.CreateBulk)))
	updateProduct := authed(admin(http.HandlerFunc(cfg.Products.Update)))
	deleteProduct := authed(admin(http.HandlerFunc(cfg.Products.Delete)))

	productRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/products/bulk" {
			createBulk.ServeHTTP(w, r)
			return
		}

		if r.URL.Path == "/products" || r.URL.Path == "/products/" {
			switch r.Method {
			case http.MethodGet:
				cfg.Products.GetAll(w, r)
			case http.MethodPost:
				createProduct.ServeHTTP(w, r)
			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}
			return
		}

		// /products/{id}
		switch r.Method {
		case http.MethodGet:
			cfg.Products.GetByID(w, r)
		case http.MethodPut:
			updateProduct.ServeHTTP(w, r)
		case http.MethodDelete:
			deleteProduct.ServeHTTP(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}

	mux.HandleFunc("/products", productRouteHandler)
	mux.HandleFunc("/products/", productRouteHandler)

	// Orders: everything requires authentication
	orderRouteHandler := authed(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && (r.URL.Path == "/orders" || r.URL.Path == "/orders/") {
			cfg.Orders.Create(w, r)
			return
		}

		// The fixed segment is matched before the ID route so that
		// "myorders" is never treated as an order ID.
		if r.URL.Path == "/orders/myorders" {
			cfg.Orders.ListMine(w, r)
			return
		}

		if strings.HasPrefix(r.URL.Path, "/orders/") && r.URL.Path != "/orders/" {
			cfg.Orders.GetByID(w, r)
			return
		}

		http.Error(w, "not found", http.StatusNotFound)
	}))

	mux.Handle("/orders", orderRouteHandler)
	mux.Handle("/orders/", orderRouteHandler)

	// Payments: gateway routes require authentication; the dev bypass is
	// deliberately unauthenticated and only registered outside production
	createSignatureOrder := authed(http.HandlerFunc(cfg.Payments.CreateSignatureOrder))
	verifySignature := authed(http.HandlerFunc(cfg.Payments.VerifySignaturePayment))
	createPollingOrder := authed(http.HandlerFunc(cfg.Payments.CreatePollingOrder))
	verifyPolling := authed(http.HandlerFunc(cfg.Payments.VerifyPollingPayment))

	paymentRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/payments/gateway-a/create-order":
			createSignatureOrder.ServeHTTP(w, r)
		case r.URL.Path == "/payments/gateway-a/verify-payment":
			verifySignature.ServeHTTP(w, r)
		case r.URL.Path == "/payments/gateway-b/create-order":
			createPollingOrder.ServeHTTP(w, r)
		case strings.HasPrefix(r.URL.Path, "/payments/gateway-b/verify/"):
			verifyPolling.ServeHTTP(w, r)
		case r.URL.Path == "/payments/dev/mark-paid" && cfg.DevPaymentBypass:
			cfg.Payments.MarkPaidDev(w, r)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}

	mux.HandleFunc("/payments/", paymentRouteHandler)

	// Apply middleware in order: Recovery -> Logging -> CORS
	var h http.Handler = mux
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
