package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/pizzaria-client-go/internal/app"
	"github.com/boddenberg/pizzaria-client-go/internal/cart"
	"github.com/boddenberg/pizzaria-client-go/internal/domain"
	"github.com/boddenberg/pizzaria-client-go/internal/infra/notify"
	"github.com/boddenberg/pizzaria-client-go/internal/infra/observability"
	"github.com/boddenberg/pizzaria-client-go/internal/orders"
	"github.com/boddenberg/pizzaria-client-go/internal/service"
	"github.com/boddenberg/pizzaria-client-go/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// HealthChecker reports the health of the backend connection.
type HealthChecker interface {
	Health() domain.ServiceHealth
}

// Deps groups everything the local API drives.
// Only Metrics and Logger are required for the operational endpoints.
type Deps struct {
	App      *app.App
	Session  *session.Store
	Cart     *cart.Store
	Orders   *orders.Poller
	Catalog  *service.Catalog
	Checkout *service.Checkout
	Admin    *service.Admin
	Platform *service.Platform
	Feed     *notify.Feed
	Health   HealthChecker
	Metrics  *observability.Metrics
	Logger   *zap.Logger

	// AllowedOrigins are the view-layer origins allowed to call the API.
	AllowedOrigins []string
}

// NewRouter creates the HTTP router with all routes and middleware.
// The local API is what the view layer calls; it never talks to the
// backend directly.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	if len(d.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: d.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", "Traceparent"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(d.Health))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{}))

	if d.App == nil {
		return r
	}

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// 1. Navegação
		// POST /v1/navigate
		// =============================================
		r.Post("/navigate", navigateHandler(d.App, logger))

		// =============================================
		// 2. Sessão
		// GET  /v1/session
		// POST /v1/session/login | register | logout
		// PUT  /v1/session/profile
		// =============================================
		r.Get("/session", getSessionHandler(d.Session))
		r.Post("/session/login", loginHandler(d.App, logger))
		r.Post("/session/register", registerHandler(d.App, logger))
		r.Post("/session/logout", logoutHandler(d.App, logger))
		r.With(RequireSession(d.Session, logger)).
			Put("/session/profile", updateProfileHandler(d.Session, d.Feed, logger))

		// =============================================
		// 3. Cardápio e carrinho
		// =============================================
		r.Get("/menu", getMenuHandler(d.App, d.Catalog, logger))
		r.Get("/cart", getCartHandler(d.Cart))
		r.Post("/cart/items", addCartItemHandler(d.App, d.Catalog, d.Cart, logger))
		r.Put("/cart/items/{productId}", setCartItemHandler(d.Cart, logger))
		r.Delete("/cart/items/{productId}", removeCartItemHandler(d.Cart, logger))
		r.Delete("/cart", clearCartHandler(d.Cart, logger))

		// =============================================
		// 4. Checkout e pedidos (login obrigatório)
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(RequireSession(d.Session, logger))

			r.Get("/checkout/quote", quoteHandler(d.Checkout, logger))
			r.Post("/checkout", submitOrderHandler(d.Checkout, d.Feed, logger))

			r.Get("/orders", listOrdersHandler(d.Orders))
			r.Get("/orders/{orderId}", getOrderHandler(d.Orders))
			r.Post("/orders/{orderId}/cancel", cancelOrderHandler(d.Orders, d.Feed, logger))
			r.Post("/orders/{orderId}/reorder", reorderHandler(d.Checkout, d.Cart, logger))

			// =============================================
			// 5. Administração da pizzaria
			// =============================================
			r.Get("/admin/products", adminListProductsHandler(d.Admin, logger))
			r.Put("/admin/products/{productId}", adminUpdateProductHandler(d.Admin, d.Feed, logger))
			r.Get("/admin/tenant", adminGetTenantHandler(d.Admin, logger))
			r.Put("/admin/tenant", adminUpdateTenantHandler(d.Admin, d.Feed, logger))

			// =============================================
			// 6. Plataforma (super-admin)
			// =============================================
			r.Get("/platform/tenants", listTenantsHandler(d.Platform, logger))
			r.Post("/platform/tenants", createTenantHandler(d.Platform, d.Feed, logger))
		})

		// =============================================
		// 7. Notificações e métricas
		// =============================================
		r.Get("/notifications", notificationsHandler(d.Feed))
		r.Get("/metrics/client", clientMetricsHandler(d.Metrics))
	})

	return r
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler(health HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)
		services := []domain.ServiceHealth{
			{Name: "pizzaria-client", Status: "healthy", LastChecked: now},
		}
		if health != nil {
			services = append(services, health.Health())
		}

		overall := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overall = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overall = "degraded"
			}
		}

		status := http.StatusOK
		if overall == "unhealthy" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, domain.HealthStatus{Status: overall, Services: services})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func notificationsHandler(feed *notify.Feed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, feed.Drain())
	}
}

func clientMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetClientSnapshot())
	}
}
