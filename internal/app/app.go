// Package app is the navigation shell: it resolves the tenant of every
// path once and hands it to the session, cart, gate and order poller.
package app

import (
	"context"
	"sync"

	"github.com/boddenberg/pizzaria-client-go/internal/cart"
	"github.com/boddenberg/pizzaria-client-go/internal/domain"
	"github.com/boddenberg/pizzaria-client-go/internal/gate"
	"github.com/boddenberg/pizzaria-client-go/internal/infra/observability"
	"github.com/boddenberg/pizzaria-client-go/internal/orders"
	"github.com/boddenberg/pizzaria-client-go/internal/session"
	"github.com/boddenberg/pizzaria-client-go/internal/tenant"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("app")

// NavigationResult is what the view layer renders after a navigation.
type NavigationResult struct {
	Path     string              `json:"path"`
	Tenant   domain.TenantID     `json:"tenantId,omitempty"`
	View     tenant.View         `json:"view"`
	Decision gate.Decision       `json:"decision"`
	User     *domain.UserProfile `json:"user,omitempty"`
	Cart     cart.Snapshot       `json:"cart"`
}

// App owns the stores for the lifetime of the process.
type App struct {
	session *session.Store
	cart    *cart.Store
	poller  *orders.Poller
	metrics *observability.Metrics
	logger  *zap.Logger

	// Parent of the poller goroutine; outlives any single request.
	baseCtx    context.Context
	cancelBase context.CancelFunc

	mu    sync.Mutex
	route tenant.Route
	path  string
}

// New creates the shell. Close must be called on shutdown.
func New(sess *session.Store, crt *cart.Store, poller *orders.Poller, metrics *observability.Metrics, logger *zap.Logger) *App {
	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		session:    sess,
		cart:       crt,
		poller:     poller,
		metrics:    metrics,
		logger:     logger,
		baseCtx:    ctx,
		cancelBase: cancel,
		route:      tenant.Route{View: tenant.ViewHome},
		path:       "/",
	}
}

// Navigate applies a path change: resolve, reconcile the session, load the
// tenant's cart when the tenant changed, gate the view and start or stop
// the order poller.
func (a *App) Navigate(ctx context.Context, path string) NavigationResult {
	ctx, span := tracer.Start(ctx, "App.Navigate")
	defer span.End()

	a.mu.Lock()
	defer a.mu.Unlock()

	route := tenant.ParseRoute(path)
	span.SetAttributes(
		attribute.String("tenant.id", route.Tenant.String()),
		attribute.String("view", string(route.View)),
	)

	a.session.Reconcile(ctx, route.Tenant)

	if route.Tenant != a.cart.Tenant() {
		if route.Tenant == "" {
			a.cart.Unload()
		} else if err := a.cart.LoadForTenant(ctx, route.Tenant); err != nil {
			a.logger.Warn("navigate: cart load failed, starting empty",
				zap.String("tenant_id", route.Tenant.String()),
				zap.Error(err),
			)
		}
	}

	sess := a.session.Current()
	decision := gate.Evaluate(route, sess)
	if a.metrics != nil {
		a.metrics.IncrGateDecision(string(decision.Outcome))
	}

	if route.View == tenant.ViewOrders && decision.Outcome == gate.Allow {
		a.poller.Start(a.baseCtx, route.Tenant)
	} else {
		a.poller.Stop()
	}

	a.route = route
	a.path = path
	a.logger.Debug("navigated",
		zap.String("path", path),
		zap.String("tenant_id", route.Tenant.String()),
		zap.String("view", string(route.View)),
		zap.String("outcome", string(decision.Outcome)),
	)

	canonical := route.Path()
	if canonical == "" {
		canonical = path
	}
	return NavigationResult{
		Path:     canonical,
		Tenant:   route.Tenant,
		View:     route.View,
		Decision: decision,
		User:     sess.User,
		Cart:     a.cart.Snapshot(),
	}
}

// Route returns the current route.
func (a *App) Route() tenant.Route {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.route
}

// Tenant returns the tenant of the current route.
func (a *App) Tenant() domain.TenantID {
	return a.Route().Tenant
}

// Refresh re-evaluates the current route, e.g. after login or logout.
func (a *App) Refresh(ctx context.Context) NavigationResult {
	a.mu.Lock()
	path := a.path
	a.mu.Unlock()
	return a.Navigate(ctx, path)
}

// Login authenticates against the current tenant and navigates to the
// landing view of the user.
func (a *App) Login(ctx context.Context, email, password string) (NavigationResult, error) {
	_, target, err := a.session.Login(ctx, a.Tenant(), email, password)
	if err != nil {
		return NavigationResult{}, err
	}
	return a.Navigate(ctx, target), nil
}

// Register creates an account on the current tenant and navigates to the
// landing view.
func (a *App) Register(ctx context.Context, req *domain.RegisterRequest) (NavigationResult, error) {
	_, target, err := a.session.Register(ctx, a.Tenant(), req)
	if err != nil {
		return NavigationResult{}, err
	}
	return a.Navigate(ctx, target), nil
}

// Logout ends the session and re-gates the current view.
func (a *App) Logout(ctx context.Context) (NavigationResult, error) {
	err := a.session.Logout(ctx)
	res := a.Refresh(ctx)
	return res, err
}

// Close stops the poller. The stores stay usable.
func (a *App) Close() {
	a.poller.Stop()
	a.cancelBase()
}
