// Package orders keeps the user's order list in sync with the backend while
// the order-tracking view is open.
package orders

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/boddenberg/pizzaria-client-go/internal/domain"
	"github.com/boddenberg/pizzaria-client-go/internal/infra/observability"
	"github.com/boddenberg/pizzaria-client-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("orders")

// DefaultInterval is the refresh period of the order list.
const DefaultInterval = 30 * time.Second

// SessionSource supplies the bearer token and is told when the backend
// rejects it.
type SessionSource interface {
	Token() string
	Expire(ctx context.Context)
}

// View is an order as displayed. PendingConfirmation marks a local
// cancellation the next fetch has not confirmed yet.
type View struct {
	domain.Order
	PendingConfirmation bool `json:"pendingConfirmation,omitempty"`
}

// Snapshot is the order-tracking view model.
type Snapshot struct {
	Tenant    domain.TenantID `json:"tenantId"`
	Current   *View           `json:"current,omitempty"`
	Past      []View          `json:"past"`
	Loaded    bool            `json:"loaded"`
	Polling   bool            `json:"polling"`
	FetchedAt time.Time       `json:"fetchedAt,omitempty"`
	LastError string          `json:"lastError,omitempty"`
}

// overlayEntry is a local status patch. gen orders it against fetches.
type overlayEntry struct {
	status domain.OrderStatus
	gen    uint64
}

// Poller fetches the order list on start and then every interval until
// stopped.
type Poller struct {
	api      port.OrderAPI
	session  SessionSource
	interval time.Duration
	metrics  *observability.Metrics
	logger   *zap.Logger

	mu        sync.Mutex
	tenant    domain.TenantID
	token     string
	orders    []domain.Order
	overlay   map[string]overlayEntry
	gen       uint64
	loaded    bool
	fetchedAt time.Time
	lastErr   error
	cancel    context.CancelFunc
	running   bool
	wg        sync.WaitGroup
}

// NewPoller creates a stopped poller. A non-positive interval uses
// DefaultInterval.
func NewPoller(api port.OrderAPI, session SessionSource, interval time.Duration, metrics *observability.Metrics, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		api:      api,
		session:  session,
		interval: interval,
		metrics:  metrics,
		logger:   logger,
		overlay:  make(map[string]overlayEntry),
	}
}

// Start begins polling for tenantID. The goroutine lives until Stop, until
// ctx is cancelled, or until the backend rejects the session. Starting an
// already running poller for the same tenant and session is a no-op; a new
// session restarts it with an empty list.
func (p *Poller) Start(ctx context.Context, tenantID domain.TenantID) {
	token := p.session.Token()

	p.mu.Lock()
	if p.running && p.tenant == tenantID && p.token == token {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	p.Stop()

	loopCtx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	p.tenant = tenantID
	p.token = token
	p.cancel = cancel
	p.running = true
	p.wg.Add(1)
	p.mu.Unlock()

	go p.loop(loopCtx, tenantID)
	p.logger.Debug("order poller started", zap.String("tenant_id", tenantID.String()))
}

// Stop cancels polling, waits for the goroutine to exit and drops the
// cached list.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	wasRunning := p.running
	p.cancel = nil
	p.running = false
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	p.reset()
	p.mu.Unlock()

	if wasRunning {
		p.logger.Debug("order poller stopped")
	}
}

func (p *Poller) loop(ctx context.Context, tenantID domain.TenantID) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if expired := p.fetch(ctx, tenantID); expired {
			p.mu.Lock()
			p.running = false
			p.mu.Unlock()
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// fetch loads the list once. It reports true when the session was rejected.
func (p *Poller) fetch(ctx context.Context, tenantID domain.TenantID) bool {
	ctx, span := tracer.Start(ctx, "Orders.fetch")
	defer span.End()
	span.SetAttributes(attribute.String("tenant.id", tenantID.String()))

	token := p.session.Token()
	if token == "" {
		return true
	}

	p.mu.Lock()
	started := p.gen
	p.mu.Unlock()

	list, err := p.api.ListUserOrders(ctx, token, tenantID)
	if ctx.Err() != nil {
		return false
	}
	if err != nil {
		if p.metrics != nil {
			p.metrics.IncrOrderPoll("error")
		}
		if domain.IsSessionExpired(err) {
			p.logger.Info("order poll: session rejected", zap.String("tenant_id", tenantID.String()))
			p.session.Expire(ctx)
			return true
		}
		p.logger.Warn("order poll failed", zap.String("tenant_id", tenantID.String()), zap.Error(err))
		p.mu.Lock()
		p.lastErr = err
		p.mu.Unlock()
		return false
	}

	sorted := make([]domain.Order, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	p.mu.Lock()
	if p.tenant == tenantID && p.token == token {
		p.orders = sorted
		// Patches made while this request was in flight survive it.
		for id, e := range p.overlay {
			if e.gen <= started {
				delete(p.overlay, id)
			}
		}
		p.loaded = true
		p.fetchedAt = time.Now()
		p.lastErr = nil
	}
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.IncrOrderPoll("success")
	}
	return false
}

// Cancel cancels a pending order after the user confirmed. Orders that are
// no longer Pendente are rejected without a network call. On success the
// order is shown as Cancelado until the next fetch; on failure nothing
// changes.
func (p *Poller) Cancel(ctx context.Context, orderID string, confirmed bool) error {
	ctx, span := tracer.Start(ctx, "Orders.Cancel")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", orderID))

	if !confirmed {
		return &domain.ErrValidation{Field: "confirm", Message: "confirme o cancelamento"}
	}

	p.mu.Lock()
	view, ok := p.findLocked(orderID)
	p.mu.Unlock()
	if !ok {
		return &domain.ErrNotFound{Resource: "order", ID: orderID}
	}
	if !view.Status.Cancellable() {
		return &domain.ErrConflict{Message: "pedido com status " + string(view.Status) + " não pode ser cancelado"}
	}

	token := p.session.Token()
	if token == "" {
		return &domain.ErrAuth{Message: "Faça login para cancelar pedidos"}
	}

	if err := p.api.CancelOrder(ctx, token, orderID); err != nil {
		if domain.IsSessionExpired(err) {
			p.session.Expire(ctx)
		}
		p.logger.Warn("cancel order failed", zap.String("order_id", orderID), zap.Error(err))
		return err
	}

	p.mu.Lock()
	p.gen++
	p.overlay[orderID] = overlayEntry{status: domain.OrderStatusCancelled, gen: p.gen}
	p.mu.Unlock()

	p.logger.Info("order cancelled", zap.String("order_id", orderID))
	return nil
}

// Order returns one cached order with any local patch applied.
func (p *Poller) Order(orderID string) (View, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.findLocked(orderID)
}

// Snapshot splits the cached list into the most recent order and the rest.
func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap := Snapshot{
		Tenant:    p.tenant,
		Past:      []View{},
		Loaded:    p.loaded,
		Polling:   p.running,
		FetchedAt: p.fetchedAt,
	}
	if p.lastErr != nil {
		snap.LastError = p.lastErr.Error()
	}

	views := p.viewsLocked()
	if len(views) > 0 {
		cur := views[0]
		snap.Current = &cur
		snap.Past = views[1:]
	}
	return snap
}

// Filter searches the cached list by order id or product name and by
// status. It never fetches.
func (p *Poller) Filter(term string, status domain.OrderStatus) []View {
	p.mu.Lock()
	views := p.viewsLocked()
	p.mu.Unlock()

	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]View, 0, len(views))
	for _, v := range views {
		if status != "" && v.Status != status {
			continue
		}
		if term != "" && !matches(v.Order, term) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func matches(o domain.Order, term string) bool {
	if strings.Contains(strings.ToLower(o.ID), term) {
		return true
	}
	for _, it := range o.Items {
		if strings.Contains(strings.ToLower(it.Product.Name), term) {
			return true
		}
	}
	return false
}

func (p *Poller) viewsLocked() []View {
	out := make([]View, 0, len(p.orders))
	for _, o := range p.orders {
		out = append(out, p.viewLocked(o))
	}
	return out
}

func (p *Poller) viewLocked(o domain.Order) View {
	v := View{Order: o}
	if e, ok := p.overlay[o.ID]; ok {
		v.Status = e.status
		v.PendingConfirmation = true
	}
	return v
}

func (p *Poller) findLocked(orderID string) (View, bool) {
	for _, o := range p.orders {
		if o.ID == orderID {
			return p.viewLocked(o), true
		}
	}
	return View{}, false
}

func (p *Poller) reset() {
	p.token = ""
	p.orders = nil
	p.overlay = make(map[string]overlayEntry)
	p.loaded = false
	p.fetchedAt = time.Time{}
	p.lastErr = nil
}
