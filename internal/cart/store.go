// Package cart holds the tenant-scoped shopping cart.
//
// The cart of tenant T is persisted under "cart_<T>". The in-memory copy is
// replaced only after the persistent write succeeds, so memory and storage
// never diverge.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/boddenberg/pizzaria-client-go/internal/domain"
	"github.com/boddenberg/pizzaria-client-go/internal/infra/notify"
	"github.com/boddenberg/pizzaria-client-go/internal/infra/observability"
	"github.com/boddenberg/pizzaria-client-go/internal/port"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("cart")

// Key returns the storage key of a tenant's cart.
func Key(tenantID domain.TenantID) string {
	return "cart_" + tenantID.String()
}

// Snapshot is a read-only view of the cart.
type Snapshot struct {
	Tenant domain.TenantID   `json:"tenantId"`
	Items  []domain.CartItem `json:"items"`
	Total  decimal.Decimal   `json:"total"`
	Count  int               `json:"count"`
}

// Store is the cart of the currently resolved tenant.
type Store struct {
	mu       sync.Mutex
	storage  port.Storage
	notifier port.Notifier
	metrics  *observability.Metrics
	logger   *zap.Logger

	tenant domain.TenantID
	items  []domain.CartItem
}

// NewStore creates an empty cart with no tenant loaded.
func NewStore(storage port.Storage, notifier port.Notifier, metrics *observability.Metrics, logger *zap.Logger) *Store {
	return &Store{
		storage:  storage,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
	}
}

// LoadForTenant replaces the in-memory cart with the persisted cart of
// tenantID, or an empty one. On a storage failure the cart is still switched
// to tenantID (empty) and the error is returned.
func (s *Store) LoadForTenant(ctx context.Context, tenantID domain.TenantID) error {
	ctx, span := tracer.Start(ctx, "Cart.LoadForTenant")
	defer span.End()
	span.SetAttributes(attribute.String("tenant.id", tenantID.String()))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tenant = tenantID
	s.items = nil

	items, err := s.read(ctx, tenantID)
	if err != nil {
		return err
	}
	s.items = items
	return nil
}

// Unload forgets the in-memory cart, used when no tenant is resolved.
func (s *Store) Unload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tenant = ""
	s.items = nil
}

// Add puts one unit of product in the cart: an existing line is incremented,
// otherwise a new line with quantity 1 is appended.
func (s *Store) Add(ctx context.Context, product domain.Product) error {
	ctx, span := tracer.Start(ctx, "Cart.Add")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", product.ID))

	if product.ID == "" {
		return &domain.ErrValidation{Field: "productId", Message: "produto inválido"}
	}
	if product.Price.IsNegative() {
		return &domain.ErrValidation{Field: "price", Message: "preço não pode ser negativo"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireTenant(); err != nil {
		return err
	}
	if product.TenantID != "" && product.TenantID != s.tenant {
		return &domain.ErrTenantMismatch{SessionTenant: product.TenantID, RouteTenant: s.tenant}
	}

	next := cloneItems(s.items)
	found := false
	for i := range next {
		if next[i].ProductID == product.ID {
			next[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		next = append(next, domain.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  1,
		})
	}

	if err := s.commit(ctx, next, "add"); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, notify.KindSuccess, fmt.Sprintf("%s adicionado ao carrinho", product.Name))
	}
	return nil
}

// ReplaceAll overwrites the cart with items (reorder). Lines sharing a
// productId are merged in first-seen order.
func (s *Store) ReplaceAll(ctx context.Context, items []domain.CartItem) error {
	ctx, span := tracer.Start(ctx, "Cart.ReplaceAll")
	defer span.End()
	span.SetAttributes(attribute.Int("cart.items", len(items)))

	next, err := normalize(items)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireTenant(); err != nil {
		return err
	}
	return s.commit(ctx, next, "replace")
}

// SetQuantity changes the quantity of a line; qty <= 0 removes it.
func (s *Store) SetQuantity(ctx context.Context, productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireTenant(); err != nil {
		return err
	}

	idx := indexOf(s.items, productID)
	if idx < 0 {
		return &domain.ErrNotFound{Resource: "cart item", ID: productID}
	}

	next := cloneItems(s.items)
	if qty <= 0 {
		next = append(next[:idx], next[idx+1:]...)
	} else {
		next[idx].Quantity = qty
	}
	return s.commit(ctx, next, "set_quantity")
}

// Remove drops a line from the cart.
func (s *Store) Remove(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireTenant(); err != nil {
		return err
	}

	idx := indexOf(s.items, productID)
	if idx < 0 {
		return &domain.ErrNotFound{Resource: "cart item", ID: productID}
	}
	next := cloneItems(s.items)
	next = append(next[:idx], next[idx+1:]...)
	return s.commit(ctx, next, "remove")
}

// Clear empties the current tenant's cart and persists the empty cart.
// Without a loaded tenant only memory is reset.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tenant == "" {
		s.items = nil
		return nil
	}
	return s.commit(ctx, []domain.CartItem{}, "clear")
}

// ClearFor empties the persisted cart of tenantID, and the in-memory cart
// too when tenantID is the loaded tenant.
func (s *Store) ClearFor(ctx context.Context, tenantID domain.TenantID) error {
	if tenantID == "" {
		return s.Clear(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if tenantID == s.tenant {
		return s.commit(ctx, []domain.CartItem{}, "clear")
	}
	if err := s.write(ctx, tenantID, []domain.CartItem{}); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.IncrCartMutation("clear")
	}
	return nil
}

// Tenant returns the tenant whose cart is loaded.
func (s *Store) Tenant() domain.TenantID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tenant
}

// Items returns a copy of the cart lines in order.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// Snapshot returns the cart with its total.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := cloneItems(s.items)
	count := 0
	for _, it := range items {
		count += it.Quantity
	}
	return Snapshot{
		Tenant: s.tenant,
		Items:  items,
		Total:  domain.CartTotal(items),
		Count:  count,
	}
}

// commit persists next for the loaded tenant, then swaps it in.
// Callers hold s.mu.
func (s *Store) commit(ctx context.Context, next []domain.CartItem, op string) error {
	if err := s.write(ctx, s.tenant, next); err != nil {
		return err
	}
	s.items = next
	if s.metrics != nil {
		s.metrics.IncrCartMutation(op)
	}
	s.logger.Debug("cart updated",
		zap.String("op", op),
		zap.String("tenant_id", s.tenant.String()),
		zap.Int("items", len(next)),
	)
	return nil
}

func (s *Store) write(ctx context.Context, tenantID domain.TenantID, items []domain.CartItem) error {
	if items == nil {
		items = []domain.CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.storage.Set(ctx, Key(tenantID), data); err != nil {
		s.logger.Error("cart: persist failed",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}

func (s *Store) read(ctx context.Context, tenantID domain.TenantID) ([]domain.CartItem, error) {
	data, ok, err := s.storage.Get(ctx, Key(tenantID))
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if !ok || len(data) == 0 {
		return nil, nil
	}

	var items []domain.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.Warn("cart: discarding unreadable cart",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
		return nil, nil
	}

	valid, err := normalize(items)
	if err != nil {
		s.logger.Warn("cart: discarding invalid cart",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
		return nil, nil
	}
	return valid, nil
}

func (s *Store) requireTenant() error {
	if s.tenant == "" {
		return &domain.ErrValidation{Field: "tenantId", Message: "nenhuma pizzaria selecionada"}
	}
	return nil
}

// normalize validates lines and merges duplicates by productId.
func normalize(items []domain.CartItem) ([]domain.CartItem, error) {
	out := make([]domain.CartItem, 0, len(items))
	for _, it := range items {
		switch {
		case it.ProductID == "":
			return nil, &domain.ErrValidation{Field: "productId", Message: "produto inválido"}
		case it.Quantity <= 0:
			return nil, &domain.ErrValidation{Field: "quantity", Message: "quantidade deve ser positiva"}
		case it.Price.IsNegative():
			return nil, &domain.ErrValidation{Field: "price", Message: "preço não pode ser negativo"}
		}

		if idx := indexOf(out, it.ProductID); idx >= 0 {
			out[idx].Quantity += it.Quantity
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func indexOf(items []domain.CartItem, productID string) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func cloneItems(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out
}
