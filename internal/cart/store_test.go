package cart_test

import (
	"context"
	"errors"
	"testing"

	"github.com/boddenberg/pizzaria-client-go/internal/cart"
	"github.com/boddenberg/pizzaria-client-go/internal/domain"
	"github.com/boddenberg/pizzaria-client-go/internal/infra/notify"
	"github.com/boddenberg/pizzaria-client-go/internal/infra/observability"
	"github.com/boddenberg/pizzaria-client-go/internal/infra/storage"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// failingStorage wraps Memory and fails writes when failSet is true.
type failingStorage struct {
	*storage.Memory
	failSet bool
	failGet bool
}

func (f *failingStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.failGet {
		return nil, false, errors.New("disk unavailable")
	}
	return f.Memory.Get(ctx, key)
}

func (f *failingStorage) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet {
		return errors.New("quota exceeded")
	}
	return f.Memory.Set(ctx, key, value)
}

func margherita() domain.Product {
	return domain.Product{
		ID:        "p1",
		Name:      "Margherita",
		Price:     decimal.RequireFromString("42.50"),
		Available: true,
		TenantID:  "acme-pizza",
	}
}

func newStore(t *testing.T, st *failingStorage) (*cart.Store, *notify.Feed, *observability.Metrics) {
	t.Helper()
	feed := notify.NewFeed(10, zap.NewNop())
	metrics := observability.NewMetrics()
	s := cart.NewStore(st, feed, metrics, zap.NewNop())
	if err := s.LoadForTenant(context.Background(), "acme-pizza"); err != nil {
		t.Fatalf("load: %v", err)
	}
	return s, feed, metrics
}

func TestAdd_TwiceIncrementsQuantity(t *testing.T) {
	st := &failingStorage{Memory: storage.NewMemory()}
	s, feed, metrics := newStore(t, st)
	ctx := context.Background()

	if err := s.Add(ctx, margherita()); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add(ctx, margherita()); err != nil {
		t.Fatalf("add: %v", err)
	}

	items := s.Items()
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("expected one line with qty 2, got %+v", items)
	}
	if got := s.Snapshot().Total.String(); got != "85" {
		t.Errorf("expected total 85, got %s", got)
	}
	if got := metrics.CartMutations("add"); got != 2 {
		t.Errorf("expected 2 add mutations, got %v", got)
	}
	if n := len(feed.Drain()); n != 2 {
		t.Errorf("expected 2 notifications, got %d", n)
	}
}

func TestAdd_PersistsAndReloads(t *testing.T) {
	st := &failingStorage{Memory: storage.NewMemory()}
	s, _, _ := newStore(t, st)
	ctx := context.Background()

	if err := s.Add(ctx, margherita()); err != nil {
		t.Fatalf("add: %v", err)
	}

	reloaded := cart.NewStore(st, nil, nil, zap.NewNop())
	if err := reloaded.LoadForTenant(ctx, "acme-pizza"); err != nil {
		t.Fatalf("load: %v", err)
	}
	items := reloaded.Items()
	if len(items) != 1 || items[0].ProductID != "p1" || items[0].Quantity != 1 {
		t.Fatalf("unexpected reloaded cart %+v", items)
	}
}

func TestAdd_PersistFailureLeavesMemoryUntouched(t *testing.T) {
	st := &failingStorage{Memory: storage.NewMemory()}
	s, feed, _ := newStore(t, st)
	ctx := context.Background()

	st.failSet = true
	if err := s.Add(ctx, margherita()); err == nil {
		t.Fatal("expected persist error")
	}
	if len(s.Items()) != 0 {
		t.Errorf("memory must not change when persist fails, got %+v", s.Items())
	}
	if n := len(feed.Drain()); n != 0 {
		t.Errorf("expected no notification, got %d", n)
	}
}

func TestAdd_RejectsOtherTenantProduct(t *testing.T) {
	st := &failingStorage{Memory: storage.NewMemory()}
	s, _, _ := newStore(t, st)

	p := margherita()
	p.TenantID = "other-pizza"
	err := s.Add(context.Background(), p)

	var mismatch *domain.ErrTenantMismatch
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected tenant mismatch, got %v", err)
	}
}

func TestAdd_RequiresTenant(t *testing.T) {
	s := cart.NewStore(storage.NewMemory(), nil, nil, zap.NewNop())

	err := s.Add(context.Background(), margherita())
	var valErr *domain.ErrValidation
	if !errors.As(err, &valErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReplaceAllThenClear_PersistsEmptyCart(t *testing.T) {
	st := &failingStorage{Memory: storage.NewMemory()}
	s, _, _ := newStore(t, st)
	ctx := context.Background()

	price := decimal.NewFromInt(10)
	err := s.ReplaceAll(ctx, []domain.CartItem{
		{ProductID: "p1", Name: "A", Price: price, Quantity: 1},
		{ProductID: "p2", Name: "B", Price: price, Quantity: 2},
		{ProductID: "p1", Name: "A", Price: price, Quantity: 3},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	items := s.Items()
	if len(items) != 2 || items[0].ProductID != "p1" || items[0].Quantity != 4 {
		t.Fatalf("expected merged lines in first-seen order, got %+v", items)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	raw, ok, _ := st.Get(ctx, cart.Key("acme-pizza"))
	if !ok || string(raw) != "[]" {
		t.Fatalf("expected persisted empty cart, got %q (found=%v)", raw, ok)
	}
}

func TestReplaceAll_RejectsInvalidLine(t *testing.T) {
	st := &failingStorage{Memory: storage.NewMemory()}
	s, _, _ := newStore(t, st)

	err := s.ReplaceAll(context.Background(), []domain.CartItem{{ProductID: "p1", Quantity: 0}})
	var valErr *domain.ErrValidation
	if !errors.As(err, &valErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSetQuantity_ZeroRemoves(t *testing.T) {
	st := &failingStorage{Memory: storage.NewMemory()}
	s, _, metrics := newStore(t, st)
	ctx := context.Background()

	_ = s.Add(ctx, margherita())
	if err := s.SetQuantity(ctx, "p1", 5); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if s.Items()[0].Quantity != 5 {
		t.Fatalf("expected qty 5, got %+v", s.Items())
	}
	if err := s.SetQuantity(ctx, "p1", 0); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if len(s.Items()) != 0 {
		t.Fatalf("expected empty cart, got %+v", s.Items())
	}
	if got := metrics.CartMutations("set_quantity"); got != 2 {
		t.Errorf("expected 2 set_quantity mutations, got %v", got)
	}

	var notFound *domain.ErrNotFound
	if err := s.Remove(ctx, "p1"); !errors.As(err, &notFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCartsAreIsolatedPerTenant(t *testing.T) {
	st := &failingStorage{Memory: storage.NewMemory()}
	s, _, _ := newStore(t, st)
	ctx := context.Background()

	_ = s.Add(ctx, margherita())

	if err := s.LoadForTenant(ctx, "other-pizza"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(s.Items()) != 0 {
		t.Fatalf("expected empty cart for other tenant, got %+v", s.Items())
	}

	if err := s.LoadForTenant(ctx, "acme-pizza"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(s.Items()) != 1 {
		t.Fatalf("expected acme cart restored, got %+v", s.Items())
	}
}

func TestClearFor_OtherTenantKeepsMemory(t *testing.T) {
	st := &failingStorage{Memory: storage.NewMemory()}
	s, _, _ := newStore(t, st)
	ctx := context.Background()

	_ = st.Set(ctx, cart.Key("other-pizza"), []byte(`[{"productId":"x","name":"X","price":"1","quantity":1}]`))
	_ = s.Add(ctx, margherita())

	if err := s.ClearFor(ctx, "other-pizza"); err != nil {
		t.Fatalf("clear for: %v", err)
	}
	raw, _, _ := st.Get(ctx, cart.Key("other-pizza"))
	if string(raw) != "[]" {
		t.Errorf("expected other tenant cart cleared, got %s", raw)
	}
	if len(s.Items()) != 1 {
		t.Errorf("expected current cart untouched, got %+v", s.Items())
	}
}

func TestLoadForTenant_CorruptDataYieldsEmptyCart(t *testing.T) {
	st := &failingStorage{Memory: storage.NewMemory()}
	_ = st.Set(context.Background(), cart.Key("acme-pizza"), []byte("{not json"))

	s := cart.NewStore(st, nil, nil, zap.NewNop())
	if err := s.LoadForTenant(context.Background(), "acme-pizza"); err != nil {
		t.Fatalf("expected corrupt cart to be ignored, got %v", err)
	}
	if len(s.Items()) != 0 {
		t.Errorf("expected empty cart, got %+v", s.Items())
	}
}

func TestLoadForTenant_StorageFailureStillSwitchesTenant(t *testing.T) {
	st := &failingStorage{Memory: storage.NewMemory(), failGet: true}
	s := cart.NewStore(st, nil, nil, zap.NewNop())

	if err := s.LoadForTenant(context.Background(), "acme-pizza"); err == nil {
		t.Fatal("expected storage error")
	}
	if s.Tenant() != "acme-pizza" {
		t.Errorf("expected tenant switched, got %q", s.Tenant())
	}
}
