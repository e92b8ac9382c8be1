package observability_test

import (
	"testing"

	"github.com/boddenberg/pizzaria-client-go/internal/infra/observability"
)

func TestMetrics_ClientSnapshot(t *testing.T) {
	m := observability.NewMetrics()

	m.IncrCartMutation("add")
	m.IncrCartMutation("add")
	m.IncrCartMutation("clear")
	m.IncrSessionTeardown("tenant_mismatch")
	m.IncrSessionTeardown("logout")
	m.IncrOrderPoll("success")
	m.IncrOrderPoll("error")
	m.IncrBackendError("orders.list")
	m.IncrCacheHit("menu")
	m.IncrCacheMiss("menu")

	snap := m.GetClientSnapshot()

	if snap.CartMutations != 3 {
		t.Errorf("expected 3 cart mutations, got %v", snap.CartMutations)
	}
	if snap.SessionTeardowns != 2 {
		t.Errorf("expected 2 teardowns, got %v", snap.SessionTeardowns)
	}
	if snap.TenantMismatches != 1 {
		t.Errorf("expected 1 tenant mismatch, got %v", snap.TenantMismatches)
	}
	if snap.OrderPolls != 2 || snap.OrderPollFailures != 1 {
		t.Errorf("unexpected poll counts: %+v", snap)
	}
	if snap.BackendErrors != 1 {
		t.Errorf("expected 1 backend error, got %v", snap.BackendErrors)
	}
	if snap.CacheHitRate != 0.5 {
		t.Errorf("expected hit rate 0.5, got %v", snap.CacheHitRate)
	}
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a := observability.NewMetrics()
	b := observability.NewMetrics()

	a.IncrSessionTeardown("expired")

	if b.SessionTeardowns("expired") != 0 {
		t.Error("expected registries to be independent")
	}
	if a.SessionTeardowns("expired") != 1 {
		t.Error("expected counter to be recorded")
	}
}
