package tenant_test

import (
	"testing"

	"github.com/boddenberg/pizzaria-client-go/internal/domain"
	"github.com/boddenberg/pizzaria-client-go/internal/tenant"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		path   string
		want   domain.TenantID
		wantOK bool
	}{
		{"/", "", false},
		{"", "", false},
		{"//", "", false},
		{"/acme-pizza", "acme-pizza", true},
		{"/acme-pizza/", "acme-pizza", true},
		{"/acme-pizza/orders", "acme-pizza", true},
		{"//acme-pizza//orders", "acme-pizza", true},
		{"/Acme-Pizza/profile", "acme-pizza", true},
		{"/acme-pizza?ref=1", "acme-pizza", true},
		{"/?x=1", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := tenant.Resolve(tt.path)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Resolve(%q) = (%q, %v), want (%q, %v)", tt.path, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestResolve_Idempotent(t *testing.T) {
	first, _ := tenant.Resolve("/bella-napoli/orders")
	second, _ := tenant.Resolve("/bella-napoli/orders")
	if first != second {
		t.Fatalf("expected identical results, got %q and %q", first, second)
	}
}

func TestParseRoute(t *testing.T) {
	tests := []struct {
		path string
		want tenant.Route
	}{
		{"/", tenant.Route{View: tenant.ViewHome}},
		{"/acme-pizza", tenant.Route{Tenant: "acme-pizza", View: tenant.ViewMenu}},
		{"/acme-pizza/order-summary", tenant.Route{Tenant: "acme-pizza", View: tenant.ViewOrderSummary}},
		{"/acme-pizza/orders", tenant.Route{Tenant: "acme-pizza", View: tenant.ViewOrders}},
		{"/acme-pizza/profile", tenant.Route{Tenant: "acme-pizza", View: tenant.ViewProfile}},
		{"/acme-pizza/admin", tenant.Route{Tenant: "acme-pizza", View: tenant.ViewAdmin}},
		{"/acme-pizza/admin/extra", tenant.Route{Tenant: "acme-pizza", View: tenant.ViewUnknown}},
		{"/acme-pizza/checkout", tenant.Route{Tenant: "acme-pizza", View: tenant.ViewUnknown}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := tenant.ParseRoute(tt.path); got != tt.want {
				t.Errorf("ParseRoute(%q) = %+v, want %+v", tt.path, got, tt.want)
			}
		})
	}
}

func TestRoutePath(t *testing.T) {
	if got := tenant.TenantPath("acme-pizza"); got != "/acme-pizza" {
		t.Errorf("unexpected tenant path %s", got)
	}
	r := tenant.Route{Tenant: "acme-pizza", View: tenant.ViewOrders}
	if got := r.Path(); got != "/acme-pizza/orders" {
		t.Errorf("unexpected path %s", got)
	}
	if got := (tenant.Route{View: tenant.ViewHome}).Path(); got != "/" {
		t.Errorf("unexpected home path %s", got)
	}
}
