package gate_test

import (
	"testing"

	"github.com/boddenberg/pizzaria-client-go/internal/domain"
	"github.com/boddenberg/pizzaria-client-go/internal/gate"
	"github.com/boddenberg/pizzaria-client-go/internal/tenant"
)

func sessionFor(admin bool) domain.Session {
	return domain.Session{
		Token: "tok",
		User:  &domain.UserProfile{ID: "u1", IsAdmin: admin, TenantID: "acme-pizza"},
	}
}

func TestEvaluate_AnonymousOnProtectedRedirects(t *testing.T) {
	for _, path := range []string{"/acme-pizza/orders", "/acme-pizza/profile", "/acme-pizza/admin"} {
		d := gate.Evaluate(tenant.ParseRoute(path), domain.Session{})

		if d.Outcome != gate.LoginRequired {
			t.Errorf("%s: expected login_required, got %s", path, d.Outcome)
		}
		if d.Redirect != "/acme-pizza" {
			t.Errorf("%s: expected redirect /acme-pizza, got %q", path, d.Redirect)
		}
		if !d.LoginPrompt || d.Render {
			t.Errorf("%s: expected login prompt without render, got %+v", path, d)
		}
	}
}

func TestEvaluate_NonAdminOnAdminIsForbidden(t *testing.T) {
	d := gate.Evaluate(tenant.ParseRoute("/acme-pizza/admin"), sessionFor(false))

	if d.Outcome != gate.Forbidden {
		t.Fatalf("expected forbidden, got %s", d.Outcome)
	}
	if d.Render || d.Redirect != "" {
		t.Errorf("forbidden must render nothing without redirect, got %+v", d)
	}
}

func TestEvaluate_Allowed(t *testing.T) {
	tests := []struct {
		path string
		sess domain.Session
	}{
		{"/", domain.Session{}},
		{"/acme-pizza", domain.Session{}},
		{"/acme-pizza/order-summary", domain.Session{}},
		{"/acme-pizza/orders", sessionFor(false)},
		{"/acme-pizza/profile", sessionFor(false)},
		{"/acme-pizza/admin", sessionFor(true)},
	}

	for _, tt := range tests {
		d := gate.Evaluate(tenant.ParseRoute(tt.path), tt.sess)
		if d.Outcome != gate.Allow || !d.Render {
			t.Errorf("%s: expected allow, got %+v", tt.path, d)
		}
	}
}

func TestEvaluate_UnknownView(t *testing.T) {
	d := gate.Evaluate(tenant.ParseRoute("/acme-pizza/nope"), sessionFor(true))
	if d.Outcome != gate.NotFound {
		t.Errorf("expected not_found, got %s", d.Outcome)
	}
}
