package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/boddenberg/pizzaria-client-go/internal/cart"
	"github.com/boddenberg/pizzaria-client-go/internal/domain"
	"github.com/boddenberg/pizzaria-client-go/internal/infra/observability"
	"github.com/boddenberg/pizzaria-client-go/internal/infra/storage"
	"github.com/boddenberg/pizzaria-client-go/internal/session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ============================================================
// Mock AuthAPI
// ============================================================

type mockAuth struct {
	meUser     *domain.UserProfile
	meErr      error
	meCalls    int
	loginRes   *domain.AuthResult
	loginErr   error
	loginCalls int
	regCalls   int
	updateRes  *domain.UserProfile
	updateErr  error
}

func (m *mockAuth) Me(_ context.Context, _ string) (*domain.UserProfile, error) {
	m.meCalls++
	return m.meUser, m.meErr
}

func (m *mockAuth) Login(_ context.Context, _ domain.TenantID, _ *domain.LoginRequest) (*domain.AuthResult, error) {
	m.loginCalls++
	return m.loginRes, m.loginErr
}

func (m *mockAuth) Register(_ context.Context, req *domain.RegisterRequest) (*domain.AuthResult, error) {
	m.regCalls++
	return &domain.AuthResult{Token: "tok-new", User: domain.UserProfile{ID: "u9", Name: req.Name, TenantID: req.TenantID}}, nil
}

func (m *mockAuth) UpdateMe(_ context.Context, _ string, _ *domain.ProfilePatch) (*domain.UserProfile, error) {
	return m.updateRes, m.updateErr
}

type fixture struct {
	auth    *mockAuth
	storage *storage.Memory
	cart    *cart.Store
	metrics *observability.Metrics
	store   *session.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		auth:    &mockAuth{},
		storage: storage.NewMemory(),
		metrics: observability.NewMetrics(),
	}
	f.cart = cart.NewStore(f.storage, nil, f.metrics, zap.NewNop())
	f.store = session.NewStore(f.auth, f.storage, f.cart, f.metrics, zap.NewNop())
	return f
}

func acmeUser(admin bool) domain.UserProfile {
	return domain.UserProfile{ID: "u1", Name: "Ana", Email: "ana@acme.com", IsAdmin: admin, TenantID: "acme-pizza"}
}

func (f *fixture) login(t *testing.T, admin bool) {
	t.Helper()
	f.auth.loginRes = &domain.AuthResult{Token: "tok-1", User: acmeUser(admin)}
	if _, _, err := f.store.Login(context.Background(), "acme-pizza", "ana@acme.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

// ============================================================
// Restore
// ============================================================

func TestRestore_PopulatesSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_ = f.storage.Set(ctx, session.TokenKey, []byte("opaque-token"))
	u := acmeUser(false)
	f.auth.meUser = &u

	f.store.Restore(ctx)

	cur := f.store.Current()
	if !cur.Active() || cur.User.ID != "u1" || cur.Token != "opaque-token" {
		t.Fatalf("expected restored session, got %+v", cur)
	}
}

func TestRestore_FailureDiscardsToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_ = f.storage.Set(ctx, session.TokenKey, []byte("opaque-token"))
	f.auth.meErr = &domain.ErrSessionExpired{Operation: "Me"}

	f.store.Restore(ctx)

	if f.store.Current().Active() {
		t.Fatal("expected empty session")
	}
	if _, ok, _ := f.storage.Get(ctx, session.TokenKey); ok {
		t.Error("expected token deleted")
	}
	if got := f.metrics.SessionTeardowns(session.ReasonRestoreFailed); got != 1 {
		t.Errorf("expected 1 restore_failed teardown, got %v", got)
	}
}

func TestRestore_ExpiredJWTSkipsBackend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("any-key"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	_ = f.storage.Set(ctx, session.TokenKey, []byte(token))

	f.store.Restore(ctx)

	if f.auth.meCalls != 0 {
		t.Errorf("expected no backend call, got %d", f.auth.meCalls)
	}
	if _, ok, _ := f.storage.Get(ctx, session.TokenKey); ok {
		t.Error("expected token deleted")
	}
}

func TestRestore_NoTokenIsNoop(t *testing.T) {
	f := newFixture(t)
	f.store.Restore(context.Background())

	if f.auth.meCalls != 0 {
		t.Errorf("expected no backend call, got %d", f.auth.meCalls)
	}
}

// ============================================================
// Login
// ============================================================

func TestLogin_TargetDependsOnRole(t *testing.T) {
	tests := []struct {
		name   string
		admin  bool
		target string
	}{
		{"admin", true, "/acme-pizza/admin"},
		{"customer", false, "/acme-pizza/orders"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.auth.loginRes = &domain.AuthResult{Token: "tok-1", User: acmeUser(tt.admin)}

			sess, target, err := f.store.Login(context.Background(), "acme-pizza", "ana@acme.com", "secret")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if target != tt.target {
				t.Errorf("expected target %s, got %s", tt.target, target)
			}
			if !sess.Active() {
				t.Error("expected active session")
			}
			raw, ok, _ := f.storage.Get(context.Background(), session.TokenKey)
			if !ok || string(raw) != "tok-1" {
				t.Errorf("expected persisted token, got %q", raw)
			}
		})
	}
}

func TestLogin_OtherUserEndsPreviousSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t, false)

	if err := f.cart.LoadForTenant(ctx, "acme-pizza"); err != nil {
		t.Fatalf("load cart: %v", err)
	}
	_ = f.cart.Add(ctx, domain.Product{ID: "p1", Name: "Margherita", Price: decimal.NewFromInt(40), TenantID: "acme-pizza"})

	f.auth.loginRes = &domain.AuthResult{
		Token: "tok-2",
		User:  domain.UserProfile{ID: "u2", Name: "Caio", Email: "caio@acme.com", TenantID: "acme-pizza"},
	}
	sess, _, err := f.store.Login(ctx, "acme-pizza", "caio@acme.com", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if sess.User.ID != "u2" || f.store.Token() != "tok-2" {
		t.Fatalf("expected caio's session, got %+v", sess)
	}
	if len(f.cart.Items()) != 0 {
		t.Errorf("expected previous user's cart cleared, got %+v", f.cart.Items())
	}
	if got := f.metrics.SessionTeardowns(session.ReasonLogout); got != 1 {
		t.Errorf("expected 1 logout teardown, got %v", got)
	}
	raw, _, _ := f.storage.Get(ctx, session.TokenKey)
	if string(raw) != "tok-2" {
		t.Errorf("expected new token persisted, got %q", raw)
	}
}

func TestLogin_SameUserKeepsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t, false)

	if err := f.cart.LoadForTenant(ctx, "acme-pizza"); err != nil {
		t.Fatalf("load cart: %v", err)
	}
	_ = f.cart.Add(ctx, domain.Product{ID: "p1", Name: "Margherita", Price: decimal.NewFromInt(40), TenantID: "acme-pizza"})

	f.login(t, false)

	if len(f.cart.Items()) != 1 {
		t.Errorf("expected cart kept, got %+v", f.cart.Items())
	}
	if got := f.metrics.SessionTeardowns(session.ReasonLogout); got != 0 {
		t.Errorf("expected no teardown, got %v", got)
	}
}

func TestLogin_MissingTenantNoNetworkCall(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.store.Login(context.Background(), "", "ana@acme.com", "secret")
	var authErr *domain.ErrAuth
	if !errors.As(err, &authErr) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if f.auth.loginCalls != 0 {
		t.Errorf("expected no backend call, got %d", f.auth.loginCalls)
	}
}

func TestLogin_BadCredentialsLeavesSessionEmpty(t *testing.T) {
	f := newFixture(t)
	f.auth.loginErr = &domain.ErrAuth{Message: "Credenciais inválidas"}

	_, _, err := f.store.Login(context.Background(), "acme-pizza", "ana@acme.com", "wrong")
	var authErr *domain.ErrAuth
	if !errors.As(err, &authErr) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if f.store.Current().Active() {
		t.Error("expected empty session")
	}
}

func TestRegister_PasswordMismatchNoNetworkCall(t *testing.T) {
	f := newFixture(t)
	req := &domain.RegisterRequest{
		Name: "Ana", Phone: "11999990000", Email: "ana@acme.com",
		Password: "secret1", ConfirmPassword: "secret2",
		Address: domain.Address{CEP: "1", Street: "R", Number: "1", Neighborhood: "C", City: "SP"},
	}

	_, _, err := f.store.Register(context.Background(), "acme-pizza", req)
	var valErr *domain.ErrValidation
	if !errors.As(err, &valErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.auth.regCalls != 0 {
		t.Errorf("expected no backend call, got %d", f.auth.regCalls)
	}
}

func TestRegister_Success(t *testing.T) {
	f := newFixture(t)
	req := &domain.RegisterRequest{
		Name: "Ana", Phone: "11999990000", Email: "ana@acme.com",
		Password: "secret1", ConfirmPassword: "secret1",
		Address: domain.Address{CEP: "1", Street: "R", Number: "1", Neighborhood: "C", City: "SP"},
	}

	sess, target, err := f.store.Register(context.Background(), "acme-pizza", req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.User.TenantID != "acme-pizza" || target != "/acme-pizza/orders" {
		t.Errorf("unexpected result %+v %s", sess.User, target)
	}
}

// ============================================================
// Reconcile / Logout
// ============================================================

func TestReconcile_MismatchClearsSessionAndCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t, false)

	if err := f.cart.LoadForTenant(ctx, "acme-pizza"); err != nil {
		t.Fatalf("load cart: %v", err)
	}
	_ = f.cart.Add(ctx, domain.Product{ID: "p1", Name: "Margherita", Price: decimal.NewFromInt(40), TenantID: "acme-pizza"})

	f.store.Reconcile(ctx, "other-pizza")

	if f.store.Current().Active() {
		t.Fatal("expected session cleared")
	}
	if len(f.cart.Items()) != 0 {
		t.Errorf("expected cart cleared, got %+v", f.cart.Items())
	}
	raw, _, _ := f.storage.Get(ctx, cart.Key("acme-pizza"))
	if string(raw) != "[]" {
		t.Errorf("expected persisted empty cart, got %s", raw)
	}
	if got := f.metrics.SessionTeardowns(session.ReasonTenantMismatch); got != 1 {
		t.Errorf("expected 1 tenant_mismatch teardown, got %v", got)
	}
}

func TestReconcile_SameTenantKeepsSession(t *testing.T) {
	f := newFixture(t)
	f.login(t, false)

	f.store.Reconcile(context.Background(), "acme-pizza")
	f.store.Reconcile(context.Background(), "")

	if !f.store.Current().Active() {
		t.Fatal("expected session kept")
	}
}

func TestLogout_DeletesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t, false)

	if err := f.store.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if f.store.Token() != "" {
		t.Error("expected token cleared")
	}
	if _, ok, _ := f.storage.Get(ctx, session.TokenKey); ok {
		t.Error("expected persisted token deleted")
	}
}

// ============================================================
// UpdateProfile
// ============================================================

func TestUpdateProfile_ReplacesWholesale(t *testing.T) {
	f := newFixture(t)
	f.login(t, false)

	name := "Ana Maria"
	f.auth.updateRes = &domain.UserProfile{ID: "u1", Name: "Ana Maria", Phone: "1188887777", TenantID: "acme-pizza"}

	got, err := f.store.UpdateProfile(context.Background(), &domain.ProfilePatch{Name: &name})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Phone != "1188887777" {
		t.Errorf("expected server phone, got %q", got.Phone)
	}
	if f.store.Current().User.Email != "" {
		t.Error("expected cached profile replaced, not merged")
	}
}

func TestUpdateProfile_FailureKeepsProfile(t *testing.T) {
	f := newFixture(t)
	f.login(t, false)

	name := "Ana Maria"
	f.auth.updateErr = &domain.ErrNetwork{Operation: "UpdateMe", Status: 500}

	_, err := f.store.UpdateProfile(context.Background(), &domain.ProfilePatch{Name: &name})
	var upErr *domain.ErrProfileUpdate
	if !errors.As(err, &upErr) {
		t.Fatalf("expected profile update error, got %v", err)
	}
	if f.store.Current().User.Name != "Ana" {
		t.Errorf("expected cached profile untouched, got %q", f.store.Current().User.Name)
	}
}

func TestUpdateProfile_UnauthorizedExpiresSession(t *testing.T) {
	f := newFixture(t)
	f.login(t, false)

	name := "Ana Maria"
	f.auth.updateErr = &domain.ErrSessionExpired{Operation: "UpdateMe"}

	_, err := f.store.UpdateProfile(context.Background(), &domain.ProfilePatch{Name: &name})
	if !domain.IsSessionExpired(err) {
		t.Fatalf("expected session expired, got %v", err)
	}
	if f.store.Current().Active() {
		t.Error("expected session torn down")
	}
	if got := f.metrics.SessionTeardowns(session.ReasonExpired); got != 1 {
		t.Errorf("expected 1 expired teardown, got %v", got)
	}
}
