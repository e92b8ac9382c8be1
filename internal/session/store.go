// Package session owns the authenticated identity of the client: the bearer
// token and the verified user profile. Token and profile are set and
// cleared together.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/boddenberg/pizzaria-client-go/internal/domain"
	"github.com/boddenberg/pizzaria-client-go/internal/infra/observability"
	"github.com/boddenberg/pizzaria-client-go/internal/port"
	"github.com/boddenberg/pizzaria-client-go/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("session")

// TokenKey is the storage key of the persisted bearer token.
const TokenKey = "token"

// Teardown reasons recorded in metrics.
const (
	ReasonLogout         = "logout"
	ReasonExpired        = "expired"
	ReasonTenantMismatch = "tenant_mismatch"
	ReasonRestoreFailed  = "restore_failed"
)

// CartClearer is the part of the cart store the session needs on teardown.
type CartClearer interface {
	Clear(ctx context.Context) error
	ClearFor(ctx context.Context, tenantID domain.TenantID) error
}

// Store holds the current session.
type Store struct {
	mu      sync.Mutex
	auth    port.AuthAPI
	storage port.Storage
	cart    CartClearer
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time

	token string
	user  *domain.UserProfile
}

// NewStore creates an empty session store. Call Restore once at startup.
func NewStore(auth port.AuthAPI, storage port.Storage, cart CartClearer, metrics *observability.Metrics, logger *zap.Logger) *Store {
	return &Store{
		auth:    auth,
		storage: storage,
		cart:    cart,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// ============================================================
// Restore
// ============================================================

// Restore verifies a persisted token against GET /auth/me. Any failure
// discards the token and leaves the session empty; it never returns an error.
func (s *Store) Restore(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "Session.Restore")
	defer span.End()

	raw, ok, err := s.storage.Get(ctx, TokenKey)
	if err != nil {
		s.logger.Warn("session: read token failed", zap.Error(err))
		return
	}
	if !ok || len(raw) == 0 {
		return
	}
	token := string(raw)

	if expired(token, s.now()) {
		s.logger.Info("session: persisted token expired")
		s.discardToken(ctx)
		return
	}

	user, err := s.auth.Me(ctx, token)
	if err != nil || user == nil || user.ID == "" {
		s.logger.Warn("session: restore failed", zap.Error(err))
		s.discardToken(ctx)
		return
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()

	span.SetAttributes(attribute.String("tenant.id", user.TenantID.String()))
	s.logger.Info("session restored",
		zap.String("user_id", user.ID),
		zap.String("tenant_id", user.TenantID.String()),
	)
}

// expired reports whether token is a JWT whose exp claim is in the past.
// Opaque tokens are left for the backend to judge.
func expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}

func (s *Store) discardToken(ctx context.Context) {
	if err := s.storage.Delete(ctx, TokenKey); err != nil {
		s.logger.Error("session: delete token failed", zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.IncrSessionTeardown(ReasonRestoreFailed)
	}
}

// ============================================================
// Login / Register
// ============================================================

// Login exchanges credentials for a session and returns the view the caller
// should navigate to: the admin dashboard for admins, order tracking otherwise.
func (s *Store) Login(ctx context.Context, tenantID domain.TenantID, email, password string) (domain.Session, string, error) {
	ctx, span := tracer.Start(ctx, "Session.Login")
	defer span.End()
	span.SetAttributes(attribute.String("tenant.id", tenantID.String()))

	if tenantID == "" {
		return domain.Session{}, "", &domain.ErrAuth{Message: "Pizzaria não identificada"}
	}
	if strings.TrimSpace(email) == "" || password == "" {
		return domain.Session{}, "", &domain.ErrAuth{Message: "Informe email e senha"}
	}

	res, err := s.auth.Login(ctx, tenantID, &domain.LoginRequest{Email: email, Password: password})
	if err != nil {
		s.logger.Info("login rejected", zap.String("tenant_id", tenantID.String()), zap.Error(err))
		return domain.Session{}, "", err
	}

	s.endPrevious(ctx, res)
	sess, err := s.establish(ctx, res)
	if err != nil {
		return domain.Session{}, "", err
	}
	return sess, landing(tenantID, sess.User), nil
}

// Register validates the form locally, creates the account and logs the new
// user in.
func (s *Store) Register(ctx context.Context, tenantID domain.TenantID, req *domain.RegisterRequest) (domain.Session, string, error) {
	ctx, span := tracer.Start(ctx, "Session.Register")
	defer span.End()

	if tenantID == "" {
		return domain.Session{}, "", &domain.ErrAuth{Message: "Pizzaria não identificada"}
	}
	req.TenantID = tenantID
	if err := validation.Struct(req); err != nil {
		return domain.Session{}, "", err
	}

	res, err := s.auth.Register(ctx, req)
	if err != nil {
		return domain.Session{}, "", err
	}

	s.endPrevious(ctx, res)
	sess, err := s.establish(ctx, res)
	if err != nil {
		return domain.Session{}, "", err
	}
	s.logger.Info("user registered",
		zap.String("user_id", sess.User.ID),
		zap.String("tenant_id", tenantID.String()),
	)
	return sess, landing(tenantID, sess.User), nil
}

// establish persists the token and then sets the in-memory session.
func (s *Store) establish(ctx context.Context, res *domain.AuthResult) (domain.Session, error) {
	if err := s.storage.Set(ctx, TokenKey, []byte(res.Token)); err != nil {
		return domain.Session{}, fmt.Errorf("persist token: %w", err)
	}

	user := res.User
	s.mu.Lock()
	s.token = res.Token
	s.user = &user
	sess := s.snapshotLocked()
	s.mu.Unlock()
	return sess, nil
}

// endPrevious logs out an active session that belongs to another user so
// the new user never inherits the previous user's cart.
func (s *Store) endPrevious(ctx context.Context, res *domain.AuthResult) {
	cur := s.Current()
	if !cur.Active() || cur.User.ID == res.User.ID {
		return
	}
	s.logger.Info("session: replacing active session",
		zap.String("previous_user_id", cur.User.ID),
		zap.String("user_id", res.User.ID),
	)
	if err := s.teardown(ctx, ReasonLogout); err != nil {
		s.logger.Error("session: replace teardown failed", zap.Error(err))
	}
}

func landing(tenantID domain.TenantID, user *domain.UserProfile) string {
	if user != nil && user.IsAdmin {
		return "/" + tenantID.String() + "/admin"
	}
	return "/" + tenantID.String() + "/orders"
}

// ============================================================
// Teardown
// ============================================================

// Logout deletes the token, empties the session and clears the cart of the
// user's tenant.
func (s *Store) Logout(ctx context.Context) error {
	return s.teardown(ctx, ReasonLogout)
}

// Expire tears the session down after the backend rejected the token.
func (s *Store) Expire(ctx context.Context) {
	if !s.Current().Active() {
		return
	}
	if err := s.teardown(ctx, ReasonExpired); err != nil {
		s.logger.Error("session: expire teardown failed", zap.Error(err))
	}
}

// Reconcile enforces that an active session belongs to tenantID. On mismatch
// the session is logged out and the cart cleared; the caller only observes
// the logged-out state. An empty tenantID (bare root path) is ignored.
func (s *Store) Reconcile(ctx context.Context, tenantID domain.TenantID) {
	if tenantID == "" {
		return
	}

	s.mu.Lock()
	user := s.user
	s.mu.Unlock()

	if user == nil || user.TenantID == tenantID {
		return
	}

	mismatch := &domain.ErrTenantMismatch{SessionTenant: user.TenantID, RouteTenant: tenantID}
	s.logger.Warn("session: tenant mismatch, logging out",
		zap.String("user_id", user.ID),
		zap.Error(mismatch),
	)
	if err := s.teardown(ctx, ReasonTenantMismatch); err != nil {
		s.logger.Error("session: mismatch teardown failed", zap.Error(err))
	}
}

// teardown clears memory first so a failing storage can never keep a
// session alive, then deletes the token and clears the cart.
func (s *Store) teardown(ctx context.Context, reason string) error {
	s.mu.Lock()
	user := s.user
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	var errs []error
	if err := s.storage.Delete(ctx, TokenKey); err != nil {
		errs = append(errs, fmt.Errorf("delete token: %w", err))
	}

	if s.cart != nil {
		var err error
		if user != nil && user.TenantID != "" {
			err = s.cart.ClearFor(ctx, user.TenantID)
		} else {
			err = s.cart.Clear(ctx)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("clear cart: %w", err))
		}
	}

	if s.metrics != nil {
		s.metrics.IncrSessionTeardown(reason)
	}
	fields := []zap.Field{zap.String("reason", reason)}
	if user != nil {
		fields = append(fields, zap.String("user_id", user.ID))
	}
	s.logger.Info("session ended", fields...)

	return errors.Join(errs...)
}

// ============================================================
// Profile
// ============================================================

// UpdateProfile sends patch and replaces the cached profile with the
// backend's response. On failure the cached profile is left as is.
func (s *Store) UpdateProfile(ctx context.Context, patch *domain.ProfilePatch) (*domain.UserProfile, error) {
	ctx, span := tracer.Start(ctx, "Session.UpdateProfile")
	defer span.End()

	token := s.Token()
	if token == "" {
		return nil, &domain.ErrAuth{Message: "Faça login para editar o perfil"}
	}
	if patch == nil || patch.Empty() {
		return nil, &domain.ErrValidation{Field: "profile", Message: "nenhuma alteração informada"}
	}
	if err := validation.Struct(patch); err != nil {
		return nil, err
	}

	updated, err := s.auth.UpdateMe(ctx, token, patch)
	if err != nil {
		if domain.IsSessionExpired(err) {
			s.Expire(ctx)
			return nil, err
		}
		return nil, &domain.ErrProfileUpdate{Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// The session may have ended while the request was in flight.
	if s.token != token {
		return nil, &domain.ErrProfileUpdate{Err: errors.New("session changed during update")}
	}
	s.user = updated
	cp := *updated
	return &cp, nil
}

// ============================================================
// Accessors
// ============================================================

// Current returns a copy of the session.
func (s *Store) Current() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Token returns the bearer token, or "" when anonymous.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Store) snapshotLocked() domain.Session {
	if s.user == nil {
		return domain.Session{}
	}
	user := *s.user
	return domain.Session{Token: s.token, User: &user}
}
