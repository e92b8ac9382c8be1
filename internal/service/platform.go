package service

import (
	"context"
	"strings"

	"github.com/boddenberg/pizzaria-client-go/internal/domain"
	"github.com/boddenberg/pizzaria-client-go/internal/port"
	"github.com/boddenberg/pizzaria-client-go/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Platform lets the super-admin provision tenants.
type Platform struct {
	tenants port.TenantAPI
	session SessionReader
	logger  *zap.Logger
}

// NewPlatform creates the platform service.
func NewPlatform(tenants port.TenantAPI, session SessionReader, logger *zap.Logger) *Platform {
	return &Platform{tenants: tenants, session: session, logger: logger}
}

func (p *Platform) requireSuperAdmin() (domain.Session, error) {
	sess := p.session.Current()
	if !sess.Active() {
		return domain.Session{}, &domain.ErrAuth{Message: "Faça login"}
	}
	if !sess.User.IsSuperAdmin {
		return domain.Session{}, &domain.ErrForbidden{Action: "platform"}
	}
	return sess, nil
}

// ListTenants returns every tenant of the platform.
func (p *Platform) ListTenants(ctx context.Context) ([]domain.Tenant, error) {
	ctx, span := tracer.Start(ctx, "Platform.ListTenants")
	defer span.End()

	sess, err := p.requireSuperAdmin()
	if err != nil {
		return nil, err
	}
	list, err := p.tenants.ListTenants(ctx, sess.Token)
	if err != nil {
		if domain.IsSessionExpired(err) {
			p.session.Expire(ctx)
		}
		return nil, err
	}
	return list, nil
}

// CreateTenant validates the form and provisions a tenant with its first
// administrator.
func (p *Platform) CreateTenant(ctx context.Context, req *domain.CreateTenantRequest) (*domain.Tenant, error) {
	ctx, span := tracer.Start(ctx, "Platform.CreateTenant")
	defer span.End()

	sess, err := p.requireSuperAdmin()
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, &domain.ErrValidation{Field: "tenant", Message: "formulário vazio"}
	}
	req.TenantID = domain.TenantID(strings.TrimSpace(req.TenantID.String()))
	span.SetAttributes(attribute.String("tenant.id", req.TenantID.String()))
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	t, err := p.tenants.CreateTenant(ctx, sess.Token, req)
	if err != nil {
		if domain.IsSessionExpired(err) {
			p.session.Expire(ctx)
		}
		return nil, err
	}

	p.logger.Info("tenant created",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("admin_email", req.AdminEmail),
	)
	return t, nil
}
