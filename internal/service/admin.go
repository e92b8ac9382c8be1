package service

import (
	"context"

	"github.com/boddenberg/pizzaria-client-go/internal/domain"
	"github.com/boddenberg/pizzaria-client-go/internal/port"
	"github.com/boddenberg/pizzaria-client-go/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Admin serves the tenant administrator's dashboard.
type Admin struct {
	products port.CatalogAPI
	tenants  port.TenantAPI
	session  SessionReader
	catalog  *Catalog
	logger   *zap.Logger
}

// NewAdmin creates the admin service.
func NewAdmin(products port.CatalogAPI, tenants port.TenantAPI, session SessionReader, catalog *Catalog, logger *zap.Logger) *Admin {
	return &Admin{
		products: products,
		tenants:  tenants,
		session:  session,
		catalog:  catalog,
		logger:   logger,
	}
}

func (a *Admin) requireAdmin() (domain.Session, error) {
	sess := a.session.Current()
	if !sess.Active() {
		return domain.Session{}, &domain.ErrAuth{Message: "Faça login como administrador"}
	}
	if !sess.User.IsAdmin {
		return domain.Session{}, &domain.ErrForbidden{Action: "admin"}
	}
	return sess, nil
}

// Products lists the tenant's whole catalog.
func (a *Admin) Products(ctx context.Context) ([]domain.Product, error) {
	sess, err := a.requireAdmin()
	if err != nil {
		return nil, err
	}
	return a.catalog.AllProducts(ctx, sess.User.TenantID)
}

// UpdateProduct edits one product and drops the cached menu.
func (a *Admin) UpdateProduct(ctx context.Context, productID string, patch *domain.ProductPatch) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "Admin.UpdateProduct")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", productID))

	sess, err := a.requireAdmin()
	if err != nil {
		return nil, err
	}
	if patch == nil {
		return nil, &domain.ErrValidation{Field: "product", Message: "nenhuma alteração informada"}
	}
	if err := validation.Struct(patch); err != nil {
		return nil, err
	}
	if patch.Price != nil && patch.Price.IsNegative() {
		return nil, &domain.ErrValidation{Field: "price", Message: "preço não pode ser negativo"}
	}

	p, err := a.products.UpdateProduct(ctx, sess.Token, productID, patch)
	if err != nil {
		return nil, a.fail(ctx, err)
	}
	a.catalog.Invalidate(sess.User.TenantID)

	a.logger.Info("product updated",
		zap.String("product_id", productID),
		zap.String("tenant_id", sess.User.TenantID.String()),
	)
	return p, nil
}

// MyTenant returns the administrator's own tenant profile.
func (a *Admin) MyTenant(ctx context.Context) (*domain.Tenant, error) {
	ctx, span := tracer.Start(ctx, "Admin.MyTenant")
	defer span.End()

	sess, err := a.requireAdmin()
	if err != nil {
		return nil, err
	}
	t, err := a.tenants.GetMyTenant(ctx, sess.Token)
	if err != nil {
		return nil, a.fail(ctx, err)
	}
	return t, nil
}

// UpdateMyTenant edits the tenant profile and theming.
func (a *Admin) UpdateMyTenant(ctx context.Context, patch *domain.TenantPatch) (*domain.Tenant, error) {
	ctx, span := tracer.Start(ctx, "Admin.UpdateMyTenant")
	defer span.End()

	sess, err := a.requireAdmin()
	if err != nil {
		return nil, err
	}
	if patch == nil {
		return nil, &domain.ErrValidation{Field: "tenant", Message: "nenhuma alteração informada"}
	}
	if err := validation.Struct(patch); err != nil {
		return nil, err
	}
	if patch.DeliveryFee != nil && patch.DeliveryFee.IsNegative() {
		return nil, &domain.ErrValidation{Field: "deliveryFee", Message: "taxa não pode ser negativa"}
	}

	t, err := a.tenants.UpdateMyTenant(ctx, sess.Token, sess.User.TenantID, patch)
	if err != nil {
		return nil, a.fail(ctx, err)
	}
	a.catalog.Invalidate(sess.User.TenantID)
	return t, nil
}

func (a *Admin) fail(ctx context.Context, err error) error {
	if domain.IsSessionExpired(err) {
		a.session.Expire(ctx)
	}
	return err
}
