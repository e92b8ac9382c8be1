// Package service holds the user flows built on top of the stores: menu
// browsing, checkout, tenant administration and platform provisioning.
package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/boddenberg/pizzaria-client-go/internal/domain"
	"github.com/boddenberg/pizzaria-client-go/internal/infra/observability"
	"github.com/boddenberg/pizzaria-client-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service")

// Catalog serves tenant menus, cached per tenant.
type Catalog struct {
	tenants  port.TenantAPI
	products port.CatalogAPI
	cache    port.Cache[*domain.Menu]
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewCatalog creates the catalog service.
func NewCatalog(tenants port.TenantAPI, products port.CatalogAPI, cache port.Cache[*domain.Menu], metrics *observability.Metrics, logger *zap.Logger) *Catalog {
	return &Catalog{
		tenants:  tenants,
		products: products,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
	}
}

func menuKey(tenantID domain.TenantID) string {
	return "menu:" + tenantID.String()
}

// Menu returns the tenant profile and the products customers may order.
func (c *Catalog) Menu(ctx context.Context, tenantID domain.TenantID) (*domain.Menu, error) {
	full, err := c.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	menu := &domain.Menu{Tenant: full.Tenant, Products: make([]domain.Product, 0, len(full.Products))}
	for _, p := range full.Products {
		if p.Available {
			menu.Products = append(menu.Products, p)
		}
	}
	menu.Categories = categories(menu.Products)
	return menu, nil
}

// AllProducts returns every product of the tenant, unavailable ones included.
// Used by the admin dashboard.
func (c *Catalog) AllProducts(ctx context.Context, tenantID domain.TenantID) ([]domain.Product, error) {
	full, err := c.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, len(full.Products))
	copy(out, full.Products)
	return out, nil
}

// Product looks up one product of the tenant's menu.
func (c *Catalog) Product(ctx context.Context, tenantID domain.TenantID, productID string) (domain.Product, error) {
	full, err := c.load(ctx, tenantID)
	if err != nil {
		return domain.Product{}, err
	}
	for _, p := range full.Products {
		if p.ID == productID {
			return p, nil
		}
	}
	return domain.Product{}, &domain.ErrNotFound{Resource: "product", ID: productID}
}

// Tenant returns the tenant profile.
func (c *Catalog) Tenant(ctx context.Context, tenantID domain.TenantID) (domain.Tenant, error) {
	full, err := c.load(ctx, tenantID)
	if err != nil {
		return domain.Tenant{}, err
	}
	return full.Tenant, nil
}

// Invalidate drops the cached menu of a tenant after an admin edit.
func (c *Catalog) Invalidate(tenantID domain.TenantID) {
	c.cache.Delete(menuKey(tenantID))
}

// load fetches tenant and products concurrently, or returns the cached menu.
func (c *Catalog) load(ctx context.Context, tenantID domain.TenantID) (*domain.Menu, error) {
	ctx, span := tracer.Start(ctx, "Catalog.load")
	defer span.End()
	span.SetAttributes(attribute.String("tenant.id", tenantID.String()))

	if tenantID == "" {
		return nil, &domain.ErrValidation{Field: "tenantId", Message: "nenhuma pizzaria selecionada"}
	}

	key := menuKey(tenantID)
	if cached, ok := c.cache.Get(key); ok {
		c.metrics.IncrCacheHit("menu")
		return cached, nil
	}
	c.metrics.IncrCacheMiss("menu")

	var (
		tenant   *domain.Tenant
		products []domain.Product
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := c.tenants.GetTenant(gCtx, tenantID)
		if err != nil {
			c.logger.Error("failed to fetch tenant",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			return fmt.Errorf("tenant fetch: %w", err)
		}
		tenant = t
		return nil
	})

	g.Go(func() error {
		p, err := c.products.ListProducts(gCtx, tenantID)
		if err != nil {
			c.logger.Error("failed to fetch products",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			return fmt.Errorf("products fetch: %w", err)
		}
		products = p
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Products of another tenant never enter this tenant's menu.
	owned := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.TenantID == "" {
			p.TenantID = tenantID
		}
		if p.TenantID != tenantID {
			c.logger.Warn("catalog: dropping foreign product",
				zap.String("tenant_id", tenantID.String()),
				zap.String("product_id", p.ID),
			)
			continue
		}
		owned = append(owned, p)
	}

	menu := &domain.Menu{Tenant: *tenant, Products: owned, Categories: categories(owned)}
	c.cache.Set(key, menu)
	return menu, nil
}

func categories(products []domain.Product) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, p := range products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}
