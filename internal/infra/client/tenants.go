package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/boddenberg/pizzaria-client-go/internal/domain"
)

// GetTenant fetches the public profile and theming of a tenant.
func (c *Client) GetTenant(ctx context.Context, tenantID domain.TenantID) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := c.do(ctx, request{
		op:     "tenants.get",
		method: http.MethodGet,
		path:   fmt.Sprintf("/tenants/%s", url.PathEscape(tenantID.String())),
		out:    &tenant,
	})
	if err != nil {
		return nil, translate("tenants.get", err)
	}
	return &tenant, nil
}

// GetMyTenant fetches the tenant administered by the token holder.
func (c *Client) GetMyTenant(ctx context.Context, token string) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := c.do(ctx, request{
		op:     "tenants.me",
		method: http.MethodGet,
		path:   "/tenants/me",
		token:  token,
		out:    &tenant,
	})
	if err != nil {
		return nil, translate("tenants.me", err)
	}
	return &tenant, nil
}

// UpdateMyTenant edits the administered tenant (PUT /tenants/{tenantId}/me).
func (c *Client) UpdateMyTenant(ctx context.Context, token string, tenantID domain.TenantID, patch *domain.TenantPatch) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := c.do(ctx, request{
		op:     "tenants.update_me",
		method: http.MethodPut,
		path:   fmt.Sprintf("/tenants/%s/me", url.PathEscape(tenantID.String())),
		token:  token,
		body:   patch,
		out:    &tenant,
	})
	if err != nil {
		return nil, translate("tenants.update_me", err)
	}
	return &tenant, nil
}

// ListTenants lists every tenant (super-admin).
func (c *Client) ListTenants(ctx context.Context, token string) ([]domain.Tenant, error) {
	tenants := []domain.Tenant{}
	err := c.do(ctx, request{
		op:     "tenants.list",
		method: http.MethodGet,
		path:   "/tenants",
		token:  token,
		out:    &tenants,
	})
	if err != nil {
		return nil, translate("tenants.list", err)
	}
	return tenants, nil
}

// CreateTenant provisions a new tenant (super-admin).
func (c *Client) CreateTenant(ctx context.Context, token string, req *domain.CreateTenantRequest) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := c.do(ctx, request{
		op:     "tenants.create",
		method: http.MethodPost,
		path:   "/tenants",
		token:  token,
		body:   req,
		out:    &tenant,
	})
	if err != nil {
		return nil, translate("tenants.create", err)
	}
	return &tenant, nil
}
