package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/boddenberg/pizzaria-client-go/internal/domain"
)

// ListProducts fetches the catalog of a tenant (GET /products?tenantId=).
func (c *Client) ListProducts(ctx context.Context, tenantID domain.TenantID) ([]domain.Product, error) {
	products := []domain.Product{}
	err := c.do(ctx, request{
		op:     "products.list",
		method: http.MethodGet,
		path:   "/products?tenantId=" + url.QueryEscape(tenantID.String()),
		out:    &products,
	})
	if err != nil {
		return nil, translate("products.list", err)
	}
	return products, nil
}

// UpdateProduct applies an admin edit (PUT /products/{id}).
func (c *Client) UpdateProduct(ctx context.Context, token, productID string, patch *domain.ProductPatch) (*domain.Product, error) {
	var product domain.Product
	err := c.do(ctx, request{
		op:     "products.update",
		method: http.MethodPut,
		path:   fmt.Sprintf("/products/%s", url.PathEscape(productID)),
		token:  token,
		body:   patch,
		out:    &product,
	})
	if err != nil {
		return nil, translate("products.update", err)
	}
	return &product, nil
}
