package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/boddenberg/pizzaria-client-go/internal/domain"
)

// CreateOrder submits an order (POST /orders). Never retried.
func (c *Client) CreateOrder(ctx context.Context, token string, req *domain.CreateOrderRequest) (*domain.Order, error) {
	var order domain.Order
	err := c.do(ctx, request{
		op:     "orders.create",
		method: http.MethodPost,
		path:   "/orders",
		token:  token,
		body:   req,
		out:    &order,
	})
	if err != nil {
		return nil, translate("orders.create", err)
	}
	return &order, nil
}

// ListUserOrders lists the caller's orders at a tenant (GET /orders/user?tenantId=).
func (c *Client) ListUserOrders(ctx context.Context, token string, tenantID domain.TenantID) ([]domain.Order, error) {
	orders := []domain.Order{}
	err := c.do(ctx, request{
		op:     "orders.list",
		method: http.MethodGet,
		path:   "/orders/user?tenantId=" + url.QueryEscape(tenantID.String()),
		token:  token,
		out:    &orders,
	})
	if err != nil {
		return nil, translate("orders.list", err)
	}
	return orders, nil
}

// CancelOrder asks the backend to cancel a pending order (PUT /orders/{id}/cancel).
func (c *Client) CancelOrder(ctx context.Context, token, orderID string) error {
	err := c.do(ctx, request{
		op:     "orders.cancel",
		method: http.MethodPut,
		path:   fmt.Sprintf("/orders/%s/cancel", url.PathEscape(orderID)),
		token:  token,
	})
	return translate("orders.cancel", err)
}
