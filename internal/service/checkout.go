package service

import (
	"context"

	"github.com/boddenberg/pizzaria-client-go/internal/domain"
	"github.com/boddenberg/pizzaria-client-go/internal/orders"
	"github.com/boddenberg/pizzaria-client-go/internal/port"
	"github.com/boddenberg/pizzaria-client-go/internal/validation"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// SessionReader is the session view the services need.
type SessionReader interface {
	Current() domain.Session
	Expire(ctx context.Context)
}

// CartStore is the cart view checkout needs.
type CartStore interface {
	Tenant() domain.TenantID
	Items() []domain.CartItem
	Clear(ctx context.Context) error
	ReplaceAll(ctx context.Context, items []domain.CartItem) error
}

// OrderLookup finds a previously fetched order.
type OrderLookup interface {
	Order(orderID string) (orders.View, bool)
}

// SubmitRequest is the order-summary form.
type SubmitRequest struct {
	DeliveryOption domain.DeliveryOption `json:"deliveryOption"`
	Address        *domain.Address       `json:"address,omitempty"`
}

// Checkout turns the cart into an order.
type Checkout struct {
	api     port.OrderAPI
	session SessionReader
	cart    CartStore
	catalog *Catalog
	orders  OrderLookup
	logger  *zap.Logger
}

// NewCheckout creates the checkout service.
func NewCheckout(api port.OrderAPI, session SessionReader, cart CartStore, catalog *Catalog, lookup OrderLookup, logger *zap.Logger) *Checkout {
	return &Checkout{
		api:     api,
		session: session,
		cart:    cart,
		catalog: catalog,
		orders:  lookup,
		logger:  logger,
	}
}

// Quote prices the current cart for a delivery option.
func (c *Checkout) Quote(ctx context.Context, option domain.DeliveryOption) (*domain.Quote, error) {
	return c.quote(ctx, option, c.cart.Items())
}

// quote prices items, which the caller read from the cart once.
func (c *Checkout) quote(ctx context.Context, option domain.DeliveryOption, items []domain.CartItem) (*domain.Quote, error) {
	if option == "" {
		option = domain.DeliveryOptionDelivery
	}
	if !option.Valid() {
		return nil, &domain.ErrValidation{Field: "deliveryOption", Message: "opção de entrega inválida"}
	}

	tenantID := c.cart.Tenant()
	if tenantID == "" {
		return nil, &domain.ErrValidation{Field: "tenantId", Message: "nenhuma pizzaria selecionada"}
	}

	subtotal := domain.CartTotal(items)
	fee := decimal.Zero
	if option == domain.DeliveryOptionDelivery {
		t, err := c.catalog.Tenant(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		fee = t.DeliveryFee
	}

	return &domain.Quote{
		Subtotal:       subtotal,
		DeliveryFee:    fee,
		Total:          subtotal.Add(fee),
		DeliveryOption: option,
	}, nil
}

// Submit places an order with the current cart. The cart is cleared only
// after the backend accepted the order. Never retried.
func (c *Checkout) Submit(ctx context.Context, req SubmitRequest) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "Checkout.Submit")
	defer span.End()

	sess := c.session.Current()
	if !sess.Active() {
		return nil, &domain.ErrAuth{Message: "Faça login para finalizar o pedido"}
	}

	tenantID := c.cart.Tenant()
	span.SetAttributes(attribute.String("tenant.id", tenantID.String()))
	if sess.User.TenantID != tenantID {
		return nil, &domain.ErrTenantMismatch{SessionTenant: sess.User.TenantID, RouteTenant: tenantID}
	}

	items := c.cart.Items()
	if len(items) == 0 {
		return nil, &domain.ErrValidation{Field: "items", Message: "o carrinho está vazio"}
	}

	// Lines and total come from the same read of the cart.
	quote, err := c.quote(ctx, req.DeliveryOption, items)
	if err != nil {
		return nil, err
	}

	var address *domain.Address
	if quote.DeliveryOption == domain.DeliveryOptionDelivery {
		address = req.Address
		if address == nil {
			a := sess.User.Address
			address = &a
		}
		if err := validation.Struct(address); err != nil {
			return nil, err
		}
	}

	orderItems := make([]domain.OrderItem, 0, len(items))
	for _, it := range items {
		orderItems = append(orderItems, domain.OrderItem{
			Product: domain.Product{
				ID:        it.ProductID,
				Name:      it.Name,
				Price:     it.Price,
				Available: true,
				TenantID:  tenantID,
			},
			Quantity: it.Quantity,
		})
	}

	order, err := c.api.CreateOrder(ctx, sess.Token, &domain.CreateOrderRequest{
		TenantID:       tenantID,
		Items:          orderItems,
		Total:          quote.Total,
		DeliveryOption: quote.DeliveryOption,
		Address:        address,
		User: domain.UserSnapshot{
			ID:    sess.User.ID,
			Name:  sess.User.Name,
			Phone: sess.User.Phone,
			Email: sess.User.Email,
		},
	})
	if err != nil {
		if domain.IsSessionExpired(err) {
			c.session.Expire(ctx)
		}
		c.logger.Warn("order submission failed",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	if err := c.cart.Clear(ctx); err != nil {
		c.logger.Error("cart clear after order failed",
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
	}

	c.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("tenant_id", tenantID.String()),
		zap.String("total", quote.Total.StringFixed(2)),
	)
	return order, nil
}

// Reorder replaces the cart with the contents of a past order.
func (c *Checkout) Reorder(ctx context.Context, orderID string) ([]domain.CartItem, error) {
	ctx, span := tracer.Start(ctx, "Checkout.Reorder")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", orderID))

	if !c.session.Current().Active() {
		return nil, &domain.ErrAuth{Message: "Faça login para repetir pedidos"}
	}

	view, ok := c.orders.Order(orderID)
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "order", ID: orderID}
	}
	tenantID := c.cart.Tenant()
	if view.TenantID != "" && view.TenantID != tenantID {
		return nil, &domain.ErrTenantMismatch{SessionTenant: view.TenantID, RouteTenant: tenantID}
	}

	items := view.CartItems()
	if len(items) == 0 {
		return nil, &domain.ErrValidation{Field: "items", Message: "pedido sem itens"}
	}
	if err := c.cart.ReplaceAll(ctx, items); err != nil {
		return nil, err
	}
	return c.cart.Items(), nil
}
