package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Orders
// ============================================================

// OrderStatus is the backend-owned lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pendente"
	OrderStatusPreparing OrderStatus = "Em Preparação"
	OrderStatusSent      OrderStatus = "Enviado"
	OrderStatusDelivered OrderStatus = "Entregue"
	OrderStatusPickedUp  OrderStatus = "Retirado"
	OrderStatusCancelled OrderStatus = "Cancelado"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusSent,
		OrderStatusDelivered, OrderStatusPickedUp, OrderStatusCancelled:
		return true
	}
	return false
}

// Cancellable reports whether the customer may still cancel.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending
}

// DeliveryOption is how the customer receives the order.
type DeliveryOption string

const (
	DeliveryOptionDelivery DeliveryOption = "delivery"
	DeliveryOptionPickup   DeliveryOption = "pickup"
)

// Valid reports whether o is a known delivery option.
func (o DeliveryOption) Valid() bool {
	return o == DeliveryOptionDelivery || o == DeliveryOptionPickup
}

// OrderItem is a product snapshot plus quantity.
type OrderItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Order is the client's cached copy of a backend order.
type Order struct {
	ID             string          `json:"id"`
	Items          []OrderItem     `json:"items"`
	Total          decimal.Decimal `json:"total"`
	Status         OrderStatus     `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
	DeliveryOption DeliveryOption  `json:"deliveryOption"`
	Address        *Address        `json:"address,omitempty"`
	TenantID       TenantID        `json:"tenantId,omitempty"`
}

// CartItems converts the order back into cart lines, used by reorder.
func (o Order) CartItems() []CartItem {
	items := make([]CartItem, 0, len(o.Items))
	for _, it := range o.Items {
		if it.Quantity <= 0 {
			continue
		}
		items = append(items, CartItem{
			ProductID: it.Product.ID,
			Name:      it.Product.Name,
			Price:     it.Product.Price,
			Quantity:  it.Quantity,
		})
	}
	return items
}

// CreateOrderRequest is the body for POST /orders.
type CreateOrderRequest struct {
	TenantID       TenantID        `json:"tenantId"`
	Items          []OrderItem     `json:"items"`
	Total          decimal.Decimal `json:"total"`
	DeliveryOption DeliveryOption  `json:"deliveryOption"`
	Address        *Address        `json:"address,omitempty"`
	User           UserSnapshot    `json:"user"`
}

// UserSnapshot is the customer data copied into an order at submission.
type UserSnapshot struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Quote is the price breakdown shown on the order summary.
type Quote struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryFee    decimal.Decimal `json:"deliveryFee"`
	Total          decimal.Decimal `json:"total"`
	DeliveryOption DeliveryOption  `json:"deliveryOption"`
}
