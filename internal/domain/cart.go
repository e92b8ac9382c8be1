package domain

import "github.com/shopspring/decimal"

// Product is one catalog entry of a tenant.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Available   bool            `json:"available"`
	TenantID    TenantID        `json:"tenantId"`
}

// ProductPatch is the admin edit sent to PUT /products/{id}.
type ProductPatch struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=1"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Category    *string          `json:"category,omitempty"`
	ImageURL    *string          `json:"imageUrl,omitempty" validate:"omitempty,url"`
	Available   *bool            `json:"available,omitempty"`
}

// CartItem is one line of the cart. ProductID is unique within a cart.
type CartItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal is price times quantity.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartTotal sums the subtotals of items.
func CartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Menu is a tenant's profile together with its catalog.
type Menu struct {
	Tenant     Tenant    `json:"tenant"`
	Products   []Product `json:"products"`
	Categories []string  `json:"categories"`
}
