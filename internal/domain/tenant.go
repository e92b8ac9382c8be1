package domain

import "github.com/shopspring/decimal"

// TenantID identifies one pizzeria. It is the first segment of every
// tenant-scoped path, e.g. "acme-pizza" in /acme-pizza/orders.
type TenantID string

func (t TenantID) String() string {
	return string(t)
}

// Tenant is the public profile and theming of a pizzeria.
type Tenant struct {
	ID             TenantID        `json:"tenantId"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone,omitempty"`
	Address        string          `json:"address,omitempty"`
	LogoURL        string          `json:"logoUrl,omitempty"`
	PrimaryColor   string          `json:"primaryColor,omitempty"`
	SecondaryColor string          `json:"secondaryColor,omitempty"`
	DeliveryFee    decimal.Decimal `json:"deliveryFee"`
	IsOpen         bool            `json:"isOpen"`
}

// TenantPatch is the body for PUT /tenants/{tenantId}/me.
// Nil fields are left untouched by the backend.
type TenantPatch struct {
	Name           *string          `json:"name,omitempty"`
	Phone          *string          `json:"phone,omitempty"`
	Address        *string          `json:"address,omitempty"`
	LogoURL        *string          `json:"logoUrl,omitempty" validate:"omitempty,url"`
	PrimaryColor   *string          `json:"primaryColor,omitempty" validate:"omitempty,hexcolor"`
	SecondaryColor *string          `json:"secondaryColor,omitempty" validate:"omitempty,hexcolor"`
	DeliveryFee    *decimal.Decimal `json:"deliveryFee,omitempty"`
	IsOpen         *bool            `json:"isOpen,omitempty"`
}

// CreateTenantRequest is the body for POST /tenants (super-admin only).
type CreateTenantRequest struct {
	TenantID   TenantID `json:"tenantId" validate:"required,tenantslug"`
	Name       string   `json:"name" validate:"required"`
	AdminName  string   `json:"adminName" validate:"required"`
	AdminEmail string   `json:"adminEmail" validate:"required,email"`
	Password   string   `json:"password" validate:"required,min=6"`
}
