// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the stores and
// services from the concrete backend client and storage drivers.
package port

import (
	"context"

	"github.com/boddenberg/pizzaria-client-go/internal/domain"
)

// AuthAPI covers the /auth endpoints of the backend.
type AuthAPI interface {
	Me(ctx context.Context, token string) (*domain.UserProfile, error)
	Login(ctx context.Context, tenantID domain.TenantID, req *domain.LoginRequest) (*domain.AuthResult, error)
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResult, error)
	UpdateMe(ctx context.Context, token string, patch *domain.ProfilePatch) (*domain.UserProfile, error)
}

// CatalogAPI covers the /products endpoints.
type CatalogAPI interface {
	ListProducts(ctx context.Context, tenantID domain.TenantID) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, token, productID string, patch *domain.ProductPatch) (*domain.Product, error)
}

// TenantAPI covers the /tenants endpoints.
type TenantAPI interface {
	GetTenant(ctx context.Context, tenantID domain.TenantID) (*domain.Tenant, error)
	GetMyTenant(ctx context.Context, token string) (*domain.Tenant, error)
	UpdateMyTenant(ctx context.Context, token string, tenantID domain.TenantID, patch *domain.TenantPatch) (*domain.Tenant, error)
	ListTenants(ctx context.Context, token string) ([]domain.Tenant, error)
	CreateTenant(ctx context.Context, token string, req *domain.CreateTenantRequest) (*domain.Tenant, error)
}

// OrderAPI covers the /orders endpoints.
type OrderAPI interface {
	CreateOrder(ctx context.Context, token string, req *domain.CreateOrderRequest) (*domain.Order, error)
	ListUserOrders(ctx context.Context, token string, tenantID domain.TenantID) ([]domain.Order, error)
	CancelOrder(ctx context.Context, token, orderID string) error
}

// Storage is the persistent key-value store standing in for browser storage.
// Get returns ok=false when the key does not exist.
type Storage interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Notifier receives user-facing confirmations (the toast collaborator).
type Notifier interface {
	Notify(ctx context.Context, kind, message string)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
