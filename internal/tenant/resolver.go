// Package tenant derives the active tenant and view from a navigation path.
// It is the single source of the tenant id for every other component.
package tenant

import (
	"strings"

	"github.com/boddenberg/pizzaria-client-go/internal/domain"
)

// View is the screen a path points at.
type View string

const (
	ViewHome         View = "home"          // /
	ViewMenu         View = "menu"          // /:tenantId
	ViewOrderSummary View = "order-summary" // /:tenantId/order-summary
	ViewOrders       View = "orders"        // /:tenantId/orders
	ViewProfile      View = "profile"       // /:tenantId/profile
	ViewAdmin        View = "admin"         // /:tenantId/admin
	ViewUnknown      View = "unknown"
)

// Route is the parsed form of a navigation path.
type Route struct {
	Tenant domain.TenantID
	View   View
}

// Path renders the canonical path of the route.
func (r Route) Path() string {
	switch r.View {
	case ViewHome:
		return "/"
	case ViewMenu:
		return "/" + r.Tenant.String()
	case ViewUnknown:
		return ""
	}
	return "/" + r.Tenant.String() + "/" + string(r.View)
}

// Resolve returns the tenant of path: its first non-empty segment,
// lowercased. ok is false for the bare root path.
func Resolve(path string) (domain.TenantID, bool) {
	seg, _ := nextSegment(stripQuery(path))
	if seg == "" {
		return "", false
	}
	return domain.TenantID(strings.ToLower(seg)), true
}

// ParseRoute resolves the tenant and maps the remaining segments to a view.
func ParseRoute(path string) Route {
	first, rest := nextSegment(stripQuery(path))
	if first == "" {
		return Route{View: ViewHome}
	}
	r := Route{Tenant: domain.TenantID(strings.ToLower(first))}

	second, rest := nextSegment(rest)
	if extra, _ := nextSegment(rest); extra != "" {
		r.View = ViewUnknown
		return r
	}

	switch View(second) {
	case "":
		r.View = ViewMenu
	case ViewOrderSummary, ViewOrders, ViewProfile, ViewAdmin:
		r.View = View(second)
	default:
		r.View = ViewUnknown
	}
	return r
}

// TenantPath returns the root view path of a tenant.
func TenantPath(id domain.TenantID) string {
	return Route{Tenant: id, View: ViewMenu}.Path()
}

func stripQuery(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		return path[:i]
	}
	return path
}

// nextSegment returns the first non-empty segment of p and what follows it.
func nextSegment(p string) (seg, rest string) {
	p = strings.TrimLeft(p, "/")
	if p == "" {
		return "", ""
	}
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i], p[i:]
	}
	return p, ""
}
