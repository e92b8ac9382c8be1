// Package gate decides whether a view may render for the current session.
// It keeps no state between navigations.
package gate

import (
	"github.com/boddenberg/pizzaria-client-go/internal/domain"
	"github.com/boddenberg/pizzaria-client-go/internal/tenant"
)

// Outcome of an access decision.
type Outcome string

const (
	Allow         Outcome = "allow"
	LoginRequired Outcome = "login_required"
	Forbidden     Outcome = "forbidden"
	NotFound      Outcome = "not_found"
)

// Decision tells the view layer what to do with a navigation.
// Render is true only for Allow.
type Decision struct {
	Outcome     Outcome `json:"outcome"`
	Render      bool    `json:"render"`
	Redirect    string  `json:"redirect,omitempty"`
	LoginPrompt bool    `json:"loginPrompt,omitempty"`
}

type requirement int

const (
	public requirement = iota
	authenticated
	admin
)

var views = map[tenant.View]requirement{
	tenant.ViewHome:         public,
	tenant.ViewMenu:         public,
	tenant.ViewOrderSummary: public,
	tenant.ViewOrders:       authenticated,
	tenant.ViewProfile:      authenticated,
	tenant.ViewAdmin:        admin,
}

// Evaluate applies the access rules to route for sess.
func Evaluate(route tenant.Route, sess domain.Session) Decision {
	req, ok := views[route.View]
	if !ok {
		return Decision{Outcome: NotFound}
	}

	switch req {
	case public:
		return Decision{Outcome: Allow, Render: true}
	case authenticated, admin:
		if !sess.Active() {
			return Decision{
				Outcome:     LoginRequired,
				Redirect:    tenant.TenantPath(route.Tenant),
				LoginPrompt: true,
			}
		}
		if req == admin && !sess.User.IsAdmin {
			return Decision{Outcome: Forbidden}
		}
		return Decision{Outcome: Allow, Render: true}
	}
	return Decision{Outcome: NotFound}
}
