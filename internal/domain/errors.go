package domain

import (
	"errors"
	"fmt"
)

// Error types for consistent error handling across the client.

// ErrAuth indicates bad credentials or a login attempt without tenant context.
type ErrAuth struct {
	Message string
}

func (e *ErrAuth) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "authentication failed"
}

// ErrSessionExpired indicates the backend rejected the bearer token (401).
// The session is torn down whenever this is observed.
type ErrSessionExpired struct {
	Operation string
}

func (e *ErrSessionExpired) Error() string {
	return fmt.Sprintf("session expired during %s", e.Operation)
}

// ErrTenantMismatch indicates the session user belongs to another tenant
// than the one resolved from the current path.
type ErrTenantMismatch struct {
	SessionTenant TenantID
	RouteTenant   TenantID
}

func (e *ErrTenantMismatch) Error() string {
	return fmt.Sprintf("tenant mismatch: session=%s route=%s", e.SessionTenant, e.RouteTenant)
}

// ErrNetwork indicates a failed call to the backend (transport error or
// unexpected status). Local state is left unchanged.
type ErrNetwork struct {
	Operation string
	Status    int
	Err       error
}

func (e *ErrNetwork) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("backend error [%s]: status %d: %v", e.Operation, e.Status, e.Err)
	}
	return fmt.Sprintf("backend error [%s]: %v", e.Operation, e.Err)
}

func (e *ErrNetwork) Unwrap() error {
	return e.Err
}

// ErrValidation indicates a client-side form constraint was violated.
// No network call is attempted when this is returned.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrProfileUpdate indicates the backend did not accept a profile update.
type ErrProfileUpdate struct {
	Err error
}

func (e *ErrProfileUpdate) Error() string {
	return fmt.Sprintf("profile update failed: %v", e.Err)
}

func (e *ErrProfileUpdate) Unwrap() error {
	return e.Err
}

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrForbidden indicates the user lacks the role for the operation.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Action)
}

// ErrConflict indicates a resource already exists (e.g. duplicate tenant slug).
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// IsSessionExpired reports whether err carries an ErrSessionExpired.
func IsSessionExpired(err error) bool {
	var expired *ErrSessionExpired
	return errors.As(err, &expired)
}
