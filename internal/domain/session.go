package domain

// ============================================================
// Session / User profile
// ============================================================

// Address is the delivery address kept on the user profile.
type Address struct {
	CEP          string `json:"cep" validate:"required"`
	Street       string `json:"street" validate:"required"`
	Number       string `json:"number" validate:"required"`
	Neighborhood string `json:"neighborhood" validate:"required"`
	City         string `json:"city" validate:"required"`
	Complement   string `json:"complement,omitempty"`
}

// UserProfile is the authenticated user as returned by the backend.
// It is only ever replaced by confirmed server responses.
type UserProfile struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Phone        string   `json:"phone"`
	Address      Address  `json:"address"`
	Email        string   `json:"email"`
	IsAdmin      bool     `json:"isAdmin"`
	IsSuperAdmin bool     `json:"isSuperAdmin,omitempty"`
	TenantID     TenantID `json:"tenantId"`
}

// Session is the credential and identity currently active in the client.
// Token and User are either both set or both empty.
type Session struct {
	Token string       `json:"-"`
	User  *UserProfile `json:"user,omitempty"`
}

// Active reports whether the session carries a verified user.
func (s Session) Active() bool {
	return s.Token != "" && s.User != nil
}

// AuthResult is the body returned by login and registration.
type AuthResult struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

// LoginRequest is the body for POST /auth/{tenantId}/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the registration form. ConfirmPassword never leaves
// the client.
type RegisterRequest struct {
	Name            string   `json:"name" validate:"required"`
	Phone           string   `json:"phone" validate:"required"`
	Email           string   `json:"email" validate:"required,email"`
	Password        string   `json:"password" validate:"required,min=6"`
	ConfirmPassword string   `json:"-" validate:"required,eqfield=Password"`
	Address         Address  `json:"address"`
	TenantID        TenantID `json:"tenantId"`
}

// ProfilePatch is the partial update sent to PUT /auth/me.
type ProfilePatch struct {
	Name    *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	Phone   *string  `json:"phone,omitempty" validate:"omitempty,min=8"`
	Email   *string  `json:"email,omitempty" validate:"omitempty,email"`
	Address *Address `json:"address,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.Name == nil && p.Phone == nil && p.Email == nil && p.Address == nil
}
