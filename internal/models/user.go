package models

import "time"

// Roles carried in the JWT. The service trusts the authenticated identity
// and role; it never issues or checks credentials itself.
const (
	RoleCustomer = "customer"
	RoleVendor   = "vendor"
	RoleAdmin    = "admin"
)

// User is the profile of an authenticated customer or vendor operator.
type User struct {
	ID        string    `json:"id"` // UUID string from DB
	Nickname  string    `json:"nickname,omitempty"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserUpdateData defines fields that can be updated for a user profile.
type UserUpdateData struct {
	Nickname *string `json:"nickname,omitempty" validate:"omitempty,min=1,max=100"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,e164"`
}
