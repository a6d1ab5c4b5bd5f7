package model

import "time"

// Roles recognised by the platform. Exactly one role is assigned per user
// and it selects which profile table holds the user's role-specific data.
const (
	RoleAdmin    = "ADMIN"
	RoleCustomer = "CUSTOMER"
	RoleSeller   = "SELLER"
	RoleProvider = "PROVIDER"
	RoleDelivery = "DELIVERY"
	RoleSupport  = "SUPPORT"
)

// ValidRole reports whether the given string is a recognised role name.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleCustomer, RoleSeller, RoleProvider, RoleDelivery, RoleSupport:
		return true
	}
	return false
}

// User represents an application user record as stored in the `users`
// table. The role-specific profile is modelled separately (see Profile)
// so that a user can never carry two profiles at once.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – one of the Role* constants.
//  Name         – display name.
//  Phone        – contact phone number.
//  IsVerified   – whether the signup OTP has been confirmed.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	Name         string    // users.name
	Phone        string    // users.phone
	IsVerified   bool      // users.is_verified
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Profile is the role-specific half of a user. Only the fields relevant
// for the user's role are populated; the zero value is valid for roles
// that carry no extra data (ADMIN).
type Profile struct {
	ShippingAddress string `json:"shipping_address,omitempty"` // customer_profiles.shipping_address
	ShopName        string `json:"shop_name,omitempty"`        // seller_profiles.shop_name
	GSTNumber       string `json:"gst_number,omitempty"`       // seller_profiles.gst_number
	WorkshopName    string `json:"workshop_name,omitempty"`    // provider_profiles.workshop_name
	ServiceArea     string `json:"service_area,omitempty"`     // provider_profiles.service_area
	VehicleNumber   string `json:"vehicle_number,omitempty"`   // delivery_profiles.vehicle_number
	Zone            string `json:"zone,omitempty"`             // delivery_profiles.zone
	Department      string `json:"department,omitempty"`       // support_profiles.department
}

// RefreshToken models an entry in the `refresh_tokens` table. The plain
// token is never stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
