package domain

import "time"

// User represents an account in the system. Phone and PasswordHash are
// optional: phone-only accounts carry a synthetic email and no password,
// OAuth-only accounts carry no password either.
type User struct {
	ID              string     `json:"id" db:"id"`
	Email           string     `json:"email" db:"email"`
	Phone           *string    `json:"phone" db:"phone"`
	PasswordHash    *string    `json:"-" db:"password_hash"`
	FirstName       string     `json:"first_name" db:"first_name"`
	LastName        string     `json:"last_name" db:"last_name"`
	Role            Role       `json:"role" db:"role"`
	AvatarURL       *string    `json:"avatar_url" db:"avatar_url"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
	LastLoginAt     *time.Time `json:"last_login_at" db:"last_login_at"`
	IsActive        bool       `json:"is_active" db:"is_active"`
	IsEmailVerified bool       `json:"is_email_verified" db:"is_email_verified"`
	IsPhoneVerified bool       `json:"is_phone_verified" db:"is_phone_verified"`
}

// HasPassword reports whether the account can authenticate with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// CustomerProfile holds customer-side attributes created alongside every
// CUSTOMER registration.
type CustomerProfile struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	LoyaltyTier string    `json:"loyalty_tier" db:"loyalty_tier"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// LoyaltyTierBronze is the lowest tier, assigned to new customers.
const LoyaltyTierBronze = "BRONZE"

// OAuthProvider represents an external identity linked to a user.
type OAuthProvider struct {
	ID             string    `json:"id" db:"id"`
	UserID         string    `json:"user_id" db:"user_id"`
	Provider       string    `json:"provider" db:"provider"` // google, apple
	ProviderUserID string    `json:"provider_user_id" db:"provider_user_id"`
	Email          *string   `json:"email" db:"email"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
