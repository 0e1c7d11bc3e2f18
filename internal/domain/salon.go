package domain

import "time"

// Salon is the tenant record provisioned transactionally with a SALON_OWNER
// registration. A SALON_OWNER account must never exist without its salon.
type Salon struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Address     string    `json:"address" db:"address"`
	City        string    `json:"city" db:"city"`
	Country     string    `json:"country" db:"country"`
	Phone       string    `json:"phone" db:"phone"`
	Email       string    `json:"email" db:"email"`
	Website     *string   `json:"website" db:"website"`
	Description *string   `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// SalonMemberRoleOwner is the membership role recorded for the registering
// owner.
const SalonMemberRoleOwner = "OWNER"

// SalonMember links a user to a salon with a membership role.
type SalonMember struct {
	ID        string    `json:"id" db:"id"`
	SalonID   string    `json:"salon_id" db:"salon_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SalonStaff is the bookable-staff record. Owners get one at registration so
// they can take bookings without further setup.
type SalonStaff struct {
	ID        string    `json:"id" db:"id"`
	SalonID   string    `json:"salon_id" db:"salon_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
