package domain

import "time"

// OTPPurpose scopes a verification code to the flow that requested it.
type OTPPurpose string

const (
	OTPPurposeRegistration  OTPPurpose = "registration"
	OTPPurposeLogin         OTPPurpose = "login"
	OTPPurposePasswordReset OTPPurpose = "password_reset"
)

// ParseOTPPurpose maps a raw string to a known purpose.
func ParseOTPPurpose(s string) (OTPPurpose, bool) {
	switch OTPPurpose(s) {
	case OTPPurposeRegistration, OTPPurposeLogin, OTPPurposePasswordReset:
		return OTPPurpose(s), true
	}
	return "", false
}

// OTPVerification is a transient proof of phone possession. The most
// recently created unverified, unexpired row per (user, phone, purpose) is
// the only one considered during verification.
type OTPVerification struct {
	ID        string     `json:"id" db:"id"`
	UserID    string     `json:"user_id" db:"user_id"`
	Phone     string     `json:"phone" db:"phone"`
	Code      string     `json:"-" db:"code"`
	Purpose   OTPPurpose `json:"purpose" db:"purpose"`
	Verified  bool       `json:"verified" db:"verified"`
	Attempts  int        `json:"attempts" db:"attempts"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// IsExpired reports whether the code can no longer be used.
func (o *OTPVerification) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
