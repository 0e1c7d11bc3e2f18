package dto

// RegisterRequest represents an email/password registration request.
// SalonData is required when Role is SALON_OWNER and ignored otherwise.
type RegisterRequest struct {
	Email     string     `json:"email" binding:"required,email"`
	Password  string     `json:"password" binding:"required,min=8"`
	FirstName string     `json:"first_name" binding:"required"`
	LastName  string     `json:"last_name" binding:"required"`
	Phone     string     `json:"phone"`
	Role      string     `json:"role" binding:"required"`
	SalonData *SalonData `json:"salon_data"`
}

// SalonData is the tenant payload supplied with SALON_OWNER registration.
type SalonData struct {
	Name        string `json:"name" binding:"required"`
	Address     string `json:"address" binding:"required"`
	City        string `json:"city" binding:"required"`
	Country     string `json:"country" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Website     string `json:"website"`
	Description string `json:"description"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SendOTPRequest asks for a one-time code to be texted to a phone.
// UserID is empty for registration codes, where no account exists yet.
type SendOTPRequest struct {
	UserID  string `json:"user_id,omitempty"`
	Phone   string `json:"phone" binding:"required"`
	Purpose string `json:"purpose" binding:"required"`
}

// VerifyOTPRequest presents a received code for verification.
type VerifyOTPRequest struct {
	UserID  string `json:"user_id,omitempty"`
	Phone   string `json:"phone" binding:"required"`
	Code    string `json:"code" binding:"required,len=6"`
	Purpose string `json:"purpose" binding:"required"`
}

// PhoneRegisterRequest creates a phone-only account after OTP verification.
type PhoneRegisterRequest struct {
	Phone     string `json:"phone" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Role      string `json:"role" binding:"required"`
}

// GoogleAuthRequest carries Google sign-in material. The ID token is what
// gets verified; the access token is accepted for client compatibility.
type GoogleAuthRequest struct {
	IDToken     string `json:"id_token" binding:"required"`
	AccessToken string `json:"access_token"`
}

// AppleAuthRequest carries Apple sign-in material.
type AppleAuthRequest struct {
	IdentityToken     string `json:"identity_token" binding:"required"`
	AuthorizationCode string `json:"authorization_code"`
}

// AuthResponse represents an authentication response
type AuthResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int      `json:"expires_in"`
	User        UserInfo `json:"user"`
}

// UserInfo represents user information in response
type UserInfo struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// UserResponse represents a user response
type UserResponse struct {
	ID              string  `json:"id"`
	Email           string  `json:"email"`
	Phone           *string `json:"phone"`
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Role            string  `json:"role"`
	AvatarURL       *string `json:"avatar_url"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
	LastLoginAt     *string `json:"last_login_at"`
	IsEmailVerified bool    `json:"is_email_verified"`
	IsPhoneVerified bool    `json:"is_phone_verified"`
}

// StatusResponse reports how an identifier can authenticate. It reveals
// account existence on purpose: clients use it to choose between login and
// registration screens.
type StatusResponse struct {
	Registered      bool     `json:"registered"`
	IsEmailVerified bool     `json:"is_email_verified"`
	IsPhoneVerified bool     `json:"is_phone_verified"`
	AuthMethods     []string `json:"auth_methods"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
