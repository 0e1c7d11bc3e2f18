package service

import (
	"context"

	"github.com/glowbook/auth-service/internal/domain"
	"github.com/glowbook/auth-service/internal/dto"
)

// AuthService defines password-based authentication and session operations.
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error)
	Logout(ctx context.Context, userID, refreshToken string) error
	GetUser(ctx context.Context, userID string) (*dto.UserResponse, error)
	CheckStatus(ctx context.Context, identifier string) (*dto.StatusResponse, error)
	ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error)
	PurgeExpiredSessions(ctx context.Context) error
}

// OTPService defines one-time code operations and phone-only registration.
type OTPService interface {
	Send(ctx context.Context, req *dto.SendOTPRequest) error
	Verify(ctx context.Context, req *dto.VerifyOTPRequest) error
	RegisterWithPhone(ctx context.Context, req *dto.PhoneRegisterRequest) (*AuthResult, error)
}

// OAuthService defines third-party identity sign-in.
type OAuthService interface {
	SignIn(ctx context.Context, provider, rawToken string) (*AuthResult, error)
}
