package repository

import (
	"context"
	"time"

	"github.com/glowbook/auth-service/internal/domain"
)

// UserRepository defines methods for user operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateLastLogin(ctx context.Context, userID string) error
	SetPhoneVerified(ctx context.Context, userID string) error
}

// TokenRepository defines methods for refresh token operations. Deletion is
// revocation: a token absent from the store is invalid regardless of its
// signature.
type TokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	// DeleteByTokenHash returns ErrNotFound when no row was deleted, which
	// callers use to detect an already-rotated token.
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteByUserID(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) error
}

// OTPRepository defines methods for one-time code operations
type OTPRepository interface {
	Create(ctx context.Context, otp *domain.OTPVerification) error
	// GetLatestActive returns the most recently created unverified,
	// unexpired record for (userID, phone, purpose), or ErrNotFound.
	GetLatestActive(ctx context.Context, userID, phone string, purpose domain.OTPPurpose) (*domain.OTPVerification, error)
	// LatestCreatedAt returns the creation time of the newest record for
	// (userID, phone, purpose) regardless of state, for resend throttling.
	LatestCreatedAt(ctx context.Context, userID, phone string, purpose domain.OTPPurpose) (time.Time, error)
	// LatestVerified returns the most recent verified, unexpired record for
	// (phone, purpose); phone registration uses it as proof of possession.
	LatestVerified(ctx context.Context, phone string, purpose domain.OTPPurpose) (*domain.OTPVerification, error)
	IncrementAttempts(ctx context.Context, id string) error
	MarkVerified(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, userID, phone string) error
}

// OAuthProviderRepository defines methods for OAuth provider operations
type OAuthProviderRepository interface {
	Create(ctx context.Context, provider *domain.OAuthProvider) error
	GetByProvider(ctx context.Context, provider, providerUserID string) (*domain.OAuthProvider, error)
	GetByUserID(ctx context.Context, userID string) ([]*domain.OAuthProvider, error)
}

// SalonRepository defines the tenant rows provisioned during owner
// registration.
type SalonRepository interface {
	CreateSalon(ctx context.Context, salon *domain.Salon) error
	CreateMember(ctx context.Context, member *domain.SalonMember) error
	CreateStaff(ctx context.Context, staff *domain.SalonStaff) error
}

// ProfileRepository defines methods for customer profile operations
type ProfileRepository interface {
	CreateCustomerProfile(ctx context.Context, profile *domain.CustomerProfile) error
}
