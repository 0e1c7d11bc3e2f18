package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glowbook/auth-service/internal/apperr"
	"github.com/glowbook/auth-service/internal/domain"
	"github.com/glowbook/auth-service/internal/dto"
	"github.com/glowbook/auth-service/internal/repository"
	"github.com/glowbook/auth-service/internal/utils"
)

// TokenBlacklist tracks revoked tokens between rotation and natural expiry.
type TokenBlacklist interface {
	AddToken(ctx context.Context, token string, expiry time.Duration) error
	IsTokenBlacklisted(ctx context.Context, token string) (bool, error)
}

// authService implements AuthService interface
type authService struct {
	repos      *repository.Repositories
	jwtManager *utils.JWTManager
	issuer     *tokenIssuer
	blacklist  TokenBlacklist
	bcryptCost int
}

// NewAuthService creates a new auth service
func NewAuthService(
	repos *repository.Repositories,
	jwtManager *utils.JWTManager,
	blacklist TokenBlacklist,
	bcryptCost int,
) AuthService {
	return &authService{
		repos:      repos,
		jwtManager: jwtManager,
		issuer:     newTokenIssuer(jwtManager, repos.Token),
		blacklist:  blacklist,
		bcryptCost: bcryptCost,
	}
}

// Register creates a new account. Role policy decides which supplementary
// rows are provisioned; user and supplementary rows are created in one
// transaction so a SALON_OWNER never exists without its salon.
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*AuthResult, error) {
	email := utils.SanitizeEmail(req.Email)
	if !utils.ValidateEmail(email) {
		return nil, apperr.Validation("invalid email format")
	}

	if !utils.ValidatePassword(req.Password) {
		return nil, apperr.Validation("password must be at least 8 characters long and contain uppercase, lowercase, and number")
	}

	var phone *string
	if req.Phone != "" {
		p := utils.SanitizePhone(req.Phone)
		if !utils.ValidatePhone(p) {
			return nil, apperr.Validation("invalid phone number format")
		}
		phone = &p
	}

	role, ok := domain.ParseRole(req.Role)
	if !ok {
		return nil, apperr.Validation("invalid role: %s", req.Role)
	}

	if err := validateRegistration(role, req.SalonData); err != nil {
		return nil, err
	}

	if err := s.checkAvailability(ctx, email, phone); err != nil {
		return nil, err
	}

	passwordHash, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	user := &domain.User{
		Email:        email,
		Phone:        phone,
		PasswordHash: &passwordHash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         role,
		IsActive:     true,
	}

	err = s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.User.Create(ctx, user); err != nil {
			return err
		}
		return createSupplementaryRows(ctx, tx, user, req.SalonData)
	})
	if err != nil {
		return nil, translateRegistrationError(err)
	}

	return s.issuer.Issue(ctx, user)
}

// checkAvailability rejects an email or phone that is already registered.
// The store's uniqueness constraints remain the backstop for races.
func (s *authService) checkAvailability(ctx context.Context, email string, phone *string) error {
	_, err := s.repos.User.GetByEmail(ctx, email)
	if err == nil {
		return apperr.Conflict("user with this email already exists")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return apperr.Internal("failed to check email availability", err)
	}

	if phone != nil {
		_, err = s.repos.User.GetByPhone(ctx, *phone)
		if err == nil {
			return apperr.Conflict("user with this phone already exists")
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return apperr.Internal("failed to check phone availability", err)
		}
	}

	return nil
}

// createSupplementaryRows provisions the role-dependent companion records
// inside the registration transaction.
func createSupplementaryRows(ctx context.Context, tx *repository.Repositories, user *domain.User, salonData *dto.SalonData) error {
	switch user.Role {
	case domain.RoleCustomer:
		return tx.Profile.CreateCustomerProfile(ctx, &domain.CustomerProfile{
			UserID:      user.ID,
			LoyaltyTier: domain.LoyaltyTierBronze,
		})
	case domain.RoleSalonOwner:
		salon := &domain.Salon{
			Name:    salonData.Name,
			Address: salonData.Address,
			City:    salonData.City,
			Country: salonData.Country,
			Phone:   utils.SanitizePhone(salonData.Phone),
			Email:   utils.SanitizeEmail(salonData.Email),
		}
		if salonData.Website != "" {
			salon.Website = &salonData.Website
		}
		if salonData.Description != "" {
			salon.Description = &salonData.Description
		}
		if err := tx.Salon.CreateSalon(ctx, salon); err != nil {
			return err
		}
		if err := tx.Salon.CreateMember(ctx, &domain.SalonMember{
			SalonID: salon.ID,
			UserID:  user.ID,
			Role:    domain.SalonMemberRoleOwner,
		}); err != nil {
			return err
		}
		return tx.Salon.CreateStaff(ctx, &domain.SalonStaff{
			SalonID:  salon.ID,
			UserID:   user.ID,
			Title:    "Owner",
			IsActive: true,
		})
	default:
		// validateRegistration has already rejected everything else.
		return fmt.Errorf("unexpected role %s in registration transaction", user.Role)
	}
}

// translateRegistrationError maps store-level duplicate errors (lost
// uniqueness races) onto the same conflict the pre-check reports.
func translateRegistrationError(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apperr.Conflict("user with this email already exists")
	case errors.Is(err, repository.ErrDuplicatePhone):
		return apperr.Conflict("user with this phone already exists")
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperr.Internal("registration failed", err)
}

// Login authenticates with email and password. Unknown email and wrong
// password produce the same error so accounts cannot be enumerated.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*AuthResult, error) {
	user, err := s.repos.User.GetByEmail(ctx, utils.SanitizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Auth("invalid credentials")
		}
		return nil, apperr.Internal("failed to get user", err)
	}

	if !user.HasPassword() || !utils.CheckPasswordHash(req.Password, *user.PasswordHash) {
		return nil, apperr.Auth("invalid credentials")
	}

	if !user.IsActive {
		return nil, apperr.Permission("user account is inactive")
	}

	// Best effort; a failed timestamp update must not fail the login.
	_ = s.repos.User.UpdateLastLogin(ctx, user.ID)

	return s.issuer.Issue(ctx, user)
}

// RefreshToken rotates a refresh token: the presented token is checked
// cryptographically and against the store, then deleted before a new pair
// is issued. A token that lost a concurrent rotation race is rejected.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperr.Auth("invalid refresh token")
	}

	tokenHash := hashToken(refreshToken)

	// Second check on top of signature validation: a syntactically valid
	// but revoked or rotated token must still be rejected.
	dbToken, err := s.repos.Token.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Auth("invalid refresh token")
		}
		return nil, apperr.Internal("failed to get token", err)
	}

	if dbToken.UserID != userID {
		return nil, apperr.Auth("invalid refresh token")
	}

	if time.Now().After(dbToken.ExpiresAt) {
		return nil, apperr.Auth("refresh token expired")
	}

	isBlacklisted, err := s.blacklist.IsTokenBlacklisted(ctx, refreshToken)
	if err != nil {
		return nil, apperr.Dependency("failed to check token blacklist", err)
	}
	if isBlacklisted {
		return nil, apperr.Auth("invalid refresh token")
	}

	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to get user", err)
	}

	if !user.IsActive {
		return nil, apperr.Permission("user account is inactive")
	}

	// Delete-then-issue makes rotation atomic per token value: of two
	// concurrent refreshes, only the one that deletes the row proceeds.
	if err := s.repos.Token.DeleteByTokenHash(ctx, tokenHash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Auth("invalid refresh token")
		}
		return nil, apperr.Internal("failed to rotate token", err)
	}

	_ = s.blacklist.AddToken(ctx, refreshToken, s.jwtManager.GetRefreshTokenExpiry())

	return s.issuer.Issue(ctx, user)
}

// Logout revokes a specific session when a refresh token is supplied, or
// every session for the user otherwise.
func (s *authService) Logout(ctx context.Context, userID, refreshToken string) error {
	if refreshToken == "" {
		if err := s.repos.Token.DeleteByUserID(ctx, userID); err != nil {
			return apperr.Internal("failed to delete tokens", err)
		}
		return nil
	}

	tokenHash := hashToken(refreshToken)

	dbToken, err := s.repos.Token.GetByTokenHash(ctx, tokenHash)
	if err != nil || dbToken.UserID != userID {
		// Unknown or foreign token; logout is idempotent.
		return nil
	}

	_ = s.blacklist.AddToken(ctx, refreshToken, s.jwtManager.GetRefreshTokenExpiry())

	if err := s.repos.Token.DeleteByTokenHash(ctx, tokenHash); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return apperr.Internal("failed to delete token", err)
	}

	return nil
}

// PurgeExpiredSessions deletes refresh token rows whose expiry has passed.
// Expired rows are already unusable; this is storage hygiene, run
// periodically by the application.
func (s *authService) PurgeExpiredSessions(ctx context.Context) error {
	if err := s.repos.Token.DeleteExpired(ctx); err != nil {
		return apperr.Internal("failed to purge expired tokens", err)
	}
	return nil
}

// GetUser gets user information
func (s *authService) GetUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Auth("user not found")
		}
		return nil, apperr.Internal("failed to get user", err)
	}

	return userResponse(user), nil
}

// CheckStatus reports whether an email or phone identifier is registered
// and which authentication methods it supports.
func (s *authService) CheckStatus(ctx context.Context, identifier string) (*dto.StatusResponse, error) {
	identifier = strings.TrimSpace(identifier)

	var user *domain.User
	var err error
	switch {
	case strings.Contains(identifier, "@"):
		user, err = s.repos.User.GetByEmail(ctx, utils.SanitizeEmail(identifier))
	case utils.ValidatePhone(utils.SanitizePhone(identifier)):
		user, err = s.repos.User.GetByPhone(ctx, utils.SanitizePhone(identifier))
	default:
		return nil, apperr.Validation("identifier must be an email address or E.164 phone number")
	}

	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &dto.StatusResponse{Registered: false, AuthMethods: []string{}}, nil
		}
		return nil, apperr.Internal("failed to check status", err)
	}

	methods := []string{}
	if user.HasPassword() {
		methods = append(methods, "password")
	}
	if user.Phone != nil && user.IsPhoneVerified {
		methods = append(methods, "otp")
	}
	providers, err := s.repos.OAuthProvider.GetByUserID(ctx, user.ID)
	if err == nil {
		for _, p := range providers {
			methods = append(methods, p.Provider)
		}
	}

	return &dto.StatusResponse{
		Registered:      true,
		IsEmailVerified: user.IsEmailVerified,
		IsPhoneVerified: user.IsPhoneVerified,
		AuthMethods:     methods,
	}, nil
}

// ValidateToken validates an access token
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error) {
	isBlacklisted, err := s.blacklist.IsTokenBlacklisted(ctx, token)
	if err != nil {
		return nil, apperr.Dependency("failed to check token blacklist", err)
	}
	if isBlacklisted {
		return nil, apperr.Auth("token is revoked")
	}

	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, apperr.Auth("invalid or expired token")
	}

	return claims, nil
}
