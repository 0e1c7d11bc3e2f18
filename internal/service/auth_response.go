package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/glowbook/auth-service/internal/domain"
	"github.com/glowbook/auth-service/internal/dto"
	"github.com/glowbook/auth-service/internal/repository"
	"github.com/glowbook/auth-service/internal/utils"
)

// AuthResult contains the client-facing auth response plus the refresh
// token, which travels separately in an httpOnly cookie.
type AuthResult struct {
	AuthResponse *dto.AuthResponse
	RefreshToken string
	ExpiresIn    int // Refresh token expiry in seconds
}

// tokenIssuer mints token pairs and persists the refresh side. Register,
// login, refresh, OTP registration, and OAuth sign-in all converge here.
type tokenIssuer struct {
	jwtManager *utils.JWTManager
	tokenRepo  repository.TokenRepository
}

func newTokenIssuer(jwtManager *utils.JWTManager, tokenRepo repository.TokenRepository) *tokenIssuer {
	return &tokenIssuer{jwtManager: jwtManager, tokenRepo: tokenRepo}
}

// Issue builds and signs a fresh token pair for the user and persists the
// refresh token hash for later revocation.
func (ti *tokenIssuer) Issue(ctx context.Context, user *domain.User) (*AuthResult, error) {
	accessToken, err := ti.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := ti.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	refreshExpiry := ti.jwtManager.GetRefreshTokenExpiry()
	refreshTokenEntity := &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(refreshToken),
		ExpiresAt: time.Now().Add(refreshExpiry),
	}

	if err := ti.tokenRepo.Create(ctx, refreshTokenEntity); err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return &AuthResult{
		AuthResponse: &dto.AuthResponse{
			AccessToken: accessToken,
			TokenType:   "Bearer",
			ExpiresIn:   ti.jwtManager.GetAccessTokenExpiry(),
			User: dto.UserInfo{
				ID:        user.ID,
				Email:     user.Email,
				FirstName: user.FirstName,
				LastName:  user.LastName,
				Role:      user.Role.String(),
			},
		},
		RefreshToken: refreshToken,
		ExpiresIn:    int(refreshExpiry.Seconds()),
	}, nil
}

// hashToken hashes a token using SHA256 so raw refresh tokens never touch
// the database.
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// userResponse maps a domain user to its API representation.
func userResponse(user *domain.User) *dto.UserResponse {
	response := &dto.UserResponse{
		ID:              user.ID,
		Email:           user.Email,
		Phone:           user.Phone,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		Role:            user.Role.String(),
		AvatarURL:       user.AvatarURL,
		CreatedAt:       user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       user.UpdatedAt.Format(time.RFC3339),
		IsEmailVerified: user.IsEmailVerified,
		IsPhoneVerified: user.IsPhoneVerified,
	}

	if user.LastLoginAt != nil {
		lastLogin := user.LastLoginAt.Format(time.RFC3339)
		response.LastLoginAt = &lastLogin
	}

	return response
}
