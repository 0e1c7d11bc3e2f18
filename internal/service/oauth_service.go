package service

import (
	"context"
	"errors"

	"github.com/glowbook/auth-service/internal/apperr"
	"github.com/glowbook/auth-service/internal/domain"
	"github.com/glowbook/auth-service/internal/oauth"
	"github.com/glowbook/auth-service/internal/repository"
	"github.com/glowbook/auth-service/internal/utils"
)

// oauthService implements OAuthService interface
type oauthService struct {
	repos    *repository.Repositories
	registry *oauth.Registry
	issuer   *tokenIssuer
}

// NewOAuthService creates a new OAuth sign-in service
func NewOAuthService(
	repos *repository.Repositories,
	registry *oauth.Registry,
	jwtManager *utils.JWTManager,
) OAuthService {
	return &oauthService{
		repos:    repos,
		registry: registry,
		issuer:   newTokenIssuer(jwtManager, repos.Token),
	}
}

// SignIn verifies a provider identity token, finds or creates the local
// account, and issues a token pair identical to password login. All
// verification failures collapse to one uniform message; only a provider
// outage is reported distinctly.
func (s *oauthService) SignIn(ctx context.Context, provider, rawToken string) (*AuthResult, error) {
	verifier, err := s.registry.Get(provider)
	if err != nil {
		return nil, apperr.Validation("unsupported oauth provider: %s", provider)
	}

	claims, err := verifier.Verify(ctx, rawToken)
	if err != nil {
		if errors.Is(err, oauth.ErrKeyFetch) {
			return nil, apperr.Dependency("identity provider unavailable", err)
		}
		return nil, apperr.Auth("invalid %s token", provider)
	}

	user, err := s.findOrCreate(ctx, claims)
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, apperr.Permission("user account is inactive")
	}

	_ = s.repos.User.UpdateLastLogin(ctx, user.ID)

	return s.issuer.Issue(ctx, user)
}

// findOrCreate resolves verified claims to a local account, first by the
// stored provider identity, then by email. The email fallback merges the
// account on first matching sign-in (the trust anchor is the provider's own
// email verification) and keeps working when the user later changes their
// email at the provider. New accounts are always CUSTOMER regardless of any
// hint.
func (s *oauthService) findOrCreate(ctx context.Context, claims *oauth.Claims) (*domain.User, error) {
	link, err := s.repos.OAuthProvider.GetByProvider(ctx, claims.Provider, claims.Subject)
	if err == nil {
		user, err := s.repos.User.GetByID(ctx, link.UserID)
		if err != nil {
			return nil, apperr.Internal("failed to look up user", err)
		}
		return user, s.linkExisting(ctx, user, claims)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal("failed to look up provider link", err)
	}

	email := utils.SanitizeEmail(claims.Email)

	user, err := s.repos.User.GetByEmail(ctx, email)
	if err == nil {
		return user, s.linkExisting(ctx, user, claims)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal("failed to look up user", err)
	}

	user = &domain.User{
		Email:           email,
		FirstName:       claims.FirstName,
		LastName:        claims.LastName,
		Role:            domain.RoleCustomer,
		IsActive:        true,
		IsEmailVerified: true,
	}
	if claims.Picture != "" {
		picture := claims.Picture
		user.AvatarURL = &picture
	}

	err = s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.User.Create(ctx, user); err != nil {
			return err
		}
		if err := tx.Profile.CreateCustomerProfile(ctx, &domain.CustomerProfile{
			UserID:      user.ID,
			LoyaltyTier: domain.LoyaltyTierBronze,
		}); err != nil {
			return err
		}
		return tx.OAuthProvider.Create(ctx, &domain.OAuthProvider{
			UserID:         user.ID,
			Provider:       claims.Provider,
			ProviderUserID: claims.Subject,
			Email:          &email,
		})
	})
	if err != nil {
		return nil, translateRegistrationError(err)
	}

	return user, nil
}

// linkExisting backfills the provider linkage, avatar, and email-verified
// flag on an existing account. Re-running with identical claims is a no-op.
func (s *oauthService) linkExisting(ctx context.Context, user *domain.User, claims *oauth.Claims) error {
	linked := false
	providers, err := s.repos.OAuthProvider.GetByUserID(ctx, user.ID)
	if err != nil {
		return apperr.Internal("failed to look up provider links", err)
	}
	for _, p := range providers {
		if p.Provider == claims.Provider {
			linked = true
			break
		}
	}

	if !linked {
		email := utils.SanitizeEmail(claims.Email)
		err := s.repos.OAuthProvider.Create(ctx, &domain.OAuthProvider{
			UserID:         user.ID,
			Provider:       claims.Provider,
			ProviderUserID: claims.Subject,
			Email:          &email,
		})
		if err != nil && !errors.Is(err, repository.ErrDuplicateOAuthProvider) {
			return apperr.Internal("failed to link provider", err)
		}
	}

	changed := false
	if user.AvatarURL == nil && claims.Picture != "" {
		picture := claims.Picture
		user.AvatarURL = &picture
		changed = true
	}
	if !user.IsEmailVerified {
		user.IsEmailVerified = true
		changed = true
	}

	if changed {
		if err := s.repos.User.Update(ctx, user); err != nil {
			return apperr.Internal("failed to update user", err)
		}
	}

	return nil
}
