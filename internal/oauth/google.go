package oauth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	googleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
	googleIssuer  = "https://accounts.google.com"
)

// GoogleVerifier verifies Google ID tokens against Google's published keys.
type GoogleVerifier struct {
	clientID string
	keys     *jwksCache
}

// NewGoogleVerifier creates a Google ID token verifier for the given OAuth
// client ID (the expected audience).
func NewGoogleVerifier(clientID string, httpTimeout time.Duration) *GoogleVerifier {
	return &GoogleVerifier{
		clientID: clientID,
		keys:     newJWKSCache(googleJWKSURL, httpTimeout),
	}
}

func (g *GoogleVerifier) Provider() string {
	return ProviderGoogle
}

// Verify checks signature, issuer, audience, and expiry, then extracts
// profile claims.
func (g *GoogleVerifier) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	token, err := jwt.Parse(rawToken,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			kid, _ := token.Header["kid"].(string)
			return g.keys.Key(ctx, kid)
		},
		jwt.WithIssuer(googleIssuer),
		jwt.WithAudience(g.clientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("google token verification failed: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid google token claims")
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" || email == "" {
		return nil, fmt.Errorf("google token missing subject or email")
	}

	emailVerified, _ := claims["email_verified"].(bool)
	givenName, _ := claims["given_name"].(string)
	familyName, _ := claims["family_name"].(string)
	picture, _ := claims["picture"].(string)

	return &Claims{
		Provider:      ProviderGoogle,
		Subject:       sub,
		Email:         email,
		EmailVerified: emailVerified,
		FirstName:     givenName,
		LastName:      familyName,
		Picture:       picture,
	}, nil
}
