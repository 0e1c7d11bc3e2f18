package oauth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	appleJWKSURL = "https://appleid.apple.com/auth/keys"
	appleIssuer  = "https://appleid.apple.com"
)

// AppleVerifier verifies Apple identity tokens against Apple's published
// keys.
type AppleVerifier struct {
	clientID string
	keys     *jwksCache
}

// NewAppleVerifier creates an Apple identity token verifier for the given
// service client ID (the expected audience).
func NewAppleVerifier(clientID string, httpTimeout time.Duration) *AppleVerifier {
	return &AppleVerifier{
		clientID: clientID,
		keys:     newJWKSCache(appleJWKSURL, httpTimeout),
	}
}

func (a *AppleVerifier) Provider() string {
	return ProviderApple
}

// Verify checks signature, issuer, audience, and expiry. Apple omits name
// claims on repeat sign-ins, so missing names are derived from the email's
// local part; this fallback is lossy and makes no accuracy guarantee.
func (a *AppleVerifier) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	token, err := jwt.Parse(rawToken,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			kid, _ := token.Header["kid"].(string)
			return a.keys.Key(ctx, kid)
		},
		jwt.WithIssuer(appleIssuer),
		jwt.WithAudience(a.clientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("apple token verification failed: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid apple token claims")
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" || email == "" {
		return nil, fmt.Errorf("apple token missing subject or email")
	}

	// Apple reports email_verified as a bool or the string "true".
	emailVerified := false
	switch v := claims["email_verified"].(type) {
	case bool:
		emailVerified = v
	case string:
		emailVerified = v == "true"
	}

	firstName, _ := claims["given_name"].(string)
	lastName, _ := claims["family_name"].(string)
	if firstName == "" {
		firstName, lastName = NamesFromEmail(email)
	}

	return &Claims{
		Provider:      ProviderApple,
		Subject:       sub,
		Email:         email,
		EmailVerified: emailVerified,
		FirstName:     firstName,
		LastName:      lastName,
	}, nil
}

// NamesFromEmail derives a first/last name pair from an email's local part,
// splitting on dots and underscores. "jane.doe@x.com" becomes ("Jane",
// "Doe"); a local part with no separator yields an empty last name.
func NamesFromEmail(email string) (string, string) {
	local := email
	if i := strings.Index(email, "@"); i >= 0 {
		local = email[:i]
	}

	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})

	titleCase := func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
	}

	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return titleCase(parts[0]), ""
	default:
		return titleCase(parts[0]), titleCase(parts[len(parts)-1])
	}
}
