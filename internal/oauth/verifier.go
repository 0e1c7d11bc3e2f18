// Package oauth verifies third-party identity tokens (Google, Apple)
// against the issuer's published keys and maps them to a provider-neutral
// claim set.
package oauth

import (
	"context"
	"errors"
	"fmt"
)

// ErrKeyFetch marks failures to reach or parse an issuer's key set, so
// callers can distinguish a provider outage from a bad token.
var ErrKeyFetch = errors.New("failed to fetch issuer keys")

// Provider tags for supported identity providers.
const (
	ProviderGoogle = "google"
	ProviderApple  = "apple"
)

// Claims is the provider-neutral result of a verified identity token.
type Claims struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	FirstName     string
	LastName      string
	Picture       string
}

// Verifier checks a raw identity token and extracts claims. One
// implementation per provider, selected by provider tag.
type Verifier interface {
	Provider() string
	Verify(ctx context.Context, rawToken string) (*Claims, error)
}

// Registry selects a verifier by provider tag.
type Registry struct {
	verifiers map[string]Verifier
}

// NewRegistry creates a registry from the given verifiers.
func NewRegistry(verifiers ...Verifier) *Registry {
	m := make(map[string]Verifier, len(verifiers))
	for _, v := range verifiers {
		m[v.Provider()] = v
	}
	return &Registry{verifiers: m}
}

// Get returns the verifier for a provider tag.
func (r *Registry) Get(provider string) (Verifier, error) {
	v, ok := r.verifiers[provider]
	if !ok {
		return nil, fmt.Errorf("unsupported oauth provider: %s", provider)
	}
	return v, nil
}
