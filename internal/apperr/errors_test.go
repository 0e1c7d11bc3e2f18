package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("bad input")))
	assert.Equal(t, KindConflict, KindOf(Conflict("duplicate")))
	assert.Equal(t, KindAuth, KindOf(Auth("denied")))
	assert.Equal(t, KindPermission, KindOf(Permission("forbidden")))
	assert.Equal(t, KindRateLimit, KindOf(RateLimit("slow down")))
	assert.Equal(t, KindDependency, KindOf(Dependency("upstream down", errors.New("timeout"))))
	assert.Equal(t, KindInternal, KindOf(Internal("boom", errors.New("cause"))))

	// Untyped errors collapse to internal.
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", Auth("invalid credentials"))
	assert.Equal(t, KindAuth, KindOf(err))
	assert.Equal(t, "invalid credentials", MessageOf(err))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "duplicate email", MessageOf(Conflict("duplicate email")))
	assert.Equal(t, "internal server error", MessageOf(errors.New("sql: connection refused")))
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Dependency("redis unavailable", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "redis unavailable")
	assert.Contains(t, err.Error(), "dial tcp: refused")
}

func TestIsMatchesOnKind(t *testing.T) {
	assert.True(t, errors.Is(Auth("a"), Auth("b")))
	assert.False(t, errors.Is(Auth("a"), Conflict("a")))
}
