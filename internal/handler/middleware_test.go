package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glowbook/auth-service/internal/apperr"
	"github.com/glowbook/auth-service/internal/domain"
	"github.com/glowbook/auth-service/internal/dto"
	"github.com/glowbook/auth-service/internal/service"
	"github.com/stretchr/testify/assert"
)

// stubAuthService implements service.AuthService for middleware tests; only
// ValidateToken is exercised.
type stubAuthService struct {
	service.AuthService
	claims *domain.TokenClaims
	err    error
}

func (s *stubAuthService) ValidateToken(_ context.Context, _ string) (*domain.TokenClaims, error) {
	return s.claims, s.err
}

func protectedRouter(auth service.AuthService, roles ...domain.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/", AuthMiddleware(auth))
	if len(roles) > 0 {
		group.Use(RequireRole(roles...))
	}
	group.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})
	return r
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	r := protectedRouter(&stubAuthService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	r := protectedRouter(&stubAuthService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	r := protectedRouter(&stubAuthService{err: apperr.Auth("invalid or expired token")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	r := protectedRouter(&stubAuthService{claims: &domain.TokenClaims{
		UserID: "user-1",
		Email:  "anna@example.com",
		Role:   domain.RoleCustomer,
	}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}

func TestRequireRole(t *testing.T) {
	asRole := func(role domain.Role) *stubAuthService {
		return &stubAuthService{claims: &domain.TokenClaims{
			UserID: "user-1",
			Email:  "anna@example.com",
			Role:   role,
		}}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")

	r := protectedRouter(asRole(domain.RoleSalonOwner), domain.RoleSalonOwner, domain.RoleAdmin)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r = protectedRouter(asRole(domain.RoleCustomer), domain.RoleSalonOwner, domain.RoleAdmin)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var body dto.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "PERMISSION", body.Error)
}
