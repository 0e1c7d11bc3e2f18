package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/glowbook/auth-service/internal/apperr"
	"github.com/glowbook/auth-service/internal/dto"
	"github.com/glowbook/auth-service/internal/oauth"
	"github.com/glowbook/auth-service/internal/service"
	"go.uber.org/zap"
)

// OAuthHandler handles third-party sign-in requests
type OAuthHandler struct {
	oauthService service.OAuthService
	logger       *zap.Logger
}

// NewOAuthHandler creates a new OAuth handler
func NewOAuthHandler(oauthService service.OAuthService, logger *zap.Logger) *OAuthHandler {
	return &OAuthHandler{
		oauthService: oauthService,
		logger:       logger,
	}
}

// Google handles Google sign-in
// @Summary Sign in with Google
// @Description Verify a Google ID token and issue a token pair
// @Tags oauth
// @Accept json
// @Produce json
// @Param request body dto.GoogleAuthRequest true "Google sign-in request"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /auth/oauth/google [post]
func (h *OAuthHandler) Google(c *gin.Context) {
	var req dto.GoogleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperr.Validation("%s", err.Error()))
		return
	}

	h.signIn(c, oauth.ProviderGoogle, req.IDToken)
}

// Apple handles Apple sign-in
// @Summary Sign in with Apple
// @Description Verify an Apple identity token and issue a token pair
// @Tags oauth
// @Accept json
// @Produce json
// @Param request body dto.AppleAuthRequest true "Apple sign-in request"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /auth/oauth/apple [post]
func (h *OAuthHandler) Apple(c *gin.Context) {
	var req dto.AppleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperr.Validation("%s", err.Error()))
		return
	}

	h.signIn(c, oauth.ProviderApple, req.IdentityToken)
}

func (h *OAuthHandler) signIn(c *gin.Context, provider, rawToken string) {
	response, err := h.oauthService.SignIn(c.Request.Context(), provider, rawToken)
	if err != nil {
		respondError(c, h.logger, err, zap.String("provider", provider))
		return
	}

	c.SetCookie(refreshCookieName, response.RefreshToken, response.ExpiresIn, refreshCookiePath, "", true, true)
	c.JSON(http.StatusOK, response.AuthResponse)
}
