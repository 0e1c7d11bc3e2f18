package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/glowbook/auth-service/internal/apperr"
	"github.com/glowbook/auth-service/internal/dto"
	"github.com/glowbook/auth-service/internal/service"
	"go.uber.org/zap"
)

const refreshCookieName = "refresh_token"
const refreshCookiePath = "/api/v1/auth/refresh"

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Description Register a new user; SALON_OWNER registrations must include salon_data
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration request"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperr.Validation("%s", err.Error()))
		return
	}

	response, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, zap.String("email", req.Email), zap.String("role", req.Role))
		return
	}

	h.setRefreshCookie(c, response)
	c.JSON(http.StatusCreated, response.AuthResponse)
}

// Login handles user login
// @Summary Login user
// @Description Authenticate user with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperr.Validation("%s", err.Error()))
		return
	}

	response, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, zap.String("email", req.Email))
		return
	}

	h.setRefreshCookie(c, response)
	c.JSON(http.StatusOK, response.AuthResponse)
}

// Refresh handles token refresh
// @Summary Refresh tokens
// @Description Rotate the refresh token and mint a new access token
// @Tags auth
// @Produce json
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil {
		respondError(c, h.logger, apperr.Validation("refresh token not found in cookie"))
		return
	}

	response, err := h.authService.RefreshToken(c.Request.Context(), refreshToken)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.setRefreshCookie(c, response)
	c.JSON(http.StatusOK, response.AuthResponse)
}

// Logout handles user logout
// @Summary Logout user
// @Description Revoke the current session, or all sessions when no refresh cookie is present
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		respondError(c, h.logger, apperr.Auth("user not found in context"))
		return
	}

	refreshToken, _ := c.Cookie(refreshCookieName)

	if err := h.authService.Logout(c.Request.Context(), userID.(string), refreshToken); err != nil {
		respondError(c, h.logger, err, zap.String("user_id", userID.(string)))
		return
	}

	c.SetCookie(refreshCookieName, "", -1, refreshCookiePath, "", true, true)

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Logged out successfully",
	})
}

// GetMe handles getting current user profile
// @Summary Get current user profile
// @Description Get information about the current authenticated user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		respondError(c, h.logger, apperr.Auth("user not found in context"))
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID.(string))
	if err != nil {
		respondError(c, h.logger, err, zap.String("user_id", userID.(string)))
		return
	}

	c.JSON(http.StatusOK, user)
}

// CheckStatus reports registration state for an email or phone identifier
// @Summary Check registration status
// @Description Report whether an identifier is registered and its available auth methods
// @Tags auth
// @Produce json
// @Param identifier query string true "Email address or E.164 phone number"
// @Success 200 {object} dto.StatusResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /auth/status [get]
func (h *AuthHandler) CheckStatus(c *gin.Context) {
	identifier := c.Query("identifier")
	if identifier == "" {
		respondError(c, h.logger, apperr.Validation("identifier query parameter is required"))
		return
	}

	status, err := h.authService.CheckStatus(c.Request.Context(), identifier)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, response *service.AuthResult) {
	c.SetCookie(refreshCookieName, response.RefreshToken, response.ExpiresIn, refreshCookiePath, "", true, true)
}
