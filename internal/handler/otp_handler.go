package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/glowbook/auth-service/internal/apperr"
	"github.com/glowbook/auth-service/internal/dto"
	"github.com/glowbook/auth-service/internal/service"
	"go.uber.org/zap"
)

// OTPHandler handles one-time code requests
type OTPHandler struct {
	otpService service.OTPService
	logger     *zap.Logger
}

// NewOTPHandler creates a new OTP handler
func NewOTPHandler(otpService service.OTPService, logger *zap.Logger) *OTPHandler {
	return &OTPHandler{
		otpService: otpService,
		logger:     logger,
	}
}

// Send handles OTP dispatch
// @Summary Send a verification code
// @Description Text a one-time code to a phone number
// @Tags otp
// @Accept json
// @Produce json
// @Param request body dto.SendOTPRequest true "Send request"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /auth/otp/send [post]
func (h *OTPHandler) Send(c *gin.Context) {
	var req dto.SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperr.Validation("%s", err.Error()))
		return
	}

	if err := h.otpService.Send(c.Request.Context(), &req); err != nil {
		respondError(c, h.logger, err, zap.String("phone", req.Phone), zap.String("purpose", req.Purpose))
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Verification code sent",
	})
}

// Verify handles OTP verification
// @Summary Verify a code
// @Description Verify a one-time code for a phone number
// @Tags otp
// @Accept json
// @Produce json
// @Param request body dto.VerifyOTPRequest true "Verify request"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/otp/verify [post]
func (h *OTPHandler) Verify(c *gin.Context) {
	var req dto.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperr.Validation("%s", err.Error()))
		return
	}

	if err := h.otpService.Verify(c.Request.Context(), &req); err != nil {
		respondError(c, h.logger, err, zap.String("phone", req.Phone), zap.String("purpose", req.Purpose))
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Phone number verified",
	})
}

// RegisterWithPhone handles phone-only registration
// @Summary Register with a verified phone number
// @Description Create a phone-only account after OTP verification
// @Tags otp
// @Accept json
// @Produce json
// @Param request body dto.PhoneRegisterRequest true "Registration request"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /auth/register/phone [post]
func (h *OTPHandler) RegisterWithPhone(c *gin.Context) {
	var req dto.PhoneRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperr.Validation("%s", err.Error()))
		return
	}

	response, err := h.otpService.RegisterWithPhone(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, zap.String("phone", req.Phone))
		return
	}

	c.SetCookie(refreshCookieName, response.RefreshToken, response.ExpiresIn, refreshCookiePath, "", true, true)
	c.JSON(http.StatusCreated, response.AuthResponse)
}
