package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/glowbook/auth-service/internal/apperr"
	"github.com/glowbook/auth-service/internal/dto"
	"go.uber.org/zap"
)

// statusFor maps an error kind to its HTTP status code.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindAuth:
		return http.StatusUnauthorized
	case apperr.KindPermission:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindRateLimit:
		return http.StatusTooManyRequests
	case apperr.KindDependency:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the typed error as a stable JSON body and logs it
// with identifying context. Secrets never reach the log: callers pass
// emails and phone numbers, not passwords, codes, or tokens.
func respondError(c *gin.Context, logger *zap.Logger, err error, fields ...zap.Field) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)

	fields = append(fields,
		zap.String("kind", string(kind)),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", fields...)
	} else {
		logger.Info("request rejected", fields...)
	}

	c.JSON(status, dto.ErrorResponse{
		Error:   string(kind),
		Message: apperr.MessageOf(err),
	})
}
