package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glowbook/auth-service/internal/config"
	"github.com/glowbook/auth-service/internal/handler"
	"github.com/glowbook/auth-service/internal/oauth"
	"github.com/glowbook/auth-service/internal/repository"
	"github.com/glowbook/auth-service/internal/service"
	"github.com/glowbook/auth-service/internal/sms"
	"github.com/glowbook/auth-service/internal/utils"
	"github.com/glowbook/auth-service/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second
const sessionPurgeInterval = time.Hour

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
	auth   service.AuthService
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	repos := repository.NewRepositories(infra.Postgres())

	jwtManager := utils.NewJWTManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry.Duration,
		cfg.JWT.RefreshTokenExpiry.Duration,
	)

	blacklistService := service.NewTokenBlacklistService(infra.Redis())
	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	authService := service.NewAuthService(
		repos,
		jwtManager,
		blacklistService,
		cfg.Security.BCryptCost,
	)

	smsSender := sms.NewTwilioSender(
		cfg.Twilio.AccountSID,
		cfg.Twilio.AuthToken,
		cfg.Twilio.FromNumber,
		cfg.Twilio.HTTPTimeout.Duration,
	)

	otpService := service.NewOTPService(repos, smsSender, jwtManager, service.OTPConfig{
		Expiry:         cfg.OTP.Expiry.Duration,
		ResendCooldown: cfg.OTP.ResendCooldown.Duration,
		MaxAttempts:    cfg.OTP.MaxAttempts,
	})

	oauthRegistry := oauth.NewRegistry(
		oauth.NewGoogleVerifier(cfg.OAuth.GoogleClientID, cfg.OAuth.HTTPTimeout.Duration),
		oauth.NewAppleVerifier(cfg.OAuth.AppleClientID, cfg.OAuth.HTTPTimeout.Duration),
	)
	oauthService := service.NewOAuthService(repos, oauthRegistry, jwtManager)

	authHandler := handler.NewAuthHandler(authService, infra.Logger())
	otpHandler := handler.NewOTPHandler(otpService, infra.Logger())
	oauthHandler := handler.NewOAuthHandler(oauthService, infra.Logger())

	router := gin.Default()
	router.Use(otelgin.Middleware("glowbook-auth"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, authHandler, otpHandler, oauthHandler, authService, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
		auth:   authService,
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	otpHandler *handler.OTPHandler,
	oauthHandler *handler.OAuthHandler,
	authService service.AuthService,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	throttled := func() gin.HandlerFunc {
		return handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey)
	}

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", throttled(), authHandler.Register)
			auth.POST("/login", throttled(), authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", handler.AuthMiddleware(authService), authHandler.Logout)
			auth.GET("/me", handler.AuthMiddleware(authService), authHandler.GetMe)
			auth.GET("/status", authHandler.CheckStatus)

			auth.POST("/otp/send", throttled(), otpHandler.Send)
			auth.POST("/otp/verify", throttled(), otpHandler.Verify)
			auth.POST("/register/phone", throttled(), otpHandler.RegisterWithPhone)

			auth.POST("/oauth/google", throttled(), oauthHandler.Google)
			auth.POST("/oauth/apple", throttled(), oauthHandler.Apple)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go a.sweepExpiredSessions(ctx)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

// sweepExpiredSessions periodically removes refresh token rows that have
// passed their expiry, keeping the sessions table from growing unbounded.
func (a *App) sweepExpiredSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.auth.PurgeExpiredSessions(ctx); err != nil {
				a.infra.Logger().Warn("Expired session sweep failed", zap.Error(err))
			}
		}
	}
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
