package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glowbook/auth-service/internal/apperr"
	"github.com/glowbook/auth-service/internal/domain"
	"github.com/glowbook/auth-service/internal/dto"
	"github.com/glowbook/auth-service/internal/repository"
	"github.com/glowbook/auth-service/internal/sms"
	"github.com/glowbook/auth-service/internal/utils"
)

// OTPConfig carries the code lifecycle knobs.
type OTPConfig struct {
	Expiry         time.Duration
	ResendCooldown time.Duration
	// MaxAttempts is the pre-increment ceiling: a code admits MaxAttempts
	// compared verify calls; the call after that is rejected outright.
	MaxAttempts int
}

// otpService implements OTPService interface
type otpService struct {
	repos  *repository.Repositories
	sender sms.Sender
	issuer *tokenIssuer
	cfg    OTPConfig
	now    func() time.Time
}

// NewOTPService creates a new OTP service
func NewOTPService(
	repos *repository.Repositories,
	sender sms.Sender,
	jwtManager *utils.JWTManager,
	cfg OTPConfig,
) OTPService {
	return &otpService{
		repos:  repos,
		sender: sender,
		issuer: newTokenIssuer(jwtManager, repos.Token),
		cfg:    cfg,
		now:    time.Now,
	}
}

// Send issues a fresh code for (user, phone, purpose) and dispatches it by
// SMS. The row is persisted before dispatch; a dispatch failure still fails
// the send.
func (s *otpService) Send(ctx context.Context, req *dto.SendOTPRequest) error {
	phone := utils.SanitizePhone(req.Phone)
	if !utils.ValidatePhone(phone) {
		return apperr.Validation("invalid phone number format")
	}

	purpose, ok := domain.ParseOTPPurpose(req.Purpose)
	if !ok {
		return apperr.Validation("invalid otp purpose: %s", req.Purpose)
	}

	if err := s.repos.OTP.DeleteExpired(ctx, req.UserID, phone); err != nil {
		return apperr.Internal("failed to purge expired codes", err)
	}

	lastSent, err := s.repos.OTP.LatestCreatedAt(ctx, req.UserID, phone, purpose)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return apperr.Internal("failed to check resend cooldown", err)
	}
	if err == nil && s.now().Sub(lastSent) < s.cfg.ResendCooldown {
		return apperr.RateLimit("verification code was sent recently, try again later")
	}

	code, err := utils.GenerateOTPCode()
	if err != nil {
		return apperr.Internal("failed to generate code", err)
	}

	otp := &domain.OTPVerification{
		UserID:    req.UserID,
		Phone:     phone,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: s.now().Add(s.cfg.Expiry),
		CreatedAt: s.now(),
	}
	if err := s.repos.OTP.Create(ctx, otp); err != nil {
		return apperr.Internal("failed to store verification code", err)
	}

	body := fmt.Sprintf("Your Glowbook verification code is %s. It expires in %d minutes.",
		code, int(s.cfg.Expiry.Minutes()))
	if err := s.sender.Send(ctx, phone, body); err != nil {
		return apperr.Dependency("failed to send verification code", err)
	}

	return nil
}

// Verify checks a presented code against the most recent active record.
// Every call counts against the attempt cap, correct or not.
func (s *otpService) Verify(ctx context.Context, req *dto.VerifyOTPRequest) error {
	phone := utils.SanitizePhone(req.Phone)

	purpose, ok := domain.ParseOTPPurpose(req.Purpose)
	if !ok {
		return apperr.Validation("invalid otp purpose: %s", req.Purpose)
	}

	otp, err := s.repos.OTP.GetLatestActive(ctx, req.UserID, phone, purpose)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.Auth("invalid or expired code")
		}
		return apperr.Internal("failed to look up verification code", err)
	}

	if err := s.repos.OTP.IncrementAttempts(ctx, otp.ID); err != nil {
		return apperr.Internal("failed to record attempt", err)
	}

	// Cap on the pre-increment count: calls with fewer than MaxAttempts
	// prior attempts get a comparison, later calls fail regardless of
	// code correctness.
	if otp.Attempts >= s.cfg.MaxAttempts {
		return apperr.Auth("too many attempts")
	}

	if otp.Code != req.Code {
		return apperr.Auth("invalid verification code")
	}

	if err := s.repos.OTP.MarkVerified(ctx, otp.ID); err != nil {
		return apperr.Internal("failed to mark code verified", err)
	}

	if req.UserID != "" {
		if err := s.repos.User.SetPhoneVerified(ctx, req.UserID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return apperr.Internal("failed to mark phone verified", err)
		}
	}

	return nil
}

// RegisterWithPhone creates a phone-only account once phone possession has
// been proven by a verified registration code.
func (s *otpService) RegisterWithPhone(ctx context.Context, req *dto.PhoneRegisterRequest) (*AuthResult, error) {
	phone := utils.SanitizePhone(req.Phone)
	if !utils.ValidatePhone(phone) {
		return nil, apperr.Validation("invalid phone number format")
	}

	role, ok := domain.ParseRole(req.Role)
	if !ok {
		return nil, apperr.Validation("invalid role: %s", req.Role)
	}
	// Phone registration carries no salon payload, so only CUSTOMER can
	// pass the policy here.
	if err := validateRegistration(role, nil); err != nil {
		return nil, err
	}

	if _, err := s.repos.OTP.LatestVerified(ctx, phone, domain.OTPPurposeRegistration); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Auth("phone number is not verified")
		}
		return nil, apperr.Internal("failed to check phone verification", err)
	}

	_, err := s.repos.User.GetByPhone(ctx, phone)
	if err == nil {
		return nil, apperr.Conflict("user with this phone already exists")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal("failed to check phone availability", err)
	}

	user := &domain.User{
		Email:           utils.SyntheticEmail(phone),
		Phone:           &phone,
		FirstName:       strings.TrimSpace(req.FirstName),
		LastName:        strings.TrimSpace(req.LastName),
		Role:            role,
		IsActive:        true,
		IsPhoneVerified: true,
	}

	err = s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.User.Create(ctx, user); err != nil {
			return err
		}
		return tx.Profile.CreateCustomerProfile(ctx, &domain.CustomerProfile{
			UserID:      user.ID,
			LoyaltyTier: domain.LoyaltyTierBronze,
		})
	})
	if err != nil {
		return nil, translateRegistrationError(err)
	}

	return s.issuer.Issue(ctx, user)
}
