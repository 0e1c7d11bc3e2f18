package service

import (
	"context"
	"testing"
	"time"

	"github.com/glowbook/auth-service/internal/apperr"
	"github.com/glowbook/auth-service/internal/domain"
	"github.com/glowbook/auth-service/internal/dto"
	"github.com/glowbook/auth-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPhone = "+46701234567"

func newTestOTPService(f *testFixture) *otpService {
	svc := NewOTPService(f.repos, f.sms, testJWTManager(), OTPConfig{
		Expiry:         10 * time.Minute,
		ResendCooldown: 60 * time.Second,
		MaxAttempts:    4,
	})
	return svc.(*otpService)
}

func sendRegistrationCode(t *testing.T, svc *otpService, f *testFixture) string {
	t.Helper()
	err := svc.Send(context.Background(), &dto.SendOTPRequest{
		Phone:   testPhone,
		Purpose: "registration",
	})
	require.NoError(t, err)
	code := f.otps.lastCode()
	require.Len(t, code, 6)
	return code
}

func TestOTPSend_DispatchesCode(t *testing.T) {
	f := newTestFixture()
	svc := newTestOTPService(f)

	code := sendRegistrationCode(t, svc, f)

	require.Len(t, f.sms.sent, 1)
	assert.Contains(t, f.sms.sent[0], testPhone)
	assert.Contains(t, f.sms.sent[0], code)
}

func TestOTPSend_InvalidInput(t *testing.T) {
	f := newTestFixture()
	svc := newTestOTPService(f)

	err := svc.Send(context.Background(), &dto.SendOTPRequest{
		Phone:   "12345",
		Purpose: "registration",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	err = svc.Send(context.Background(), &dto.SendOTPRequest{
		Phone:   testPhone,
		Purpose: "mfa",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestOTPSend_ResendCooldown(t *testing.T) {
	f := newTestFixture()
	svc := newTestOTPService(f)

	base := time.Now()
	svc.now = func() time.Time { return base }

	sendRegistrationCode(t, svc, f)

	// A second send inside the cooldown window is throttled.
	svc.now = func() time.Time { return base.Add(30 * time.Second) }
	err := svc.Send(context.Background(), &dto.SendOTPRequest{
		Phone:   testPhone,
		Purpose: "registration",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindRateLimit, apperr.KindOf(err))

	// Past the cooldown it goes through again.
	svc.now = func() time.Time { return base.Add(61 * time.Second) }
	err = svc.Send(context.Background(), &dto.SendOTPRequest{
		Phone:   testPhone,
		Purpose: "registration",
	})
	require.NoError(t, err)
	assert.Len(t, f.sms.sent, 2)
}

func TestOTPSend_SMSFailure(t *testing.T) {
	f := newTestFixture()
	f.sms.fail = true
	svc := newTestOTPService(f)

	err := svc.Send(context.Background(), &dto.SendOTPRequest{
		Phone:   testPhone,
		Purpose: "registration",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindDependency, apperr.KindOf(err))
}

func TestOTPVerify_HappyPath(t *testing.T) {
	f := newTestFixture()
	svc := newTestOTPService(f)

	code := sendRegistrationCode(t, svc, f)

	err := svc.Verify(context.Background(), &dto.VerifyOTPRequest{
		Phone:   testPhone,
		Code:    code,
		Purpose: "registration",
	})
	require.NoError(t, err)

	// A verified code cannot be replayed.
	err = svc.Verify(context.Background(), &dto.VerifyOTPRequest{
		Phone:   testPhone,
		Code:    code,
		Purpose: "registration",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
}

func TestOTPVerify_WrongCodeThenLockout(t *testing.T) {
	f := newTestFixture()
	svc := newTestOTPService(f)

	code := sendRegistrationCode(t, svc, f)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	// Wrong guesses up to the cap report a bad code.
	for i := 0; i < 4; i++ {
		err := svc.Verify(context.Background(), &dto.VerifyOTPRequest{
			Phone:   testPhone,
			Code:    wrong,
			Purpose: "registration",
		})
		require.Error(t, err)
		assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
		assert.Equal(t, "invalid verification code", apperr.MessageOf(err))
	}

	// After the cap even the correct code is rejected.
	err := svc.Verify(context.Background(), &dto.VerifyOTPRequest{
		Phone:   testPhone,
		Code:    code,
		Purpose: "registration",
	})
	require.Error(t, err)
	assert.Equal(t, "too many attempts", apperr.MessageOf(err))
}

func TestOTPVerify_ExpiredCode(t *testing.T) {
	f := newTestFixture()
	svc := newTestOTPService(f)

	require.NoError(t, f.otps.Create(context.Background(), &domain.OTPVerification{
		Phone:     testPhone,
		Code:      "123456",
		Purpose:   domain.OTPPurposeRegistration,
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	err := svc.Verify(context.Background(), &dto.VerifyOTPRequest{
		Phone:   testPhone,
		Code:    "123456",
		Purpose: "registration",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
	assert.Equal(t, "invalid or expired code", apperr.MessageOf(err))
}

func TestOTPVerify_MarksPhoneVerified(t *testing.T) {
	f := newTestFixture()
	svc := newTestOTPService(f)

	phone := testPhone
	user := &domain.User{
		Email:    "anna@example.com",
		Phone:    &phone,
		Role:     domain.RoleCustomer,
		IsActive: true,
	}
	require.NoError(t, f.users.Create(context.Background(), user))

	err := svc.Send(context.Background(), &dto.SendOTPRequest{
		UserID:  user.ID,
		Phone:   testPhone,
		Purpose: "login",
	})
	require.NoError(t, err)

	err = svc.Verify(context.Background(), &dto.VerifyOTPRequest{
		UserID:  user.ID,
		Phone:   testPhone,
		Code:    f.otps.lastCode(),
		Purpose: "login",
	})
	require.NoError(t, err)

	updated, err := f.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsPhoneVerified)
}

func TestRegisterWithPhone_HappyPath(t *testing.T) {
	f := newTestFixture()
	svc := newTestOTPService(f)

	code := sendRegistrationCode(t, svc, f)
	require.NoError(t, svc.Verify(context.Background(), &dto.VerifyOTPRequest{
		Phone:   testPhone,
		Code:    code,
		Purpose: "registration",
	}))

	result, err := svc.RegisterWithPhone(context.Background(), &dto.PhoneRegisterRequest{
		Phone:     testPhone,
		FirstName: "Anna",
		LastName:  "Svensson",
		Role:      "CUSTOMER",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AuthResponse.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)

	user, err := f.users.GetByPhone(context.Background(), testPhone)
	require.NoError(t, err)
	assert.Equal(t, utils.SyntheticEmail(testPhone), user.Email)
	assert.False(t, user.HasPassword())
	assert.True(t, user.IsPhoneVerified)

	_, err = f.profiles.GetByUserID(context.Background(), user.ID)
	require.NoError(t, err)
}

func TestRegisterWithPhone_UnverifiedPhone(t *testing.T) {
	f := newTestFixture()
	svc := newTestOTPService(f)

	_, err := svc.RegisterWithPhone(context.Background(), &dto.PhoneRegisterRequest{
		Phone:     testPhone,
		FirstName: "Anna",
		LastName:  "Svensson",
		Role:      "CUSTOMER",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
}

func TestRegisterWithPhone_DuplicatePhone(t *testing.T) {
	f := newTestFixture()
	svc := newTestOTPService(f)

	code := sendRegistrationCode(t, svc, f)
	require.NoError(t, svc.Verify(context.Background(), &dto.VerifyOTPRequest{
		Phone:   testPhone,
		Code:    code,
		Purpose: "registration",
	}))

	req := &dto.PhoneRegisterRequest{
		Phone:     testPhone,
		FirstName: "Anna",
		LastName:  "Svensson",
		Role:      "CUSTOMER",
	}
	_, err := svc.RegisterWithPhone(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.RegisterWithPhone(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestRegisterWithPhone_RestrictedRoles(t *testing.T) {
	f := newTestFixture()
	svc := newTestOTPService(f)

	req := &dto.PhoneRegisterRequest{
		Phone:     testPhone,
		FirstName: "Anna",
		LastName:  "Svensson",
		Role:      "STAFF",
	}
	_, err := svc.RegisterWithPhone(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))

	// Phone registration never carries a salon payload, so owners cannot
	// register this way either.
	req.Role = "SALON_OWNER"
	_, err = svc.RegisterWithPhone(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
