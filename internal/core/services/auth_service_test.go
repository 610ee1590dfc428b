package services

import (
	"context"
	"testing"

	"swadhrama-api/internal/core/domain"
	"swadhrama-api/internal/pkg/jwt"
	"swadhrama-api/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_RegistrationExample(t *testing.T) {
	env := newTestEnv(t)
	env.otp.generate = fixedCodes("483920")
	ctx := context.Background()

	reg, err := env.auth.Register(ctx, &RegisterInput{
		Email:    "a@x.com",
		Password: "password123",
		FullName: "Asha",
	})
	require.NoError(t, err)
	assert.True(t, reg.OTPSent)
	assert.Equal(t, "PENDING", reg.User.Status)
	assert.False(t, reg.User.EmailVerified)
	assert.Equal(t, "483920", env.sender.code("a@x.com", domain.PurposeRegistration))

	resp, err := env.auth.VerifyOTP(ctx, "a@x.com", domain.PurposeRegistration, "483920")
	require.NoError(t, err)
	assert.True(t, resp.User.EmailVerified)
	assert.Equal(t, "ACTIVE", resp.User.Status)
	assert.Equal(t, "Asha", resp.User.FullName)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotNil(t, resp.User.LastLoginAt)

	claims, err := jwt.ValidateAccessToken(resp.AccessToken, env.cfg.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "MEMBER", claims.Role)

	_, err = env.auth.VerifyOTP(ctx, "a@x.com", domain.PurposeRegistration, "483920")
	assert.ErrorIs(t, err, domain.ErrOTPConsumed)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "taken@example.com", domain.RoleMember, domain.StatusActive)
	ctx := context.Background()

	tests := []struct {
		name  string
		input RegisterInput
		want  error
	}{
		{"no contact", RegisterInput{Password: "password123"}, domain.ErrValidation},
		{"bad email", RegisterInput{Email: "not-an-email", Password: "password123"}, domain.ErrValidation},
		{"short password", RegisterInput{Email: "new@example.com", Password: "short"}, domain.ErrValidation},
		{"admin role", RegisterInput{Email: "new@example.com", Password: "password123", Role: "ADMIN"}, domain.ErrValidation},
		{"unknown role", RegisterInput{Email: "new@example.com", Password: "password123", Role: "PRIEST"}, domain.ErrValidation},
		{"duplicate email", RegisterInput{Email: "TAKEN@example.com", Password: "password123"}, domain.ErrUserExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			_, err := env.auth.Register(ctx, &input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthService_RegisterByPhoneAsProvider(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	reg, err := env.auth.Register(ctx, &RegisterInput{
		Phone:    "+91 98765 43210",
		Password: "password123",
		Role:     "provider",
	})
	require.NoError(t, err)
	assert.Equal(t, "PROVIDER", reg.User.Role)
	assert.Equal(t, "+919876543210", reg.Contact)
	assert.NotEmpty(t, env.sender.code("+919876543210", domain.PurposeRegistration))
}

func TestAuthService_Login(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "member@example.com", domain.RoleMember, domain.StatusActive)
	env.createUser(t, "pending@example.com", domain.RoleMember, domain.StatusPending)
	env.createUser(t, "banned@example.com", domain.RoleMember, domain.StatusSuspended)
	ctx := context.Background()

	resp, err := env.auth.Login(ctx, &LoginInput{Contact: "Member@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = env.auth.Login(ctx, &LoginInput{Contact: "member@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = env.auth.Login(ctx, &LoginInput{Contact: "ghost@example.com", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = env.auth.Login(ctx, &LoginInput{Contact: "pending@example.com", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrEmailNotVerified)

	_, err = env.auth.Login(ctx, &LoginInput{Contact: "banned@example.com", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrUserSuspended)
}

func TestAuthService_SendOTPReportsDeliveryFailure(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "member@example.com", domain.RoleMember, domain.StatusActive)
	env.sender.err = assert.AnError
	ctx := context.Background()

	res, err := env.auth.SendOTP(ctx, "member@example.com", domain.PurposeLogin)
	require.NoError(t, err)
	assert.False(t, res.Sent)
	assert.Equal(t, testBase.Add(domain.OTPExpiry), res.ExpiresAt)
}

func TestAuthService_LoginOTPForSuspendedUserIsRolledBack(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "member@example.com", domain.RoleMember, domain.StatusActive)
	env.otp.generate = fixedCodes("483920")
	ctx := context.Background()

	_, err := env.auth.SendOTP(ctx, "member@example.com", domain.PurposeLogin)
	require.NoError(t, err)

	_, err = env.users.UpdateFields(ctx, u.ID, map[string]interface{}{"status": "SUSPENDED"})
	require.NoError(t, err)

	_, err = env.auth.VerifyOTP(ctx, "member@example.com", domain.PurposeLogin, "483920")
	assert.ErrorIs(t, err, domain.ErrUserSuspended)

	stored, err := env.otps.GetLatest(ctx, "member@example.com", domain.PurposeLogin)
	require.NoError(t, err)
	assert.Nil(t, stored.ConsumedAt)
}

func TestAuthService_VerifyOTPRejectsPasswordResetPurpose(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.VerifyOTP(context.Background(), "member@example.com", domain.PurposePasswordReset, "123456")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAuthService_RefreshRotatesTokens(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "member@example.com", domain.RoleMember, domain.StatusActive)
	ctx := context.Background()

	login, err := env.auth.Login(ctx, &LoginInput{Contact: "member@example.com", Password: "password123"})
	require.NoError(t, err)

	refreshed, err := env.auth.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// reuse of the rotated token revokes the whole family
	_, err = env.auth.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)

	_, err = env.auth.Refresh(ctx, refreshed.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)

	_, err = env.auth.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestAuthService_LogoutAndLogoutAll(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "member@example.com", domain.RoleMember, domain.StatusActive)
	ctx := context.Background()

	first, err := env.auth.Login(ctx, &LoginInput{Contact: "member@example.com", Password: "password123"})
	require.NoError(t, err)
	_, err = env.auth.Login(ctx, &LoginInput{Contact: "member@example.com", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(ctx, first.RefreshToken))
	_, err = env.auth.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrAuthentication)

	n, err := env.tokens.CountActiveByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "reuse after logout revokes remaining sessions")

	third, err := env.auth.Login(ctx, &LoginInput{Contact: "member@example.com", Password: "password123"})
	require.NoError(t, err)
	require.NoError(t, env.auth.LogoutAll(ctx, u.ID))
	_, err = env.auth.Refresh(ctx, third.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)
}

func TestAuthService_ResetPassword(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "member@example.com", domain.RoleMember, domain.StatusActive)
	env.otp.generate = fixedCodes("483920")
	ctx := context.Background()

	login, err := env.auth.Login(ctx, &LoginInput{Contact: "member@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = env.auth.SendOTP(ctx, "member@example.com", domain.PurposePasswordReset)
	require.NoError(t, err)

	err = env.auth.ResetPassword(ctx, &ResetPasswordInput{Contact: "member@example.com", OTP: "483920", NewPassword: "tiny"})
	require.ErrorIs(t, err, domain.ErrValidation)

	err = env.auth.ResetPassword(ctx, &ResetPasswordInput{Contact: "member@example.com", OTP: "483920", NewPassword: "new-password-1"})
	require.NoError(t, err)

	stored, err := env.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, password.Verify("new-password-1", stored.PasswordHash))

	_, err = env.auth.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)
}

func TestAuthService_MeAndUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "member@example.com", domain.RoleMember, domain.StatusActive)
	ctx := context.Background()

	me, err := env.auth.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "member", me.FullName)

	name, lang := "Ravi Kumar", "te"
	updated, err := env.auth.UpdateProfile(ctx, u.ID, &UpdateProfileInput{FullName: &name, LanguagePreference: &lang})
	require.NoError(t, err)
	assert.Equal(t, "Ravi Kumar", updated.FullName)
	assert.Equal(t, "te", updated.LanguagePreference)

	empty := ""
	_, err = env.auth.UpdateProfile(ctx, u.ID, &UpdateProfileInput{LanguagePreference: &empty})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.auth.Me(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestAuthService_CurrentRoleReadsStoredState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "admin@example.com", domain.RoleAdmin, domain.StatusActive)

	role, err := env.auth.CurrentRole(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, role)

	_, err = env.users.UpdateFields(ctx, admin.ID, map[string]interface{}{"role": string(domain.RoleProvider)})
	require.NoError(t, err)
	role, err = env.auth.CurrentRole(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleProvider, role)

	_, err = env.users.UpdateFields(ctx, admin.ID, map[string]interface{}{"status": string(domain.StatusSuspended)})
	require.NoError(t, err)
	_, err = env.auth.CurrentRole(ctx, admin.ID)
	assert.ErrorIs(t, err, domain.ErrUserSuspended)

	_, err = env.auth.CurrentRole(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
