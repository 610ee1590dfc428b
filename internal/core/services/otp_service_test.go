package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"swadhrama-api/internal/core/domain"
	redispkg "swadhrama-api/internal/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTPService_IssueThenVerifySucceedsOnce(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "member@example.com", domain.RoleMember, domain.StatusActive)
	ctx := context.Background()

	challenge, err := env.otp.Issue(ctx, "Member@Example.com ", domain.PurposeLogin)
	require.NoError(t, err)
	assert.Equal(t, "member@example.com", challenge.Contact)
	assert.Len(t, challenge.Code, domain.OTPLength)
	assert.Equal(t, testBase.Add(domain.OTPExpiry), challenge.ExpiresAt)

	code := env.sender.code("member@example.com", domain.PurposeLogin)
	require.Equal(t, challenge.Code, code)

	verified, err := env.otp.Verify(ctx, "member@example.com", domain.PurposeLogin, code)
	require.NoError(t, err)
	require.NotNil(t, verified.ConsumedAt)

	_, err = env.otp.Verify(ctx, "member@example.com", domain.PurposeLogin, code)
	assert.ErrorIs(t, err, domain.ErrOTPConsumed)
	assert.ErrorIs(t, err, domain.ErrAuthentication)
}

func TestOTPService_VerifyAfterExpiryFails(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "member@example.com", domain.RoleMember, domain.StatusActive)
	env.otp.generate = fixedCodes("483920")
	ctx := context.Background()

	_, err := env.otp.Issue(ctx, "member@example.com", domain.PurposeLogin)
	require.NoError(t, err)

	env.advance(domain.OTPExpiry + time.Second)
	_, err = env.otp.Verify(ctx, "member@example.com", domain.PurposeLogin, "483920")
	assert.ErrorIs(t, err, domain.ErrOTPExpired)
}

func TestOTPService_MismatchDoesNotConsume(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "member@example.com", domain.RoleMember, domain.StatusActive)
	env.otp.generate = fixedCodes("483920")
	ctx := context.Background()

	_, err := env.otp.Issue(ctx, "member@example.com", domain.PurposeLogin)
	require.NoError(t, err)

	_, err = env.otp.Verify(ctx, "member@example.com", domain.PurposeLogin, "000000")
	require.ErrorIs(t, err, domain.ErrOTPMismatch)

	stored, err := env.otps.GetLatest(ctx, "member@example.com", domain.PurposeLogin)
	require.NoError(t, err)
	assert.Nil(t, stored.ConsumedAt)
	assert.Equal(t, 1, stored.FailedAttempts)

	_, err = env.otp.Verify(ctx, "member@example.com", domain.PurposeLogin, "483920")
	assert.NoError(t, err)
}

func TestOTPService_TooManyAttemptsLocksChallenge(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "member@example.com", domain.RoleMember, domain.StatusActive)
	env.otp.generate = fixedCodes("483920")
	ctx := context.Background()

	_, err := env.otp.Issue(ctx, "member@example.com", domain.PurposeLogin)
	require.NoError(t, err)

	for i := 0; i < domain.OTPMaxAttempts; i++ {
		_, err = env.otp.Verify(ctx, "member@example.com", domain.PurposeLogin, "111111")
		require.ErrorIs(t, err, domain.ErrOTPMismatch)
	}

	_, err = env.otp.Verify(ctx, "member@example.com", domain.PurposeLogin, "483920")
	assert.ErrorIs(t, err, domain.ErrOTPAttemptsExceeded)
	assert.Equal(t, "attempts_exceeded", domain.OTPFailureKind(err))
}

func TestOTPService_NewIssueSupersedesPrevious(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "member@example.com", domain.RoleMember, domain.StatusActive)
	env.otp.generate = fixedCodes("111111", "222222")
	ctx := context.Background()

	_, err := env.otp.Issue(ctx, "member@example.com", domain.PurposeLogin)
	require.NoError(t, err)
	_, err = env.otp.Issue(ctx, "member@example.com", domain.PurposeLogin)
	require.NoError(t, err)

	_, err = env.otp.Verify(ctx, "member@example.com", domain.PurposeLogin, "111111")
	assert.ErrorIs(t, err, domain.ErrOTPMismatch)

	_, err = env.otp.Verify(ctx, "member@example.com", domain.PurposeLogin, "222222")
	assert.NoError(t, err)
}

func TestOTPService_PurposesAreIndependent(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "member@example.com", domain.RoleMember, domain.StatusActive)
	env.otp.generate = fixedCodes("111111", "222222")
	ctx := context.Background()

	_, err := env.otp.Issue(ctx, "member@example.com", domain.PurposeLogin)
	require.NoError(t, err)
	_, err = env.otp.Issue(ctx, "member@example.com", domain.PurposePasswordReset)
	require.NoError(t, err)

	_, err = env.otp.Verify(ctx, "member@example.com", domain.PurposeLogin, "111111")
	assert.NoError(t, err)
	_, err = env.otp.Verify(ctx, "member@example.com", domain.PurposeLogin, "222222")
	assert.Error(t, err)
}

func TestOTPService_VerifyWithoutChallenge(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.otp.Verify(context.Background(), "nobody@example.com", domain.PurposeLogin, "123456")
	assert.ErrorIs(t, err, domain.ErrOTPNotFound)
}

func TestOTPService_IssueValidation(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "member@example.com", domain.RoleMember, domain.StatusActive)
	env.createUser(t, "banned@example.com", domain.RoleMember, domain.StatusSuspended)
	env.createUser(t, "new@example.com", domain.RoleMember, domain.StatusPending)
	ctx := context.Background()

	tests := []struct {
		name    string
		contact string
		purpose domain.OTPPurpose
		want    error
	}{
		{"empty contact", "  ", domain.PurposeLogin, domain.ErrValidation},
		{"unknown purpose", "member@example.com", domain.OTPPurpose("SIGNUP"), domain.ErrValidation},
		{"unknown contact", "ghost@example.com", domain.PurposeLogin, domain.ErrUserNotFound},
		{"suspended login", "banned@example.com", domain.PurposeLogin, domain.ErrUserSuspended},
		{"unverified login", "new@example.com", domain.PurposeLogin, domain.ErrEmailNotVerified},
		{"verified registration", "member@example.com", domain.PurposeRegistration, domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.otp.Issue(ctx, tt.contact, tt.purpose)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Zero(t, env.sender.calls)
}

func TestOTPService_DeliveryFailureKeepsChallenge(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "member@example.com", domain.RoleMember, domain.StatusActive)
	env.otp.generate = fixedCodes("483920")
	env.sender.err = errors.New("smtp unavailable")
	ctx := context.Background()

	challenge, err := env.otp.Issue(ctx, "member@example.com", domain.PurposeLogin)
	require.ErrorIs(t, err, domain.ErrDelivery)
	require.NotNil(t, challenge)

	_, err = env.otp.Verify(ctx, "member@example.com", domain.PurposeLogin, "483920")
	assert.NoError(t, err)
}

func TestOTPService_CooldownFromDatabase(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "member@example.com", domain.RoleMember, domain.StatusActive)
	env.otp.cooldown = 30 * time.Second
	ctx := context.Background()

	_, err := env.otp.Issue(ctx, "member@example.com", domain.PurposeLogin)
	require.NoError(t, err)

	_, err = env.otp.Issue(ctx, "member@example.com", domain.PurposeLogin)
	assert.ErrorIs(t, err, domain.ErrOTPCooldown)

	// another purpose has its own window
	_, err = env.otp.Issue(ctx, "member@example.com", domain.PurposePasswordReset)
	assert.NoError(t, err)

	env.advance(31 * time.Second)
	_, err = env.otp.Issue(ctx, "member@example.com", domain.PurposeLogin)
	assert.NoError(t, err)
}

func TestOTPService_CooldownFromRedis(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "member@example.com", domain.RoleMember, domain.StatusActive)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	env.otp.throttle = redispkg.NewThrottle(client, "otp:cooldown:")
	env.otp.cooldown = 30 * time.Second
	ctx := context.Background()

	_, err := env.otp.Issue(ctx, "member@example.com", domain.PurposeLogin)
	require.NoError(t, err)
	assert.True(t, mr.Exists("otp:cooldown:LOGIN:member@example.com"))

	_, err = env.otp.Issue(ctx, "member@example.com", domain.PurposeLogin)
	assert.ErrorIs(t, err, domain.ErrOTPCooldown)

	mr.FastForward(31 * time.Second)
	_, err = env.otp.Issue(ctx, "member@example.com", domain.PurposeLogin)
	assert.NoError(t, err)
}

// failingUoW aborts every transaction with err
type failingUoW struct{ err error }

func (f failingUoW) Do(context.Context, func(context.Context) error) error { return f.err }

func TestOTPService_FailedStoreReleasesRedisCooldown(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "member@example.com", domain.RoleMember, domain.StatusActive)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	env.otp.throttle = redispkg.NewThrottle(client, "otp:cooldown:")
	env.otp.cooldown = 30 * time.Second
	ctx := context.Background()

	storeErr := errors.New("database is locked")
	env.otp.uow = failingUoW{err: storeErr}

	_, err := env.otp.Issue(ctx, "member@example.com", domain.PurposeLogin)
	assert.ErrorIs(t, err, storeErr)
	assert.False(t, mr.Exists("otp:cooldown:LOGIN:member@example.com"))
	assert.Zero(t, env.sender.calls)

	env.otp.uow = env.uow
	_, err = env.otp.Issue(ctx, "member@example.com", domain.PurposeLogin)
	require.NoError(t, err)
	assert.True(t, mr.Exists("otp:cooldown:LOGIN:member@example.com"))
}

func TestGenerateSecureOTP(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateSecureOTP(domain.OTPLength)
		require.NoError(t, err)
		require.Len(t, code, domain.OTPLength)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}
