package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" provider ")
	require.NoError(t, err)
	assert.Equal(t, RoleProvider, r)

	_, err = ParseRole("OFFICER")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseUserStatus(t *testing.T) {
	s, err := ParseUserStatus("suspended")
	require.NoError(t, err)
	assert.Equal(t, StatusSuspended, s)

	_, err = ParseUserStatus("DELETED")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseOTPPurpose(t *testing.T) {
	p, err := ParseOTPPurpose("registration")
	require.NoError(t, err)
	assert.Equal(t, PurposeRegistration, p)

	p, err = ParseOTPPurpose("password-reset")
	require.NoError(t, err)
	assert.Equal(t, PurposePasswordReset, p)

	_, err = ParseOTPPurpose("signup")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestServiceTypeValidAndLabel(t *testing.T) {
	assert.True(t, ServiceHomamYagam.Valid())
	assert.True(t, ServiceFamilyConnect.Valid())
	assert.False(t, ServiceType("Wedding").Valid())
	assert.Equal(t, "Homam Yagam", ServiceHomamYagam.Label())
	assert.Equal(t, "Pooja Samagri", ServicePoojaSamagri.Label())
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(BookingPending, BookingAccepted))
	assert.True(t, CanTransition(BookingPending, BookingRejected))
	assert.False(t, CanTransition(BookingAccepted, BookingRejected))
	assert.False(t, CanTransition(BookingRejected, BookingAccepted))
	assert.False(t, CanTransition(BookingAccepted, BookingAccepted))
	assert.False(t, CanTransition(BookingPending, BookingPending))
}

func TestOTPErrorsAreAuthenticationErrors(t *testing.T) {
	for _, err := range []error{ErrOTPExpired, ErrOTPMismatch, ErrOTPConsumed, ErrOTPNotFound, ErrOTPAttemptsExceeded} {
		assert.ErrorIs(t, err, ErrAuthentication)
	}
	assert.False(t, errors.Is(ErrOTPExpired, ErrOTPMismatch))
	assert.Equal(t, "expired", OTPFailureKind(ErrOTPExpired))
	assert.Equal(t, "already_consumed", OTPFailureKind(ErrOTPConsumed))
}

func TestNormalizeContact(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeContact("  A@X.com "))
	assert.Equal(t, "+919876543210", NormalizeContact("+91 98765 43210"))
	assert.True(t, IsEmail("a@x.com"))
	assert.False(t, IsEmail("+919876543210"))
}
