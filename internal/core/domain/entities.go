package domain

import (
	"strings"
	"time"
)

// Role represents user role in the system
type Role string

const (
	RoleMember   Role = "MEMBER"
	RoleProvider Role = "PROVIDER"
	RoleAdmin    Role = "ADMIN"
)

// Roles lists every role in display order
var Roles = []Role{RoleMember, RoleProvider, RoleAdmin}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleProvider, RoleAdmin:
		return true
	}
	return false
}

// ParseRole parses a role string (case-insensitive)
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", NewValidationError("Invalid role. Must be MEMBER, PROVIDER, or ADMIN")
	}
	return r, nil
}

// UserStatus represents account status
type UserStatus string

const (
	StatusActive    UserStatus = "ACTIVE"
	StatusPending   UserStatus = "PENDING"
	StatusSuspended UserStatus = "SUSPENDED"
)

// Valid reports whether s is one of the known statuses
func (s UserStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPending, StatusSuspended:
		return true
	}
	return false
}

// ParseUserStatus parses a status string (case-insensitive)
func ParseUserStatus(s string) (UserStatus, error) {
	st := UserStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", NewValidationError("Invalid status. Must be ACTIVE, PENDING, or SUSPENDED")
	}
	return st, nil
}

// OTPPurpose binds a challenge to the flow that requested it
type OTPPurpose string

const (
	PurposeRegistration  OTPPurpose = "REGISTRATION"
	PurposeLogin         OTPPurpose = "LOGIN"
	PurposePasswordReset OTPPurpose = "PASSWORD_RESET"
)

// Valid reports whether p is one of the known purposes
func (p OTPPurpose) Valid() bool {
	switch p {
	case PurposeRegistration, PurposeLogin, PurposePasswordReset:
		return true
	}
	return false
}

// ParseOTPPurpose accepts "registration", "REGISTRATION", "password-reset" etc.
func ParseOTPPurpose(s string) (OTPPurpose, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "-", "_")
	p := OTPPurpose(norm)
	if !p.Valid() {
		return "", NewValidationError("Invalid purpose. Must be REGISTRATION, LOGIN, or PASSWORD_RESET")
	}
	return p, nil
}

// OTP constants. OTPExpiry is also quoted in the OTP message body.
const (
	OTPLength         = 6
	OTPExpiry         = 5 * time.Minute
	OTPMaxAttempts    = 5
	OTPDefaultCooling = 30 * time.Second
)

// ServiceType is the kind of devotional service being booked
type ServiceType string

const (
	ServiceHomamYagam    ServiceType = "HomamYagam"
	ServiceHomePooja     ServiceType = "HomePooja"
	ServicePoojaSamagri  ServiceType = "PoojaSamagri"
	ServiceFamilyConnect ServiceType = "FamilyConnect"
)

// Valid reports whether t is one of the bookable service types
func (t ServiceType) Valid() bool {
	switch t {
	case ServiceHomamYagam, ServiceHomePooja, ServicePoojaSamagri, ServiceFamilyConnect:
		return true
	}
	return false
}

// Label returns a human readable name ("HomamYagam" -> "Homam Yagam")
func (t ServiceType) Label() string {
	var b strings.Builder
	for i, r := range string(t) {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// BookingStatus is the state of a booking request
type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingAccepted BookingStatus = "accepted"
	BookingRejected BookingStatus = "rejected"
)

// IsTerminal reports whether no further transition is allowed
func (s BookingStatus) IsTerminal() bool {
	return s == BookingAccepted || s == BookingRejected
}

// CanTransition reports whether from -> to is a legal booking transition.
// Only pending -> accepted and pending -> rejected exist.
func CanTransition(from, to BookingStatus) bool {
	return from == BookingPending && to.IsTerminal()
}

// Actor is the authenticated caller of a service operation
type Actor struct {
	UserID uint
	Role   Role
}

// IsAdmin reports whether the actor has the ADMIN role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// IsEmail reports whether the contact looks like an email address
func IsEmail(contact string) bool {
	return strings.Contains(contact, "@")
}

// NormalizeContact trims the contact and lowercases email addresses
func NormalizeContact(contact string) string {
	c := strings.TrimSpace(contact)
	if IsEmail(c) {
		return strings.ToLower(c)
	}
	return strings.ReplaceAll(c, " ", "")
}
