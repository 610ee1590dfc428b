package models

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Accounts: users, profiles, refresh tokens
// ============================================================

// ErrNoContact is returned by the User hooks when neither email nor phone is set
var ErrNoContact = errors.New("user requires an email or a phone number")

// User represents users table
type User struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Email         *string    `gorm:"uniqueIndex;size:191" json:"email"`
	Phone         *string    `gorm:"uniqueIndex;size:32" json:"phone"`
	PasswordHash  string     `gorm:"size:255;not null" json:"-"`
	Role          string     `gorm:"size:20;not null;default:'MEMBER';index" json:"role"`
	Status        string     `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	EmailVerified bool       `gorm:"default:false" json:"email_verified"`
	LastLoginAt   *time.Time `json:"last_login_at"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Profile       *Profile       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate enforces the email-or-phone invariant
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Email != nil && strings.TrimSpace(*u.Email) == "" {
		u.Email = nil
	}
	if u.Phone != nil && strings.TrimSpace(*u.Phone) == "" {
		u.Phone = nil
	}
	if u.Email == nil && u.Phone == nil {
		return ErrNoContact
	}
	return nil
}

// Contact returns the email if present, otherwise the phone
func (u *User) Contact() string {
	if u.Email != nil {
		return *u.Email
	}
	if u.Phone != nil {
		return *u.Phone
	}
	return ""
}

// FullName returns the profile name or an empty string
func (u *User) FullName() string {
	if u.Profile == nil {
		return ""
	}
	return u.Profile.FullName
}

// DisplayName returns the profile name, falling back to the contact
func (u *User) DisplayName() string {
	if name := u.FullName(); name != "" {
		return name
	}
	return u.Contact()
}

// UserResponse DTO
type UserResponse struct {
	ID                 uint       `json:"id"`
	Email              *string    `json:"email"`
	Phone              *string    `json:"phone"`
	Role               string     `json:"role"`
	Status             string     `json:"status"`
	EmailVerified      bool       `json:"emailVerified"`
	FullName           string     `json:"fullName,omitempty"`
	LanguagePreference string     `json:"languagePreference,omitempty"`
	LastLoginAt        *time.Time `json:"lastLoginAt"`
	CreatedAt          time.Time  `json:"createdAt"`
}

func (u *User) ToResponse() *UserResponse {
	resp := &UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Phone:         u.Phone,
		Role:          u.Role,
		Status:        u.Status,
		EmailVerified: u.EmailVerified,
		LastLoginAt:   u.LastLoginAt,
		CreatedAt:     u.CreatedAt,
	}
	if u.Profile != nil {
		resp.FullName = u.Profile.FullName
		resp.LanguagePreference = u.Profile.LanguagePreference
	}
	return resp
}

// Profile represents profiles table (1:1 with users, owned)
type Profile struct {
	UserID             uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	FullName           string    `gorm:"size:150" json:"full_name"`
	LanguagePreference string    `gorm:"size:10;default:'en'" json:"language_preference"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// OTP challenges
// ============================================================

// OtpChallenge represents otp_challenges table
type OtpChallenge struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Contact        string     `gorm:"size:191;not null;index:idx_otp_contact_purpose" json:"contact"`
	Purpose        string     `gorm:"size:20;not null;index:idx_otp_contact_purpose" json:"purpose"`
	Code           string     `gorm:"size:10;not null" json:"-"`
	FailedAttempts int        `gorm:"default:0" json:"failed_attempts"`
	CreatedAt      time.Time  `gorm:"not null;index" json:"created_at"`
	ExpiresAt      time.Time  `gorm:"not null;index" json:"expires_at"`
	ConsumedAt     *time.Time `json:"consumed_at"`
	SupersededAt   *time.Time `json:"superseded_at"`
}

func (OtpChallenge) TableName() string {
	return "otp_challenges"
}

// IsExpiredAt reports whether the challenge is past its expiry at t
func (o *OtpChallenge) IsExpiredAt(t time.Time) bool {
	return t.After(o.ExpiresAt)
}

// IsConsumed reports whether the challenge was already used
func (o *OtpChallenge) IsConsumed() bool {
	return o.ConsumedAt != nil
}

// AutoMigrate runs auto migration for all application tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Profile{},
		&RefreshToken{},
		&OtpChallenge{},
		&BookingRequest{},
		&ScheduledService{},
	)
}
