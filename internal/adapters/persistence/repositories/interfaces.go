package repositories

import (
	"context"
	"time"

	"swadhrama-api/internal/adapters/persistence/models"
	"swadhrama-api/internal/core/domain"
)

// UnitOfWork runs fn inside one database transaction.
// Repositories called with the ctx passed to fn join that transaction.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserFilter narrows user listings and counts
type UserFilter struct {
	Role   string
	Status string
	Search string
	Offset int
	Limit  int
}

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByIDs(ctx context.Context, ids []uint) (map[uint]*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	GetByContact(ctx context.Context, contact string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (int64, error)
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	UpsertProfile(ctx context.Context, profile *models.Profile) error
	MarkVerified(ctx context.Context, id uint) error
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
	Delete(ctx context.Context, id uint) (int64, error)
	List(ctx context.Context, filter UserFilter) ([]*models.User, int64, error)
	Count(ctx context.Context, filter UserFilter) (int64, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) (int64, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
	CountActiveByUserID(ctx context.Context, userID uint) (int64, error)
}

// OtpRepository defines OTP challenge persistence
type OtpRepository interface {
	Create(ctx context.Context, challenge *models.OtpChallenge) error
	GetLatest(ctx context.Context, contact string, purpose domain.OTPPurpose) (*models.OtpChallenge, error)
	SupersedeActive(ctx context.Context, contact string, purpose domain.OTPPurpose, at time.Time) (int64, error)
	IncrementFailedAttempts(ctx context.Context, id uint) error
	Consume(ctx context.Context, id uint, at time.Time) (bool, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// BookingFilter narrows booking request listings
type BookingFilter struct {
	MemberID          *uint
	ProviderID        *uint
	IncludeUnassigned bool
	Status            string
	Offset            int
	Limit             int
}

// ScheduledFilter narrows scheduled service listings
type ScheduledFilter struct {
	MemberID   *uint
	ProviderID *uint
	Offset     int
	Limit      int
}

// BookingTransition describes a guarded pending -> terminal update
type BookingTransition struct {
	ID      string
	To      domain.BookingStatus
	ActorID uint
	// ProviderID restricts the update to requests assigned to this provider
	// or unassigned ones, and records it on unassigned requests.
	ProviderID *uint
	At         time.Time
}

// BookingRepository defines booking request and scheduled service persistence
type BookingRepository interface {
	Create(ctx context.Context, booking *models.BookingRequest) error
	GetByID(ctx context.Context, id string) (*models.BookingRequest, error)
	Transition(ctx context.Context, t BookingTransition) (int64, error)
	List(ctx context.Context, filter BookingFilter) ([]*models.BookingRequest, int64, error)
	CountAll(ctx context.Context) (int64, error)
	CreateScheduled(ctx context.Context, scheduled *models.ScheduledService) error
	ListScheduled(ctx context.Context, filter ScheduledFilter) ([]*models.ScheduledService, int64, error)
}
