package repositories

import (
	"context"
	"time"

	"swadhrama-api/internal/adapters/persistence/models"
	"swadhrama-api/internal/core/domain"

	"gorm.io/gorm"
)

// otpRepository implements OtpRepository interface
type otpRepository struct {
	db *gorm.DB
}

// NewOtpRepository creates a new OTP challenge repository
func NewOtpRepository(db *gorm.DB) OtpRepository {
	return &otpRepository{db: db}
}

// Create persists a new challenge
func (r *otpRepository) Create(ctx context.Context, challenge *models.OtpChallenge) error {
	return GetDB(ctx, r.db).Create(challenge).Error
}

// GetLatest returns the most recently issued, non-superseded challenge for the pair
func (r *otpRepository) GetLatest(ctx context.Context, contact string, purpose domain.OTPPurpose) (*models.OtpChallenge, error) {
	var challenge models.OtpChallenge
	err := GetDB(ctx, r.db).
		Where("contact = ? AND purpose = ?", contact, string(purpose)).
		Where("superseded_at IS NULL").
		Order("id DESC").
		First(&challenge).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// SupersedeActive marks every unconsumed, non-superseded challenge of the pair as superseded
func (r *otpRepository) SupersedeActive(ctx context.Context, contact string, purpose domain.OTPPurpose, at time.Time) (int64, error) {
	result := GetDB(ctx, r.db).
		Model(&models.OtpChallenge{}).
		Where("contact = ? AND purpose = ?", contact, string(purpose)).
		Where("consumed_at IS NULL AND superseded_at IS NULL").
		Update("superseded_at", at)
	return result.RowsAffected, result.Error
}

// IncrementFailedAttempts bumps the failed attempt counter
func (r *otpRepository) IncrementFailedAttempts(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).
		Model(&models.OtpChallenge{}).
		Where("id = ?", id).
		UpdateColumn("failed_attempts", gorm.Expr("failed_attempts + ?", 1)).Error
}

// Consume marks the challenge consumed. It reports false when another caller consumed it first.
func (r *otpRepository) Consume(ctx context.Context, id uint, at time.Time) (bool, error) {
	result := GetDB(ctx, r.db).
		Model(&models.OtpChallenge{}).
		Where("id = ? AND consumed_at IS NULL", id).
		Update("consumed_at", at)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// DeleteExpired removes challenges that expired before the given time
func (r *otpRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := GetDB(ctx, r.db).
		Where("expires_at < ?", before).
		Delete(&models.OtpChallenge{})
	return result.RowsAffected, result.Error
}
