package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"swadhrama-api/internal/adapters/persistence/models"
	"swadhrama-api/internal/adapters/persistence/repositories"
	"swadhrama-api/internal/core/domain"
	"swadhrama-api/internal/pkg/logger"
	"swadhrama-api/internal/pkg/password"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ============================================================
// OTP Service - issue and verify one-time codes per (contact, purpose)
// ============================================================

// IssueThrottle grants at most one issue per key within a window
type IssueThrottle interface {
	Acquire(ctx context.Context, key string, window time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// OTPService handles OTP generation and verification
type OTPService struct {
	uow      repositories.UnitOfWork
	otpRepo  repositories.OtpRepository
	userRepo repositories.UserRepository
	sender   OTPSender
	throttle IssueThrottle
	cooldown time.Duration

	now      func() time.Time
	generate func() (string, error)
}

// NewOTPService creates a new OTP service. throttle may be nil, in which case
// the resend cooldown is checked against the newest stored challenge.
func NewOTPService(
	uow repositories.UnitOfWork,
	otpRepo repositories.OtpRepository,
	userRepo repositories.UserRepository,
	sender OTPSender,
	throttle IssueThrottle,
	cooldown time.Duration,
) *OTPService {
	return &OTPService{
		uow:      uow,
		otpRepo:  otpRepo,
		userRepo: userRepo,
		sender:   sender,
		throttle: throttle,
		cooldown: cooldown,
		now:      func() time.Time { return time.Now().UTC() },
		generate: func() (string, error) { return generateSecureOTP(domain.OTPLength) },
	}
}

// Issue creates a fresh challenge for the pair, supersedes older ones and
// hands the code to the sender. When delivery fails the challenge is kept and
// returned together with an error wrapping domain.ErrDelivery.
func (s *OTPService) Issue(ctx context.Context, contact string, purpose domain.OTPPurpose) (*models.OtpChallenge, error) {
	contact = domain.NormalizeContact(contact)
	if contact == "" {
		return nil, domain.NewValidationError("Contact is required")
	}
	if !purpose.Valid() {
		return nil, domain.NewValidationError("Invalid purpose. Must be REGISTRATION, LOGIN, or PASSWORD_RESET")
	}

	user, err := s.userRepo.GetByContact(ctx, contact)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if err := checkPurposeAllowed(user, purpose); err != nil {
		return nil, err
	}

	if err := s.checkCooldown(ctx, contact, purpose); err != nil {
		return nil, err
	}

	code, err := s.generate()
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}

	now := s.now()
	challenge := &models.OtpChallenge{
		Contact:   contact,
		Purpose:   string(purpose),
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(domain.OTPExpiry),
	}

	err = s.uow.Do(ctx, func(ctx context.Context) error {
		if _, err := s.otpRepo.SupersedeActive(ctx, contact, purpose, now); err != nil {
			return err
		}
		return s.otpRepo.Create(ctx, challenge)
	})
	if err != nil {
		s.releaseCooldown(ctx, contact, purpose)
		return nil, err
	}

	logger.Info(ctx, "OTP issued",
		zap.String("contact", contact),
		zap.String("purpose", string(purpose)),
		zap.Uint("challenge_id", challenge.ID),
	)

	if err := s.sender.SendOTP(ctx, contact, code, purpose); err != nil {
		logger.Warn(ctx, "OTP delivery failed",
			zap.String("contact", contact),
			zap.String("purpose", string(purpose)),
			zap.Error(err),
		)
		return challenge, fmt.Errorf("%w: %v", domain.ErrDelivery, err)
	}

	return challenge, nil
}

// Verify validates code against the newest challenge of the pair and consumes it
func (s *OTPService) Verify(ctx context.Context, contact string, purpose domain.OTPPurpose, code string) (*models.OtpChallenge, error) {
	return s.VerifyWith(ctx, contact, purpose, code, nil)
}

// VerifyWith is Verify that also runs then in the transaction that consumes the
// challenge. If then fails the challenge stays unconsumed.
func (s *OTPService) VerifyWith(
	ctx context.Context,
	contact string,
	purpose domain.OTPPurpose,
	code string,
	then func(ctx context.Context) error,
) (*models.OtpChallenge, error) {
	contact = domain.NormalizeContact(contact)
	code = strings.TrimSpace(code)
	if contact == "" || code == "" {
		return nil, domain.NewValidationError("Contact and OTP are required")
	}
	if !purpose.Valid() {
		return nil, domain.NewValidationError("Invalid purpose. Must be REGISTRATION, LOGIN, or PASSWORD_RESET")
	}

	challenge, err := s.otpRepo.GetLatest(ctx, contact, purpose)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.reject(ctx, contact, purpose, 0, domain.ErrOTPNotFound)
		}
		return nil, err
	}

	now := s.now()
	if challenge.IsExpiredAt(now) {
		return nil, s.reject(ctx, contact, purpose, challenge.ID, domain.ErrOTPExpired)
	}
	if challenge.FailedAttempts >= domain.OTPMaxAttempts {
		return nil, s.reject(ctx, contact, purpose, challenge.ID, domain.ErrOTPAttemptsExceeded)
	}
	if !password.EqualCode(challenge.Code, code) {
		if err := s.otpRepo.IncrementFailedAttempts(ctx, challenge.ID); err != nil {
			return nil, err
		}
		return nil, s.reject(ctx, contact, purpose, challenge.ID, domain.ErrOTPMismatch)
	}
	if challenge.IsConsumed() {
		return nil, s.reject(ctx, contact, purpose, challenge.ID, domain.ErrOTPConsumed)
	}

	err = s.uow.Do(ctx, func(ctx context.Context) error {
		ok, err := s.otpRepo.Consume(ctx, challenge.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrOTPConsumed
		}
		if then != nil {
			return then(ctx)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrOTPConsumed) {
			return nil, s.reject(ctx, contact, purpose, challenge.ID, err)
		}
		return nil, err
	}

	challenge.ConsumedAt = &now
	logger.Info(ctx, "OTP verified",
		zap.String("contact", contact),
		zap.String("purpose", string(purpose)),
		zap.Uint("challenge_id", challenge.ID),
	)
	return challenge, nil
}

// reject records the failure kind for audit and returns err unchanged
func (s *OTPService) reject(ctx context.Context, contact string, purpose domain.OTPPurpose, challengeID uint, err error) error {
	logger.Warn(ctx, "OTP verification failed",
		zap.String("contact", contact),
		zap.String("purpose", string(purpose)),
		zap.Uint("challenge_id", challengeID),
		zap.String("reason", domain.OTPFailureKind(err)),
	)
	return err
}

func (s *OTPService) checkCooldown(ctx context.Context, contact string, purpose domain.OTPPurpose) error {
	if s.cooldown <= 0 {
		return nil
	}

	if s.throttle != nil {
		ok, err := s.throttle.Acquire(ctx, throttleKey(contact, purpose), s.cooldown)
		if err == nil {
			if !ok {
				return domain.ErrOTPCooldown
			}
			return nil
		}
		logger.Warn(ctx, "OTP throttle unavailable, falling back to database", zap.Error(err))
	}

	latest, err := s.otpRepo.GetLatest(ctx, contact, purpose)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if s.now().Sub(latest.CreatedAt) < s.cooldown {
		return domain.ErrOTPCooldown
	}
	return nil
}

// releaseCooldown frees the throttle key when no challenge was stored, so the
// contact can retry at once
func (s *OTPService) releaseCooldown(ctx context.Context, contact string, purpose domain.OTPPurpose) {
	if s.throttle == nil || s.cooldown <= 0 {
		return
	}
	if err := s.throttle.Release(ctx, throttleKey(contact, purpose)); err != nil {
		logger.Warn(ctx, "OTP throttle release failed", zap.Error(err))
	}
}

func throttleKey(contact string, purpose domain.OTPPurpose) string {
	return string(purpose) + ":" + contact
}

// checkPurposeAllowed rejects purposes that make no sense for the account state
func checkPurposeAllowed(user *models.User, purpose domain.OTPPurpose) error {
	if domain.UserStatus(user.Status) == domain.StatusSuspended {
		return domain.ErrUserSuspended
	}
	switch purpose {
	case domain.PurposeRegistration:
		if user.EmailVerified {
			return domain.NewValidationError("Account is already verified")
		}
	case domain.PurposeLogin:
		if !user.EmailVerified {
			return domain.ErrEmailNotVerified
		}
	case domain.PurposePasswordReset:
	}
	return nil
}

// generateSecureOTP generates a cryptographically secure random numeric OTP
func generateSecureOTP(length int) (string, error) {
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}
