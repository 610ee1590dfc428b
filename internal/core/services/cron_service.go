package services

import (
	"context"
	"time"

	"swadhrama-api/internal/adapters/persistence/repositories"
	"swadhrama-api/internal/pkg/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ============================================================
// Cron: purge expired OTP challenges and refresh tokens
// ============================================================

// CronService runs periodic maintenance jobs
type CronService struct {
	otpRepo          repositories.OtpRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	schedule         string
	otpRetention     time.Duration
	cron             *cron.Cron
	now              func() time.Time
}

// NewCronService creates a cron service running the cleanup on schedule
// (standard cron spec or descriptors such as "@every 10m"). OTP challenges are
// purged only once they have been expired for longer than otpRetention.
func NewCronService(
	otpRepo repositories.OtpRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	schedule string,
	otpRetention time.Duration,
) *CronService {
	return &CronService{
		otpRepo:          otpRepo,
		refreshTokenRepo: refreshTokenRepo,
		schedule:         schedule,
		otpRetention:     otpRetention,
		cron:             cron.New(cron.WithLocation(time.UTC)),
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.Cleanup(context.Background())
	}); err != nil {
		return err
	}
	s.cron.Start()
	logger.Info(context.Background(), "Cron service started", zap.String("schedule", s.schedule))
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	logger.Info(context.Background(), "Cron service stopped")
}

// Cleanup deletes OTP challenges past their retention and expired refresh tokens
func (s *CronService) Cleanup(ctx context.Context) {
	now := s.now()

	otps, err := s.otpRepo.DeleteExpired(ctx, now.Add(-s.otpRetention))
	if err != nil {
		logger.Error(ctx, "OTP cleanup failed", zap.Error(err))
	}

	tokens, err := s.refreshTokenRepo.DeleteExpired(ctx, now)
	if err != nil {
		logger.Error(ctx, "Refresh token cleanup failed", zap.Error(err))
	}

	if otps > 0 || tokens > 0 {
		logger.Info(ctx, "Expired records purged",
			zap.Int64("otp_challenges", otps),
			zap.Int64("refresh_tokens", tokens),
		)
	}
}
