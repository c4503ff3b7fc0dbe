package services

import (
	"context"
	"time"

	"microcredit-api/internal/adapters/persistence/repositories"
	"microcredit-api/internal/pkg/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const jobTimeout = time.Minute

// CronService runs the periodic housekeeping jobs
type CronService struct {
	cron             *cron.Cron
	verification     *VerificationService
	refreshTokenRepo repositories.RefreshTokenRepository
	wizards          *WizardService
	sweepSpec        string
}

// NewCronService creates the scheduler. sweepSpec is a cron spec such as
// "@every 5m" for the verification code sweep.
func NewCronService(
	verification *VerificationService,
	refreshTokenRepo repositories.RefreshTokenRepository,
	wizards *WizardService,
	sweepSpec string,
) *CronService {
	if sweepSpec == "" {
		sweepSpec = "@every 5m"
	}
	return &CronService{
		cron:             cron.New(),
		verification:     verification,
		refreshTokenRepo: refreshTokenRepo,
		wizards:          wizards,
		sweepSpec:        sweepSpec,
	}
}

// Start registers the jobs and launches the scheduler
func (s *CronService) Start() error {
	jobs := []struct {
		spec string
		run  func()
	}{
		{s.sweepSpec, s.sweepCodes},
		{"@daily", s.purgeRefreshTokens},
		{"@every 15m", s.purgeIdleWizards},
	}
	for _, job := range jobs {
		if _, err := s.cron.AddFunc(job.spec, job.run); err != nil {
			return err
		}
	}

	s.cron.Start()
	logger.Info(context.Background(), "🚀 CronService started", zap.String("sweep", s.sweepSpec))
	return nil
}

// Stop waits for running jobs to finish
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	logger.Info(context.Background(), "🛑 CronService stopped")
}

func (s *CronService) sweepCodes() {
	if s.verification == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.verification.Sweep(ctx)
	if err != nil {
		logger.Error(ctx, "❌ Code sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		logger.Info(ctx, "🧹 Expired verification codes removed", zap.Int("count", n))
	}
}

func (s *CronService) purgeRefreshTokens() {
	if s.refreshTokenRepo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.refreshTokenRepo.DeleteExpired(ctx)
	if err != nil {
		logger.Error(ctx, "❌ Refresh token cleanup failed", zap.Error(err))
		return
	}
	if n > 0 {
		logger.Info(ctx, "🧹 Expired refresh tokens removed", zap.Int64("count", n))
	}
}

func (s *CronService) purgeIdleWizards() {
	if s.wizards == nil {
		return
	}
	ctx := context.Background()
	if n := s.wizards.PurgeIdle(ctx); n > 0 {
		logger.Info(ctx, "🧹 Idle application forms dropped", zap.Int("count", n))
	}
}
