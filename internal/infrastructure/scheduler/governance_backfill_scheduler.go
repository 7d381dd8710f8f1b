// Package scheduler runs recurring background jobs inside the server process.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	catalogapp "github.com/bizgrid/backend/internal/application/catalog"
	"go.uber.org/zap"
)

var (
	// ErrSchedulerNotRunning is returned by TriggerImmediate before Start or after Stop
	ErrSchedulerNotRunning = errors.New("scheduler is not running")
	ErrInvalidConfig       = errors.New("invalid scheduler configuration")
)

// LegacyBackfiller auto-passes imported catalog entries that are still pending
type LegacyBackfiller interface {
	AutoPassLegacy(ctx context.Context, batchSize int) (*catalogapp.BackfillResult, error)
}

// GovernanceBackfillScheduler repeats the legacy governance backfill once a day, so
// entries whose tax code is configured after import do not wait for a manual run.
type GovernanceBackfillScheduler struct {
	backfiller LegacyBackfiller
	logger     *zap.Logger
	config     GovernanceBackfillSchedulerConfig
	now        func() time.Time
	loopCtx    context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.Mutex
	isRunning  bool
}

// GovernanceBackfillSchedulerConfig holds configuration for the backfill scheduler
type GovernanceBackfillSchedulerConfig struct {
	// Enabled determines if the scheduler is active
	Enabled bool

	// RunHour is the hour (0-23) when the daily run starts
	RunHour int

	// BatchSize is the number of entries read per batch
	BatchSize int

	// RunTimeout is the maximum time for one run
	RunTimeout time.Duration
}

// DefaultGovernanceBackfillSchedulerConfig returns default configuration
func DefaultGovernanceBackfillSchedulerConfig() GovernanceBackfillSchedulerConfig {
	return GovernanceBackfillSchedulerConfig{
		Enabled:    false,
		RunHour:    2,
		BatchSize:  catalogapp.DefaultBackfillBatchSize,
		RunTimeout: 30 * time.Minute,
	}
}

// Validate checks the configuration
func (c GovernanceBackfillSchedulerConfig) Validate() error {
	if c.RunHour < 0 || c.RunHour > 23 {
		return fmt.Errorf("%w: run hour %d is outside 0-23", ErrInvalidConfig, c.RunHour)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", ErrInvalidConfig)
	}
	if c.RunTimeout <= 0 {
		return fmt.Errorf("%w: run timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// NewGovernanceBackfillScheduler creates a new backfill scheduler
func NewGovernanceBackfillScheduler(
	backfiller LegacyBackfiller,
	logger *zap.Logger,
	config GovernanceBackfillSchedulerConfig,
) *GovernanceBackfillScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GovernanceBackfillScheduler{
		backfiller: backfiller,
		logger:     logger.Named("governance_backfill"),
		config:     config,
		now:        time.Now,
	}
}

// Start starts the daily loop. A disabled scheduler starts as a no-op.
func (s *GovernanceBackfillScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Governance backfill scheduler is disabled")
		return nil
	}
	if err := s.config.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	s.loopCtx = ctx
	s.cancel = cancel
	s.isRunning = true
	s.wg.Add(1)
	s.mu.Unlock()

	go s.runDaily(ctx)

	s.logger.Info("Governance backfill scheduler started",
		zap.Int("run_hour", s.config.RunHour),
		zap.Int("batch_size", s.config.BatchSize),
	)
	return nil
}

// Stop gracefully stops the scheduler, waiting for a run in progress until ctx ends
func (s *GovernanceBackfillScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Governance backfill scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Governance backfill scheduler stop timed out")
		return ctx.Err()
	}
}

// NextRun returns the first run time strictly after now
func (s *GovernanceBackfillScheduler) NextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.config.RunHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (s *GovernanceBackfillScheduler) runDaily(ctx context.Context) {
	defer s.wg.Done()

	for {
		nextRun := s.NextRun(s.now())
		delay := time.Until(nextRun)
		s.logger.Info("Governance backfill scheduled",
			zap.Time("next_run", nextRun),
			zap.Duration("delay", delay),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Debug("Governance backfill loop stopping")
			return
		case <-timer.C:
			s.execute(ctx)
		}
	}
}

// execute performs one run. Failures are logged; the next day's run retries.
func (s *GovernanceBackfillScheduler) execute(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	startTime := time.Now()
	result, err := s.backfiller.AutoPassLegacy(runCtx, s.config.BatchSize)
	duration := time.Since(startTime)

	if err != nil {
		fields := []zap.Field{zap.Duration("duration", duration), zap.Error(err)}
		if result != nil {
			fields = append(fields, zap.Int("auto_passed", result.AutoPassed))
		}
		s.logger.Error("Governance backfill failed", fields...)
		return
	}

	s.logger.Info("Governance backfill completed",
		zap.Duration("duration", duration),
		zap.Int("scanned", result.Scanned),
		zap.Int("auto_passed", result.AutoPassed),
		zap.Int("left_pending", result.LeftPending),
	)
}

// TriggerImmediate starts a run now without waiting for the daily slot. The run
// belongs to the scheduler, so Stop cancels it like a scheduled one.
func (s *GovernanceBackfillScheduler) TriggerImmediate(_ context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	loopCtx := s.loopCtx
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info("Triggering immediate governance backfill")
	go func() {
		defer s.wg.Done()
		s.execute(loopCtx)
	}()
	return nil
}

// IsRunning returns whether the scheduler is running
func (s *GovernanceBackfillScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}
