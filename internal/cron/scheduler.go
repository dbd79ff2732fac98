package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"paystack-bridge/internal/config"
	"paystack-bridge/internal/models"
	"paystack-bridge/internal/payment"
)

const defaultSpec = "0 */10 * * * *"

// Verifier re-derives and applies payment verdicts.
type Verifier interface {
	Verify(ctx context.Context, ref string) payment.Result
	Settle(ctx context.Context, res payment.Result) error
	Invalidate(ctx context.Context, res payment.Result) error
}

// AttemptSource lists attempts that still await a final verdict.
type AttemptSource interface {
	FindPending(ctx context.Context, before time.Time, limit int) ([]models.PaymentAttempt, error)
}

// Scheduler runs the reconciliation sweep that settles payments whose buyer
// never came back through the callback.
type Scheduler struct {
	cron     *cron.Cron
	cfg      config.ReconcileConfig
	verifier Verifier
	attempts AttemptSource
	logger   *zap.Logger
	now      func() time.Time
}

// Summary counts what one sweep did.
type Summary struct {
	Checked     int
	Settled     int
	Invalidated int
	Deferred    int
	Failed      int
}

// New creates a new cron scheduler.
func New(cfg config.ReconcileConfig, verifier Verifier, attempts AttemptSource, logger *zap.Logger) *Scheduler {
	if cfg.Spec == "" {
		cfg.Spec = defaultSpec
	}
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		cfg:      cfg,
		verifier: verifier,
		attempts: attempts,
		logger:   logger,
		now:      time.Now,
	}
}

// Start registers and starts the sweep.
func (s *Scheduler) Start() error {
	s.logger.Info("Starting cron scheduler...", zap.String("spec", s.cfg.Spec))

	_, err := s.cron.AddFunc(s.cfg.Spec, func() {
		s.logger.Debug("Running: payment reconciliation")
		s.reconcileJob()
	})
	if err != nil {
		return fmt.Errorf("schedule reconciliation %q: %w", s.cfg.Spec, err)
	}

	s.cron.Start()
	s.logger.Info("Cron scheduler started")
	return nil
}

// Stop gracefully stops the cron scheduler.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) reconcileJob() {
	defer s.recoverFromPanic("reconcile")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	sum, err := s.Reconcile(ctx)
	if err != nil {
		s.logger.Error("Reconciliation failed", zap.Error(err))
		return
	}
	s.logger.Info("Reconciliation completed",
		zap.Int("checked", sum.Checked),
		zap.Int("settled", sum.Settled),
		zap.Int("invalidated", sum.Invalidated),
		zap.Int("deferred", sum.Deferred),
		zap.Int("failed", sum.Failed))
}

// Reconcile verifies every attempt older than the grace period. Verified
// attempts are settled. Unverified attempts past the expiry window are
// invalidated, younger ones are left for the next run. Gateway outages
// change nothing.
func (s *Scheduler) Reconcile(ctx context.Context) (Summary, error) {
	var sum Summary
	now := s.now()

	attempts, err := s.attempts.FindPending(ctx, now.Add(-s.cfg.Grace), s.cfg.Batch)
	if err != nil {
		return sum, fmt.Errorf("find pending attempts: %w", err)
	}

	for _, attempt := range attempts {
		if ctx.Err() != nil {
			return sum, ctx.Err()
		}
		sum.Checked++

		res := s.verifier.Verify(ctx, attempt.Reference)
		switch res.Verdict {
		case payment.Verified:
			if err := s.verifier.Settle(ctx, res); err != nil {
				sum.Failed++
				continue
			}
			sum.Settled++

		case payment.Unverified:
			if res.OrderID == 0 || now.Sub(attempt.CreatedAt) < s.cfg.Expiry {
				sum.Deferred++
				continue
			}
			if err := s.verifier.Invalidate(ctx, res); err != nil {
				s.logger.Error("Failed to invalidate order",
					zap.Uint64("order_id", res.OrderID),
					zap.String("reference", attempt.Reference),
					zap.Error(err))
				sum.Failed++
				continue
			}
			sum.Invalidated++

		default:
			sum.Deferred++
		}
	}

	return sum, nil
}

func (s *Scheduler) recoverFromPanic(jobName string) {
	if r := recover(); r != nil {
		s.logger.Error("Cron job panicked", zap.String("job", jobName), zap.Any("error", r))
	}
}
