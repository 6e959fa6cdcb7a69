package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RateExpiryJobName is the name of the catalog rate expiry sweep job
const RateExpiryJobName = "rate_expiry_sweep"

// RateExpirySweeper defines the interface for the catalog expiry sweep.
// This interface allows the job to call the service without importing the
// service package directly.
type RateExpirySweeper interface {
	// SweepExpiring notifies pricing about rates entering the expiring
	// window. Returns the number of rates notified.
	SweepExpiring(ctx context.Context) (int, error)
}

// RateExpiryJob periodically sweeps the rate catalog for rates whose
// validity window is about to close and notifies the pricing team once
// per rate.
type RateExpiryJob struct {
	catalog RateExpirySweeper
	logger  *zap.Logger
	timeout time.Duration
}

// NewRateExpiryJob creates a new rate expiry sweep job.
// The timeout controls how long a single sweep is allowed to run.
func NewRateExpiryJob(catalog RateExpirySweeper, logger *zap.Logger, timeout time.Duration) *RateExpiryJob {
	return &RateExpiryJob{
		catalog: catalog,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes the expiry sweep. Called by the scheduler according to the
// configured cron expression.
func (j *RateExpiryJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()

	notified, err := j.catalog.SweepExpiring(ctx)
	if err != nil {
		j.logger.Error("rate expiry sweep failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	if notified > 0 {
		j.logger.Info("rate expiry sweep notified pricing",
			zap.Int("rates_notified", notified),
			zap.Duration("duration", time.Since(start)))
	}
}

// RegisterRateExpiryJob registers the expiry sweep with the scheduler.
// The cronExpr should be a valid cron expression with an optional seconds
// field (e.g., "0 0 * * * *" for the top of every hour).
func RegisterRateExpiryJob(scheduler *Scheduler, catalog RateExpirySweeper, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewRateExpiryJob(catalog, logger, timeout)
	return scheduler.AddJob(RateExpiryJobName, cronExpr, job.Run)
}
