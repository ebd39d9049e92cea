package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/rmoralesdev/brickvest-backend/pkg/logger"
	"github.com/rmoralesdev/brickvest-backend/pkg/metrics"
)

// reservationSweeper is the slice of the investment service the job needs.
type reservationSweeper interface {
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

// ReservationExpiryJobParams configure the reservation expiry job.
type ReservationExpiryJobParams struct {
	Logger      *logger.Logger
	Investments reservationSweeper
	Metrics     *metrics.CronJobMetrics
}

type reservationExpiryJob struct {
	logg        *logger.Logger
	investments reservationSweeper
	metrics     *metrics.CronJobMetrics
	now         func() time.Time
}

// NewReservationExpiryJob builds the cron job that cancels lapsed share
// reservations and returns their shares to the property's inventory.
func NewReservationExpiryJob(params ReservationExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Investments == nil {
		return nil, fmt.Errorf("investment service required")
	}
	return &reservationExpiryJob{
		logg:        params.Logger,
		investments: params.Investments,
		metrics:     params.Metrics,
		now:         time.Now,
	}, nil
}

func (j *reservationExpiryJob) Name() string { return "reservation-expiry" }

func (j *reservationExpiryJob) Run(ctx context.Context) error {
	swept, err := j.investments.SweepExpired(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("sweep expired reservations: %w", err)
	}
	if j.metrics != nil {
		j.metrics.AddExpiredReservations(swept)
	}
	if swept > 0 {
		logCtx := j.logg.WithField(ctx, "count", swept)
		j.logg.Info(logCtx, "expired reservations released")
	}
	return nil
}
