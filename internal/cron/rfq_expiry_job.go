package cron

import (
	"context"
	"fmt"

	"github.com/dferrantino/quotehub-backend/pkg/logger"
)

const expirySweepBatchSize = 200

type expirySweeper interface {
	SweepExpired(ctx context.Context, limit int) (int, error)
}

// RFQExpiryJobParams configure the expiry sweep job.
type RFQExpiryJobParams struct {
	Logger    *logger.Logger
	Sweeper   expirySweeper
	BatchSize int
}

// NewRFQExpiryJob builds the job that persists the expired status for quote
// requests past their deadline. Reporting efficiency only; every read
// already derives expiry from the clock.
func NewRFQExpiryJob(params RFQExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sweeper == nil {
		return nil, fmt.Errorf("expiry sweeper required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = expirySweepBatchSize
	}
	return &rfqExpiryJob{
		logg:    params.Logger,
		sweeper: params.Sweeper,
		batch:   batch,
	}, nil
}

type rfqExpiryJob struct {
	logg    *logger.Logger
	sweeper expirySweeper
	batch   int
}

func (j *rfqExpiryJob) Name() string { return "rfq-expiry-sweep" }

func (j *rfqExpiryJob) Run(ctx context.Context) error {
	total := 0
	for {
		swept, err := j.sweeper.SweepExpired(ctx, j.batch)
		total += swept
		if err != nil {
			return fmt.Errorf("rfq expiry sweep: %w", err)
		}
		if swept < j.batch {
			break
		}
	}
	logCtx := j.logg.WithField(ctx, "requests_expired", total)
	j.logg.Info(logCtx, "rfq expiry sweep complete")
	return nil
}
