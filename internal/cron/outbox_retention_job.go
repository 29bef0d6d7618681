package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/dferrantino/quotehub-backend/pkg/logger"
)

const defaultOutboxRetention = 7 * 24 * time.Hour

type outboxRetentionRepo interface {
	DeletePublishedBefore(cutoff time.Time) (int64, error)
}

// OutboxRetentionJobParams configure the outbox retention job.
type OutboxRetentionJobParams struct {
	Logger     *logger.Logger
	Repository outboxRetentionRepo
	Retention  time.Duration
}

// NewOutboxRetentionJob builds the job that prunes outbox rows already
// published to Pub/Sub. Unpublished rows are never touched.
func NewOutboxRetentionJob(params OutboxRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultOutboxRetention
	}
	return &outboxRetentionJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type outboxRetentionJob struct {
	logg      *logger.Logger
	repo      outboxRetentionRepo
	retention time.Duration
	now       func() time.Time
}

func (j *outboxRetentionJob) Name() string { return "outbox-retention" }

func (j *outboxRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	deleted, err := j.repo.DeletePublishedBefore(cutoff)
	if err != nil {
		return fmt.Errorf("outbox retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"retention":    j.retention.String(),
		"rows_deleted": deleted,
	})
	j.logg.Info(logCtx, "outbox retention cleanup complete")
	return nil
}
