package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/dferrantino/quotehub-backend/pkg/logger"
)

type fakeSweeper struct {
	batches []int
	calls   int
	err     error
}

func (f *fakeSweeper) SweepExpired(ctx context.Context, limit int) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.calls >= len(f.batches) {
		return 0, nil
	}
	swept := f.batches[f.calls]
	f.calls++
	return swept, nil
}

func TestRFQExpiryJobDrainsFullBatches(t *testing.T) {
	sweeper := &fakeSweeper{batches: []int{5, 5, 2}}
	job, err := NewRFQExpiryJob(RFQExpiryJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		Sweeper:   sweeper,
		BatchSize: 5,
	})
	if err != nil {
		t.Fatalf("NewRFQExpiryJob: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sweeper.calls != 3 {
		t.Fatalf("expected 3 sweep calls, got %d", sweeper.calls)
	}
}

func TestRFQExpiryJobPropagatesErrors(t *testing.T) {
	job, err := NewRFQExpiryJob(RFQExpiryJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "test"}),
		Sweeper: &fakeSweeper{err: errors.New("boom")},
	})
	if err != nil {
		t.Fatalf("NewRFQExpiryJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

type fakeNotificationRepo struct {
	lastCutoff  time.Time
	deletedRows int64
	err         error
	called      int
}

func (f *fakeNotificationRepo) DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	f.called++
	f.lastCutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return f.deletedRows, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func TestNotificationCleanupJobUsesRetentionCutoff(t *testing.T) {
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	repo := &fakeNotificationRepo{deletedRows: 42}
	jobIface, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		DB:         fakeTxRunner{},
		Repository: repo,
		Retention:  14 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewNotificationCleanupJob: %v", err)
	}
	job := jobIface.(*notificationCleanupJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	expected := now.Add(-14 * 24 * time.Hour)
	if !repo.lastCutoff.Equal(expected) {
		t.Fatalf("expected cutoff %s, got %s", expected, repo.lastCutoff)
	}
	if repo.called != 1 {
		t.Fatalf("expected repo called once, got %d", repo.called)
	}
}

func TestNotificationCleanupJobPropagatesErrors(t *testing.T) {
	jobIface, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		DB:         fakeTxRunner{},
		Repository: &fakeNotificationRepo{err: errors.New("boom")},
	})
	if err != nil {
		t.Fatalf("NewNotificationCleanupJob: %v", err)
	}
	if err := jobIface.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

type fakeOutboxRepo struct {
	lastCutoff time.Time
	deleted    int64
	err        error
}

func (f *fakeOutboxRepo) DeletePublishedBefore(cutoff time.Time) (int64, error) {
	f.lastCutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return f.deleted, nil
}

func TestOutboxRetentionJobUsesRetentionCutoff(t *testing.T) {
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	repo := &fakeOutboxRepo{deleted: 10}
	jobIface, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: repo,
		Retention:  7 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewOutboxRetentionJob: %v", err)
	}
	job := jobIface.(*outboxRetentionJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	expected := now.Add(-7 * 24 * time.Hour)
	if !repo.lastCutoff.Equal(expected) {
		t.Fatalf("expected cutoff %s, got %s", expected, repo.lastCutoff)
	}
}
