package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dferrantino/quotehub-backend/pkg/redis"
)

// Manager records which event IDs a consumer has already handled, backed by
// Redis SETNX under `qh:idempotency:evt:processed:<consumer>:<event_id>`.
type Manager struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

// NewManager builds the guard. Marks expire after ttl; zero means no expiry.
func NewManager(store redis.IdempotencyStore, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &Manager{store: store, ttl: ttl}, nil
}

// CheckAndMarkProcessed reports whether the event was already handled, marking
// it as handled otherwise. The check and the mark are one SETNX round trip.
func (m *Manager) CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	key, err := m.processedKey(consumer, eventID)
	if err != nil {
		return false, err
	}
	set, err := m.store.SetNX(ctx, key, "1", m.ttl)
	if err != nil {
		return false, err
	}
	return !set, nil
}

// Delete clears the processed mark so a failed handler can retry the event.
func (m *Manager) Delete(ctx context.Context, consumer string, eventID uuid.UUID) error {
	key, err := m.processedKey(consumer, eventID)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, key)
}

func (m *Manager) processedKey(consumer string, eventID uuid.UUID) (string, error) {
	if consumer == "" {
		return "", errors.New("consumer name is required")
	}
	if eventID == uuid.Nil {
		return "", errors.New("event id is required")
	}
	return m.store.IdempotencyKey(fmt.Sprintf("evt:processed:%s", consumer), eventID.String()), nil
}
