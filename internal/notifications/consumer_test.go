package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dferrantino/quotehub-backend/pkg/db/models"
	"github.com/dferrantino/quotehub-backend/pkg/enums"
	"github.com/dferrantino/quotehub-backend/pkg/logger"
	"github.com/dferrantino/quotehub-backend/pkg/outbox"
	"github.com/dferrantino/quotehub-backend/pkg/outbox/idempotency"
	"github.com/dferrantino/quotehub-backend/pkg/outbox/payloads"
)

type fakeConsumerRepo struct {
	created []models.Notification
	err     error
}

func (f *fakeConsumerRepo) Create(ctx context.Context, notification *models.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, *notification)
	return nil
}

type fakeIdempotencyStore struct {
	seen    map[string]bool
	deleted []string
}

func (f *fakeIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	return "", nil
}

func (f *fakeIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("test:idempotency:%s:%s", scope, id)
}

func (f *fakeIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	f.deleted = append(f.deleted, keys...)
	return nil
}

func newTestConsumer(t *testing.T, repo repository, store *fakeIdempotencyStore) *Consumer {
	t.Helper()
	manager, err := idempotency.NewManager(store, time.Hour)
	if err != nil {
		t.Fatalf("build idempotency manager: %v", err)
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return &Consumer{repo: repo, idempotency: manager, logg: logg}
}

func quoteEventMessage(t *testing.T, eventType enums.OutboxEventType, eventID uuid.UUID, payload any) *pubsub.Message {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	envelope, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID.String(),
		OccurredAt: time.Now(),
		Data:       data,
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return &pubsub.Message{
		ID:         uuid.NewString(),
		Data:       envelope,
		Attributes: map[string]string{"event_type": string(eventType)},
	}
}

func TestConsumerRecordsQuoteSubmittedNotification(t *testing.T) {
	repo := &fakeConsumerRepo{}
	store := &fakeIdempotencyStore{}
	consumer := newTestConsumer(t, repo, store)

	buyer := uuid.New()
	requestID := uuid.New()
	msg := quoteEventMessage(t, enums.EventQuoteResponseSubmitted, uuid.New(), payloads.QuoteResponseSubmittedEvent{
		QuoteResponseID: uuid.New(),
		QuoteRequestID:  requestID,
		RequestingParty: buyer,
		RespondingParty: uuid.New(),
		Price:           decimal.RequireFromString("42.50"),
		Currency:        enums.CurrencyUSD,
	})

	result := consumer.process(context.Background(), msg)
	if !result.ack || result.nack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one notification, got %d", len(repo.created))
	}
	created := repo.created[0]
	if created.PartyID != buyer {
		t.Fatalf("expected notification for buyer %s, got %s", buyer, created.PartyID)
	}
	if created.Type != enums.NotificationTypeQuoteAlert {
		t.Fatalf("unexpected type %s", created.Type)
	}
	if created.Link == nil || *created.Link != "/rfqs/"+requestID.String() {
		t.Fatalf("unexpected link %v", created.Link)
	}
}

func TestConsumerSkipsDuplicateEvent(t *testing.T) {
	repo := &fakeConsumerRepo{}
	store := &fakeIdempotencyStore{}
	consumer := newTestConsumer(t, repo, store)

	eventID := uuid.New()
	payload := payloads.QuoteResponseDecisionEvent{
		QuoteResponseID: uuid.New(),
		QuoteRequestID:  uuid.New(),
		RequestingParty: uuid.New(),
		RespondingParty: uuid.New(),
		Accepted:        true,
	}

	first := consumer.process(context.Background(), quoteEventMessage(t, enums.EventQuoteResponseAccepted, eventID, payload))
	if !first.ack {
		t.Fatalf("expected first delivery acked, got %+v", first)
	}
	second := consumer.process(context.Background(), quoteEventMessage(t, enums.EventQuoteResponseAccepted, eventID, payload))
	if !second.ack {
		t.Fatalf("expected duplicate acked, got %+v", second)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected a single notification, got %d", len(repo.created))
	}
}

func TestConsumerNacksAndUnmarksOnRepoFailure(t *testing.T) {
	repo := &fakeConsumerRepo{err: errors.New("insert failed")}
	store := &fakeIdempotencyStore{}
	consumer := newTestConsumer(t, repo, store)

	msg := quoteEventMessage(t, enums.EventQuoteRequestExpired, uuid.New(), payloads.QuoteRequestExpiredEvent{
		QuoteRequestID:  uuid.New(),
		RequestingParty: uuid.New(),
	})

	result := consumer.process(context.Background(), msg)
	if !result.nack {
		t.Fatalf("expected nack on repo failure, got %+v", result)
	}
	if len(store.deleted) != 1 {
		t.Fatalf("expected processed mark cleared for retry, got %d deletes", len(store.deleted))
	}
}

func TestConsumerAcksUnmappedEventType(t *testing.T) {
	repo := &fakeConsumerRepo{}
	store := &fakeIdempotencyStore{}
	consumer := newTestConsumer(t, repo, store)

	msg := &pubsub.Message{
		ID:         uuid.NewString(),
		Data:       []byte(`{}`),
		Attributes: map[string]string{"event_type": string(enums.EventQuoteRequestSubmitted)},
	}

	result := consumer.process(context.Background(), msg)
	if !result.ack {
		t.Fatalf("expected ack for unmapped event, got %+v", result)
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected no notifications, got %d", len(repo.created))
	}
	if len(store.seen) != 0 {
		t.Fatalf("expected no idempotency marks, got %d", len(store.seen))
	}
}
