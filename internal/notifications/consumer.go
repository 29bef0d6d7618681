package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/dferrantino/quotehub-backend/pkg/db/models"
	"github.com/dferrantino/quotehub-backend/pkg/enums"
	"github.com/dferrantino/quotehub-backend/pkg/logger"
	"github.com/dferrantino/quotehub-backend/pkg/outbox"
	"github.com/dferrantino/quotehub-backend/pkg/outbox/idempotency"
	"github.com/dferrantino/quotehub-backend/pkg/outbox/payloads"
)

const quoteNotificationConsumer = "quote-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer watches domain events and records in-app notifications for the
// counterpart party of each negotiation step.
type Consumer struct {
	repo         repository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds a quote notification consumer.
func NewConsumer(repo repository, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": string(eventType),
	})

	if !c.handles(eventType) {
		c.logg.Info(logCtx, "skipping event without notification mapping")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, quoteNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handlePayload(ctx, eventType, envelope.Data, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, quoteNotificationConsumer, eventID)
		return processResult{nack: true}
	}

	return processResult{ack: true}
}

func (c *Consumer) handles(eventType enums.OutboxEventType) bool {
	switch eventType {
	case enums.EventNotificationRequested,
		enums.EventQuoteResponseSubmitted,
		enums.EventQuoteResponseAccepted,
		enums.EventQuoteResponseRejected,
		enums.EventQuoteRequestExpired,
		enums.EventCounterOfferSubmitted,
		enums.EventPrivatePriceChanged:
		return true
	default:
		return false
	}
}

func (c *Consumer) handlePayload(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage, logCtx context.Context) error {
	switch eventType {
	case enums.EventNotificationRequested:
		return c.createRequestedNotification(ctx, data, logCtx)
	case enums.EventQuoteResponseSubmitted:
		return c.notifyResponseSubmitted(ctx, data, logCtx)
	case enums.EventQuoteResponseAccepted, enums.EventQuoteResponseRejected:
		return c.notifyResponseDecision(ctx, data, logCtx)
	case enums.EventQuoteRequestExpired:
		return c.notifyRequestExpired(ctx, data, logCtx)
	case enums.EventCounterOfferSubmitted:
		c.logg.Info(logCtx, "counter offer recorded without direct recipient")
		return nil
	case enums.EventPrivatePriceChanged:
		return c.notifyPriceChanged(ctx, data, logCtx)
	default:
		return nil
	}
}

func (c *Consumer) createRequestedNotification(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload payloads.NotificationRequestedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse notification request: %w", err)
	}
	if payload.PartyID == uuid.Nil {
		return fmt.Errorf("party id missing")
	}
	notificationType := payload.Type
	if !notificationType.IsValid() {
		notificationType = enums.NotificationTypeSystemAnnouncement
	}
	notification := &models.Notification{
		PartyID: payload.PartyID,
		Type:    notificationType,
		Title:   payload.Title,
		Message: payload.Body,
	}
	if payload.QuoteRequestID != nil {
		notification.Link = stringPtr(fmt.Sprintf("/rfqs/%s", payload.QuoteRequestID))
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "requested notification recorded")
	return nil
}

func (c *Consumer) notifyResponseSubmitted(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload payloads.QuoteResponseSubmittedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse response payload: %w", err)
	}
	if payload.RequestingParty == uuid.Nil {
		return fmt.Errorf("requesting party missing")
	}
	notification := &models.Notification{
		PartyID: payload.RequestingParty,
		Type:    enums.NotificationTypeQuoteAlert,
		Title:   "New quote received",
		Message: fmt.Sprintf("A supplier quoted %s %s on your request.", payload.Price.StringFixed(2), payload.Currency),
		Link:    stringPtr(fmt.Sprintf("/rfqs/%s", payload.QuoteRequestID)),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "buyer notified of new quote")
	return nil
}

func (c *Consumer) notifyResponseDecision(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload payloads.QuoteResponseDecisionEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse decision payload: %w", err)
	}
	if payload.RespondingParty == uuid.Nil {
		return fmt.Errorf("responding party missing")
	}
	title := "Quote declined"
	message := "The buyer declined your quote."
	if payload.Accepted {
		title = "Quote accepted"
		message = "The buyer accepted your quote."
	} else if payload.Comment != "" {
		message = fmt.Sprintf("The buyer declined your quote: %s", payload.Comment)
	}
	notification := &models.Notification{
		PartyID: payload.RespondingParty,
		Type:    enums.NotificationTypeQuoteAlert,
		Title:   title,
		Message: message,
		Link:    stringPtr(fmt.Sprintf("/rfqs/%s", payload.QuoteRequestID)),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "supplier notified of decision")
	return nil
}

func (c *Consumer) notifyRequestExpired(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload payloads.QuoteRequestExpiredEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse expiry payload: %w", err)
	}
	if payload.RequestingParty == uuid.Nil {
		return fmt.Errorf("requesting party missing")
	}
	notification := &models.Notification{
		PartyID: payload.RequestingParty,
		Type:    enums.NotificationTypeQuoteAlert,
		Title:   "Quote request expired",
		Message: "Your quote request reached its deadline without an accepted quote.",
		Link:    stringPtr(fmt.Sprintf("/rfqs/%s", payload.QuoteRequestID)),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "buyer notified of expiry")
	return nil
}

func (c *Consumer) notifyPriceChanged(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload payloads.PrivatePriceChangedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse price payload: %w", err)
	}
	if payload.BuyerPartyID == uuid.Nil {
		return fmt.Errorf("buyer party missing")
	}
	title := "Special pricing updated"
	message := "A supplier updated your negotiated price on a product."
	if payload.Removed {
		title = "Special pricing removed"
		message = "A supplier removed your negotiated price on a product."
	}
	notification := &models.Notification{
		PartyID: payload.BuyerPartyID,
		Type:    enums.NotificationTypePriceAlert,
		Title:   title,
		Message: message,
		Link:    stringPtr(fmt.Sprintf("/products/%s", payload.ProductID)),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "buyer notified of price change")
	return nil
}

func stringPtr(value string) *string {
	return &value
}
