package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dferrantino/quotehub-backend/pkg/enums"
)

// QuoteRequestSubmittedEvent signals a buyer opened a new quote request.
type QuoteRequestSubmittedEvent struct {
	QuoteRequestID   uuid.UUID  `json:"quote_request_id"`
	RequestingParty  uuid.UUID  `json:"requesting_party_id"`
	TargetPartyID    *uuid.UUID `json:"target_party_id,omitempty"`
	ProductID        *uuid.UUID `json:"product_id,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	RequestedByUser  uuid.UUID  `json:"requested_by_user_id"`
}

// QuoteRequestCancelledEvent is emitted when the buyer withdraws a request.
type QuoteRequestCancelledEvent struct {
	QuoteRequestID  uuid.UUID `json:"quote_request_id"`
	RequestingParty uuid.UUID `json:"requesting_party_id"`
	CancelledAt     time.Time `json:"cancelled_at"`
	Reason          string    `json:"reason,omitempty"`
}

// QuoteRequestExpiredEvent describes the payload when requests pass their deadline.
type QuoteRequestExpiredEvent struct {
	QuoteRequestID  uuid.UUID `json:"quote_request_id"`
	RequestingParty uuid.UUID `json:"requesting_party_id"`
	ExpiredAt       time.Time `json:"expired_at"`
}

// QuoteRequestDeletedEvent is emitted when a request is soft deleted.
type QuoteRequestDeletedEvent struct {
	QuoteRequestID  uuid.UUID `json:"quote_request_id"`
	RequestingParty uuid.UUID `json:"requesting_party_id"`
	DeletedAt       time.Time `json:"deleted_at"`
}

// QuoteResponseSubmittedEvent signals a supplier quoted a price.
type QuoteResponseSubmittedEvent struct {
	QuoteResponseID uuid.UUID       `json:"quote_response_id"`
	QuoteRequestID  uuid.UUID       `json:"quote_request_id"`
	RequestingParty uuid.UUID       `json:"requesting_party_id"`
	RespondingParty uuid.UUID       `json:"responding_party_id"`
	Price           decimal.Decimal `json:"price"`
	Currency        enums.Currency  `json:"currency"`
}

// QuoteResponseDecisionEvent is emitted when the buyer accepts or rejects a response.
type QuoteResponseDecisionEvent struct {
	QuoteResponseID uuid.UUID                `json:"quote_response_id"`
	QuoteRequestID  uuid.UUID                `json:"quote_request_id"`
	RequestingParty uuid.UUID                `json:"requesting_party_id"`
	RespondingParty uuid.UUID                `json:"responding_party_id"`
	Accepted        bool                     `json:"accepted"`
	RequestStatus   enums.QuoteRequestStatus `json:"request_status"`
	Comment         string                   `json:"comment,omitempty"`
}

// CounterOfferSubmittedEvent carries one side's counter-proposal on price.
type CounterOfferSubmittedEvent struct {
	CounterOfferID  uuid.UUID       `json:"counter_offer_id"`
	QuoteRequestID  uuid.UUID       `json:"quote_request_id"`
	QuoteResponseID *uuid.UUID      `json:"quote_response_id,omitempty"`
	ProposedByUser  uuid.UUID       `json:"proposed_by_user_id"`
	CounterPrice    decimal.Decimal `json:"counter_price"`
	CounterCurrency enums.Currency  `json:"counter_currency"`
}

// PrivatePriceChangedEvent mirrors the payload emitted when a supplier sets,
// replaces, or removes a party-specific price override.
type PrivatePriceChangedEvent struct {
	ProductID       uuid.UUID               `json:"product_id"`
	SupplierPartyID uuid.UUID               `json:"supplier_party_id"`
	BuyerPartyID    uuid.UUID               `json:"buyer_party_id"`
	Kind            *enums.PrivatePriceKind `json:"kind,omitempty"`
	Removed         bool                    `json:"removed"`
}

// NotificationRequestedEvent tells the notification consumer to record an alert.
type NotificationRequestedEvent struct {
	PartyID        uuid.UUID              `json:"party_id"`
	Type           enums.NotificationType `json:"type"`
	Title          string                 `json:"title"`
	Body           string                 `json:"body"`
	QuoteRequestID *uuid.UUID             `json:"quote_request_id,omitempty"`
	ProductID      *uuid.UUID             `json:"product_id,omitempty"`
}
