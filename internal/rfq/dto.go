package rfq

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dferrantino/quotehub-backend/internal/pricing"
	"github.com/dferrantino/quotehub-backend/pkg/db/models"
	"github.com/dferrantino/quotehub-backend/pkg/enums"
	"github.com/dferrantino/quotehub-backend/pkg/pagination"
)

// SubmitRequestInput opens a new negotiation thread for the requesting party.
type SubmitRequestInput struct {
	RequestingPartyID uuid.UUID
	ActorUserID       uuid.UUID
	ActorRole         string
	TargetPartyID     *uuid.UUID
	ProductID         *uuid.UUID
	Subject           *string
	Description       *string
	Category          *string
	Quantity          *decimal.Decimal
	Unit              *string
	TargetPrice       *decimal.Decimal
	TargetCurrency    *enums.Currency
	ExpiresAt         *time.Time
}

// SubmitResponseInput is one supplier's priced bid.
type SubmitResponseInput struct {
	RequestID         uuid.UUID
	RespondingPartyID uuid.UUID
	ActorUserID       uuid.UUID
	ActorRole         string
	Price             decimal.Decimal
	Currency          enums.Currency
	Quantity          *decimal.Decimal
	Unit              *string
	ValidUntil        *time.Time
	Message           *string
	Terms             *string
}

// AcceptResponseInput selects the winning bid.
type AcceptResponseInput struct {
	RequestID     uuid.UUID
	ResponseID    uuid.UUID
	ActingPartyID uuid.UUID
	ActorUserID   uuid.UUID
	ActorRole     string
}

// RejectResponseInput closes one response path.
type RejectResponseInput struct {
	RequestID     uuid.UUID
	ResponseID    uuid.UUID
	ActingPartyID uuid.UUID
	ActorUserID   uuid.UUID
	ActorRole     string
	Comment       *string
}

// SubmitCounterInput proposes a new price against the request or one of its
// responses.
type SubmitCounterInput struct {
	RequestID       uuid.UUID
	ResponseID      *uuid.UUID
	ActingPartyID   uuid.UUID
	ActorUserID     uuid.UUID
	ActorRole       string
	CounterPrice    decimal.Decimal
	CounterCurrency enums.Currency
	Message         *string
}

// CancelInput withdraws the whole thread.
type CancelInput struct {
	RequestID     uuid.UUID
	ActingPartyID uuid.UUID
	ActorUserID   uuid.UUID
	ActorRole     string
	Reason        *string
}

// DeleteInput soft-deletes a request that never received a response.
type DeleteInput struct {
	RequestID     uuid.UUID
	ActingPartyID uuid.UUID
	ActorUserID   uuid.UUID
	ActorRole     string
}

// ListForPartyInput scopes the paginated list.
type ListForPartyInput struct {
	PartyID    uuid.UUID
	Status     *enums.QuoteRequestStatus
	Pagination pagination.Params
}

// RequestSummary is one row in the party-scoped list. Status is the
// effective status, never the raw stored column.
type RequestSummary struct {
	Request models.QuoteRequest      `json:"request"`
	Status  enums.QuoteRequestStatus `json:"status"`
}

// RequestPage wraps the paginated list plus the next page cursor.
type RequestPage struct {
	Requests   []RequestSummary `json:"requests"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// RequestDetail is the full thread view. Responses are ranked cheapest
// first; YourEffectivePrice is the viewer-resolved price for the attached
// product, when there is one.
type RequestDetail struct {
	Request            models.QuoteRequest      `json:"request"`
	Status             enums.QuoteRequestStatus `json:"status"`
	Responses          []models.QuoteResponse   `json:"responses"`
	CounterOffers      []models.CounterOffer    `json:"counter_offers"`
	YourEffectivePrice *pricing.EffectivePrice  `json:"your_effective_price,omitempty"`
}
