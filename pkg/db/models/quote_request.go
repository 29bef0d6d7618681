package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dferrantino/quotehub-backend/pkg/enums"
)

// QuoteRequest is one negotiation thread opened by a buying company.
//
// The status column is a cached projection of the thread's children plus the
// clock: readers must go through the state machine's effective-status check,
// and writers only ever mutate it through guarded transitions. Requests are
// never hard-deleted; cancellation and deletion are statuses so the audit
// trail survives.
type QuoteRequest struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RequestingPartyID uuid.UUID `gorm:"column:requesting_party_id;type:uuid;not null"`
	// TargetPartyID is nil for an open request visible to all suppliers.
	TargetPartyID *uuid.UUID `gorm:"column:target_party_id;type:uuid"`
	// RespondingPartyID is bound when the first response is recorded.
	RespondingPartyID *uuid.UUID               `gorm:"column:responding_party_id;type:uuid"`
	RequestedByUserID uuid.UUID                `gorm:"column:requested_by_user_id;type:uuid;not null"`
	ProductID         *uuid.UUID               `gorm:"column:product_id;type:uuid"`
	Subject           *string                  `gorm:"column:subject"`
	Description       *string                  `gorm:"column:description"`
	Category          *string                  `gorm:"column:category"`
	Quantity          *decimal.Decimal         `gorm:"column:quantity;type:numeric(12,3)"`
	Unit              *string                  `gorm:"column:unit"`
	TargetPrice       *decimal.Decimal         `gorm:"column:target_price;type:numeric(12,2)"`
	TargetCurrency    *enums.Currency          `gorm:"column:target_currency;type:text"`
	Status            enums.QuoteRequestStatus `gorm:"column:status;type:quote_request_status;not null;default:'pending'"`
	ExpiresAt         *time.Time               `gorm:"column:expires_at"`
	CancelledAt       *time.Time               `gorm:"column:cancelled_at"`
	Responses         []QuoteResponse          `gorm:"foreignKey:QuoteRequestID;constraint:OnDelete:CASCADE"`
	CounterOffers     []CounterOffer           `gorm:"foreignKey:QuoteRequestID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
