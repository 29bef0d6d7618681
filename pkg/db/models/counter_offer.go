package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dferrantino/quotehub-backend/pkg/enums"
)

// CounterOffer is a price amendment proposed by the requesting party, either
// against the request as a whole or against one specific response. Counter
// offers are append-only and never change the request status themselves; the
// targeted supplier answers with a fresh QuoteResponse or a rejection.
type CounterOffer struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QuoteRequestID    uuid.UUID       `gorm:"column:quote_request_id;type:uuid;not null"`
	QuoteResponseID   *uuid.UUID      `gorm:"column:quote_response_id;type:uuid"`
	ProposedByUserID  uuid.UUID       `gorm:"column:proposed_by_user_id;type:uuid;not null"`
	CounterPrice      decimal.Decimal `gorm:"column:counter_price;type:numeric(12,2);not null"`
	CounterCurrency   enums.Currency  `gorm:"column:counter_currency;type:text;not null"`
	Message           *string         `gorm:"column:message"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
}
