package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dferrantino/quotehub-backend/pkg/enums"
)

// QuoteResponse is one supplier's priced bid against a quote request.
//
// Rows are append-only except for the is_accepted flip on exactly one
// response and the is_rejected flag closing a response path. The partial
// unique index ux_quote_responses_accepted (quote_request_id WHERE
// is_accepted) is the storage backstop for the single-winner invariant; the
// state machine's guarded transition is the primary check.
type QuoteResponse struct {
	ID                uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QuoteRequestID    uuid.UUID        `gorm:"column:quote_request_id;type:uuid;not null"`
	RespondingPartyID uuid.UUID        `gorm:"column:responding_party_id;type:uuid;not null"`
	RespondedByUserID uuid.UUID        `gorm:"column:responded_by_user_id;type:uuid;not null"`
	Price             decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	Currency          enums.Currency   `gorm:"column:currency;type:text;not null"`
	Quantity          *decimal.Decimal `gorm:"column:quantity;type:numeric(12,3)"`
	Unit              *string          `gorm:"column:unit"`
	ValidUntil        *time.Time       `gorm:"column:valid_until"`
	Message           *string          `gorm:"column:message"`
	Terms             *string          `gorm:"column:terms"`
	IsAccepted        bool             `gorm:"column:is_accepted;not null;default:false"`
	IsRejected        bool             `gorm:"column:is_rejected;not null;default:false"`
	RejectionComment  *string          `gorm:"column:rejection_comment"`
	RespondedAt       time.Time        `gorm:"column:responded_at;autoCreateTime"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
