package enums

import "fmt"

// QuoteRequestStatus tracks the lifecycle of a quote request thread.
//
// The stored column is a cached projection: reads must always run the value
// through the state machine's effective-status check so that a passed
// expires_at wins over a stale stored status.
type QuoteRequestStatus string

const (
	QuoteRequestStatusPending   QuoteRequestStatus = "pending"
	QuoteRequestStatusResponded QuoteRequestStatus = "responded"
	QuoteRequestStatusAccepted  QuoteRequestStatus = "accepted"
	QuoteRequestStatusRejected  QuoteRequestStatus = "rejected"
	QuoteRequestStatusExpired   QuoteRequestStatus = "expired"
	QuoteRequestStatusCancelled QuoteRequestStatus = "cancelled"
	QuoteRequestStatusDeleted   QuoteRequestStatus = "deleted"
)

var validQuoteRequestStatuses = []QuoteRequestStatus{
	QuoteRequestStatusPending,
	QuoteRequestStatusResponded,
	QuoteRequestStatusAccepted,
	QuoteRequestStatusRejected,
	QuoteRequestStatusExpired,
	QuoteRequestStatusCancelled,
	QuoteRequestStatusDeleted,
}

// String implements fmt.Stringer.
func (s QuoteRequestStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known QuoteRequestStatus.
func (s QuoteRequestStatus) IsValid() bool {
	for _, candidate := range validQuoteRequestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further negotiation transitions are allowed.
func (s QuoteRequestStatus) IsTerminal() bool {
	switch s {
	case QuoteRequestStatusAccepted,
		QuoteRequestStatusRejected,
		QuoteRequestStatusExpired,
		QuoteRequestStatusCancelled,
		QuoteRequestStatusDeleted:
		return true
	default:
		return false
	}
}

// ParseQuoteRequestStatus converts raw input into a QuoteRequestStatus.
func ParseQuoteRequestStatus(value string) (QuoteRequestStatus, error) {
	for _, candidate := range validQuoteRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quote request status %q", value)
}
