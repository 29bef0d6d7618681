package rfq

import (
	"time"

	"github.com/google/uuid"

	"github.com/dferrantino/quotehub-backend/pkg/db/models"
	"github.com/dferrantino/quotehub-backend/pkg/enums"
	pkgerrors "github.com/dferrantino/quotehub-backend/pkg/errors"
)

// transitions lists the stored-status moves the negotiation allows. Expiry is
// not in the table because it is derived from the clock, not requested by a
// caller; every guard below checks it first.
var transitions = map[enums.QuoteRequestStatus][]enums.QuoteRequestStatus{
	enums.QuoteRequestStatusPending: {
		enums.QuoteRequestStatusResponded,
		enums.QuoteRequestStatusCancelled,
		enums.QuoteRequestStatusExpired,
		enums.QuoteRequestStatusDeleted,
	},
	enums.QuoteRequestStatusResponded: {
		enums.QuoteRequestStatusAccepted,
		enums.QuoteRequestStatusPending,
		enums.QuoteRequestStatusCancelled,
		enums.QuoteRequestStatusExpired,
	},
}

// CanTransition reports whether the stored status may move from one value to
// another.
func CanTransition(from, to enums.QuoteRequestStatus) bool {
	for _, candidate := range transitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// EffectiveStatus is the status every reader and guard must act on. The
// stored column is a cached projection; a passed expires_at always wins over
// a stale stored value. Terminal statuses are immune to expiry.
func EffectiveStatus(req *models.QuoteRequest, now time.Time) enums.QuoteRequestStatus {
	if req.Status.IsTerminal() {
		return req.Status
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(now) {
		return enums.QuoteRequestStatusExpired
	}
	return req.Status
}

// ExpiryObserved reports whether the stored status is stale because the
// request passed its deadline. Mutating operations persist the expired status
// when they see this.
func ExpiryObserved(req *models.QuoteRequest, now time.Time) bool {
	return !req.Status.IsTerminal() &&
		req.ExpiresAt != nil && !req.ExpiresAt.After(now)
}

// CanSubmitResponse guards a supplier bid. Responses are only taken while the
// request is pending; a closed target restricts who may bid.
func CanSubmitResponse(req *models.QuoteRequest, sellerPartyID uuid.UUID, now time.Time) error {
	status := EffectiveStatus(req, now)
	if status == enums.QuoteRequestStatusExpired {
		return pkgerrors.New(pkgerrors.CodeExpired, "quote request expired")
	}
	if status != enums.QuoteRequestStatusPending {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "quote request is not open for responses")
	}
	if sellerPartyID == req.RequestingPartyID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "requesting party cannot respond to its own request")
	}
	if req.TargetPartyID != nil && *req.TargetPartyID != sellerPartyID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "quote request is addressed to another party")
	}
	return nil
}

// CanAcceptResponse guards the single-winner flip. The conditional write and
// the partial unique index remain the backstop for races this check cannot
// see.
func CanAcceptResponse(req *models.QuoteRequest, resp *models.QuoteResponse, actingPartyID uuid.UUID, now time.Time) error {
	if actingPartyID != req.RequestingPartyID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the requesting party may accept a response")
	}
	status := EffectiveStatus(req, now)
	if status == enums.QuoteRequestStatusExpired {
		return pkgerrors.New(pkgerrors.CodeExpired, "quote request expired")
	}
	if status == enums.QuoteRequestStatusAccepted {
		return pkgerrors.New(pkgerrors.CodeConflict, "another response was already accepted")
	}
	if status != enums.QuoteRequestStatusResponded {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "quote request has no acceptable responses")
	}
	if resp.QuoteRequestID != req.ID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "response does not belong to quote request")
	}
	if resp.IsRejected {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "response was already rejected")
	}
	return nil
}

// CanRejectResponse guards closing one response path.
func CanRejectResponse(req *models.QuoteRequest, resp *models.QuoteResponse, actingPartyID uuid.UUID, now time.Time) error {
	if actingPartyID != req.RequestingPartyID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the requesting party may reject a response")
	}
	status := EffectiveStatus(req, now)
	if status == enums.QuoteRequestStatusExpired {
		return pkgerrors.New(pkgerrors.CodeExpired, "quote request expired")
	}
	if status != enums.QuoteRequestStatusResponded {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "quote request has no rejectable responses")
	}
	if resp.QuoteRequestID != req.ID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "response does not belong to quote request")
	}
	if resp.IsAccepted {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "accepted response cannot be rejected")
	}
	if resp.IsRejected {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "response was already rejected")
	}
	return nil
}

// CanSubmitCounter guards a requester-side counter proposal. Counters never
// change the request status.
func CanSubmitCounter(req *models.QuoteRequest, actingPartyID uuid.UUID, now time.Time) error {
	if actingPartyID != req.RequestingPartyID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the requesting party may counter")
	}
	status := EffectiveStatus(req, now)
	if status == enums.QuoteRequestStatusExpired {
		return pkgerrors.New(pkgerrors.CodeExpired, "quote request expired")
	}
	if status != enums.QuoteRequestStatusPending && status != enums.QuoteRequestStatusResponded {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "quote request is closed to counter offers")
	}
	return nil
}

// CanCancel guards the requester withdrawing the whole thread.
func CanCancel(req *models.QuoteRequest, actingPartyID uuid.UUID, now time.Time) error {
	if actingPartyID != req.RequestingPartyID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the requesting party may cancel")
	}
	status := EffectiveStatus(req, now)
	if status == enums.QuoteRequestStatusExpired {
		return pkgerrors.New(pkgerrors.CodeExpired, "quote request expired")
	}
	if status != enums.QuoteRequestStatusPending && status != enums.QuoteRequestStatusResponded {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "quote request cannot be cancelled in current state")
	}
	return nil
}

// CanDelete guards the soft delete. Deletion is only allowed before any
// response exists so the audit trail never loses a heard bid.
func CanDelete(req *models.QuoteRequest, actingPartyID uuid.UUID, responseCount int64, now time.Time) error {
	if actingPartyID != req.RequestingPartyID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the requesting party may delete")
	}
	status := EffectiveStatus(req, now)
	if status == enums.QuoteRequestStatusExpired {
		return pkgerrors.New(pkgerrors.CodeExpired, "quote request expired")
	}
	if status != enums.QuoteRequestStatusPending {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending quote requests can be deleted")
	}
	if responseCount > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "quote request already has responses")
	}
	return nil
}
