package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dferrantino/quotehub-backend/api/responses"
	"github.com/dferrantino/quotehub-backend/api/validators"
	"github.com/dferrantino/quotehub-backend/internal/rfq"
	"github.com/dferrantino/quotehub-backend/pkg/enums"
	pkgerrors "github.com/dferrantino/quotehub-backend/pkg/errors"
	"github.com/dferrantino/quotehub-backend/pkg/logger"
)

type submitRFQRequest struct {
	TargetPartyID  *string    `json:"target_party_id,omitempty" validate:"omitempty,uuid"`
	ProductID      *string    `json:"product_id,omitempty" validate:"omitempty,uuid"`
	Subject        *string    `json:"subject,omitempty" validate:"omitempty,max=200"`
	Description    *string    `json:"description,omitempty"`
	Category       *string    `json:"category,omitempty"`
	Quantity       *string    `json:"quantity,omitempty"`
	Unit           *string    `json:"unit,omitempty"`
	TargetPrice    *string    `json:"target_price,omitempty"`
	TargetCurrency *string    `json:"target_currency,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

func parseOptionalDecimal(field string, raw *string) (*decimal.Decimal, error) {
	if raw == nil {
		return nil, nil
	}
	value, err := decimal.NewFromString(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return &value, nil
}

func parseOptionalUUID(field string, raw *string) (*uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	value, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return &value, nil
}

func parseOptionalCurrency(field string, raw *string) (*enums.Currency, error) {
	if raw == nil {
		return nil, nil
	}
	value, err := enums.ParseCurrency(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return &value, nil
}

// SubmitRFQ opens a new quote request on behalf of the active party.
func SubmitRFQ(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rfq service unavailable"))
			return
		}

		partyID, userID, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body submitRFQRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := rfq.SubmitRequestInput{
			RequestingPartyID: partyID,
			ActorUserID:       userID,
			ActorRole:         role,
			Subject:           body.Subject,
			Description:       body.Description,
			Category:          body.Category,
			Unit:              body.Unit,
			ExpiresAt:         body.ExpiresAt,
		}

		if input.TargetPartyID, err = parseOptionalUUID("target_party_id", body.TargetPartyID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.ProductID, err = parseOptionalUUID("product_id", body.ProductID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.Quantity, err = parseOptionalDecimal("quantity", body.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.TargetPrice, err = parseOptionalDecimal("target_price", body.TargetPrice); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.TargetCurrency, err = parseOptionalCurrency("target_currency", body.TargetCurrency); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.SubmitRequest(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, request)
	}
}

// ListRFQs returns the paginated quote requests visible to the active party.
func ListRFQs(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rfq service unavailable"))
			return
		}

		partyID, _, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := rfq.ListForPartyInput{PartyID: partyID}

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseQuoteRequestStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			input.Status = &status
		}

		if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
			value, err := strconv.Atoi(limitStr)
			if err != nil || value <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			input.Pagination.Limit = value
		}
		input.Pagination.Cursor = strings.TrimSpace(r.URL.Query().Get("cursor"))

		page, err := svc.ListForParty(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// RFQDetail returns the full thread with responses ranked cheapest first.
func RFQDetail(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rfq service unavailable"))
			return
		}

		partyID, _, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestID, err := pathUUID(r, "rfqId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetRequest(r.Context(), requestID, partyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// DeleteRFQ soft-deletes a request that never received a response.
func DeleteRFQ(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rfq service unavailable"))
			return
		}

		partyID, userID, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestID, err := pathUUID(r, "rfqId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), rfq.DeleteInput{
			RequestID:     requestID,
			ActingPartyID: partyID,
			ActorUserID:   userID,
			ActorRole:     role,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type submitQuoteResponseRequest struct {
	Price      string     `json:"price" validate:"required"`
	Currency   string     `json:"currency" validate:"required"`
	Quantity   *string    `json:"quantity,omitempty"`
	Unit       *string    `json:"unit,omitempty"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`
	Message    *string    `json:"message,omitempty"`
	Terms      *string    `json:"terms,omitempty"`
}

// SubmitQuoteResponse records a supplier's priced bid on an open request.
func SubmitQuoteResponse(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rfq service unavailable"))
			return
		}

		partyID, userID, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestID, err := pathUUID(r, "rfqId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body submitQuoteResponseRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := decimal.NewFromString(strings.TrimSpace(body.Price))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price"))
			return
		}
		currency, err := enums.ParseCurrency(strings.TrimSpace(body.Currency))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency"))
			return
		}

		input := rfq.SubmitResponseInput{
			RequestID:         requestID,
			RespondingPartyID: partyID,
			ActorUserID:       userID,
			ActorRole:         role,
			Price:             price,
			Currency:          currency,
			Unit:              body.Unit,
			ValidUntil:        body.ValidUntil,
			Message:           body.Message,
			Terms:             body.Terms,
		}
		if input.Quantity, err = parseOptionalDecimal("quantity", body.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		response, err := svc.SubmitResponse(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, response)
	}
}

// AcceptQuoteResponse selects the winning bid and closes the thread.
func AcceptQuoteResponse(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rfq service unavailable"))
			return
		}

		partyID, userID, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestID, err := pathUUID(r, "rfqId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responseID, err := pathUUID(r, "responseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.AcceptResponse(r.Context(), rfq.AcceptResponseInput{
			RequestID:     requestID,
			ResponseID:    responseID,
			ActingPartyID: partyID,
			ActorUserID:   userID,
			ActorRole:     role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

type rejectQuoteResponseRequest struct {
	Comment *string `json:"comment,omitempty"`
}

// RejectQuoteResponse closes one response path without ending the thread.
func RejectQuoteResponse(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rfq service unavailable"))
			return
		}

		partyID, userID, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestID, err := pathUUID(r, "rfqId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responseID, err := pathUUID(r, "responseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body rejectQuoteResponseRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		request, err := svc.RejectResponse(r.Context(), rfq.RejectResponseInput{
			RequestID:     requestID,
			ResponseID:    responseID,
			ActingPartyID: partyID,
			ActorUserID:   userID,
			ActorRole:     role,
			Comment:       body.Comment,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

type submitCounterOfferRequest struct {
	ResponseID      *string `json:"response_id,omitempty" validate:"omitempty,uuid"`
	CounterPrice    string  `json:"counter_price" validate:"required"`
	CounterCurrency string  `json:"counter_currency" validate:"required"`
	Message         *string `json:"message,omitempty"`
}

// SubmitCounterOffer proposes a new price on the request or one of its
// responses.
func SubmitCounterOffer(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rfq service unavailable"))
			return
		}

		partyID, userID, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestID, err := pathUUID(r, "rfqId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body submitCounterOfferRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := decimal.NewFromString(strings.TrimSpace(body.CounterPrice))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid counter_price"))
			return
		}
		currency, err := enums.ParseCurrency(strings.TrimSpace(body.CounterCurrency))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid counter_currency"))
			return
		}

		input := rfq.SubmitCounterInput{
			RequestID:       requestID,
			ActingPartyID:   partyID,
			ActorUserID:     userID,
			ActorRole:       role,
			CounterPrice:    price,
			CounterCurrency: currency,
			Message:         body.Message,
		}
		if input.ResponseID, err = parseOptionalUUID("response_id", body.ResponseID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		counter, err := svc.SubmitCounter(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, counter)
	}
}

type cancelRFQRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// CancelRFQ withdraws the whole thread on behalf of the requesting party.
func CancelRFQ(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rfq service unavailable"))
			return
		}

		partyID, userID, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestID, err := pathUUID(r, "rfqId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body cancelRFQRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		request, err := svc.Cancel(r.Context(), rfq.CancelInput{
			RequestID:     requestID,
			ActingPartyID: partyID,
			ActorUserID:   userID,
			ActorRole:     role,
			Reason:        body.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}
