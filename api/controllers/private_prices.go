package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dferrantino/quotehub-backend/api/responses"
	"github.com/dferrantino/quotehub-backend/api/validators"
	"github.com/dferrantino/quotehub-backend/internal/pricing"
	"github.com/dferrantino/quotehub-backend/pkg/enums"
	pkgerrors "github.com/dferrantino/quotehub-backend/pkg/errors"
	"github.com/dferrantino/quotehub-backend/pkg/logger"
)

type upsertPrivatePriceRequest struct {
	BuyerPartyID    string  `json:"buyer_party_id" validate:"required,uuid"`
	FixedAmount     *string `json:"fixed_amount,omitempty"`
	FixedCurrency   *string `json:"fixed_currency,omitempty"`
	DiscountPercent *string `json:"discount_percent,omitempty"`
}

// UpsertPrivatePrice sets or replaces a buyer-specific price override on a
// product owned by the active supplier party.
func UpsertPrivatePrice(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		partyID, userID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body upsertPrivatePriceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		buyerID, err := uuid.Parse(strings.TrimSpace(body.BuyerPartyID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid buyer_party_id"))
			return
		}

		input := pricing.SetPrivatePriceInput{
			ProductID:          productID,
			CounterpartPartyID: buyerID,
			ActorUserID:        userID,
			ActorPartyID:       partyID,
		}

		if body.FixedAmount != nil {
			amount, err := decimal.NewFromString(strings.TrimSpace(*body.FixedAmount))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid fixed_amount"))
				return
			}
			currency := enums.CurrencyUSD
			if body.FixedCurrency != nil {
				currency, err = enums.ParseCurrency(strings.TrimSpace(*body.FixedCurrency))
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid fixed_currency"))
					return
				}
			}
			input.Fixed = &pricing.FixedPrice{Amount: amount, Currency: currency}
		}

		if input.DiscountPercent, err = parseOptionalDecimal("discount_percent", body.DiscountPercent); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		override, err := svc.SetPrivatePrice(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, override)
	}
}

// RemovePrivatePrice drops the buyer-specific override identified by the
// buyer_party_id query parameter.
func RemovePrivatePrice(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		partyID, _, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		raw := strings.TrimSpace(r.URL.Query().Get("buyer_party_id"))
		if raw == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "buyer_party_id is required"))
			return
		}
		buyerID, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid buyer_party_id"))
			return
		}

		if err := svc.RemovePrivatePrice(r.Context(), pricing.RemovePrivatePriceInput{
			ProductID:          productID,
			CounterpartPartyID: buyerID,
			ActorPartyID:       partyID,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// EffectivePrice resolves the price the active party would pay for a product.
func EffectivePrice(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		partyID, _, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := svc.EffectivePriceFor(r.Context(), productID, partyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, price)
	}
}
