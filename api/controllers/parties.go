package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dferrantino/quotehub-backend/api/middleware"
	"github.com/dferrantino/quotehub-backend/api/responses"
	"github.com/dferrantino/quotehub-backend/api/validators"
	"github.com/dferrantino/quotehub-backend/internal/parties"
	"github.com/dferrantino/quotehub-backend/pkg/enums"
	pkgerrors "github.com/dferrantino/quotehub-backend/pkg/errors"
	"github.com/dferrantino/quotehub-backend/pkg/logger"
)

// PartyProfile returns the active party's profile using the party-scoped JWT.
func PartyProfile(svc parties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "party service unavailable"))
			return
		}

		partyID, _, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.GetByID(r.Context(), partyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

type partyUpdateRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1"`
	LegalName   *string `json:"legal_name,omitempty"`
	Description *string `json:"description,omitempty"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty"`
	Country     *string `json:"country,omitempty"`
}

func (r partyUpdateRequest) toInput() parties.UpdatePartyInput {
	return parties.UpdatePartyInput{
		Name:        r.Name,
		LegalName:   r.LegalName,
		Description: r.Description,
		Email:       r.Email,
		Phone:       r.Phone,
		Country:     r.Country,
	}
}

// PartyUpdate adjusts the allowed mutable fields for the active party.
func PartyUpdate(svc parties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "party service unavailable"))
			return
		}

		partyID, userID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload partyUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Update(r.Context(), userID, partyID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// PartyMembers lists the members of the active party.
func PartyMembers(svc parties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "party service unavailable"))
			return
		}

		partyID, userID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		members, err := svc.ListMembers(r.Context(), userID, partyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, members)
	}
}

type addMemberRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Role   string `json:"role" validate:"required"`
}

// PartyAddMember grants a user a role in the active party.
func PartyAddMember(svc parties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "party service unavailable"))
			return
		}

		partyID, userID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body addMemberRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		targetID, err := uuid.Parse(strings.TrimSpace(body.UserID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user_id"))
			return
		}

		role, err := enums.ParseMemberRole(strings.TrimSpace(body.Role))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
			return
		}

		membership, err := svc.AddMember(r.Context(), userID, partyID, targetID, role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, membership)
	}
}

// PartyRemoveMember revokes a user's membership in the active party.
func PartyRemoveMember(svc parties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "party service unavailable"))
			return
		}

		partyID, userID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		targetID, err := pathUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveMember(r.Context(), userID, partyID, targetID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// MyParties lists every party the authenticated user belongs to. It only
// needs the user context, so it works before a party is activated.
func MyParties(svc parties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "party service unavailable"))
			return
		}

		rawUser := middleware.UserIDFromContext(r.Context())
		if rawUser == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}
		userID, err := uuid.Parse(rawUser)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
			return
		}

		memberships, err := svc.ListUserParties(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, memberships)
	}
}
