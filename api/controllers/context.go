package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dferrantino/quotehub-backend/api/middleware"
	pkgerrors "github.com/dferrantino/quotehub-backend/pkg/errors"
)

// actorFromContext resolves the authenticated user and active party seeded by
// the auth middleware. Every party-scoped handler goes through this.
func actorFromContext(r *http.Request) (partyID, userID uuid.UUID, role string, err error) {
	rawParty := middleware.PartyIDFromContext(r.Context())
	if rawParty == "" {
		return uuid.Nil, uuid.Nil, "", pkgerrors.New(pkgerrors.CodeForbidden, "party context missing")
	}

	rawUser := middleware.UserIDFromContext(r.Context())
	if rawUser == "" {
		return uuid.Nil, uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}

	partyID, err = uuid.Parse(rawParty)
	if err != nil {
		return uuid.Nil, uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid party id")
	}

	userID, err = uuid.Parse(rawUser)
	if err != nil {
		return uuid.Nil, uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}

	return partyID, userID, middleware.RoleFromContext(r.Context()), nil
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+param)
	}
	return id, nil
}
