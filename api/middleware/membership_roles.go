package middleware

import (
	"context"
	"net/http"

	"github.com/dferrantino/quotehub-backend/api/responses"
	"github.com/dferrantino/quotehub-backend/pkg/enums"
	pkgerrors "github.com/dferrantino/quotehub-backend/pkg/errors"
	"github.com/dferrantino/quotehub-backend/pkg/logger"
	"github.com/google/uuid"
)

type MembershipChecker interface {
	UserHasRole(ctx context.Context, userID, partyID uuid.UUID, roles ...enums.MemberRole) (bool, error)
}

// RequirePartyRoles filters requests by party membership roles before executing the handler.
func RequirePartyRoles(checker MembershipChecker, logg *logger.Logger, allowed ...enums.MemberRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if checker == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "membership checker unavailable"))
				return
			}
			if len(allowed) == 0 {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "allowed roles missing"))
				return
			}

			userID := UserIDFromContext(ctx)
			if userID == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
				return
			}

			partyID := PartyIDFromContext(ctx)
			if partyID == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "party context required"))
				return
			}

			uid, err := uuid.Parse(userID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
				return
			}

			sid, err := uuid.Parse(partyID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid party id"))
				return
			}

			ok, err := checker.UserHasRole(ctx, uid, sid, allowed...)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership role"))
				return
			}
			if !ok {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient party role"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
