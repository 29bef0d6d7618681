package controllers

import (
	"net/http"

	"github.com/dferrantino/quotehub-backend/api/responses"
	"github.com/dferrantino/quotehub-backend/api/validators"
	"github.com/dferrantino/quotehub-backend/internal/auth"
	"github.com/dferrantino/quotehub-backend/internal/users"
	pkgerrors "github.com/dferrantino/quotehub-backend/pkg/errors"
	"github.com/dferrantino/quotehub-backend/pkg/logger"
)

// AuthRegister handles onboarding new users with their first party.
func AuthRegister(reg auth.RegisterService, svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reg == nil || svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := reg.Register(r.Context(), body); err != nil {
			if logg != nil {
				logg.Error(r.Context(), "register failed", err)
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), auth.LoginRequest{Email: body.Email, Password: body.Password})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("X-QH-Token", result.AccessToken)
		responses.WriteSuccess(w, map[string]*users.UserDTO{
			"user": result.User,
		})
	}
}
