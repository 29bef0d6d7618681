package controllers

import (
	"net/http"

	"github.com/dferrantino/quotehub-backend/api/middleware"
	"github.com/dferrantino/quotehub-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "private", "status": "ok"}
		if party := middleware.PartyIDFromContext(r.Context()); party != "" {
			payload["party_id"] = party
		}
		responses.WriteSuccess(w, payload)
	}
}


