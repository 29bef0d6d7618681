package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dferrantino/quotehub-backend/api/responses"
	"github.com/dferrantino/quotehub-backend/internal/notifications"
	pkgerrors "github.com/dferrantino/quotehub-backend/pkg/errors"
	"github.com/dferrantino/quotehub-backend/pkg/logger"
)

// ListNotifications returns paginated notifications for the active party.
func ListNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		partyID, _, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := notifications.ListParams{PartyID: partyID}

		if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
			value, err := strconv.Atoi(limitStr)
			if err != nil || value <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			params.Limit = value
		}

		if cursor := strings.TrimSpace(r.URL.Query().Get("cursor")); cursor != "" {
			params.Cursor = cursor
		}

		if unread := strings.TrimSpace(r.URL.Query().Get("unreadOnly")); unread != "" {
			value, err := strconv.ParseBool(unread)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unreadOnly value"))
				return
			}
			params.UnreadOnly = value
		}

		resp, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// MarkNotificationRead marks one notification as read for the active party.
func MarkNotificationRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		partyID, _, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notificationID, err := pathUUID(r, "notificationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.MarkRead(r.Context(), partyID, notificationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "read"})
	}
}

// MarkAllNotificationsRead marks every unread notification for the party.
func MarkAllNotificationsRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		partyID, _, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.MarkAllRead(r.Context(), partyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"updated": updated})
	}
}
