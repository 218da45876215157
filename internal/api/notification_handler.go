package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sungwon/notification-service/internal/logger"
)

// ConfirmationMessage is the response body of a successful send. It confirms
// the transport accepted the message, not that it was delivered.
const ConfirmationMessage = "Notification sent!"

// Identity headers set by the upstream gateway. They are logged only.
const (
	HeaderUserID     = "X-User-ID"
	HeaderUserRoles  = "X-User-Roles"
	HeaderUserScopes = "X-User-Scopes"
)

// Dispatcher sends one notification synchronously.
type Dispatcher interface {
	SendNotification(ctx context.Context, to, subject, content string) error
}

// NotificationRequest is the body of POST /api/notifications/send.
// Fields are not validated.
type NotificationRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Content string `json:"content"`
}

// SendNotificationHandler handles POST /api/notifications/send.
func SendNotificationHandler(d Dispatcher, logIdentityHeaders bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req NotificationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Warn().Err(err).Msg("invalid notification request body")
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if logIdentityHeaders {
			log.Info().
				Str("user_id", r.Header.Get(HeaderUserID)).
				Str("user_roles", r.Header.Get(HeaderUserRoles)).
				Str("user_scopes", r.Header.Get(HeaderUserScopes)).
				Msg("user is sending a notification")
		}

		if err := d.SendNotification(r.Context(), req.To, req.Subject, req.Content); err != nil {
			log.Error().Err(err).Msg("send notification failed")
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		respondText(w, http.StatusOK, ConfirmationMessage)
	}
}
