package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/farmgate/whatsapp-engine/internal/errors"
	"github.com/farmgate/whatsapp-engine/internal/httputil"
	"github.com/farmgate/whatsapp-engine/internal/whatsapp"
)

type payloadDispatcher interface {
	Dispatch(ctx context.Context, payload *whatsapp.WebhookPayload) (string, error)
}

// WebhookHandler receives Cloud API deliveries. Signature checks run in
// middleware before Receive.
type WebhookHandler struct {
	dispatcher  payloadDispatcher
	verifyToken string
}

func NewWebhookHandler(dispatcher payloadDispatcher, verifyToken string) *WebhookHandler {
	return &WebhookHandler{dispatcher: dispatcher, verifyToken: verifyToken}
}

// Verify answers the subscription handshake by echoing hub.challenge.
func (h *WebhookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") != "subscribe" || h.verifyToken == "" || q.Get("hub.verify_token") != h.verifyToken {
		log.Warn().Str("mode", q.Get("hub.mode")).Msg("webhook verification rejected")
		httputil.WriteError(w, apperrors.Forbidden("Verification failed"))
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(q.Get("hub.challenge")))
}

// Receive dispatches one delivery. Processing failures still return 200:
// the inbound message is already claimed, so a provider retry would be
// dropped as a duplicate anyway.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var payload whatsapp.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Warn().Err(err).Msg("invalid webhook payload")
		httputil.WriteError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	result, err := h.dispatcher.Dispatch(r.Context(), &payload)
	if err != nil {
		log.Error().Err(err).Str("result", result).Msg("webhook processing failed")
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": result})
}
