package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/bow-app/intake-bridge-go/internal/errors"
	"github.com/bow-app/intake-bridge-go/internal/service"
)

type WebhookHandler struct {
	intake *service.IntakeService
}

func NewWebhookHandler(intake *service.IntakeService) *WebhookHandler {
	return &WebhookHandler{intake: intake}
}

// Webhook handles one inbound chat event. 200 on full success; any flow
// failure aborts the event and surfaces as a 500 carrying the error's
// message, with whatever state the flow already wrote left in place.
func (h *WebhookHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	var req WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("invalid webhook request")
		writeError(w, apperrors.InvalidInput("request body", "malformed JSON"))
		return
	}

	if req.Conversation.ID == "" {
		writeError(w, apperrors.MissingRequired("Conversation.id"))
		return
	}

	messages := req.Messages()

	log.Info().
		Str("conversationId", req.Conversation.ID).
		Str("senderId", req.Sender.ID).
		Int("messages", len(messages)).
		Msg("received webhook event")

	if err := h.intake.ProcessEvent(r.Context(), req.Sender.ID, req.Conversation.ID, messages); err != nil {
		log.Error().
			Err(err).
			Str("conversationId", req.Conversation.ID).
			Msg("intake flow failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
