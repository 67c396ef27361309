package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const callbackTimeout = 5 * time.Second

// CallbackNotifier POSTs the message to a configured messaging-channel
// endpoint. Failures are logged and swallowed; the intake flow must not stall
// on the side channel.
type CallbackNotifier struct {
	url    string
	client *http.Client
}

func NewCallbackNotifier(url string) *CallbackNotifier {
	return &CallbackNotifier{
		url: url,
		client: &http.Client{
			Timeout: callbackTimeout,
		},
	}
}

func (n *CallbackNotifier) Notify(ctx context.Context, userID, text, conversationID string) {
	payload, err := json.Marshal(map[string]string{
		"userId":         userID,
		"text":           text,
		"conversationId": conversationID,
	})
	if err != nil {
		log.Error().Err(err).Msg("marshal notification payload")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		log.Error().Err(err).Str("url", n.url).Msg("create notification request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("url", n.url).Msg("notification delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().
			Str("url", n.url).
			Int("status", resp.StatusCode).
			Msg("notification delivery rejected")
		return
	}

	log.Debug().
		Str("userId", userID).
		Str("conversationId", conversationID).
		Msg("notification delivered")
}
