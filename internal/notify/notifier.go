// Package notify delivers human-readable intake status messages back to the
// originating chat user. Delivery is best-effort: a Notifier never fails and
// the flow never waits on an acknowledgement.
package notify

import (
	"context"

	"github.com/rs/zerolog/log"
)

type Notifier interface {
	Notify(ctx context.Context, userID, text, conversationID string)
}

// LogNotifier writes the message to the structured log instead of a real
// messaging channel. It is the default sink.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(_ context.Context, userID, text, conversationID string) {
	log.Info().
		Str("userId", userID).
		Str("conversationId", conversationID).
		Str("text", text).
		Msg("message sent to user")
}
