package handler

import "github.com/bow-app/intake-bridge-go/internal/model"

// Webhook Request Types
//
// Field spellings follow the chat platform's payload exactly, mixed casing
// included: Sender.Id, Conversation.id, Message[].Type/.Content.

type WebhookRequest struct {
	Sender       WebhookSender       `json:"Sender"`
	Conversation WebhookConversation `json:"Conversation"`
}

type WebhookSender struct {
	ID string `json:"Id"`
}

type WebhookConversation struct {
	ID      string           `json:"id"`
	Message []WebhookMessage `json:"Message"`
}

type WebhookMessage struct {
	Type    string `json:"Type"`
	Content string `json:"Content"`
}

// Messages converts the wire payload into the ordered domain message list.
func (r *WebhookRequest) Messages() []model.InboundMessage {
	msgs := make([]model.InboundMessage, 0, len(r.Conversation.Message))
	for _, m := range r.Conversation.Message {
		msgs = append(msgs, model.InboundMessage{
			Type:    model.MessageType(m.Type),
			Content: m.Content,
		})
	}
	return msgs
}
