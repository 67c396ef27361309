package model

// MessageType classifies a message within a webhook event. Only incoming
// messages drive the intake flow; everything else is passed over.
type MessageType string

const (
	MessageTypeIncoming MessageType = "incoming"
	MessageTypeOutgoing MessageType = "outgoing"
)

// InboundMessage is one element of a webhook event's ordered message list.
// Content is the raw field value for whatever intake step the conversation
// is currently on.
type InboundMessage struct {
	Type    MessageType
	Content string
}

func (m InboundMessage) IsIncoming() bool {
	return m.Type == MessageTypeIncoming
}
