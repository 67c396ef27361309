package model

import (
	"time"
)

// IntakeState is the explicit per-conversation intake step. The flow advances
// awaiting_account_name -> awaiting_user_name -> complete and never goes back.
type IntakeState string

const (
	IntakeStateAwaitingAccountName IntakeState = "awaiting_account_name"
	IntakeStateAwaitingUserName    IntakeState = "awaiting_user_name"
	IntakeStateComplete            IntakeState = "complete"
)

// ConversationState is the accumulated intake progress for one conversation.
// Entries live for the whole process (or for the life of the backing redis
// key); nothing evicts them.
type ConversationState struct {
	ConversationID string      `json:"conversationId"`
	State          IntakeState `json:"state"`
	AccountID      string      `json:"accountId,omitempty"`
	UserName       string      `json:"userName,omitempty"`
	UserID         string      `json:"userId,omitempty"`
	// Email is read when creating the user but no intake step ever writes it.
	// Kept to preserve the observable request shape; pending product
	// clarification on whether an email-collection step was meant to exist.
	Email       string    `json:"email,omitempty"`
	FirstSeenAt time.Time `json:"firstSeenAt"`
	LastSeenAt  time.Time `json:"lastSeenAt"`
}

// NewConversationState returns the empty state a conversation starts in.
func NewConversationState(conversationID string) *ConversationState {
	now := time.Now().UTC()
	return &ConversationState{
		ConversationID: conversationID,
		State:          IntakeStateAwaitingAccountName,
		FirstSeenAt:    now,
		LastSeenAt:     now,
	}
}
