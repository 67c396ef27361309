// Package store holds per-conversation intake state behind an injectable
// interface so the in-memory default can be swapped for a shared backend
// without touching the intake flow.
package store

import (
	"context"

	"github.com/bow-app/intake-bridge-go/internal/model"
)

// Store is the conversation state store contract. Get has get-or-create
// semantics: an unseen conversation id yields a fresh empty state. Update
// applies an in-place mutation to the stored entry. Neither operation evicts;
// entries live until the backing storage goes away.
//
// Implementations are safe for concurrent use of distinct conversation ids,
// but callers sequencing a read-modify-write across Get and Update for one
// conversation must hold that conversation's lock themselves (the intake
// service does this with a keyed mutex).
type Store interface {
	Get(ctx context.Context, conversationID string) (*model.ConversationState, error)
	Update(ctx context.Context, conversationID string, mutate func(*model.ConversationState)) error
}
