package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/bow-app/intake-bridge-go/internal/model"
	"github.com/bow-app/intake-bridge-go/internal/notify"
	"github.com/bow-app/intake-bridge-go/internal/provisioning"
	"github.com/bow-app/intake-bridge-go/internal/store"
)

const (
	msgAccountExists  = "Account already exists. Please provide a new account name."
	msgAccountCreated = "Account created successfully. Please provide your name."
	msgUserCreated    = "User created successfully."
)

// IntakeService drives the two-step intake flow: the first incoming message
// of a conversation names the account, the second names the user. Everything
// after that is ignored.
type IntakeService struct {
	store        store.Store
	provisioner  provisioning.Provisioner
	notifier     notify.Notifier
	userPassword string
	locks        *keyedMutex
}

func NewIntakeService(
	st store.Store,
	provisioner provisioning.Provisioner,
	notifier notify.Notifier,
	userPassword string,
) *IntakeService {
	return &IntakeService{
		store:        st,
		provisioner:  provisioner,
		notifier:     notifier,
		userPassword: userPassword,
		locks:        newKeyedMutex(),
	}
}

// ProcessEvent handles one webhook event for one conversation. Messages are
// processed strictly in array order; a later message observes state mutated
// by an earlier one. The first provisioning failure aborts the whole event
// with no rollback of state already written.
//
// The conversation's lock is held for the duration of the event, so
// concurrent deliveries for the same conversation are serialized.
func (s *IntakeService) ProcessEvent(ctx context.Context, senderID, conversationID string, messages []model.InboundMessage) error {
	unlock := s.locks.Lock(conversationID)
	defer unlock()

	for _, msg := range messages {
		if !msg.IsIncoming() {
			continue
		}

		state, err := s.store.Get(ctx, conversationID)
		if err != nil {
			return err
		}

		switch state.State {
		case model.IntakeStateAwaitingAccountName:
			if err := s.handleAccountCreation(ctx, senderID, conversationID, msg.Content); err != nil {
				return err
			}

		case model.IntakeStateAwaitingUserName:
			if err := s.handleUserCreation(ctx, senderID, conversationID, state, msg.Content); err != nil {
				return err
			}

		case model.IntakeStateComplete:
			log.Debug().
				Str("conversationId", conversationID).
				Msg("intake already complete, ignoring message")
		}
	}

	return nil
}

// handleAccountCreation runs the first intake step. The candidate account
// name is only assessed, never stored: a rejected name leaves the
// conversation awaiting another attempt with nothing recorded.
func (s *IntakeService) handleAccountCreation(ctx context.Context, senderID, conversationID, accountName string) error {
	exists, err := s.provisioner.AccountExists(ctx, accountName)
	if err != nil {
		return err
	}

	if exists {
		s.notifier.Notify(ctx, senderID, msgAccountExists, conversationID)
		return nil
	}

	accountID, err := s.provisioner.CreateAccount(ctx, accountName)
	if err != nil {
		return err
	}

	if err := s.store.Update(ctx, conversationID, func(cs *model.ConversationState) {
		cs.AccountID = accountID
		cs.State = model.IntakeStateAwaitingUserName
	}); err != nil {
		return err
	}

	log.Info().
		Str("conversationId", conversationID).
		Str("accountId", accountID).
		Msg("account created")

	s.notifier.Notify(ctx, senderID, msgAccountCreated, conversationID)
	return nil
}

// handleUserCreation runs the second intake step. The user name is recorded
// and the conversation marked complete before any remote call, so a failure
// partway through leaves the flow terminal with partial state — there is no
// rollback and no retry path for this conversation.
func (s *IntakeService) handleUserCreation(ctx context.Context, senderID, conversationID string, state *model.ConversationState, userName string) error {
	if err := s.store.Update(ctx, conversationID, func(cs *model.ConversationState) {
		cs.UserName = userName
		cs.State = model.IntakeStateComplete
	}); err != nil {
		return err
	}

	// state.Email is never written by any step; the user is created with an
	// empty email until product decides whether a collection step is missing.
	userID, err := s.provisioner.CreateUser(ctx, userName, state.Email, s.userPassword)
	if err != nil {
		return err
	}

	if err := s.store.Update(ctx, conversationID, func(cs *model.ConversationState) {
		cs.UserID = userID
	}); err != nil {
		return err
	}

	if err := s.provisioner.LinkUserToAccount(ctx, state.AccountID, userID); err != nil {
		return err
	}

	log.Info().
		Str("conversationId", conversationID).
		Str("accountId", state.AccountID).
		Str("userId", userID).
		Msg("user created and linked")

	s.notifier.Notify(ctx, senderID, msgUserCreated, conversationID)
	return nil
}
