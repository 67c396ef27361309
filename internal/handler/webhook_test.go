package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/bow-app/intake-bridge-go/internal/errors"
	"github.com/bow-app/intake-bridge-go/internal/model"
	"github.com/bow-app/intake-bridge-go/internal/service"
	"github.com/bow-app/intake-bridge-go/internal/store"
)

type mockProvisioner struct {
	mock.Mock
}

func (m *mockProvisioner) AccountExists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *mockProvisioner) CreateAccount(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *mockProvisioner) CreateUser(ctx context.Context, name, email, password string) (string, error) {
	args := m.Called(ctx, name, email, password)
	return args.String(0), args.Error(1)
}

func (m *mockProvisioner) LinkUserToAccount(ctx context.Context, accountID, userID string) error {
	args := m.Called(ctx, accountID, userID)
	return args.Error(0)
}

type recordingNotifier struct {
	texts []string
}

func (n *recordingNotifier) Notify(_ context.Context, _, text, _ string) {
	n.texts = append(n.texts, text)
}

type webhookFixture struct {
	handler     *WebhookHandler
	provisioner *mockProvisioner
	notifier    *recordingNotifier
	store       *store.MemoryStore
}

func newWebhookFixture() *webhookFixture {
	provisioner := new(mockProvisioner)
	notifier := &recordingNotifier{}
	st := store.NewMemoryStore()
	intake := service.NewIntakeService(st, provisioner, notifier, "s3cret")

	return &webhookFixture{
		handler:     NewWebhookHandler(intake),
		provisioner: provisioner,
		notifier:    notifier,
		store:       st,
	}
}

func (f *webhookFixture) post(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler.Webhook(rec, req)
	return rec
}

func eventBody(conversationID string, contents ...string) string {
	var msgs []string
	for _, c := range contents {
		msgs = append(msgs, `{"Type":"incoming","Content":"`+c+`"}`)
	}
	return `{"Sender":{"Id":"user-1"},"Conversation":{"id":"` + conversationID + `","Message":[` + strings.Join(msgs, ",") + `]}}`
}

func TestWebhook_AccountCreation(t *testing.T) {
	t.Run("creates account for an unseen conversation", func(t *testing.T) {
		f := newWebhookFixture()

		f.provisioner.On("AccountExists", mock.Anything, "Acme").Return(false, nil)
		f.provisioner.On("CreateAccount", mock.Anything, "Acme").Return("acc-1", nil)

		rec := f.post(eventBody("conv-1", "Acme"))

		assert.Equal(t, http.StatusOK, rec.Code)
		f.provisioner.AssertExpectations(t)

		state, err := f.store.Get(context.Background(), "conv-1")
		require.NoError(t, err)
		assert.Equal(t, "acc-1", state.AccountID)

		require.Len(t, f.notifier.texts, 1)
		assert.Contains(t, f.notifier.texts[0], "created successfully")
	})

	t.Run("rejects duplicate account name without creating anything", func(t *testing.T) {
		f := newWebhookFixture()

		f.provisioner.On("AccountExists", mock.Anything, "Acme").Return(true, nil)

		rec := f.post(eventBody("conv-1", "Acme"))

		assert.Equal(t, http.StatusOK, rec.Code)
		f.provisioner.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)

		state, err := f.store.Get(context.Background(), "conv-1")
		require.NoError(t, err)
		assert.Equal(t, model.IntakeStateAwaitingAccountName, state.State)

		require.Len(t, f.notifier.texts, 1)
		assert.Contains(t, f.notifier.texts[0], "already exists")
	})
}

func TestWebhook_UserCreation(t *testing.T) {
	t.Run("second event creates the user and links it", func(t *testing.T) {
		f := newWebhookFixture()

		f.provisioner.On("AccountExists", mock.Anything, "Acme").Return(false, nil)
		f.provisioner.On("CreateAccount", mock.Anything, "Acme").Return("acc-1", nil)
		f.provisioner.On("CreateUser", mock.Anything, "Jane", "", "s3cret").Return("usr-1", nil)
		f.provisioner.On("LinkUserToAccount", mock.Anything, "acc-1", "usr-1").Return(nil)

		first := f.post(eventBody("conv-1", "Acme"))
		require.Equal(t, http.StatusOK, first.Code)

		second := f.post(eventBody("conv-1", "Jane"))
		assert.Equal(t, http.StatusOK, second.Code)
		f.provisioner.AssertExpectations(t)

		state, err := f.store.Get(context.Background(), "conv-1")
		require.NoError(t, err)
		assert.Equal(t, "acc-1", state.AccountID)
		assert.Equal(t, "usr-1", state.UserID)
		assert.Equal(t, model.IntakeStateComplete, state.State)
	})

	t.Run("further events after completion are no-ops", func(t *testing.T) {
		f := newWebhookFixture()

		require.NoError(t, f.store.Update(context.Background(), "conv-1", func(cs *model.ConversationState) {
			cs.AccountID = "acc-1"
			cs.UserID = "usr-1"
			cs.State = model.IntakeStateComplete
		}))

		rec := f.post(eventBody("conv-1", "hello again"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, f.notifier.texts)
		f.provisioner.AssertNotCalled(t, "AccountExists", mock.Anything, mock.Anything)
	})
}

func TestWebhook_Failures(t *testing.T) {
	t.Run("provisioning failure responds 500 with the error message", func(t *testing.T) {
		f := newWebhookFixture()

		f.provisioner.On("AccountExists", mock.Anything, "Acme").Return(false, nil)
		f.provisioner.On("CreateAccount", mock.Anything, "Acme").
			Return("", apperrors.Provisioning("API request failed with status 503: unavailable"))

		rec := f.post(eventBody("conv-1", "Acme"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "API request failed")

		state, err := f.store.Get(context.Background(), "conv-1")
		require.NoError(t, err)
		assert.Equal(t, model.IntakeStateAwaitingAccountName, state.State)
		assert.Empty(t, state.AccountID)
	})

	t.Run("malformed JSON responds 400", func(t *testing.T) {
		f := newWebhookFixture()

		rec := f.post(`{not json`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing conversation id responds 400", func(t *testing.T) {
		f := newWebhookFixture()

		rec := f.post(`{"Sender":{"Id":"user-1"},"Conversation":{"Message":[]}}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Conversation.id")
	})
}

func TestWebhook_MessageFiltering(t *testing.T) {
	t.Run("non-incoming messages do not drive the flow", func(t *testing.T) {
		f := newWebhookFixture()

		body := `{"Sender":{"Id":"user-1"},"Conversation":{"id":"conv-1","Message":[{"Type":"outgoing","Content":"hi"}]}}`
		rec := f.post(body)

		assert.Equal(t, http.StatusOK, rec.Code)
		f.provisioner.AssertNotCalled(t, "AccountExists", mock.Anything, mock.Anything)
	})

	t.Run("messages in one event are processed in order", func(t *testing.T) {
		f := newWebhookFixture()

		f.provisioner.On("AccountExists", mock.Anything, "Acme").Return(false, nil)
		f.provisioner.On("CreateAccount", mock.Anything, "Acme").Return("acc-1", nil)
		f.provisioner.On("CreateUser", mock.Anything, "Jane", "", "s3cret").Return("usr-1", nil)
		f.provisioner.On("LinkUserToAccount", mock.Anything, "acc-1", "usr-1").Return(nil)

		rec := f.post(eventBody("conv-1", "Acme", "Jane"))

		assert.Equal(t, http.StatusOK, rec.Code)
		f.provisioner.AssertExpectations(t)
		assert.Len(t, f.notifier.texts, 2)
	})
}
