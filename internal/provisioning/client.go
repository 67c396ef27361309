package provisioning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/bow-app/intake-bridge-go/internal/errors"
)

const tokenHeader = "api_access_token"

// Provisioner is the outbound contract against the remote account/user
// provisioning API. One attempt per call, no retries; cancellation comes from
// the request context and the client timeout.
type Provisioner interface {
	AccountExists(ctx context.Context, name string) (bool, error)
	CreateAccount(ctx context.Context, name string) (string, error)
	CreateUser(ctx context.Context, name, email, password string) (string, error)
	LinkUserToAccount(ctx context.Context, accountID, userID string) error
}

type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// AccountExists queries accounts filtered by name. An empty result collection
// is a successful "false", never an error.
func (c *Client) AccountExists(ctx context.Context, name string) (bool, error) {
	endpoint := fmt.Sprintf("%s/accounts?name=%s", c.baseURL, url.QueryEscape(name))

	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}

	var accounts []json.RawMessage
	if err := json.Unmarshal(body, &accounts); err != nil {
		return false, apperrors.ProvisioningWrap("decode accounts response", err)
	}

	return len(accounts) > 0, nil
}

// CreateAccount posts a new account with fixed defaults (one agent slot, one
// inbox slot) and returns the assigned account identifier.
func (c *Client) CreateAccount(ctx context.Context, name string) (string, error) {
	body, err := c.do(ctx, http.MethodPost, c.baseURL+"/account", map[string]any{
		"name":    name,
		"agents":  1,
		"Inboxes": 1,
	})
	if err != nil {
		return "", err
	}

	var resp struct {
		ID string `json:"Id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", apperrors.ProvisioningWrap("decode account response", err)
	}

	return resp.ID, nil
}

// CreateUser posts a new user and returns the assigned user identifier.
func (c *Client) CreateUser(ctx context.Context, name, email, password string) (string, error) {
	body, err := c.do(ctx, http.MethodPost, c.baseURL+"/users", map[string]any{
		"name":     name,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return "", err
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", apperrors.ProvisioningWrap("decode user response", err)
	}

	return resp.ID, nil
}

// LinkUserToAccount posts a membership record with the fixed agent role.
func (c *Client) LinkUserToAccount(ctx context.Context, accountID, userID string) error {
	endpoint := fmt.Sprintf("%s/accounts/%s/account_users", c.baseURL, url.PathEscape(accountID))

	_, err := c.do(ctx, http.MethodPost, endpoint, map[string]any{
		"user_id": userID,
		"role":    "agent",
	})
	return err
}

// do issues one request and normalizes every failure mode (transport error,
// non-2xx status) into a provisioning error carrying the underlying message.
func (c *Client) do(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, apperrors.ProvisioningWrap("marshal request", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, apperrors.ProvisioningWrap("create request", err)
	}
	req.Header.Set(tokenHeader, c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()

	resp, err := c.client.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		log.Error().
			Err(err).
			Str("method", method).
			Str("url", endpoint).
			Dur("elapsed", elapsed).
			Msg("provisioning request error")
		return nil, apperrors.ProvisioningWrap("API request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.ProvisioningWrap("read response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().
			Str("method", method).
			Str("url", endpoint).
			Int("status", resp.StatusCode).
			Dur("elapsed", elapsed).
			Msg("provisioning request rejected")
		return nil, apperrors.Provisioning(
			fmt.Sprintf("API request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	log.Debug().
		Str("method", method).
		Str("url", endpoint).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("provisioning request successful")

	return body, nil
}
