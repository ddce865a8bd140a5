// Package api is a typed client for the Nexus Aquarium HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// ErrTransient wraps transport failures: the server could not be reached or
// the connection broke before a response arrived.
var ErrTransient = errors.New("api: server unreachable")

// Error is a non-2xx response.
type Error struct {
	Status  int
	Message string
	Code    string
}

func (e *Error) Error() string {
	return e.Message
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Profile mirrors GET /users/me.
type Profile struct {
	ID          uint    `json:"id"`
	Email       string  `json:"email"`
	DisplayName *string `json:"displayName"`
}

// Preferences mirrors /users/me/preferences.
type Preferences struct {
	EnableTaskReminders   bool `json:"enableTaskReminders"`
	EnableParameterAlerts bool `json:"enableParameterAlerts"`
}

// PreferencesUpdate leaves nil fields unchanged on the server.
type PreferencesUpdate struct {
	EnableTaskReminders   *bool `json:"enableTaskReminders,omitempty"`
	EnableParameterAlerts *bool `json:"enableParameterAlerts,omitempty"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Client calls the API rooted at baseURL, e.g. http://localhost:8080/api/v1.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client. A zero timeout selects DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Register calls POST /auth/register and returns the issued token.
func (c *Client) Register(ctx context.Context, email, password string, displayName *string) (string, error) {
	body := map[string]interface{}{"email": email, "password": password}
	if displayName != nil {
		body["displayName"] = *displayName
	}
	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", body, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Login calls POST /auth/login and returns the issued token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp tokenResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Me calls GET /users/me.
func (c *Client) Me(ctx context.Context, token string) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodGet, "/users/me", token, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateMe calls PUT /users/me.
func (c *Client) UpdateMe(ctx context.Context, token, displayName string) (*Profile, error) {
	var p Profile
	body := map[string]string{"displayName": displayName}
	if err := c.do(ctx, http.MethodPut, "/users/me", token, body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// RegisterDevice calls POST /users/me/devices.
func (c *Client) RegisterDevice(ctx context.Context, token, deviceToken, deviceOS string) error {
	body := map[string]string{"deviceToken": deviceToken, "deviceOs": deviceOS}
	return c.do(ctx, http.MethodPost, "/users/me/devices", token, body, nil)
}

// Preferences calls GET /users/me/preferences.
func (c *Client) Preferences(ctx context.Context, token string) (*Preferences, error) {
	var p Preferences
	if err := c.do(ctx, http.MethodGet, "/users/me/preferences", token, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePreferences calls PUT /users/me/preferences.
func (c *Client) UpdatePreferences(ctx context.Context, token string, update PreferencesUpdate) (*Preferences, error) {
	var p Preferences
	if err := c.do(ctx, http.MethodPut, "/users/me/preferences", token, update, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s %s: encode: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrTransient, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}

// decodeError accepts both the {error, code} body of the API and echo's
// {message} body.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Error   string `json:"error"`
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(raw, &body)

	msg := body.Error
	if msg == "" {
		msg = body.Message
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &Error{Status: resp.StatusCode, Message: msg, Code: body.Code}
}
