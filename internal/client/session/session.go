// Package session persists the signed-in user's token and profile on the device.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/labstack/gommon/log"
)

const (
	keyToken = "auth_token"
	keyUser  = "user_data"
)

// KV is the encrypted key-value area the session lives in.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// User is the cached profile of the signed-in user.
type User struct {
	ID          uint    `json:"id"`
	Email       string  `json:"email"`
	DisplayName *string `json:"displayName"`
	Token       string  `json:"token"`
}

func (u User) complete() bool {
	return u.ID != 0 && u.Email != "" && u.Token != ""
}

// Client owns the persisted session entry. It is the only reader and
// writer of the auth_token and user_data keys.
type Client struct {
	kv KV
}

// NewClient creates a session client over kv.
func NewClient(kv KV) *Client {
	return &Client{kv: kv}
}

func (c *Client) SaveToken(ctx context.Context, token string) error {
	if err := c.kv.Set(ctx, keyToken, token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return nil
}

// GetToken reports false when no readable token is stored.
func (c *Client) GetToken(ctx context.Context) (string, bool) {
	token, err := c.kv.Get(ctx, keyToken)
	if err != nil {
		logReadFailure(keyToken, err)
		return "", false
	}
	if token == "" {
		return "", false
	}
	return token, true
}

func (c *Client) SaveUser(ctx context.Context, user User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	if err := c.kv.Set(ctx, keyUser, string(payload)); err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

// GetUser reports false when no user is stored, the entry does not decode
// or it lacks an id, email or token.
func (c *Client) GetUser(ctx context.Context) (*User, bool) {
	raw, err := c.kv.Get(ctx, keyUser)
	if err != nil {
		logReadFailure(keyUser, err)
		return nil, false
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		log.Warnf("session: discarding undecodable %s: %v", keyUser, err)
		return nil, false
	}
	if !user.complete() {
		log.Warnf("session: discarding incomplete %s", keyUser)
		return nil, false
	}
	return &user, true
}

// ClearAuth deletes both entries. Both deletes are attempted.
func (c *Client) ClearAuth(ctx context.Context) error {
	return errors.Join(
		c.kv.Delete(ctx, keyToken),
		c.kv.Delete(ctx, keyUser),
	)
}

// IsLoggedIn is true iff both a token and a user are present.
func (c *Client) IsLoggedIn(ctx context.Context) bool {
	if _, ok := c.GetToken(ctx); !ok {
		return false
	}
	_, ok := c.GetUser(ctx)
	return ok
}

func logReadFailure(key string, err error) {
	log.Debugf("session: reading %s: %v", key, err)
}
