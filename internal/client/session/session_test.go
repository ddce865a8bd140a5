package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexusaquarium/internal/client/securestore"
)

// memKV is an in-memory KV with optional injected failures.
type memKV struct {
	data    map[string]string
	getErr  error
	delErrs map[string]error
}

func newMemKV() *memKV {
	return &memKV{data: map[string]string{}, delErrs: map[string]error{}}
}

func (m *memKV) Get(_ context.Context, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return "", securestore.ErrNotFound
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	if err := m.delErrs[key]; err != nil {
		return err
	}
	delete(m.data, key)
	return nil
}

func strPtr(s string) *string { return &s }

func TestClient_UserRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewClient(newMemKV())

	tests := []struct {
		name string
		user User
	}{
		{name: "with display name", user: User{ID: 1, Email: "a@x.com", DisplayName: strPtr("Nemo"), Token: "tok"}},
		{name: "without display name", user: User{ID: 2, Email: "b@x.com", Token: "tok2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, c.SaveUser(ctx, tt.user))
			got, ok := c.GetUser(ctx)
			require.True(t, ok)
			assert.Equal(t, tt.user, *got)
		})
	}
}

func TestClient_IsLoggedIn(t *testing.T) {
	ctx := context.Background()
	user := User{ID: 1, Email: "a@x.com", Token: "tok"}

	tests := []struct {
		name     string
		steps    func(c *Client)
		expected bool
	}{
		{name: "empty", steps: func(c *Client) {}, expected: false},
		{name: "token only", steps: func(c *Client) { _ = c.SaveToken(ctx, "tok") }, expected: false},
		{name: "user only", steps: func(c *Client) { _ = c.SaveUser(ctx, user) }, expected: false},
		{
			name: "token and user",
			steps: func(c *Client) {
				_ = c.SaveToken(ctx, "tok")
				_ = c.SaveUser(ctx, user)
			},
			expected: true,
		},
		{
			name: "cleared",
			steps: func(c *Client) {
				_ = c.SaveToken(ctx, "tok")
				_ = c.SaveUser(ctx, user)
				_ = c.ClearAuth(ctx)
			},
			expected: false,
		},
		{
			name: "saved again after clear",
			steps: func(c *Client) {
				_ = c.SaveToken(ctx, "tok")
				_ = c.SaveUser(ctx, user)
				_ = c.ClearAuth(ctx)
				_ = c.SaveToken(ctx, "tok2")
				_ = c.SaveUser(ctx, user)
			},
			expected: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(newMemKV())
			tt.steps(c)
			assert.Equal(t, tt.expected, c.IsLoggedIn(ctx))
		})
	}
}

func TestClient_CorruptEntriesReadAsAbsent(t *testing.T) {
	ctx := context.Background()

	users := []struct {
		name string
		raw  string
	}{
		{name: "undecodable", raw: "{not json"},
		{name: "null", raw: "null"},
		{name: "empty object", raw: "{}"},
		{name: "missing token", raw: `{"id":1,"email":"a@x.com"}`},
		{name: "missing email", raw: `{"id":1,"token":"tok"}`},
		{name: "zero id", raw: `{"id":0,"email":"a@x.com","token":"tok"}`},
		{name: "wrong type", raw: `[1,2,3]`},
	}
	for _, tt := range users {
		t.Run("user "+tt.name, func(t *testing.T) {
			kv := newMemKV()
			kv.data[keyToken] = "tok"
			kv.data[keyUser] = tt.raw
			c := NewClient(kv)

			_, ok := c.GetUser(ctx)
			assert.False(t, ok)
			assert.False(t, c.IsLoggedIn(ctx))
		})
	}

	t.Run("store read failure", func(t *testing.T) {
		kv := newMemKV()
		kv.data[keyToken] = "tok"
		kv.getErr = securestore.ErrCorrupt
		c := NewClient(kv)

		_, ok := c.GetToken(ctx)
		assert.False(t, ok)
		_, ok = c.GetUser(ctx)
		assert.False(t, ok)
	})
}

func TestClient_ClearAuthAttemptsBoth(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	c := NewClient(kv)
	require.NoError(t, c.SaveToken(ctx, "tok"))
	require.NoError(t, c.SaveUser(ctx, User{ID: 1, Email: "a@x.com", Token: "tok"}))

	boom := errors.New("disk full")
	kv.delErrs[keyToken] = boom

	err := c.ClearAuth(ctx)
	assert.ErrorIs(t, err, boom)
	_, ok := c.GetUser(ctx)
	assert.False(t, ok, "user entry is removed even though the token delete failed")
}

func TestClient_OverSecureStore(t *testing.T) {
	ctx := context.Background()
	store, err := securestore.Open(ctx, "file:session-test?mode=memory&cache=shared", []byte("secret"))
	require.NoError(t, err)
	defer store.Close()

	c := NewClient(store)
	assert.False(t, c.IsLoggedIn(ctx))

	require.NoError(t, c.SaveToken(ctx, "tok"))
	require.NoError(t, c.SaveUser(ctx, User{ID: 9, Email: "a@x.com", Token: "tok"}))
	assert.True(t, c.IsLoggedIn(ctx))

	require.NoError(t, c.ClearAuth(ctx))
	assert.False(t, c.IsLoggedIn(ctx))
}
