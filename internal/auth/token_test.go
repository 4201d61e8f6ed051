package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansolan/armclient/internal/auth"
)

func TestToken_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		token    *auth.Token
		expected bool
	}{
		{
			name:     "nil token",
			token:    nil,
			expected: false,
		},
		{
			name:     "empty access token",
			token:    &auth.Token{},
			expected: false,
		},
		{
			name: "no expiry",
			token: &auth.Token{
				AccessToken: "token",
			},
			expected: true,
		},
		{
			name: "valid with future expiry",
			token: &auth.Token{
				AccessToken: "token",
				ExpiresAt:   time.Now().Add(1 * time.Hour),
			},
			expected: true,
		},
		{
			name: "expired",
			token: &auth.Token{
				AccessToken: "token",
				ExpiresAt:   time.Now().Add(-1 * time.Hour),
			},
			expected: false,
		},
		{
			name: "expiring within the buffer",
			token: &auth.Token{
				AccessToken: "token",
				ExpiresAt:   time.Now().Add(10 * time.Second),
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.token.Valid())
		})
	}
}

func TestTokenStore(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore()
	assert.Nil(t, store.Get())

	token := &auth.Token{AccessToken: "token-1"}
	store.Set(token)
	assert.Equal(t, token, store.Get())

	store.Clear()
	assert.Nil(t, store.Get())
}

func TestStaticTokenManager(t *testing.T) {
	t.Parallel()

	manager := auth.NewStaticTokenManager("static-token")
	ctx := context.Background()

	token, err := manager.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "static-token", token)

	// Refresh is a no-op and keeps the token.
	require.NoError(t, manager.RefreshToken(ctx))

	token, err = manager.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "static-token", token)

	manager.SetToken("replacement", time.Now().Add(time.Hour))

	token, err = manager.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "replacement", token)
}

func TestStaticTokenManager_Empty(t *testing.T) {
	t.Parallel()

	manager := auth.NewStaticTokenManager("")

	_, err := manager.GetToken(context.Background())
	assert.ErrorIs(t, err, auth.ErrNoTokenAvailable)
}
