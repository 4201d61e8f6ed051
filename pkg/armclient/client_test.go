package armclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansolan/armclient/internal/constants"
	"github.com/ansolan/armclient/pkg/arm"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("nil config", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), nil)
		require.ErrorIs(t, err, constants.ErrNoSubscriptionConfigured)
		assert.Nil(t, client)
	})

	t.Run("missing subscription", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &arm.Config{AccessToken: "token"})
		require.ErrorIs(t, err, constants.ErrNoSubscriptionConfigured)
		assert.Nil(t, client)
	})

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &arm.Config{
			SubscriptionID: "sub-1",
			AccessToken:    "token",
		})
		require.NoError(t, err)
		require.NotNil(t, client)
		assert.NotNil(t, client.ResourceGroups())
		assert.NotNil(t, client.Deployments())
		assert.NotNil(t, client.StorageAccounts())
		assert.NotNil(t, client.Providers())
	})
}

func TestNewWithToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(arm.Subscription{SubscriptionID: "sub-1", DisplayName: "Production"})
	}))
	defer server.Close()

	client, err := New(context.Background(), &arm.Config{
		SubscriptionID: "sub-1",
		Endpoint:       server.URL,
		AccessToken:    "test-token",
	})
	require.NoError(t, err)

	subscription, err := client.GetSubscription(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Production", subscription.DisplayName)
}

func TestNewWithTokenDefaults(t *testing.T) {
	t.Parallel()

	client, err := NewWithToken(context.Background(), "sub-1", "test-token")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewWithClientCredentials(t *testing.T) {
	t.Parallel()

	t.Run("complete credentials", func(t *testing.T) {
		t.Parallel()

		client, err := NewWithClientCredentials(context.Background(), "sub-1", "tenant-1", "client-1", "secret")
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("missing tenant", func(t *testing.T) {
		t.Parallel()

		client, err := NewWithClientCredentials(context.Background(), "sub-1", "", "client-1", "secret")
		require.ErrorIs(t, err, constants.ErrNoCredentialsConfigured)
		assert.Nil(t, client)
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		endpoint string
		expected string
	}{
		{"already normalized", "https://management.example.com", "https://management.example.com"},
		{"trailing slash", "https://management.example.com/", "https://management.example.com"},
		{"missing scheme", "management.example.com", "https://management.example.com"},
		{"http preserved", "http://localhost:8080", "http://localhost:8080"},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.expected, normalizeEndpoint(testCase.endpoint))
		})
	}
}
