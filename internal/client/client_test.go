package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansolan/armclient/internal/constants"
	internalhttp "github.com/ansolan/armclient/internal/http"
	"github.com/ansolan/armclient/pkg/arm"
)

// newTestClient builds a transport without a token manager, pointed at a test
// server.
func newTestClient(baseURL string) *internalhttp.Client {
	return internalhttp.NewClient(baseURL, nil)
}

func TestNew_RequiresSubscription(t *testing.T) {
	t.Parallel()

	client, err := New(context.Background(), &arm.Config{})
	require.ErrorIs(t, err, constants.ErrNoSubscriptionConfigured)
	assert.Nil(t, client)
}

func TestNew_ClientCredentialsWithoutTenant(t *testing.T) {
	t.Parallel()

	client, err := New(context.Background(), &arm.Config{
		SubscriptionID: "sub-1",
		ClientID:       "client-1",
		ClientSecret:   "secret",
	})
	require.ErrorIs(t, err, constants.ErrNoCredentialsConfigured)
	assert.Nil(t, client)
}

func TestNew_InitializesResourceClients(t *testing.T) {
	t.Parallel()

	client, err := New(context.Background(), &arm.Config{
		SubscriptionID: "sub-1",
		Endpoint:       "https://management.example.com/",
		AccessToken:    "test-token",
	})
	require.NoError(t, err)

	assert.NotNil(t, client.ResourceGroups())
	assert.NotNil(t, client.Deployments())
	assert.NotNil(t, client.StorageAccounts())
	assert.NotNil(t, client.Providers())
	assert.NotNil(t, client.HTTPClient())
}

func TestClient_GetSubscription(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subscriptions/sub-1", r.URL.Path)
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, constants.ResourcesAPIVersion, r.URL.Query().Get("api-version"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		subscription := arm.Subscription{
			ID:             "/subscriptions/sub-1",
			SubscriptionID: "sub-1",
			DisplayName:    "Production",
			State:          "Enabled",
			TenantID:       "tenant-1",
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(subscription)
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
	assert.Equal(t, "sub-1", subscription.SubscriptionID)
	assert.Equal(t, "Production", subscription.DisplayName)
	assert.Equal(t, "Enabled", subscription.State)
}

func TestClient_GetSubscriptionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"code":    "SubscriptionNotFound",
				"message": "The subscription 'missing' could not be found.",
			},
		})
	}))
	defer server.Close()

	client, err := New(context.Background(), &arm.Config{
		SubscriptionID: "missing",
		Endpoint:       server.URL,
		AccessToken:    "test-token",
	})
	require.NoError(t, err)

	subscription, err := client.GetSubscription(context.Background())
	require.Error(t, err)
	assert.Nil(t, subscription)
	assert.True(t, arm.IsNotFound(err))

	respErr, ok := arm.AsResponseError(err)
	require.True(t, ok)
	assert.Equal(t, "SubscriptionNotFound", respErr.ErrorCode)
}

func TestListParams(t *testing.T) {
	t.Parallel()

	t.Run("nil params get defaults", func(t *testing.T) {
		t.Parallel()

		params := listParams(nil, constants.ResourcesAPIVersion)
		require.NotNil(t, params)
		assert.Equal(t, constants.ResourcesAPIVersion, params.APIVersion)
	})

	t.Run("caller version wins", func(t *testing.T) {
		t.Parallel()

		params := listParams(&arm.QueryParams{APIVersion: "2020-01-01"}, constants.ResourcesAPIVersion)
		assert.Equal(t, "2020-01-01", params.APIVersion)
	})

	t.Run("other fields preserved", func(t *testing.T) {
		t.Parallel()

		params := listParams(&arm.QueryParams{Filter: "tagName eq 'env'"}, constants.StorageAPIVersion)
		assert.Equal(t, constants.StorageAPIVersion, params.APIVersion)
		assert.Equal(t, "tagName eq 'env'", params.Filter)
	})
}
