// Package armclient provides the main entry point for creating management
// API clients.
package armclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/ansolan/armclient/internal/client"
	"github.com/ansolan/armclient/internal/constants"
	"github.com/ansolan/armclient/pkg/arm"
)

// New creates a new management API client from configuration.
func New(ctx context.Context, config *arm.Config) (arm.Client, error) {
	if config == nil {
		return nil, constants.ErrNoSubscriptionConfigured
	}

	if config.SubscriptionID == "" {
		return nil, constants.ErrNoSubscriptionConfigured
	}

	if config.Endpoint != "" {
		config.Endpoint = normalizeEndpoint(config.Endpoint)
	}

	armClient, err := client.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return armClient, nil
}

// NewWithToken creates a client that authenticates with a pre-acquired
// Bearer token.
func NewWithToken(ctx context.Context, subscriptionID, token string) (arm.Client, error) {
	return New(ctx, &arm.Config{
		SubscriptionID: subscriptionID,
		AccessToken:    token,
	})
}

// NewWithClientCredentials creates a client that obtains tokens from the
// authority using the client-credentials grant.
func NewWithClientCredentials(ctx context.Context, subscriptionID, tenantID, clientID, clientSecret string) (arm.Client, error) {
	return New(ctx, &arm.Config{
		SubscriptionID: subscriptionID,
		TenantID:       tenantID,
		ClientID:       clientID,
		ClientSecret:   clientSecret,
	})
}

// normalizeEndpoint trims trailing slashes and defaults the scheme to https.
func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSuffix(endpoint, "/")
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	return endpoint
}
