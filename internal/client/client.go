// Package client implements the resource clients defined in pkg/arm.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/ansolan/armclient/internal/auth"
	"github.com/ansolan/armclient/internal/constants"
	"github.com/ansolan/armclient/internal/http"
	"github.com/ansolan/armclient/pkg/arm"
)

// Client is the concrete implementation of arm.Client.
type Client struct {
	httpClient     *http.Client
	config         *arm.Config
	subscriptionID string

	resourceGroups  *ResourceGroupsClient
	deployments     *DeploymentsClient
	storageAccounts *StorageAccountsClient
	providers       *ProvidersClient
}

// New creates a client from configuration. It wires the token manager, the
// retrying transport, and all resource clients.
func New(ctx context.Context, config *arm.Config) (*Client, error) {
	if config.SubscriptionID == "" {
		return nil, constants.ErrNoSubscriptionConfigured
	}

	endpoint := config.Endpoint
	if endpoint == "" {
		endpoint = constants.DefaultManagementEndpoint
	}

	endpoint = strings.TrimSuffix(endpoint, "/")

	tokenManager, err := buildTokenManager(config, endpoint)
	if err != nil {
		return nil, err
	}

	httpClient := http.NewClient(endpoint, tokenManager, buildOptions(config)...)

	client := &Client{
		httpClient:     httpClient,
		config:         config,
		subscriptionID: config.SubscriptionID,
	}

	client.resourceGroups = NewResourceGroupsClient(httpClient, config.SubscriptionID)
	client.deployments = NewDeploymentsClient(httpClient, config.SubscriptionID)
	client.storageAccounts = NewStorageAccountsClient(httpClient, config.SubscriptionID)
	client.providers = NewProvidersClient(httpClient, config.SubscriptionID)

	return client, nil
}

// buildTokenManager selects the token manager for the configured credentials.
func buildTokenManager(config *arm.Config, endpoint string) (auth.TokenManager, error) {
	switch {
	case config.AccessToken != "":
		return auth.NewStaticTokenManager(config.AccessToken), nil

	case config.ClientID != "" && config.ClientSecret != "":
		if config.TokenURL != "" {
			return auth.NewOAuth2TokenManager(&auth.OAuth2Config{
				TokenURL:     config.TokenURL,
				ClientID:     config.ClientID,
				ClientSecret: config.ClientSecret,
				Scope:        endpoint + "/.default",
			}), nil
		}

		if config.TenantID == "" {
			return nil, constants.ErrNoCredentialsConfigured
		}

		return auth.NewClientCredentialsTokenManager(
			constants.DefaultAuthorityEndpoint,
			config.TenantID,
			config.ClientID,
			config.ClientSecret,
			endpoint,
		), nil

	default:
		// Unauthenticated; only useful against test servers
		return nil, nil
	}
}

// buildOptions translates configuration into transport options.
func buildOptions(config *arm.Config) []http.Option {
	var options []http.Option

	if config.Logger != nil {
		options = append(options, http.WithLogger(config.Logger))
	}

	if config.Debug {
		options = append(options, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		options = append(options, http.WithUserAgent(config.UserAgent))
	}

	if config.RetryMax > 0 {
		waitMin := config.RetryWaitMin
		if waitMin <= 0 {
			waitMin = constants.DefaultRetryWaitMin
		}

		waitMax := config.RetryWaitMax
		if waitMax <= 0 {
			waitMax = constants.DefaultRetryWaitMax
		}

		options = append(options, http.WithRetryConfig(config.RetryMax, waitMin, waitMax))
	}

	if config.SkipTLSVerify {
		options = append(options, http.WithSkipTLSVerify(true))
	}

	if config.Cache != nil {
		cache, err := arm.NewCacheFromConfig(config.Cache)
		if err == nil {
			options = append(options, http.WithCache(cache, nil))
		}
	}

	if config.ScopeFactory != nil {
		options = append(options, http.WithScopeFactory(config.ScopeFactory))
	}

	return options
}

// ResourceGroups returns the resource groups client.
func (c *Client) ResourceGroups() arm.ResourceGroupsClient {
	return c.resourceGroups
}

// Deployments returns the deployments client.
func (c *Client) Deployments() arm.DeploymentsClient {
	return c.deployments
}

// StorageAccounts returns the storage accounts client.
func (c *Client) StorageAccounts() arm.StorageAccountsClient {
	return c.storageAccounts
}

// Providers returns the resource providers client.
func (c *Client) Providers() arm.ProvidersClient {
	return c.providers
}

// GetSubscription fetches the configured subscription.
func (c *Client) GetSubscription(ctx context.Context) (*arm.Subscription, error) {
	path := "/subscriptions/" + c.subscriptionID

	resp, err := c.httpClient.Get(ctx, path, apiVersionQuery(constants.ResourcesAPIVersion))
	if err != nil {
		return nil, fmt.Errorf("getting subscription: %w", err)
	}

	var subscription arm.Subscription
	if err := json.Unmarshal(resp.Body, &subscription); err != nil {
		return nil, fmt.Errorf("parsing subscription response: %w", err)
	}

	return &subscription, nil
}

// HTTPClient exposes the underlying transport, used by the facade to drive
// pollers directly.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// apiVersionQuery builds a query carrying only the API version.
func apiVersionQuery(version string) url.Values {
	return url.Values{"api-version": []string{version}}
}

// listParams ensures query params carry the given API version.
func listParams(params *arm.QueryParams, version string) *arm.QueryParams {
	if params == nil {
		params = arm.NewQueryParams()
	}

	if params.APIVersion == "" {
		params.APIVersion = version
	}

	return params
}

// listFetcher builds a page fetcher over a list endpoint. The first page is
// fetched from the relative path; continuation links come back absolute and
// are followed verbatim.
func listFetcher[T any](httpClient *http.Client, path, version string) arm.PageFetcher[T] {
	return arm.PageFetcher[T]{
		First: func(ctx context.Context, params *arm.QueryParams) (*arm.Page[T], error) {
			resp, err := httpClient.Get(ctx, path, listParams(params, version).ToValues())
			if err != nil {
				return nil, fmt.Errorf("listing %s: %w", path, err)
			}

			return pageFromResponse[T](resp)
		},
		Next: func(ctx context.Context, nextLink string) (*arm.Page[T], error) {
			resp, err := httpClient.GetURL(ctx, nextLink)
			if err != nil {
				return nil, fmt.Errorf("fetching next page: %w", err)
			}

			return pageFromResponse[T](resp)
		},
	}
}

// pageFromResponse decodes a list envelope into a page.
func pageFromResponse[T any](resp *arm.Response) (*arm.Page[T], error) {
	var result arm.ListResult[T]
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing list response: %w", err)
	}

	return &arm.Page[T]{
		Value:    result.Value,
		NextLink: result.NextLink,
		Response: resp,
	}, nil
}
