package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ansolan/armclient/internal/constants"
	internalhttp "github.com/ansolan/armclient/internal/http"
	"github.com/ansolan/armclient/pkg/arm"
)

// ProvidersClient implements arm.ProvidersClient.
type ProvidersClient struct {
	httpClient     *internalhttp.Client
	subscriptionID string
}

// NewProvidersClient creates a new resource providers client.
func NewProvidersClient(httpClient *internalhttp.Client, subscriptionID string) *ProvidersClient {
	return &ProvidersClient{
		httpClient:     httpClient,
		subscriptionID: subscriptionID,
	}
}

// basePath is the providers collection path for this subscription.
func (c *ProvidersClient) basePath() string {
	return "/subscriptions/" + c.subscriptionID + "/providers"
}

// Get implements arm.ProvidersClient.Get.
func (c *ProvidersClient) Get(ctx context.Context, namespace string) (*arm.Provider, error) {
	path := c.basePath() + "/" + namespace

	resp, err := c.httpClient.Get(ctx, path, apiVersionQuery(constants.ResourcesAPIVersion))
	if err != nil {
		return nil, fmt.Errorf("getting provider: %w", err)
	}

	var provider arm.Provider
	if err := json.Unmarshal(resp.Body, &provider); err != nil {
		return nil, fmt.Errorf("parsing provider response: %w", err)
	}

	return &provider, nil
}

// List implements arm.ProvidersClient.List.
func (c *ProvidersClient) List(ctx context.Context, params *arm.QueryParams) (*arm.ListResult[arm.Provider], error) {
	resp, err := c.httpClient.Get(ctx, c.basePath(), listParams(params, constants.ResourcesAPIVersion).ToValues())
	if err != nil {
		return nil, fmt.Errorf("listing providers: %w", err)
	}

	var result arm.ListResult[arm.Provider]
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing providers list response: %w", err)
	}

	return &result, nil
}

// NewListIterator implements arm.ProvidersClient.NewListIterator.
func (c *ProvidersClient) NewListIterator(ctx context.Context, params *arm.QueryParams) *arm.PageIterator[arm.Provider] {
	fetcher := listFetcher[arm.Provider](c.httpClient, c.basePath(), constants.ResourcesAPIVersion)

	return arm.NewPageIterator(ctx, fetcher, params)
}

// Register implements arm.ProvidersClient.Register. Registration is
// asynchronous on the server side; the returned provider carries its
// current registration state.
func (c *ProvidersClient) Register(ctx context.Context, namespace string) (*arm.Provider, error) {
	return c.registrationAction(ctx, namespace, "register")
}

// Unregister implements arm.ProvidersClient.Unregister.
func (c *ProvidersClient) Unregister(ctx context.Context, namespace string) (*arm.Provider, error) {
	return c.registrationAction(ctx, namespace, "unregister")
}

func (c *ProvidersClient) registrationAction(ctx context.Context, namespace, action string) (*arm.Provider, error) {
	path := c.basePath() + "/" + namespace + "/" + action

	resp, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method: http.MethodPost,
		Path:   path,
		Query:  apiVersionQuery(constants.ResourcesAPIVersion),
	})
	if err != nil {
		return nil, fmt.Errorf("%sing provider: %w", action, err)
	}

	var provider arm.Provider
	if err := json.Unmarshal(resp.Body, &provider); err != nil {
		return nil, fmt.Errorf("parsing provider response: %w", err)
	}

	return &provider, nil
}
