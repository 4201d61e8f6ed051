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

// DeploymentsClient implements arm.DeploymentsClient.
type DeploymentsClient struct {
	httpClient     *internalhttp.Client
	subscriptionID string
}

// NewDeploymentsClient creates a new deployments client.
func NewDeploymentsClient(httpClient *internalhttp.Client, subscriptionID string) *DeploymentsClient {
	return &DeploymentsClient{
		httpClient:     httpClient,
		subscriptionID: subscriptionID,
	}
}

// basePath is the deployments collection path within a resource group.
func (c *DeploymentsClient) basePath(resourceGroup string) string {
	return "/subscriptions/" + c.subscriptionID + "/resourcegroups/" + resourceGroup +
		"/providers/Microsoft.Resources/deployments"
}

// Get implements arm.DeploymentsClient.Get.
func (c *DeploymentsClient) Get(ctx context.Context, resourceGroup, name string) (*arm.Deployment, error) {
	path := c.basePath(resourceGroup) + "/" + name

	resp, err := c.httpClient.Get(ctx, path, apiVersionQuery(constants.ResourcesAPIVersion))
	if err != nil {
		return nil, fmt.Errorf("getting deployment: %w", err)
	}

	var deployment arm.Deployment
	if err := json.Unmarshal(resp.Body, &deployment); err != nil {
		return nil, fmt.Errorf("parsing deployment response: %w", err)
	}

	return &deployment, nil
}

// BeginCreateOrUpdate implements arm.DeploymentsClient.BeginCreateOrUpdate.
func (c *DeploymentsClient) BeginCreateOrUpdate(ctx context.Context, resourceGroup, name string, request *arm.DeploymentRequest) (*arm.Poller[arm.Deployment], error) {
	path := c.basePath(resourceGroup) + "/" + name

	resp, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method: http.MethodPut,
		Path:   path,
		Query:  apiVersionQuery(constants.ResourcesAPIVersion),
		Body:   request,
	})
	if err != nil {
		return nil, fmt.Errorf("creating deployment: %w", err)
	}

	poller, err := arm.NewPoller[arm.Deployment](c.httpClient, resp)
	if err != nil {
		return nil, fmt.Errorf("starting deployment poller: %w", err)
	}

	return poller, nil
}

// BeginDelete implements arm.DeploymentsClient.BeginDelete.
func (c *DeploymentsClient) BeginDelete(ctx context.Context, resourceGroup, name string) (*arm.Poller[arm.DeploymentDeleteResponse], error) {
	path := c.basePath(resourceGroup) + "/" + name

	resp, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method: http.MethodDelete,
		Path:   path,
		Query:  apiVersionQuery(constants.ResourcesAPIVersion),
	})
	if err != nil {
		return nil, fmt.Errorf("deleting deployment: %w", err)
	}

	poller, err := arm.NewPoller[arm.DeploymentDeleteResponse](c.httpClient, resp)
	if err != nil {
		return nil, fmt.Errorf("starting delete poller: %w", err)
	}

	return poller, nil
}

// List implements arm.DeploymentsClient.List.
func (c *DeploymentsClient) List(ctx context.Context, resourceGroup string, params *arm.QueryParams) (*arm.ListResult[arm.Deployment], error) {
	resp, err := c.httpClient.Get(ctx, c.basePath(resourceGroup), listParams(params, constants.ResourcesAPIVersion).ToValues())
	if err != nil {
		return nil, fmt.Errorf("listing deployments: %w", err)
	}

	var result arm.ListResult[arm.Deployment]
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing deployments list response: %w", err)
	}

	return &result, nil
}

// NewListIterator implements arm.DeploymentsClient.NewListIterator.
func (c *DeploymentsClient) NewListIterator(ctx context.Context, resourceGroup string, params *arm.QueryParams) *arm.PageIterator[arm.Deployment] {
	fetcher := listFetcher[arm.Deployment](c.httpClient, c.basePath(resourceGroup), constants.ResourcesAPIVersion)

	return arm.NewPageIterator(ctx, fetcher, params)
}

// Cancel implements arm.DeploymentsClient.Cancel. Only a running deployment
// can be canceled.
func (c *DeploymentsClient) Cancel(ctx context.Context, resourceGroup, name string) error {
	path := c.basePath(resourceGroup) + "/" + name + "/cancel"

	_, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method: http.MethodPost,
		Path:   path,
		Query:  apiVersionQuery(constants.ResourcesAPIVersion),
	})
	if err != nil {
		return fmt.Errorf("canceling deployment: %w", err)
	}

	return nil
}

// Validate implements arm.DeploymentsClient.Validate.
func (c *DeploymentsClient) Validate(ctx context.Context, resourceGroup, name string, request *arm.DeploymentRequest) (*arm.DeploymentValidateResult, error) {
	path := c.basePath(resourceGroup) + "/" + name + "/validate"

	resp, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method: http.MethodPost,
		Path:   path,
		Query:  apiVersionQuery(constants.ResourcesAPIVersion),
		Body:   request,
	})
	if err != nil {
		// Validation failures come back as 400 with a result body
		if respErr, ok := arm.AsResponseError(err); ok && resp != nil && respErr.StatusCode == http.StatusBadRequest {
			var result arm.DeploymentValidateResult
			if jsonErr := json.Unmarshal(resp.Body, &result); jsonErr == nil && result.Error != nil {
				return &result, nil
			}
		}

		return nil, fmt.Errorf("validating deployment: %w", err)
	}

	var result arm.DeploymentValidateResult
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing validation response: %w", err)
	}

	return &result, nil
}
