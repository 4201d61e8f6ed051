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

// ResourceGroupsClient implements arm.ResourceGroupsClient.
type ResourceGroupsClient struct {
	httpClient     *internalhttp.Client
	subscriptionID string
}

// NewResourceGroupsClient creates a new resource groups client.
func NewResourceGroupsClient(httpClient *internalhttp.Client, subscriptionID string) *ResourceGroupsClient {
	return &ResourceGroupsClient{
		httpClient:     httpClient,
		subscriptionID: subscriptionID,
	}
}

// basePath is the collection path for this subscription's resource groups.
func (c *ResourceGroupsClient) basePath() string {
	return "/subscriptions/" + c.subscriptionID + "/resourcegroups"
}

// Get implements arm.ResourceGroupsClient.Get.
func (c *ResourceGroupsClient) Get(ctx context.Context, name string) (*arm.ResourceGroup, error) {
	path := c.basePath() + "/" + name

	resp, err := c.httpClient.Get(ctx, path, apiVersionQuery(constants.ResourcesAPIVersion))
	if err != nil {
		return nil, fmt.Errorf("getting resource group: %w", err)
	}

	var group arm.ResourceGroup
	if err := json.Unmarshal(resp.Body, &group); err != nil {
		return nil, fmt.Errorf("parsing resource group response: %w", err)
	}

	return &group, nil
}

// CreateOrUpdate implements arm.ResourceGroupsClient.CreateOrUpdate.
// Resource group creation completes synchronously.
func (c *ResourceGroupsClient) CreateOrUpdate(ctx context.Context, name string, group *arm.ResourceGroup) (*arm.ResourceGroup, error) {
	path := c.basePath() + "/" + name

	resp, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method: http.MethodPut,
		Path:   path,
		Query:  apiVersionQuery(constants.ResourcesAPIVersion),
		Body:   group,
	})
	if err != nil {
		return nil, fmt.Errorf("creating resource group: %w", err)
	}

	var created arm.ResourceGroup
	if err := json.Unmarshal(resp.Body, &created); err != nil {
		return nil, fmt.Errorf("parsing resource group response: %w", err)
	}

	return &created, nil
}

// Update implements arm.ResourceGroupsClient.Update.
func (c *ResourceGroupsClient) Update(ctx context.Context, name string, patch *arm.ResourceGroupPatch) (*arm.ResourceGroup, error) {
	path := c.basePath() + "/" + name

	resp, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method: http.MethodPatch,
		Path:   path,
		Query:  apiVersionQuery(constants.ResourcesAPIVersion),
		Body:   patch,
	})
	if err != nil {
		return nil, fmt.Errorf("updating resource group: %w", err)
	}

	var updated arm.ResourceGroup
	if err := json.Unmarshal(resp.Body, &updated); err != nil {
		return nil, fmt.Errorf("parsing resource group response: %w", err)
	}

	return &updated, nil
}

// List implements arm.ResourceGroupsClient.List.
func (c *ResourceGroupsClient) List(ctx context.Context, params *arm.QueryParams) (*arm.ListResult[arm.ResourceGroup], error) {
	resp, err := c.httpClient.Get(ctx, c.basePath(), listParams(params, constants.ResourcesAPIVersion).ToValues())
	if err != nil {
		return nil, fmt.Errorf("listing resource groups: %w", err)
	}

	var result arm.ListResult[arm.ResourceGroup]
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing resource groups list response: %w", err)
	}

	return &result, nil
}

// NewListIterator implements arm.ResourceGroupsClient.NewListIterator.
func (c *ResourceGroupsClient) NewListIterator(ctx context.Context, params *arm.QueryParams) *arm.PageIterator[arm.ResourceGroup] {
	fetcher := listFetcher[arm.ResourceGroup](c.httpClient, c.basePath(), constants.ResourcesAPIVersion)

	return arm.NewPageIterator(ctx, fetcher, params)
}

// BeginDelete implements arm.ResourceGroupsClient.BeginDelete. Deletion is a
// long-running operation; the returned poller tracks it to completion.
func (c *ResourceGroupsClient) BeginDelete(ctx context.Context, name string) (*arm.Poller[arm.ResourceGroupDeleteResponse], error) {
	path := c.basePath() + "/" + name

	resp, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method: http.MethodDelete,
		Path:   path,
		Query:  apiVersionQuery(constants.ResourcesAPIVersion),
	})
	if err != nil {
		return nil, fmt.Errorf("deleting resource group: %w", err)
	}

	poller, err := arm.NewPoller[arm.ResourceGroupDeleteResponse](c.httpClient, resp)
	if err != nil {
		return nil, fmt.Errorf("starting delete poller: %w", err)
	}

	return poller, nil
}

// CheckExistence implements arm.ResourceGroupsClient.CheckExistence.
func (c *ResourceGroupsClient) CheckExistence(ctx context.Context, name string) (bool, error) {
	path := c.basePath() + "/" + name

	resp, err := c.httpClient.Head(ctx, path, apiVersionQuery(constants.ResourcesAPIVersion))
	if err != nil {
		if arm.IsNotFound(err) {
			return false, nil
		}

		return false, fmt.Errorf("checking resource group existence: %w", err)
	}

	return resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusOK, nil
}
