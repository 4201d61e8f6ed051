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

// StorageAccountsClient implements arm.StorageAccountsClient.
type StorageAccountsClient struct {
	httpClient     *internalhttp.Client
	subscriptionID string
}

// NewStorageAccountsClient creates a new storage accounts client.
func NewStorageAccountsClient(httpClient *internalhttp.Client, subscriptionID string) *StorageAccountsClient {
	return &StorageAccountsClient{
		httpClient:     httpClient,
		subscriptionID: subscriptionID,
	}
}

// accountPath is the path of a single storage account.
func (c *StorageAccountsClient) accountPath(resourceGroup, name string) string {
	return "/subscriptions/" + c.subscriptionID + "/resourcegroups/" + resourceGroup +
		"/providers/Microsoft.Storage/storageAccounts/" + name
}

// listPath is the subscription-wide storage accounts collection path.
func (c *StorageAccountsClient) listPath() string {
	return "/subscriptions/" + c.subscriptionID + "/providers/Microsoft.Storage/storageAccounts"
}

// Get implements arm.StorageAccountsClient.Get.
func (c *StorageAccountsClient) Get(ctx context.Context, resourceGroup, name string) (*arm.StorageAccount, error) {
	resp, err := c.httpClient.Get(ctx, c.accountPath(resourceGroup, name), apiVersionQuery(constants.StorageAPIVersion))
	if err != nil {
		return nil, fmt.Errorf("getting storage account: %w", err)
	}

	var account arm.StorageAccount
	if err := json.Unmarshal(resp.Body, &account); err != nil {
		return nil, fmt.Errorf("parsing storage account response: %w", err)
	}

	return &account, nil
}

// BeginCreate implements arm.StorageAccountsClient.BeginCreate. Account
// creation is a long-running operation tracked through the returned poller.
func (c *StorageAccountsClient) BeginCreate(ctx context.Context, resourceGroup, name string, request *arm.StorageAccountCreateRequest) (*arm.Poller[arm.StorageAccount], error) {
	resp, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method: http.MethodPut,
		Path:   c.accountPath(resourceGroup, name),
		Query:  apiVersionQuery(constants.StorageAPIVersion),
		Body:   request,
	})
	if err != nil {
		return nil, fmt.Errorf("creating storage account: %w", err)
	}

	poller, err := arm.NewPoller[arm.StorageAccount](c.httpClient, resp)
	if err != nil {
		return nil, fmt.Errorf("starting create poller: %w", err)
	}

	return poller, nil
}

// Delete implements arm.StorageAccountsClient.Delete. Deletion completes
// synchronously.
func (c *StorageAccountsClient) Delete(ctx context.Context, resourceGroup, name string) error {
	_, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method: http.MethodDelete,
		Path:   c.accountPath(resourceGroup, name),
		Query:  apiVersionQuery(constants.StorageAPIVersion),
	})
	if err != nil {
		return fmt.Errorf("deleting storage account: %w", err)
	}

	return nil
}

// List implements arm.StorageAccountsClient.List.
func (c *StorageAccountsClient) List(ctx context.Context, params *arm.QueryParams) (*arm.ListResult[arm.StorageAccount], error) {
	resp, err := c.httpClient.Get(ctx, c.listPath(), listParams(params, constants.StorageAPIVersion).ToValues())
	if err != nil {
		return nil, fmt.Errorf("listing storage accounts: %w", err)
	}

	var result arm.ListResult[arm.StorageAccount]
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing storage accounts list response: %w", err)
	}

	return &result, nil
}

// NewListIterator implements arm.StorageAccountsClient.NewListIterator.
func (c *StorageAccountsClient) NewListIterator(ctx context.Context, params *arm.QueryParams) *arm.PageIterator[arm.StorageAccount] {
	fetcher := listFetcher[arm.StorageAccount](c.httpClient, c.listPath(), constants.StorageAPIVersion)

	return arm.NewPageIterator(ctx, fetcher, params)
}

// CheckNameAvailability implements arm.StorageAccountsClient.CheckNameAvailability.
// Storage account names are globally scoped.
func (c *StorageAccountsClient) CheckNameAvailability(ctx context.Context, name string) (*arm.CheckNameAvailabilityResult, error) {
	path := "/subscriptions/" + c.subscriptionID + "/providers/Microsoft.Storage/checkNameAvailability"

	resp, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method: http.MethodPost,
		Path:   path,
		Query:  apiVersionQuery(constants.StorageAPIVersion),
		Body: &arm.CheckNameAvailabilityRequest{
			Name: name,
			Type: "Microsoft.Storage/storageAccounts",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("checking name availability: %w", err)
	}

	var result arm.CheckNameAvailabilityResult
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing name availability response: %w", err)
	}

	return &result, nil
}
