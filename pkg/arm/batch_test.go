package arm_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ansolan/armclient/pkg/arm"
)

// MockClient implements arm.Client for testing.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetSubscription(ctx context.Context) (*arm.Subscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*arm.Subscription), args.Error(1)
}

func (m *MockClient) ResourceGroups() arm.ResourceGroupsClient {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}

	return args.Get(0).(arm.ResourceGroupsClient)
}

func (m *MockClient) Deployments() arm.DeploymentsClient {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}

	return args.Get(0).(arm.DeploymentsClient)
}

func (m *MockClient) StorageAccounts() arm.StorageAccountsClient {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}

	return args.Get(0).(arm.StorageAccountsClient)
}

func (m *MockClient) Providers() arm.ProvidersClient {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}

	return args.Get(0).(arm.ProvidersClient)
}

// MockResourceGroupsClient implements arm.ResourceGroupsClient for testing.
type MockResourceGroupsClient struct {
	mock.Mock
}

func (m *MockResourceGroupsClient) Get(ctx context.Context, name string) (*arm.ResourceGroup, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*arm.ResourceGroup), args.Error(1)
}

func (m *MockResourceGroupsClient) CreateOrUpdate(ctx context.Context, name string, group *arm.ResourceGroup) (*arm.ResourceGroup, error) {
	args := m.Called(ctx, name, group)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*arm.ResourceGroup), args.Error(1)
}

func (m *MockResourceGroupsClient) Update(ctx context.Context, name string, patch *arm.ResourceGroupPatch) (*arm.ResourceGroup, error) {
	args := m.Called(ctx, name, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*arm.ResourceGroup), args.Error(1)
}

func (m *MockResourceGroupsClient) List(ctx context.Context, params *arm.QueryParams) (*arm.ListResult[arm.ResourceGroup], error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*arm.ListResult[arm.ResourceGroup]), args.Error(1)
}

func (m *MockResourceGroupsClient) NewListIterator(ctx context.Context, params *arm.QueryParams) *arm.PageIterator[arm.ResourceGroup] {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil
	}

	return args.Get(0).(*arm.PageIterator[arm.ResourceGroup])
}

func (m *MockResourceGroupsClient) BeginDelete(ctx context.Context, name string) (*arm.Poller[arm.ResourceGroupDeleteResponse], error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*arm.Poller[arm.ResourceGroupDeleteResponse]), args.Error(1)
}

func (m *MockResourceGroupsClient) CheckExistence(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)

	return args.Bool(0), args.Error(1)
}

// succeededPoller returns a poller that is already terminal, so driving it
// issues no requests.
func succeededPoller[T any](t *testing.T) *arm.Poller[T] {
	t.Helper()

	poller, err := arm.NewPoller[T](nil, &arm.Response{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Headers:    http.Header{},
	})
	require.NoError(t, err)

	return poller
}

func TestBatchExecutor_Execute(t *testing.T) {
	t.Parallel()

	groups := &MockResourceGroupsClient{}
	client := &MockClient{}
	client.On("ResourceGroups").Return(groups)

	group := &arm.ResourceGroup{Resource: arm.Resource{Name: "rg-1", Location: "westeurope"}}
	groups.On("CreateOrUpdate", mock.Anything, "rg-1", mock.Anything).Return(group, nil)
	groups.On("Get", mock.Anything, "rg-2").Return(&arm.ResourceGroup{Resource: arm.Resource{Name: "rg-2"}}, nil)
	groups.On("BeginDelete", mock.Anything, "rg-3").
		Return(succeededPoller[arm.ResourceGroupDeleteResponse](t), nil)

	operations := arm.NewBatchBuilder().
		AddCreateGroup("op-1", "rg-1", group).
		AddGetGroup("op-2", "rg-2").
		AddDeleteGroup("op-3", "rg-3").
		Build()

	executor := arm.NewBatchExecutor(client, 2)

	results, err := executor.Execute(context.Background(), operations)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for _, result := range results {
		assert.True(t, result.Success, "operation %s failed: %v", result.ID, result.Error)
		assert.GreaterOrEqual(t, result.Duration, time.Duration(0))
	}

	// Results keep the submission order regardless of completion order.
	assert.Equal(t, "op-1", results[0].ID)
	assert.Equal(t, "op-2", results[1].ID)
	assert.Equal(t, "op-3", results[2].ID)

	groups.AssertExpectations(t)
}

func TestBatchExecutor_UnsupportedResource(t *testing.T) {
	t.Parallel()

	executor := arm.NewBatchExecutor(&MockClient{}, 1)

	results, err := executor.Execute(context.Background(), []arm.BatchOperation{
		{ID: "op-1", Type: "create", Resource: "virtual_network"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.False(t, results[0].Success)
	assert.ErrorIs(t, results[0].Error, arm.ErrUnsupportedResourceType)
}

func TestBatchExecutor_UnsupportedOperationType(t *testing.T) {
	t.Parallel()

	groups := &MockResourceGroupsClient{}
	client := &MockClient{}
	client.On("ResourceGroups").Return(groups)

	executor := arm.NewBatchExecutor(client, 1)

	results, err := executor.Execute(context.Background(), []arm.BatchOperation{
		{ID: "op-1", Type: "upsert", Resource: "resource_group"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Error, arm.ErrUnsupportedOperationType)
}

func TestBatchExecutor_InvalidData(t *testing.T) {
	t.Parallel()

	groups := &MockResourceGroupsClient{}
	client := &MockClient{}
	client.On("ResourceGroups").Return(groups)

	executor := arm.NewBatchExecutor(client, 1)

	results, err := executor.Execute(context.Background(), []arm.BatchOperation{
		{ID: "op-1", Type: "create", Resource: "resource_group", Data: 42},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Error, arm.ErrInvalidDataTypeGroup)
}

func TestBatchExecutor_Callback(t *testing.T) {
	t.Parallel()

	groups := &MockResourceGroupsClient{}
	client := &MockClient{}
	client.On("ResourceGroups").Return(groups)
	groups.On("Get", mock.Anything, "rg-1").Return(&arm.ResourceGroup{Resource: arm.Resource{Name: "rg-1"}}, nil)

	var callbacks atomic.Int32

	operations := []arm.BatchOperation{
		{
			ID:       "op-1",
			Type:     "get",
			Resource: "resource_group",
			Data:     "rg-1",
			Callback: func(result *arm.BatchResult) {
				assert.True(t, result.Success)
				callbacks.Add(1)
			},
		},
	}

	executor := arm.NewBatchExecutor(client, 1)

	_, err := executor.Execute(context.Background(), operations)
	require.NoError(t, err)
	assert.Equal(t, int32(1), callbacks.Load())
}

func TestBatchBuilder(t *testing.T) {
	t.Parallel()

	operations := arm.NewBatchBuilder().
		AddCreateGroup("op-1", "rg-1", &arm.ResourceGroup{Resource: arm.Resource{Location: "westeurope"}}).
		AddCreateDeployment("op-2", "rg-1", "deploy-1", &arm.DeploymentRequest{}).
		AddCreateStorageAccount("op-3", "rg-1", "stacct1", &arm.StorageAccountCreateRequest{}).
		AddOperation(arm.BatchOperation{ID: "op-4", Type: "get", Resource: "resource_group", Data: "rg-1"}).
		Build()

	require.Len(t, operations, 4)
	assert.Equal(t, "resource_group", operations[0].Resource)
	assert.Equal(t, "deployment", operations[1].Resource)
	assert.Equal(t, "storage_account", operations[2].Resource)
	assert.Equal(t, "op-4", operations[3].ID)
}
