package arm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ansolan/armclient/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrUnsupportedResourceType   = errors.New("unsupported resource type")
	ErrUnsupportedOperationType  = errors.New("unsupported operation type")
	ErrInvalidDataTypeGroup      = errors.New("invalid data type for resource group operation")
	ErrInvalidDataTypeDeployment = errors.New("invalid data type for deployment operation")
	ErrInvalidDataTypeStorage    = errors.New("invalid data type for storage account operation")
)

// BatchOperation represents a single operation in a batch.
type BatchOperation struct {
	ID       string
	Type     string // "create", "update", "delete", "get"
	Resource string // "resource_group", "deployment", "storage_account"
	Data     interface{}
	Callback func(result *BatchResult)
}

// BatchResult represents the result of a batch operation.
type BatchResult struct {
	ID       string
	Success  bool
	Data     interface{}
	Error    error
	Duration time.Duration
}

// NamedRequest pairs a resource name with its request body.
type NamedRequest[T any] struct {
	Name    string
	Request *T
}

// BatchExecutor executes batch operations against the management API,
// bounding concurrency with a semaphore. Long-running operations are
// driven to completion before their result is recorded.
type BatchExecutor struct {
	client      Client
	concurrency int
	timeout     time.Duration
}

// NewBatchExecutor creates a new batch executor.
func NewBatchExecutor(client Client, concurrency int) *BatchExecutor {
	if concurrency <= 0 {
		concurrency = constants.DefaultBatchConcurrency
	}

	return &BatchExecutor{
		client:      client,
		concurrency: concurrency,
		timeout:     constants.DefaultPollTimeout,
	}
}

// SetTimeout sets the per-operation timeout.
func (b *BatchExecutor) SetTimeout(timeout time.Duration) {
	b.timeout = timeout
}

// Execute runs a batch of operations.
func (b *BatchExecutor) Execute(ctx context.Context, operations []BatchOperation) ([]BatchResult, error) {
	results := make([]BatchResult, len(operations))

	var waitGroup sync.WaitGroup

	semaphore := make(chan struct{}, b.concurrency)

	for index, operation := range operations {
		waitGroup.Add(1)

		go func(index int, operation BatchOperation) {
			defer waitGroup.Done()

			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			opCtx, cancel := context.WithTimeout(ctx, b.timeout)
			defer cancel()

			start := time.Now()
			result := b.executeOperation(opCtx, operation)
			result.Duration = time.Since(start)
			results[index] = *result

			if operation.Callback != nil {
				operation.Callback(result)
			}
		}(index, operation)
	}

	waitGroup.Wait()

	return results, nil
}

// executeOperation executes a single operation.
func (b *BatchExecutor) executeOperation(ctx context.Context, operation BatchOperation) *BatchResult {
	switch operation.Resource {
	case "resource_group":
		return b.executeGroupOperation(ctx, operation)
	case "deployment":
		return b.executeDeploymentOperation(ctx, operation)
	case "storage_account":
		return b.executeStorageOperation(ctx, operation)
	default:
		return &BatchResult{
			ID:    operation.ID,
			Error: fmt.Errorf("%w: %s", ErrUnsupportedResourceType, operation.Resource),
		}
	}
}

// handleCrudOperation dispatches on the operation type.
func handleCrudOperation(
	operation BatchOperation,
	createFunc func() (interface{}, error),
	updateFunc func() (interface{}, error),
	deleteFunc func() (interface{}, error),
	getFunc func() (interface{}, error),
) *BatchResult {
	result := &BatchResult{ID: operation.ID}

	switch operation.Type {
	case "create":
		data, err := createFunc()
		result.Success = err == nil
		result.Data = data
		result.Error = err
	case "update":
		data, err := updateFunc()
		result.Success = err == nil
		result.Data = data
		result.Error = err
	case "delete":
		data, err := deleteFunc()
		result.Success = err == nil
		result.Data = data
		result.Error = err
	case "get":
		data, err := getFunc()
		result.Success = err == nil
		result.Data = data
		result.Error = err
	default:
		result.Error = fmt.Errorf("%w: %s", ErrUnsupportedOperationType, operation.Type)
	}

	return result
}

// executeGroupOperation handles resource group operations.
func (b *BatchExecutor) executeGroupOperation(ctx context.Context, operation BatchOperation) *BatchResult {
	return handleCrudOperation(operation,
		func() (interface{}, error) {
			if req, ok := operation.Data.(*NamedRequest[ResourceGroup]); ok {
				return b.client.ResourceGroups().CreateOrUpdate(ctx, req.Name, req.Request)
			}

			return nil, fmt.Errorf("%w create", ErrInvalidDataTypeGroup)
		},
		func() (interface{}, error) {
			if req, ok := operation.Data.(*NamedRequest[ResourceGroupPatch]); ok {
				return b.client.ResourceGroups().Update(ctx, req.Name, req.Request)
			}

			return nil, fmt.Errorf("%w update", ErrInvalidDataTypeGroup)
		},
		func() (interface{}, error) {
			if name, ok := operation.Data.(string); ok {
				poller, err := b.client.ResourceGroups().BeginDelete(ctx, name)
				if err != nil {
					return nil, fmt.Errorf("failed to delete resource group: %w", err)
				}

				return poller.PollUntilDone(ctx, nil)
			}

			return nil, fmt.Errorf("%w delete", ErrInvalidDataTypeGroup)
		},
		func() (interface{}, error) {
			if name, ok := operation.Data.(string); ok {
				return b.client.ResourceGroups().Get(ctx, name)
			}

			return nil, fmt.Errorf("%w get", ErrInvalidDataTypeGroup)
		},
	)
}

// executeDeploymentOperation handles deployment operations.
func (b *BatchExecutor) executeDeploymentOperation(ctx context.Context, operation BatchOperation) *BatchResult {
	return handleCrudOperation(operation,
		func() (interface{}, error) {
			if req, ok := operation.Data.(*ScopedRequest[DeploymentRequest]); ok {
				poller, err := b.client.Deployments().BeginCreateOrUpdate(ctx, req.Scope, req.Name, req.Request)
				if err != nil {
					return nil, fmt.Errorf("failed to create deployment: %w", err)
				}

				return poller.PollUntilDone(ctx, nil)
			}

			return nil, fmt.Errorf("%w create", ErrInvalidDataTypeDeployment)
		},
		func() (interface{}, error) {
			return nil, fmt.Errorf("%w update", ErrInvalidDataTypeDeployment)
		},
		func() (interface{}, error) {
			if req, ok := operation.Data.(*ScopedRequest[struct{}]); ok {
				poller, err := b.client.Deployments().BeginDelete(ctx, req.Scope, req.Name)
				if err != nil {
					return nil, fmt.Errorf("failed to delete deployment: %w", err)
				}

				return poller.PollUntilDone(ctx, nil)
			}

			return nil, fmt.Errorf("%w delete", ErrInvalidDataTypeDeployment)
		},
		func() (interface{}, error) {
			if req, ok := operation.Data.(*ScopedRequest[struct{}]); ok {
				return b.client.Deployments().Get(ctx, req.Scope, req.Name)
			}

			return nil, fmt.Errorf("%w get", ErrInvalidDataTypeDeployment)
		},
	)
}

// executeStorageOperation handles storage account operations.
func (b *BatchExecutor) executeStorageOperation(ctx context.Context, operation BatchOperation) *BatchResult {
	return handleCrudOperation(operation,
		func() (interface{}, error) {
			if req, ok := operation.Data.(*ScopedRequest[StorageAccountCreateRequest]); ok {
				poller, err := b.client.StorageAccounts().BeginCreate(ctx, req.Scope, req.Name, req.Request)
				if err != nil {
					return nil, fmt.Errorf("failed to create storage account: %w", err)
				}

				return poller.PollUntilDone(ctx, nil)
			}

			return nil, fmt.Errorf("%w create", ErrInvalidDataTypeStorage)
		},
		func() (interface{}, error) {
			return nil, fmt.Errorf("%w update", ErrInvalidDataTypeStorage)
		},
		func() (interface{}, error) {
			if req, ok := operation.Data.(*ScopedRequest[struct{}]); ok {
				err := b.client.StorageAccounts().Delete(ctx, req.Scope, req.Name)
				if err != nil {
					return nil, fmt.Errorf("failed to delete storage account: %w", err)
				}

				return nil, nil
			}

			return nil, fmt.Errorf("%w delete", ErrInvalidDataTypeStorage)
		},
		func() (interface{}, error) {
			if req, ok := operation.Data.(*ScopedRequest[struct{}]); ok {
				return b.client.StorageAccounts().Get(ctx, req.Scope, req.Name)
			}

			return nil, fmt.Errorf("%w get", ErrInvalidDataTypeStorage)
		},
	)
}

// ScopedRequest pairs a resource group scope and name with a request body.
type ScopedRequest[T any] struct {
	Scope   string // resource group name
	Name    string
	Request *T
}

// BatchBuilder helps build batch operations.
type BatchBuilder struct {
	operations []BatchOperation
}

// NewBatchBuilder creates a new batch builder.
func NewBatchBuilder() *BatchBuilder {
	return &BatchBuilder{
		operations: make([]BatchOperation, 0),
	}
}

// AddCreateGroup adds a resource group create operation.
func (b *BatchBuilder) AddCreateGroup(id, name string, request *ResourceGroup) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "create",
		Resource: "resource_group",
		Data:     &NamedRequest[ResourceGroup]{Name: name, Request: request},
	})

	return b
}

// AddDeleteGroup adds a resource group delete operation.
func (b *BatchBuilder) AddDeleteGroup(id, name string) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "delete",
		Resource: "resource_group",
		Data:     name,
	})

	return b
}

// AddGetGroup adds a resource group get operation.
func (b *BatchBuilder) AddGetGroup(id, name string) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "get",
		Resource: "resource_group",
		Data:     name,
	})

	return b
}

// AddCreateDeployment adds a deployment create operation.
func (b *BatchBuilder) AddCreateDeployment(id, scope, name string, request *DeploymentRequest) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "create",
		Resource: "deployment",
		Data:     &ScopedRequest[DeploymentRequest]{Scope: scope, Name: name, Request: request},
	})

	return b
}

// AddCreateStorageAccount adds a storage account create operation.
func (b *BatchBuilder) AddCreateStorageAccount(id, scope, name string, request *StorageAccountCreateRequest) *BatchBuilder {
	b.operations = append(b.operations, BatchOperation{
		ID:       id,
		Type:     "create",
		Resource: "storage_account",
		Data:     &ScopedRequest[StorageAccountCreateRequest]{Scope: scope, Name: name, Request: request},
	})

	return b
}

// AddOperation adds a custom operation.
func (b *BatchBuilder) AddOperation(operation BatchOperation) *BatchBuilder {
	b.operations = append(b.operations, operation)

	return b
}

// Build returns the built operations.
func (b *BatchBuilder) Build() []BatchOperation {
	return b.operations
}
