package arm

import (
	"net/http"
	"time"
)

// Response is a captured HTTP response. The body has been fully read and the
// underlying stream closed; a Response can be inspected any number of times.
type Response struct {
	// StatusCode is the numeric HTTP status.
	StatusCode int

	// Status is the full status line, e.g. "409 Conflict".
	Status string

	// Headers holds the response headers with duplicates preserved.
	Headers http.Header

	// Body is the raw response body.
	Body []byte

	// RequestMethod and RequestURL identify the request that produced this
	// response. The poller uses them to re-fetch the original resource.
	RequestMethod string
	RequestURL    string

	// Error carries a translation error when the response is passed through
	// an interceptor chain. It is nil for responses returned by the client.
	Error error
}

// OperationState is the classification of an asynchronous server operation.
type OperationState string

const (
	OperationStateNotStarted OperationState = "NotStarted"
	OperationStateRunning    OperationState = "Running"
	OperationStateSucceeded  OperationState = "Succeeded"
	OperationStateFailed     OperationState = "Failed"
	OperationStateCanceled   OperationState = "Canceled"
)

// Terminal reports whether no further polling will change the state.
func (s OperationState) Terminal() bool {
	return s == OperationStateSucceeded || s == OperationStateFailed || s == OperationStateCanceled
}

// OperationStatus is the body returned by an Azure-AsyncOperation status URL.
type OperationStatus struct {
	ID              string     `json:"id,omitempty"`
	Name            string     `json:"name,omitempty"`
	Status          string     `json:"status"`
	StartTime       *time.Time `json:"startTime,omitempty"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	PercentComplete float64    `json:"percentComplete,omitempty"`
	Error           *ErrorInfo `json:"error,omitempty"`
}

// ListResult is one page of a paginated list response.
type ListResult[T any] struct {
	Value    []T    `json:"value"              yaml:"value"`
	NextLink string `json:"nextLink,omitempty" yaml:"nextLink,omitempty"`
}

// Resource holds the fields common to all tracked ARM resources.
type Resource struct {
	ID       string            `json:"id,omitempty"       yaml:"id,omitempty"`
	Name     string            `json:"name,omitempty"     yaml:"name,omitempty"`
	Type     string            `json:"type,omitempty"     yaml:"type,omitempty"`
	Location string            `json:"location,omitempty" yaml:"location,omitempty"`
	Tags     map[string]string `json:"tags,omitempty"     yaml:"tags,omitempty"`
}

// Provisioning states reported in resource properties.
const (
	ProvisioningStateSucceeded = "Succeeded"
	ProvisioningStateFailed    = "Failed"
	ProvisioningStateCanceled  = "Canceled"
	ProvisioningStateDeleting  = "Deleting"
	ProvisioningStateAccepted  = "Accepted"
)

// ResourceGroup represents an ARM resource group.
type ResourceGroup struct {
	Resource   `yaml:",inline"`
	ManagedBy  string                   `json:"managedBy,omitempty"  yaml:"managedBy,omitempty"`
	Properties *ResourceGroupProperties `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// ResourceGroupProperties holds the mutable state of a resource group.
type ResourceGroupProperties struct {
	ProvisioningState string `json:"provisioningState,omitempty" yaml:"provisioningState,omitempty"`
}

// ResourceGroupPatch is the payload for a partial resource group update.
type ResourceGroupPatch struct {
	Tags      map[string]string `json:"tags,omitempty"      yaml:"tags,omitempty"`
	ManagedBy string            `json:"managedBy,omitempty" yaml:"managedBy,omitempty"`
}

// ResourceGroupDeleteResponse is the (empty) final value of a resource group
// delete operation.
type ResourceGroupDeleteResponse struct{}

// Deployment represents an ARM template deployment.
type Deployment struct {
	ID         string                `json:"id,omitempty"         yaml:"id,omitempty"`
	Name       string                `json:"name,omitempty"       yaml:"name,omitempty"`
	Type       string                `json:"type,omitempty"       yaml:"type,omitempty"`
	Location   string                `json:"location,omitempty"   yaml:"location,omitempty"`
	Tags       map[string]string     `json:"tags,omitempty"       yaml:"tags,omitempty"`
	Properties *DeploymentProperties `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// DeploymentProperties holds deployment result state.
type DeploymentProperties struct {
	ProvisioningState string                 `json:"provisioningState,omitempty" yaml:"provisioningState,omitempty"`
	CorrelationID     string                 `json:"correlationId,omitempty"     yaml:"correlationId,omitempty"`
	Timestamp         *time.Time             `json:"timestamp,omitempty"         yaml:"timestamp,omitempty"`
	Duration          string                 `json:"duration,omitempty"          yaml:"duration,omitempty"`
	Outputs           map[string]interface{} `json:"outputs,omitempty"           yaml:"outputs,omitempty"`
	Error             *ErrorInfo             `json:"error,omitempty"             yaml:"error,omitempty"`
}

// DeploymentMode controls how a deployment applies the template.
type DeploymentMode string

const (
	// DeploymentModeIncremental leaves unmanaged resources untouched.
	DeploymentModeIncremental DeploymentMode = "Incremental"

	// DeploymentModeComplete deletes resources not in the template.
	DeploymentModeComplete DeploymentMode = "Complete"
)

// DeploymentRequest is the payload for creating or validating a deployment.
type DeploymentRequest struct {
	Location   string                       `json:"location,omitempty" yaml:"location,omitempty"`
	Tags       map[string]string            `json:"tags,omitempty"     yaml:"tags,omitempty"`
	Properties *DeploymentRequestProperties `json:"properties"         yaml:"properties"`
}

// DeploymentRequestProperties carries the template and its parameters.
type DeploymentRequestProperties struct {
	Template   map[string]interface{} `json:"template,omitempty"   yaml:"template,omitempty"`
	Parameters map[string]interface{} `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Mode       DeploymentMode         `json:"mode"                 yaml:"mode"`
}

// DeploymentDeleteResponse is the (empty) final value of a deployment delete.
type DeploymentDeleteResponse struct{}

// DeploymentValidateResult is the outcome of a deployment validation call.
type DeploymentValidateResult struct {
	ID         string                `json:"id,omitempty"         yaml:"id,omitempty"`
	Name       string                `json:"name,omitempty"       yaml:"name,omitempty"`
	Properties *DeploymentProperties `json:"properties,omitempty" yaml:"properties,omitempty"`
	Error      *ErrorInfo            `json:"error,omitempty"      yaml:"error,omitempty"`
}

// StorageAccount represents a storage account resource.
type StorageAccount struct {
	Resource   `yaml:",inline"`
	SKU        *SKU                      `json:"sku,omitempty"        yaml:"sku,omitempty"`
	Kind       string                    `json:"kind,omitempty"       yaml:"kind,omitempty"`
	Properties *StorageAccountProperties `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// SKU identifies a resource pricing tier.
type SKU struct {
	Name string `json:"name"           yaml:"name"`
	Tier string `json:"tier,omitempty" yaml:"tier,omitempty"`
}

// StorageAccountProperties holds storage account state.
type StorageAccountProperties struct {
	ProvisioningState string            `json:"provisioningState,omitempty" yaml:"provisioningState,omitempty"`
	PrimaryEndpoints  *StorageEndpoints `json:"primaryEndpoints,omitempty"  yaml:"primaryEndpoints,omitempty"`
	StatusOfPrimary   string            `json:"statusOfPrimary,omitempty"   yaml:"statusOfPrimary,omitempty"`
	AccessTier        string            `json:"accessTier,omitempty"        yaml:"accessTier,omitempty"`
}

// StorageEndpoints lists the service endpoints of a storage account.
type StorageEndpoints struct {
	Blob  string `json:"blob,omitempty"  yaml:"blob,omitempty"`
	Queue string `json:"queue,omitempty" yaml:"queue,omitempty"`
	Table string `json:"table,omitempty" yaml:"table,omitempty"`
	File  string `json:"file,omitempty"  yaml:"file,omitempty"`
}

// StorageAccountCreateRequest is the payload for creating a storage account.
type StorageAccountCreateRequest struct {
	Location   string                    `json:"location"             yaml:"location"`
	SKU        *SKU                      `json:"sku"                  yaml:"sku"`
	Kind       string                    `json:"kind"                 yaml:"kind"`
	Tags       map[string]string         `json:"tags,omitempty"       yaml:"tags,omitempty"`
	Properties *StorageAccountProperties `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// CheckNameAvailabilityRequest asks whether a resource name is free.
type CheckNameAvailabilityRequest struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// CheckNameAvailabilityResult reports name availability.
type CheckNameAvailabilityResult struct {
	NameAvailable bool   `json:"nameAvailable"     yaml:"nameAvailable"`
	Reason        string `json:"reason,omitempty"  yaml:"reason,omitempty"`
	Message       string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Provider represents a resource provider registration.
type Provider struct {
	ID                string                 `json:"id,omitempty"                yaml:"id,omitempty"`
	Namespace         string                 `json:"namespace,omitempty"         yaml:"namespace,omitempty"`
	RegistrationState string                 `json:"registrationState,omitempty" yaml:"registrationState,omitempty"`
	ResourceTypes     []ProviderResourceType `json:"resourceTypes,omitempty"     yaml:"resourceTypes,omitempty"`
}

// ProviderResourceType describes one resource type offered by a provider.
type ProviderResourceType struct {
	ResourceType string   `json:"resourceType,omitempty" yaml:"resourceType,omitempty"`
	Locations    []string `json:"locations,omitempty"    yaml:"locations,omitempty"`
	APIVersions  []string `json:"apiVersions,omitempty"  yaml:"apiVersions,omitempty"`
}

// Subscription describes the subscription the client is scoped to.
type Subscription struct {
	ID             string `json:"id,omitempty"             yaml:"id,omitempty"`
	SubscriptionID string `json:"subscriptionId,omitempty" yaml:"subscriptionId,omitempty"`
	DisplayName    string `json:"displayName,omitempty"    yaml:"displayName,omitempty"`
	State          string `json:"state,omitempty"          yaml:"state,omitempty"`
	TenantID       string `json:"tenantId,omitempty"       yaml:"tenantId,omitempty"`
}
