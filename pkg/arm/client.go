package arm

import (
	"context"
	"time"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building an arm.Client.
//
// # Authentication precedence
//
// The concrete client implementation applies the following precedence:
//  1. AccessToken: used directly as a static Bearer token.
//  2. ClientID + ClientSecret: a token is obtained from the authority via
//     the client-credentials grant and refreshed before it expires.
//
// When neither is set the client sends unauthenticated requests, which is
// only useful against test servers.
type Config struct {
	// SubscriptionID scopes every resource operation. Required.
	SubscriptionID string

	// Endpoint is the management endpoint. Defaults to the public cloud.
	Endpoint string

	// TenantID, ClientID and ClientSecret configure the client-credentials
	// grant against the authority.
	TenantID     string
	ClientID     string
	ClientSecret string

	// AccessToken is a pre-acquired static Bearer token.
	AccessToken string

	// TokenURL overrides the token endpoint derived from TenantID.
	TokenURL string

	// UserAgent is appended to the client's User-Agent header.
	UserAgent string

	// SkipTLSVerify disables TLS verification; only honored in explicit
	// development environments.
	SkipTLSVerify bool

	// Debug enables request/response logging through Logger.
	Debug bool

	// Logger receives structured log output. Nil disables logging.
	Logger Logger

	// RetryMax enables transport-level retry of transient failures when
	// greater than zero.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// PollFrequency is the default delay between operation polls for
	// blocking waits started through this client; a server Retry-After
	// still acts as a floor.
	PollFrequency time.Duration

	// Cache configures the optional GET response cache.
	Cache *CacheConfig

	// ScopeFactory wraps each request in a diagnostic scope. Nil disables
	// scoping.
	ScopeFactory ScopeFactory
}

// ResourceGroupsClient manages resource groups.
type ResourceGroupsClient interface {
	Get(ctx context.Context, name string) (*ResourceGroup, error)
	CreateOrUpdate(ctx context.Context, name string, group *ResourceGroup) (*ResourceGroup, error)
	Update(ctx context.Context, name string, patch *ResourceGroupPatch) (*ResourceGroup, error)
	List(ctx context.Context, params *QueryParams) (*ListResult[ResourceGroup], error)
	NewListIterator(ctx context.Context, params *QueryParams) *PageIterator[ResourceGroup]
	BeginDelete(ctx context.Context, name string) (*Poller[ResourceGroupDeleteResponse], error)
	CheckExistence(ctx context.Context, name string) (bool, error)
}

// DeploymentsClient manages template deployments.
type DeploymentsClient interface {
	Get(ctx context.Context, resourceGroup, name string) (*Deployment, error)
	BeginCreateOrUpdate(ctx context.Context, resourceGroup, name string, request *DeploymentRequest) (*Poller[Deployment], error)
	BeginDelete(ctx context.Context, resourceGroup, name string) (*Poller[DeploymentDeleteResponse], error)
	List(ctx context.Context, resourceGroup string, params *QueryParams) (*ListResult[Deployment], error)
	NewListIterator(ctx context.Context, resourceGroup string, params *QueryParams) *PageIterator[Deployment]
	Cancel(ctx context.Context, resourceGroup, name string) error
	Validate(ctx context.Context, resourceGroup, name string, request *DeploymentRequest) (*DeploymentValidateResult, error)
}

// StorageAccountsClient manages storage accounts.
type StorageAccountsClient interface {
	Get(ctx context.Context, resourceGroup, name string) (*StorageAccount, error)
	BeginCreate(ctx context.Context, resourceGroup, name string, request *StorageAccountCreateRequest) (*Poller[StorageAccount], error)
	Delete(ctx context.Context, resourceGroup, name string) error
	List(ctx context.Context, params *QueryParams) (*ListResult[StorageAccount], error)
	NewListIterator(ctx context.Context, params *QueryParams) *PageIterator[StorageAccount]
	CheckNameAvailability(ctx context.Context, name string) (*CheckNameAvailabilityResult, error)
}

// ProvidersClient manages resource provider registrations.
type ProvidersClient interface {
	Get(ctx context.Context, namespace string) (*Provider, error)
	List(ctx context.Context, params *QueryParams) (*ListResult[Provider], error)
	NewListIterator(ctx context.Context, params *QueryParams) *PageIterator[Provider]
	Register(ctx context.Context, namespace string) (*Provider, error)
	Unregister(ctx context.Context, namespace string) (*Provider, error)
}

// SubscriptionClient provides access to subscription information.
type SubscriptionClient interface {
	GetSubscription(ctx context.Context) (*Subscription, error)
}

// Client provides access to all resource-specific clients.
type Client interface {
	SubscriptionClient

	ResourceGroups() ResourceGroupsClient
	Deployments() DeploymentsClient
	StorageAccounts() StorageAccountsClient
	Providers() ProvidersClient
}
