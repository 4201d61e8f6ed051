package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ExtendedHTTPTimeout is used for longer operations.
	ExtendedHTTPTimeout = 45 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry and concurrency limits.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 5

	// LowRetryMax is used for operations that should retry fewer times.
	LowRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second

	// ExtendedRetryWaitMax is used for operations that need longer waits.
	ExtendedRetryWaitMax = 30 * time.Second
)

// Concurrency and batching limits.
const (
	// DefaultConcurrencyLimit limits concurrent operations.
	DefaultConcurrencyLimit = 3

	// DefaultBatchConcurrency limits concurrent batch operations.
	DefaultBatchConcurrency = 5

	// BufferSize is the default buffer size for channels.
	BufferSize = 100

	// SmallBufferSize is used for smaller buffers.
	SmallBufferSize = 10
)

// Polling intervals and timeouts.
const (
	// DefaultPollFrequency is the default delay between operation polls when
	// the server does not supply a Retry-After value.
	DefaultPollFrequency = 1 * time.Second

	// QuickPollFrequency is used by tests for fast polling.
	QuickPollFrequency = 10 * time.Millisecond

	// DefaultPollTimeout bounds how long a blocking wait polls an operation.
	DefaultPollTimeout = 15 * time.Minute
)

// Pagination and display limits.
const (
	// DefaultPageSize is the default number of items per page.
	DefaultPageSize = 10

	// StandardPageSize is the common page size for API responses.
	StandardPageSize = 50
)

// HTTP status codes commonly used.
const (
	// HTTPStatusOK represents a successful HTTP response.
	HTTPStatusOK = 200

	// HTTPStatusAccepted represents an in-progress asynchronous operation.
	HTTPStatusAccepted = 202

	// HTTPStatusBadRequest represents a client error.
	HTTPStatusBadRequest = 400

	// HTTPStatusInternalServerError represents server errors.
	HTTPStatusInternalServerError = 500
)

// Token handling.
const (
	// TokenExpirationBuffer is the buffer time before token expiration at
	// which a cached token is considered stale.
	TokenExpirationBuffer = 30 * time.Second
)

// Caching.
const (
	// DefaultCacheSize is the maximum number of entries in the memory cache.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the lifetime of a cached GET response.
	DefaultCacheTTL = 30 * time.Second
)

// Circuit breaker defaults.
const (
	// CircuitBreakerThreshold is the number of failures before opening.
	CircuitBreakerThreshold = 5

	// CircuitBreakerTimeout is the time before a half-open retry.
	CircuitBreakerTimeout = 30 * time.Second

	// CircuitBreakerSuccessThreshold is the number of successes to close.
	CircuitBreakerSuccessThreshold = 2
)

// Default ARM endpoints and API versions.
const (
	// DefaultManagementEndpoint is the public Azure Resource Manager endpoint.
	DefaultManagementEndpoint = "https://management.azure.com"

	// DefaultAuthorityEndpoint is the public token authority.
	DefaultAuthorityEndpoint = "https://login.microsoftonline.com"

	// ResourcesAPIVersion is the api-version for resource group and
	// deployment operations.
	ResourcesAPIVersion = "2021-04-01"

	// StorageAPIVersion is the api-version for storage account operations.
	StorageAPIVersion = "2023-01-01"
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// None is used when no value is present.
	None = "none"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"
)

// State and status constants.
const (
	// StatusOpen indicates an open circuit state.
	StatusOpen = "open"

	// StatusHalfOpen indicates a half-open circuit state.
	StatusHalfOpen = "half-open"

	// StatusClosed indicates a closed circuit state.
	StatusClosed = "closed"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)
