package constants

import "errors"

// Configuration errors.
var (
	ErrNoSubscriptionConfigured = errors.New("no subscription configured, pass --subscription or set it in the config file")
	ErrNoEndpointConfigured     = errors.New("no management endpoint configured")
	ErrNoCredentialsConfigured  = errors.New("no credentials configured, run 'armctl login' first")
	ErrConfigNotFound           = errors.New("configuration file not found")
)

// Authentication errors.
var (
	ErrNoTokenEndpoint   = errors.New("no token endpoint configured and no tenant to derive one from")
	ErrTokenRequestEmpty = errors.New("token response contained no access token")
	ErrNotAuthenticated  = errors.New("not authenticated, run 'armctl login' first")
)

// Validation errors.
var (
	ErrInvalidOutputFormat = errors.New("invalid output format, expected table, json or yaml")
	ErrGroupNameRequired   = errors.New("resource group name is required")
	ErrAccountNameRequired = errors.New("storage account name is required")
	ErrNamespaceRequired   = errors.New("provider namespace is required")
)
