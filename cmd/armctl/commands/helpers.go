// Package commands implements the armctl subcommands.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ansolan/armclient/internal/constants"
	"github.com/ansolan/armclient/pkg/arm"
	"github.com/ansolan/armclient/pkg/armclient"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"

	// Output formats.
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"
	OutputFormatTable = "table"
)

// Common static errors used throughout the commands package.
var (
	ErrSubscriptionRequired   = errors.New("subscription ID is required (use --subscription or 'armctl login')")
	ErrGroupNameRequired      = errors.New("resource group name is required")
	ErrDeploymentNameRequired = errors.New("deployment name is required")
	ErrAccountNameRequired    = errors.New("storage account name is required")
	ErrNamespaceRequired      = errors.New("provider namespace is required")
	ErrTemplateFileRequired   = errors.New("template file is required (use --template-file)")
	ErrLocationRequired       = errors.New("location is required (use --location)")
	ErrNotLoggedIn            = errors.New("not logged in, run 'armctl login' first")
)

// CreateClient builds an API client from the effective viper configuration.
func CreateClient() (arm.Client, error) {
	subscription := viper.GetString("subscription")
	if subscription == "" {
		return nil, ErrSubscriptionRequired
	}

	config := &arm.Config{
		SubscriptionID: subscription,
		Endpoint:       viper.GetString("endpoint"),
		TenantID:       viper.GetString("tenant"),
		ClientID:       viper.GetString("client-id"),
		ClientSecret:   viper.GetString("client-secret"),
		AccessToken:    viper.GetString("token"),
		UserAgent:      "armctl",
		SkipTLSVerify:  viper.GetBool("skip-ssl-validation"),
		RetryMax:       constants.LowRetryMax,
	}

	if viper.GetBool("verbose") {
		config.Debug = true
		config.Logger = NewLogger(true)
	}

	return newClient(config)
}

// outputResult renders a value in the configured output format. The table
// renderer is per-command; JSON and YAML are generic.
func outputResult(value interface{}, renderTable func() error) error {
	switch viper.GetString("output") {
	case OutputFormatJSON:
		return outputJSON(value)
	case OutputFormatYAML:
		return outputYAML(value)
	default:
		return renderTable()
	}
}

func outputJSON(value interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(value)
	if err != nil {
		return fmt.Errorf("failed to encode as JSON: %w", err)
	}

	return nil
}

func outputYAML(value interface{}) error {
	encoder := yaml.NewEncoder(os.Stdout)

	err := encoder.Encode(value)
	if err != nil {
		return fmt.Errorf("failed to encode as YAML: %w", err)
	}

	return nil
}

// valueOr returns the value, or a placeholder when empty.
func valueOr(value string) string {
	if value == "" {
		return NotAvailable
	}

	return value
}

// newClient is swapped out in tests.
var newClient = func(config *arm.Config) (arm.Client, error) {
	return armclient.New(context.Background(), config)
}
