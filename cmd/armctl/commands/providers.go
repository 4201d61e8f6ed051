package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ansolan/armclient/pkg/arm"
)

// NewProvidersCommand creates the resource providers command group.
func NewProvidersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "provider",
		Aliases: []string{"providers"},
		Short:   "Manage resource providers",
		Long:    "List resource providers and manage their registration state",
	}

	cmd.AddCommand(newProvidersListCommand())
	cmd.AddCommand(newProvidersShowCommand())
	cmd.AddCommand(newProvidersRegisterCommand())
	cmd.AddCommand(newProvidersUnregisterCommand())

	return cmd
}

func newProvidersListCommand() *cobra.Command {
	var allPages bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resource providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			ctx := context.Background()

			var providers []arm.Provider

			if allPages {
				providers, err = client.Providers().NewListIterator(ctx, nil).All()
			} else {
				var result *arm.ListResult[arm.Provider]

				result, err = client.Providers().List(ctx, nil)
				if result != nil {
					providers = result.Value

					if result.NextLink != "" {
						fmt.Fprintln(os.Stderr, "More results available. Use --all to fetch all pages.")
					}
				}
			}

			if err != nil {
				return fmt.Errorf("failed to list providers: %w", err)
			}

			return outputResult(providers, func() error {
				return renderProvidersTable(providers)
			})
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")

	return cmd
}

func renderProvidersTable(providers []arm.Provider) error {
	if len(providers) == 0 {
		_, _ = os.Stdout.WriteString("No providers found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Namespace", "State", "Resource Types")

	for _, provider := range providers {
		_ = table.Append(provider.Namespace, valueOr(provider.RegistrationState), strconv.Itoa(len(provider.ResourceTypes)))
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func newProvidersShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <namespace>",
		Short: "Show a resource provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			provider, err := client.Providers().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get provider: %w", err)
			}

			return outputResult(provider, func() error {
				return renderProvidersTable([]arm.Provider{*provider})
			})
		},
	}
}

func newProvidersRegisterCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "register <namespace>",
		Short: "Register a resource provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			provider, err := client.Providers().Register(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to register provider: %w", err)
			}

			fmt.Printf("Provider %s is %s\n", provider.Namespace, provider.RegistrationState)

			return nil
		},
	}
}

func newProvidersUnregisterCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unregister <namespace>",
		Short: "Unregister a resource provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			provider, err := client.Providers().Unregister(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to unregister provider: %w", err)
			}

			fmt.Printf("Provider %s is %s\n", provider.Namespace, provider.RegistrationState)

			return nil
		},
	}
}
