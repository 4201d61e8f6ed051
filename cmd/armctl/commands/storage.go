package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ansolan/armclient/pkg/arm"
)

// NewStorageCommand creates the storage accounts command group.
func NewStorageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "storage",
		Aliases: []string{"sa"},
		Short:   "Manage storage accounts",
		Long:    "Create, list and manage storage accounts",
	}

	cmd.AddCommand(newStorageListCommand())
	cmd.AddCommand(newStorageShowCommand())
	cmd.AddCommand(newStorageCreateCommand())
	cmd.AddCommand(newStorageDeleteCommand())
	cmd.AddCommand(newStorageCheckNameCommand())

	return cmd
}

func newStorageListCommand() *cobra.Command {
	var allPages bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List storage accounts in the subscription",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			ctx := context.Background()

			var accounts []arm.StorageAccount

			if allPages {
				accounts, err = client.StorageAccounts().NewListIterator(ctx, nil).All()
			} else {
				var result *arm.ListResult[arm.StorageAccount]

				result, err = client.StorageAccounts().List(ctx, nil)
				if result != nil {
					accounts = result.Value

					if result.NextLink != "" {
						fmt.Fprintln(os.Stderr, "More results available. Use --all to fetch all pages.")
					}
				}
			}

			if err != nil {
				return fmt.Errorf("failed to list storage accounts: %w", err)
			}

			return outputResult(accounts, func() error {
				return renderStorageTable(accounts)
			})
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")

	return cmd
}

func renderStorageTable(accounts []arm.StorageAccount) error {
	if len(accounts) == 0 {
		_, _ = os.Stdout.WriteString("No storage accounts found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Name", "Location", "SKU", "Kind", "State")

	for _, account := range accounts {
		sku := NotAvailable
		if account.SKU != nil {
			sku = account.SKU.Name
		}

		state := NotAvailable
		if account.Properties != nil {
			state = valueOr(account.Properties.ProvisioningState)
		}

		_ = table.Append(account.Name, account.Location, sku, valueOr(account.Kind), state)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func newStorageShowCommand() *cobra.Command {
	var resourceGroup string

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show a storage account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if resourceGroup == "" {
				return ErrGroupNameRequired
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			account, err := client.StorageAccounts().Get(context.Background(), resourceGroup, args[0])
			if err != nil {
				return fmt.Errorf("failed to get storage account: %w", err)
			}

			return outputResult(account, func() error {
				return renderStorageTable([]arm.StorageAccount{*account})
			})
		},
	}

	cmd.Flags().StringVarP(&resourceGroup, "group", "g", "", "resource group name")

	return cmd
}

func newStorageCreateCommand() *cobra.Command {
	var (
		resourceGroup string
		location      string
		sku           string
		kind          string
		wait          bool
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a storage account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if resourceGroup == "" {
				return ErrGroupNameRequired
			}

			if location == "" {
				return ErrLocationRequired
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			ctx := context.Background()

			request := &arm.StorageAccountCreateRequest{
				Location: location,
				SKU:      &arm.SKU{Name: sku},
				Kind:     kind,
			}

			poller, err := client.StorageAccounts().BeginCreate(ctx, resourceGroup, args[0], request)
			if err != nil {
				return fmt.Errorf("failed to create storage account: %w", err)
			}

			if !wait {
				fmt.Printf("Creation of storage account %s started\n", args[0])

				return nil
			}

			account, err := poller.PollUntilDone(ctx, nil)
			if err != nil {
				return fmt.Errorf("creation failed: %w", err)
			}

			fmt.Printf("Created storage account %s\n", account.Name)

			return nil
		},
	}

	cmd.Flags().StringVarP(&resourceGroup, "group", "g", "", "resource group name")
	cmd.Flags().StringVarP(&location, "location", "l", "", "region for the account")
	cmd.Flags().StringVar(&sku, "sku", "Standard_LRS", "SKU name")
	cmd.Flags().StringVar(&kind, "kind", "StorageV2", "account kind")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the creation to complete")

	return cmd
}

func newStorageDeleteCommand() *cobra.Command {
	var resourceGroup string

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a storage account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if resourceGroup == "" {
				return ErrGroupNameRequired
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			if err := client.StorageAccounts().Delete(context.Background(), resourceGroup, args[0]); err != nil {
				return fmt.Errorf("failed to delete storage account: %w", err)
			}

			fmt.Printf("Deleted storage account %s\n", args[0])

			return nil
		},
	}

	cmd.Flags().StringVarP(&resourceGroup, "group", "g", "", "resource group name")

	return cmd
}

func newStorageCheckNameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check-name <name>",
		Short: "Check storage account name availability",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			result, err := client.StorageAccounts().CheckNameAvailability(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to check name availability: %w", err)
			}

			if result.NameAvailable {
				fmt.Printf("Name %s is available\n", args[0])
			} else {
				fmt.Printf("Name %s is not available: %s\n", args[0], valueOr(result.Message))
			}

			return nil
		},
	}
}
