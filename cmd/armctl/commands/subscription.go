package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ansolan/armclient/pkg/arm"
)

// NewSubscriptionCommand creates the subscription command group.
func NewSubscriptionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscription",
		Short: "Inspect the configured subscription",
	}

	cmd.AddCommand(newSubscriptionShowCommand())

	return cmd
}

func newSubscriptionShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show details of the configured subscription",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			subscription, err := client.GetSubscription(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get subscription: %w", err)
			}

			return outputResult(subscription, func() error {
				return renderSubscriptionTable(subscription)
			})
		},
	}
}

func renderSubscriptionTable(subscription *arm.Subscription) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	_ = table.Append("Subscription ID", subscription.SubscriptionID)
	_ = table.Append("Display Name", valueOr(subscription.DisplayName))
	_ = table.Append("State", valueOr(subscription.State))
	_ = table.Append("Tenant ID", valueOr(subscription.TenantID))

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
