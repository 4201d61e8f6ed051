package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ansolan/armclient/pkg/arm"
)

// NewGroupsCommand creates the resource groups command group.
func NewGroupsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "group",
		Aliases: []string{"groups", "rg"},
		Short:   "Manage resource groups",
		Long:    "List and manage resource groups in the subscription",
	}

	cmd.AddCommand(newGroupsListCommand())
	cmd.AddCommand(newGroupsShowCommand())
	cmd.AddCommand(newGroupsCreateCommand())
	cmd.AddCommand(newGroupsUpdateCommand())
	cmd.AddCommand(newGroupsDeleteCommand())
	cmd.AddCommand(newGroupsExistsCommand())

	return cmd
}

func newGroupsListCommand() *cobra.Command {
	var (
		allPages bool
		top      int
		filter   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resource groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			ctx := context.Background()

			params := arm.NewQueryParams()
			if top > 0 {
				params.WithTop(top)
			}

			if filter != "" {
				params.WithFilter(filter)
			}

			groups, err := collectGroups(ctx, client, params, allPages)
			if err != nil {
				return err
			}

			return outputResult(groups, func() error {
				return renderGroupsTable(groups)
			})
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&top, "top", 0, "maximum results per page")
	cmd.Flags().StringVar(&filter, "filter", "", "OData filter expression")

	return cmd
}

func collectGroups(ctx context.Context, client arm.Client, params *arm.QueryParams, allPages bool) ([]arm.ResourceGroup, error) {
	if allPages {
		iterator := client.ResourceGroups().NewListIterator(ctx, params)

		groups, err := iterator.All()
		if err != nil {
			return nil, fmt.Errorf("failed to list resource groups: %w", err)
		}

		return groups, nil
	}

	result, err := client.ResourceGroups().List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list resource groups: %w", err)
	}

	if result.NextLink != "" {
		fmt.Fprintln(os.Stderr, "More results available. Use --all to fetch all pages.")
	}

	return result.Value, nil
}

func renderGroupsTable(groups []arm.ResourceGroup) error {
	if len(groups) == 0 {
		_, _ = os.Stdout.WriteString("No resource groups found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Name", "Location", "State", "Tags")

	for _, group := range groups {
		state := NotAvailable
		if group.Properties != nil {
			state = valueOr(group.Properties.ProvisioningState)
		}

		_ = table.Append(group.Name, group.Location, state, formatTags(group.Tags))
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func formatTags(tags map[string]string) string {
	if len(tags) == 0 {
		return NotAvailable
	}

	pairs := make([]string, 0, len(tags))
	for key, value := range tags {
		pairs = append(pairs, key+"="+value)
	}

	return strings.Join(pairs, ",")
}

func newGroupsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a resource group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			group, err := client.ResourceGroups().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get resource group: %w", err)
			}

			return outputResult(group, func() error {
				return renderGroupsTable([]arm.ResourceGroup{*group})
			})
		},
	}
}

func newGroupsCreateCommand() *cobra.Command {
	var (
		location string
		tags     []string
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create or update a resource group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if location == "" {
				return ErrLocationRequired
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			group := &arm.ResourceGroup{}
			group.Location = location
			group.Tags = parseTags(tags)

			created, err := client.ResourceGroups().CreateOrUpdate(context.Background(), args[0], group)
			if err != nil {
				return fmt.Errorf("failed to create resource group: %w", err)
			}

			fmt.Printf("Created resource group %s in %s\n", created.Name, created.Location)

			return nil
		},
	}

	cmd.Flags().StringVarP(&location, "location", "l", "", "region for the resource group")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag in key=value form (repeatable)")

	return cmd
}

func parseTags(pairs []string) map[string]string {
	if len(pairs) == 0 {
		return nil
	}

	tags := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if found {
			tags[key] = value
		}
	}

	return tags
}

func newGroupsUpdateCommand() *cobra.Command {
	var tags []string

	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Update a resource group's tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			patch := &arm.ResourceGroupPatch{Tags: parseTags(tags)}

			updated, err := client.ResourceGroups().Update(context.Background(), args[0], patch)
			if err != nil {
				return fmt.Errorf("failed to update resource group: %w", err)
			}

			fmt.Printf("Updated resource group %s\n", updated.Name)

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag in key=value form (repeatable)")

	return cmd
}

func newGroupsDeleteCommand() *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a resource group",
		Long:  "Delete a resource group and all resources it contains",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			ctx := context.Background()

			poller, err := client.ResourceGroups().BeginDelete(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to delete resource group: %w", err)
			}

			if !wait {
				fmt.Printf("Deletion of resource group %s started\n", args[0])

				return nil
			}

			if _, err := poller.PollUntilDone(ctx, nil); err != nil {
				return fmt.Errorf("deletion failed: %w", err)
			}

			fmt.Printf("Deleted resource group %s\n", args[0])

			return nil
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the deletion to complete")

	return cmd
}

func newGroupsExistsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "exists <name>",
		Short: "Check whether a resource group exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			exists, err := client.ResourceGroups().CheckExistence(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to check resource group: %w", err)
			}

			fmt.Println(exists)

			return nil
		},
	}
}
