package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ansolan/armclient/pkg/arm"
)

// NewDeploymentsCommand creates the deployments command group.
func NewDeploymentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "deployment",
		Aliases: []string{"deployments"},
		Short:   "Manage template deployments",
		Long:    "Create, validate and manage template deployments in a resource group",
	}

	cmd.AddCommand(newDeploymentsListCommand())
	cmd.AddCommand(newDeploymentsShowCommand())
	cmd.AddCommand(newDeploymentsCreateCommand())
	cmd.AddCommand(newDeploymentsValidateCommand())
	cmd.AddCommand(newDeploymentsCancelCommand())
	cmd.AddCommand(newDeploymentsDeleteCommand())

	return cmd
}

func newDeploymentsListCommand() *cobra.Command {
	var (
		resourceGroup string
		allPages      bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List deployments",
		RunE: func(cmd *cobra.Command, args []string) error {
			if resourceGroup == "" {
				return ErrGroupNameRequired
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			ctx := context.Background()

			var deployments []arm.Deployment

			if allPages {
				deployments, err = client.Deployments().NewListIterator(ctx, resourceGroup, nil).All()
			} else {
				var result *arm.ListResult[arm.Deployment]

				result, err = client.Deployments().List(ctx, resourceGroup, nil)
				if result != nil {
					deployments = result.Value

					if result.NextLink != "" {
						fmt.Fprintln(os.Stderr, "More results available. Use --all to fetch all pages.")
					}
				}
			}

			if err != nil {
				return fmt.Errorf("failed to list deployments: %w", err)
			}

			return outputResult(deployments, func() error {
				return renderDeploymentsTable(deployments)
			})
		},
	}

	cmd.Flags().StringVarP(&resourceGroup, "group", "g", "", "resource group name")
	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")

	return cmd
}

func renderDeploymentsTable(deployments []arm.Deployment) error {
	if len(deployments) == 0 {
		_, _ = os.Stdout.WriteString("No deployments found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Name", "State", "Timestamp", "Duration")

	for _, deployment := range deployments {
		state, timestamp, duration := NotAvailable, NotAvailable, NotAvailable

		if deployment.Properties != nil {
			state = valueOr(deployment.Properties.ProvisioningState)
			duration = valueOr(deployment.Properties.Duration)

			if deployment.Properties.Timestamp != nil {
				timestamp = deployment.Properties.Timestamp.Format("2006-01-02 15:04:05")
			}
		}

		_ = table.Append(deployment.Name, state, timestamp, duration)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func newDeploymentsShowCommand() *cobra.Command {
	var resourceGroup string

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show a deployment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if resourceGroup == "" {
				return ErrGroupNameRequired
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			deployment, err := client.Deployments().Get(context.Background(), resourceGroup, args[0])
			if err != nil {
				return fmt.Errorf("failed to get deployment: %w", err)
			}

			return outputResult(deployment, func() error {
				return renderDeploymentsTable([]arm.Deployment{*deployment})
			})
		},
	}

	cmd.Flags().StringVarP(&resourceGroup, "group", "g", "", "resource group name")

	return cmd
}

// loadDeploymentRequest builds the request body from template and parameter
// files.
func loadDeploymentRequest(templateFile, parametersFile, mode string) (*arm.DeploymentRequest, error) {
	if templateFile == "" {
		return nil, ErrTemplateFileRequired
	}

	template, err := loadJSONFile(templateFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}

	request := &arm.DeploymentRequest{
		Properties: &arm.DeploymentRequestProperties{
			Template: template,
			Mode:     arm.DeploymentMode(mode),
		},
	}

	if parametersFile != "" {
		parameters, err := loadJSONFile(parametersFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load parameters: %w", err)
		}

		request.Properties.Parameters = parameters
	}

	return request, nil
}

func loadJSONFile(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var content map[string]interface{}
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return content, nil
}

func newDeploymentsCreateCommand() *cobra.Command {
	var (
		resourceGroup  string
		templateFile   string
		parametersFile string
		mode           string
		wait           bool
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create or update a deployment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if resourceGroup == "" {
				return ErrGroupNameRequired
			}

			request, err := loadDeploymentRequest(templateFile, parametersFile, mode)
			if err != nil {
				return err
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			ctx := context.Background()

			poller, err := client.Deployments().BeginCreateOrUpdate(ctx, resourceGroup, args[0], request)
			if err != nil {
				return fmt.Errorf("failed to create deployment: %w", err)
			}

			if !wait {
				fmt.Printf("Deployment %s started\n", args[0])

				return nil
			}

			deployment, err := poller.PollUntilDone(ctx, nil)
			if err != nil {
				return fmt.Errorf("deployment failed: %w", err)
			}

			fmt.Printf("Deployment %s completed\n", deployment.Name)

			return nil
		},
	}

	cmd.Flags().StringVarP(&resourceGroup, "group", "g", "", "resource group name")
	cmd.Flags().StringVar(&templateFile, "template-file", "", "path to the template JSON file")
	cmd.Flags().StringVar(&parametersFile, "parameters-file", "", "path to the parameters JSON file")
	cmd.Flags().StringVar(&mode, "mode", string(arm.DeploymentModeIncremental), "deployment mode (Incremental or Complete)")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the deployment to complete")

	return cmd
}

func newDeploymentsValidateCommand() *cobra.Command {
	var (
		resourceGroup  string
		templateFile   string
		parametersFile string
		mode           string
	)

	cmd := &cobra.Command{
		Use:   "validate <name>",
		Short: "Validate a deployment template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if resourceGroup == "" {
				return ErrGroupNameRequired
			}

			request, err := loadDeploymentRequest(templateFile, parametersFile, mode)
			if err != nil {
				return err
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			result, err := client.Deployments().Validate(context.Background(), resourceGroup, args[0], request)
			if err != nil {
				return fmt.Errorf("failed to validate deployment: %w", err)
			}

			if result.Error != nil {
				fmt.Printf("Validation failed: %s: %s\n", result.Error.Code, result.Error.Message)

				return nil
			}

			fmt.Println("Validation succeeded")

			return nil
		},
	}

	cmd.Flags().StringVarP(&resourceGroup, "group", "g", "", "resource group name")
	cmd.Flags().StringVar(&templateFile, "template-file", "", "path to the template JSON file")
	cmd.Flags().StringVar(&parametersFile, "parameters-file", "", "path to the parameters JSON file")
	cmd.Flags().StringVar(&mode, "mode", string(arm.DeploymentModeIncremental), "deployment mode (Incremental or Complete)")

	return cmd
}

func newDeploymentsCancelCommand() *cobra.Command {
	var resourceGroup string

	cmd := &cobra.Command{
		Use:   "cancel <name>",
		Short: "Cancel a running deployment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if resourceGroup == "" {
				return ErrGroupNameRequired
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			if err := client.Deployments().Cancel(context.Background(), resourceGroup, args[0]); err != nil {
				return fmt.Errorf("failed to cancel deployment: %w", err)
			}

			fmt.Printf("Canceled deployment %s\n", args[0])

			return nil
		},
	}

	cmd.Flags().StringVarP(&resourceGroup, "group", "g", "", "resource group name")

	return cmd
}

func newDeploymentsDeleteCommand() *cobra.Command {
	var (
		resourceGroup string
		wait          bool
	)

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a deployment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if resourceGroup == "" {
				return ErrGroupNameRequired
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			ctx := context.Background()

			poller, err := client.Deployments().BeginDelete(ctx, resourceGroup, args[0])
			if err != nil {
				return fmt.Errorf("failed to delete deployment: %w", err)
			}

			if !wait {
				fmt.Printf("Deletion of deployment %s started\n", args[0])

				return nil
			}

			if _, err := poller.PollUntilDone(ctx, nil); err != nil {
				return fmt.Errorf("deletion failed: %w", err)
			}

			fmt.Printf("Deleted deployment %s\n", args[0])

			return nil
		},
	}

	cmd.Flags().StringVarP(&resourceGroup, "group", "g", "", "resource group name")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the deletion to complete")

	return cmd
}
