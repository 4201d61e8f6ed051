package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/ansolan/armclient/pkg/arm"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		subscription string
		endpoint     string
		tenantID     string
		clientID     string
		clientSecret string
		accessToken  string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to a management endpoint",
		Long:  "Authenticate against the management endpoint and persist the credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if subscription == "" {
				subscription = viper.GetString("subscription")
			}

			if subscription == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("Subscription ID: ")
				subscription, _ = reader.ReadString('\n')
				subscription = strings.TrimSpace(subscription)
			}

			if subscription == "" {
				return ErrSubscriptionRequired
			}

			config := &arm.Config{
				SubscriptionID: subscription,
				Endpoint:       endpoint,
				SkipTLSVerify:  viper.GetBool("skip-ssl-validation"),
			}

			switch {
			case accessToken != "":
				config.AccessToken = accessToken

			case clientID != "":
				if clientSecret == "" {
					fmt.Print("Client secret: ")

					byteSecret, err := term.ReadPassword(int(syscall.Stdin))
					if err != nil {
						return fmt.Errorf("failed to read client secret: %w", err)
					}

					clientSecret = string(byteSecret)

					fmt.Println()
				}

				config.TenantID = tenantID
				config.ClientID = clientID
				config.ClientSecret = clientSecret

			default:
				return ErrNotLoggedIn
			}

			// Verify the credentials before persisting them
			client, err := newClient(config)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			sub, err := client.GetSubscription(context.Background())
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			viper.Set("subscription", subscription)
			viper.Set("endpoint", endpoint)
			viper.Set("tenant", tenantID)
			viper.Set("client-id", clientID)
			viper.Set("client-secret", clientSecret)
			viper.Set("token", accessToken)

			if err := viper.WriteConfig(); err != nil {
				// First login has no config file yet
				if err = viper.SafeWriteConfig(); err != nil {
					return fmt.Errorf("failed to save config: %w", err)
				}
			}

			fmt.Printf("Logged in to subscription %s (%s)\n", sub.SubscriptionID, valueOr(sub.DisplayName))

			return nil
		},
	}

	cmd.Flags().StringVarP(&subscription, "subscription", "s", "", "subscription ID")
	cmd.Flags().StringVarP(&endpoint, "endpoint", "e", "", "management endpoint URL")
	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant ID for client credentials")
	cmd.Flags().StringVar(&clientID, "client-id", "", "client ID for client credentials")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "client secret for client credentials")
	cmd.Flags().StringVar(&accessToken, "access-token", "", "pre-acquired bearer token")

	return cmd
}
