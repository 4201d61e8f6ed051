// Package armclient provides the primary entry point for constructing a
// management API client that implements the arm.Client interface.
//
// It layers configuration, HTTP transport, and authentication on top of the
// resource interfaces and types defined in the arm package. Most applications
// should import armclient to build a client, then use the returned arm.Client
// to access resource-specific clients, for example ResourceGroups(),
// Deployments(), StorageAccounts(), Providers().
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/ansolan/armclient/pkg/arm"
//	  "github.com/ansolan/armclient/pkg/armclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // With an access token you already have:
//	  cli, err := armclient.New(ctx, &arm.Config{
//	    SubscriptionID: "00000000-0000-0000-0000-000000000000",
//	    AccessToken:    "eyJhbGciOi...", // bearer token
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with client credentials. Tokens are obtained from the authority
//	  // and refreshed before they expire.
//	  cli, err = armclient.New(ctx, &arm.Config{
//	    SubscriptionID: "00000000-0000-0000-0000-000000000000",
//	    TenantID:       "tenant-id",
//	    ClientID:       "client-id",
//	    ClientSecret:   "client-secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Use resource clients via the arm.Client interface
//	  groups, err := cli.ResourceGroups().List(ctx, nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = groups
//	}
//
// # Helpers
//
// The package also provides convenience constructors NewWithToken and
// NewWithClientCredentials that wrap New with the appropriate configuration.
package armclient
