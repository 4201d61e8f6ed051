// Package arm provides types, interfaces, and helpers for working with
// Azure-convention resource management APIs.
//
// # Overview
//
// The arm package defines the domain types (e.g., ResourceGroup, Deployment,
// StorageAccount, Provider) and the interfaces for resource-oriented clients
// (e.g., ResourceGroupsClient, DeploymentsClient). A concrete implementation
// of these clients is provided by the armclient package, which wires
// configuration, transport, authentication, and endpoint discovery. Most
// consumers should import armclient to construct a client and then interact
// with the resource client interfaces exposed here.
//
// Getting a client
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
//	  cli, err := armclient.New(ctx, &arm.Config{SubscriptionID: "sub-id"})
//	  if err != nil { log.Fatal(err) }
//
//	  // List the first page of resource groups
//	  groups, err := cli.ResourceGroups().List(ctx, arm.NewQueryParams().WithTop(50))
//	  if err != nil { log.Fatal(err) }
//	  _ = groups
//	}
//
// # Long-running operations
//
// Mutating operations that the service completes asynchronously return a
// Poller. Call PollUntilDone to block until the operation reaches a terminal
// state, or drive individual polls with Poll and Result:
//
//	poller, err := cli.ResourceGroups().BeginDelete(ctx, "my-group")
//	if err != nil { /* handle error */ }
//	_, err = poller.PollUntilDone(ctx, nil)
//
// # Queries and pagination
//
// Use QueryParams to express common list options ($filter, $expand, $top).
// List results arrive one page at a time; the package provides helpers for
// iterating or collecting paginated results:
//
//	it := cli.ResourceGroups().NewListIterator(ctx, nil)
//	for it.HasNext() {
//	  group, err := it.Next()
//	  if err != nil { break }
//	  _ = group
//	}
//
// # Errors
//
// Service errors are represented by ResponseError, built from the standard
// error envelope the management API returns. Helpers such as IsNotFound,
// IsConflict, and IsTooManyRequests make it easy to branch on common cases.
//
// # Interceptors and caching
//
// The package includes generic building blocks such as request/response
// interceptors (for logging, auth headers, rate limiting, circuit breaking)
// and a simple pluggable Cache abstraction with memory and NATS KV backends.
// The armclient package composes these pieces for a sensible default client;
// applications with advanced needs can also use these primitives directly.
package arm
