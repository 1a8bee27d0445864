// Package cms provides types, interfaces, and helpers for working with a
// microCMS-style content management API.
//
// # Overview
//
// The cms package defines the domain types (Record, ListResult, QueryOptions,
// Schema) and the Client interface. A concrete implementation is provided by
// the cmsclient package, which wires configuration, transport and logging.
// Most consumers should import cmsclient to construct a client and then use
// the Client interface exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/cms-client/pkg/cms"
//	  "github.com/fivetwenty-io/cms-client/pkg/cmsclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := cmsclient.New(&cms.Config{Service: "my-service", APIKey: "..."})
//	  if err != nil { log.Fatal(err) }
//
//	  res := cli.List(ctx, "contents", cms.NewQueryOptions().WithLimit(10).WithFields("id", "title"))
//	  if list, ok := res.Lenient(); ok {
//	    _ = list.Contents
//	  }
//	}
//
// # Results
//
// Every operation returns a Result tagged with its outcome: success, an HTTP
// failure carrying the status code and the API's {message} body, a transport
// failure, a missing credential, or a request rejected by schema validation.
// Operations never panic and never return a bare error. Callers that only care
// about "value or nothing" use Result.Lenient; callers that branch on the exact
// status code use Result.StatusAware.
//
// # Queries
//
// QueryOptions keeps its parameters in insertion order and serializes them as
// ?name=value&name=a,b. The globalKey option selects the X-GLOBAL-DRAFT-KEY
// header and is never written to the query string.
//
// # Schemas
//
// A SchemaSet describes each endpoint's fields, their types and whether they
// are required on create. When a client is bound to a SchemaSet, request bodies
// and field selections are validated before any network I/O.
//
// # Interceptors and batching
//
// The package also includes request/response interceptors (logging, headers,
// metrics), a BatchExecutor that runs many operations with a concurrency cap,
// and pagination helpers built on List.
package cms
