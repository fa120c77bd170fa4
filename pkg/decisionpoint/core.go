// Package decisionpoint provides interfaces and implementations for
// Policy Decision Point (PDP) servers.
//
// A PDP server exposes the administration surface and the check operation
// as a network service that Policy Enforcement Points (PEPs) and
// administration clients can call.
//
// # Usage
//
// Create and start a decision point server:
//
//	svc, _ := admin.NewService(ctx, driver)
//	server, _ := rpc.CreateServer(svc, ":8080")
//	defer server.Stop(ctx)
package decisionpoint

import "context"

// Server is the interface for PDP servers that can be gracefully stopped.
//
// Implementations must ensure that Stop completes any in-flight requests
// before returning.
type Server interface {
	// Stop gracefully shuts down the server, waiting for active requests
	// to complete or until the context is cancelled.
	Stop(context.Context) error
}
