// Package transport defines the interfaces for RPC communication between the
// router and the shard servers. It provides a common contract that all transport
// implementations must fulfill, enabling protocol-agnostic communication.
//
// Key Components:
//
//   - IRPCClientTransport: Interface for client-side transport implementations that
//     handles connection management and request sending. Every send carries the
//     caller's context so the router's per-shard timeout reaches the wire.
//
//   - IRPCServerTransport: Interface for server-side transport implementations that
//     receives requests and routes them to appropriate handlers.
//
//   - ServerHandleFunc: Function type for request handling callbacks.
//
// The only implementation is the HTTP transport in the http subpackage.
package transport
