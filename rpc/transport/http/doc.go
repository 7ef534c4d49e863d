// Package http implements the HTTP transport for RPC communication between the
// router and the shard servers.
//
// Routes served by the server side:
//
//	POST /{shardId}   serialized common.Message for the collection with that shard ID
//	GET  /health      liveness probe, answers "ok"
//	GET  /metrics     Prometheus exposition of all VictoriaMetrics counters of the process
//
// The client side round-robins over the configured endpoints. A request moves on to
// the next endpoint only if no connection could be dialed, up to RetryCount attempts.
// Once a request reached a server it is never repeated, so a write is applied at most once.
// Every request is bound to the caller's context, so the router's per-shard timeout
// cancels requests in flight.
//
// NewHandler exposes the routes as a plain http.Handler, which lets tests serve a
// shard server with net/http/httptest.
package http
