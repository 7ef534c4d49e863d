// Package server implements the RPC server of a dProp shard node. A server hosts
// one property collection per configured shard ID and answers the collection
// operations sent by the router over the transport layer.
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for server adapters,
//     with the Handle method that processes incoming requests against a store.ICollection.
//
//   - NewCollectionServerAdapter: Factory function creating the adapter that translates
//     RPC messages to store.ICollection calls. Failures are returned inside the response
//     with their store.RetCode.
//
//   - NewRPCServer: Factory function creating a configured server with the specified
//     transport and serializer mechanisms.
//
// Usage Example:
//
//	config := common.ServerConfig{
//	  Shards: []common.ServerShard{
//	    {ShardID: 1, Type: common.ShardTypeLocalCollection},
//	    {ShardID: 2, Type: common.ShardTypeLocalCollection},
//	  },
//	  Endpoint:      "0.0.0.0:8080",
//	  TimeoutSecond: 5,
//	  LogLevel:      "info",
//	}
//
//	s := server.NewRPCServer(config, http.NewHttpServerTransport(), serializer.NewBinarySerializer())
//	if err := s.Serve(ctx); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Shard types, which can be mixed within a single server:
//
//   - ShardTypeLocalCollection: an in-process collection (lstore), suitable for
//     single-node deployments, development and tests.
//
//   - ShardTypeReplicatedCollection: a collection replicated with RAFT (dstore).
//     The RAFT configuration (RTTMillisecond, SnapshotEntries, CompactionOverhead,
//     DataDir, ReplicaID and ClusterMembers) must be set.
//
// Every request increments dprop_rpc_requests_total{shard,type}, failed requests
// also increment dprop_rpc_errors_total{shard,code}.
//
// Thread Safety:
//
//	The server handles concurrent requests. Init and Serve must be called only once.
package server
