// Package client implements the RPC client side of a dProp shard. NewRPCCollection
// returns a store.ICollection whose operations are executed by the collection with
// the same shard ID on a remote server, so the router can treat local and remote
// shards the same way.
//
// Errors keep their class across the wire: a server side *store.Error is rebuilt
// with its RetCode, and transport failures (refused connections, HTTP errors,
// expired contexts) are reported as RetCUnavailable.
//
// Usage Example:
//
//	config := common.ClientConfig{
//	  Endpoints:     []string{"localhost:8080"},
//	  TimeoutSecond: 5,
//	  RetryCount:    3,
//	}
//
//	coll, err := client.NewRPCCollection(1, config, http.NewHttpClientTransport(), serializer.NewBinarySerializer())
//	if err != nil {
//	  return err
//	}
//	recs, err := coll.Find(ctx, property.Criteria{City: "york"})
//
// Thread Safety:
//
//	Collections are safe for concurrent use.
package client
