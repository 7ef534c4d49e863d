// Package router implements the sharded, self-replicating property router.
//
// A Router works on a fixed ShardSet of named collections. It keeps no index of
// where a record lives: the shards of a record are a pure function of its identity.
//
//   - Insert validates the fields, derives the custom_id, asks every shard whether the
//     identity already exists, and then writes the record to its primary shard and to
//     its replica shard. A failed primary write fails the insert. A failed replica write
//     is reported in the InsertOutcome and the insert still succeeds.
//
//   - Search sends the criteria to every shard, merges the answers, removes duplicates by
//     custom_id and records the answering shards in SourceShards. Shards that fail or time
//     out are left out of the result, Search itself never fails.
//
//   - Update and Delete are sent to every shard. They succeed only if every shard answered
//     and at least one shard held the identity. A shard that could not be reached turns the
//     call into a *MutationError even if other shards applied the change, since the copy on
//     the unreachable shard is now stale.
//
// Placement (ShardMap): the SHA-256 digest of the custom_id, read as a big-endian integer,
// modulo the number of shards selects the primary. The replica is the same digest modulo
// N-1, incremented by one if the primary's index is lower or equal, which skips the primary.
//
// Every shard call runs with its own timeout (WithShardTimeout, DefaultShardTimeout).
// Fan-outs run concurrently, one goroutine per shard.
//
// Known gap: the duplicate check and the write are not atomic. Two concurrent inserts of
// the same identity can both pass the check.
//
// Metrics (VictoriaMetrics):
//
//	dprop_router_requests_total{op,result}
//	dprop_router_replica_failures_total
//	dprop_router_shard_errors_total{shard}
//	dprop_router_shard_duration_seconds{shard}
package router
