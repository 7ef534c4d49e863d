// Package dstore implements a property collection replicated with the Dragonboat
// RAFT library. Every node of the RAFT shard holds the full collection, so one
// property shard survives the loss of a minority of its nodes.
//
// It has three parts:
//
//   - the collection (store.go) implements store.ICollection. Writes are encoded as
//     internal.Command and proposed with SyncPropose, reads are sent as internal.Query
//     through SyncRead (or StaleRead for GetDBInfo).
//
//   - the state machine (statemachine.go) is a Dragonboat IConcurrentStateMachine that
//     owns the db.DocDB and applies committed commands with the same document functions
//     the local collection uses. The RAFT log index is used as the write index.
//
//   - the internal package holds the binary encoding of commands and queries.
//
// Results of the state machine travel back as store return codes. An insert of a taken
// custom_id answers RetCDuplicate, an update or delete that matched nothing answers
// RetCNotFound, which the collection turns into matched=false.
//
// ErrSystemBusy is retried a few times with a short backoff. Timeouts, a shard without
// a leader and a closed NodeHost are reported as RetCUnavailable, which the router
// treats as an unreachable shard.
//
// Snapshots are taken without stopping the state machine (db.DocDB.Save) and restored
// with db.DocDB.Load, after which the node catches up from the RAFT log.
//
// Example:
//
//	nh, err := dragonboat.NewNodeHost(config.ToNodeHostConfig())
//	if err != nil { ... }
//
//	err = nh.StartConcurrentReplica(
//	    members,
//	    false,
//	    dstore.CreateStateMaschineFactory(func() db.DocDB { return maple.NewMapleDB(nil) }),
//	    config.ToDragonboatConfig(shardID))
//	if err != nil { ... }
//
//	coll := dstore.NewDistributedStore(nh, shardID, 5*time.Second)
//
// Deploy an odd number of nodes (3, 5 or 7). Writes need a leader and a majority.
// If replication within a shard is not needed, the lstore package offers the same
// interface in memory on a single node.
package dstore
