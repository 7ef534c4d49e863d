// Package lstore implements a local, in-memory, single-node property collection based on
// the store.ICollection interface. It is a thin wrapper around any db.DocDB
// implementation with automatic write index management. Data is stored entirely in
// memory and is not persisted between process restarts.
//
// Implementation Details:
//
//   - Write Index Management: The collection maintains an atomic counter that
//     increments with each write operation and is passed to the DocDB as the
//     logical timestamp of the write.
//
//   - Feature Detection: Before executing an operation the collection checks that the
//     underlying db.DocDB supports it. Unsupported operations return
//     RetCUnsupportedOperation instead of failing silently.
//
//   - Context: Every method checks the context before touching the database, so a
//     cancelled or expired context yields RetCUnavailable just like an unreachable
//     remote shard would.
//
// Usage Example:
//
//	factory := func() db.DocDB { return maple.NewMapleDB(nil) }
//	shard := lstore.NewLocalStore(factory)
//	err := shard.Insert(ctx, rec)
//
// For shards that must survive node failures use the dstore package, which provides a
// RAFT-based implementation of the same interface.
package lstore
