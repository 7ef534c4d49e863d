// Package store provides the per-shard collection interface for property documents
// and unified error handling. It serves as an abstraction layer over the lower-level
// db.DocDB implementations, adding write index management, the collection semantics
// (insert-if-absent, field updates, criteria scans) and standardized error reporting.
//
// Key Components:
//
//   - ICollection Interface: The operations a shard offers to the router. All
//     implementations share this interface, so the router can work with local,
//     replicated and remote shards alike. Every method takes a context, a cancelled or
//     expired context is reported as RetCUnavailable.
//
//   - Error System: A structured error type carrying a RetCode. The codes travel over
//     RPC unchanged, so callers can branch on RetCDuplicate, RetCNotFound or
//     RetCUnavailable no matter where the collection lives.
//
//   - Document helpers (InsertDoc, FindDocs, UpdateDoc, ...): the collection semantics
//     on top of a db.DocDB, shared by the local store and the RAFT state machine.
//
//   - DBFactory: A function type that abstracts the creation of the underlying
//     db.DocDB instances.
//
// Implementations:
//
//	- Local Store (lstore): A non-distributed implementation that directly uses a
//	  db.DocDB instance and manages the write index with an atomic counter.
//	  Available in the "github.com/ValentinKolb/dProp/lib/store/lstore" package.
//
//	- Distributed Store (dstore): An implementation built on the Dragonboat RAFT
//	  consensus library. Each property shard is one RAFT shard whose state machine
//	  holds the collection.
//	  Available in the "github.com/ValentinKolb/dProp/lib/store/dstore" package.
//
//	- Remote collections (rpc/client) implement the same interface over the network.
package store
