// Package db provides a standardized interface for document database implementations.
// It defines the DocDB interface that every property shard stores its records in,
// abstracting the storage engine from the collection layer above it.
//
// Key Components:
//
//   - DocDB Interface: The core interface that all database implementations must satisfy.
//     It provides methods for writes (Put, PutIfAbsent, Update, Delete), reads
//     (Get, Has, Range, Len), persistence (Save, Load) and metadata (GetInfo).
//     Documents are opaque byte slices, the encoding is owned by the caller.
//
//   - Feature Flags: The Feature type defines capability flags that implementations
//     can advertise through the SupportsFeature method.
//
//   - Implementation Identifiers: The Implementation type provides string constants
//     for different database backends (currently "maple").
//
//   - Database Information: The DatabaseInfo structure reports document count, size,
//     implementation type and implementation-specific metadata.
//
// Note on Write Indices:
//   - Every write carries a write-index that serves as a logical timestamp. Local
//     stores use a counter, replicated stores use the RAFT log index.
//   - Implementations record the highest index they have seen (WriteIdx). The index
//     only increases, lower values passed to SetWriteIdx are ignored.
//   - Put ignores writes whose index is lower than the index of the stored document,
//     which keeps replays of an older log prefix from overwriting newer data.
//
// Related Packages:
//
// The engines/maple package (github.com/ValentinKolb/dProp/lib/db/engines/maple) provides a
// partitioned in-memory implementation of DocDB with binary snapshots.
//
// The testing package (github.com/ValentinKolb/dProp/lib/db/testing) provides
// RunDocDBTests and RunDocDBBenchmarks for validating and comparing implementations.
package db
