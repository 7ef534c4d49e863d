// Package maple implements an in-memory document database that satisfies the
// db.DocDB interface. It is the storage engine behind every property shard.
//
// Key Components:
//
//   - mapleImpl: The central database structure. It owns a fixed number of
//     partitions and the monotonically increasing write index. The write index is
//     supplied by the caller (a local counter in lstore, the RAFT log index in
//     dstore), mapleImpl only records the highest value it has seen.
//
//   - Partition: A slice of the key space backed by an xsync.MapOf. Keys are
//     assigned to partitions by hashing them with a seeded FNV-1a function and
//     using the higher bits of the result, so unrelated instances spread keys
//     differently.
//
//   - Entry: The stored document, its key and the write index of its last change.
//     Put ignores writes carrying a lower index than the stored entry.
//
// Concurrency:
//
// All read and write methods may be called concurrently. Update runs the
// caller's function while the key is locked inside its partition, which makes
// read-modify-write cycles on a single document atomic. Range and Save do not
// block writers and observe a fuzzy view of the data.
//
// Persistence:
//
// Save writes a compact binary snapshot starting with the "MAPLEDOC" magic
// followed by the format version, the hash seed and the entries. Load reads such
// a snapshot into fresh partitions and swaps them in once the whole snapshot was
// decoded, so a truncated snapshot leaves the database untouched.
package maple
