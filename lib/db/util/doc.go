// Package util provides small helpers shared by document database
// implementations that satisfy the db.DocDB interface.
//
// The package contains:
//   - functions: seeded FNV-1a hashing, seed generation and byte copying
//   - statistics: summary statistics used to report how evenly documents are
//     spread over the partitions of an engine
package util
