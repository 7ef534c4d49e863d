package util

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// GenerateSeed returns a random seed for the partition hash of an engine.
// The clock is used if the system random source fails.
func GenerateSeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}

// CopyBytes returns a copy of b that does not share memory with it.
// A nil input yields an empty, non-nil slice.
func CopyBytes(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

// UintKey is the hash of a document key
type UintKey uint64

const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

// HashString is a seeded FNV-1a hash of s.
// It only picks partitions and node ids, it is not used for shard placement.
func HashString(s string, seed uint64) UintKey {
	h := uint64(fnvOffset64) ^ seed
	for i := range len(s) {
		h ^= uint64(s[i])
		h *= fnvPrime64
	}
	return UintKey(h)
}

// NodeID derives the RAFT replica id of a named node (e.g. "node-1").
// Every server must derive the same id for the same name, so the hash is unseeded.
// An empty name yields 0, which RAFT does not accept as replica id.
func NodeID(name string) uint64 {
	if name == "" {
		return 0
	}
	return uint64(HashString(name, 0))
}
