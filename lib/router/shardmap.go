package router

import (
	"crypto/sha256"
	"math/big"

	"github.com/cockroachdb/errors"
)

// ShardMap maps an identity to shard indices in [0, n).
//
// The identity is hashed with SHA-256 and the digest is read as one big-endian
// unsigned integer. Placement therefore only depends on the identity and n and
// can be recomputed by any process at any time.
type ShardMap struct {
	n int
}

// NewShardMap creates a map over n shards. Replica placement needs n >= 2.
func NewShardMap(n int) (ShardMap, error) {
	if n < 1 {
		return ShardMap{}, errors.Newf("shard map needs at least one shard, got %d", n)
	}
	return ShardMap{n: n}, nil
}

// Len returns the number of shards
func (m ShardMap) Len() int {
	return m.n
}

// Primary returns the index of the shard holding the first copy of id
func (m ShardMap) Primary(id string) int {
	return mod(hashIdentity(id), m.n)
}

// Replica returns the index of the shard holding the redundant copy of id.
// The hash is mapped into the n-1 shards that remain after removing primary, then
// shifted past the primary's position. The result never equals primary.
func (m ShardMap) Replica(id string, primary int) (int, error) {
	if m.n < 2 {
		return 0, errors.Newf("replica placement needs at least two shards, got %d", m.n)
	}
	if primary < 0 || primary >= m.n {
		return 0, errors.Newf("primary index %d out of range [0, %d)", primary, m.n)
	}
	idx := mod(hashIdentity(id), m.n-1)
	if primary <= idx {
		idx++
	}
	return idx, nil
}

func hashIdentity(id string) *big.Int {
	sum := sha256.Sum256([]byte(id))
	return new(big.Int).SetBytes(sum[:])
}

func mod(h *big.Int, n int) int {
	return int(new(big.Int).Mod(h, big.NewInt(int64(n))).Int64())
}
