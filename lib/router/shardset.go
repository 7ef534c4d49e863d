package router

import (
	"github.com/ValentinKolb/dProp/lib/store"
	"github.com/cockroachdb/errors"
)

// Shard is a named collection. The name is what search results report in source_shards.
type Shard struct {
	Name       string
	Collection store.ICollection
}

// ShardSet is the ordered, fixed list of shards a router works on.
// The position of a shard in the set is its placement index, so the order must be the
// same for every process sharing the data.
type ShardSet struct {
	shards []Shard
}

// NewShardSet validates and freezes the shard list
func NewShardSet(shards ...Shard) (*ShardSet, error) {
	if len(shards) == 0 {
		return nil, errors.New("shard set is empty")
	}
	seen := make(map[string]struct{}, len(shards))
	for i, s := range shards {
		if s.Name == "" {
			return nil, errors.Newf("shard %d has no name", i)
		}
		if s.Collection == nil {
			return nil, errors.Newf("shard %s has no collection", s.Name)
		}
		if _, dup := seen[s.Name]; dup {
			return nil, errors.Newf("shard name %s used twice", s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	return &ShardSet{shards: append([]Shard(nil), shards...)}, nil
}

// Len returns the number of shards
func (s *ShardSet) Len() int {
	return len(s.shards)
}

// At returns the shard at placement index i
func (s *ShardSet) At(i int) Shard {
	return s.shards[i]
}

// Names returns the shard names in placement order
func (s *ShardSet) Names() []string {
	names := make([]string, len(s.shards))
	for i, sh := range s.shards {
		names[i] = sh.Name
	}
	return names
}
