package internal

import (
	"fmt"

	"github.com/ValentinKolb/dProp/lib/db/util"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Entry Type (document with metadata)
// --------------------------------------------------------------------------

// Entry stores a document together with its key and write metadata
type Entry struct {
	Key   string // Document key (kept so snapshots can be restored without rehashing tricks)
	Doc   []byte // Document bytes
	Index uint64 // Write index when this entry was created/updated
}

func (e Entry) String() string {
	return fmt.Sprintf("Entry{Key: %s, Index: %d, Size: %d}", e.Key, e.Index, len(e.Doc))
}

// --------------------------------------------------------------------------
// Partition Type (subset of the key space)
// --------------------------------------------------------------------------

// Partition holds the documents of one slice of the key space
type Partition struct {
	Data *xsync.MapOf[string, Entry]
}

// NewPartition creates an empty partition
func NewPartition() *Partition {
	return &Partition{
		Data: xsync.NewMapOf[string, Entry](),
	}
}

// GetPartition returns the partition responsible for a hashed key
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func GetPartition[T any](key util.UintKey, partitions []*T) *T {
	// Shift right by 7 bits to use higher-quality bits for distribution
	shiftedKey := uint64(key) >> 7
	pos := shiftedKey % uint64(len(partitions))
	return partitions[pos]
}
