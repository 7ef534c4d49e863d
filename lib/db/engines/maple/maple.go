package maple

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"runtime"
	"sync/atomic"

	"github.com/ValentinKolb/dProp/lib/db"
	"github.com/ValentinKolb/dProp/lib/db/engines/maple/internal"
	"github.com/ValentinKolb/dProp/lib/db/util"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	magicNum     = "MAPLEDOC" // File format identifier
	mapleVersion = 1          // Snapshot format version
	maxKeyLen    = 1 << 16    // Upper bound for a key read from a snapshot
)

// supportedFeatures is the feature set of every maple instance
const supportedFeatures = db.FeaturePut |
	db.FeaturePutIfAbsent |
	db.FeatureGet |
	db.FeatureHas |
	db.FeatureUpdate |
	db.FeatureDelete |
	db.FeatureRange |
	db.FeatureSave |
	db.FeatureLoad

// --------------------------------------------------------------------------
// Core Maple database structure
// --------------------------------------------------------------------------

// mapleImpl implements a document database with partitioned data
type mapleImpl struct {
	numPartitions int
	seed          uint64
	partitions    []*internal.Partition
	currIndex     atomic.Uint64 // Highest write index seen so far
}

// DBOptions configures the mapleImpl behavior during initialization
type DBOptions struct {
	NumPartitions int // Number of partitions (0 = runtime.NumCPU())
}

// DefaultOptions returns the default mapleImpl options
func DefaultOptions() *DBOptions {
	return &DBOptions{
		NumPartitions: runtime.NumCPU(),
	}
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// NewMapleDB creates a new MapleDB instance with the specified options (optional)
func NewMapleDB(opts *DBOptions) db.DocDB {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.NumPartitions <= 0 {
		opts.NumPartitions = runtime.NumCPU()
	}

	return &mapleImpl{
		numPartitions: opts.NumPartitions,
		seed:          util.GenerateSeed(),
		partitions:    newPartitions(opts.NumPartitions),
	}
}

func newPartitions(n int) []*internal.Partition {
	partitions := make([]*internal.Partition, n)
	for i := range partitions {
		partitions[i] = internal.NewPartition()
	}
	return partitions
}

// partitionFor returns the partition that owns key
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) partitionFor(key string) *internal.Partition {
	return internal.GetPartition(util.HashString(key, maple.seed), maple.partitions)
}

// --------------------------------------------------------------------------
// DocDB Interface Methods - Write Operations
// --------------------------------------------------------------------------

// Put inserts or replaces the document stored under key.
// Writes with an index lower than the one of the stored entry are ignored.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Put(key string, doc []byte, writeIndex uint64) {
	maple.SetWriteIdx(writeIndex)
	entry := internal.Entry{Key: key, Doc: util.CopyBytes(doc), Index: writeIndex}

	maple.partitionFor(key).Data.Compute(key, func(old internal.Entry, loaded bool) (internal.Entry, bool) {
		if loaded && writeIndex < old.Index {
			return old, false
		}
		return entry, false
	})
}

// PutIfAbsent inserts the document only if no document is stored under key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) PutIfAbsent(key string, doc []byte, writeIndex uint64) bool {
	maple.SetWriteIdx(writeIndex)
	entry := internal.Entry{Key: key, Doc: util.CopyBytes(doc), Index: writeIndex}

	_, loaded := maple.partitionFor(key).Data.LoadOrStore(key, entry)
	return !loaded
}

// Update replaces the document stored under key with the result of fn.
// fn runs while the key is locked, so concurrent updates of the same key are serialized.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Update(key string, writeIndex uint64, fn db.UpdateFunc) (bool, error) {
	maple.SetWriteIdx(writeIndex)

	var (
		found bool
		fnErr error
	)

	maple.partitionFor(key).Data.Compute(key, func(old internal.Entry, loaded bool) (internal.Entry, bool) {
		if !loaded {
			// nothing stored, returning delete=true keeps the map unchanged
			return old, true
		}
		found = true

		updated, err := fn(util.CopyBytes(old.Doc))
		if err != nil {
			fnErr = err
			return old, false
		}

		index := writeIndex
		if index < old.Index {
			index = old.Index
		}
		return internal.Entry{Key: key, Doc: util.CopyBytes(updated), Index: index}, false
	})

	return found, fnErr
}

// Delete removes the document stored under key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Delete(key string, writeIndex uint64) bool {
	maple.SetWriteIdx(writeIndex)
	_, deleted := maple.partitionFor(key).Data.LoadAndDelete(key)
	return deleted
}

// --------------------------------------------------------------------------
// DocDB Interface Methods - Read Operations
// --------------------------------------------------------------------------

// Get returns a copy of the document stored under key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Get(key string) ([]byte, bool) {
	entry, ok := maple.partitionFor(key).Data.Load(key)
	if !ok {
		return nil, false
	}
	return util.CopyBytes(entry.Doc), true
}

// Has reports whether a document is stored under key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Has(key string) bool {
	_, ok := maple.partitionFor(key).Data.Load(key)
	return ok
}

// Range walks all partitions in order and calls fn for every document.
//
// Thread-safety: Range can run concurrently with writers. Documents written while
// Range is running may or may not be observed.
func (maple *mapleImpl) Range(fn func(key string, doc []byte) bool) {
	for _, p := range maple.partitions {
		stop := false
		p.Data.Range(func(key string, entry internal.Entry) bool {
			if !fn(key, util.CopyBytes(entry.Doc)) {
				stop = true
				return false
			}
			return true
		})
		if stop {
			return
		}
	}
}

// Len returns the number of stored documents
func (maple *mapleImpl) Len() int {
	n := 0
	for _, p := range maple.partitions {
		n += p.Data.Size()
	}
	return n
}

// --------------------------------------------------------------------------
// Persistence Operations
// --------------------------------------------------------------------------

// Save persists the database to the writer.
// Concurrent reading and writing is allowed during Save, the snapshot is fuzzy.
//
// Layout (little endian):
//
//	magic[8] | version u8 | seed u64 | count u64 | { keyLen u32 | key | index u64 | docLen u32 | doc }*
func (maple *mapleImpl) Save(w io.Writer) error {
	bw := bufio.NewWriterSize(w, 1024*1024) // 1 MB buffer

	// collect the entries first so the count header is exact
	var entries []internal.Entry
	for _, p := range maple.partitions {
		p.Data.Range(func(_ string, entry internal.Entry) bool {
			entries = append(entries, entry)
			return true
		})
	}

	if _, err := bw.WriteString(magicNum); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint8(mapleVersion)); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, maple.seed); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(entries))); err != nil {
		return err
	}

	for _, e := range entries {
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(e.Key))); err != nil {
			return err
		}
		if _, err := bw.WriteString(e.Key); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, e.Index); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(e.Doc))); err != nil {
			return err
		}
		if _, err := bw.Write(e.Doc); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Load replaces the database content with a snapshot written by Save.
//
// Thread-safety: This function is not thread-safe and should not be called concurrently
func (maple *mapleImpl) Load(r io.Reader) error {
	br := bufio.NewReaderSize(r, 1024*1024) // 1 MB buffer

	magicBytes := make([]byte, len(magicNum))
	if _, err := io.ReadFull(br, magicBytes); err != nil {
		return err
	}
	if string(magicBytes) != magicNum {
		return fmt.Errorf("invalid file format: magic number mismatch")
	}

	var version uint8
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return err
	}
	if int(version) != mapleVersion {
		return fmt.Errorf("unsupported version: %d (expected %d)", version, mapleVersion)
	}

	var seed uint64
	if err := binary.Read(br, binary.LittleEndian, &seed); err != nil {
		return err
	}

	var count uint64
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return err
	}

	// build the new state aside and swap it in once the snapshot was read completely
	loaded := &mapleImpl{numPartitions: maple.numPartitions, seed: seed, partitions: newPartitions(maple.numPartitions)}

	var maxIndex uint64
	for i := uint64(0); i < count; i++ {
		var keyLen uint32
		if err := binary.Read(br, binary.LittleEndian, &keyLen); err != nil {
			return err
		}
		if keyLen > maxKeyLen {
			return fmt.Errorf("invalid snapshot: key length %d exceeds limit", keyLen)
		}
		key := make([]byte, keyLen)
		if _, err := io.ReadFull(br, key); err != nil {
			return err
		}

		var index uint64
		if err := binary.Read(br, binary.LittleEndian, &index); err != nil {
			return err
		}
		maxIndex = max(maxIndex, index)

		var docLen uint32
		if err := binary.Read(br, binary.LittleEndian, &docLen); err != nil {
			return err
		}
		doc := make([]byte, docLen)
		if _, err := io.ReadFull(br, doc); err != nil {
			return err
		}

		k := string(key)
		loaded.partitionFor(k).Data.Store(k, internal.Entry{Key: k, Doc: doc, Index: index})
	}

	maple.seed = loaded.seed
	maple.partitions = loaded.partitions
	maple.currIndex.Store(0)
	maple.SetWriteIdx(maxIndex)

	return nil
}

// --------------------------------------------------------------------------
// DocDB Interface Implementation - Features and Metadata
// --------------------------------------------------------------------------

// GetInfo returns statistics about the database
func (maple *mapleImpl) GetInfo() db.DatabaseInfo {
	var (
		sizeBytes      int
		docCount       int
		partitionSizes = make([]float64, len(maple.partitions))
	)

	for i, p := range maple.partitions {
		p.Data.Range(func(key string, entry internal.Entry) bool {
			sizeBytes += len(key) + len(entry.Doc) + 8 // 8 bytes for the index
			return true
		})
		size := p.Data.Size()
		docCount += size
		partitionSizes[i] = float64(size)
	}

	meta := &struct {
		CurrentWriteIndex     uint64                 `json:"current_write_index"`
		PartitionCount        int                    `json:"partition_count"`
		PartitionDistribution util.DistributionStats `json:"partition_distribution"`
	}{
		CurrentWriteIndex:     maple.currIndex.Load(),
		PartitionCount:        len(maple.partitions),
		PartitionDistribution: util.NewDistributionStats(partitionSizes),
	}

	return db.DatabaseInfo{
		SizeBytes: sizeBytes,
		DocCount:  docCount,
		DbType:    db.ImplMaple,
		SupportedFeatures: []db.Feature{
			db.FeaturePut, db.FeaturePutIfAbsent, db.FeatureUpdate, db.FeatureDelete,
			db.FeatureGet, db.FeatureHas, db.FeatureRange,
			db.FeatureSave, db.FeatureLoad,
		},
		Metadata: meta,
	}
}

// SupportsFeature checks if this implementation supports a specific DocDB feature
func (maple *mapleImpl) SupportsFeature(feature db.Feature) bool {
	return supportedFeatures&feature == feature
}

// Close releases the stored documents
func (maple *mapleImpl) Close() error {
	for _, p := range maple.partitions {
		p.Data.Clear()
	}
	return nil
}

// --------------------------------------------------------------------------
// Index Management
// --------------------------------------------------------------------------

// SetWriteIdx safely updates the current index
// It only updates if the new index is greater than the current one
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) SetWriteIdx(newIdx uint64) {
	for {
		currIdx := maple.currIndex.Load()
		if newIdx <= currIdx {
			return
		}
		if maple.currIndex.CompareAndSwap(currIdx, newIdx) {
			return
		}
	}
}

// WriteIdx returns the current index of the database
func (maple *mapleImpl) WriteIdx() uint64 {
	return maple.currIndex.Load()
}
