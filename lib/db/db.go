package db

import "io"

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplMaple Implementation = "maple"
)

// Feature represents database features as bit flags
type Feature uint64

const (
	FeaturePut         Feature = 1 << iota // Support for Put operations
	FeaturePutIfAbsent                     // Support for PutIfAbsent operations
	FeatureGet                             // Support for Get operations
	FeatureHas                             // Support for Has operations
	FeatureUpdate                          // Support for Update operations
	FeatureDelete                          // Support for Delete operations
	FeatureRange                           // Support for Range operations
	FeatureSave                            // Support for Save operations
	FeatureLoad                            // Support for Load operations
)

func (f Feature) String() string {
	switch f {
	case FeaturePut:
		return "Put"
	case FeaturePutIfAbsent:
		return "PutIfAbsent"
	case FeatureGet:
		return "Get"
	case FeatureHas:
		return "Has"
	case FeatureUpdate:
		return "Update"
	case FeatureDelete:
		return "Delete"
	case FeatureRange:
		return "Range"
	case FeatureSave:
		return "Save"
	case FeatureLoad:
		return "Load"
	default:
		return "Unknown"
	}
}

type DatabaseInfo struct {
	SizeBytes         int            `json:"size_bytes"`
	DocCount          int            `json:"doc_count"`
	DbType            Implementation `json:"db_type"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// UpdateFunc receives the current document and returns its replacement.
// Returning an error leaves the stored document untouched.
type UpdateFunc func(doc []byte) (updated []byte, err error)

// --------------------------------------------------------------------------
// Database Interface
// --------------------------------------------------------------------------

// DocDB defines an interface for document database implementations.
// Documents are opaque byte slices addressed by a caller-assigned key (the custom_id of a
// property). Implementations can vary in their feature support, which can be queried with
// SupportsFeature.
type DocDB interface {

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// Put inserts or replaces the document stored under key.
	// The writeIndex parameter is used as a logical timestamp for the entry.
	Put(key string, doc []byte, writeIndex uint64)

	// PutIfAbsent inserts the document only if the key does not exist yet.
	// The return value reports whether the document was inserted.
	PutIfAbsent(key string, doc []byte, writeIndex uint64) (inserted bool)

	// Update atomically replaces the document stored under key with the result of fn.
	// The bool return value reports whether the key existed. If fn returns an error the
	// document is left unchanged and the error is returned.
	Update(key string, writeIndex uint64, fn UpdateFunc) (found bool, err error)

	// Delete removes the document stored under key.
	// The return value reports whether the key existed.
	Delete(key string, writeIndex uint64) (deleted bool)

	// --------------------------------------------------------------------------
	// Query Operations
	// --------------------------------------------------------------------------

	// Get retrieves a copy of the document stored under key.
	Get(key string) (doc []byte, loaded bool)

	// Has checks whether a key exists in the database.
	Has(key string) (loaded bool)

	// Range calls fn for every stored document until fn returns false.
	// The document passed to fn is a copy and may be retained.
	// Range does not block concurrent writers and does not observe a consistent snapshot.
	Range(fn func(key string, doc []byte) bool)

	// Len returns the number of stored documents.
	Len() int

	// --------------------------------------------------------------------------
	// Persistence Operations
	// --------------------------------------------------------------------------

	// Save persists the current state of the database to the provided io.Writer.
	Save(w io.Writer) (err error)

	// Load restores the database state data provided by an io.Reader.
	Load(r io.Reader) (err error)

	// --------------------------------------------------------------------------
	// Feature Support
	// --------------------------------------------------------------------------

	// SupportsFeature checks if the database implementation supports the specified feature.
	// Multiple features can be checked at once using bitwise OR (|) operator.
	SupportsFeature(feature Feature) (ok bool)

	// GetInfo returns information about the database.
	GetInfo() (info DatabaseInfo)

	// --------------------------------------------------------------------------
	// Write Index Operations
	// --------------------------------------------------------------------------

	// SetWriteIdx sets the current index of the database only if the provided index is greater than the current index.
	SetWriteIdx(index uint64)

	// WriteIdx returns the current index of the database .
	WriteIdx() (index uint64)

	// Close closes the database.
	Close() (err error)
}
