package store

import (
	"context"
	"fmt"

	"github.com/ValentinKolb/dProp/lib/db"
	"github.com/ValentinKolb/dProp/lib/property"
	"github.com/cockroachdb/errors"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// DBFactory is a function type that creates a new db used by the store.
// This is used to abstract the creation of the db from the store implementation.
type DBFactory func() db.DocDB

// ICollection is the collection of property documents held by a single shard.
// Documents are keyed by their custom_id. All methods return a *Error on failure so
// callers can branch on the RetCode, also when the collection is remote.
type ICollection interface {
	// Insert stores a new record. If a record with the same custom_id is already stored
	// on this shard, an error with code RetCDuplicate is returned and nothing is written.
	Insert(ctx context.Context, rec property.Record) (err error)
	// FindOne returns the record with the given custom_id.
	FindOne(ctx context.Context, customID string) (rec property.Record, found bool, err error)
	// Find returns all records matching the criteria ordered by custom_id.
	// The price sort of the criteria is not applied.
	Find(ctx context.Context, criteria property.Criteria) (recs []property.Record, err error)
	// Update applies the fields to the record with the given custom_id.
	// matched is false if no such record is stored on this shard.
	Update(ctx context.Context, customID string, fields property.Fields) (matched bool, err error)
	// Delete removes the record with the given custom_id.
	// matched is false if no such record is stored on this shard.
	Delete(ctx context.Context, customID string) (matched bool, err error)
	// GetDBInfo returns metadata about the database underlying the collection.
	// It is not guaranteed that all fields are filled in or that the information is up-to-date!
	GetDBInfo(ctx context.Context) (info db.DatabaseInfo, err error)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("StoreError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new store error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// CodeOf returns the RetCode carried by err.
// nil maps to RetCSuccess, errors that are not a *Error map to RetCInternalError.
func CodeOf(err error) RetCode {
	if err == nil {
		return RetCSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return RetCInternalError
}

// FromContext converts a context error into a store error.
// Deadline and cancellation both mean the shard did not answer in time.
func FromContext(err error) *Error {
	if err == nil {
		return nil
	}
	return NewError(RetCUnavailable, err.Error())
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess              RetCode = iota // 0: Command executed successfully.
	RetCInternalError                       // 1: Command failed due to an internal error.
	RetCUnsupportedOperation                // 2: Operation is not supported by underlying database.
	RetCInvalidOperation                    // 3: Invalid operation (e.g. a malformed record).
	RetCDuplicate                           // 4: A record with this custom_id already exists.
	RetCNotFound                            // 5: No record with this custom_id exists.
	RetCUnavailable                         // 6: The shard could not be reached or did not answer in time.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCUnsupportedOperation:
		return "UnsupportedOperation"
	case RetCInvalidOperation:
		return "InvalidOperation"
	case RetCDuplicate:
		return "Duplicate"
	case RetCNotFound:
		return "NotFound"
	case RetCUnavailable:
		return "Unavailable"
	default:
		return "Unknown"
	}
}
