package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/ValentinKolb/dProp/lib/store"
	"github.com/cockroachdb/errors"
)

// DuplicateError is returned by Insert when a record with the same identity exists.
type DuplicateError struct {
	CustomID string
	Shard    string // a shard that holds the existing record
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("property %s already exists (found on %s)", e.CustomID, e.Shard)
}

// ShardUnavailableError reports a shard that timed out or could not be reached.
type ShardUnavailableError struct {
	Shard string
	Cause error
}

func (e *ShardUnavailableError) Error() string {
	return fmt.Sprintf("shard %s unavailable: %v", e.Shard, e.Cause)
}

func (e *ShardUnavailableError) Unwrap() error { return e.Cause }

// UnexpectedError wraps any other failure reported by a shard.
type UnexpectedError struct {
	Shard string
	Op    string
	Cause error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("%s on shard %s failed: %v", e.Op, e.Shard, e.Cause)
}

func (e *UnexpectedError) Unwrap() error { return e.Cause }

// ShardFailure is the error one shard returned during a fan-out
type ShardFailure struct {
	Shard string
	Err   error
}

// MutationError is returned by Update and Delete when the fan-out did not succeed:
// either no shard matched the identity, or at least one shard could not complete the call.
// Matched shards have applied the mutation even when the error is returned.
type MutationError struct {
	Op        string
	CustomID  string
	Matched   []string
	Unmatched []string
	Failed    []ShardFailure
}

func (e *MutationError) Error() string {
	if e.NotFound() {
		return fmt.Sprintf("%s %s: property not found on any shard", e.Op, e.CustomID)
	}
	failed := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		failed[i] = fmt.Sprintf("%s (%v)", f.Shard, f.Err)
	}
	return fmt.Sprintf("%s %s: incomplete fan-out, matched [%s], failed [%s]",
		e.Op, e.CustomID, strings.Join(e.Matched, ", "), strings.Join(failed, ", "))
}

// NotFound reports that every shard answered and none held the identity
func (e *MutationError) NotFound() bool {
	return len(e.Failed) == 0 && len(e.Matched) == 0
}

// Partial reports that at least one shard could not complete the mutation
func (e *MutationError) Partial() bool {
	return len(e.Failed) > 0
}

// shardError classifies an error returned by a shard call
func shardError(shard, op string, err error) error {
	if store.CodeOf(err) == store.RetCUnavailable ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return &ShardUnavailableError{Shard: shard, Cause: err}
	}
	return &UnexpectedError{Shard: shard, Op: op, Cause: err}
}
