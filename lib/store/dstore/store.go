package dstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ValentinKolb/dProp/lib/db"
	"github.com/ValentinKolb/dProp/lib/property"
	"github.com/ValentinKolb/dProp/lib/store"
	"github.com/ValentinKolb/dProp/lib/store/dstore/internal"
	"github.com/cockroachdb/errors"
	"github.com/lni/dragonboat/v4"
	"github.com/lni/dragonboat/v4/client"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	retries = 5
	log     = logger.GetLogger("store")
)

// storeImpl is the concrete implementation of the replicated collection.
// It encapsulates a Dragonboat NodeHost which is used to communicate with the state machine.
type storeImpl struct {
	nh      *dragonboat.NodeHost
	shardID uint64
	cs      *client.Session
	timeout time.Duration
}

// NewDistributedStore creates a new distributed collection instance which uses raft consensus to ensure strict
// linearizability across multiple nodes.
func NewDistributedStore(nh *dragonboat.NodeHost, shardID uint64, timeout time.Duration) store.ICollection {
	cs := nh.GetNoOPSession(shardID)
	return &storeImpl{
		nh:      nh,
		shardID: shardID,
		cs:      cs,
		timeout: timeout,
	}
}

// --------------------------------------------------------------------------
// Internal write and read operations (used by interface methods)
// --------------------------------------------------------------------------

// write proposes a serialized Command via SyncPropose.
// It returns a *store.Error built from the result code of the state machine, or nil on success.
func (s *storeImpl) write(ctx context.Context, cmd internal.Command) error {
	for i := 0; i < retries; i++ {
		pctx, cancel := context.WithTimeout(ctx, s.timeout)
		res, err := s.nh.SyncPropose(pctx, s.cs, cmd.Serialize())
		cancel()

		if errors.Is(err, dragonboat.ErrSystemBusy) {
			log.Infof("SyncPropose: System busy, retrying (%d/%d)...", i+1, retries)
			if err := backoff(ctx, s.timeout/10); err != nil {
				return err
			}
			continue
		}

		if err != nil {
			return toStoreError(err)
		}
		if res.Value != uint64(store.RetCSuccess) {
			return store.NewError(store.RetCode(res.Value), string(res.Data))
		}
		return nil
	}
	return store.NewError(store.RetCUnavailable, "timeout")
}

// read is a generic helper function that queries the state machine
// and attempts to convert the response into the expected type R.
//
// This function uses the SyncRead function (dragonboat) by default to Query the state machine.
// If linearizability is not required, the stale parameter can be set to true to use the faster StaleRead function.
//
// If the read operation fails due to a system busy error, the function retries up to 5 times.
func read[R any](ctx context.Context, r *storeImpl, q internal.Query, stale bool) (R, error) {
	var zero R
	for i := 0; i < retries; i++ {
		var (
			res interface{}
			err error
		)

		if stale {
			res, err = r.nh.StaleRead(r.shardID, q)
		} else {
			rctx, cancel := context.WithTimeout(ctx, r.timeout)
			res, err = r.nh.SyncRead(rctx, r.shardID, q)
			cancel()
		}

		if errors.Is(err, dragonboat.ErrSystemBusy) {
			log.Infof("SyncRead: System busy, retrying (%d/%d)...", i+1, retries)
			if err := backoff(ctx, r.timeout/10); err != nil {
				return zero, err
			}
			continue
		}

		if err != nil {
			return zero, toStoreError(err)
		}

		// The state machine is expected to return the response in the expected type R.
		casted, ok := res.(R)
		if !ok {
			return zero, store.NewError(store.RetCInternalError,
				fmt.Sprintf("unexpected type: received %T, expected %T", res, zero))
		}
		return casted, nil
	}
	return zero, store.NewError(store.RetCUnavailable, "timeout")
}

// backoff waits d before the next attempt, or returns an unavailable error if ctx ends first
func backoff(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return store.FromContext(ctx.Err())
	case <-t.C:
		return nil
	}
}

// toStoreError keeps store errors raised by the state machine and classifies dragonboat errors.
// Timeouts and a missing leader mean the shard is currently unavailable.
func toStoreError(err error) error {
	var se *store.Error
	if errors.As(err, &se) {
		return se
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, dragonboat.ErrTimeout),
		errors.Is(err, dragonboat.ErrShardNotReady),
		errors.Is(err, dragonboat.ErrShardNotFound),
		errors.Is(err, dragonboat.ErrClosed):
		return store.NewError(store.RetCUnavailable, err.Error())
	default:
		return store.NewError(store.RetCInternalError, err.Error())
	}
}

// matched converts the RetCNotFound result of update and delete commands into matched=false
func matched(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if store.CodeOf(err) == store.RetCNotFound {
		return false, nil
	}
	return false, err
}

// --------------------------------------------------------------------------
// Interface Methods (docs see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Insert(ctx context.Context, rec property.Record) error {
	data, err := rec.Marshal()
	if err != nil {
		return store.NewError(store.RetCInvalidOperation, err.Error())
	}
	return s.write(ctx, internal.Command{
		Type:  internal.CommandTInsert,
		Key:   rec.CustomID,
		Value: data,
	})
}

func (s *storeImpl) FindOne(ctx context.Context, customID string) (property.Record, bool, error) {
	res, err := read[internal.QueryResult](ctx, s, internal.Query{
		Type: internal.QueryTFindOne,
		Key:  customID,
	}, false)
	if err != nil || !res.Ok || len(res.Records) == 0 {
		return property.Record{}, false, err
	}
	return res.Records[0], true, nil
}

func (s *storeImpl) Find(ctx context.Context, criteria property.Criteria) ([]property.Record, error) {
	res, err := read[internal.QueryResult](ctx, s, internal.Query{
		Type:     internal.QueryTFind,
		Criteria: criteria,
	}, false)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

func (s *storeImpl) Update(ctx context.Context, customID string, fields property.Fields) (bool, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return false, store.NewError(store.RetCInvalidOperation, err.Error())
	}
	return matched(s.write(ctx, internal.Command{
		Type:  internal.CommandTUpdate,
		Key:   customID,
		Value: data,
	}))
}

func (s *storeImpl) Delete(ctx context.Context, customID string) (bool, error) {
	return matched(s.write(ctx, internal.Command{
		Type: internal.CommandTDelete,
		Key:  customID,
	}))
}

func (s *storeImpl) GetDBInfo(ctx context.Context) (db.DatabaseInfo, error) {
	return read[db.DatabaseInfo](
		ctx,
		s,
		internal.Query{
			Type: internal.QueryTGetDBInfo,
		},
		true, // Note: allow for stale reads
	)
}
