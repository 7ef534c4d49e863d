package dstore

import (
	"fmt"
	"io"
	"time"

	"github.com/ValentinKolb/dProp/lib/db"
	"github.com/ValentinKolb/dProp/lib/property"
	"github.com/ValentinKolb/dProp/lib/store"
	"github.com/ValentinKolb/dProp/lib/store/dstore/internal"
	sm "github.com/lni/dragonboat/v4/statemachine"
)

// --------------------------------------------------------------------------
// State Machine Implementation
// --------------------------------------------------------------------------

// DocStateMachine is a state machine implementation for Dragonboat RAFT holding one
// property collection
type DocStateMachine struct {
	replicaID uint64
	shardID   uint64
	database  db.DocDB // the actual dataStorage
}

// CreateStateMaschineFactory returns a function that can be used by dragonboat to create a new state machine for a node host
// The factory pattern is used to enable the caller to pass an interchangeable dbFactory
func CreateStateMaschineFactory(dbFactory store.DBFactory) func(shardID uint64, replicaID uint64) sm.IConcurrentStateMachine {
	return func(shardID uint64, replicaID uint64) sm.IConcurrentStateMachine {
		return &DocStateMachine{
			replicaID: replicaID,
			shardID:   shardID,
			database:  dbFactory(),
		}
	}
}

// Lookup handles read-only queries by mapping each Query operation to the collection helpers.
func (fsm *DocStateMachine) Lookup(itf interface{}) (interface{}, error) {
	q, ok := itf.(internal.Query)
	if !ok {
		return nil, store.NewError(store.RetCInternalError, fmt.Sprintf("invalid Query type: %T", itf))
	}

	switch q.Type {
	case internal.QueryTFindOne:
		rec, found, err := store.FindOneDoc(fsm.database, q.Key)
		if err != nil {
			return nil, err
		}
		res := internal.QueryResult{Ok: found}
		if found {
			res.Records = []property.Record{rec}
		}
		return res, nil
	case internal.QueryTFind:
		recs, err := store.FindDocs(fsm.database, q.Criteria)
		if err != nil {
			return nil, err
		}
		return internal.QueryResult{Ok: true, Records: recs}, nil
	case internal.QueryTGetDBInfo:
		return fsm.database.GetInfo(), nil
	default:
		return nil, store.NewError(store.RetCInvalidOperation, fmt.Sprintf("unknown Query operation: %d", q.Type))
	}
}

// Update applies write commands to the collection.
// The result value of every entry is a store.RetCode. Update and Delete report an
// unmatched custom_id with RetCNotFound.
func (fsm *DocStateMachine) Update(entries []sm.Entry) ([]sm.Entry, error) {
	if len(entries) == 0 {
		return entries, nil
	}

	start := time.Now()

	for idx, e := range entries {
		entries[idx].Result = fsm.apply(e)
	}

	if elapsed := time.Since(start); elapsed > time.Millisecond {
		log.Infof("State machine took long to update. Batch updated %d entries, took %.2fms", len(entries), float64(elapsed)/float64(time.Millisecond))
	}
	return entries, nil
}

// apply executes a single log entry
func (fsm *DocStateMachine) apply(e sm.Entry) sm.Result {
	if len(e.Cmd) == 0 {
		return result(store.NewError(store.RetCInvalidOperation, "empty command ignored"), "")
	}

	cmd := internal.Command{}
	if err := cmd.Deserialize(e.Cmd); err != nil {
		return result(store.NewError(store.RetCInternalError, fmt.Sprintf("failed to deserialize command: %v", err)), "")
	}

	feat, err := cmd.Type.ToDBFeature()
	if err != nil {
		return result(store.NewError(store.RetCInvalidOperation, fmt.Sprintf("unknown Command operation: %s", cmd.Type)), "")
	}
	if !fsm.database.SupportsFeature(feat) {
		return result(store.NewError(store.RetCUnsupportedOperation, fmt.Sprintf("%s operation is not supported", cmd.Type)), "")
	}

	switch cmd.Type {
	case internal.CommandTInsert:
		rec, err := property.UnmarshalRecord(cmd.Value)
		if err != nil {
			return result(store.NewError(store.RetCInvalidOperation, err.Error()), "")
		}
		if rec.CustomID != cmd.Key {
			return result(store.NewError(store.RetCInvalidOperation, "custom_id does not match command key"), "")
		}
		return result(store.InsertDoc(fsm.database, rec, e.Index), "inserted "+cmd.Key)

	case internal.CommandTUpdate:
		fields, err := property.DecodeFields(cmd.Value)
		if err != nil {
			return result(store.NewError(store.RetCInvalidOperation, err.Error()), "")
		}
		found, serr := store.UpdateDoc(fsm.database, cmd.Key, fields, e.Index)
		if serr == nil && !found {
			serr = store.NewError(store.RetCNotFound, "no record "+cmd.Key)
		}
		return result(serr, "updated "+cmd.Key)

	case internal.CommandTDelete:
		found, serr := store.DeleteDoc(fsm.database, cmd.Key, e.Index)
		if serr == nil && !found {
			serr = store.NewError(store.RetCNotFound, "no record "+cmd.Key)
		}
		return result(serr, "deleted "+cmd.Key)

	default:
		return result(store.NewError(store.RetCInvalidOperation, fmt.Sprintf("unknown Command operation: %s", cmd.Type)), "")
	}
}

// result converts a store error into a dragonboat result
func result(err *store.Error, msg string) sm.Result {
	if err != nil {
		return sm.Result{Value: uint64(err.Code), Data: []byte(err.Msg)}
	}
	return sm.Result{Value: uint64(store.RetCSuccess), Data: []byte(msg)}
}

// PrepareSnapshot is not used. We don't need to prepare anything since we use fuzzy snapshotting
func (fsm *DocStateMachine) PrepareSnapshot() (interface{}, error) {
	return nil, nil
}

// SaveSnapshot saves a fuzzy db snapshot to the writer
func (fsm *DocStateMachine) SaveSnapshot(_ interface{}, writer io.Writer, _ sm.ISnapshotFileCollection, _ <-chan struct{}) error {
	if !fsm.database.SupportsFeature(db.FeatureSave) {
		return fmt.Errorf("the used DocDB implementation does not support Save() operations")
	}
	return fsm.database.Save(writer)
}

// RecoverFromSnapshot restores the collection from a snapshot written by SaveSnapshot.
func (fsm *DocStateMachine) RecoverFromSnapshot(r io.Reader, _ []sm.SnapshotFile, _ <-chan struct{}) error {
	if !fsm.database.SupportsFeature(db.FeatureLoad) {
		return fmt.Errorf("the used DocDB implementation does not support Load() operations")
	}
	return fsm.database.Load(r)
}

// Close performs any necessary cleanup.
func (fsm *DocStateMachine) Close() error {
	return fsm.database.Close()
}
