package lstore

import (
	"context"
	"sync/atomic"

	"github.com/ValentinKolb/dProp/lib/db"
	"github.com/ValentinKolb/dProp/lib/property"
	"github.com/ValentinKolb/dProp/lib/store"
)

type storeImpl struct {
	db    db.DocDB
	index atomic.Uint64
}

// NewLocalStore creates a new local collection instance.
// This collection is not distributed and only works on a single node.
// This works by using the maple engine from the db package directly.
func NewLocalStore(factory store.DBFactory) store.ICollection {
	return &storeImpl{
		db:    factory(),
		index: atomic.Uint64{},
	}
}

// incAndGetIndex increments the index and returns the new value.
// It is used to ensure that each write operation has a unique index.
//
// Thread-safety: This method is thread-safe since it uses atomic operations.
func (s *storeImpl) incAndGetIndex() uint64 {
	return s.index.Add(1)
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Insert(ctx context.Context, rec property.Record) error {
	if err := ctx.Err(); err != nil {
		return store.FromContext(err)
	}
	if err := store.InsertDoc(s.db, rec, s.incAndGetIndex()); err != nil {
		return err
	}
	return nil
}

func (s *storeImpl) FindOne(ctx context.Context, customID string) (property.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return property.Record{}, false, store.FromContext(err)
	}
	rec, ok, err := store.FindOneDoc(s.db, customID)
	if err != nil {
		return property.Record{}, false, err
	}
	return rec, ok, nil
}

func (s *storeImpl) Find(ctx context.Context, criteria property.Criteria) ([]property.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.FromContext(err)
	}
	recs, err := store.FindDocs(s.db, criteria)
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *storeImpl) Update(ctx context.Context, customID string, fields property.Fields) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, store.FromContext(err)
	}
	matched, err := store.UpdateDoc(s.db, customID, fields, s.incAndGetIndex())
	if err != nil {
		return matched, err
	}
	return matched, nil
}

func (s *storeImpl) Delete(ctx context.Context, customID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, store.FromContext(err)
	}
	matched, err := store.DeleteDoc(s.db, customID, s.incAndGetIndex())
	if err != nil {
		return false, err
	}
	return matched, nil
}

func (s *storeImpl) GetDBInfo(ctx context.Context) (db.DatabaseInfo, error) {
	if err := ctx.Err(); err != nil {
		return db.DatabaseInfo{}, store.FromContext(err)
	}
	return s.db.GetInfo(), nil
}
