package router

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/dProp/lib/db"
	"github.com/ValentinKolb/dProp/lib/db/engines/maple"
	"github.com/ValentinKolb/dProp/lib/property"
	"github.com/ValentinKolb/dProp/lib/store"
	"github.com/ValentinKolb/dProp/lib/store/lstore"
)

// faultyCollection wraps a local collection and injects shard faults
type faultyCollection struct {
	store.ICollection
	down       atomic.Bool  // every call fails with RetCUnavailable
	failWrites atomic.Bool  // Insert, Update and Delete fail with RetCInternalError
	delay      atomic.Int64 // nanoseconds every call waits before running
	ackDelay   atomic.Int64 // nanoseconds Insert waits after committing
}

func newFaultyCollection() *faultyCollection {
	return &faultyCollection{
		ICollection: lstore.NewLocalStore(func() db.DocDB { return maple.NewMapleDB(nil) }),
	}
}

func (f *faultyCollection) before(ctx context.Context, write bool) error {
	if d := time.Duration(f.delay.Load()); d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return store.FromContext(ctx.Err())
		}
	}
	if f.down.Load() {
		return store.NewError(store.RetCUnavailable, "connection refused")
	}
	if write && f.failWrites.Load() {
		return store.NewError(store.RetCInternalError, "disk full")
	}
	return nil
}

func (f *faultyCollection) Insert(ctx context.Context, rec property.Record) error {
	if err := f.before(ctx, true); err != nil {
		return err
	}
	if err := f.ICollection.Insert(ctx, rec); err != nil {
		return err
	}
	if d := time.Duration(f.ackDelay.Load()); d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return store.FromContext(ctx.Err())
		}
	}
	return nil
}

func (f *faultyCollection) FindOne(ctx context.Context, id string) (property.Record, bool, error) {
	if err := f.before(ctx, false); err != nil {
		return property.Record{}, false, err
	}
	return f.ICollection.FindOne(ctx, id)
}

func (f *faultyCollection) Find(ctx context.Context, c property.Criteria) ([]property.Record, error) {
	if err := f.before(ctx, false); err != nil {
		return nil, err
	}
	return f.ICollection.Find(ctx, c)
}

func (f *faultyCollection) Update(ctx context.Context, id string, fields property.Fields) (bool, error) {
	if err := f.before(ctx, true); err != nil {
		return false, err
	}
	return f.ICollection.Update(ctx, id, fields)
}

func (f *faultyCollection) Delete(ctx context.Context, id string) (bool, error) {
	if err := f.before(ctx, true); err != nil {
		return false, err
	}
	return f.ICollection.Delete(ctx, id)
}

// holds reports whether the wrapped collection stores id, bypassing injected faults
func (f *faultyCollection) holds(id string) bool {
	_, ok, err := f.ICollection.FindOne(context.Background(), id)
	return err == nil && ok
}
