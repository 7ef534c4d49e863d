package router

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ValentinKolb/dProp/lib/property"
	"github.com/ValentinKolb/dProp/lib/store"
	"github.com/VictoriaMetrics/metrics"
	"github.com/cockroachdb/errors"
	"github.com/lni/dragonboat/v4/logger"
	"golang.org/x/sync/errgroup"
)

var Logger = logger.GetLogger("router")

// DefaultShardTimeout bounds every single shard call
const DefaultShardTimeout = 5 * time.Second

// --------------------------------------------------------------------------
// Construction
// --------------------------------------------------------------------------

// Router places property records on a fixed set of shards and finds, updates and
// deletes them again without a central index.
type Router struct {
	shards       *ShardSet
	placement    ShardMap
	schema       property.Schema
	shardTimeout time.Duration
}

// Option configures a Router
type Option func(*Router)

// WithShardTimeout sets the timeout of every single shard call. Values <= 0 are ignored.
func WithShardTimeout(d time.Duration) Option {
	return func(r *Router) {
		if d > 0 {
			r.shardTimeout = d
		}
	}
}

// WithSchema replaces property.DefaultSchema
func WithSchema(s property.Schema) Option {
	return func(r *Router) {
		r.schema = s
	}
}

// New creates a router over shards. Every insert is replicated, so at least two shards are required.
func New(shards *ShardSet, opts ...Option) (*Router, error) {
	if shards == nil {
		return nil, errors.New("router needs a shard set")
	}
	if shards.Len() < 2 {
		return nil, errors.Newf("router needs at least two shards for replication, got %d", shards.Len())
	}
	placement, err := NewShardMap(shards.Len())
	if err != nil {
		return nil, err
	}

	r := &Router{
		shards:       shards,
		placement:    placement,
		schema:       property.DefaultSchema,
		shardTimeout: DefaultShardTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Shards returns the shard set the router works on
func (r *Router) Shards() *ShardSet {
	return r.shards
}

// Placement returns the primary and replica shard names of an identity
func (r *Router) Placement(customID string) (primary, replica string, err error) {
	p := r.placement.Primary(customID)
	rep, err := r.placement.Replica(customID, p)
	if err != nil {
		return "", "", err
	}
	return r.shards.At(p).Name, r.shards.At(rep).Name, nil
}

// --------------------------------------------------------------------------
// Insert
// --------------------------------------------------------------------------

// InsertOutcome describes where an inserted record was written.
// A failed replica write does not fail the insert, it is reported here instead.
type InsertOutcome struct {
	CustomID       string
	Primary        string
	Replica        string
	ReplicaWritten bool
	ReplicaErr     error
}

// Insert validates fields, derives the identity, rejects duplicates and writes the record
// to its primary shard and then to its replica shard.
//
// Errors: *property.ValidationError, *DuplicateError, *ShardUnavailableError or
// *UnexpectedError. Validation and duplicate errors are returned before any write.
// If the primary write fails the insert is reported as failed, but a primary that
// committed before its call timed out may still hold the record.
// The duplicate check and the write are not atomic: concurrent inserts of the same
// identity can both succeed.
func (r *Router) Insert(ctx context.Context, fields property.Fields) (out InsertOutcome, err error) {
	defer func() { countRequest("insert", err) }()

	if err := r.schema.Validate(fields); err != nil {
		return InsertOutcome{}, err
	}
	rec, err := property.RecordFromFields(fields)
	if err != nil {
		return InsertOutcome{}, errors.Wrap(err, "convert validated fields")
	}
	rec.CustomID = property.BuildIdentity(rec.State, rec.City, rec.Address)
	out.CustomID = rec.CustomID

	found, holder, err := r.Exists(ctx, rec.CustomID)
	if err != nil {
		return InsertOutcome{}, err
	}
	if found {
		return InsertOutcome{}, &DuplicateError{CustomID: rec.CustomID, Shard: holder}
	}

	primary := r.placement.Primary(rec.CustomID)
	replica, err := r.placement.Replica(rec.CustomID, primary)
	if err != nil {
		return InsertOutcome{}, err
	}
	out.Primary = r.shards.At(primary).Name
	out.Replica = r.shards.At(replica).Name

	if err := r.insertOn(ctx, primary, rec); err != nil {
		Logger.Errorf("insert %s: primary write to %s failed: %v", rec.CustomID, out.Primary, err)
		return InsertOutcome{}, err
	}
	Logger.Infof("insert %s: written to primary %s", rec.CustomID, out.Primary)

	if err := r.insertOn(ctx, replica, rec); err != nil {
		metrics.GetOrCreateCounter(`dprop_router_replica_failures_total`).Inc()
		Logger.Warningf("insert %s: replica write to %s failed, record is not redundant: %v", rec.CustomID, out.Replica, err)
		out.ReplicaErr = err
		return out, nil
	}
	out.ReplicaWritten = true
	Logger.Infof("insert %s: written to replica %s", rec.CustomID, out.Replica)

	return out, nil
}

// insertOn writes rec to the shard at index i
func (r *Router) insertOn(ctx context.Context, i int, rec property.Record) error {
	shard := r.shards.At(i)
	err := r.call(ctx, shard, func(ctx context.Context) error {
		return shard.Collection.Insert(ctx, rec)
	})
	if err == nil {
		return nil
	}
	if store.CodeOf(err) == store.RetCDuplicate {
		return &DuplicateError{CustomID: rec.CustomID, Shard: shard.Name}
	}
	return shardError(shard.Name, "insert", err)
}

// --------------------------------------------------------------------------
// Existence check
// --------------------------------------------------------------------------

// Exists asks every shard concurrently for a record with the identity.
// It returns true and the name of a holding shard on the first hit, the remaining
// calls are cancelled. If no shard holds the record but one could not answer,
// the error of that shard is returned since the record might live there.
func (r *Router) Exists(ctx context.Context, customID string) (found bool, shard string, err error) {
	var (
		mu       sync.Mutex
		holder   string
		failures = make([]error, r.shards.Len())
	)

	// a shard failure must not stop the others, only a hit does
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < r.shards.Len(); i++ {
		sh := r.shards.At(i)
		g.Go(func() error {
			var ok bool
			err := r.call(gctx, sh, func(ctx context.Context) (err error) {
				_, ok, err = sh.Collection.FindOne(ctx, customID)
				return err
			})
			switch {
			case err != nil:
				failures[i] = shardError(sh.Name, "lookup", err)
				return nil
			case ok:
				mu.Lock()
				if holder == "" {
					holder = sh.Name
				}
				mu.Unlock()
				return errFound
			}
			return nil
		})
	}
	if err := g.Wait(); errors.Is(err, errFound) {
		return true, holder, nil
	}

	for _, err := range failures {
		if err != nil {
			return false, "", err
		}
	}
	return false, "", nil
}

// errFound ends an existence check early
var errFound = errors.New("identity found")

// --------------------------------------------------------------------------
// Search
// --------------------------------------------------------------------------

// Search runs the criteria on every shard and merges the results.
// It never fails: shards that do not answer are left out of the result.
func (r *Router) Search(ctx context.Context, criteria property.Criteria) []property.Record {
	recs, _ := r.SearchWithReport(ctx, criteria)
	return recs
}

// SearchWithReport is Search that also returns the names of the shards left out.
//
// Records are deduplicated by custom_id. The first copy in shard order is kept and
// SourceShards lists every shard that returned a copy. A requested price sort is
// applied after the merge, otherwise records keep shard order.
func (r *Router) SearchWithReport(ctx context.Context, criteria property.Criteria) ([]property.Record, []string) {
	results := make([][]property.Record, r.shards.Len())
	failed := make([]bool, r.shards.Len())

	// failures are kept per shard, one slow shard must not cancel the others
	g := new(errgroup.Group)
	for i := 0; i < r.shards.Len(); i++ {
		sh := r.shards.At(i)
		g.Go(func() error {
			err := r.call(ctx, sh, func(ctx context.Context) (err error) {
				results[i], err = sh.Collection.Find(ctx, criteria)
				return err
			})
			if err != nil {
				Logger.Warningf("search: omitting shard %s: %v", sh.Name, err)
				failed[i] = true
				results[i] = nil
			}
			return nil
		})
	}
	_ = g.Wait()

	merged := []property.Record{}
	index := make(map[string]int)
	var omitted []string
	for i, recs := range results {
		name := r.shards.At(i).Name
		if failed[i] {
			omitted = append(omitted, name)
			continue
		}
		for _, rec := range recs {
			if pos, ok := index[rec.CustomID]; ok {
				merged[pos].SourceShards = append(merged[pos].SourceShards, name)
				continue
			}
			rec = rec.Clone()
			rec.SourceShards = []string{name}
			index[rec.CustomID] = len(merged)
			merged = append(merged, rec)
		}
	}

	property.SortRecords(merged, criteria.SortByPrice)
	countRequest("search", nil)
	return merged, omitted
}

// --------------------------------------------------------------------------
// Update and Delete
// --------------------------------------------------------------------------

// MutationResult lists the shards that did and did not hold the identity
type MutationResult struct {
	CustomID  string
	Matched   []string
	Unmatched []string
}

// Update applies fields to every copy of the identity.
//
// The fields are checked with Schema.ValidatePartial first (*property.ValidationError).
// The update succeeds only if every shard answered and at least one matched,
// otherwise a *MutationError is returned.
func (r *Router) Update(ctx context.Context, customID string, fields property.Fields) (res MutationResult, err error) {
	defer func() { countRequest("update", err) }()

	if err := r.schema.ValidatePartial(fields); err != nil {
		return MutationResult{}, err
	}
	return r.mutate(ctx, "update", customID, func(ctx context.Context, c store.ICollection) (bool, error) {
		return c.Update(ctx, customID, fields)
	})
}

// Delete removes every copy of the identity with the same policy as Update.
func (r *Router) Delete(ctx context.Context, customID string) (res MutationResult, err error) {
	defer func() { countRequest("delete", err) }()

	return r.mutate(ctx, "delete", customID, func(ctx context.Context, c store.ICollection) (bool, error) {
		return c.Delete(ctx, customID)
	})
}

// mutate runs fn on every shard concurrently and aggregates the outcomes
func (r *Router) mutate(
	ctx context.Context,
	op, customID string,
	fn func(ctx context.Context, c store.ICollection) (bool, error),
) (MutationResult, error) {
	matched := make([]bool, r.shards.Len())
	errs := make([]error, r.shards.Len())

	// every shard must be attempted, so failures are kept per shard instead of cancelling
	g := new(errgroup.Group)
	for i := 0; i < r.shards.Len(); i++ {
		sh := r.shards.At(i)
		g.Go(func() error {
			errs[i] = r.call(ctx, sh, func(ctx context.Context) (err error) {
				matched[i], err = fn(ctx, sh.Collection)
				return err
			})
			return nil
		})
	}
	_ = g.Wait()

	res := MutationResult{CustomID: customID}
	var failed []ShardFailure
	for i := range errs {
		name := r.shards.At(i).Name
		switch {
		case errs[i] != nil:
			failed = append(failed, ShardFailure{Shard: name, Err: shardError(name, op, errs[i])})
		case matched[i]:
			res.Matched = append(res.Matched, name)
		default:
			res.Unmatched = append(res.Unmatched, name)
		}
	}

	if len(failed) > 0 || len(res.Matched) == 0 {
		merr := &MutationError{
			Op:        op,
			CustomID:  customID,
			Matched:   res.Matched,
			Unmatched: res.Unmatched,
			Failed:    failed,
		}
		if merr.Partial() {
			Logger.Warningf("%v", merr)
		}
		return res, merr
	}

	Logger.Infof("%s %s: applied on %v", op, customID, res.Matched)
	return res, nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// call runs fn with the per shard timeout and records shard metrics
func (r *Router) call(ctx context.Context, sh Shard, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.shardTimeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	if err == nil && ctx.Err() != nil {
		// a collection that ignores its context must not count as answered
		err = store.FromContext(ctx.Err())
	}

	metrics.GetOrCreateHistogram(fmt.Sprintf(`dprop_router_shard_duration_seconds{shard=%q}`, sh.Name)).UpdateDuration(start)
	if err != nil {
		metrics.GetOrCreateCounter(fmt.Sprintf(`dprop_router_shard_errors_total{shard=%q}`, sh.Name)).Inc()
	}
	return err
}

// countRequest counts a router operation by outcome
func countRequest(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.GetOrCreateCounter(fmt.Sprintf(`dprop_router_requests_total{op=%q,result=%q}`, op, result)).Inc()
}
