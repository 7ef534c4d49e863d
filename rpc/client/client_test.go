package client

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ValentinKolb/dProp/lib/db"
	"github.com/ValentinKolb/dProp/lib/db/engines/maple"
	"github.com/ValentinKolb/dProp/lib/property"
	"github.com/ValentinKolb/dProp/lib/store"
	"github.com/ValentinKolb/dProp/lib/store/lstore"
	"github.com/ValentinKolb/dProp/rpc/common"
	"github.com/ValentinKolb/dProp/rpc/serializer"
	"github.com/ValentinKolb/dProp/rpc/server"
	rpchttp "github.com/ValentinKolb/dProp/rpc/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startServer serves a single local collection as shard 1 and returns its URL
func startServer(t *testing.T, ser serializer.IRPCSerializer) string {
	t.Helper()
	srv := server.NewRPCServer(common.ServerConfig{TimeoutSecond: 2}, rpchttp.NewHttpServerTransport(), ser)
	srv.AddShard(1, lstore.NewLocalStore(func() db.DocDB { return maple.NewMapleDB(nil) }))

	ts := httptest.NewServer(rpchttp.NewHandler(srv.HandleRequest, false))
	t.Cleanup(ts.Close)
	return ts.URL
}

func newCollection(t *testing.T, url string, shardId uint64, ser serializer.IRPCSerializer) store.ICollection {
	t.Helper()
	coll, err := NewRPCCollection(
		shardId,
		common.ClientConfig{Endpoints: []string{url}, TimeoutSecond: 2, RetryCount: 1},
		rpchttp.NewHttpClientTransport(),
		ser,
	)
	require.NoError(t, err)
	return coll
}

func record(id, city string, price float64) property.Record {
	return property.Record{
		CustomID:      id,
		Address:       "12 Main St",
		City:          city,
		State:         "New York",
		ZipCode:       10001,
		Price:         price,
		Bedrooms:      2,
		Bathrooms:     1.5,
		SquareFootage: 900,
		Type:          "rent",
		DateListed:    "2024-01-01",
		Description:   "x",
		Images:        []string{"a.jpg"},
	}
}

func TestRPCCollectionRoundTrip(t *testing.T) {
	serializers := map[string]serializer.IRPCSerializer{
		"Binary": serializer.NewBinarySerializer(),
		"JSON":   serializer.NewJSONSerializer(),
		"GOB":    serializer.NewGOBSerializer(),
	}

	for name, ser := range serializers {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			coll := newCollection(t, startServer(t, ser), 1, ser)

			require.NoError(t, coll.Insert(ctx, record("NEW-NEWY-12", "New York", 1000)))
			require.NoError(t, coll.Insert(ctx, record("NEW-BROO-7", "Brooklyn", 800)))

			err := coll.Insert(ctx, record("NEW-NEWY-12", "New York", 1000))
			require.Error(t, err)
			assert.Equal(t, store.RetCDuplicate, store.CodeOf(err))

			rec, found, err := coll.FindOne(ctx, "NEW-NEWY-12")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, record("NEW-NEWY-12", "New York", 1000), rec)

			_, found, err = coll.FindOne(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, found)

			recs, err := coll.Find(ctx, property.Criteria{})
			require.NoError(t, err)
			require.Len(t, recs, 2)
			assert.Equal(t, "NEW-BROO-7", recs[0].CustomID)

			recs, err = coll.Find(ctx, property.Criteria{City: "brook"})
			require.NoError(t, err)
			require.Len(t, recs, 1)

			matched, err := coll.Update(ctx, "NEW-BROO-7", property.Fields{"price": 950})
			require.NoError(t, err)
			assert.True(t, matched)

			rec, _, err = coll.FindOne(ctx, "NEW-BROO-7")
			require.NoError(t, err)
			assert.Equal(t, 950.0, rec.Price)

			matched, err = coll.Update(ctx, "missing", property.Fields{"price": 1})
			require.NoError(t, err)
			assert.False(t, matched)

			matched, err = coll.Delete(ctx, "NEW-NEWY-12")
			require.NoError(t, err)
			assert.True(t, matched)

			matched, err = coll.Delete(ctx, "NEW-NEWY-12")
			require.NoError(t, err)
			assert.False(t, matched)

			info, err := coll.GetDBInfo(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, info.DocCount)
		})
	}
}

func TestRPCCollectionUnknownShard(t *testing.T) {
	ser := serializer.NewBinarySerializer()
	coll := newCollection(t, startServer(t, ser), 42, ser)

	_, _, err := coll.FindOne(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, store.RetCUnavailable, store.CodeOf(err))
}

func TestRPCCollectionUnreachable(t *testing.T) {
	ts := httptest.NewServer(nil)
	url := ts.URL
	ts.Close()

	ser := serializer.NewBinarySerializer()
	coll := newCollection(t, url, 1, ser)

	_, err := coll.Find(context.Background(), property.Criteria{})
	require.Error(t, err)
	assert.Equal(t, store.RetCUnavailable, store.CodeOf(err))
}

func TestRPCCollectionCancelled(t *testing.T) {
	ser := serializer.NewBinarySerializer()
	coll := newCollection(t, startServer(t, ser), 1, ser)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	err := coll.Insert(ctx, record("NEW-NEWY-12", "New York", 1000))
	require.Error(t, err)
	assert.Equal(t, store.RetCUnavailable, store.CodeOf(err))
}
