package testing

import (
	"bytes"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/dProp/lib/db"
)

// sampleDoc has the size of a typical encoded property record
var sampleDoc = bytes.Repeat([]byte("p"), 384)

// RunDocDBBenchmarks runs all benchmarks for a document database implementation
func RunDocDBBenchmarks(b *testing.B, name string, factory DBFactory) {
	b.Run("Put", func(b *testing.B) {
		benchmarkPut(b, factory())
	})

	b.Run("PutIfAbsent", func(b *testing.B) {
		benchmarkPutIfAbsent(b, factory())
	})

	b.Run("Get", func(b *testing.B) {
		benchmarkGet(b, factory())
	})

	b.Run("Update", func(b *testing.B) {
		benchmarkUpdate(b, factory())
	})

	b.Run("Range", func(b *testing.B) {
		benchmarkRange(b, factory())
	})

	b.Run("SaveLoad", func(b *testing.B) {
		benchmarkSaveLoad(b, factory)
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

func benchmarkPut(b *testing.B, database db.DocDB) {
	b.Cleanup(func() { database.Close() })
	requireFeature(b, database, db.FeaturePut)

	var idx atomic.Uint64
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := idx.Add(1)
			database.Put(fmt.Sprintf("doc-%d", i), sampleDoc, i)
		}
	})
}

func benchmarkPutIfAbsent(b *testing.B, database db.DocDB) {
	b.Cleanup(func() { database.Close() })
	requireFeature(b, database, db.FeaturePutIfAbsent)

	var idx atomic.Uint64
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := idx.Add(1)
			// every second key collides with an existing one
			database.PutIfAbsent(fmt.Sprintf("doc-%d", i/2), sampleDoc, i)
		}
	})
}

func benchmarkGet(b *testing.B, database db.DocDB) {
	b.Cleanup(func() { database.Close() })
	requireFeature(b, database, db.FeaturePut|db.FeatureGet)

	const numKeys = 10_000
	for i := 0; i < numKeys; i++ {
		database.Put(fmt.Sprintf("doc-%d", i), sampleDoc, uint64(i+1))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(rand.Int63()))
		for pb.Next() {
			database.Get(fmt.Sprintf("doc-%d", r.Intn(numKeys)))
		}
	})
}

func benchmarkUpdate(b *testing.B, database db.DocDB) {
	b.Cleanup(func() { database.Close() })
	requireFeature(b, database, db.FeaturePut|db.FeatureUpdate)

	const numKeys = 1_000
	for i := 0; i < numKeys; i++ {
		database.Put(fmt.Sprintf("doc-%d", i), sampleDoc, uint64(i+1))
	}

	var idx atomic.Uint64
	idx.Store(numKeys)
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := idx.Add(1)
			_, _ = database.Update(fmt.Sprintf("doc-%d", i%numKeys), i, func(doc []byte) ([]byte, error) {
				doc[0]++
				return doc, nil
			})
		}
	})
}

func benchmarkRange(b *testing.B, database db.DocDB) {
	b.Cleanup(func() { database.Close() })
	requireFeature(b, database, db.FeaturePut|db.FeatureRange)

	for i := 0; i < 10_000; i++ {
		database.Put(fmt.Sprintf("doc-%d", i), sampleDoc, uint64(i+1))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n := 0
		database.Range(func(string, []byte) bool {
			n++
			return true
		})
		if n == 0 {
			b.Fatal("range visited no documents")
		}
	}
}

func benchmarkSaveLoad(b *testing.B, factory DBFactory) {
	source := factory()
	b.Cleanup(func() { source.Close() })
	requireFeature(b, source, db.FeaturePut|db.FeatureSave|db.FeatureLoad)

	for i := 0; i < 10_000; i++ {
		source.Put(fmt.Sprintf("doc-%d", i), sampleDoc, uint64(i+1))
	}

	b.Run("Save", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var buf bytes.Buffer
			if err := source.Save(&buf); err != nil {
				b.Fatal(err)
			}
		}
	})

	var snapshot bytes.Buffer
	if err := source.Save(&snapshot); err != nil {
		b.Fatal(err)
	}

	b.Run("Load", func(b *testing.B) {
		target := factory()
		defer target.Close()
		for i := 0; i < b.N; i++ {
			if err := target.Load(bytes.NewReader(snapshot.Bytes())); err != nil {
				b.Fatal(err)
			}
		}
	})
}
