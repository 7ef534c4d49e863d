package testing

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/ValentinKolb/dProp/lib/db"
)

// DBFactory is a function that creates a new instance of a DocDB implementation
type DBFactory func() db.DocDB

// RunDocDBTests runs the conformance test suite for a DocDB implementation.
func RunDocDBTests(t *testing.T, name string, factory DBFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Put&Get", func(t *testing.T) {
			testPutGet(t, factory())
		})

		t.Run("PutIfAbsent", func(t *testing.T) {
			testPutIfAbsent(t, factory())
		})

		t.Run("Update", func(t *testing.T) {
			testUpdate(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("Range", func(t *testing.T) {
			testRange(t, factory())
		})

		t.Run("WriteIndex", func(t *testing.T) {
			testWriteIndex(t, factory())
		})

		t.Run("SaveLoad", func(t *testing.T) {
			testSaveLoad(t, factory)
		})

		t.Run("ConcurrentUpdate", func(t *testing.T) {
			testConcurrentUpdate(t, factory())
		})

		t.Run("Info", func(t *testing.T) {
			testInfo(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the database supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, database db.DocDB, feature db.Feature) {
	if !database.SupportsFeature(feature) {
		t.Skip()
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testPutGet(t *testing.T, database db.DocDB) {
	defer database.Close()
	requireFeature(t, database, db.FeaturePut|db.FeatureGet|db.FeatureHas)

	key := "NEW-NEWY-123"
	doc1 := []byte(`{"price":1}`)
	doc2 := []byte(`{"price":2}`)

	database.Put(key, doc1, 1)
	result, exists := database.Get(key)
	if !exists {
		t.Errorf("Expected key %s to exist after Put", key)
	}
	if !bytes.Equal(result, doc1) {
		t.Errorf("Expected document %s, got %s", doc1, result)
	}

	database.Put(key, doc2, 2)
	result, _ = database.Get(key)
	if !bytes.Equal(result, doc2) {
		t.Errorf("Expected document %s, got %s", doc2, result)
	}

	// stale write is ignored
	database.Put(key, doc1, 1)
	result, _ = database.Get(key)
	if !bytes.Equal(result, doc2) {
		t.Errorf("Expected stale write to be ignored, got %s", result)
	}

	if _, exists := database.Get("missing"); exists {
		t.Errorf("Expected missing key to return exists=false")
	}
	if database.Has("missing") {
		t.Errorf("Expected Has to return false for missing key")
	}
	if !database.Has(key) {
		t.Errorf("Expected Has to return true for %s", key)
	}

	// returned documents must not alias the stored ones
	result[0] = 'X'
	again, _ := database.Get(key)
	if !bytes.Equal(again, doc2) {
		t.Errorf("Modifying a returned document changed the stored document")
	}

	// neither must the input
	input := []byte("abc")
	database.Put("alias", input, 3)
	input[0] = 'X'
	stored, _ := database.Get("alias")
	if string(stored) != "abc" {
		t.Errorf("Modifying the input changed the stored document: %s", stored)
	}
}

func testPutIfAbsent(t *testing.T, database db.DocDB) {
	defer database.Close()
	requireFeature(t, database, db.FeaturePutIfAbsent|db.FeatureGet)

	if !database.PutIfAbsent("k", []byte("first"), 1) {
		t.Errorf("Expected first PutIfAbsent to insert")
	}
	if database.PutIfAbsent("k", []byte("second"), 2) {
		t.Errorf("Expected second PutIfAbsent to be rejected")
	}
	result, _ := database.Get("k")
	if string(result) != "first" {
		t.Errorf("Expected document 'first', got %s", result)
	}
}

func testUpdate(t *testing.T, database db.DocDB) {
	defer database.Close()
	requireFeature(t, database, db.FeaturePut|db.FeatureUpdate|db.FeatureGet)

	found, err := database.Update("missing", 1, func(doc []byte) ([]byte, error) {
		t.Errorf("update function must not run for a missing key")
		return doc, nil
	})
	if found || err != nil {
		t.Errorf("Expected (false, nil) for missing key, got (%v, %v)", found, err)
	}
	if database.Has("missing") {
		t.Errorf("Update of a missing key must not create it")
	}

	database.Put("k", []byte("a"), 2)
	found, err = database.Update("k", 3, func(doc []byte) ([]byte, error) {
		return append(doc, 'b'), nil
	})
	if !found || err != nil {
		t.Errorf("Expected (true, nil), got (%v, %v)", found, err)
	}
	result, _ := database.Get("k")
	if string(result) != "ab" {
		t.Errorf("Expected document 'ab', got %s", result)
	}

	failure := errors.New("rejected")
	found, err = database.Update("k", 4, func(doc []byte) ([]byte, error) {
		return nil, failure
	})
	if !found || !errors.Is(err, failure) {
		t.Errorf("Expected (true, rejected), got (%v, %v)", found, err)
	}
	result, _ = database.Get("k")
	if string(result) != "ab" {
		t.Errorf("Failed update must leave document unchanged, got %s", result)
	}
}

func testDelete(t *testing.T, database db.DocDB) {
	defer database.Close()
	requireFeature(t, database, db.FeaturePut|db.FeatureDelete|db.FeatureHas)

	database.Put("k", []byte("v"), 1)
	if !database.Delete("k", 2) {
		t.Errorf("Expected Delete to report an existing key")
	}
	if database.Has("k") {
		t.Errorf("Expected key to be gone after Delete")
	}
	if database.Delete("k", 3) {
		t.Errorf("Expected second Delete to report a missing key")
	}
	if database.Len() != 0 {
		t.Errorf("Expected empty database, got %d documents", database.Len())
	}
}

func testRange(t *testing.T, database db.DocDB) {
	defer database.Close()
	requireFeature(t, database, db.FeaturePut|db.FeatureRange)

	want := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("key-%03d", i)
		want = append(want, key)
		database.Put(key, []byte(key), uint64(i+1))
	}

	var got []string
	database.Range(func(key string, doc []byte) bool {
		if string(doc) != key {
			t.Errorf("Range delivered document %s for key %s", doc, key)
		}
		got = append(got, key)
		return true
	})
	sort.Strings(got)
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Range did not visit every key exactly once (%d of %d)", len(got), len(want))
	}

	visited := 0
	database.Range(func(string, []byte) bool {
		visited++
		return visited < 5
	})
	if visited != 5 {
		t.Errorf("Expected Range to stop after 5 documents, visited %d", visited)
	}

	if database.Len() != 100 {
		t.Errorf("Expected Len 100, got %d", database.Len())
	}
}

func testWriteIndex(t *testing.T, database db.DocDB) {
	defer database.Close()
	requireFeature(t, database, db.FeaturePut)

	database.Put("a", nil, 5)
	if database.WriteIdx() != 5 {
		t.Errorf("Expected write index 5, got %d", database.WriteIdx())
	}
	database.SetWriteIdx(3)
	if database.WriteIdx() != 5 {
		t.Errorf("Write index must never decrease, got %d", database.WriteIdx())
	}
	database.SetWriteIdx(9)
	if database.WriteIdx() != 9 {
		t.Errorf("Expected write index 9, got %d", database.WriteIdx())
	}
}

func testSaveLoad(t *testing.T, factory DBFactory) {
	source := factory()
	defer source.Close()
	requireFeature(t, source, db.FeaturePut|db.FeatureSave|db.FeatureLoad)

	for i := 0; i < 500; i++ {
		source.Put(fmt.Sprintf("doc-%d", i), []byte(fmt.Sprintf(`{"n":%d}`, i)), uint64(i+1))
	}
	source.Put("empty", []byte{}, 501)

	var buf bytes.Buffer
	if err := source.Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	snapshot := buf.Bytes()

	target := factory()
	defer target.Close()
	target.Put("stale", []byte("x"), 1)

	if err := target.Load(bytes.NewReader(snapshot)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if target.Len() != source.Len() {
		t.Errorf("Expected %d documents after Load, got %d", source.Len(), target.Len())
	}
	if target.Has("stale") {
		t.Errorf("Load must replace the previous content")
	}
	for i := 0; i < 500; i++ {
		key := fmt.Sprintf("doc-%d", i)
		doc, ok := target.Get(key)
		if !ok || string(doc) != fmt.Sprintf(`{"n":%d}`, i) {
			t.Errorf("Document %s not restored correctly: %s", key, doc)
		}
	}
	if target.WriteIdx() != 501 {
		t.Errorf("Expected restored write index 501, got %d", target.WriteIdx())
	}

	// corrupt snapshots are rejected and leave the database untouched
	if err := target.Load(bytes.NewReader([]byte("NOTMAPLE"))); err == nil {
		t.Errorf("Expected error for invalid magic")
	}
	if err := target.Load(bytes.NewReader(snapshot[:len(snapshot)/2])); err == nil {
		t.Errorf("Expected error for truncated snapshot")
	}
	if target.Len() != source.Len() {
		t.Errorf("Failed Load changed the database content")
	}
}

func testConcurrentUpdate(t *testing.T, database db.DocDB) {
	defer database.Close()
	requireFeature(t, database, db.FeaturePut|db.FeatureUpdate|db.FeatureGet)

	const workers, rounds = 8, 200
	database.Put("counter", []byte{0, 0}, 1)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				_, _ = database.Update("counter", 2, func(doc []byte) ([]byte, error) {
					n := int(doc[0])<<8 | int(doc[1])
					n++
					return []byte{byte(n >> 8), byte(n)}, nil
				})
			}
		}()
	}
	wg.Wait()

	doc, _ := database.Get("counter")
	if n := int(doc[0])<<8 | int(doc[1]); n != workers*rounds {
		t.Errorf("Expected %d serialized updates, got %d", workers*rounds, n)
	}
}

func testInfo(t *testing.T, database db.DocDB) {
	defer database.Close()
	requireFeature(t, database, db.FeaturePut)

	database.Put("a", []byte("123"), 1)
	database.Put("b", []byte("45"), 2)

	info := database.GetInfo()
	if info.DocCount != 2 {
		t.Errorf("Expected doc count 2, got %d", info.DocCount)
	}
	if info.SizeBytes <= 0 {
		t.Errorf("Expected positive size, got %d", info.SizeBytes)
	}
	for _, f := range info.SupportedFeatures {
		if !database.SupportsFeature(f) {
			t.Errorf("Feature %s is listed in info but not supported", f)
		}
	}
}
