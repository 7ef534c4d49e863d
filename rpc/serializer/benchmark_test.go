package serializer

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/ValentinKolb/dProp/lib/property"
	"github.com/ValentinKolb/dProp/lib/store"
	"github.com/ValentinKolb/dProp/rpc/common"
)

func benchRecord(i int) property.Record {
	return property.Record{
		CustomID:      fmt.Sprintf("NEW-NEWY-%d", i),
		Address:       fmt.Sprintf("%d Main St", i),
		City:          "New York",
		State:         "New York",
		ZipCode:       10001,
		Price:         500000,
		Bedrooms:      3,
		Bathrooms:     2,
		SquareFootage: 1500,
		Type:          "sale",
		DateListed:    "2024-01-01",
		Description:   "Bright corner apartment close to the park",
		Images:        []string{"front.jpg", "kitchen.jpg"},
	}
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func findResponse(n int) common.Message {
	recs := make([]property.Record, n)
	for i := range recs {
		recs[i] = benchRecord(i)
	}
	return *common.NewFindResponse(mustJSON(recs), nil)
}

// benchmarkMessages is the traffic between router and shard servers
func benchmarkMessages() map[string]common.Message {
	return map[string]common.Message{
		"FindOneRequest":   *common.NewFindOneRequest("NEW-NEWY-123"),
		"InsertRequest":    *common.NewInsertRequest(mustJSON(benchRecord(123))),
		"InsertResponse":   *common.NewInsertResponse(nil),
		"DuplicateError":   *common.NewInsertResponse(store.NewError(store.RetCDuplicate, "record NEW-NEWY-123 already exists")),
		"FindRequest":      *common.NewFindRequest(mustJSON(property.Criteria{City: "new york", Type: "sale", SortByPrice: property.SortAsc})),
		"FindResponse10":   findResponse(10),
		"FindResponse100":  findResponse(100),
		"UpdateRequest":    *common.NewUpdateRequest("NEW-NEWY-123", mustJSON(property.Fields{"price": 2500, "bedrooms": 4})),
		"DeleteResponse":   *common.NewDeleteResponse(true, nil),
		"UnavailableError": *common.NewErrorResponse(store.RetCUnavailable, "shard 3 not found"),
	}
}

// BenchmarkSerialize reports time and encoded size per message
func BenchmarkSerialize(b *testing.B) {
	for name, factory := range testSerializers {
		for msgName, msg := range benchmarkMessages() {
			b.Run(name+"_"+msgName, func(b *testing.B) {
				serializer := factory()
				var size int
				b.ReportAllocs()
				b.ResetTimer()

				for range b.N {
					data, err := serializer.Serialize(msg)
					if err != nil {
						b.Fatalf("Failed to serialize: %v", err)
					}
					size = len(data)
				}
				b.ReportMetric(float64(size), "bytes")
			})
		}
	}
}

// BenchmarkDeserialize decodes into one reused message, the way the transport does
func BenchmarkDeserialize(b *testing.B) {
	for name, factory := range testSerializers {
		for msgName, msg := range benchmarkMessages() {
			b.Run(name+"_"+msgName, func(b *testing.B) {
				serializer := factory()
				data, err := serializer.Serialize(msg)
				if err != nil {
					b.Fatalf("Failed to serialize: %v", err)
				}
				var out common.Message
				b.ReportAllocs()
				b.ResetTimer()

				for range b.N {
					if err := serializer.Deserialize(data, &out); err != nil {
						b.Fatalf("Failed to deserialize: %v", err)
					}
				}
			})
		}
	}
}
