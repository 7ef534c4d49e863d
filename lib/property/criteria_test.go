package property

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCriteriaMatches(t *testing.T) {
	rec := Record{
		CustomID: "NEW-NEWY-123",
		Address:  "123 Main St",
		City:     "New York",
		State:    "New York",
		Type:     "sale",
	}

	tests := []struct {
		name     string
		criteria Criteria
		expected bool
	}{
		{"empty matches all", Criteria{}, true},
		{"empty any matches all", Criteria{Any: true}, true},
		{"custom id exact", Criteria{CustomID: "NEW-NEWY-123"}, true},
		{"custom id is not a substring match", Criteria{CustomID: "NEW-NEWY"}, false},
		{"custom id short-circuits other fields", Criteria{CustomID: "NEW-NEWY-123", City: "Boston"}, true},
		{"city case-insensitive substring", Criteria{City: "new yo"}, true},
		{"all fields", Criteria{City: "york", State: "NEW", Type: "SALE", Address: "main"}, true},
		{"and with one miss", Criteria{City: "york", Type: "rent"}, false},
		{"or with one hit", Criteria{City: "boston", Type: "sale", Any: true}, true},
		{"or without hit", Criteria{City: "boston", Type: "rent", Any: true}, false},
		{"regex characters are literal", Criteria{Address: "1.3"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.criteria.Matches(rec))
		})
	}
}

func TestSortRecords(t *testing.T) {
	records := []Record{
		{CustomID: "a", Price: 300},
		{CustomID: "b", Price: 100},
		{CustomID: "c", Price: 200},
		{CustomID: "d", Price: 100},
	}

	SortRecords(records, SortAsc)
	assert.Equal(t, []string{"b", "d", "c", "a"}, ids(records))

	SortRecords(records, SortDesc)
	assert.Equal(t, []string{"a", "c", "b", "d"}, ids(records))

	SortRecords(records, SortNone)
	assert.Equal(t, []string{"a", "c", "b", "d"}, ids(records))
}

func TestParseSortOrder(t *testing.T) {
	o, err := ParseSortOrder(" ASC ")
	require.NoError(t, err)
	assert.Equal(t, SortAsc, o)

	o, err = ParseSortOrder("")
	require.NoError(t, err)
	assert.Equal(t, SortNone, o)

	_, err = ParseSortOrder("price")
	assert.Error(t, err)
}

func ids(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.CustomID
	}
	return out
}
