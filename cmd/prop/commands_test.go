package prop

import (
	"testing"

	"github.com/ValentinKolb/dProp/lib/property"
	"github.com/ValentinKolb/dProp/lib/router"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssignments(t *testing.T) {
	fields, err := parseAssignments([]string{"price=2500", "images=a.jpg, b.jpg", "description=a=b"})
	require.NoError(t, err)
	assert.Equal(t, property.Fields{
		"price":       int64(2500),
		"images":      []string{"a.jpg", "b.jpg"},
		"description": "a=b",
	}, fields)

	_, err = parseAssignments([]string{"price"})
	assert.Error(t, err)

	_, err = parseAssignments([]string{"bedrooms=many"})
	assert.Error(t, err)

	_, err = parseAssignments([]string{"garage=yes"})
	assert.Error(t, err)
}

func TestExplain(t *testing.T) {
	err := explain(&router.DuplicateError{CustomID: "NEW-NEWY-12", Shard: "db1"})
	assert.Contains(t, err.Error(), "NEW-NEWY-12 already exists")

	err = explain(&router.MutationError{Op: "delete", CustomID: "X"})
	assert.Contains(t, err.Error(), "no property with id X")

	err = explain(&router.MutationError{
		Op:       "update",
		CustomID: "X",
		Matched:  []string{"db1"},
		Failed:   []router.ShardFailure{{Shard: "db2", Err: errors.New("timeout")}},
	})
	assert.Contains(t, err.Error(), "db2: timeout")

	verr := property.DefaultSchema.Validate(property.Fields{})
	err = explain(verr)
	assert.Contains(t, err.Error(), "missing required field: 'city'")

	plain := errors.New("boom")
	assert.Equal(t, plain, explain(plain))
}
