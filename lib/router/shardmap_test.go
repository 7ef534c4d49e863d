package router

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShardMapKnownPlacement(t *testing.T) {
	// values computed with int(sha256(id).hexdigest(), 16)
	tests := []struct {
		id      string
		primary int
		replica int
	}{
		{"NEW-NEWY-123", 3, 1},
		{"NEW-NEWY-12", 3, 2},
		{"CAL-SANF-500", 2, 3},
		{"TEX-AUST-42", 2, 3},
	}

	m, err := NewShardMap(4)
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			p := m.Primary(tt.id)
			assert.Equal(t, tt.primary, p)
			r, err := m.Replica(tt.id, p)
			require.NoError(t, err)
			assert.Equal(t, tt.replica, r)
		})
	}
}

func TestReplicaNeverEqualsPrimary(t *testing.T) {
	for n := 2; n <= 9; n++ {
		m, err := NewShardMap(n)
		require.NoError(t, err)
		for i := 0; i < 500; i++ {
			id := fmt.Sprintf("ST%d-CITY-%d", n, i)
			p := m.Primary(id)
			r, err := m.Replica(id, p)
			require.NoError(t, err)
			require.NotEqual(t, p, r, "id %s n %d", id, n)
			require.True(t, p >= 0 && p < n)
			require.True(t, r >= 0 && r < n)
		}
	}
}

func TestShardMapIsDeterministic(t *testing.T) {
	a, _ := NewShardMap(7)
	b, _ := NewShardMap(7)
	for i := 0; i < 100; i++ {
		id := fmt.Sprintf("NEW-NEWY-%d", i)
		assert.Equal(t, a.Primary(id), b.Primary(id))
	}
}

func TestShardMapErrors(t *testing.T) {
	_, err := NewShardMap(0)
	assert.Error(t, err)

	m, err := NewShardMap(1)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Primary("anything"))
	_, err = m.Replica("anything", 0)
	assert.Error(t, err)

	m, _ = NewShardMap(3)
	_, err = m.Replica("anything", 3)
	assert.Error(t, err)
}

func TestShardSetValidation(t *testing.T) {
	coll := newFaultyCollection()

	_, err := NewShardSet()
	assert.Error(t, err)

	_, err = NewShardSet(Shard{Name: "", Collection: coll})
	assert.Error(t, err)

	_, err = NewShardSet(Shard{Name: "a"})
	assert.Error(t, err)

	_, err = NewShardSet(Shard{Name: "a", Collection: coll}, Shard{Name: "a", Collection: coll})
	assert.Error(t, err)

	set, err := NewShardSet(Shard{Name: "a", Collection: coll}, Shard{Name: "b", Collection: coll})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, set.Names())
	assert.Equal(t, 2, set.Len())
}
