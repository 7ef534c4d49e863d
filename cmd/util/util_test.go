package util

import (
	"strings"
	"testing"

	"github.com/ValentinKolb/dProp/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRouterShards(t *testing.T) {
	shards, err := ParseRouterShards(DefaultRouterShards)
	require.NoError(t, err)
	require.Len(t, shards, 4)
	assert.Equal(t, common.RouterShard{Name: "properties_db1", ShardID: 1}, shards[0])
	assert.Equal(t, common.RouterShard{Name: "properties_db4", ShardID: 4}, shards[3])

	shards, err = ParseRouterShards(" b=20 , a=10 ,")
	require.NoError(t, err)
	assert.Equal(t, []common.RouterShard{{Name: "b", ShardID: 20}, {Name: "a", ShardID: 10}}, shards)

	for _, bad := range []string{"", "a", "=1", "a=x", "a=-1"} {
		_, err := ParseRouterShards(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseServerShards(t *testing.T) {
	shards, err := ParseServerShards("1=lstore,2=dstore")
	require.NoError(t, err)
	assert.Equal(t, []common.ServerShard{
		{ShardID: 1, Type: common.ShardTypeLocalCollection},
		{ShardID: 2, Type: common.ShardTypeReplicatedCollection},
	}, shards)

	for _, bad := range []string{"", "1", "x=lstore", "1=kv"} {
		_, err := ParseServerShards(bad)
		assert.Error(t, err, bad)
	}
}

func TestNewSerializer(t *testing.T) {
	for _, name := range []string{"json", "gob", "binary"} {
		s, err := NewSerializer(name)
		require.NoError(t, err)
		assert.NotNil(t, s)
	}
	_, err := NewSerializer("xml")
	assert.Error(t, err)
}

func TestWrapString(t *testing.T) {
	wrapped := WrapString("one two three four five six seven eight nine ten eleven twelve thirteen")
	for _, line := range strings.Split(wrapped, "\n") {
		assert.LessOrEqual(t, len(line), Wrap)
	}
}
