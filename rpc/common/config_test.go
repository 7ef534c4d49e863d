package common

import (
	"strings"
	"testing"
)

func TestServerConfigValidate(t *testing.T) {
	local := []ServerShard{{ShardID: 1, Type: ShardTypeLocalCollection}, {ShardID: 2, Type: ShardTypeLocalCollection}}
	replicated := []ServerShard{{ShardID: 1, Type: ShardTypeReplicatedCollection}}
	members := map[uint64]string{7: "localhost:63001"}

	tests := []struct {
		name    string
		config  ServerConfig
		wantErr bool
	}{
		{"local shards", ServerConfig{Shards: local, LogLevel: "info"}, false},
		{"no shards", ServerConfig{}, true},
		{"duplicate shard", ServerConfig{Shards: append(local, local[0])}, true},
		{"bad log level", ServerConfig{Shards: local, LogLevel: "loud"}, true},
		{"replicated", ServerConfig{Shards: replicated, ReplicaID: 7, ClusterMembers: members, RTTMillisecond: 100}, false},
		{"replicated without replica id", ServerConfig{Shards: replicated, ClusterMembers: members, RTTMillisecond: 100}, true},
		{"replicated without members", ServerConfig{Shards: replicated, ReplicaID: 7, RTTMillisecond: 100}, true},
		{"replica not a member", ServerConfig{Shards: replicated, ReplicaID: 8, ClusterMembers: members, RTTMillisecond: 100}, true},
		{"replicated without rtt", ServerConfig{Shards: replicated, ReplicaID: 7, ClusterMembers: members}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestClientConfigValidate(t *testing.T) {
	shards := []RouterShard{{Name: "properties_db1", ShardID: 1}, {Name: "properties_db2", ShardID: 2}}

	tests := []struct {
		name    string
		config  ClientConfig
		wantErr bool
	}{
		{"valid", ClientConfig{Endpoints: []string{"localhost:8080"}, Shards: shards}, false},
		{"no endpoints", ClientConfig{Shards: shards}, true},
		{"one shard", ClientConfig{Endpoints: []string{"localhost:8080"}, Shards: shards[:1]}, true},
		{"duplicate name", ClientConfig{Endpoints: []string{"localhost:8080"}, Shards: []RouterShard{shards[0], shards[0]}}, true},
		{"negative timeout", ClientConfig{Endpoints: []string{"localhost:8080"}, Shards: shards, ShardTimeoutSecond: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigString(t *testing.T) {
	server := ServerConfig{
		Shards:         []ServerShard{{ShardID: 3, Type: ShardTypeReplicatedCollection}},
		ReplicaID:      7,
		ClusterMembers: map[uint64]string{9: "b:2", 7: "a:1"},
		RTTMillisecond: 100,
		Endpoint:       "0.0.0.0:8080",
	}
	out := server.String()
	for _, want := range []string{"RPC SERVER", "0.0.0.0:8080", "replicated collection", "RAFT", "1000 ms", "CLUSTER"} {
		if !strings.Contains(out, want) {
			t.Errorf("ServerConfig.String() missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "a:1") > strings.Index(out, "b:2") {
		t.Errorf("cluster members not sorted by id:\n%s", out)
	}

	server.Shards[0].Type = ShardTypeLocalCollection
	if strings.Contains(server.String(), "RAFT") {
		t.Errorf("RAFT section printed for local shards only")
	}

	client := ClientConfig{
		Endpoints: []string{"http://localhost:8080"},
		Shards:    []RouterShard{{Name: "properties_db1", ShardID: 1}},
	}
	out = client.String()
	for _, want := range []string{"ROUTER", "properties_db1", "shard 1", "http://localhost:8080"} {
		if !strings.Contains(out, want) {
			t.Errorf("ClientConfig.String() missing %q:\n%s", want, out)
		}
	}
}
