package common

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/lni/dragonboat/v4/config"
)

// --------------------------------------------------------------------------
// Dragonboat
// --------------------------------------------------------------------------

// Election and heartbeat timing in multiples of the RTT, as recommended by the RAFT paper
const (
	electionRTTFactor  = 10
	heartbeatRTTFactor = 1
)

// ToDragonboatConfig returns the RAFT config of the replicated collection with the given shard id
func (c *ServerConfig) ToDragonboatConfig(shardId uint64) config.Config {
	return config.Config{
		ReplicaID:          c.ReplicaID,
		ShardID:            shardId,
		ElectionRTT:        electionRTTFactor,
		HeartbeatRTT:       heartbeatRTTFactor,
		CheckQuorum:        true,
		SnapshotEntries:    c.SnapshotEntries,
		CompactionOverhead: c.CompactionOverhead,
	}
}

// ToNodeHostConfig returns the config of the NodeHost shared by all replicated collections of this server
func (c *ServerConfig) ToNodeHostConfig() config.NodeHostConfig {
	return config.NodeHostConfig{
		WALDir:         c.DataDir,
		NodeHostDir:    c.DataDir,
		RTTMillisecond: c.RTTMillisecond,
		RaftAddress:    c.ClusterMembers[c.ReplicaID],
	}
}

// --------------------------------------------------------------------------
// Server
// --------------------------------------------------------------------------

type ServerShardType string

const (
	ShardTypeLocalCollection      ServerShardType = "local collection"
	ShardTypeReplicatedCollection ServerShardType = "replicated collection"
)

// ServerShard is one property collection hosted by a server
type ServerShard struct {
	ShardID uint64
	Type    ServerShardType
}

// ServerConfig is the configuration of a shard server.
type ServerConfig struct {
	// property shards hosted by this server
	Shards []ServerShard

	// RAFT, only used by replicated collections
	RTTMillisecond     uint64
	SnapshotEntries    uint64
	CompactionOverhead uint64
	DataDir            string
	ReplicaID          uint64
	ClusterMembers     map[uint64]string

	// max duration of a single request
	TimeoutSecond int64

	Endpoint string
	LogLevel string
}

// HasReplicatedShard reports whether any shard is replicated with RAFT
func (c *ServerConfig) HasReplicatedShard() bool {
	return slices.ContainsFunc(c.Shards, func(s ServerShard) bool {
		return s.Type == ShardTypeReplicatedCollection
	})
}

// Validate checks the configuration before the server is started.
// The RAFT settings are only checked when a replicated shard is configured.
func (c *ServerConfig) Validate() error {
	if len(c.Shards) == 0 {
		return errors.New("no shards configured")
	}
	seen := make(map[uint64]bool, len(c.Shards))
	for _, s := range c.Shards {
		if seen[s.ShardID] {
			return errors.Newf("shard %d configured twice", s.ShardID)
		}
		seen[s.ShardID] = true
	}
	if c.LogLevel != "" {
		if _, err := ParseLogLevel(c.LogLevel); err != nil {
			return err
		}
	}

	if !c.HasReplicatedShard() {
		return nil
	}
	if c.ReplicaID == 0 {
		return errors.New("a replica id is required for dstore shards")
	}
	if len(c.ClusterMembers) == 0 {
		return errors.New("cluster members are required for dstore shards")
	}
	if _, ok := c.ClusterMembers[c.ReplicaID]; !ok {
		return errors.Newf("no address found for replica id %d in cluster members", c.ReplicaID)
	}
	if c.RTTMillisecond == 0 {
		return errors.New("rtt must be greater than 0")
	}
	return nil
}

func (c *ServerConfig) String() string {
	var p printer

	p.section("RPC Server")
	p.field("Endpoint", c.Endpoint)
	p.field("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	p.field("Log Level", c.LogLevel)

	p.section("Shards")
	for _, shard := range c.Shards {
		p.field(strconv.FormatUint(shard.ShardID, 10), string(shard.Type))
	}

	if !c.HasReplicatedShard() {
		return p.String()
	}

	p.section("RAFT")
	p.field("Node ID", strconv.FormatUint(c.ReplicaID, 10))
	p.field("RAFT Address", c.ClusterMembers[c.ReplicaID])
	p.field("Round Trip Time", fmt.Sprintf("%d ms", c.RTTMillisecond))
	p.field("Election Timeout", fmt.Sprintf("%d ms", c.RTTMillisecond*electionRTTFactor))
	p.field("Heartbeat Interval", fmt.Sprintf("%d ms", c.RTTMillisecond*heartbeatRTTFactor))
	p.field("Snapshot Entries", strconv.FormatUint(c.SnapshotEntries, 10))
	p.field("Compaction Overhead", strconv.FormatUint(c.CompactionOverhead, 10))
	p.field("Data Directory", c.DataDir)

	p.section("Cluster")
	ids := make([]uint64, 0, len(c.ClusterMembers))
	for id := range c.ClusterMembers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		p.field(strconv.FormatUint(id, 10), c.ClusterMembers[id])
	}
	return p.String()
}

// --------------------------------------------------------------------------
// Client
// --------------------------------------------------------------------------

// RouterShard is a named property shard as seen by the router.
// The order of the shards in ClientConfig.Shards defines the shard indices used for placement.
type RouterShard struct {
	Name    string
	ShardID uint64
}

// ClientConfig configures the connection to the shard servers and the router on top of it.
type ClientConfig struct {
	Endpoints              []string
	TimeoutSecond          int
	RetryCount             int
	ConnectionsPerEndpoint int

	Shards             []RouterShard
	ShardTimeoutSecond int
}

// Validate checks the configuration before any connection is made
func (c *ClientConfig) Validate() error {
	if len(c.Endpoints) == 0 {
		return errors.New("no endpoints configured")
	}
	if len(c.Shards) < 2 {
		return errors.Newf("at least two shards are needed for replication, got %d", len(c.Shards))
	}
	names := make(map[string]bool, len(c.Shards))
	for _, s := range c.Shards {
		if names[s.Name] {
			return errors.Newf("shard name %s used twice", s.Name)
		}
		names[s.Name] = true
	}
	if c.ShardTimeoutSecond < 0 || c.TimeoutSecond < 0 {
		return errors.New("timeouts must not be negative")
	}
	return nil
}

func (c *ClientConfig) String() string {
	var p printer

	p.section("Client")
	p.field("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	p.field("Retry Count", strconv.Itoa(c.RetryCount))
	p.field("Conn. Per Endpoint", strconv.Itoa(max(1, c.ConnectionsPerEndpoint)))
	for i, endpoint := range c.Endpoints {
		p.field(fmt.Sprintf("Endpoint %d", i), endpoint)
	}

	p.section("Router")
	p.field("Shard Timeout", fmt.Sprintf("%d sec", c.ShardTimeoutSecond))
	for i, shard := range c.Shards {
		p.field(fmt.Sprintf("%d %s", i, shard.Name), fmt.Sprintf("shard %d", shard.ShardID))
	}
	return p.String()
}

// printer renders a config as titled sections of aligned name/value lines
type printer struct {
	sb strings.Builder
}

func (p *printer) section(title string) {
	fmt.Fprintf(&p.sb, "\n%s\n", strings.ToUpper(title))
}

func (p *printer) field(name, value string) {
	fmt.Fprintf(&p.sb, "  %-22s: %s\n", name, value)
}

func (p *printer) String() string {
	return p.sb.String()
}
