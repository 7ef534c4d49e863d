package serve

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	cmdUtil "github.com/ValentinKolb/dProp/cmd/util"
	"github.com/ValentinKolb/dProp/lib/db/util"
	"github.com/ValentinKolb/dProp/rpc/common"
	"github.com/ValentinKolb/dProp/rpc/server"
	"github.com/ValentinKolb/dProp/rpc/transport"
	"github.com/ValentinKolb/dProp/rpc/transport/http"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:   "serve",
		Short: "Start a dProp shard server",
		Long: `Start a dProp shard server hosting one property collection per configured shard.
The configuration can be set via command line flags or environment variables.
The format of the environment variables is DPROP_<flag> (e.g. DPROP_TIMEOUT=15)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	cobra.OnInitialize(cmdUtil.InitConfig)

	key := "shards"
	ServeCmd.PersistentFlags().String(key, "1=lstore,2=lstore,3=lstore,4=lstore", cmdUtil.WrapString("Comma-separated list of shards to serve. Format: ID=TYPE where TYPE is one of: lstore (in memory), dstore (replicated with RAFT)"))

	key = "rtt-millisecond"
	ServeCmd.PersistentFlags().Int(key, 100, cmdUtil.WrapString("(dstore only) RTTMillisecond defines the average Round Trip Time (RTT) in milliseconds between two NodeHost instances. \nOther raft configuration parameters (ElectionRTT, HeartbeatRTT) are derived from this value"))

	key = "snapshot-entries"
	ServeCmd.PersistentFlags().Int(key, 10, cmdUtil.WrapString("(dstore only) SnapshotEntries defines how often the state machine should be snapshotted automatically, in applied Raft log entries. 0 disables automatic snapshots (not recommended)"))

	key = "compaction-overhead"
	ServeCmd.PersistentFlags().Int(key, 5, cmdUtil.WrapString("(dstore only) CompactionOverhead defines the number of log entries kept after a snapshot. Recommended value is about 1/2 of SnapshotEntries"))

	key = "data-dir"
	ServeCmd.PersistentFlags().String(key, "data", cmdUtil.WrapString("(dstore only) DataDir is the directory used for the RAFT log and snapshots"))

	key = "replica-id"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("(dstore only) ReplicaID is the unique identifier for this NodeHost instance (e.g. 'node-1')"))

	key = "cluster-members"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("(dstore only) ClusterMembers is a comma-separated list of NodeHost addresses in the format 'node-1=localhost:63001,node-2=localhost:63002,...'"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 5, cmdUtil.WrapString("Timeout in seconds for handling a single request"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the API will listen (e.g. localhost:8080)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	shards, err := cmdUtil.ParseServerShards(viper.GetString("shards"))
	if err != nil {
		return err
	}
	serveCmdConfig.Shards = shards

	serveCmdConfig.RTTMillisecond = viper.GetUint64("rtt-millisecond")
	serveCmdConfig.SnapshotEntries = viper.GetUint64("snapshot-entries")
	serveCmdConfig.CompactionOverhead = viper.GetUint64("compaction-overhead")
	serveCmdConfig.DataDir = viper.GetString("data-dir")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	// replica and member names are hashed into RAFT node ids
	serveCmdConfig.ReplicaID = util.NodeID(viper.GetString("replica-id"))

	serveCmdConfig.ClusterMembers = make(map[uint64]string)
	for _, member := range cmdUtil.SplitList(viper.GetString("cluster-members")) {
		name, addr, ok := strings.Cut(member, "=")
		if !ok {
			return fmt.Errorf("invalid cluster member format: %s (expected ID=address)", member)
		}
		serveCmdConfig.ClusterMembers[util.NodeID(name)] = addr
	}

	return serveCmdConfig.Validate()
}

// run starts the dProp server and blocks until SIGINT or SIGTERM
func run(cmd *cobra.Command, _ []string) error {
	s, err := cmdUtil.GetSerializer()
	if err != nil {
		return err
	}

	var t transport.IRPCServerTransport
	switch viper.GetString("transport") {
	case "http":
		t = http.NewHttpServerTransport()
	default:
		return fmt.Errorf("invalid transport %s (expected http)", viper.GetString("transport"))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.NewRPCServer(*serveCmdConfig, t, s).Serve(ctx)
}
