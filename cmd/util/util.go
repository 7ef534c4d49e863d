package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ValentinKolb/dProp/lib/router"
	"github.com/ValentinKolb/dProp/rpc/client"
	"github.com/ValentinKolb/dProp/rpc/common"
	"github.com/ValentinKolb/dProp/rpc/serializer"
	"github.com/ValentinKolb/dProp/rpc/transport"
	"github.com/ValentinKolb/dProp/rpc/transport/http"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50

	// EnvPrefix is the prefix of all environment variables read by viper
	EnvPrefix = "dprop"

	// DefaultRouterShards is the shard list used when none is configured
	DefaultRouterShards = "properties_db1=1,properties_db2=2,properties_db3=3,properties_db4=4"
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// InitConfig loads .env files and makes viper read DPROP_* environment variables
func InitConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// SetupRPCClientFlags adds the connection and router flags to a command
func SetupRPCClientFlags(cmd *cobra.Command) {
	key := "timeout"
	cmd.PersistentFlags().Int(key, 10, WrapString("The timeout in seconds of a single HTTP round trip"))

	key = "transport-endpoints"
	cmd.PersistentFlags().String(key, "http://localhost:8080", WrapString("The address of the dProp server. Multiple endpoints can be specified as a comma-separated list and are used round-robin"))

	key = "transport-conn-per-endpoint"
	cmd.PersistentFlags().Int(key, 1, WrapString("Idle connections kept open per endpoint"))

	key = "transport-retries"
	cmd.PersistentFlags().Int(key, 3, WrapString("How many endpoints to try when no connection can be established. A request that reached a server is never repeated"))

	key = "shards"
	cmd.PersistentFlags().String(key, DefaultRouterShards, WrapString("Ordered, comma-separated list of property shards in the format NAME=ID. The order defines the placement of records and must be the same for every client"))

	key = "shard-timeout"
	cmd.PersistentFlags().Int(key, 5, WrapString("Timeout in seconds of every single shard call made by the router"))
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// GetClientConfig reads the client configuration from viper
func GetClientConfig() (*common.ClientConfig, error) {
	shards, err := ParseRouterShards(viper.GetString("shards"))
	if err != nil {
		return nil, err
	}

	config := &common.ClientConfig{
		Endpoints:              SplitList(viper.GetString("transport-endpoints")),
		TimeoutSecond:          viper.GetInt("timeout"),
		RetryCount:             viper.GetInt("transport-retries"),
		ConnectionsPerEndpoint: viper.GetInt("transport-conn-per-endpoint"),
		Shards:                 shards,
		ShardTimeoutSecond:     viper.GetInt("shard-timeout"),
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// GetSerializer creates a serializer based on configuration
func GetSerializer() (serializer.IRPCSerializer, error) {
	return NewSerializer(viper.GetString("serializer"))
}

// NewSerializer creates the serializer with the given name
func NewSerializer(name string) (serializer.IRPCSerializer, error) {
	switch name {
	case "json":
		return serializer.NewJSONSerializer(), nil
	case "gob":
		return serializer.NewGOBSerializer(), nil
	case "binary":
		return serializer.NewBinarySerializer(), nil
	default:
		return nil, fmt.Errorf("invalid serializer %s (expected json, gob or binary)", name)
	}
}

// GetTransport creates a client transport based on configuration
func GetTransport() (transport.IRPCClientTransport, error) {
	switch t := viper.GetString("transport"); t {
	case "http":
		return http.NewHttpClientTransport(), nil
	default:
		return nil, fmt.Errorf("invalid transport %s (expected http)", t)
	}
}

// NewRouter connects one RPC collection per configured shard and builds a router over them
func NewRouter(config *common.ClientConfig, s serializer.IRPCSerializer) (*router.Router, error) {
	shards := make([]router.Shard, 0, len(config.Shards))
	for _, sh := range config.Shards {
		t, err := GetTransport()
		if err != nil {
			return nil, err
		}
		coll, err := client.NewRPCCollection(sh.ShardID, *config, t, s)
		if err != nil {
			return nil, fmt.Errorf("connect shard %s: %w", sh.Name, err)
		}
		shards = append(shards, router.Shard{Name: sh.Name, Collection: coll})
	}

	set, err := router.NewShardSet(shards...)
	if err != nil {
		return nil, err
	}
	return router.New(set, router.WithShardTimeout(time.Duration(config.ShardTimeoutSecond)*time.Second))
}

// --------------------------------------------------------------------------
// Parsing
// --------------------------------------------------------------------------

// SplitList splits a comma-separated list and drops empty entries
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseRouterShards parses "name=id,name=id,..." keeping the order of the list
func ParseRouterShards(s string) ([]common.RouterShard, error) {
	var shards []common.RouterShard
	for _, entry := range SplitList(s) {
		name, id, ok := strings.Cut(entry, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid shard format: %s (expected NAME=ID)", entry)
		}
		shardID, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid shard ID %s: %v", id, err)
		}
		shards = append(shards, common.RouterShard{Name: name, ShardID: shardID})
	}
	if len(shards) == 0 {
		return nil, fmt.Errorf("no shards configured")
	}
	return shards, nil
}

// ParseServerShards parses "id=type,id=type,..." where type is lstore or dstore
func ParseServerShards(s string) ([]common.ServerShard, error) {
	var shards []common.ServerShard
	for _, entry := range SplitList(s) {
		id, typ, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("invalid shard format: %s (expected ID=TYPE)", entry)
		}
		shardID, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid shard ID %s: %v", id, err)
		}

		var shardType common.ServerShardType
		switch strings.TrimSpace(typ) {
		case "lstore":
			shardType = common.ShardTypeLocalCollection
		case "dstore":
			shardType = common.ShardTypeReplicatedCollection
		default:
			return nil, fmt.Errorf("invalid shard type: %s (expected one of: lstore, dstore)", typ)
		}

		shards = append(shards, common.ServerShard{ShardID: shardID, Type: shardType})
	}
	if len(shards) == 0 {
		return nil, fmt.Errorf("no shards configured")
	}
	return shards, nil
}
