package server

import (
	"context"
	"fmt"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ValentinKolb/dProp/lib/db"
	"github.com/ValentinKolb/dProp/lib/db/engines/maple"
	"github.com/ValentinKolb/dProp/lib/store"
	"github.com/ValentinKolb/dProp/lib/store/dstore"
	"github.com/ValentinKolb/dProp/lib/store/lstore"
	"github.com/ValentinKolb/dProp/rpc/common"
	"github.com/ValentinKolb/dProp/rpc/serializer"
	"github.com/ValentinKolb/dProp/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("rpc")

// serverShard is a struct that represents a shard in the RPC server
// It contains the collection it encapsulates and the adapter
// that handles requests for the collection
type serverShard struct {
	Collection store.ICollection
	Adapter    IRPCServerAdapter
}

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		http.NewHttpServerTransport(),
//		serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(ctx); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) *RPCServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	return &RPCServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		shards:     xsync.NewMapOf[uint64, serverShard](),
	}
}

// RPCServer hosts one collection per configured shard ID
type RPCServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	shards     *xsync.MapOf[uint64, serverShard]
	nodeHost   *dragonboat.NodeHost
}

// AddShard registers coll under shardID, replacing any collection registered before
func (s *RPCServer) AddShard(shardID uint64, coll store.ICollection) {
	s.shards.Store(shardID, serverShard{
		Collection: coll,
		Adapter:    NewCollectionServerAdapter(),
	})
}

// HandleRequest decodes a request for shardId, runs it against the shard's collection
// and returns the encoded response. It satisfies transport.ServerHandleFunc.
func (s *RPCServer) HandleRequest(ctx context.Context, shardId uint64, req []byte) []byte {
	start := time.Now()

	var msg common.Message
	var respMsg *common.Message

	if shard, ok := s.shards.Load(shardId); !ok {
		respMsg = common.NewErrorResponse(store.RetCUnavailable, fmt.Sprintf("shard %d not found", shardId))
	} else if err := s.serializer.Deserialize(req, &msg); err != nil {
		respMsg = common.NewErrorResponse(store.RetCInvalidOperation, fmt.Sprintf("failed to deserialize request: %s", err))
	} else {
		if s.config.TimeoutSecond > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(s.config.TimeoutSecond)*time.Second)
			defer cancel()
		}
		respMsg = shard.Adapter.Handle(ctx, &msg, shard.Collection)
	}

	observe(shardId, msg.MsgType, respMsg, start)

	val, err := s.serializer.Serialize(*respMsg)
	if err != nil {
		Logger.Errorf("failed to serialize response for shard %d: %v", shardId, err)
		val, _ = s.serializer.Serialize(*common.NewErrorResponse(
			store.RetCInternalError,
			fmt.Sprintf("failed to serialize response: %s", err),
		))
	}
	return val
}

// Init creates the collections for all configured shards and registers the transport handler.
// It is called by Serve and only needs to be called directly when the transport is driven externally.
func (s *RPCServer) Init() error {
	if s.config.LogLevel != "" {
		if err := common.InitLoggers(s.config.LogLevel); err != nil {
			return err
		}
	}

	Logger.Infof("Created RPC Server")
	Logger.Infof("%s", s.config.String())

	// Function to create a new database instance
	dbFactory := func() db.DocDB { return maple.NewMapleDB(nil) }

	// Only create the NodeHost if we have replicated shards
	if s.config.HasReplicatedShard() && s.nodeHost == nil {
		nh, err := dragonboat.NewNodeHost(s.config.ToNodeHostConfig())
		if err != nil {
			return fmt.Errorf("failed to create node host: %w", err)
		}
		s.nodeHost = nh
	}

	timeout := time.Duration(s.config.TimeoutSecond) * time.Second

	/*
		Note: A single RPC Server can host any number of local and replicated shards.
		Each shard holds one property collection. Replicated shards run one RAFT group
		each, all sharing the same NodeHost.
	*/

	for _, shardConfig := range s.config.Shards {
		switch shardConfig.Type {
		case common.ShardTypeLocalCollection:
			s.AddShard(shardConfig.ShardID, lstore.NewLocalStore(dbFactory))
			Logger.Infof("created local collection for shard %d", shardConfig.ShardID)

		case common.ShardTypeReplicatedCollection:
			err := s.nodeHost.StartConcurrentReplica(
				s.config.ClusterMembers,
				false,
				dstore.CreateStateMaschineFactory(dbFactory),
				s.config.ToDragonboatConfig(shardConfig.ShardID),
			)
			if err != nil {
				return fmt.Errorf("failed to start shard %d: %w", shardConfig.ShardID, err)
			}
			s.AddShard(shardConfig.ShardID, dstore.NewDistributedStore(s.nodeHost, shardConfig.ShardID, timeout))
			Logger.Infof("created replicated collection for shard %d", shardConfig.ShardID)

		default:
			return fmt.Errorf("invalid shard type: %s", shardConfig.Type)
		}
	}

	s.transport.RegisterHandler(s.HandleRequest)

	Logger.Infof("dProp setup completed successfully")
	return nil
}

// Serve initializes the shards and runs the transport until ctx is done
func (s *RPCServer) Serve(ctx context.Context) error {
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Close()
	return s.transport.Listen(ctx, s.config)
}

// Close stops the RAFT node host, if one was started
func (s *RPCServer) Close() {
	if s.nodeHost != nil {
		s.nodeHost.Close()
		s.nodeHost = nil
	}
}

// --------------------------------------------------------------------------
// Metrics
// --------------------------------------------------------------------------

// observe records the request in the per shard counters
func observe(shardId uint64, t common.MessageType, resp *common.Message, start time.Time) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`dprop_rpc_requests_total{shard="%d",type="%s"}`, shardId, t)).Inc()
	metrics.GetOrCreateHistogram(fmt.Sprintf(`dprop_rpc_request_duration_seconds{shard="%d"}`, shardId)).UpdateDuration(start)
	if resp.Err != "" {
		code := store.RetCode(resp.Code)
		metrics.GetOrCreateCounter(fmt.Sprintf(`dprop_rpc_errors_total{shard="%d",code="%s"}`, shardId, code)).Inc()
	}
}
