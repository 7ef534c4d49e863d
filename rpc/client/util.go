package client

import (
	"context"
	"fmt"

	"github.com/ValentinKolb/dProp/lib/store"
	"github.com/ValentinKolb/dProp/rpc/common"
	"github.com/ValentinKolb/dProp/rpc/serializer"
	"github.com/ValentinKolb/dProp/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("rpc")
)

// rpcClientAdapter is a struct that stores all data needed for an implementation of an RPC client
type rpcClientAdapter struct {
	shardId    uint64
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// invoke sends req to the adapter's shard, see invokeRPCRequest
func (a *rpcClientAdapter) invoke(ctx context.Context, req *common.Message) (*common.Message, error) {
	return invokeRPCRequest(ctx, a.shardId, req, a.transport, a.serializer)
}

// invokeRPCRequest is a helper function used for all RPC Clients to send requests.
// All returned errors are *store.Error values:
// transport failures map to RetCUnavailable, errors reported by the server keep their code.
// The response is returned together with a server reported error so callers can still read its fields.
func invokeRPCRequest(
	ctx context.Context,
	shardId uint64,
	req *common.Message,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (*common.Message, error) {
	reqBytes, err := serializer.Serialize(*req)
	if err != nil {
		return nil, store.NewError(store.RetCInternalError, fmt.Sprintf("failed to serialize request: %s", err))
	}

	respBytes, err := transport.Send(ctx, shardId, reqBytes)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, store.FromContext(ctxErr)
		}
		Logger.Debugf("shard %d unreachable: %v", shardId, err)
		return nil, store.NewError(store.RetCUnavailable, fmt.Sprintf("shard %d unreachable: %s", shardId, err))
	}

	resp := &common.Message{}
	if err := serializer.Deserialize(respBytes, resp); err != nil {
		return nil, store.NewError(store.RetCInternalError, fmt.Sprintf("failed to deserialize response: %s", err))
	}

	if err := resp.Error(); err != nil {
		return resp, err
	}
	if resp.MsgType == common.MsgTError {
		return resp, store.NewError(store.RetCInternalError, "server returned an error without message")
	}

	if resp.MsgType != req.MsgType {
		return nil, store.NewError(
			store.RetCInternalError,
			fmt.Sprintf("unexpected message type: %s, expected %s", resp.MsgType, req.MsgType),
		)
	}

	return resp, nil
}
