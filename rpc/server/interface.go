package server

import (
	"context"

	"github.com/ValentinKolb/dProp/lib/store"
	"github.com/ValentinKolb/dProp/rpc/common"
)

// IRPCServerAdapter is the interface for all RPC server adapters
// It is responsible for handling requests and responses
type IRPCServerAdapter interface {
	// Handle handles a request against the collection and returns a response.
	// Errors are never returned directly, they are set in the response.
	Handle(ctx context.Context, req *common.Message, coll store.ICollection) (resp *common.Message)
}
