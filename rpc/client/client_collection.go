package client

import (
	"context"
	"encoding/json"

	"github.com/ValentinKolb/dProp/lib/db"
	"github.com/ValentinKolb/dProp/lib/property"
	"github.com/ValentinKolb/dProp/lib/store"
	"github.com/ValentinKolb/dProp/rpc/common"
	"github.com/ValentinKolb/dProp/rpc/serializer"
	"github.com/ValentinKolb/dProp/rpc/transport"
)

// NewRPCCollection creates a collection that forwards every operation to the shard
// with the given ID on a remote server. The transport is connected with config.
func NewRPCCollection(
	shardId uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (store.ICollection, error) {
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	return &rpcCollection{
		rpcClientAdapter{
			shardId:    shardId,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}, nil
}

type rpcCollection struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

func (c *rpcCollection) Insert(ctx context.Context, rec property.Record) error {
	data, err := rec.Marshal()
	if err != nil {
		return store.NewError(store.RetCInvalidOperation, err.Error())
	}
	_, err = c.invoke(ctx, common.NewInsertRequest(data))
	return err
}

func (c *rpcCollection) FindOne(ctx context.Context, customID string) (property.Record, bool, error) {
	resp, err := c.invoke(ctx, common.NewFindOneRequest(customID))
	if err != nil || !resp.Ok {
		return property.Record{}, false, err
	}
	rec, err := property.UnmarshalRecord(resp.Value)
	if err != nil {
		return property.Record{}, false, store.NewError(store.RetCInternalError, err.Error())
	}
	return rec, true, nil
}

func (c *rpcCollection) Find(ctx context.Context, criteria property.Criteria) ([]property.Record, error) {
	data, err := json.Marshal(criteria)
	if err != nil {
		return nil, store.NewError(store.RetCInvalidOperation, err.Error())
	}
	resp, err := c.invoke(ctx, common.NewFindRequest(data))
	if err != nil {
		return nil, err
	}
	recs := []property.Record{}
	if len(resp.Value) > 0 {
		if err := json.Unmarshal(resp.Value, &recs); err != nil {
			return nil, store.NewError(store.RetCInternalError, err.Error())
		}
	}
	return recs, nil
}

func (c *rpcCollection) Update(ctx context.Context, customID string, fields property.Fields) (bool, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return false, store.NewError(store.RetCInvalidOperation, err.Error())
	}
	resp, err := c.invoke(ctx, common.NewUpdateRequest(customID, data))
	if resp == nil {
		return false, err
	}
	return resp.Ok, err
}

func (c *rpcCollection) Delete(ctx context.Context, customID string) (bool, error) {
	resp, err := c.invoke(ctx, common.NewDeleteRequest(customID))
	if resp == nil {
		return false, err
	}
	return resp.Ok, err
}

func (c *rpcCollection) GetDBInfo(ctx context.Context) (db.DatabaseInfo, error) {
	resp, err := c.invoke(ctx, common.NewInfoRequest())
	if err != nil {
		return db.DatabaseInfo{}, err
	}
	var info db.DatabaseInfo
	if err := json.Unmarshal(resp.Value, &info); err != nil {
		return db.DatabaseInfo{}, store.NewError(store.RetCInternalError, err.Error())
	}
	return info, nil
}
