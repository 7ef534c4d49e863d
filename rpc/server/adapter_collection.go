package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/dProp/lib/property"
	"github.com/ValentinKolb/dProp/lib/store"
	"github.com/ValentinKolb/dProp/rpc/common"
)

func NewCollectionServerAdapter() IRPCServerAdapter {
	return &collectionServerAdapterImpl{}
}

type collectionServerAdapterImpl struct{}

func (adapter *collectionServerAdapterImpl) Handle(ctx context.Context, req *common.Message, coll store.ICollection) *common.Message {
	if coll == nil {
		return common.NewErrorResponse(store.RetCInternalError, "handler: collection is nil")
	}

	switch req.MsgType {
	case common.MsgTInsert:
		rec, err := property.UnmarshalRecord(req.Value)
		if err != nil {
			return common.NewInsertResponse(invalid(err))
		}
		return common.NewInsertResponse(coll.Insert(ctx, rec))

	case common.MsgTFindOne:
		rec, found, err := coll.FindOne(ctx, req.Key)
		if err != nil || !found {
			return common.NewFindOneResponse(nil, false, err)
		}
		data, err := rec.Marshal()
		if err != nil {
			return common.NewFindOneResponse(nil, false, err)
		}
		return common.NewFindOneResponse(data, true, nil)

	case common.MsgTFind:
		var criteria property.Criteria
		if len(req.Value) > 0 {
			if err := json.Unmarshal(req.Value, &criteria); err != nil {
				return common.NewFindResponse(nil, invalid(err))
			}
		}
		recs, err := coll.Find(ctx, criteria)
		if err != nil {
			return common.NewFindResponse(nil, err)
		}
		data, err := json.Marshal(recs)
		return common.NewFindResponse(data, err)

	case common.MsgTUpdate:
		fields, err := property.DecodeFields(req.Value)
		if err != nil {
			return common.NewUpdateResponse(false, invalid(err))
		}
		matched, err := coll.Update(ctx, req.Key, fields)
		return common.NewUpdateResponse(matched, err)

	case common.MsgTDelete:
		matched, err := coll.Delete(ctx, req.Key)
		return common.NewDeleteResponse(matched, err)

	case common.MsgTInfo:
		info, err := coll.GetDBInfo(ctx)
		if err != nil {
			return common.NewInfoResponse(nil, err)
		}
		data, err := json.Marshal(info)
		return common.NewInfoResponse(data, err)

	default:
		return common.NewErrorResponse(
			store.RetCUnsupportedOperation,
			fmt.Sprintf("RPC CollectionAdapter - Unsupported message type: %s", req.MsgType),
		)
	}
}

// invalid marks a request payload that could not be decoded
func invalid(err error) error {
	return store.NewError(store.RetCInvalidOperation, err.Error())
}
