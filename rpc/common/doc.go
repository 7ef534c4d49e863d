// Package common holds what the shard servers and their clients share.
//
// Message is the single request and response type of the RPC protocol. Its
// MsgType selects the collection operation (insert, findOne, find, update,
// delete, info). Records, criteria and update fields travel as JSON in Value,
// the custom_id of point operations in Key. A failed response carries the
// store.RetCode in Code, so the client rebuilds the same *store.Error the
// collection returned on the server:
//
//	resp := common.NewInsertResponse(store.NewError(store.RetCDuplicate, "exists"))
//	store.CodeOf(resp.Error()) // RetCDuplicate
//
// ServerConfig and ClientConfig are filled from flags by the cmd packages and
// checked with Validate. ServerConfig also converts itself into the Dragonboat
// configs of the replicated collections.
//
// InitLoggers installs the "LEVEL | package | message" log format for the
// loggers of this module and of Dragonboat.
package common
