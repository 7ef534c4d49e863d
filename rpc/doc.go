// Package rpc is the communication layer between the router and the shard
// servers. A shard collection can be used through the network the same way
// as a local one.
//
// The package is organized into several subpackages:
//
//   - common: The Message protocol, configuration structures and logging.
//
//   - transport: Network communication abstraction with an HTTP implementation.
//
//   - serializer: Message serialization with multiple format options (Binary, JSON, GOB)
//     for converting between Message objects and byte arrays.
//
//   - client: RPC client implementing store.ICollection for a remote shard.
//
//   - server: RPC server that hosts shard collections and dispatches requests
//     to them through the collection adapter.
package rpc
