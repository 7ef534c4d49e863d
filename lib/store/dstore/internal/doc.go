// Package internal provides the protocol structures and serialization logic for the
// dstore package. It defines the format used to transmit operations between the
// collection client and the replicated state machine.
//
// This package is intended for internal use by the dstore implementation and should
// not be imported directly by external code.
//
// The package consists of two main components:
//
//   - Command System: Write operations (Insert, Update, Delete) that modify the state of
//     a shard. Commands are serialized, proposed to the RAFT cluster and executed on the
//     state machine of every replica.
//
//   - Query System: Read operations (FindOne, Find, GetDBInfo). Queries are executed
//     locally on the state machine and therefore do not require serialization.
//
// Command Format:
//
//	- 1 byte: Command type (Insert, Update, Delete)
//	- 4 bytes: Key length (uint32, big endian)
//	- N bytes: Key data (the custom_id)
//	- M bytes: Value data (encoded record for Insert, JSON field updates for Update)
//
// Thread Safety:
//
//	The types in this package are not thread-safe and should not be shared across
//	goroutines without external synchronization. The RAFT protocol applies commands
//	sequentially on the state machine.
package internal
