package serializer

import "github.com/ValentinKolb/dProp/rpc/common"

// IRPCSerializer converts Messages to and from their wire form.
// Implementations must be safe for concurrent use.
type IRPCSerializer interface {
	// Serialize encodes msg
	Serialize(msg common.Message) ([]byte, error)
	// Deserialize decodes b into msg. Every field of msg is overwritten, fields not
	// present in b are reset to their zero value so a Message can be reused.
	Deserialize(b []byte, msg *common.Message) error
}
