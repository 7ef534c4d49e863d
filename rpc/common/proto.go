package common

import (
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/dProp/lib/store"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	Key   string `json:"key,omitempty"`   // custom_id, used for: FindOne, Update, Delete
	Value []byte `json:"value,omitempty"` // JSON payload: record, criteria, fields, records or database info

	// Response only fields
	Ok   bool   `json:"ok,omitempty"`   // Used for: FindOne (found), Update and Delete (matched) responses
	Code uint64 `json:"code,omitempty"` // store.RetCode of a failed operation
	Err  string `json:"err,omitempty"`  // Empty if no error, otherwise contains the error message

	// Meta information
	Meta []byte `json:"meta,omitempty"` // Unused, can be used for additional Adapters
}

// Error returns the store error carried by a response, or nil if the operation succeeded.
func (m *Message) Error() error {
	if m.Err == "" && m.Code == uint64(store.RetCSuccess) {
		return nil
	}
	code := store.RetCode(m.Code)
	if code == store.RetCSuccess {
		code = store.RetCInternalError
	}
	return store.NewError(code, m.Err)
}

// withErr copies err into the response fields of msg
func withErr(msg *Message, err error) *Message {
	if err != nil {
		msg.Err = err.Error()
		msg.Code = uint64(store.CodeOf(err))
	}
	return msg
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewInsertRequest creates a new Insert request carrying an encoded record
func NewInsertRequest(record []byte) *Message {
	return &Message{
		MsgType: MsgTInsert,
		Value:   record,
	}
}

// NewInsertResponse creates a new Insert response
func NewInsertResponse(err error) *Message {
	return withErr(&Message{MsgType: MsgTInsert}, err)
}

// NewFindOneRequest creates a new FindOne request
func NewFindOneRequest(customID string) *Message {
	return &Message{
		MsgType: MsgTFindOne,
		Key:     customID,
	}
}

// NewFindOneResponse creates a new FindOne response
func NewFindOneResponse(record []byte, found bool, err error) *Message {
	return withErr(&Message{
		MsgType: MsgTFindOne,
		Ok:      found,
		Value:   record,
	}, err)
}

// NewFindRequest creates a new Find request carrying encoded criteria
func NewFindRequest(criteria []byte) *Message {
	return &Message{
		MsgType: MsgTFind,
		Value:   criteria,
	}
}

// NewFindResponse creates a new Find response carrying the encoded records
func NewFindResponse(records []byte, err error) *Message {
	return withErr(&Message{
		MsgType: MsgTFind,
		Value:   records,
	}, err)
}

// NewUpdateRequest creates a new Update request carrying encoded fields
func NewUpdateRequest(customID string, fields []byte) *Message {
	return &Message{
		MsgType: MsgTUpdate,
		Key:     customID,
		Value:   fields,
	}
}

// NewUpdateResponse creates a new Update response
func NewUpdateResponse(matched bool, err error) *Message {
	return withErr(&Message{
		MsgType: MsgTUpdate,
		Ok:      matched,
	}, err)
}

// NewDeleteRequest creates a new Delete request
func NewDeleteRequest(customID string) *Message {
	return &Message{
		MsgType: MsgTDelete,
		Key:     customID,
	}
}

// NewDeleteResponse creates a new Delete response
func NewDeleteResponse(matched bool, err error) *Message {
	return withErr(&Message{
		MsgType: MsgTDelete,
		Ok:      matched,
	}, err)
}

// NewInfoRequest creates a new Info request
func NewInfoRequest() *Message {
	return &Message{
		MsgType: MsgTInfo,
	}
}

// NewInfoResponse creates a new Info response carrying the encoded database info
func NewInfoResponse(info []byte, err error) *Message {
	return withErr(&Message{
		MsgType: MsgTInfo,
		Value:   info,
	}, err)
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(code store.RetCode, err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Code:    uint64(code),
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTInsert:
		return "insert"
	case MsgTFindOne:
		return "findOne"
	case MsgTFind:
		return "find"
	case MsgTUpdate:
		return "update"
	case MsgTDelete:
		return "delete"
	case MsgTInfo:
		return "info"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	switch s {
	case "insert":
		*t = MsgTInsert
	case "findOne":
		*t = MsgTFindOne
	case "find":
		*t = MsgTFind
	case "update":
		*t = MsgTUpdate
	case "delete":
		*t = MsgTDelete
	case "info":
		*t = MsgTInfo
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// ICollection operations

	MsgTInsert  // Insert a record
	MsgTFindOne // Find a record by custom_id
	MsgTFind    // Find all records matching a criteria
	MsgTUpdate  // Update fields of a record
	MsgTDelete  // Delete a record
	MsgTInfo    // Get database information
)
