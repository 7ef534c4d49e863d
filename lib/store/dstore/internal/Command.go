package internal

import (
	"encoding/binary"
	"fmt"

	"github.com/ValentinKolb/dProp/lib/db"
)

// CommandType defines the possible operations for the state machine.
type CommandType uint8

const (
	CommandTInsert CommandType = iota // Insert a record if its custom_id is free.
	CommandTUpdate                    // Apply field updates to a record.
	CommandTDelete                    // Delete a record.
)

// headerSize is Type (1 byte) + KeyLen (4 bytes)
const headerSize = 1 + 4

func (ct CommandType) String() string {
	switch ct {
	case CommandTInsert:
		return "Insert"
	case CommandTUpdate:
		return "Update"
	case CommandTDelete:
		return "Delete"
	default:
		return fmt.Sprintf("Unknown(%d)", ct)
	}
}

// ToDBFeature converts a CommandType to the corresponding db.Feature.
// This can be used for checking if the database supports a certain operation.
func (ct CommandType) ToDBFeature() (db.Feature, error) {
	switch ct {
	case CommandTInsert:
		return db.FeaturePutIfAbsent, nil
	case CommandTUpdate:
		return db.FeatureUpdate, nil
	case CommandTDelete:
		return db.FeatureDelete, nil
	default:
		return 0, fmt.Errorf("unknown command type %d", ct)
	}
}

// Command represents a command to be executed by the state machine (a single entry in the raft log)
//
// Key is the custom_id of the record. Value holds the encoded record for inserts and the
// JSON encoded field updates for updates, it is empty for deletes.
type Command struct {
	Type  CommandType
	Key   string
	Value []byte
}

// SizeBytes returns the exact number of bytes needed to serialize this command
func (command *Command) SizeBytes() int {
	return headerSize + len(command.Key) + len(command.Value)
}

// Serialize serializes a command into a byte array with the format:
// 1 byte for operation type,
// 4 bytes for key length (big endian),
// N bytes for key data,
// N bytes for value data (optional)
func (command *Command) Serialize() []byte {
	result := make([]byte, command.SizeBytes())

	result[0] = byte(command.Type)
	binary.BigEndian.PutUint32(result[1:headerSize], uint32(len(command.Key)))
	copy(result[headerSize:], command.Key)
	copy(result[headerSize+len(command.Key):], command.Value)

	return result
}

// Deserialize extracts all Command fields from a byte array.
func (command *Command) Deserialize(data []byte) error {
	if len(data) < headerSize {
		return fmt.Errorf("data too short for command")
	}

	command.Type = CommandType(data[0])
	keyLen := binary.BigEndian.Uint32(data[1:headerSize])

	if len(data) < headerSize+int(keyLen) {
		return fmt.Errorf("data too short for key of length %d", keyLen)
	}
	command.Key = string(data[headerSize : headerSize+keyLen])

	rest := data[headerSize+int(keyLen):]
	if len(rest) == 0 {
		command.Value = nil
		return nil
	}

	// Reuse existing buffer if possible to reduce allocations
	if cap(command.Value) < len(rest) {
		command.Value = make([]byte, len(rest))
	} else {
		command.Value = command.Value[:len(rest)]
	}
	copy(command.Value, rest)

	return nil
}
