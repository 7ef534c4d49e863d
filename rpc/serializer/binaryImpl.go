package serializer

import (
	"encoding/binary"
	"fmt"

	"github.com/ValentinKolb/dProp/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format.
//
// Layout: MsgType (1 byte) | flags (1 byte) | present fields in flag order.
// Strings and byte slices are prefixed with a 4 byte big endian length,
// the return code is a fixed 8 byte big endian integer.
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasKey   byte = 1 << 0
	hasCode  byte = 1 << 1
	hasValue byte = 1 << 2
	hasOk    byte = 1 << 3
	hasErr   byte = 1 << 4
	hasMeta  byte = 1 << 5
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	result := make([]byte, b.sizeBytes(msg))
	result[0] = byte(msg.MsgType)

	var flags byte
	pos := 2 // after MsgType and flags

	if msg.Key != "" {
		flags |= hasKey
		pos = putBytes(result, pos, []byte(msg.Key))
	}
	if msg.Code != 0 {
		flags |= hasCode
		binary.BigEndian.PutUint64(result[pos:pos+8], msg.Code)
		pos += 8
	}
	if msg.Value != nil {
		flags |= hasValue
		pos = putBytes(result, pos, msg.Value)
	}
	if msg.Ok {
		flags |= hasOk
		result[pos] = 1
		pos++
	}
	if msg.Err != "" {
		flags |= hasErr
		pos = putBytes(result, pos, []byte(msg.Err))
	}
	if msg.Meta != nil {
		flags |= hasMeta
		putBytes(result, pos, msg.Meta)
	}

	result[1] = flags
	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	if len(data) < 2 {
		return fmt.Errorf("data too short for message header")
	}

	msg.MsgType = common.MessageType(data[0])
	flags := data[1]
	r := &reader{data: data, pos: 2}

	msg.Key = ""
	if flags&hasKey != 0 {
		key, err := r.bytes("key")
		if err != nil {
			return err
		}
		msg.Key = string(key)
	}

	msg.Code = 0
	if flags&hasCode != 0 {
		if r.pos+8 > len(data) {
			return fmt.Errorf("data too short for code")
		}
		msg.Code = binary.BigEndian.Uint64(data[r.pos : r.pos+8])
		r.pos += 8
	}

	if flags&hasValue != 0 {
		value, err := r.bytes("value")
		if err != nil {
			return err
		}
		msg.Value = reuse(msg.Value, value)
	} else {
		msg.Value = nil
	}

	msg.Ok = false
	if flags&hasOk != 0 {
		if r.pos+1 > len(data) {
			return fmt.Errorf("data too short for ok flag")
		}
		msg.Ok = data[r.pos] == 1
		r.pos++
	}

	msg.Err = ""
	if flags&hasErr != 0 {
		e, err := r.bytes("error")
		if err != nil {
			return err
		}
		msg.Err = string(e)
	}

	if flags&hasMeta != 0 {
		meta, err := r.bytes("meta")
		if err != nil {
			return err
		}
		msg.Meta = reuse(msg.Meta, meta)
	} else {
		msg.Meta = nil
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	size := 2 // MsgType + flags

	if msg.Key != "" {
		size += 4 + len(msg.Key)
	}
	if msg.Code != 0 {
		size += 8
	}
	if msg.Value != nil {
		size += 4 + len(msg.Value)
	}
	if msg.Ok {
		size++
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err)
	}
	if msg.Meta != nil {
		size += 4 + len(msg.Meta)
	}

	return size
}

// putBytes writes a length prefixed byte slice at pos and returns the new position
func putBytes(dst []byte, pos int, src []byte) int {
	binary.BigEndian.PutUint32(dst[pos:pos+4], uint32(len(src)))
	pos += 4
	copy(dst[pos:pos+len(src)], src)
	return pos + len(src)
}

// reuse copies src into dst, allocating only if dst is too small.
// The result is never nil, so an empty field stays distinguishable from a missing one.
func reuse(dst, src []byte) []byte {
	if dst == nil || cap(dst) < len(src) {
		dst = make([]byte, len(src))
	} else {
		dst = dst[:len(src)]
	}
	copy(dst, src)
	return dst
}

// reader tracks the read position while decoding length prefixed fields
type reader struct {
	data []byte
	pos  int
}

// bytes reads a length prefixed field. The returned slice aliases the input.
func (r *reader) bytes(field string) ([]byte, error) {
	if r.pos+4 > len(r.data) {
		return nil, fmt.Errorf("data too short for %s length", field)
	}
	n := int(binary.BigEndian.Uint32(r.data[r.pos : r.pos+4]))
	r.pos += 4
	if n < 0 || r.pos+n > len(r.data) {
		return nil, fmt.Errorf("data too short for %s data", field)
	}
	out := r.data[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}
