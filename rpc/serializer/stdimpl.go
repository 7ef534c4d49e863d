package serializer

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"sync"

	"github.com/ValentinKolb/dProp/rpc/common"
	"github.com/cockroachdb/errors"
)

// --------------------------------------------------------------------------
// JSON
// --------------------------------------------------------------------------

// NewJSONSerializer creates a new serializer using json encoding.
// Records, criteria and fields are carried in Message.Value as JSON already,
// so this format is readable end to end when debugging.
func NewJSONSerializer() IRPCSerializer {
	return jsonSerializerImpl{}
}

type jsonSerializerImpl struct{}

func (jsonSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(err, "json serialize")
	}
	return b, nil
}

func (jsonSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	// omitempty fields are missing from the input and would keep their old value
	*msg = common.Message{}
	if err := json.Unmarshal(b, msg); err != nil {
		return errors.Wrap(err, "json deserialize")
	}
	return nil
}

// --------------------------------------------------------------------------
// GOB
// --------------------------------------------------------------------------

// NewGOBSerializer creates a new serializer using Go's gob format
func NewGOBSerializer() IRPCSerializer {
	return gobSerializerImpl{}
}

type gobSerializerImpl struct{}

var gobBuffers = sync.Pool{New: func() any { return new(bytes.Buffer) }}

func (gobSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	buf := gobBuffers.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		gobBuffers.Put(buf)
	}()

	if err := gob.NewEncoder(buf).Encode(msg); err != nil {
		return nil, errors.Wrap(err, "gob serialize")
	}
	// the buffer goes back to the pool, the caller gets its own copy
	return bytes.Clone(buf.Bytes()), nil
}

func (gobSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	// gob skips zero values on the wire, so they have to be zero before decoding
	*msg = common.Message{}
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(msg); err != nil {
		return errors.Wrap(err, "gob deserialize")
	}
	return nil
}
