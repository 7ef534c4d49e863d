package serializer

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/ValentinKolb/dProp/lib/store"
	"github.com/ValentinKolb/dProp/rpc/common"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IRPCSerializer{
	"JSON":   NewJSONSerializer,
	"GOB":    NewGOBSerializer,
	"Binary": NewBinarySerializer,
}

// testMessages creates a set of test messages with different fields filled
func testMessages() []common.Message {
	return []common.Message{
		// Basic message with just a type
		{MsgType: common.MsgTSuccess},

		// Insert request
		{
			MsgType: common.MsgTInsert,
			Value:   []byte(`{"custom_id":"a1b2c3","title":"Flat"}`),
		},

		// FindOne response
		{
			MsgType: common.MsgTFindOne,
			Key:     "a1b2c3",
			Value:   []byte(`{"custom_id":"a1b2c3"}`),
			Ok:      true,
		},

		// Error response with a return code
		{
			MsgType: common.MsgTError,
			Code:    uint64(store.RetCDuplicate),
			Err:     "record a1b2c3 already exists",
		},

		// Message with all fields filled
		{
			MsgType: common.MsgTUpdate,
			Key:     "a1b2c3",
			Value:   []byte(`{"price":1200}`),
			Ok:      true,
			Code:    uint64(store.RetCInvalidOperation),
			Err:     "price must be a number",
			Meta:    []byte("test-meta-data"),
		},
	}
}

// TestSerializerRoundTrip tests that messages can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	messages := testMessages()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, msg := range messages {
				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message %d: %v", i, err)
					continue
				}

				var result common.Message
				if err := serializer.Deserialize(data, &result); err != nil {
					t.Errorf("Failed to deserialize message %d: %v", i, err)
					continue
				}

				if !reflect.DeepEqual(msg, result) {
					t.Errorf("Message %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
						i, msg, result)
				}
			}
		})
	}
}

// TestMessageTypes tests each message type with each serializer
func TestMessageTypes(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for msgType := common.MsgTSuccess; msgType <= common.MsgTInfo; msgType++ {
				data, err := serializer.Serialize(common.Message{MsgType: msgType})
				if err != nil {
					t.Errorf("Failed to serialize message type %s: %v", msgType, err)
					continue
				}

				var result common.Message
				if err := serializer.Deserialize(data, &result); err != nil {
					t.Errorf("Failed to deserialize message type %s: %v", msgType, err)
					continue
				}

				if result.MsgType != msgType {
					t.Errorf("Message type doesn't match after round trip: Expected %s, got %s", msgType, result.MsgType)
				}
			}
		})
	}
}

// TestBinarySerializerSpecific tests specific edge cases for the binary serializer
func TestBinarySerializerSpecific(t *testing.T) {
	serializer := NewBinarySerializer()

	testCases := []struct {
		name string
		msg  common.Message
	}{
		{
			name: "Empty message",
			msg:  common.Message{},
		},
		{
			name: "Empty value and meta slices but not nil",
			msg: common.Message{
				MsgType: common.MsgTFind,
				Value:   []byte{},
				Meta:    []byte{},
			},
		},
		{
			name: "Ok without key",
			msg: common.Message{
				MsgType: common.MsgTDelete,
				Ok:      true,
			},
		},
		{
			name: "Large return code",
			msg: common.Message{
				MsgType: common.MsgTError,
				Code:    1 << 40,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := serializer.Serialize(tc.msg)
			if err != nil {
				t.Fatalf("Failed to serialize: %v", err)
			}

			var result common.Message
			if err := serializer.Deserialize(data, &result); err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}

			if tc.msg.MsgType != result.MsgType || tc.msg.Key != result.Key || tc.msg.Code != result.Code ||
				tc.msg.Ok != result.Ok || tc.msg.Err != result.Err {
				t.Errorf("Scalar field mismatch: expected %+v, got %+v", tc.msg, result)
			}

			// nil and empty slices must stay distinguishable
			if (tc.msg.Value == nil) != (result.Value == nil) || !bytes.Equal(tc.msg.Value, result.Value) {
				t.Errorf("Value mismatch: expected %#v, got %#v", tc.msg.Value, result.Value)
			}
			if (tc.msg.Meta == nil) != (result.Meta == nil) || !bytes.Equal(tc.msg.Meta, result.Meta) {
				t.Errorf("Meta mismatch: expected %#v, got %#v", tc.msg.Meta, result.Meta)
			}
		})
	}
}

// TestDeserializeResetsFields checks that decoding into a used message clears absent fields
func TestDeserializeResetsFields(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			msg := common.Message{
				MsgType: common.MsgTUpdate,
				Key:     "old",
				Value:   []byte("old-value"),
				Ok:      true,
				Code:    3,
				Err:     "old error",
				Meta:    []byte("old-meta"),
			}

			data, err := serializer.Serialize(common.Message{MsgType: common.MsgTSuccess})
			if err != nil {
				t.Fatalf("Failed to serialize: %v", err)
			}
			if err := serializer.Deserialize(data, &msg); err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}

			if !reflect.DeepEqual(msg, common.Message{MsgType: common.MsgTSuccess}) {
				t.Errorf("Expected all fields reset, got %+v", msg)
			}
		})
	}
}

// TestInvalidBinaryData tests how the binary serializer handles corrupt or invalid data
func TestInvalidBinaryData(t *testing.T) {
	serializer := NewBinarySerializer()

	testCases := []struct {
		name        string
		data        []byte
		expectError bool
	}{
		{
			name:        "Empty data",
			data:        []byte{},
			expectError: true,
		},
		{
			name:        "Too short header",
			data:        []byte{1}, // Only message type, no flags
			expectError: true,
		},
		{
			name:        "Valid header only",
			data:        []byte{1, 0}, // Message type 1, no flags
			expectError: false,
		},
		{
			name:        "Invalid length for key",
			data:        []byte{1, hasKey, 0, 0, 0, 5, 'a', 'b', 'c'}, // Claims key length 5 but only 3 bytes provided
			expectError: true,
		},
		{
			name:        "Truncated code",
			data:        []byte{1, hasCode, 0, 0, 0, 4},
			expectError: true,
		},
		{
			name:        "Invalid length for value",
			data:        []byte{1, hasValue, 0, 0, 0, 10}, // Claims value length 10 but no bytes provided
			expectError: true,
		},
		{
			name:        "Missing ok byte",
			data:        []byte{1, hasOk},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var msg common.Message
			err := serializer.Deserialize(tc.data, &msg)

			if tc.expectError && err == nil {
				t.Errorf("Expected error but got none")
			} else if !tc.expectError && err != nil {
				t.Errorf("Did not expect error but got: %v", err)
			}
		})
	}
}
