package internal

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// TestSizeBytes tests the SizeBytes method
func TestSizeBytes(t *testing.T) {
	tests := []struct {
		name     string
		command  Command
		expected int
	}{
		{
			name:     "Command with key and value",
			command:  Command{Type: CommandTInsert, Key: "NEW-NEWY-123", Value: []byte("{}")},
			expected: 1 + 4 + 12 + 2, // Type + KeyLen + Key + Value
		},
		{
			name:     "Command without value",
			command:  Command{Type: CommandTDelete, Key: "NEW-NEWY-123"},
			expected: 1 + 4 + 12,
		},
		{
			name:     "Command with empty key",
			command:  Command{Type: CommandTUpdate, Value: []byte("{}")},
			expected: 1 + 4 + 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size := tt.command.SizeBytes()
			if size != tt.expected {
				t.Errorf("SizeBytes() = %v, want %v", size, tt.expected)
			}
		})
	}
}

// TestSerializeDeserialize tests both Serialize and Deserialize methods
func TestSerializeDeserialize(t *testing.T) {
	tests := []struct {
		name    string
		command Command
	}{
		{
			name:    "Insert with record",
			command: Command{Type: CommandTInsert, Key: "NEW-NEWY-123", Value: []byte(`{"custom_id":"NEW-NEWY-123"}`)},
		},
		{
			name:    "Update with fields",
			command: Command{Type: CommandTUpdate, Key: "NEW-NEWY-123", Value: []byte(`{"price":999}`)},
		},
		{
			name:    "Delete without value",
			command: Command{Type: CommandTDelete, Key: "NEW-NEWY-123"},
		},
		{
			name:    "Command with empty key",
			command: Command{Type: CommandTInsert, Key: "", Value: []byte("x")},
		},
		{
			name:    "Command with Unicode key",
			command: Command{Type: CommandTDelete, Key: "ZÜR-GENÈ-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.command.Serialize()

			var newCommand Command
			if err := newCommand.Deserialize(data); err != nil {
				t.Fatalf("Deserialize() error = %v", err)
			}

			if newCommand.Type != tt.command.Type {
				t.Errorf("Type mismatch: got %v, want %v", newCommand.Type, tt.command.Type)
			}
			if newCommand.Key != tt.command.Key {
				t.Errorf("Key mismatch: got %q, want %q", newCommand.Key, tt.command.Key)
			}
			if !bytes.Equal(newCommand.Value, tt.command.Value) {
				t.Errorf("Value mismatch: got %v, want %v", newCommand.Value, tt.command.Value)
			}
			if tt.command.SizeBytes() != len(data) {
				t.Errorf("SizeBytes() = %d, but serialized data length = %d", tt.command.SizeBytes(), len(data))
			}
		})
	}
}

// TestDeserializeErrors tests error cases in Deserialize
func TestDeserializeErrors(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		expectedErr string
	}{
		{
			name:        "Empty data",
			data:        []byte{},
			expectedErr: "data too short for command",
		},
		{
			name:        "Data too short (less than header)",
			data:        []byte{1, 2, 3},
			expectedErr: "data too short for command",
		},
		{
			name: "Invalid key length",
			data: func() []byte {
				data := make([]byte, headerSize)
				data[0] = byte(CommandTInsert)
				binary.BigEndian.PutUint32(data[1:5], 1000)
				return data
			}(),
			expectedErr: "data too short for key of length 1000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cmd Command
			err := cmd.Deserialize(tt.data)
			if err == nil {
				t.Fatalf("Expected error but got nil")
			}
			if err.Error() != tt.expectedErr {
				t.Errorf("Expected error %q, got %q", tt.expectedErr, err.Error())
			}
		})
	}
}

// TestBinaryFormat tests the exact binary format of serialized commands
func TestBinaryFormat(t *testing.T) {
	cmd := Command{Type: CommandTUpdate, Key: "testkey", Value: []byte("testvalue")}

	expected := make([]byte, cmd.SizeBytes())
	expected[0] = byte(CommandTUpdate)
	binary.BigEndian.PutUint32(expected[1:5], 7)
	copy(expected[5:12], "testkey")
	copy(expected[12:], "testvalue")

	if serialized := cmd.Serialize(); !bytes.Equal(serialized, expected) {
		t.Errorf("Binary format does not match:\nGot:      %v\nExpected: %v", serialized, expected)
	}
}

// TestBufferReuse tests that Deserialize reuses the value buffer when it is large enough
func TestBufferReuse(t *testing.T) {
	cmd := Command{Type: CommandTInsert, Key: "key", Value: []byte("original value")}
	before := cap(cmd.Value)

	shorter := Command{Type: CommandTInsert, Key: "key", Value: []byte("changed")}
	if err := cmd.Deserialize(shorter.Serialize()); err != nil {
		t.Fatalf("Deserialize() error = %v", err)
	}
	if cap(cmd.Value) != before {
		t.Errorf("Buffer was not reused: capacity changed from %d to %d", before, cap(cmd.Value))
	}
	if string(cmd.Value) != "changed" {
		t.Errorf("Value not correctly deserialized: got %q", cmd.Value)
	}

	longer := Command{Type: CommandTInsert, Key: "key", Value: bytes.Repeat([]byte("x"), 64)}
	if err := cmd.Deserialize(longer.Serialize()); err != nil {
		t.Fatalf("Deserialize() error = %v", err)
	}
	if !bytes.Equal(cmd.Value, longer.Value) {
		t.Errorf("Value not correctly deserialized")
	}
}

func TestToDBFeature(t *testing.T) {
	for _, ct := range []CommandType{CommandTInsert, CommandTUpdate, CommandTDelete} {
		if _, err := ct.ToDBFeature(); err != nil {
			t.Errorf("ToDBFeature(%s) returned error %v", ct, err)
		}
	}
	if _, err := CommandType(42).ToDBFeature(); err == nil {
		t.Errorf("Expected error for unknown command type")
	}
}
