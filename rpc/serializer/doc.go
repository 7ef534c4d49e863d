// Package serializer converts RPC Messages to bytes and back.
//
// Three formats are available and can be chosen with the --serializer flag.
// Client and server must use the same one.
//
//   - binary: a compact format written for the Message struct. A flag byte marks
//     which fields are present, only those are written. Fastest and smallest.
//
//   - json: standard JSON. The payloads in Message.Value are JSON documents
//     themselves, which makes this format easy to inspect. This is the default.
//
//   - gob: Go's gob encoding. Works, but is slower and larger than both others
//     for messages of this size, see the benchmarks in this package.
//
// All serializers are stateless and safe for concurrent use. Deserialize
// overwrites every field of the target Message, so one Message value can be
// reused for many decodes.
//
//	s := serializer.NewBinarySerializer()
//	data, err := s.Serialize(*common.NewFindOneRequest("NEW-NEWY-123"))
//	// ... send data ...
//	var resp common.Message
//	err = s.Deserialize(respData, &resp)
package serializer
