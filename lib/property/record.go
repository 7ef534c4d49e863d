package property

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Field names of a property record
const (
	FieldCustomID      = "custom_id"
	FieldAddress       = "address"
	FieldCity          = "city"
	FieldState         = "state"
	FieldZipCode       = "zip_code"
	FieldPrice         = "price"
	FieldBedrooms      = "bedrooms"
	FieldBathrooms     = "bathrooms"
	FieldSquareFootage = "square_footage"
	FieldType          = "type"
	FieldDateListed    = "date_listed"
	FieldDescription   = "description"
	FieldImages        = "images"
	FieldSourceShards  = "source_shards"
)

// Fields is an inbound, not yet validated property (or a set of field updates).
type Fields map[string]any

// Record is a property document as it is stored on a shard.
// SourceShards is never persisted; it is filled in by a search and lists the shards
// that returned a copy of the record.
type Record struct {
	CustomID      string   `json:"custom_id"`
	Address       string   `json:"address"`
	City          string   `json:"city"`
	State         string   `json:"state"`
	ZipCode       int64    `json:"zip_code"`
	Price         float64  `json:"price"`
	Bedrooms      int64    `json:"bedrooms"`
	Bathrooms     float64  `json:"bathrooms"`
	SquareFootage int64    `json:"square_footage"`
	Type          string   `json:"type"`
	DateListed    string   `json:"date_listed"`
	Description   string   `json:"description"`
	Images        []string `json:"images"`
	SourceShards  []string `json:"source_shards,omitempty"`
}

// RecordFromFields converts validated fields into a Record.
// Fields must have passed Schema.Validate, otherwise an error is returned for the
// first field that cannot be converted.
func RecordFromFields(f Fields) (Record, error) {
	rec := Record{Images: []string{}}
	if err := rec.Apply(f); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Apply sets every field contained in f on the record.
// Unknown fields are ignored, custom_id and source_shards are never touched.
func (r *Record) Apply(f Fields) error {
	for name, value := range f {
		var err error
		switch name {
		case FieldAddress:
			r.Address, err = asString(value)
		case FieldCity:
			r.City, err = asString(value)
		case FieldState:
			r.State, err = asString(value)
		case FieldType:
			r.Type, err = asString(value)
		case FieldDateListed:
			r.DateListed, err = asString(value)
		case FieldDescription:
			r.Description, err = asString(value)
		case FieldZipCode:
			r.ZipCode, err = asInt(value)
		case FieldBedrooms:
			r.Bedrooms, err = asInt(value)
		case FieldSquareFootage:
			r.SquareFootage, err = asInt(value)
		case FieldPrice:
			r.Price, err = asFloat(value)
		case FieldBathrooms:
			r.Bathrooms, err = asFloat(value)
		case FieldImages:
			if value == nil {
				r.Images = []string{}
				continue
			}
			r.Images, err = asStringList(value)
		}
		if err != nil {
			return fmt.Errorf("field '%s': %w", name, err)
		}
	}
	if r.Images == nil {
		r.Images = []string{}
	}
	return nil
}

// Clone returns a deep copy of the record
func (r Record) Clone() Record {
	c := r
	c.Images = append([]string{}, r.Images...)
	if r.SourceShards != nil {
		c.SourceShards = append([]string{}, r.SourceShards...)
	}
	return c
}

// Marshal encodes the record in its storage representation (JSON, without source_shards).
func (r Record) Marshal() ([]byte, error) {
	r.SourceShards = nil
	return json.Marshal(r)
}

// UnmarshalRecord decodes a record from its storage representation.
func UnmarshalRecord(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, err
	}
	if rec.Images == nil {
		rec.Images = []string{}
	}
	return rec, nil
}

// DecodeFields decodes a JSON object into Fields.
// Numbers are kept as json.Number so integers and floats stay distinguishable for the
// schema check.
func DecodeFields(data []byte) (Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	f := Fields{}
	if err := dec.Decode(&f); err != nil {
		return nil, err
	}
	return f, nil
}

// --------------------------------------------------------------------------
// Value conversion
// --------------------------------------------------------------------------

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %s", typeName(v))
	}
	return s, nil
}

func asInt(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, fmt.Errorf("value %d out of int range", n)
		}
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("value %d out of int range", n)
		}
		return int64(n), nil
	case json.Number:
		return n.Int64()
	}
	return 0, fmt.Errorf("expected int, got %s", typeName(v))
}

func asFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case json.Number:
		return n.Float64()
	}
	if i, err := asInt(v); err == nil {
		return float64(i), nil
	}
	return 0, fmt.Errorf("expected float, got %s", typeName(v))
}

func asStringList(v any) ([]string, error) {
	switch l := v.(type) {
	case []string:
		return append([]string{}, l...), nil
	case []any:
		out := make([]string, 0, len(l))
		for i, e := range l {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("element %d: expected string, got %s", i, typeName(e))
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected list, got %s", typeName(v))
}
