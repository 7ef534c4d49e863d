package property

import (
	"encoding/json"
	"fmt"
	"math"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Kinds
// --------------------------------------------------------------------------

// Kind is the type class a field value belongs to.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindString
	KindInt
	KindFloat
	KindStringList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "str"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStringList:
		return "list"
	default:
		return "unknown"
	}
}

// kindOf classifies a value. json.Number is classified by its textual form so that
// JSON input decoded with UseNumber keeps the int / float distinction.
func kindOf(v any) Kind {
	switch n := v.(type) {
	case string:
		return KindString
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		return KindInt
	case uint:
		if uint64(n) > math.MaxInt64 {
			return KindUnknown
		}
		return KindInt
	case uint64:
		if n > math.MaxInt64 {
			return KindUnknown
		}
		return KindInt
	case float32, float64:
		return KindFloat
	case json.Number:
		if strings.ContainsAny(n.String(), ".eE") {
			if _, err := n.Float64(); err == nil {
				return KindFloat
			}
			return KindUnknown
		}
		if _, err := n.Int64(); err == nil {
			return KindInt
		}
		return KindUnknown
	case []string:
		return KindStringList
	case []any:
		for _, e := range n {
			if _, ok := e.(string); !ok {
				return KindUnknown
			}
		}
		return KindStringList
	default:
		return KindUnknown
	}
}

func typeName(v any) string {
	if v == nil {
		return "null"
	}
	if k := kindOf(v); k != KindUnknown {
		return k.String()
	}
	return fmt.Sprintf("%T", v)
}

// --------------------------------------------------------------------------
// Schema
// --------------------------------------------------------------------------

// FieldSpec describes a single field: the kinds it accepts and whether it may be absent.
type FieldSpec struct {
	Name     string
	Kinds    []Kind
	Optional bool
}

func (s FieldSpec) accepts(k Kind) bool {
	for _, want := range s.Kinds {
		if want == k {
			return true
		}
	}
	return false
}

func (s FieldSpec) expected() string {
	names := make([]string, len(s.Kinds))
	for i, k := range s.Kinds {
		names[i] = k.String()
	}
	return strings.Join(names, ", ")
}

// Schema is an ordered list of field specifications.
type Schema []FieldSpec

// DefaultSchema is the schema of a property record.
var DefaultSchema = Schema{
	{Name: FieldAddress, Kinds: []Kind{KindString}},
	{Name: FieldCity, Kinds: []Kind{KindString}},
	{Name: FieldState, Kinds: []Kind{KindString}},
	{Name: FieldZipCode, Kinds: []Kind{KindInt}},
	{Name: FieldPrice, Kinds: []Kind{KindInt, KindFloat}},
	{Name: FieldBedrooms, Kinds: []Kind{KindInt}},
	{Name: FieldBathrooms, Kinds: []Kind{KindInt, KindFloat}},
	{Name: FieldSquareFootage, Kinds: []Kind{KindInt}},
	{Name: FieldType, Kinds: []Kind{KindString}},
	{Name: FieldDateListed, Kinds: []Kind{KindString}},
	{Name: FieldDescription, Kinds: []Kind{KindString}},
	{Name: FieldImages, Kinds: []Kind{KindStringList}, Optional: true},
}

// Lookup returns the spec of the named field.
func (s Schema) Lookup(name string) (FieldSpec, bool) {
	for _, spec := range s {
		if spec.Name == name {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// Validate checks presence and type of every field of the schema and returns a
// *ValidationError listing all violations, or nil. Fields unknown to the schema are ignored.
// An optional field that is present but null counts as absent.
func (s Schema) Validate(f Fields) error {
	verr := &ValidationError{}
	for _, spec := range s {
		value, ok := f[spec.Name]
		if !ok || (value == nil && spec.Optional) {
			if !spec.Optional {
				verr.add(spec.Name, ViolationMissing, spec.expected(), "")
			}
			continue
		}
		if got := kindOf(value); !spec.accepts(got) {
			verr.add(spec.Name, ViolationType, spec.expected(), typeName(value))
		}
	}
	return verr.orNil()
}

// ValidatePartial checks a set of field updates: every supplied field must be known and
// of an accepted kind. custom_id can never be changed.
func (s Schema) ValidatePartial(f Fields) error {
	verr := &ValidationError{}
	if len(f) == 0 {
		verr.add("", ViolationEmpty, "", "")
	}
	for _, name := range sortedKeys(f) {
		value := f[name]
		if name == FieldCustomID || name == FieldSourceShards {
			verr.add(name, ViolationImmutable, "", "")
			continue
		}
		spec, ok := s.Lookup(name)
		if !ok {
			verr.add(name, ViolationUnknown, "", "")
			continue
		}
		if value == nil && spec.Optional {
			continue
		}
		if got := kindOf(value); !spec.accepts(got) {
			verr.add(name, ViolationType, spec.expected(), typeName(value))
		}
	}
	return verr.orNil()
}

func sortedKeys(f Fields) []string {
	return slices.Sorted(maps.Keys(f))
}

// Coerce converts textual input (e.g. a CLI argument "price=2500") into a value
// of the kind the field accepts.
func (s Schema) Coerce(name, text string) (any, error) {
	spec, ok := s.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown field '%s'", name)
	}
	text = strings.TrimSpace(text)
	var lastErr error
	for _, k := range spec.Kinds {
		switch k {
		case KindString:
			return text, nil
		case KindInt:
			v, err := strconv.ParseInt(text, 10, 64)
			if err == nil {
				return v, nil
			}
			lastErr = err
		case KindFloat:
			v, err := strconv.ParseFloat(text, 64)
			if err == nil {
				return v, nil
			}
			lastErr = err
		case KindStringList:
			if text == "" {
				return []string{}, nil
			}
			parts := strings.Split(text, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return parts, nil
		}
	}
	return nil, fmt.Errorf("field '%s' expects %s: %w", name, spec.expected(), lastErr)
}

// --------------------------------------------------------------------------
// Validation Error
// --------------------------------------------------------------------------

// ViolationKind names the kind of problem found for a field.
type ViolationKind string

const (
	ViolationMissing   ViolationKind = "missing"
	ViolationType      ViolationKind = "type"
	ViolationUnknown   ViolationKind = "unknown"
	ViolationImmutable ViolationKind = "immutable"
	ViolationEmpty     ViolationKind = "empty"
)

// Violation is one problem found for one field.
type Violation struct {
	Field    string        `json:"field"`
	Kind     ViolationKind `json:"kind"`
	Expected string        `json:"expected,omitempty"`
	Got      string        `json:"got,omitempty"`
}

func (v Violation) String() string {
	switch v.Kind {
	case ViolationMissing:
		return fmt.Sprintf("missing required field: '%s'", v.Field)
	case ViolationType:
		return fmt.Sprintf("field '%s' has incorrect type. Expected %s, got %s", v.Field, v.Expected, v.Got)
	case ViolationUnknown:
		return fmt.Sprintf("unknown field: '%s'", v.Field)
	case ViolationImmutable:
		return fmt.Sprintf("field '%s' can not be changed", v.Field)
	case ViolationEmpty:
		return "no fields given"
	default:
		return fmt.Sprintf("field '%s': %s", v.Field, v.Kind)
	}
}

// ValidationError holds every violation found in one validation pass.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Fields returns the names of all fields with at least one violation
func (e *ValidationError) Fields() []string {
	out := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		out = append(out, v.Field)
	}
	return out
}

func (e *ValidationError) add(field string, kind ViolationKind, expected, got string) {
	e.Violations = append(e.Violations, Violation{Field: field, Kind: kind, Expected: expected, Got: got})
}

func (e *ValidationError) orNil() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}
