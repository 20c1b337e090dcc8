package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ValueKind discriminates the shapes a KPI value can take on the wire.
type ValueKind int

const (
	// ValueAbsent is a missing or JSON-null value.
	ValueAbsent ValueKind = iota
	// ValueBool is a JSON boolean.
	ValueBool
	// ValueList is a JSON array; elements are kept as flat strings.
	ValueList
	// ValueMap is a JSON object; entries keep their wire order.
	ValueMap
	// ValueScalar is a JSON string or number.
	ValueScalar
)

// MapEntry is one key/value pair of a ValueMap, in wire order.
type MapEntry struct {
	Key   string
	Value KPIValue
}

// KPIValue is the polymorphic value of a KPIResult, modeled as a tagged
// union so formatting and classification can switch exhaustively over the
// documented shapes instead of reflecting at runtime.
//
// The raw wire bytes are retained so that re-encoding an audit reproduces the
// value exactly, whatever its shape.
type KPIValue struct {
	raw     json.RawMessage
	kind    ValueKind
	boolVal bool
	list    []string
	entries []MapEntry
	scalar  string
}

// AbsentValue returns the absent KPI value.
func AbsentValue() KPIValue {
	return KPIValue{kind: ValueAbsent}
}

// BoolValue returns a boolean KPI value.
func BoolValue(b bool) KPIValue {
	return KPIValue{kind: ValueBool, boolVal: b}
}

// ListValue returns a sequence KPI value over the given elements.
func ListValue(items ...string) KPIValue {
	return KPIValue{kind: ValueList, list: items}
}

// MapValue returns a structured KPI value over the given ordered entries.
func MapValue(entries ...MapEntry) KPIValue {
	return KPIValue{kind: ValueMap, entries: entries}
}

// ScalarValue returns a scalar KPI value holding the given text.
func ScalarValue(s string) KPIValue {
	return KPIValue{kind: ValueScalar, scalar: s}
}

// Kind returns the shape of the value.
func (v KPIValue) Kind() ValueKind { return v.kind }

// Bool returns the boolean payload; only meaningful for ValueBool.
func (v KPIValue) Bool() bool { return v.boolVal }

// Scalar returns the scalar text; only meaningful for ValueScalar.
func (v KPIValue) Scalar() string { return v.scalar }

// List returns the sequence elements; only meaningful for ValueList.
func (v KPIValue) List() []string { return v.list }

// Entries returns the ordered map entries; only meaningful for ValueMap.
func (v KPIValue) Entries() []MapEntry { return v.entries }

// UnmarshalJSON decodes a KPI value by shape detection: null becomes absent,
// booleans, arrays, and objects map to their kinds, and everything else
// (strings and numbers) is a scalar. The original bytes are retained for
// lossless re-encoding.
func (v *KPIValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	v.raw = append(json.RawMessage(nil), trimmed...)

	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		v.kind = ValueAbsent
		return nil
	}

	switch trimmed[0] {
	case 't', 'f':
		v.kind = ValueBool
		return json.Unmarshal(trimmed, &v.boolVal)
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return fmt.Errorf("decode value array: %w", err)
		}
		v.kind = ValueList
		v.list = make([]string, 0, len(elems))
		for _, e := range elems {
			v.list = append(v.list, rawToString(e))
		}
		return nil
	case '{':
		entries, err := decodeOrderedObject(trimmed)
		if err != nil {
			return fmt.Errorf("decode value object: %w", err)
		}
		v.kind = ValueMap
		v.entries = entries
		return nil
	case '"':
		v.kind = ValueScalar
		return json.Unmarshal(trimmed, &v.scalar)
	default:
		// Bare number; keep its literal text.
		v.kind = ValueScalar
		v.scalar = string(trimmed)
		return nil
	}
}

// MarshalJSON re-emits the original wire bytes when the value came off the
// wire, and otherwise encodes from the union.
func (v KPIValue) MarshalJSON() ([]byte, error) {
	if len(v.raw) > 0 {
		return v.raw, nil
	}
	switch v.kind {
	case ValueAbsent:
		return []byte("null"), nil
	case ValueBool:
		return json.Marshal(v.boolVal)
	case ValueList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case ValueMap:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, e := range v.entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(e.Key)
			if err != nil {
				return nil, err
			}
			val, err := e.Value.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return json.Marshal(v.scalar)
	}
}

// decodeOrderedObject walks a JSON object token by token so entries keep the
// order they had on the wire; encoding/json maps would lose it and make the
// formatter output nondeterministic.
func decodeOrderedObject(data []byte) ([]MapEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if _, err := dec.Token(); err != nil { // opening brace
		return nil, err
	}

	var entries []MapEntry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is %T, want string", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		var val KPIValue
		if err := val.UnmarshalJSON(raw); err != nil {
			return nil, err
		}
		entries = append(entries, MapEntry{Key: key, Value: val})
	}
	if _, err := dec.Token(); err != nil { // closing brace
		return nil, err
	}
	return entries, nil
}

// rawToString flattens one JSON array element to its display text: strings
// are unquoted, booleans and numbers keep their literal form, null becomes
// the empty string, and nested structures keep their compact JSON text.
func rawToString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return string(trimmed)
}

// SentinelText returns the string form used when matching a value against
// the engine's not-found sentinel vocabulary. Only scalar values can carry a
// sentinel; bool, list, map, and absent values return a form that never
// matches, so structured data always counts as found.
// Parameters: none.
// Returns:
//   - string: the comparison text, not yet lower-cased.
func (v KPIValue) SentinelText() string {
	switch v.kind {
	case ValueScalar:
		return v.scalar
	case ValueBool:
		if v.boolVal {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}
