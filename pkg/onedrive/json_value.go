package onedrive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// JSONKind is the JSON type of a JSONValue.
type JSONKind int

const (
	KindNull JSONKind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k JSONKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "null"
	}
}

// JSONValue holds one wire value exactly as it was received. Encoding a
// JSONValue writes the original bytes back out.
type JSONValue struct {
	raw json.RawMessage
}

// NewJSONValue encodes v into a JSONValue.
func NewJSONValue(v any) (JSONValue, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return JSONValue{}, err
	}
	return JSONValue{raw: data}, nil
}

// RawJSONValue wraps already encoded JSON. The bytes are copied.
func RawJSONValue(data []byte) (JSONValue, error) {
	if !json.Valid(data) {
		return JSONValue{}, fmt.Errorf("invalid JSON value %q", data)
	}
	return JSONValue{raw: append(json.RawMessage(nil), data...)}, nil
}

// StringValue returns a JSON string value.
func StringValue(s string) JSONValue {
	data, _ := json.Marshal(s)
	return JSONValue{raw: data}
}

func (v JSONValue) Kind() JSONKind {
	trimmed := bytes.TrimLeft(v.raw, " \t\r\n")
	if len(trimmed) == 0 {
		return KindNull
	}
	switch trimmed[0] {
	case 'n':
		return KindNull
	case 't', 'f':
		return KindBool
	case '"':
		return KindString
	case '[':
		return KindArray
	case '{':
		return KindObject
	default:
		return KindNumber
	}
}

// Raw returns a copy of the wire bytes.
func (v JSONValue) Raw() json.RawMessage {
	if len(v.raw) == 0 {
		return json.RawMessage("null")
	}
	return append(json.RawMessage(nil), v.raw...)
}

func (v JSONValue) AsString() (string, bool) {
	if v.Kind() != KindString {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v.raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func (v JSONValue) AsBool() (bool, bool) {
	if v.Kind() != KindBool {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(v.raw, &b); err != nil {
		return false, false
	}
	return b, true
}

func (v JSONValue) AsNumber() (json.Number, bool) {
	if v.Kind() != KindNumber {
		return "", false
	}
	return json.Number(bytes.TrimSpace(v.raw)), true
}

// Decode unmarshals the value into dst.
func (v JSONValue) Decode(dst any) error {
	return json.Unmarshal(v.Raw(), dst)
}

func (v JSONValue) MarshalJSON() ([]byte, error) {
	return v.Raw(), nil
}

func (v *JSONValue) UnmarshalJSON(data []byte) error {
	v.raw = append(json.RawMessage(nil), data...)
	return nil
}

// AdditionalData is the extension bag of a deserialized object: every wire
// field the Go type does not declare, keyed by its wire name.
type AdditionalData map[string]JSONValue

const nextLinkAnnotation = "@odata.nextLink"

// NextLinkKey returns the continuation key for a pageable field. The empty
// field name gives the top-level key.
func NextLinkKey(field string) string {
	return field + nextLinkAnnotation
}

// NextLink returns the continuation URL stored for field. Missing keys,
// non-string values and empty strings all report "".
func (d AdditionalData) NextLink(field string) string {
	v, ok := d[NextLinkKey(field)]
	if !ok {
		return ""
	}
	link, ok := v.AsString()
	if !ok {
		return ""
	}
	return link
}

// Get returns the value stored under key.
func (d AdditionalData) Get(key string) (JSONValue, bool) {
	v, ok := d[key]
	return v, ok
}

// Set encodes v and stores it under key.
func (d AdditionalData) Set(key string, v any) error {
	value, err := NewJSONValue(v)
	if err != nil {
		return fmt.Errorf("encoding additional data %q: %w", key, err)
	}
	d[key] = value
	return nil
}

// Clone returns an independent copy of the bag.
func (d AdditionalData) Clone() AdditionalData {
	if d == nil {
		return nil
	}
	clone := make(AdditionalData, len(d))
	for k, v := range d {
		clone[k] = JSONValue{raw: append(json.RawMessage(nil), v.raw...)}
	}
	return clone
}

// Keys returns the bag's keys in sorted order.
func (d AdditionalData) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
