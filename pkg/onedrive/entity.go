package onedrive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// knownFieldsCache maps a struct type to the set of wire names it declares.
var knownFieldsCache sync.Map

// fieldSet holds wire names lower-cased. encoding/json assigns a key to a
// field regardless of case, so lookups ignore case as well.
type fieldSet map[string]struct{}

func (s fieldSet) has(key string) bool {
	_, ok := s[strings.ToLower(key)]
	return ok
}

func knownFields(t reflect.Type) fieldSet {
	if cached, ok := knownFieldsCache.Load(t); ok {
		return cached.(fieldSet)
	}
	fields := make(fieldSet)
	collectFields(t, fields)
	knownFieldsCache.Store(t, fields)
	return fields
}

func collectFields(t reflect.Type, fields fieldSet) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if field.Anonymous && name == "" {
			embedded := field.Type
			if embedded.Kind() == reflect.Pointer {
				embedded = embedded.Elem()
			}
			if embedded.Kind() == reflect.Struct {
				collectFields(embedded, fields)
				continue
			}
		}
		if !field.IsExported() {
			continue
		}
		if name == "" {
			name = field.Name
		}
		fields[strings.ToLower(name)] = struct{}{}
	}
}

// decodeEntity unmarshals data into dst, a pointer to a struct without its
// own UnmarshalJSON, and returns the wire fields dst does not declare.
func decodeEntity(data []byte, dst any) (AdditionalData, error) {
	if err := json.Unmarshal(data, dst); err != nil {
		return nil, err
	}
	var wire map[string]json.RawMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	known := knownFields(reflect.TypeOf(dst).Elem())
	var extra AdditionalData
	for key, raw := range wire {
		if known.has(key) {
			continue
		}
		if extra == nil {
			extra = make(AdditionalData)
		}
		extra[key] = JSONValue{raw: raw}
	}
	return extra, nil
}

// encodeEntity marshals src, a struct without its own MarshalJSON, and
// appends the bag entries verbatim in key order. Bag entries that shadow a
// declared field in any letter case are dropped.
func encodeEntity(src any, extra AdditionalData) ([]byte, error) {
	data, err := json.Marshal(src)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return data, nil
	}

	known := knownFields(reflect.TypeOf(src))
	var buf bytes.Buffer
	buf.Write(data[:len(data)-1])
	needComma := len(bytes.TrimSpace(data[1:len(data)-1])) > 0
	for _, key := range extra.Keys() {
		if known.has(key) {
			continue
		}
		raw := extra[key].Raw()
		if !json.Valid(raw) {
			return nil, fmt.Errorf("additional data %q holds invalid JSON", key)
		}
		if needComma {
			buf.WriteByte(',')
		}
		needComma = true
		name, _ := json.Marshal(key)
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(raw)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// pageableCollection is implemented by *CollectionPage[T].
type pageableCollection interface {
	initialize(c *Client, bag AdditionalData, field string)
}

// collectionOwner is implemented by entities that declare pageable fields.
// visitCollections calls visit once for every non-nil pageable field.
type collectionOwner interface {
	extensionData() AdditionalData
	visitCollections(visit func(field string, page pageableCollection))
}

// initializeCollections wires continuation requests into every nested
// collection page of entity using the entity's own extension bag. Calling it
// again re-derives the same state.
func initializeCollections(c *Client, entity any) {
	owner, ok := entity.(collectionOwner)
	if !ok {
		return
	}
	if v := reflect.ValueOf(owner); v.Kind() == reflect.Pointer && v.IsNil() {
		return
	}
	bag := owner.extensionData()
	owner.visitCollections(func(field string, page pageableCollection) {
		page.initialize(c, bag, field)
	})
}
