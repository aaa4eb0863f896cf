package onedrive

import (
	"encoding/json"
)

// Serializer converts entities to and from wire bytes.
type Serializer interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

// JSONSerializer is the default Serializer.
type JSONSerializer struct{}

func (JSONSerializer) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONSerializer) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
