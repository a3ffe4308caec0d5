package bombarena

import (
	"bytes"
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

type Serializer interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
	ContentType() string
	EncodingType() EncodingType
	// Binary reports whether frames must be sent as binary WebSocket messages.
	Binary() bool
}

type EncodingType int

const (
	JSON EncodingType = iota
	MessagePack
)

func (e EncodingType) String() string {
	switch e {
	case JSON:
		return "json"
	case MessagePack:
		return "msgpack"
	default:
		return "unknown"
	}
}

// SerializerFor resolves an encoding name as accepted on the command line.
func SerializerFor(name string) (Serializer, error) {
	switch name {
	case "", "json":
		return JSONSerializer{}, nil
	case "msgpack", "messagepack":
		return MessagePackSerializer{}, nil
	default:
		return nil, NewUnsupportedEncodingError(name)
	}
}

type JSONSerializer struct{}

func (j JSONSerializer) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (j JSONSerializer) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (j JSONSerializer) ContentType() string {
	return "application/json"
}

func (j JSONSerializer) EncodingType() EncodingType {
	return JSON
}

func (j JSONSerializer) Binary() bool {
	return false
}

// MessagePackSerializer reuses the json struct tags so both encodings share
// one set of field names.
type MessagePackSerializer struct{}

func (m MessagePackSerializer) Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.UseCompactInts(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m MessagePackSerializer) Unmarshal(data []byte, v interface{}) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

func (m MessagePackSerializer) ContentType() string {
	return "application/msgpack"
}

func (m MessagePackSerializer) EncodingType() EncodingType {
	return MessagePack
}

func (m MessagePackSerializer) Binary() bool {
	return true
}
