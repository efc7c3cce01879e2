package models

import (
	"fmt"

	"github.com/buger/jsonparser"
	gojson "github.com/goccy/go-json"

	"github.com/romaninsh/surreal.go/internal/codec"
	"github.com/romaninsh/surreal.go/pkg/constants"
)

// JSONCodec is the text-frame wire codec. Requests are marshaled with
// goccy/go-json; inbound frames are split with jsonparser so the result
// payload is only decoded once, by the caller that knows its type.
//
// JSON frames cannot carry CBOR tags, so type identity is reduced to the
// textual forms the model types emit from MarshalJSON (record ids as
// "table:id", datetimes as RFC3339, and so on).
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return gojson.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, dst any) error {
	return gojson.Unmarshal(data, dst)
}

func (JSONCodec) DecodeResponse(data []byte) (*codec.ResponseEnvelope, error) {
	env := &codec.ResponseEnvelope{}

	if id, err := jsonparser.GetInt(data, "id"); err == nil {
		if id < 0 {
			return nil, fmt.Errorf("negative response id %d", id)
		}
		env.ID = uint64(id)
		env.HasID = true
	}

	if value, dataType, _, err := jsonparser.Get(data, "result"); err == nil {
		env.Result = rawJSONValue(value, dataType)
	}

	errValue, dataType, _, err := jsonparser.Get(data, "error")
	if err != nil && dataType != jsonparser.NotExist {
		return nil, fmt.Errorf("parsing error field: %w", err)
	}
	if dataType == jsonparser.Object {
		rpcErr := &codec.RPCError{}
		if msg, err := jsonparser.GetString(errValue, "message"); err == nil {
			rpcErr.Message = msg
		}
		if code, err := jsonparser.GetInt(errValue, "code"); err == nil {
			rpcErr.Code = int(code)
		}
		env.Error = rpcErr
	}

	if !env.HasID && env.Result == nil && env.Error == nil {
		return nil, fmt.Errorf("%w: frame carries neither id, result nor error", constants.ErrInvalidResponse)
	}

	return env, nil
}

// rawJSONValue restores the raw JSON encoding of a value extracted by
// jsonparser, which strips the surrounding quotes from strings.
func rawJSONValue(value []byte, dataType jsonparser.ValueType) []byte {
	if dataType == jsonparser.String {
		quoted := make([]byte, 0, len(value)+2)
		quoted = append(quoted, '"')
		quoted = append(quoted, value...)
		return append(quoted, '"')
	}
	raw := make([]byte, len(value))
	copy(raw, value)
	return raw
}

func (JSONCodec) Binary() bool { return false }

func (JSONCodec) Subprotocol() string { return "json" }

var _ codec.Codec = JSONCodec{}
