// Package codec defines the wire codec boundary between the transport
// engines and the concrete frame encodings (CBOR binary frames or JSON
// text frames).
package codec

import "fmt"

type Marshaler interface {
	Marshal(v any) ([]byte, error)
}

type Unmarshaler interface {
	Unmarshal(data []byte, dst any) error
}

// RPCError is the error object carried in a response frame.
type RPCError struct {
	Code    int    `json:"code" cbor:"code"`
	Message string `json:"message,omitempty" cbor:"message,omitempty"`
}

func (e *RPCError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
	}
	return e.Message
}

// ResponseEnvelope is a partially decoded inbound frame. Result is kept in
// the codec's raw encoding so the caller can decode it into the type it
// expects. Frames without an id (HasID false) are server-pushed
// notifications.
type ResponseEnvelope struct {
	ID     uint64
	HasID  bool
	Result []byte
	Error  *RPCError
}

// Codec encodes outbound requests and splits inbound frames into
// envelopes. Implementations must be safe for concurrent use.
type Codec interface {
	Marshaler
	Unmarshaler

	// DecodeResponse extracts id/result/error from a raw frame without
	// fully decoding the result payload.
	DecodeResponse(data []byte) (*ResponseEnvelope, error)

	// Binary reports whether frames are binary (CBOR) or text (JSON).
	Binary() bool

	// Subprotocol is the WebSocket subprotocol announced on dial.
	Subprotocol() string
}
