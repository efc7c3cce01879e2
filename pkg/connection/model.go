package connection

import (
	"github.com/romaninsh/surreal.go/internal/codec"
	"github.com/romaninsh/surreal.go/pkg/models"
)

// RPCRequest is the outbound wire envelope. Ids are allocated from the
// correlator's monotonic counter and never reused while a reply is
// outstanding.
type RPCRequest struct {
	ID     uint64 `json:"id" cbor:"id"`
	Method string `json:"method" cbor:"method"`
	Params []any  `json:"params,omitempty" cbor:"params,omitempty"`
}

// RPCError is the error object of a response frame.
type RPCError = codec.RPCError

// RPCResponse is a partially decoded inbound frame; the result payload
// stays in the codec's raw encoding until the caller decodes it.
type RPCResponse = codec.ResponseEnvelope

// Reply is what a pending caller receives through its reply slot: either
// the correlated response or the terminal connection error.
type Reply struct {
	Response *RPCResponse
	Err      error
}

// Notification is a server-pushed live query event, delivered in frames
// that carry no request id.
type Notification struct {
	ID     *models.UUID    `json:"id" cbor:"id"`
	Action string          `json:"action" cbor:"action"`
	Result models.AnyValue `json:"result" cbor:"result"`
}

// RPC method names understood by SurrealDB.
const (
	MethodUse          = "use"
	MethodInfo         = "info"
	MethodVersion      = "version"
	MethodSignUp       = "signup"
	MethodSignIn       = "signin"
	MethodAuthenticate = "authenticate"
	MethodInvalidate   = "invalidate"
	MethodLet          = "let"
	MethodUnset        = "unset"
	MethodLive         = "live"
	MethodKill         = "kill"
	MethodQuery        = "query"
	MethodSelect       = "select"
	MethodCreate       = "create"
	MethodInsert       = "insert"
	MethodUpdate       = "update"
	MethodUpsert       = "upsert"
	MethodRelate       = "relate"
	MethodMerge        = "merge"
	MethodPatch        = "patch"
	MethodDelete       = "delete"
	MethodRun          = "run"
	MethodPing         = "ping"
)
