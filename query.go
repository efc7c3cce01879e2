package surreal

import (
	"github.com/romaninsh/surreal.go/pkg/models"
)

// QueryResult is the outcome of one statement in a Query call.
type QueryResult struct {
	Status string          `json:"status" cbor:"status"`
	Time   string          `json:"time" cbor:"time"`
	Result models.AnyValue `json:"result" cbor:"result"`
}

// IsError reports whether the statement failed server-side.
func (r QueryResult) IsError() bool {
	return r.Status == "ERR"
}

// PatchData is one JSON Patch operation for Patch.
type PatchData struct {
	Op    string `json:"op" cbor:"op"`
	Path  string `json:"path" cbor:"path"`
	Value any    `json:"value,omitempty" cbor:"value,omitempty"`
}
