package connection

import (
	"context"
	"fmt"
)

// Send issues one RPC call over c and decodes the result payload into
// Result. A server-side error object is returned as *RPCError. A nil
// result payload yields a nil pointer, not an error.
func Send[Result any](ctx context.Context, c Connection, method string, params ...any) (*Result, error) {
	res, err := c.Send(ctx, method, params...)
	if err != nil {
		return nil, err
	}
	if res.Error != nil {
		return nil, res.Error
	}
	if res.Result == nil {
		return nil, nil
	}

	var out Result
	if err := c.Codec().Unmarshal(res.Result, &out); err != nil {
		return nil, fmt.Errorf("send: error decoding %q result: %w", method, err)
	}
	return &out, nil
}
