package constants

import "errors"

var (
	ErrTimeout            = errors.New("timeout")
	ErrConnectionClosed   = errors.New("connection closed")
	ErrIDInUse            = errors.New("id already in use")
	ErrNoBaseURL          = errors.New("base url not set")
	ErrNoCodec            = errors.New("codec is not set")
	ErrInvalidResponse    = errors.New("invalid RPC response")
)
