// Package gorillaws implements the WebSocket transport on top of
// github.com/gorilla/websocket. This is the default engine.
package gorillaws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	gorilla "github.com/gorilla/websocket"

	"github.com/romaninsh/surreal.go/pkg/connection"
	"github.com/romaninsh/surreal.go/pkg/constants"
)

// Dialer returns the gorilla dialer used by this engine: the default
// dialer with compression enabled and the codec's subprotocol announced.
func Dialer(subprotocol string) *gorilla.Dialer {
	return &gorilla.Dialer{
		Proxy:             gorilla.DefaultDialer.Proxy,
		HandshakeTimeout:  gorilla.DefaultDialer.HandshakeTimeout,
		EnableCompression: true,
		Subprotocols:      []string{subprotocol},
	}
}

type Option func(ws *WebSocketConnection) error

type WebSocketConnection struct {
	connection.Toolkit

	Conn     *gorilla.Conn
	connLock sync.Mutex

	// Timeout bounds each Send call. Zero disables the built-in
	// deadline; the caller's context then governs alone.
	Timeout time.Duration
	Option  []Option

	closed    atomic.Bool
	closeOnce sync.Once
	closeChan chan struct{}
}

var _ connection.Connection = (*WebSocketConnection)(nil)

func New(conf *connection.Config) *WebSocketConnection {
	return &WebSocketConnection{
		Toolkit:   connection.NewToolkit(conf),
		Timeout:   conf.Timeout,
		closeChan: make(chan struct{}),
	}
}

func (ws *WebSocketConnection) Connect(ctx context.Context) error {
	if err := ws.PreConnectionChecks(); err != nil {
		return err
	}

	conn, res, err := Dialer(ws.WireCodec.Subprotocol()).DialContext(ctx, fmt.Sprintf("%s/rpc", ws.BaseURL), nil)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	ws.Conn = conn

	for _, option := range ws.Option {
		if err := option(ws); err != nil {
			return err
		}
	}

	go ws.readLoop()
	return nil
}

func (ws *WebSocketConnection) SetTimeOut(timeout time.Duration) *WebSocketConnection {
	ws.Option = append(ws.Option, func(ws *WebSocketConnection) error {
		ws.Timeout = timeout
		return nil
	})
	return ws
}

func (ws *WebSocketConnection) SetCompression(compress bool) *WebSocketConnection {
	ws.Option = append(ws.Option, func(ws *WebSocketConnection) error {
		ws.Conn.EnableWriteCompression(compress)
		return nil
	})
	return ws
}

func (ws *WebSocketConnection) IsClosed() bool {
	return ws.closed.Load()
}

// Close performs a two-phase shutdown: first a best-effort close message
// so the server sees a clean close, then the unconditional teardown of
// the underlying connection. The context bounds only the first phase; if
// it expires, the local teardown still happens.
func (ws *WebSocketConnection) Close(ctx context.Context) error {
	ws.connLock.Lock()
	defer ws.connLock.Unlock()

	ws.closeOnce.Do(func() { close(ws.closeChan) })
	ws.closed.Store(true)

	if ws.Conn == nil {
		return nil
	}

	writeErr := make(chan error, 1)
	go func() {
		writeErr <- ws.Conn.WriteMessage(gorilla.CloseMessage, gorilla.FormatCloseMessage(constants.CloseMessageCode, ""))
	}()

	select {
	case err := <-writeErr:
		if err != nil {
			ws.Logger.Error("failed to write close message", "error", err)
		}
	case <-ctx.Done():
	}

	err := ws.Conn.Close()

	// The read loop observes the closed socket and fails the pending
	// calls, but it may be blocked inside a frame dispatch; draining
	// here too guarantees no caller waits forever. FailAll is
	// idempotent, so the double call is harmless.
	ws.Correlator.FailAll(net.ErrClosed)

	return err
}

// Send issues one RPC call and blocks until the correlated reply
// arrives. On cancellation the pending slot is deregistered so a late
// reply is silently discarded instead of leaking the slot.
func (ws *WebSocketConnection) Send(ctx context.Context, method string, params ...any) (*connection.RPCResponse, error) {
	if ws.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ws.Timeout)
		defer cancel()
	}

	select {
	case <-ws.closeChan:
		return nil, constants.ErrConnectionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	id := ws.Correlator.NextID()
	replyCh, err := ws.Correlator.Register(id)
	if err != nil {
		return nil, err
	}
	defer ws.Correlator.Deregister(id)

	request := &connection.RPCRequest{
		ID:     id,
		Method: method,
		Params: params,
	}

	if err := ws.write(request); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", constants.ErrTimeout, ctx.Err())
		}
		return nil, ctx.Err()
	case reply := <-replyCh:
		if reply.Err != nil {
			return nil, reply.Err
		}
		return reply.Response, nil
	}
}

func (ws *WebSocketConnection) write(v any) error {
	data, err := ws.WireCodec.Marshal(v)
	if err != nil {
		return err
	}

	messageType := gorilla.TextMessage
	if ws.WireCodec.Binary() {
		messageType = gorilla.BinaryMessage
	}

	ws.connLock.Lock()
	defer ws.connLock.Unlock()
	return ws.Conn.WriteMessage(messageType, data)
}

// readLoop is the single reader of the connection. Frames are dispatched
// inline so replies resolve in arrival order; when the loop exits, every
// pending call is failed so no caller is left hanging.
func (ws *WebSocketConnection) readLoop() {
	for {
		select {
		case <-ws.closeChan:
			ws.Correlator.FailAll(net.ErrClosed)
			return
		default:
			_, data, err := ws.Conn.ReadMessage()
			if err != nil {
				ws.teardown(err)
				return
			}
			ws.handleFrame(data)
		}
	}
}

func (ws *WebSocketConnection) teardown(err error) {
	ws.closed.Store(true)

	cause := err
	switch {
	case errors.Is(err, net.ErrClosed):
		cause = net.ErrClosed
	case gorilla.IsUnexpectedCloseError(err):
		cause = io.ErrClosedPipe
		ws.Logger.Error("connection closed unexpectedly", "error", err)
	case gorilla.IsCloseError(err, constants.CloseMessageCode):
		cause = net.ErrClosed
	default:
		ws.Logger.Error("error reading from connection", "error", err)
	}

	ws.Correlator.FailAll(cause)
}

func (ws *WebSocketConnection) handleFrame(data []byte) {
	res, err := ws.WireCodec.DecodeResponse(data)
	if err != nil {
		ws.Logger.Error("error decoding frame", "error", err)
		return
	}

	if res.HasID {
		if !ws.Correlator.Resolve(res.ID, res) {
			// The caller gave up before the reply arrived; a late
			// reply is dropped, never an error.
			ws.Logger.Debug("discarding reply with no pending request", "id", res.ID)
		}
		return
	}

	ws.DispatchNotification(res.Result)
}
