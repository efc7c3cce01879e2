// Package gws implements the WebSocket transport on top of
// github.com/lxzan/gws, an event-driven engine with a smaller
// per-connection footprint than the default one.
package gws

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lxzan/gws"

	"github.com/romaninsh/surreal.go/pkg/connection"
	"github.com/romaninsh/surreal.go/pkg/constants"
)

type Connection struct {
	connection.Toolkit

	conn     *gws.Conn
	connLock sync.Mutex

	// Timeout bounds each Send call. Zero disables the built-in
	// deadline; the caller's context then governs alone.
	Timeout time.Duration

	closed    atomic.Bool
	closeOnce sync.Once
	closeChan chan struct{}
}

var _ connection.Connection = (*Connection)(nil)

func New(conf *connection.Config) *Connection {
	return &Connection{
		Toolkit:   connection.NewToolkit(conf),
		Timeout:   conf.Timeout,
		closeChan: make(chan struct{}),
	}
}

// eventHandler receives gws callbacks and forwards frames to the
// connection. Dispatch happens on the single ReadLoop goroutine, so
// replies resolve strictly in arrival order.
type eventHandler struct {
	conn *Connection
}

func (h *eventHandler) OnOpen(socket *gws.Conn) {}

func (h *eventHandler) OnClose(socket *gws.Conn, err error) {
	h.conn.teardown(err)
}

func (h *eventHandler) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()
	h.conn.handleFrame(message.Bytes())
}

func (h *eventHandler) OnPing(socket *gws.Conn, payload []byte) {
	_ = socket.WritePong(payload)
}

func (h *eventHandler) OnPong(socket *gws.Conn, payload []byte) {}

func (c *Connection) Connect(ctx context.Context) error {
	if err := c.PreConnectionChecks(); err != nil {
		return err
	}

	option := &gws.ClientOption{
		Addr: fmt.Sprintf("%s/rpc", c.BaseURL),
		RequestHeader: http.Header{
			"Sec-WebSocket-Protocol": []string{c.WireCodec.Subprotocol()},
		},
		PermessageDeflate: gws.PermessageDeflate{
			Enabled: true,
		},
	}

	conn, _, err := gws.NewClient(&eventHandler{conn: c}, option)
	if err != nil {
		return err
	}

	c.connLock.Lock()
	c.conn = conn
	c.connLock.Unlock()

	go conn.ReadLoop()

	return nil
}

func (c *Connection) SetTimeout(timeout time.Duration) *Connection {
	c.Timeout = timeout
	return c
}

func (c *Connection) IsClosed() bool {
	return c.closed.Load()
}

func (c *Connection) Close(ctx context.Context) error {
	c.connLock.Lock()
	defer c.connLock.Unlock()

	c.closeOnce.Do(func() { close(c.closeChan) })
	c.closed.Store(true)

	if c.conn == nil {
		return nil
	}

	if err := c.conn.WriteClose(constants.CloseMessageCode, nil); err != nil {
		c.Logger.Error("failed to write close message", "error", err)
	}

	err := c.conn.NetConn().Close()
	c.conn = nil

	c.Correlator.FailAll(net.ErrClosed)

	return err
}

func (c *Connection) Send(ctx context.Context, method string, params ...any) (*connection.RPCResponse, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	select {
	case <-c.closeChan:
		return nil, constants.ErrConnectionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	id := c.Correlator.NextID()
	replyCh, err := c.Correlator.Register(id)
	if err != nil {
		return nil, err
	}
	defer c.Correlator.Deregister(id)

	request := &connection.RPCRequest{
		ID:     id,
		Method: method,
		Params: params,
	}

	if err := c.write(request); err != nil {
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

func (c *Connection) write(v any) error {
	data, err := c.WireCodec.Marshal(v)
	if err != nil {
		return err
	}

	opcode := gws.OpcodeText
	if c.WireCodec.Binary() {
		opcode = gws.OpcodeBinary
	}

	c.connLock.Lock()
	defer c.connLock.Unlock()

	if c.conn == nil {
		return constants.ErrConnectionClosed
	}

	return c.conn.WriteMessage(opcode, data)
}

func (c *Connection) teardown(err error) {
	c.closed.Store(true)

	if err == nil {
		err = net.ErrClosed
	}
	c.Correlator.FailAll(err)
}

func (c *Connection) handleFrame(data []byte) {
	res, err := c.WireCodec.DecodeResponse(data)
	if err != nil {
		c.Logger.Error("error decoding frame", "error", err)
		return
	}

	if res.HasID {
		if !c.Correlator.Resolve(res.ID, res) {
			c.Logger.Debug("discarding reply with no pending request", "id", res.ID)
		}
		return
	}

	c.DispatchNotification(res.Result)
}
