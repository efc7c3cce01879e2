package surreal

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/romaninsh/surreal.go/internal/codec"
	"github.com/romaninsh/surreal.go/pkg/connection"
	"github.com/romaninsh/surreal.go/pkg/connection/gorillaws"
	"github.com/romaninsh/surreal.go/pkg/logger"
	"github.com/romaninsh/surreal.go/pkg/models"
	"github.com/romaninsh/surreal.go/pkg/session"
)

// EngineFactory builds a transport from a prepared configuration. The
// default engine is gorillaws; pkg/connection/gws provides another.
type EngineFactory func(conf *connection.Config) connection.Connection

// Client is the connection handle plus the session state that outlives
// any single physical connection.
type Client struct {
	connLock sync.RWMutex
	conn     connection.Connection

	sess   *session.State
	logger logger.Logger

	conf      *connection.Config
	newEngine EngineFactory
}

type clientOptions struct {
	codec      codec.Codec
	logger     logger.Logger
	timeout    time.Duration
	hasTimeout bool
	engine     EngineFactory

	namespace string
	database  string
	auth      *Auth
}

type Option func(*clientOptions)

// WithJSON switches the wire format to JSON text frames. Type identity
// beyond the JSON primitives is reduced to textual forms; prefer the
// default CBOR framing when the database's richer types matter.
func WithJSON() Option {
	return func(o *clientOptions) { o.codec = models.JSONCodec{} }
}

func WithLogger(l logger.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// WithTimeout bounds each individual RPC call. Zero disables the
// built-in deadline, leaving timeouts entirely to the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d; o.hasTimeout = true }
}

func WithEngine(f EngineFactory) Option {
	return func(o *clientOptions) { o.engine = f }
}

// WithTarget selects the namespace and database right after connecting,
// as if Use had been called.
func WithTarget(namespace, database string) Option {
	return func(o *clientOptions) { o.namespace = namespace; o.database = database }
}

// WithAuth signs in right after connecting.
func WithAuth(auth *Auth) Option {
	return func(o *clientOptions) { o.auth = auth }
}

// Connect dials the RPC endpoint at {scheme}://{host}/rpc and returns a
// ready client. http and https schemes are accepted and rewritten to ws
// and wss.
func Connect(ctx context.Context, endpoint string, opts ...Option) (*Client, error) {
	u, err := url.ParseRequestURI(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}

	o := &clientOptions{
		codec:  models.CborCodec{},
		engine: func(conf *connection.Config) connection.Connection { return gorillaws.New(conf) },
	}
	for _, opt := range opts {
		opt(o)
	}

	conf := connection.NewConfig(u)
	conf.Codec = o.codec
	conf.Logger = o.logger
	if o.hasTimeout {
		conf.Timeout = o.timeout
	}

	log := o.logger
	if log == nil {
		log = logger.Discard()
	}

	c := &Client{
		sess:      session.New(),
		logger:    log,
		conf:      conf,
		newEngine: o.engine,
	}

	conn := c.newEngine(conf)
	if err := conn.Connect(ctx); err != nil {
		return nil, err
	}
	c.conn = conn

	if o.namespace != "" || o.database != "" {
		if err := c.Use(ctx, o.namespace, o.database); err != nil {
			_ = conn.Close(ctx)
			return nil, err
		}
	}
	if o.auth != nil {
		if _, err := c.SignIn(ctx, o.auth); err != nil {
			_ = conn.Close(ctx)
			return nil, err
		}
	}

	return c, nil
}

func (c *Client) con() connection.Connection {
	c.connLock.RLock()
	defer c.connLock.RUnlock()
	return c.conn
}

// Session exposes the tracked session state.
func (c *Client) Session() *session.State {
	return c.sess
}

// IsClosed reports whether the current physical connection is down. The
// session survives; Reconnect restores it on a fresh connection.
func (c *Client) IsClosed() bool {
	return c.con().IsClosed()
}

// Close tears down the connection. Every in-flight call fails with a
// connection-closed error rather than hanging.
func (c *Client) Close(ctx context.Context) error {
	return c.con().Close(ctx)
}

// Reconnect dials a fresh connection and replays the session onto it:
// the namespace/database target, the authentication token (unless it has
// expired, in which case it is dropped) and every LET binding.
func (c *Client) Reconnect(ctx context.Context) error {
	old := c.con()
	if old != nil && !old.IsClosed() {
		if err := old.Close(ctx); err != nil {
			c.logger.Debug("closing previous connection", "error", err)
		}
	}

	conn := c.newEngine(c.conf)
	if err := conn.Connect(ctx); err != nil {
		return err
	}

	c.connLock.Lock()
	c.conn = conn
	c.connLock.Unlock()

	return c.replaySession(ctx)
}

func (c *Client) replaySession(ctx context.Context) error {
	if namespace, database := c.sess.Target(); namespace != "" || database != "" {
		if _, err := c.con().Send(ctx, connection.MethodUse, namespace, database); err != nil {
			return fmt.Errorf("replaying use: %w", err)
		}
	}

	if token := c.sess.Token(); token != "" {
		if session.TokenUsable(token, time.Now()) {
			if _, err := c.con().Send(ctx, connection.MethodAuthenticate, token); err != nil {
				return fmt.Errorf("replaying authenticate: %w", err)
			}
		} else {
			c.logger.Info("session token expired, not replaying it")
			c.sess.ClearAuth()
		}
	}

	for key, value := range c.sess.Params() {
		if _, err := c.con().Send(ctx, connection.MethodLet, key, value); err != nil {
			return fmt.Errorf("replaying let %q: %w", key, err)
		}
	}

	return nil
}

// LiveNotifications returns the channel carrying events for a live
// query previously started with Live.
func (c *Client) LiveNotifications(liveQueryID string) (chan connection.Notification, error) {
	return c.con().LiveNotifications(liveQueryID)
}

// SendRequest issues a raw RPC call, for methods this client has no
// wrapper for. The result payload stays in the wire encoding.
func (c *Client) SendRequest(ctx context.Context, method string, params ...any) (*connection.RPCResponse, error) {
	return c.con().Send(ctx, method, params...)
}

// Send issues an RPC call and decodes the result into T. A server error
// object is returned as *connection.RPCError.
func Send[T any](ctx context.Context, c *Client, method string, params ...any) (*T, error) {
	return connection.Send[T](ctx, c.con(), method, params...)
}
