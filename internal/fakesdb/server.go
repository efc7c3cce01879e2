// Package fakesdb is an in-process fake SurrealDB WebSocket server for
// tests. It speaks the RPC protocol over /rpc with either CBOR or JSON
// framing, tracks per-connection sessions the way the real server does,
// and supports stubbed responses, delayed replies and failure injection.
package fakesdb

import (
	"errors"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	gorilla "github.com/gorilla/websocket"

	"github.com/romaninsh/surreal.go/internal/codec"
	"github.com/romaninsh/surreal.go/pkg/connection"
	"github.com/romaninsh/surreal.go/pkg/models"
)

// RequestMatcher selects which requests a stub handles.
type RequestMatcher struct {
	Method string
	// Matcher optionally narrows the match by parameters.
	Matcher func(params []any) bool
}

// StubResponse is a canned reply for matching requests. Result and Error
// are mutually exclusive. Delay postpones the reply without blocking the
// connection, so later requests can be answered first.
type StubResponse struct {
	Matcher RequestMatcher
	Result  any
	Error   *connection.RPCError
	Delay   time.Duration
	// DropConnection kills the underlying socket instead of replying.
	DropConnection bool
}

// Session mirrors the server-side connection state: target, token and
// LET variables. Tests inspect it to assert what a client replayed.
type Session struct {
	Namespace string
	Database  string
	Token     string
	Vars      map[string]any
}

type conn struct {
	sock    *gorilla.Conn
	writeMu sync.Mutex
	session *Session
}

func (c *conn) write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.sock.WriteMessage(messageType, data)
}

// Server is the fake database. Start it on "127.0.0.1:0" and dial the
// URL from URL().
type Server struct {
	codec    codec.Codec
	listener net.Listener
	httpSrv  *http.Server
	upgrader gorilla.Upgrader

	mu       sync.RWMutex
	stubs    []StubResponse
	conns    map[*conn]struct{}
	sessions []*Session

	// TokenSignIn and TokenSignUp are handed out by the default
	// signin/signup handling.
	TokenSignIn string
	TokenSignUp string
}

// NewServer builds a fake server speaking the given wire codec.
func NewServer(c codec.Codec) *Server {
	s := &Server{
		codec: c,
		upgrader: gorilla.Upgrader{
			Subprotocols:      []string{c.Subprotocol()},
			EnableCompression: true,
		},
		conns:       make(map[*conn]struct{}),
		TokenSignIn: "fake-signin-token",
		TokenSignUp: "fake-signup-token",
	}
	return s
}

func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = listener

	router := mux.NewRouter()
	router.HandleFunc("/rpc", s.handleRPC)

	s.httpSrv = &http.Server{Handler: router}
	go func() {
		if err := s.httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("fakesdb: serve: %v", err)
		}
	}()

	return nil
}

func (s *Server) Stop() error {
	s.mu.Lock()
	for c := range s.conns {
		c.sock.Close()
	}
	s.mu.Unlock()

	if s.httpSrv != nil {
		return s.httpSrv.Close()
	}
	return nil
}

// URL returns the ws:// endpoint of the running server.
func (s *Server) URL() string {
	return "ws://" + s.listener.Addr().String()
}

func (s *Server) AddStubResponse(stub StubResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stubs = append(s.stubs, stub)
}

// Sessions returns a snapshot of every session the server has seen,
// oldest first.
func (s *Server) Sessions() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Session, len(s.sessions))
	for i, session := range s.sessions {
		out[i] = session.snapshot()
	}
	return out
}

// LastSession returns a snapshot of the most recent connection's session.
func (s *Server) LastSession() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.sessions) == 0 {
		return nil
	}
	return s.sessions[len(s.sessions)-1].snapshot()
}

func (sess *Session) snapshot() *Session {
	out := &Session{
		Namespace: sess.Namespace,
		Database:  sess.Database,
		Token:     sess.Token,
		Vars:      make(map[string]any, len(sess.Vars)),
	}
	for k, v := range sess.Vars {
		out.Vars[k] = v
	}
	return out
}

// DropAllConnections severs every open socket without a close handshake.
func (s *Server) DropAllConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		c.sock.UnderlyingConn().Close()
	}
}

// PushNotification sends a live query event to every open connection.
func (s *Server) PushNotification(liveQueryID models.UUID, action string, result any) {
	frame := map[string]any{
		"result": map[string]any{
			"id":     liveQueryID,
			"action": action,
			"result": result,
		},
	}
	data, err := s.codec.Marshal(frame)
	if err != nil {
		log.Printf("fakesdb: marshal notification: %v", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.conns {
		if err := c.write(s.messageType(), data); err != nil {
			log.Printf("fakesdb: push notification: %v", err)
		}
	}
}

func (s *Server) messageType() int {
	if s.codec.Binary() {
		return gorilla.BinaryMessage
	}
	return gorilla.TextMessage
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	sock, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("fakesdb: upgrade: %v", err)
		return
	}

	c := &conn{
		sock:    sock,
		session: &Session{Vars: make(map[string]any)},
	}

	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.sessions = append(s.sessions, c.session)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
		sock.Close()
	}()

	for {
		_, data, err := sock.ReadMessage()
		if err != nil {
			return
		}
		s.handleMessage(c, data)
	}
}

type request struct {
	ID     uint64 `json:"id" cbor:"id"`
	Method string `json:"method" cbor:"method"`
	Params []any  `json:"params" cbor:"params"`
}

func (s *Server) handleMessage(c *conn, data []byte) {
	var req request
	if err := s.codec.Unmarshal(data, &req); err != nil {
		s.sendError(c, 0, -32700, "Parse error")
		return
	}

	if stub := s.matchStub(&req); stub != nil {
		s.applyStub(c, &req, stub)
		return
	}

	switch req.Method {
	case "use":
		s.handleUse(c, &req)
	case "signin", "signup":
		s.handleAuth(c, &req)
	case "authenticate":
		s.handleAuthenticate(c, &req)
	case "invalidate":
		s.mu.Lock()
		c.session.Token = ""
		s.mu.Unlock()
		s.sendResult(c, req.ID, nil)
	case "let":
		s.handleLet(c, &req)
	case "unset":
		s.handleUnset(c, &req)
	case "ping":
		s.sendResult(c, req.ID, nil)
	case "version":
		s.sendResult(c, req.ID, "surrealdb-fake-2.0.0")
	default:
		s.sendResult(c, req.ID, map[string]any{
			"default": "response",
			"method":  req.Method,
			"params":  req.Params,
		})
	}
}

func (s *Server) matchStub(req *request) *StubResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.stubs {
		stub := &s.stubs[i]
		if stub.Matcher.Method != req.Method {
			continue
		}
		if stub.Matcher.Matcher != nil && !stub.Matcher.Matcher(req.Params) {
			continue
		}
		return stub
	}
	return nil
}

func (s *Server) applyStub(c *conn, req *request, stub *StubResponse) {
	if stub.DropConnection {
		c.sock.UnderlyingConn().Close()
		return
	}

	reply := func() {
		if stub.Error != nil {
			s.sendError(c, req.ID, stub.Error.Code, stub.Error.Message)
			return
		}
		s.sendResult(c, req.ID, stub.Result)
	}

	if stub.Delay > 0 {
		// Replying from a goroutine lets later requests overtake this
		// one, producing out-of-order delivery.
		go func() {
			time.Sleep(stub.Delay)
			reply()
		}()
		return
	}

	reply()
}

func (s *Server) handleUse(c *conn, req *request) {
	if len(req.Params) >= 2 {
		s.mu.Lock()
		if namespace, ok := req.Params[0].(string); ok {
			c.session.Namespace = namespace
		}
		if database, ok := req.Params[1].(string); ok {
			c.session.Database = database
		}
		s.mu.Unlock()
	}
	s.sendResult(c, req.ID, nil)
}

func (s *Server) handleAuth(c *conn, req *request) {
	token := s.TokenSignIn
	if req.Method == "signup" {
		token = s.TokenSignUp
	}
	s.mu.Lock()
	c.session.Token = token
	s.mu.Unlock()
	s.sendResult(c, req.ID, token)
}

func (s *Server) handleAuthenticate(c *conn, req *request) {
	if len(req.Params) < 1 {
		s.sendError(c, req.ID, -32602, "Invalid params")
		return
	}
	token, ok := req.Params[0].(string)
	if !ok || token == "" {
		s.sendError(c, req.ID, -32000, "There was a problem with authentication")
		return
	}
	s.mu.Lock()
	c.session.Token = token
	s.mu.Unlock()
	s.sendResult(c, req.ID, nil)
}

func (s *Server) handleLet(c *conn, req *request) {
	if len(req.Params) < 2 {
		s.sendError(c, req.ID, -32602, "Invalid params")
		return
	}
	key, ok := req.Params[0].(string)
	if !ok {
		s.sendError(c, req.ID, -32602, "Invalid params")
		return
	}
	s.mu.Lock()
	c.session.Vars[key] = req.Params[1]
	s.mu.Unlock()
	s.sendResult(c, req.ID, nil)
}

func (s *Server) handleUnset(c *conn, req *request) {
	if len(req.Params) < 1 {
		s.sendError(c, req.ID, -32602, "Invalid params")
		return
	}
	if key, ok := req.Params[0].(string); ok {
		s.mu.Lock()
		delete(c.session.Vars, key)
		s.mu.Unlock()
	}
	s.sendResult(c, req.ID, nil)
}

type response struct {
	ID     uint64               `json:"id" cbor:"id"`
	Result any                  `json:"result,omitempty" cbor:"result,omitempty"`
	Error  *connection.RPCError `json:"error,omitempty" cbor:"error,omitempty"`
}

func (s *Server) sendResult(c *conn, id uint64, result any) {
	s.send(c, &response{ID: id, Result: result})
}

func (s *Server) sendError(c *conn, id uint64, code int, message string) {
	s.send(c, &response{ID: id, Error: &connection.RPCError{Code: code, Message: message}})
}

func (s *Server) send(c *conn, res *response) {
	data, err := s.codec.Marshal(res)
	if err != nil {
		log.Printf("fakesdb: marshal response: %v", err)
		return
	}
	if err := c.write(s.messageType(), data); err != nil {
		log.Printf("fakesdb: write response: %v", err)
	}
}
