// Package session tracks the per-connection namespace, database,
// authentication and bound-parameter context. The state is pure data: it
// performs no I/O and does not survive the physical connection, so the
// client replays it after every reconnect.
package session

import "sync"

// State is the mutable session record. Methods are safe for concurrent
// use; in practice signin/use/let calls are naturally serialized because
// each awaits its own RPC reply before the next is issued.
type State struct {
	mu        sync.RWMutex
	namespace string
	database  string
	token     string
	scope     string
	access    string
	params    map[string]any
}

func New() *State {
	return &State{params: make(map[string]any)}
}

func (s *State) SetTarget(namespace, database string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.namespace = namespace
	s.database = database
}

// Target returns the current namespace/database pair.
func (s *State) Target() (namespace, database string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.namespace, s.database
}

func (s *State) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *State) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *State) SetScope(scope string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scope = scope
}

func (s *State) Scope() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scope
}

func (s *State) SetAccess(access string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
}

func (s *State) Access() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

// IsAuthenticated reports whether a token is held.
func (s *State) IsAuthenticated() bool {
	return s.Token() != ""
}

func (s *State) SetParam(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params[key] = value
}

func (s *State) UnsetParam(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.params, key)
}

func (s *State) Param(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.params[key]
	return v, ok
}

// Params returns a copy of the bound parameters, safe to iterate while
// the session keeps changing.
func (s *State) Params() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.params))
	for k, v := range s.params {
		out[k] = v
	}
	return out
}

// ClearAuth drops the token and scope/access but keeps the target and
// parameters. Used by invalidate.
func (s *State) ClearAuth() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.scope = ""
	s.access = ""
}

// Reset returns the session to its zero state.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.namespace = ""
	s.database = ""
	s.token = ""
	s.scope = ""
	s.access = ""
	s.params = make(map[string]any)
}
