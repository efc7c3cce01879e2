package connection

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/romaninsh/surreal.go/pkg/constants"
)

// Correlator allocates request ids and maps in-flight ids to reply
// slots. Slots are buffered channels of capacity one, resolved at most
// once, so Resolve never blocks even when the waiter has already given
// up on the call.
type Correlator struct {
	nextID atomic.Uint64

	mu       sync.Mutex
	pending  map[uint64]chan Reply
	closed   bool
	closeErr error
}

func NewCorrelator() *Correlator {
	return &Correlator{pending: make(map[uint64]chan Reply)}
}

// NextID returns the next request id. Ids are strictly increasing and
// process-local; they are never reused while a reply is outstanding.
func (c *Correlator) NextID() uint64 {
	return c.nextID.Add(1)
}

// Register creates the reply slot for id. It fails once the correlator
// has been shut down by FailAll, so no caller can start waiting on a
// dead connection.
func (c *Correlator) Register(id uint64) (<-chan Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, fmt.Errorf("%w: %w", constants.ErrConnectionClosed, c.closeErr)
	}
	if _, ok := c.pending[id]; ok {
		return nil, fmt.Errorf("%w: %d", constants.ErrIDInUse, id)
	}

	ch := make(chan Reply, 1)
	c.pending[id] = ch
	return ch, nil
}

// Deregister drops interest in id. Safe to call after the slot has
// already been resolved or failed.
func (c *Correlator) Deregister(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
}

// Resolve delivers a response into the slot registered for its id and
// removes it. An unknown id is a no-op, never an error: the caller may
// have timed out locally and a late reply must simply be discarded.
func (c *Correlator) Resolve(id uint64, res *RPCResponse) bool {
	c.mu.Lock()
	ch, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()

	if !ok {
		return false
	}
	ch <- Reply{Response: res}
	return true
}

// FailAll resolves every pending slot with err and marks the correlator
// closed. Called exactly once, when the receive loop terminates, so that
// no caller is left waiting forever.
func (c *Correlator) FailAll(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.closeErr = err

	for id, ch := range c.pending {
		delete(c.pending, id)
		ch <- Reply{Err: fmt.Errorf("%w: %w", constants.ErrConnectionClosed, err)}
	}
}

// PendingCount reports the number of in-flight requests.
func (c *Correlator) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
