package transport

import (
	"context"
	"sync"

	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/ferrors"
)

// Mock is a test double implementing Conn, letting the run engine and
// iteration controller be exercised without a real socket.
type Mock struct {
	mu        sync.Mutex
	sendCalls [][]byte
	recvQueue [][]byte
	closed    bool
}

// NewMock creates a mock transport. recvQueue, if given, is returned in
// order from successive Receive calls; once exhausted, Receive returns
// ferrors.ErrConnectionClosed.
func NewMock(recvQueue ...[]byte) *Mock {
	return &Mock{recvQueue: recvQueue}
}

// Send records the call for later inspection via SendCalls.
func (m *Mock) Send(_ context.Context, b []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendCalls = append(m.sendCalls, append([]byte(nil), b...))
	return nil
}

// Receive returns the next queued response, or ErrConnectionClosed once the
// queue is empty.
func (m *Mock) Receive(_ context.Context, _ int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.recvQueue) == 0 {
		return nil, ferrors.ErrConnectionClosed
	}
	next := m.recvQueue[0]
	m.recvQueue = m.recvQueue[1:]
	return next, nil
}

// Close marks the mock as closed.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// SendCalls returns a copy of every payload passed to Send, in call order.
func (m *Mock) SendCalls() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([][]byte, len(m.sendCalls))
	copy(calls, m.sendCalls)
	return calls
}

// Closed reports whether Close has been called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ Conn = (*Mock)(nil)
