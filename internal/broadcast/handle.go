package broadcast

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Handle is one registered subscriber. Only the Broadcaster touches its connection.
type Handle struct {
	id          string
	conn        Conn
	connectedAt time.Time
	once        sync.Once
	// delivered is set once a tick or relay has reached this handle.
	delivered atomic.Bool
	closed    atomic.Bool
}

func newHandle(conn Conn) *Handle {
	return &Handle{id: uuid.New().String(), conn: conn, connectedAt: time.Now()}
}

func (h *Handle) ID() string { return h.id }

func (h *Handle) ConnectedAt() time.Time { return h.connectedAt }

func (h *Handle) close() {
	h.once.Do(func() {
		h.closed.Store(true)
		_ = h.conn.Close()
	})
}
