// Package ws is the realtime transport: it accepts websocket clients,
// feeds their frames into the coordinator and fans coordinator output
// back to per-connection outboxes.
package ws

import (
	"sync"

	"go.uber.org/zap"

	"github.com/park285/chess-arena/internal/obslog"
	"github.com/park285/chess-arena/pkg/wire"
)

const outboxSize = 32

// Hub maps connection ids to buffered outboxes. Each connection has one
// writer goroutine draining its outbox; Send never blocks the caller.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]chan wire.Outbound
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]chan wire.Outbound)}
}

// Bind allocates an outbox for a new connection.
func (h *Hub) Bind(connID string) <-chan wire.Outbound {
	out := make(chan wire.Outbound, outboxSize)
	h.mu.Lock()
	h.conns[connID] = out
	h.mu.Unlock()
	return out
}

// Unbind drops the connection and closes its outbox, stopping the
// writer goroutine. The close happens under the write lock so it can
// never interleave with an in-flight Send.
func (h *Hub) Unbind(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out, ok := h.conns[connID]
	if !ok {
		return
	}
	delete(h.conns, connID)
	close(out)
}

// Send queues one frame. A full outbox drops the frame rather than
// stalling the coordinator; a slow client falls behind, the game does not.
// The read lock is held across the send because Unbind closes the
// channel under the write lock.
func (h *Hub) Send(connID string, msg wire.Outbound) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out, ok := h.conns[connID]
	if !ok {
		return
	}
	select {
	case out <- msg:
	default:
		obslog.L().Warn("outbox_full_frame_dropped",
			zap.String("conn_id", connID),
			zap.String("event", msg.Event))
	}
}

// Len is the number of bound connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
