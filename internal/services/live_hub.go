package services

import (
	"sync"

	"github.com/google/uuid"
	"github.com/huangang/taskflow/backend/internal/metrics"
	"github.com/huangang/taskflow/backend/internal/models"
)

const defaultLiveBuffer = 100

// Subscription is one live connection listening for a member's
// notifications.
type Subscription struct {
	ID     string
	UserID string
	C      <-chan models.Notification

	ch chan models.Notification
}

// LiveHub routes pushed notifications to every open connection of the
// recipient. A member may hold several connections at once.
type LiveHub struct {
	buffer int
	users  map[string]map[string]*Subscription
	closed bool
	mu     sync.RWMutex
}

// NewLiveHub creates a hub whose connections buffer up to buffer pending
// notifications. Non-positive values fall back to 100.
func NewLiveHub(buffer int) *LiveHub {
	if buffer <= 0 {
		buffer = defaultLiveBuffer
	}
	return &LiveHub{
		buffer: buffer,
		users:  make(map[string]map[string]*Subscription),
	}
}

// Subscribe registers a new connection for userID.
func (h *LiveHub) Subscribe(userID string) *Subscription {
	ch := make(chan models.Notification, h.buffer)
	sub := &Subscription{
		ID:     uuid.New().String(),
		UserID: userID,
		C:      ch,
		ch:     ch,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(ch)
		return sub
	}
	conns, ok := h.users[userID]
	if !ok {
		conns = make(map[string]*Subscription)
		h.users[userID] = conns
	}
	conns[sub.ID] = sub
	return sub
}

// Unsubscribe removes the connection and closes its channel. Calling it twice
// is harmless.
func (h *LiveHub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.users[sub.UserID]
	if !ok {
		return
	}
	if _, ok := conns[sub.ID]; !ok {
		return
	}
	close(sub.ch)
	delete(conns, sub.ID)
	if len(conns) == 0 {
		delete(h.users, sub.UserID)
	}
}

// Publish pushes n to every connection of userID without blocking and returns
// how many connections accepted it. A full buffer drops the push.
func (h *LiveHub) Publish(userID string, n *models.Notification) int {
	if n == nil {
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, sub := range h.users[userID] {
		select {
		case sub.ch <- *n:
			delivered++
			metrics.LiveDeliveries.Inc()
		default:
			metrics.LiveDropped.Inc()
		}
	}
	return delivered
}

// ClientCount returns the number of open connections across all members.
func (h *LiveHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, conns := range h.users {
		total += len(conns)
	}
	return total
}

// UserConnections returns the number of open connections for userID.
func (h *LiveHub) UserConnections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// Close ends every open connection and refuses new ones. Streams see their
// channel closed and return.
func (h *LiveHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for userID, conns := range h.users {
		for _, sub := range conns {
			close(sub.ch)
		}
		delete(h.users, userID)
	}
}
