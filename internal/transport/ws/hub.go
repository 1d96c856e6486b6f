package ws

import (
	"sync"

	"github.com/cwrk-planet/meeting-service/internal/domain"
)

type Conn interface {
	// Push queues a committed snapshot for delivery. It must not block.
	Push(m *domain.Meeting)
	Close() error
	MeetingID() string
}

// Hub fans committed meetings out to the websocket connections watching them.
type Hub struct {
	mu       sync.RWMutex
	meetings map[string]map[Conn]struct{} // meetingID -> set of connections
}

func NewHub() *Hub {
	return &Hub{meetings: make(map[string]map[Conn]struct{})}
}

func (h *Hub) Add(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cs, ok := h.meetings[c.MeetingID()]
	if !ok {
		cs = make(map[Conn]struct{})
		h.meetings[c.MeetingID()] = cs
	}
	cs[c] = struct{}{}
}

func (h *Hub) Remove(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cs, ok := h.meetings[c.MeetingID()]; ok {
		delete(cs, c)
		if len(cs) == 0 {
			delete(h.meetings, c.MeetingID())
		}
	}
}

// Publish implements service.Publisher.
func (h *Hub) Publish(m *domain.Meeting) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.meetings[m.ID] {
		c.Push(m)
	}
}

func (h *Hub) Watchers(meetingID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.meetings[meetingID])
}
