package publish

import (
	"sync"
	"time"

	"lyrics-resolver-go/logcolors"

	log "github.com/sirupsen/logrus"
)

// subscriberBuffer is the per-subscriber channel capacity. A subscriber
// that falls further behind than this starts losing events.
const subscriberBuffer = 16

// Event pairs an event name with its payload for fan-out delivery.
type Event struct {
	Name      string      `json:"event"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub fans emitted events out to subscriber channels. Delivery is
// non-blocking: a slow subscriber drops events instead of stalling the
// resolution pipeline.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Emit implements Emitter.
func (h *Hub) Emit(event string, payload interface{}) {
	ev := Event{Name: event, Payload: payload, Timestamp: time.Now()}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
			log.Warnf("%s Dropping %q event for slow subscriber", logcolors.LogEvents, event)
		}
	}
}

// Subscribe registers a new subscriber channel.
func (h *Hub) Subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (h *Hub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	if _, ok := h.subscribers[ch]; ok {
		delete(h.subscribers, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// SubscriberCount returns the number of attached subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
