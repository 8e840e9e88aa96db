package notify

import (
	"log/slog"
	"sync"
)

const subscriberBuffer = 8

// Hub fans termination events out to per-device subscribers. Sends never
// block: a subscriber that cannot keep up has the event dropped, which is
// acceptable because the heartbeat contract catches up on the next beat.
type Hub struct {
	log *slog.Logger

	mu   sync.RWMutex
	subs map[subKey]map[int]chan Event
	next int
}

type subKey struct {
	userID   string
	deviceID string
}

// NewHub constructs a Hub.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{log: log, subs: make(map[subKey]map[int]chan Event)}
}

// Subscribe registers interest in events for one device. The returned cancel
// must be called exactly once; it closes the channel.
func (h *Hub) Subscribe(userID, deviceID string) (<-chan Event, func()) {
	key := subKey{userID: userID, deviceID: deviceID}
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	id := h.next
	h.next++
	if h.subs[key] == nil {
		h.subs[key] = make(map[int]chan Event)
	}
	h.subs[key][id] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if chans, ok := h.subs[key]; ok {
			if _, ok := chans[id]; ok {
				delete(chans, id)
				close(ch)
				if len(chans) == 0 {
					delete(h.subs, key)
				}
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Emit implements Emitter.
func (h *Hub) Emit(ev Event) {
	key := subKey{userID: ev.UserID, deviceID: ev.DeviceID}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs[key] {
		select {
		case ch <- ev:
		default:
			h.log.Warn("notify.drop", "user_id", ev.UserID, "device_id", ev.DeviceID, "type", ev.Type)
		}
	}
}
