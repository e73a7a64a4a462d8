package realtime

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
)

const (
	DefaultBacklogSize      = 50
	DefaultSubscriberBuffer = 16
)

// Hub fans events out to room subscribers. Rooms exist only while someone
// is subscribed; publishing into an empty room drops the event, which is
// fine because delivery is best-effort.
type Hub struct {
	mu               sync.RWMutex
	rooms            map[string]*room
	backlogSize      int
	subscriberBuffer int
	dropped          atomic.Uint64
}

type room struct {
	mu      sync.Mutex
	backlog []Event
	subs    map[uint64]chan Event
	nextID  uint64
}

type membership struct {
	room string
	id   uint64
}

// Subscription is one session's feed across all the rooms it joined.
type Subscription struct {
	hub     *Hub
	members []membership
	ch      chan Event
	once    sync.Once
}

func NewHub() *Hub {
	return &Hub{
		rooms:            make(map[string]*room),
		backlogSize:      DefaultBacklogSize,
		subscriberBuffer: DefaultSubscriberBuffer,
	}
}

// Publish delivers an event to every subscriber of the named rooms. Sends
// never block: a full subscriber buffer means that subscriber misses the
// event and the drop is counted.
func (h *Hub) Publish(event Event, roomNames ...string) {
	if h == nil {
		return
	}
	for _, name := range roomNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		h.mu.RLock()
		current := h.rooms[name]
		h.mu.RUnlock()
		if current == nil {
			continue
		}

		current.mu.Lock()
		current.backlog = append(current.backlog, event)
		if len(current.backlog) > h.backlogSize {
			current.backlog = current.backlog[len(current.backlog)-h.backlogSize:]
		}
		subs := make([]chan Event, 0, len(current.subs))
		for _, ch := range current.subs {
			subs = append(subs, ch)
		}
		current.mu.Unlock()

		for _, ch := range subs {
			select {
			case ch <- event:
			default:
				h.dropped.Add(1)
			}
		}
	}
}

// Subscribe joins the given rooms on a single channel and returns the
// rooms' retained backlog. The caller owns the Subscription and must Close
// it when the session ends.
func (h *Hub) Subscribe(roomNames ...string) (*Subscription, []Event, error) {
	if h == nil {
		return nil, nil, errors.New("hub_unavailable")
	}

	sub := &Subscription{
		hub: h,
		ch:  make(chan Event, h.subscriberBuffer),
	}
	var backlog []Event

	for _, name := range roomNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		current := h.ensureRoom(name)
		current.mu.Lock()
		if current.subs == nil {
			current.subs = make(map[uint64]chan Event)
		}
		id := current.nextID
		current.nextID++
		current.subs[id] = sub.ch
		backlog = append(backlog, current.backlog...)
		current.mu.Unlock()
		sub.members = append(sub.members, membership{room: name, id: id})
	}

	if len(sub.members) == 0 {
		return nil, nil, errors.New("invalid_room")
	}
	return sub, backlog, nil
}

// Dropped reports how many deliveries were skipped due to slow subscribers.
func (h *Hub) Dropped() uint64 {
	if h == nil {
		return 0
	}
	return h.dropped.Load()
}

func (h *Hub) ensureRoom(name string) *room {
	h.mu.RLock()
	current := h.rooms[name]
	h.mu.RUnlock()
	if current != nil {
		return current
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	current = h.rooms[name]
	if current == nil {
		current = &room{subs: make(map[uint64]chan Event)}
		h.rooms[name] = current
	}
	return current
}

func (h *Hub) unsubscribe(name string, id uint64) {
	h.mu.RLock()
	current := h.rooms[name]
	h.mu.RUnlock()
	if current == nil {
		return
	}

	current.mu.Lock()
	delete(current.subs, id)
	remaining := len(current.subs)
	current.mu.Unlock()
	if remaining != 0 {
		return
	}

	h.mu.Lock()
	latest := h.rooms[name]
	if latest != current {
		h.mu.Unlock()
		return
	}
	current.mu.Lock()
	empty := len(current.subs) == 0
	current.mu.Unlock()
	if empty {
		delete(h.rooms, name)
	}
	h.mu.Unlock()
}

func (s *Subscription) Events() <-chan Event {
	if s == nil {
		return nil
	}
	return s.ch
}

// Close leaves every joined room. Safe to call more than once.
func (s *Subscription) Close() {
	if s == nil || s.hub == nil {
		return
	}
	s.once.Do(func() {
		for _, m := range s.members {
			s.hub.unsubscribe(m.room, m.id)
		}
	})
}
