package events

import "sync"

// Handler receives events for one topic.
type Handler func(Event)

// Bus is a synchronous topic registry. The zero value is not usable; call New.
type Bus struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[Topic]map[uint64]Handler
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{handlers: make(map[Topic]map[uint64]Handler)}
}

// On registers h for topic and returns a function that removes it.
// The returned function may be called any number of times.
func (b *Bus) On(topic Topic, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	set, ok := b.handlers[topic]
	if !ok {
		set = make(map[uint64]Handler)
		b.handlers[topic] = set
	}
	set[id] = h
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if set, ok := b.handlers[topic]; ok {
				delete(set, id)
				if len(set) == 0 {
					delete(b.handlers, topic)
				}
			}
		})
	}
}

// Emit calls every handler registered for topic at the time of the call,
// on the caller's goroutine, in no particular order.
//
// There is no queueing and no re-entrancy guard. A handler that emits the
// topic it is handling recurses synchronously; callers own that hazard.
func (b *Bus) Emit(topic Topic, ev Event) {
	b.mu.RLock()
	set := b.handlers[topic]
	hs := make([]Handler, 0, len(set))
	for _, h := range set {
		hs = append(hs, h)
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(ev)
	}
}

// Clear removes every handler for topic.
func (b *Bus) Clear(topic Topic) {
	b.mu.Lock()
	delete(b.handlers, topic)
	b.mu.Unlock()
}

// ClearAll removes every handler on the bus.
func (b *Bus) ClearAll() {
	b.mu.Lock()
	b.handlers = make(map[Topic]map[uint64]Handler)
	b.mu.Unlock()
}

// Count returns the number of handlers registered for topic.
func (b *Bus) Count(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[topic])
}
