package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Handler receives published events. Handlers must be fast; anything slow
// should hand off to its own goroutine or channel.
type Handler func(event *Event)

// Bus is a minimal in-process pub/sub bus. Subscribing to the empty event
// type receives everything.
type Bus struct {
	subs   map[EventType]map[uint64]Handler
	nextID uint64
	mu     sync.RWMutex
	log    zerolog.Logger
}

// NewBus creates an event bus.
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		subs: make(map[EventType]map[uint64]Handler),
		log:  log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers a handler for one event type and returns a function
// that removes it again. Long-lived subscribers may discard the return value;
// per-connection subscribers must call it on teardown or they accumulate.
func (b *Bus) Subscribe(eventType EventType, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	if b.subs[eventType] == nil {
		b.subs[eventType] = make(map[uint64]Handler)
	}
	b.subs[eventType][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[eventType], id)
	}
}

// SubscribeAll registers a handler for every event type.
func (b *Bus) SubscribeAll(handler Handler) func() {
	return b.Subscribe(EventType(""), handler)
}

// Publish delivers typed event data to subscribers. Delivery is synchronous
// but panic-isolated: a broken subscriber is logged and skipped.
func (b *Bus) Publish(data EventData) {
	b.PublishEvent(&Event{
		Type:      data.EventType(),
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}

// PublishEvent delivers a pre-built event.
func (b *Bus) PublishEvent(event *Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[event.Type])+len(b.subs[EventType("")]))
	for _, handler := range b.subs[event.Type] {
		handlers = append(handlers, handler)
	}
	for _, handler := range b.subs[EventType("")] {
		handlers = append(handlers, handler)
	}
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.deliver(handler, event)
	}
}

func (b *Bus) deliver(handler Handler, event *Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Interface("panic", r).
				Str("event_type", string(event.Type)).
				Msg("Event handler panicked")
		}
	}()
	handler(event)
}
