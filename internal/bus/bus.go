// Package bus is a small synchronous in-process dispatcher. The calendar
// store publishes a notification after every applied mutation; subscribers
// (audit logging, integrations) run sequentially inside the publishing call,
// so ordering follows mutation order.
package bus

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventType identifies a notification kind.
type EventType string

// Event is the envelope delivered to subscribers.
type Event struct {
	ctx       context.Context
	Type      EventType
	Timestamp time.Time
	Data      any
}

// NewEvent wraps a payload with its type and the current time.
func NewEvent(ctx context.Context, eventType EventType, data any) Event {
	return Event{ctx: ctx, Type: eventType, Timestamp: time.Now(), Data: data}
}

// Context returns the context the event was published under.
func (e Event) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

type subscriber struct {
	id uint64
	fn func(Event) error
}

// Bus dispatches events to subscribers synchronously, in subscription order.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]subscriber
	nextID      uint64
}

func New() *Bus {
	return &Bus{subscribers: make(map[EventType][]subscriber)}
}

// Subscribe registers fn for eventType and returns a function that removes
// the subscription again.
func (b *Bus) Subscribe(eventType EventType, fn func(Event) error) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subscribers[eventType] = append(b.subscribers[eventType], subscriber{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subscribers[eventType]
		for i, s := range subs {
			if s.id == id {
				b.subscribers[eventType] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers e to every subscriber of e.Type. Subscriber errors and
// panics are collected, logged, and reported after all subscribers ran; a
// failing subscriber does not stop the others.
func (b *Bus) Publish(e Event) error {
	b.mu.RLock()
	subs := append([]subscriber(nil), b.subscribers[e.Type]...)
	b.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		err := func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("subscriber %d panicked handling %s: %v", s.id, e.Type, r)
				}
			}()
			return s.fn(e)
		}()
		if err != nil {
			log.Errorf("bus: subscriber %d failed for %s: %v", s.id, e.Type, err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("event %s: %d subscriber(s) failed", e.Type, len(errs))
	}
	return nil
}
