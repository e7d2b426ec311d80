// Package events carries alert lifecycle notifications from the queue to observers.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type identifies a lifecycle transition of an alert request.
type Type string

const (
	// AlertEnqueued is published when a request is appended to the pending queue.
	AlertEnqueued Type = "alert_enqueued"
	// AlertSuppressed is published when a request duplicates a pending entry and is dropped.
	AlertSuppressed Type = "alert_suppressed"
	// AlertShown is published when a request is promoted into the displayed slot.
	AlertShown Type = "alert_shown"
	// AlertDismissed is published after a button press clears the displayed slot.
	AlertDismissed Type = "alert_dismissed"
)

// Types lists every lifecycle type in transition order.
var Types = []Type{AlertEnqueued, AlertSuppressed, AlertShown, AlertDismissed}

// Event is one lifecycle transition. Button is -1 unless Type is AlertDismissed.
type Event struct {
	Type      Type
	AlertID   uuid.UUID
	Title     string
	Message   string
	Button    int
	Pending   int
	Timestamp time.Time
}

// Subscriber receives events on its own goroutine.
type Subscriber func(Event)

// Bus is a non-blocking publish/subscribe fan-out. Each subscriber owns a
// buffered channel; when it is full the event is dropped for that subscriber.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Type][]*subscription
	bufferSize  int
	closed      bool
}

type subscription struct {
	ch     chan Event
	done   chan struct{}
	buffer int
	onDrop func(Event)
}

// SubscribeOption tunes a single subscription.
type SubscribeOption func(*subscription)

// WithBuffer overrides the bus buffer size for one subscriber.
func WithBuffer(n int) SubscribeOption {
	return func(s *subscription) {
		if n > 0 {
			s.buffer = n
		}
	}
}

// OnDrop registers fn to be told about events dropped because the
// subscriber's buffer was full. fn runs on the publishing goroutine and
// must not block.
func OnDrop(fn func(Event)) SubscribeOption {
	return func(s *subscription) { s.onDrop = fn }
}

// NewBus creates a bus with the given per-subscriber buffer size.
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &Bus{
		subscribers: make(map[Type][]*subscription),
		bufferSize:  bufferSize,
	}
}

// Subscribe registers fn for one event type and returns an unsubscribe func.
// Events for a single subscriber are delivered in publish order.
func (b *Bus) Subscribe(t Type, fn Subscriber, opts ...SubscribeOption) func() {
	return b.subscribe([]Type{t}, fn, opts)
}

// SubscribeAll registers fn for every lifecycle type on a single channel,
// so fn sees events in the order they were published.
func (b *Bus) SubscribeAll(fn Subscriber, opts ...SubscribeOption) func() {
	return b.subscribe(Types, fn, opts)
}

func (b *Bus) subscribe(types []Type, fn Subscriber, opts []SubscribeOption) func() {
	sub := &subscription{
		done:   make(chan struct{}),
		buffer: b.bufferSize,
	}
	for _, opt := range opts {
		opt(sub)
	}
	sub.ch = make(chan Event, sub.buffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(sub.done)
		return func() {}
	}
	for _, t := range types {
		b.subscribers[t] = append(b.subscribers[t], sub)
	}
	b.mu.Unlock()

	go func() {
		defer close(sub.done)
		for event := range sub.ch {
			deliver(fn, event)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			removed := false
			for _, t := range types {
				subs := b.subscribers[t]
				for i, s := range subs {
					if s == sub {
						b.subscribers[t] = append(subs[:i:i], subs[i+1:]...)
						removed = true
						break
					}
				}
			}
			if removed {
				close(sub.ch)
			}
			b.mu.Unlock()
			<-sub.done
		})
	}
}

func deliver(fn Subscriber, event Event) {
	defer func() {
		// a panicking observer must not take the bus down
		_ = recover()
	}()
	fn(event)
}

// Publish fans the event out without blocking. A zero Timestamp is filled in.
func (b *Bus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, sub := range b.subscribers[event.Type] {
		select {
		case sub.ch <- event:
		default:
			if sub.onDrop != nil {
				sub.onDrop(event)
			}
		}
	}
}

// Close stops delivery and waits for subscribers to drain their buffers.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	seen := make(map[*subscription]struct{})
	var subs []*subscription
	for t, list := range b.subscribers {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			subs = append(subs, s)
		}
		delete(b.subscribers, t)
	}
	for _, s := range subs {
		close(s.ch)
	}
	b.mu.Unlock()

	for _, s := range subs {
		<-s.done
	}
}
