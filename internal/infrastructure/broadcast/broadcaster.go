package broadcast

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Severity classifies a status event
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Event is one human-readable progress or result notification. The
// timestamp is attached by the broadcaster when the event is published.
type Event struct {
	Type      Severity  `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Broadcaster fans status events out to subscribed listeners. Delivery is
// best effort: there is no buffering for late subscribers and a slow or
// absent listener never blocks the publisher. One instance is created at
// process start and shared by every component; tests construct their own.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
	logger *zap.Logger
}

// New creates a new Broadcaster
func New(logger *zap.Logger) *Broadcaster {
	return &Broadcaster{
		subs:   make(map[int]chan Event),
		logger: logger,
	}
}

// Subscribe registers a listener and returns its event channel together
// with an unsubscribe function. The channel is buffered; events that
// arrive while the buffer is full are dropped for that listener.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, 16)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish stamps the event with the server time and delivers it to every
// current subscriber without blocking.
func (b *Broadcaster) Publish(severity Severity, message string) {
	event := Event{
		Type:      severity,
		Message:   message,
		Timestamp: time.Now(),
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.logger.Debug("dropping status event for slow subscriber",
				zap.Int("subscriber_id", id),
				zap.String("type", string(severity)),
			)
		}
	}
}

// Info publishes an informational event
func (b *Broadcaster) Info(message string) { b.Publish(SeverityInfo, message) }

// Success publishes a success event
func (b *Broadcaster) Success(message string) { b.Publish(SeveritySuccess, message) }

// Error publishes an error event
func (b *Broadcaster) Error(message string) { b.Publish(SeverityError, message) }

// SubscriberCount returns the number of current subscribers
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
