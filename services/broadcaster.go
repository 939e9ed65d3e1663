package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	EventNewPost     = "new-post"
	EventPostHidden  = "post-hidden"
	EventPostDeleted = "post-deleted"

	subscriberBuffer = 16
)

// Event is one broadcast fan-out message. Every event gets a fresh id so
// clients can de-duplicate across reconnects.
type Event struct {
	Id        string      `json:"id"`
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// Broadcaster fans events out to all live subscribers. Delivery is best
// effort: a subscriber whose buffer is full misses the event rather than
// blocking the publisher.
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[int64]chan Event
	nextId      int64
	logger      *zap.Logger
}

func NewBroadcaster(logger *zap.Logger) *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[int64]chan Event),
		logger:      logger,
	}
}

// Subscribe registers a receiver. The channel is closed when cancel is
// called or ctx ends, whichever comes first. cancel is safe to call more
// than once.
func (b *Broadcaster) Subscribe(ctx context.Context) (<-chan Event, func()) {
	stream := make(chan Event, subscriberBuffer)
	done := make(chan struct{})

	b.mu.Lock()
	id := b.nextId
	b.nextId++
	b.subscribers[id] = stream
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, id)
			b.mu.Unlock()
			close(done)
			close(stream)
		})
	}

	// the watcher must also stop on cancel, or subscribers created with a
	// non-cancellable context would park it forever
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()

	return stream, cancel
}

func (b *Broadcaster) Publish(eventType string, payload interface{}) {
	event := Event{
		Id:        uuid.NewString(),
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for id, stream := range b.subscribers {
		select {
		case stream <- event:
		default:
			b.logger.Warn("subscriber buffer full, dropping event",
				zap.Int64("subscriberId", id),
				zap.String("eventType", eventType))
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}
