package stream

import (
	"sync"
	"sync/atomic"

	"github.com/mr1hm/go-disaster-ops/internal/metrics"
	"github.com/mr1hm/go-disaster-ops/internal/models"
)

// SubscriberBuffer is how many events a subscriber may fall behind before events are dropped for it.
const SubscriberBuffer = 100

// Publisher is implemented by anything that can fan an event out to dashboard clients.
type Publisher interface {
	Publish(e *models.Event)
}

type Broadcaster struct {
	subscribers map[uint64]chan *models.Event
	nextID      atomic.Uint64
	mu          sync.RWMutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan *models.Event),
	}
}

func (b *Broadcaster) Subscribe() (uint64, chan *models.Event) {
	id := b.nextID.Add(1)
	ch := make(chan *models.Event, SubscriberBuffer)

	b.mu.Lock()
	b.subscribers[id] = ch
	metrics.StreamSubscribers.Set(float64(len(b.subscribers)))
	b.mu.Unlock()

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	metrics.StreamSubscribers.Set(float64(len(b.subscribers)))
	b.mu.Unlock()
}

func (b *Broadcaster) Publish(e *models.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- e:
		default:
			// Skip slow subscribers
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes all subscriber channels, causing websocket writers to exit
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
	metrics.StreamSubscribers.Set(0)
}
