// Package eventbus carries alert-activation events from the delivery layer to
// the navigation collaborator without either side knowing the other.
package eventbus

import (
	"sync"
	"sync/atomic"
	"time"
)

// Activation is emitted when a user interacts with a delivered alert. The
// consumer routes the UI from the owning entity; this subsystem only supplies
// the payload.
type Activation struct {
	EntityID string
	Kind     string
	Time     time.Time
}

// Bus is a non-blocking fanout for activation events.
//
// Contract:
//   - Publish MUST NOT block.
//   - Subscribers get buffered channels; slow subscribers drop events.
type Bus interface {
	Publish(a Activation)
	Subscribe(buffer int) (ch <-chan Activation, unsubscribe func())
}

// New returns an in-memory bus. It owns no background goroutines.
func New() Bus {
	return &memBus{subs: map[uint64]chan Activation{}}
}

type memBus struct {
	mu   sync.RWMutex
	subs map[uint64]chan Activation
	seq  atomic.Uint64
}

func (b *memBus) Publish(a Activation) {
	if a.Time.IsZero() {
		a.Time = time.Now()
	}
	// Snapshot subscribers so Publish doesn't hold the lock while sending.
	b.mu.RLock()
	chs := make([]chan Activation, 0, len(b.subs))
	for _, ch := range b.subs {
		chs = append(chs, ch)
	}
	b.mu.RUnlock()

	for _, ch := range chs {
		// Unsubscribe may close the channel concurrently; recover from the
		// resulting send panic instead of coordinating with every subscriber.
		func() {
			defer func() { _ = recover() }()
			select {
			case ch <- a:
			default:
			}
		}()
	}
}

func (b *memBus) Subscribe(buffer int) (<-chan Activation, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan Activation, buffer)
	id := b.seq.Add(1)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, unsub
}
