package eventbus

import (
	"testing"
	"time"
)

func TestPublishReachesSubscribers(t *testing.T) {
	t.Parallel()
	b := New()
	ch, unsub := b.Subscribe(4)
	defer unsub()

	b.Publish(Activation{EntityID: "r1", Kind: "reminder"})

	select {
	case a := <-ch:
		if a.EntityID != "r1" || a.Kind != "reminder" {
			t.Fatalf("unexpected activation %+v", a)
		}
		if a.Time.IsZero() {
			t.Fatal("publish should stamp time")
		}
	case <-time.After(time.Second):
		t.Fatal("activation not delivered")
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	t.Parallel()
	b := New()
	_, unsub := b.Subscribe(1)
	defer unsub()

	// Fill the buffer and keep publishing; the bus must drop, not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish(Activation{EntityID: "x", Kind: "ritual"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	t.Parallel()
	b := New()
	_, unsub := b.Subscribe(1)
	unsub()
	unsub()
	// Publishing after unsubscribe must not panic.
	b.Publish(Activation{EntityID: "x", Kind: "reminder"})
}
