package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/moviestore/rental-api/internal/core/domain"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.RentalEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev domain.RentalEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) snapshot() []domain.RentalEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.RentalEvent(nil), p.events...)
}

func event(t domain.RentalEventType, rental string) domain.RentalEvent {
	return domain.RentalEvent{Type: t, RentalUUID: rental, OccurredAt: time.Now()}
}

func TestShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(4, &recordingPublisher{}, zerolog.Nop())
	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("rental-%d", i)
		first := d.shardIndex(id)
		if first < 0 || first >= 4 {
			t.Fatalf("shardIndex(%q) = %d out of range", id, first)
		}
		if again := d.shardIndex(id); again != first {
			t.Fatalf("shardIndex(%q) changed from %d to %d", id, first, again)
		}
	}
}

func TestNewDispatcherDefaultsWorkers(t *testing.T) {
	d := NewDispatcher(0, &recordingPublisher{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("workers = %d, want %d", len(d.workers), defaultWorkers)
	}
}

func TestDispatcherKeepsPerRentalOrder(t *testing.T) {
	pub := &recordingPublisher{}
	d := NewDispatcher(3, pub, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = d.Run(ctx)
		close(done)
	}()

	rentals := []string{"a", "b", "c", "d"}
	for _, r := range rentals {
		d.Enqueue(event(domain.EventRentalCreated, r))
	}
	for _, r := range rentals {
		d.Enqueue(event(domain.EventRentalReturned, r))
	}

	deadline := time.After(2 * time.Second)
	for len(pub.snapshot()) < 2*len(rentals) {
		select {
		case <-deadline:
			t.Fatalf("published %d events, want %d", len(pub.snapshot()), 2*len(rentals))
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	seen := map[string]domain.RentalEventType{}
	for _, ev := range pub.snapshot() {
		if ev.Type == domain.EventRentalReturned && seen[ev.RentalUUID] != domain.EventRentalCreated {
			t.Fatalf("rental %s returned before created", ev.RentalUUID)
		}
		seen[ev.RentalUUID] = ev.Type
	}
}

func TestEnqueueDropsWhenBufferFull(t *testing.T) {
	pub := &recordingPublisher{}
	d := NewDispatcher(1, pub, zerolog.Nop())

	for i := 0; i < channelBuffer+5; i++ {
		d.Enqueue(event(domain.EventRentalCreated, "same"))
	}
	if got := len(d.workers[0]); got != channelBuffer {
		t.Fatalf("buffered = %d, want %d", got, channelBuffer)
	}
}

func TestRunDrainsBufferedEventsOnCancel(t *testing.T) {
	pub := &recordingPublisher{}
	d := NewDispatcher(2, pub, zerolog.Nop())
	for i := 0; i < 10; i++ {
		d.Enqueue(event(domain.EventRentalDeleted, fmt.Sprintf("r%d", i)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := len(pub.snapshot()); got != 10 {
		t.Fatalf("published %d events after drain, want 10", got)
	}
}

func TestPublishErrorDoesNotStopWorker(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	d := NewDispatcher(1, pub, zerolog.Nop())
	d.Enqueue(event(domain.EventRentalCreated, "x"))
	d.Enqueue(event(domain.EventRentalReturned, "x"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = d.Run(ctx)

	if got := len(pub.snapshot()); got != 2 {
		t.Fatalf("attempted %d publishes, want 2", got)
	}
}

func TestLogPublisherAcceptsEvents(t *testing.T) {
	payment := 3.5
	ev := event(domain.EventRentalReturned, "x")
	ev.Payment = &payment
	if err := NewLogPublisher(zerolog.Nop()).Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}
