package ports

import (
	"context"

	"github.com/moviestore/rental-api/internal/core/domain"
)

// RentalEventPublisher delivers a rental event to its final destination.
type RentalEventPublisher interface {
	Publish(ctx context.Context, ev domain.RentalEvent) error
}

// RentalEventSink accepts events for asynchronous delivery. It must not block
// the caller on the destination.
type RentalEventSink interface {
	Enqueue(ev domain.RentalEvent)
}
