package queue

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/moviestore/rental-api/internal/core/domain"
)

// LogPublisher writes rental events to the structured log. It is used when no
// message broker is configured.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, ev domain.RentalEvent) error {
	e := p.log.Info().
		Str("event_type", string(ev.Type)).
		Str("rental_uuid", ev.RentalUUID).
		Str("user_uuid", ev.UserUUID).
		Str("movie_uuid", ev.MovieUUID).
		Time("occurred_at", ev.OccurredAt)
	if ev.Payment != nil {
		e = e.Float64("payment", *ev.Payment)
	}
	e.Msg("rental event")
	return nil
}
