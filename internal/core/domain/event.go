package domain

import "time"

// RentalEventType names a rental lifecycle change.
type RentalEventType string

const (
	EventRentalCreated  RentalEventType = "rental.created"
	EventRentalReturned RentalEventType = "rental.returned"
	EventRentalDeleted  RentalEventType = "rental.deleted"
)

// RentalEvent is emitted after a rental change has been committed.
type RentalEvent struct {
	Type       RentalEventType `json:"type"`
	RentalUUID string          `json:"rental_uuid"`
	UserUUID   string          `json:"user_uuid"`
	MovieUUID  string          `json:"movie_uuid"`
	MovieTitle string          `json:"movie_title,omitempty"`
	Payment    *float64        `json:"payment,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func NewRentalEvent(t RentalEventType, r *Rental, at time.Time) RentalEvent {
	ev := RentalEvent{
		Type:       t,
		RentalUUID: r.UUID,
		UserUUID:   r.UserUUID,
		MovieUUID:  r.MovieUUID,
		Payment:    r.Payment,
		OccurredAt: at,
	}
	if r.Movie != nil {
		ev.MovieTitle = r.Movie.Title
	}
	return ev
}
