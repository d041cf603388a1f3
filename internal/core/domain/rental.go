package domain

import (
	"errors"
	"time"
)

// RentalStatus is derived from the rental's stored fields, never stored itself.
type RentalStatus string

const (
	RentalActive   RentalStatus = "active"
	RentalReturned RentalStatus = "returned"
)

// ParseRentalStatus accepts "active" or "returned". Any other value reports ok=false.
func ParseRentalStatus(s string) (RentalStatus, bool) {
	switch RentalStatus(s) {
	case RentalActive, RentalReturned:
		return RentalStatus(s), true
	}
	return "", false
}

var errPartialRental = errors.New("rental has a partial return state")

// Rental links a user to a movie for a period of time.
// User and Movie are populated on reads.
type Rental struct {
	ID         string
	UUID       string
	UserUUID   string
	MovieUUID  string
	User       *User
	Movie      *Movie
	RentalDate time.Time
	ReturnDate *time.Time
	Returned   bool
	Payment    *float64
}

// NewRental starts an ACTIVE rental at now.
func NewRental(uuid, userUUID, movieUUID string, now time.Time) *Rental {
	return &Rental{
		UUID:       uuid,
		UserUUID:   userUUID,
		MovieUUID:  movieUUID,
		RentalDate: now,
	}
}

func (r *Rental) Status() RentalStatus {
	if r.Returned {
		return RentalReturned
	}
	return RentalActive
}

func (r *Rental) IsActive() bool {
	return !r.Returned
}

// Validate checks that the rental is in exactly one of its two legal states.
func (r *Rental) Validate() error {
	if r.Returned {
		if r.ReturnDate == nil || r.Payment == nil {
			return errPartialRental
		}
		if r.ReturnDate.Before(r.RentalDate) {
			return errors.New("return date precedes rental date")
		}
		return nil
	}
	if r.ReturnDate != nil || r.Payment != nil {
		return errPartialRental
	}
	return nil
}

// Fee is the running charge for an ACTIVE rental, nil once returned.
func (r *Rental) Fee(fees FeePolicy, now time.Time) *float64 {
	if r.Returned {
		return nil
	}
	fee := fees.Calculate(r.RentalDate, now)
	return &fee
}

// Return moves the rental to RETURNED in place.
// The return date is clamped so it never precedes the rental date.
func (r *Rental) Return(fees FeePolicy, now time.Time) error {
	if r.Returned {
		return ErrAlreadyReturned
	}
	returnDate := now
	if returnDate.Before(r.RentalDate) {
		returnDate = r.RentalDate
	}
	payment := fees.Calculate(r.RentalDate, returnDate)
	r.ReturnDate = &returnDate
	r.Payment = &payment
	r.Returned = true
	return nil
}
