package ports

import (
	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/query"
)

// GenreFilter narrows a genre listing. Search is a case-insensitive substring on name.
type GenreFilter struct {
	Search   string
	Ordering query.Ordering
	Page     query.PageRequest
}

// MovieFilter narrows a movie listing. Zero values mean "no filter".
type MovieFilter struct {
	Search     string  // case-insensitive substring on title
	Year       *int    // exact year
	Director   *string // exact director
	GenreUUIDs []string
	RentedBy   string // user uuid holding an active rental of the movie
	Ordering   query.Ordering
	Page       query.PageRequest
}

// RentalFilter narrows a rental listing.
// OwnerUUID is the visibility scope and is always set for non-admin actors.
type RentalFilter struct {
	OwnerUUID string
	UserUUID  string
	MovieUUID string
	Status    domain.RentalStatus
	Search    string // case-insensitive substring on movie title
	Ordering  query.Ordering
	Page      query.PageRequest
}

// UserFilter narrows a user listing. Search matches email, first or last name.
type UserFilter struct {
	Search   string
	Ordering query.Ordering
	Page     query.PageRequest
}
