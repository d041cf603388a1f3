package ports

import (
	"context"

	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/query"
)

// RentalView is a rental plus its running fee. Fee is nil once returned.
type RentalView struct {
	Rental *domain.Rental
	Fee    *float64
}

// RentalQuery carries raw filter values; empty strings mean absent.
type RentalQuery struct {
	User    string
	Movie   string
	Status  string
	Search  string
	OrderBy string
	Page    query.PageRequest
}

type RentalService interface {
	Create(ctx context.Context, actor *domain.Actor, movieUUID string) (*RentalView, error)
	List(ctx context.Context, actor *domain.Actor, q RentalQuery) (query.Page[RentalView], error)
	Get(ctx context.Context, actor *domain.Actor, uuid string) (*RentalView, error)
	// Return marks the rental returned. A nil returned is a validation error.
	Return(ctx context.Context, actor *domain.Actor, uuid string, returned *bool) (*RentalView, error)
	Delete(ctx context.Context, actor *domain.Actor, uuid string) error
}
