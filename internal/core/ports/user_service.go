package ports

import (
	"context"

	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/query"
)

type UserQuery struct {
	Search  string
	OrderBy string
	Page    query.PageRequest
}

type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	IsStaff   bool
	IsSuper   bool
}

type UserService interface {
	List(ctx context.Context, q UserQuery) (query.Page[*domain.User], error)
	Get(ctx context.Context, uuid string) (*domain.User, error)
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
	// EnsureAdmin creates a superuser or promotes the existing account with that email.
	EnsureAdmin(ctx context.Context, email, password string) (*domain.User, error)
}
