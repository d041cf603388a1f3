package ports

import (
	"context"
	"time"

	"github.com/moviestore/rental-api/internal/core/domain"
)

// UserRepository persists accounts. Emails are stored normalized.
type UserRepository interface {
	// Create returns domain.ErrUserExists when the email is taken.
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUUID(ctx context.Context, uuid string) (*domain.User, error)
	TouchLastLogin(ctx context.Context, uuid string, at time.Time) error
	List(ctx context.Context, filter UserFilter) ([]*domain.User, int64, error)
}
