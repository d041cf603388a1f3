package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/ports"
	"github.com/moviestore/rental-api/internal/core/query"
)

var userOrderFields = []string{"email", "date_joined"}

// emails is shared; a validator.Validate is safe for concurrent use.
var emails = validator.New()

type userService struct {
	users ports.UserRepository
	log   zerolog.Logger
	now   func() time.Time
}

// NewUserService returns the account administration service.
func NewUserService(users ports.UserRepository, log zerolog.Logger) ports.UserService {
	return &userService{users: users, log: log, now: time.Now}
}

func (s *userService) List(ctx context.Context, q ports.UserQuery) (query.Page[*domain.User], error) {
	filter := ports.UserFilter{
		Search:   q.Search,
		Ordering: query.ParseOrdering(q.OrderBy, userOrderFields, query.Asc("email")),
		Page:     q.Page,
	}
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return query.Page[*domain.User]{}, fmt.Errorf("list users: %w", err)
	}
	return query.NewPage(users, total, q.Page), nil
}

func (s *userService) Get(ctx context.Context, id string) (*domain.User, error) {
	if !isUUID(id) {
		return nil, domain.ErrUserNotFound
	}
	return s.users.FindByUUID(ctx, id)
}

func (s *userService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	email := domain.NormalizeEmail(in.Email)
	if err := emails.Var(email, "required,email"); err != nil {
		return nil, domain.NewValidationError("email", "Enter a valid email address.")
	}
	if in.Password == "" {
		return nil, domain.NewValidationError("password", "This field may not be blank.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		UUID:         uuid.NewString(),
		Email:        email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hash),
		IsStaff:      in.IsStaff,
		IsSuperuser:  in.IsSuper,
		IsActive:     true,
		DateJoined:   s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("user", user.UUID).Str("role", string(user.Role())).Msg("user created")
	return user, nil
}

func (s *userService) EnsureAdmin(ctx context.Context, email, password string) (*domain.User, error) {
	existing, err := s.users.FindByEmail(ctx, domain.NormalizeEmail(email))
	if errors.Is(err, domain.ErrUserNotFound) {
		return s.Create(ctx, ports.CreateUserInput{Email: email, Password: password, IsStaff: true, IsSuper: true})
	}
	if err != nil {
		return nil, fmt.Errorf("ensure admin: %w", err)
	}
	if existing.IsSuperuser && existing.IsActive {
		return existing, nil
	}

	existing.IsStaff = true
	existing.IsSuperuser = true
	existing.IsActive = true
	if err := s.users.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("ensure admin: %w", err)
	}
	s.log.Info().Str("user", existing.UUID).Msg("existing user promoted to admin")
	return existing, nil
}

func isUUID(s string) bool {
	return uuid.Validate(s) == nil
}
