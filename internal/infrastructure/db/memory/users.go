package memory

import (
	"context"
	"strings"
	"time"

	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/ports"
	"github.com/moviestore/rental-api/internal/core/query"
)

var userSorter = query.Sorter[*domain.User]{
	Fields: map[string]query.Comparator[*domain.User]{
		"email":       func(a, b *domain.User) int { return strings.Compare(a.Email, b.Email) },
		"date_joined": func(a, b *domain.User) int { return a.DateJoined.Compare(b.DateJoined) },
	},
	Tiebreak: func(a, b *domain.User) int { return strings.Compare(a.UUID, b.UUID) },
}

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return domain.ErrUserExists
		}
	}
	u.ID = r.s.nextID()
	r.s.users[u.UUID] = cloneUser(u)
	return nil
}

func (r *UserRepository) Update(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[u.UUID]; !ok {
		return domain.ErrUserNotFound
	}
	for _, existing := range r.s.users {
		if existing.Email == u.Email && existing.UUID != u.UUID {
			return domain.ErrUserExists
		}
	}
	r.s.users[u.UUID] = cloneUser(u)
	return nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) FindByUUID(_ context.Context, uuid string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[uuid]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) TouchLastLogin(_ context.Context, uuid string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[uuid]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLogin = &at
	return nil
}

func (r *UserRepository) List(_ context.Context, f ports.UserFilter) ([]*domain.User, int64, error) {
	r.s.mu.RLock()
	all := make([]*domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		all = append(all, cloneUser(u))
	}
	r.s.mu.RUnlock()

	var preds []query.Predicate[*domain.User]
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		preds = append(preds, func(u *domain.User) bool {
			return containsFold(u.Email, needle) || containsFold(u.FirstName, needle) || containsFold(u.LastName, needle)
		})
	}
	page := query.Run(all, preds, f.Ordering, userSorter, f.Page)
	return page.Items, page.Count, nil
}

// containsFold reports whether lowerNeedle occurs in s ignoring case.
func containsFold(s, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(s), lowerNeedle)
}
