package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/policy"
	"github.com/moviestore/rental-api/internal/core/ports"
	"github.com/moviestore/rental-api/internal/core/query"
)

var rentalOrderFields = []string{"movie_title", "movie_year", "rental_date", "return_date", "payment"}

type rentalService struct {
	rentals ports.RentalRepository
	movies  ports.MovieRepository
	events  ports.RentalEventSink
	fees    domain.FeePolicy
	log     zerolog.Logger
	now     func() time.Time
}

// NewRentalService returns the rental lifecycle service.
// events may be nil, in which case no rental events are emitted.
func NewRentalService(
	rentals ports.RentalRepository,
	movies ports.MovieRepository,
	events ports.RentalEventSink,
	fees domain.FeePolicy,
	log zerolog.Logger,
) ports.RentalService {
	return &rentalService{
		rentals: rentals,
		movies:  movies,
		events:  events,
		fees:    fees,
		log:     log,
		now:     time.Now,
	}
}

func (s *rentalService) Create(ctx context.Context, actor *domain.Actor, movieUUID string) (*ports.RentalView, error) {
	if err := policy.CheckObject(policy.Rental, policy.Create, actor, ""); err != nil {
		return nil, err
	}
	if !isUUID(movieUUID) {
		return nil, domain.ErrMovieNotFound
	}
	movie, err := s.movies.FindByUUID(ctx, movieUUID)
	if err != nil {
		return nil, err
	}

	r := domain.NewRental(uuid.NewString(), actor.UUID, movie.UUID, s.now().UTC())
	if err := s.rentals.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create rental: %w", err)
	}

	created, err := s.rentals.FindByUUID(ctx, r.UUID, "")
	if err != nil {
		return nil, fmt.Errorf("create rental: reload: %w", err)
	}

	s.log.Info().Str("rental", r.UUID).Str("user", actor.UUID).Str("movie", movie.UUID).Msg("rental created")
	s.emit(domain.EventRentalCreated, created)
	return s.view(created), nil
}

func (s *rentalService) List(ctx context.Context, actor *domain.Actor, q ports.RentalQuery) (query.Page[ports.RentalView], error) {
	if actor == nil {
		return query.Page[ports.RentalView]{}, domain.ErrUnauthenticated
	}
	empty := query.EmptyPage[ports.RentalView](q.Page)

	filter := ports.RentalFilter{
		OwnerUUID: s.scope(actor),
		Search:    q.Search,
		Ordering:  query.ParseOrdering(q.OrderBy, rentalOrderFields, query.Asc("rental_date")),
		Page:      q.Page,
	}
	// The user filter only means something to admins; everyone else is already scoped.
	if actor.IsAdmin() && q.User != "" {
		if !isUUID(q.User) {
			return empty, nil
		}
		filter.UserUUID = q.User
	}
	if q.Movie != "" {
		if !isUUID(q.Movie) {
			return empty, nil
		}
		filter.MovieUUID = q.Movie
	}
	if status, ok := domain.ParseRentalStatus(q.Status); ok {
		filter.Status = status
	}

	rentals, total, err := s.rentals.List(ctx, filter)
	if err != nil {
		return empty, fmt.Errorf("list rentals: %w", err)
	}

	views := make([]ports.RentalView, 0, len(rentals))
	for _, r := range rentals {
		views = append(views, *s.view(r))
	}
	return query.NewPage(views, total, q.Page), nil
}

func (s *rentalService) Get(ctx context.Context, actor *domain.Actor, id string) (*ports.RentalView, error) {
	r, err := s.find(ctx, actor, policy.Retrieve, id)
	if err != nil {
		return nil, err
	}
	return s.view(r), nil
}

func (s *rentalService) Return(ctx context.Context, actor *domain.Actor, id string, returned *bool) (*ports.RentalView, error) {
	r, err := s.find(ctx, actor, policy.PartialUpdate, id)
	if err != nil {
		return nil, err
	}

	switch {
	case r.Returned:
		return nil, domain.ErrAlreadyReturned
	case returned == nil:
		return nil, domain.NewValidationError("returned", "This field is required.")
	case !*returned:
		return nil, domain.ErrInvalidTransition
	}

	if err := r.Return(s.fees, s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.rentals.MarkReturned(ctx, r.UUID, *r.ReturnDate, *r.Payment); err != nil {
		return nil, fmt.Errorf("return rental: %w", err)
	}

	s.log.Info().Str("rental", r.UUID).Float64("payment", *r.Payment).Msg("rental returned")
	s.emit(domain.EventRentalReturned, r)
	return s.view(r), nil
}

func (s *rentalService) Delete(ctx context.Context, actor *domain.Actor, id string) error {
	r, err := s.find(ctx, actor, policy.Destroy, id)
	if err != nil {
		return err
	}
	if err := s.rentals.Delete(ctx, r.UUID); err != nil {
		return fmt.Errorf("delete rental: %w", err)
	}

	s.log.Info().Str("rental", r.UUID).Msg("rental deleted")
	s.emit(domain.EventRentalDeleted, r)
	return nil
}

// find loads a rental visible to actor and applies the object-level check.
// Rentals owned by someone else are reported as not found.
func (s *rentalService) find(ctx context.Context, actor *domain.Actor, act policy.Action, id string) (*domain.Rental, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !isUUID(id) {
		return nil, domain.ErrRentalNotFound
	}
	r, err := s.rentals.FindByUUID(ctx, id, s.scope(actor))
	if err != nil {
		return nil, err
	}
	if err := policy.CheckObject(policy.Rental, act, actor, r.UserUUID); err != nil {
		return nil, err
	}
	return r, nil
}

// scope is the owner filter applied to every rental read by actor.
func (s *rentalService) scope(actor *domain.Actor) string {
	if actor.IsAdmin() {
		return ""
	}
	return actor.UUID
}

func (s *rentalService) view(r *domain.Rental) *ports.RentalView {
	return &ports.RentalView{Rental: r, Fee: r.Fee(s.fees, s.now().UTC())}
}

func (s *rentalService) emit(t domain.RentalEventType, r *domain.Rental) {
	if s.events == nil {
		return
	}
	s.events.Enqueue(domain.NewRentalEvent(t, r, s.now().UTC()))
}
