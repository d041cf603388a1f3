package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/ports"
)

// Sort keys refer to the pipeline after the movie has been joined in.
var rentalSortFields = map[string]string{
	"movie_title": "movie.title",
	"movie_year":  "movie.year",
	"rental_date": "rental_date",
	"return_date": "return_date",
	"payment":     "payment",
}

// RentalRepository relies on the partial unique index on {user_uuid, movie_uuid}
// (returned: false) to reject a second active rental.
type RentalRepository struct {
	col    *mongo.Collection
	users  *mongo.Collection
	movies *MovieRepository
}

func NewRentalRepository(db *mongo.Database) *RentalRepository {
	return &RentalRepository{
		col:    db.Collection(rentalsCollection),
		users:  db.Collection(usersCollection),
		movies: NewMovieRepository(db),
	}
}

type rentalDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UUID       string             `bson:"uuid"`
	UserUUID   string             `bson:"user_uuid"`
	MovieUUID  string             `bson:"movie_uuid"`
	RentalDate time.Time          `bson:"rental_date"`
	ReturnDate *time.Time         `bson:"return_date"`
	Returned   bool               `bson:"returned"`
	Payment    *float64           `bson:"payment"`
}

func (r *RentalRepository) Create(ctx context.Context, rental *domain.Rental) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, rentalDoc{
		UUID:       rental.UUID,
		UserUUID:   rental.UserUUID,
		MovieUUID:  rental.MovieUUID,
		RentalDate: rental.RentalDate.UTC(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyRented
		}
		return fmt.Errorf("insert rental: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		rental.ID = oid.Hex()
	}
	return nil
}

func (r *RentalRepository) FindByUUID(ctx context.Context, uuid, ownerUUID string) (*domain.Rental, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"uuid": uuid}
	if ownerUUID != "" {
		filter["user_uuid"] = ownerUUID
	}

	var doc rentalDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRentalNotFound
		}
		return nil, fmt.Errorf("find rental: %w", err)
	}
	rentals, err := r.hydrate(ctx, []rentalDoc{doc})
	if err != nil {
		return nil, err
	}
	return rentals[0], nil
}

// MarkReturned only matches a rental that is still active, so concurrent
// returns cannot both succeed.
func (r *RentalRepository) MarkReturned(ctx context.Context, uuid string, returnDate time.Time, payment float64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"uuid": uuid, "returned": false},
		bson.M{"$set": bson.M{"returned": true, "return_date": returnDate.UTC(), "payment": payment}},
	)
	if err != nil {
		return fmt.Errorf("return rental: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"uuid": uuid})
	if err != nil {
		return fmt.Errorf("return rental: %w", err)
	}
	if n == 0 {
		return domain.ErrRentalNotFound
	}
	return domain.ErrAlreadyReturned
}

func (r *RentalRepository) Delete(ctx context.Context, uuid string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"uuid": uuid})
	if err != nil {
		return fmt.Errorf("delete rental: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrRentalNotFound
	}
	return nil
}

// List joins each rental with its movie so search and ordering can use movie fields,
// and counts and pages in one round trip with $facet.
func (r *RentalRepository) List(ctx context.Context, f ports.RentalFilter) ([]*domain.Rental, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	match := bson.M{}
	if f.OwnerUUID != "" {
		match["user_uuid"] = f.OwnerUUID
	}
	if f.UserUUID != "" {
		if owner, scoped := match["user_uuid"]; scoped && owner != f.UserUUID {
			return []*domain.Rental{}, 0, nil
		}
		match["user_uuid"] = f.UserUUID
	}
	if f.MovieUUID != "" {
		match["movie_uuid"] = f.MovieUUID
	}
	switch f.Status {
	case domain.RentalActive:
		match["returned"] = false
	case domain.RentalReturned:
		match["returned"] = true
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.M{
			"from":         moviesCollection,
			"localField":   "movie_uuid",
			"foreignField": "uuid",
			"as":           "movie",
		}}},
		{{Key: "$unwind", Value: "$movie"}},
	}
	if f.Search != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"movie.title": containsFold(f.Search)}}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$facet", Value: bson.M{
		"results": bson.A{
			bson.M{"$sort": sortSpec(f.Ordering, rentalSortFields)},
			bson.M{"$skip": f.Page.Offset()},
			bson.M{"$limit": f.Page.Limit()},
			bson.M{"$project": bson.M{"movie": 0}},
		},
		"total": bson.A{bson.M{"$count": "n"}},
	}}})

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("aggregate rentals: %w", err)
	}
	var out []struct {
		Results []rentalDoc `bson:"results"`
		Total   []struct {
			N int64 `bson:"n"`
		} `bson:"total"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("decode rentals: %w", err)
	}
	if len(out) == 0 || len(out[0].Total) == 0 {
		return []*domain.Rental{}, 0, nil
	}

	rentals, err := r.hydrate(ctx, out[0].Results)
	if err != nil {
		return nil, 0, err
	}
	return rentals, out[0].Total[0].N, nil
}

// hydrate attaches users and movies with one query per collection.
func (r *RentalRepository) hydrate(ctx context.Context, docs []rentalDoc) ([]*domain.Rental, error) {
	userIDs := make([]string, 0, len(docs))
	movieIDs := make([]string, 0, len(docs))
	for _, d := range docs {
		userIDs = append(userIDs, d.UserUUID)
		movieIDs = append(movieIDs, d.MovieUUID)
	}

	users := make(map[string]*domain.User, len(docs))
	if len(userIDs) > 0 {
		cur, err := r.users.Find(ctx, bson.M{"uuid": bson.M{"$in": userIDs}})
		if err != nil {
			return nil, fmt.Errorf("find rental users: %w", err)
		}
		var udocs []userDoc
		if err := cur.All(ctx, &udocs); err != nil {
			return nil, fmt.Errorf("decode rental users: %w", err)
		}
		for _, u := range udocs {
			users[u.UUID] = u.toDomain()
		}
	}

	movies := make(map[string]*domain.Movie, len(docs))
	if len(movieIDs) > 0 {
		cur, err := r.movies.col.Find(ctx, bson.M{"uuid": bson.M{"$in": movieIDs}})
		if err != nil {
			return nil, fmt.Errorf("find rental movies: %w", err)
		}
		var mdocs []movieDoc
		if err := cur.All(ctx, &mdocs); err != nil {
			return nil, fmt.Errorf("decode rental movies: %w", err)
		}
		hydrated, err := r.movies.hydrate(ctx, mdocs)
		if err != nil {
			return nil, err
		}
		for _, m := range hydrated {
			movies[m.UUID] = m
		}
	}

	out := make([]*domain.Rental, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.Rental{
			ID:         d.ID.Hex(),
			UUID:       d.UUID,
			UserUUID:   d.UserUUID,
			MovieUUID:  d.MovieUUID,
			User:       users[d.UserUUID],
			Movie:      movies[d.MovieUUID],
			RentalDate: d.RentalDate,
			ReturnDate: d.ReturnDate,
			Returned:   d.Returned,
			Payment:    d.Payment,
		})
	}
	return out, nil
}
