package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/moviestore/rental-api/internal/core/domain"
	"github.com/moviestore/rental-api/internal/core/ports"
)

var genreSortFields = map[string]string{"name": "name"}

type GenreRepository struct {
	col    *mongo.Collection
	movies *mongo.Collection
}

func NewGenreRepository(db *mongo.Database) *GenreRepository {
	return &GenreRepository{
		col:    db.Collection(genresCollection),
		movies: db.Collection(moviesCollection),
	}
}

type genreDoc struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	UUID string             `bson:"uuid"`
	Name string             `bson:"name"`
}

func (d genreDoc) toDomain() *domain.Genre {
	return &domain.Genre{ID: d.ID.Hex(), UUID: d.UUID, Name: d.Name}
}

func (r *GenreRepository) Create(ctx context.Context, g *domain.Genre) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, genreDoc{UUID: g.UUID, Name: g.Name})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateGenreName
		}
		return fmt.Errorf("insert genre: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		g.ID = oid.Hex()
	}
	return nil
}

func (r *GenreRepository) FindByUUID(ctx context.Context, uuid string) (*domain.Genre, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc genreDoc
	if err := r.col.FindOne(ctx, bson.M{"uuid": uuid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrGenreNotFound
		}
		return nil, fmt.Errorf("find genre: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *GenreRepository) FindByNames(ctx context.Context, names []string) ([]*domain.Genre, error) {
	return r.find(ctx, bson.M{"name": bson.M{"$in": names}})
}

func (r *GenreRepository) MatchNames(ctx context.Context, names []string) ([]*domain.Genre, error) {
	if len(names) == 0 {
		return nil, nil
	}
	or := make(bson.A, 0, len(names))
	for _, n := range names {
		or = append(or, bson.M{"name": equalFold(n)})
	}
	return r.find(ctx, bson.M{"$or": or})
}

func (r *GenreRepository) find(ctx context.Context, filter bson.M) ([]*domain.Genre, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find genres: %w", err)
	}
	var docs []genreDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode genres: %w", err)
	}
	out := make([]*domain.Genre, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *GenreRepository) Update(ctx context.Context, g *domain.Genre) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"uuid": g.UUID}, bson.M{"$set": bson.M{"name": g.Name}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateGenreName
		}
		return fmt.Errorf("update genre: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrGenreNotFound
	}
	return nil
}

// Delete removes the genre, then pulls it out of every movie's genre set.
func (r *GenreRepository) Delete(ctx context.Context, uuid string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"uuid": uuid})
	if err != nil {
		return fmt.Errorf("delete genre: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrGenreNotFound
	}
	if _, err := r.movies.UpdateMany(ctx,
		bson.M{"genre_uuids": uuid},
		bson.M{"$pull": bson.M{"genre_uuids": uuid}},
	); err != nil {
		return fmt.Errorf("detach genre from movies: %w", err)
	}
	return nil
}

func (r *GenreRepository) List(ctx context.Context, f ports.GenreFilter) ([]*domain.Genre, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Search != "" {
		filter["name"] = containsFold(f.Search)
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count genres: %w", err)
	}
	cur, err := r.col.Find(ctx, filter, findPage(f.Page, sortSpec(f.Ordering, genreSortFields)))
	if err != nil {
		return nil, 0, fmt.Errorf("find genres: %w", err)
	}
	var docs []genreDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode genres: %w", err)
	}
	out := make([]*domain.Genre, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, total, nil
}
