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

var movieSortFields = map[string]string{"title": "title", "year": "year"}

// MovieRepository stores each movie with the uuids of its genres embedded.
type MovieRepository struct {
	col     *mongo.Collection
	genres  *mongo.Collection
	rentals *mongo.Collection
}

func NewMovieRepository(db *mongo.Database) *MovieRepository {
	return &MovieRepository{
		col:     db.Collection(moviesCollection),
		genres:  db.Collection(genresCollection),
		rentals: db.Collection(rentalsCollection),
	}
}

type movieDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UUID       string             `bson:"uuid"`
	Title      string             `bson:"title"`
	Year       int                `bson:"year"`
	Summary    string             `bson:"summary"`
	Director   string             `bson:"director"`
	GenreUUIDs []string           `bson:"genre_uuids"`
}

func toMovieDoc(m *domain.Movie) movieDoc {
	ids := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		ids = append(ids, g.UUID)
	}
	return movieDoc{
		UUID:       m.UUID,
		Title:      m.Title,
		Year:       m.Year,
		Summary:    m.Summary,
		Director:   m.Director,
		GenreUUIDs: ids,
	}
}

func (r *MovieRepository) Create(ctx context.Context, m *domain.Movie) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, toMovieDoc(m))
	if err != nil {
		return fmt.Errorf("insert movie: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		m.ID = oid.Hex()
	}
	return nil
}

func (r *MovieRepository) FindByUUID(ctx context.Context, uuid string) (*domain.Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc movieDoc
	if err := r.col.FindOne(ctx, bson.M{"uuid": uuid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMovieNotFound
		}
		return nil, fmt.Errorf("find movie: %w", err)
	}
	movies, err := r.hydrate(ctx, []movieDoc{doc})
	if err != nil {
		return nil, err
	}
	return movies[0], nil
}

func (r *MovieRepository) Update(ctx context.Context, m *domain.Movie) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMovieDoc(m)
	res, err := r.col.UpdateOne(ctx, bson.M{"uuid": m.UUID}, bson.M{"$set": bson.M{
		"title":       doc.Title,
		"year":        doc.Year,
		"summary":     doc.Summary,
		"director":    doc.Director,
		"genre_uuids": doc.GenreUUIDs,
	}})
	if err != nil {
		return fmt.Errorf("update movie: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrMovieNotFound
	}
	return nil
}

// Delete removes the movie and then every rental that referenced it.
func (r *MovieRepository) Delete(ctx context.Context, uuid string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"uuid": uuid})
	if err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrMovieNotFound
	}
	if _, err := r.rentals.DeleteMany(ctx, bson.M{"movie_uuid": uuid}); err != nil {
		return fmt.Errorf("delete rentals of movie: %w", err)
	}
	return nil
}

func (r *MovieRepository) List(ctx context.Context, f ports.MovieFilter) ([]*domain.Movie, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Search != "" {
		filter["title"] = containsFold(f.Search)
	}
	if f.Year != nil {
		filter["year"] = *f.Year
	}
	if f.Director != nil {
		filter["director"] = *f.Director
	}
	if len(f.GenreUUIDs) > 0 {
		filter["genre_uuids"] = bson.M{"$all": f.GenreUUIDs}
	}
	if f.RentedBy != "" {
		ids, err := r.activeMovieUUIDs(ctx, f.RentedBy)
		if err != nil {
			return nil, 0, err
		}
		filter["uuid"] = bson.M{"$in": ids}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count movies: %w", err)
	}
	cur, err := r.col.Find(ctx, filter, findPage(f.Page, sortSpec(f.Ordering, movieSortFields)))
	if err != nil {
		return nil, 0, fmt.Errorf("find movies: %w", err)
	}
	var docs []movieDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode movies: %w", err)
	}
	movies, err := r.hydrate(ctx, docs)
	if err != nil {
		return nil, 0, err
	}
	return movies, total, nil
}

func (r *MovieRepository) activeMovieUUIDs(ctx context.Context, userUUID string) ([]string, error) {
	raw, err := r.rentals.Distinct(ctx, "movie_uuid", bson.M{"user_uuid": userUUID, "returned": false})
	if err != nil {
		return nil, fmt.Errorf("active rentals of user: %w", err)
	}
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids, nil
}

// hydrate resolves the embedded genre uuids with a single genres query.
func (r *MovieRepository) hydrate(ctx context.Context, docs []movieDoc) ([]*domain.Movie, error) {
	var ids []string
	for _, d := range docs {
		ids = append(ids, d.GenreUUIDs...)
	}

	byUUID := make(map[string]domain.Genre)
	if len(ids) > 0 {
		cur, err := r.genres.Find(ctx, bson.M{"uuid": bson.M{"$in": ids}})
		if err != nil {
			return nil, fmt.Errorf("find movie genres: %w", err)
		}
		var genres []genreDoc
		if err := cur.All(ctx, &genres); err != nil {
			return nil, fmt.Errorf("decode movie genres: %w", err)
		}
		for _, g := range genres {
			byUUID[g.UUID] = *g.toDomain()
		}
	}

	out := make([]*domain.Movie, 0, len(docs))
	for _, d := range docs {
		m := &domain.Movie{
			ID:       d.ID.Hex(),
			UUID:     d.UUID,
			Title:    d.Title,
			Year:     d.Year,
			Summary:  d.Summary,
			Director: d.Director,
			Genres:   make([]domain.Genre, 0, len(d.GenreUUIDs)),
		}
		for _, id := range d.GenreUUIDs {
			if g, ok := byUUID[id]; ok {
				m.Genres = append(m.Genres, g)
			}
		}
		out = append(out, m)
	}
	return out, nil
}
