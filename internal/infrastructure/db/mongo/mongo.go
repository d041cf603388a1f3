package mongo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/moviestore/rental-api/internal/core/ports"
	"github.com/moviestore/rental-api/internal/core/query"
)

const (
	defaultTimeout = 10 * time.Second

	usersCollection   = "users"
	genresCollection  = "genres"
	moviesCollection  = "movies"
	rentalsCollection = "rentals"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// Store wires the collection-backed repositories of one database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewStore(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{client: client, db: db}
}

func (s *Store) Repositories() ports.Repositories {
	return ports.Repositories{
		Users:   NewUserRepository(s.db),
		Genres:  NewGenreRepository(s.db),
		Movies:  NewMovieRepository(s.db),
		Rentals: NewRentalRepository(s.db),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique indexes the repositories rely on for conflict detection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	unique := func(keys ...string) mongo.IndexModel {
		d := bson.D{}
		for _, k := range keys {
			d = append(d, bson.E{Key: k, Value: 1})
		}
		return mongo.IndexModel{Keys: d, Options: options.Index().SetUnique(true)}
	}

	indexes := map[string][]mongo.IndexModel{
		usersCollection:  {unique("uuid"), unique("email")},
		genresCollection: {unique("uuid"), unique("name")},
		moviesCollection: {
			unique("uuid"),
			{Keys: bson.D{{Key: "genre_uuids", Value: 1}}},
			{Keys: bson.D{{Key: "title", Value: 1}}},
		},
		rentalsCollection: {
			unique("uuid"),
			{Keys: bson.D{{Key: "movie_uuid", Value: 1}}},
			{
				Keys: bson.D{{Key: "user_uuid", Value: 1}, {Key: "movie_uuid", Value: 1}},
				Options: options.Index().
					SetName("one_active_rental_per_user_movie").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"returned": false}),
			},
		},
	}

	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// sortSpec translates an allow-listed ordering into a Mongo sort document.
// uuid is always appended so paging is stable.
func sortSpec(ord query.Ordering, fields map[string]string) bson.D {
	d := bson.D{}
	for _, f := range ord {
		key, ok := fields[f.Field]
		if !ok {
			continue
		}
		dir := 1
		if f.Desc {
			dir = -1
		}
		d = append(d, bson.E{Key: key, Value: dir})
	}
	return append(d, bson.E{Key: "uuid", Value: 1})
}

func containsFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func equalFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(s) + "$", Options: "i"}
}

func findPage(req query.PageRequest, sort bson.D) *options.FindOptions {
	return options.Find().
		SetSort(sort).
		SetSkip(int64(req.Offset())).
		SetLimit(int64(req.Limit()))
}
