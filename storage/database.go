package storage

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned by store lookups when no document matches; callers
// use it to tell a missing resource apart from an infrastructure failure.
var ErrNotFound = errors.New("not found")

// Store owns the MongoDB client. It is constructed once in main and passed
// into every store that needs it; there is no package-global handle.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	return &Store{client: client, db: client.Database(dbName)}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Properties() *mongo.Collection { return s.db.Collection("properties") }
func (s *Store) Users() *mongo.Collection      { return s.db.Collection("users") }
func (s *Store) Messages() *mongo.Collection   { return s.db.Collection("messages") }
