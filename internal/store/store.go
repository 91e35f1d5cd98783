// Package store implements the fact store and materialized view store
// contracts on MongoDB: bulk inserts, filtered counts, the grouped
// aggregation primitive, point field updates, and atomic view swaps.
package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Error tags any failure talking to the store. It is never retried
// internally; callers halt and propagate.
type Error struct {
	Op         string
	Collection string
	Err        error
}

func (e *Error) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(op, coll string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Collection: coll, Err: err}
}

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens a client against dsn and verifies the connection with a
// ping. The returned handle is shared by all pipeline components for the
// duration of one run; release it with Close.
func Connect(ctx context.Context, dsn, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(dsn))
	if err != nil {
		return nil, wrap("connect", "", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, wrap("ping", "", err)
	}
	return &Store{client: client, db: client.Database(dbName)}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return wrap("disconnect", "", s.client.Disconnect(ctx))
}

func (s *Store) Ping(ctx context.Context) error {
	return wrap("ping", "", s.client.Ping(ctx, readpref.Primary()))
}

// InsertMany bulk-inserts docs into collection. Batching for throughput
// is the caller's concern; no atomicity is implied.
func (s *Store) InsertMany(ctx context.Context, collection string, docs []interface{}) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := s.db.Collection(collection).InsertMany(ctx, docs)
	return wrap("insert", collection, err)
}

func (s *Store) Count(ctx context.Context, collection string, filter interface{}) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	n, err := s.db.Collection(collection).CountDocuments(ctx, filter)
	return n, wrap("count", collection, err)
}

// Aggregate runs pipeline against collection and decodes every result
// document into out (a pointer to a slice).
func (s *Store) Aggregate(ctx context.Context, collection string, pipeline mongo.Pipeline, out interface{}) error {
	cursor, err := s.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return wrap("aggregate", collection, err)
	}
	return wrap("aggregate decode", collection, cursor.All(ctx, out))
}

// Find decodes all documents matching filter into out.
func (s *Store) Find(ctx context.Context, collection string, filter interface{}, opts *options.FindOptions, out interface{}) error {
	if filter == nil {
		filter = bson.M{}
	}
	cursor, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return wrap("find", collection, err)
	}
	return wrap("find decode", collection, cursor.All(ctx, out))
}

// UpdateFields sets fields on the single record whose id matches. Point
// update only; there is no transactional guarantee across records.
func (s *Store) UpdateFields(ctx context.Context, collection, id string, fields bson.M) error {
	_, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": fields})
	return wrap("update", collection, err)
}

func (s *Store) DeleteAll(ctx context.Context, collection string) error {
	_, err := s.db.Collection(collection).DeleteMany(ctx, bson.M{})
	return wrap("delete", collection, err)
}

// SwapCollection publishes a fully built staging collection under the
// live name in one rename, dropping the previous contents. A staging
// collection that was never written (empty rollup input) degrades to
// clearing the live view, so readers still observe zero rows rather
// than a stale set.
func (s *Store) SwapCollection(ctx context.Context, staging, live string) error {
	err := s.client.Database("admin").RunCommand(ctx, bson.D{
		{Key: "renameCollection", Value: s.db.Name() + "." + staging},
		{Key: "to", Value: s.db.Name() + "." + live},
		{Key: "dropTarget", Value: true},
	}).Err()
	if err != nil {
		if cmdErr, ok := err.(mongo.CommandError); ok && cmdErr.Code == 26 { // NamespaceNotFound
			return s.DeleteAll(ctx, live)
		}
		return wrap("swap", staging, err)
	}
	return nil
}

// CreateIndexes declares access-pattern indexes on collection. These are
// performance hints; aggregation results are identical without them.
func (s *Store) CreateIndexes(ctx context.Context, collection string, indexes []mongo.IndexModel) error {
	if len(indexes) == 0 {
		return nil
	}
	_, err := s.db.Collection(collection).Indexes().CreateMany(ctx, indexes)
	return wrap("index", collection, err)
}
