package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/machinechat/core/internal/config"
	"github.com/machinechat/core/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const connectTimeout = 10 * time.Second

// Database wraps the Mongo client for the application. Constructed once at
// startup; the driver maintains the connection pool.
type Database struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens a Mongo connection and verifies it with a ping.
func Connect(ctx context.Context, cfg *config.AppConfig) (*Database, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &Database{client: client, db: client.Database(cfg.Mongo.Database)}, nil
}

// Close disconnects the underlying client.
func (d *Database) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// CollectionNames lists all collections in the configured database.
func (d *Database) CollectionNames(ctx context.Context) ([]string, error) {
	names, err := d.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return names, nil
}

// FindRecent fetches at most limit documents from the named collection,
// newest first by the CreatedAt field. A nil filter fetches unfiltered.
func (d *Database) FindRecent(ctx context.Context, collection string, filter bson.M, limit int64) ([]bson.M, error) {
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "CreatedAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := d.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find in %q: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode documents from %q: %w", collection, err)
	}
	return docs, nil
}

// LookupQueryRecord returns the newest log record whose cache key matches
// the given text, or nil when none exists.
func (d *Database) LookupQueryRecord(ctx context.Context, key string) (*models.QueryRecord, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"corrected_query": key},
		bson.M{"corrected_query": bson.M{"$exists": false}, "query": key},
	}}
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	var rec models.QueryRecord
	err := d.db.Collection(models.QueryLogCollection).FindOne(ctx, filter, opts).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup query record: %w", err)
	}
	return &rec, nil
}

// ListQueryRecords returns one page of the query log, newest first, along
// with the total record count.
func (d *Database) ListQueryRecords(ctx context.Context, offset, limit int64) ([]models.QueryRecord, int64, error) {
	coll := d.db.Collection(models.QueryLogCollection)

	total, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count query records: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip(offset).
		SetLimit(limit)
	cursor, err := coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list query records: %w", err)
	}
	defer cursor.Close(ctx)

	var recs []models.QueryRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, 0, fmt.Errorf("decode query records: %w", err)
	}
	return recs, total, nil
}

// InsertQueryRecord appends a record to the query log.
func (d *Database) InsertQueryRecord(ctx context.Context, rec *models.QueryRecord) error {
	if _, err := d.db.Collection(models.QueryLogCollection).InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert query record: %w", err)
	}
	return nil
}
