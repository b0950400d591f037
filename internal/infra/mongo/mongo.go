package mongo

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-insights/internal/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DataStore is the part of a collection the transaction store uses.
type DataStore interface {
	FindAll(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]bson.M, error)
	BulkWrite(ctx context.Context, models []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error)
}

// MongoCollection adapts *mongo.Collection to DataStore.
type MongoCollection struct {
	*mongo.Collection
}

// FindAll runs a find and decodes every matching document.
func (c *MongoCollection) FindAll(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]bson.M, error) {
	cur, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", c.Name(), err)
	}

	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s cursor: %w", c.Name(), err)
	}
	return docs, nil
}

// BulkWrite performs a bulk write operation.
func (c *MongoCollection) BulkWrite(ctx context.Context, models []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error) {
	result, err := c.Collection.BulkWrite(ctx, models, opts...)
	if err != nil {
		return nil, fmt.Errorf("bulk write to %s: %w", c.Name(), err)
	}
	return result, nil
}

// Connect establishes and verifies a connection to MongoDB.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	log := logger.FromContext(ctx)
	log.Debug().Msg("connecting to MongoDB")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("Connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("Connect: ping: %w", err)
	}

	log.Info().Msg("connected to MongoDB")
	return client, nil
}

// OpenTransactionStore returns a store over database.collection of client.
func OpenTransactionStore(client *mongo.Client, database, collection string) *TransactionStore {
	return &TransactionStore{Collection: &MongoCollection{client.Database(database).Collection(collection)}}
}
