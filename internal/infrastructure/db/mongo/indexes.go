package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the query paths depend on. Safe to run on
// every boot; existing indexes are left untouched.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		collectionContracts: {
			{Keys: bson.D{{Key: "client_id", Value: 1}}},
			{Keys: bson.D{{Key: "contractor_id", Value: 1}}},
		},
		collectionJobs: {
			{Keys: bson.D{{Key: "contract_id", Value: 1}, {Key: "paid", Value: 1}}},
			{Keys: bson.D{{Key: "paid", Value: 1}, {Key: "payment_date", Value: 1}}},
		},
		collectionAuthUsers: {
			{
				Keys:    bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes for %s: %w", name, err)
		}
	}
	return nil
}
