package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gigwork/contracts-api/internal/core/domain"
)

type JobRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

func NewJobRepository(db *mongo.Database) *JobRepository {
	return &JobRepository{db: db, collection: db.Collection(collectionJobs)}
}

// ListUnpaidForProfile returns the unpaid jobs under the profile's active
// contracts. Terminated contracts are excluded: their jobs are no longer
// payable, so listing them would only advertise dead work.
func (r *JobRepository) ListUnpaidForProfile(ctx context.Context, profileID string) ([]*domain.Job, error) {
	contractIDs, err := r.activeContractIDs(ctx, profileID)
	if err != nil {
		return nil, err
	}
	jobs := make([]*domain.Job, 0)
	if len(contractIDs) == 0 {
		return jobs, nil
	}

	cursor, err := r.collection.Find(ctx,
		bson.M{"contract_id": bson.M{"$in": contractIDs}, "paid": false},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *JobRepository) activeContractIDs(ctx context.Context, profileID string) ([]string, error) {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"client_id": profileID},
			bson.M{"contractor_id": profileID},
		},
		"status": bson.M{"$ne": domain.ContractTerminated},
	}

	cursor, err := r.db.Collection(collectionContracts).Find(ctx, filter,
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cursor.Err()
}
