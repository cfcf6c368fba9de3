package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gigwork/contracts-api/internal/core/domain"
)

type ContractRepository struct {
	collection *mongo.Collection
}

func NewContractRepository(db *mongo.Database) *ContractRepository {
	return &ContractRepository{collection: db.Collection(collectionContracts)}
}

func (r *ContractRepository) FindByID(ctx context.Context, id string) (*domain.Contract, error) {
	var c domain.Contract
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrContractNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListForProfile returns the profile's non-terminated contracts, either side
// of the relationship, newest first.
func (r *ContractRepository) ListForProfile(ctx context.Context, profileID string) ([]*domain.Contract, error) {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"client_id": profileID},
			bson.M{"contractor_id": profileID},
		},
		"status": bson.M{"$ne": domain.ContractTerminated},
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	contracts := make([]*domain.Contract, 0)
	if err := cursor.All(ctx, &contracts); err != nil {
		return nil, err
	}
	return contracts, nil
}
