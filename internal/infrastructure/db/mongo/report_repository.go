package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"

	"github.com/gigwork/contracts-api/internal/core/ports"
)

// ReportRepository runs the earnings aggregations over paid jobs. Majority
// read concern keeps the sums consistent with committed payment transfers
// only, never with an in-flight one.
type ReportRepository struct {
	jobs *mongo.Collection
}

func NewReportRepository(db *mongo.Database) *ReportRepository {
	jobs := db.Collection(collectionJobs,
		options.Collection().SetReadConcern(readconcern.Majority()))
	return &ReportRepository{jobs: jobs}
}

// ProfessionEarnings sums job prices paid inside [from, to], grouped by the
// contractor's profession, largest first.
func (r *ReportRepository) ProfessionEarnings(ctx context.Context, from, to time.Time) ([]ports.ProfessionEarnings, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"paid":         true,
			"payment_date": bson.M{"$gte": from, "$lte": to},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionContracts,
			"localField":   "contract_id",
			"foreignField": "_id",
			"as":           "contract",
		}}},
		{{Key: "$unwind", Value: "$contract"}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionProfiles,
			"localField":   "contract.contractor_id",
			"foreignField": "_id",
			"as":           "contractor",
		}}},
		{{Key: "$unwind", Value: "$contractor"}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$contractor.profession",
			"total": bson.M{"$sum": "$price"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "total", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	cursor, err := r.jobs.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Profession string  `bson:"_id"`
		Total      float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	groups := make([]ports.ProfessionEarnings, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, ports.ProfessionEarnings{
			Profession:    row.Profession,
			TotalEarnings: row.Total,
		})
	}
	return groups, nil
}

// TopClients sums job prices paid inside [from, to], grouped by the paying
// client, largest first, capped at limit.
func (r *ReportRepository) TopClients(ctx context.Context, from, to time.Time, limit int) ([]ports.ClientPayments, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"paid":         true,
			"payment_date": bson.M{"$gte": from, "$lte": to},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionContracts,
			"localField":   "contract_id",
			"foreignField": "_id",
			"as":           "contract",
		}}},
		{{Key: "$unwind", Value: "$contract"}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$contract.client_id",
			"total": bson.M{"$sum": "$price"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "total", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionProfiles,
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "client",
		}}},
		{{Key: "$unwind", Value: "$client"}},
		{{Key: "$project", Value: bson.M{
			"_id":   1,
			"total": 1,
			"full_name": bson.M{"$concat": bson.A{
				"$client.first_name", " ", "$client.last_name",
			}},
		}}},
	}

	cursor, err := r.jobs.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID       string  `bson:"_id"`
		FullName string  `bson:"full_name"`
		Total    float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	groups := make([]ports.ClientPayments, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, ports.ClientPayments{
			ID:        row.ID,
			FullName:  row.FullName,
			TotalPaid: row.Total,
		})
	}
	return groups, nil
}
