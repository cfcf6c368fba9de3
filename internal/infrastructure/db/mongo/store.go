package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/gigwork/contracts-api/internal/core/domain"
	"github.com/gigwork/contracts-api/internal/core/ports"
)

const defaultTxTimeout = 5 * time.Second

// Store implements ports.Store on MongoDB session transactions. Snapshot read
// concern plus majority write concern give each scope a consistent view and
// all-or-nothing commits; conflicting concurrent writers abort with a
// transient error and are retried within the bounded timeout. A writer that
// cannot make it inside the timeout surfaces as domain.ErrBusy.
type Store struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
}

// NewStore creates a Store. timeout bounds the total wait for one
// transactional scope, retries included; <= 0 selects the default.
func NewStore(client *mongo.Client, db *mongo.Database, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = defaultTxTimeout
	}
	return &Store{client: client, db: db, timeout: timeout}
}

// InTransaction runs fn inside one session transaction. Any error from fn
// aborts the transaction; domain errors are returned unchanged, contention
// and timeouts map to domain.ErrBusy.
func (s *Store) InTransaction(ctx context.Context, fn func(ctx context.Context, tx ports.TxStore) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	txCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = sess.WithTransaction(txCtx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, &txStore{db: s.db})
	}, txnOpts)
	return mapTxError(err)
}

// mapTxError converts driver-level contention into the retryable domain
// error. Everything else, domain failures included, passes through.
func mapTxError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) {
		return domain.ErrBusy
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) &&
		(cmdErr.HasErrorLabel("TransientTransactionError") || cmdErr.HasErrorLabel("UnknownTransactionCommitResult")) {
		return domain.ErrBusy
	}
	return err
}

// txStore is the in-transaction view: every method runs on the session
// context handed to the transaction callback.
type txStore struct {
	db *mongo.Database
}

func (t *txStore) ProfileByID(ctx context.Context, id string) (*domain.Profile, error) {
	var p domain.Profile
	err := t.db.Collection(collectionProfiles).FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (t *txStore) ContractByID(ctx context.Context, id string) (*domain.Contract, error) {
	var c domain.Contract
	err := t.db.Collection(collectionContracts).FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrContractNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (t *txStore) JobByID(ctx context.Context, id string) (*domain.Job, error) {
	var j domain.Job
	err := t.db.Collection(collectionJobs).FindOne(ctx, bson.M{"_id": id}).Decode(&j)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrJobNotFound
		}
		return nil, err
	}
	return &j, nil
}

// MarkJobPaid flips paid with a guard on paid=false. A zero match means the
// job vanished or another transaction already paid it: both are ErrJobNotFound.
func (t *txStore) MarkJobPaid(ctx context.Context, jobID string, at time.Time) error {
	res, err := t.db.Collection(collectionJobs).UpdateOne(ctx,
		bson.M{"_id": jobID, "paid": false},
		bson.M{"$set": bson.M{"paid": true, "payment_date": at.UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

// DebitBalance decrements with a balance >= amount guard, so the non-negative
// invariant holds at commit even if the snapshot read was overtaken.
func (t *txStore) DebitBalance(ctx context.Context, profileID string, amount float64) error {
	res, err := t.db.Collection(collectionProfiles).UpdateOne(ctx,
		bson.M{"_id": profileID, "balance": bson.M{"$gte": amount}},
		bson.M{"$inc": bson.M{"balance": -amount}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrInsufficientFunds
	}
	return nil
}

func (t *txStore) CreditBalance(ctx context.Context, profileID string, amount float64) error {
	res, err := t.db.Collection(collectionProfiles).UpdateOne(ctx,
		bson.M{"_id": profileID},
		bson.M{"$inc": bson.M{"balance": amount}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

// UnpaidTotalForClient resolves the client's contract ids, then sums the
// prices of their unpaid jobs. Both queries run on the transaction snapshot.
func (t *txStore) UnpaidTotalForClient(ctx context.Context, clientID string) (float64, error) {
	ids, err := contractIDsForClient(ctx, t.db, clientID)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	cursor, err := t.db.Collection(collectionJobs).Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"contract_id": bson.M{"$in": ids}, "paid": false}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$price"}}}},
	})
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var result struct {
		Total float64 `bson:"total"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, err
		}
	}
	return result.Total, cursor.Err()
}

func contractIDsForClient(ctx context.Context, db *mongo.Database, clientID string) ([]string, error) {
	cursor, err := db.Collection(collectionContracts).Find(ctx,
		bson.M{"client_id": clientID},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
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
