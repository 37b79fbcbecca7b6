package transactionRepo

import (
	"context"
	"fmt"
	"time"

	"glowclinic/database/repository"
	"glowclinic/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoTransactionRepo implements TransactionRepository using MongoDB.
type MongoTransactionRepo struct {
	coll *mongo.Collection
}

func NewMongoTransactionRepo(db *mongo.Database) TransactionRepository {
	repo := &MongoTransactionRepo{coll: db.Collection("transactions")}
	if err := repo.ensureIndexes(); err != nil {
		zap.L().Warn("transactions: failed to create indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoTransactionRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "reservationId", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoTransactionRepo) Create(ctx context.Context, tx *models.Transaction) error {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, tx)
	return repository.Wrap(err, "failed to append transaction")
}

func (r *MongoTransactionRepo) list(ctx context.Context, filter bson.M) ([]models.Transaction, error) {
	ctx, cancel := repository.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	out := []models.Transaction{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}
	return out, nil
}

func (r *MongoTransactionRepo) ListByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	return r.list(ctx, bson.M{"userId": userID})
}

func (r *MongoTransactionRepo) ListByReservation(ctx context.Context, reservationID string) ([]models.Transaction, error) {
	return r.list(ctx, bson.M{"reservationId": reservationID})
}
