package withdrawalRepo

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

// MongoBankAccountRepo implements BankAccountRepository using MongoDB.
type MongoBankAccountRepo struct {
	coll *mongo.Collection
}

func NewMongoBankAccountRepo(db *mongo.Database) BankAccountRepository {
	repo := &MongoBankAccountRepo{coll: db.Collection("bank_accounts")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{
			{Key: "userId", Value: 1},
			{Key: "type", Value: 1},
			{Key: "bankName", Value: 1},
			{Key: "accountNumber", Value: 1},
		}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		zap.L().Warn("bank accounts: failed to create indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoBankAccountRepo) FindOrCreate(ctx context.Context, acct *models.BankAccount) (*models.BankAccount, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	filter := bson.M{
		"userId":        acct.UserID,
		"type":          acct.Type,
		"bankName":      acct.BankName,
		"accountNumber": acct.AccountNumber,
	}
	update := bson.M{"$setOnInsert": bson.M{
		"id":                acct.ID,
		"accountHolderName": acct.AccountHolderName,
		"createdAt":         acct.CreatedAt,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var out models.BankAccount
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return nil, repository.Wrap(err, "failed to find or create bank account")
	}
	return &out, nil
}

func (r *MongoBankAccountRepo) ListByUser(ctx context.Context, userID string) ([]models.BankAccount, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list bank accounts: %w", err)
	}
	out := []models.BankAccount{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode bank accounts: %w", err)
	}
	return out, nil
}

func (r *MongoBankAccountRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*models.BankAccount, error) {
	out := make(map[string]*models.BankAccount, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve bank accounts: %w", err)
	}
	var accounts []models.BankAccount
	if err := cursor.All(ctx, &accounts); err != nil {
		return nil, fmt.Errorf("failed to decode bank accounts: %w", err)
	}
	for i := range accounts {
		out[accounts[i].ID] = &accounts[i]
	}
	return out, nil
}

// MongoWithdrawalRepo implements WithdrawalRepository using MongoDB.
type MongoWithdrawalRepo struct {
	coll *mongo.Collection
}

func NewMongoWithdrawalRepo(db *mongo.Database) WithdrawalRepository {
	repo := &MongoWithdrawalRepo{coll: db.Collection("withdrawals")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "requestDate", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "requestDate", Value: -1}}},
	})
	if err != nil {
		zap.L().Warn("withdrawals: failed to create indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoWithdrawalRepo) Create(ctx context.Context, w *models.Withdrawal) error {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, w)
	return repository.Wrap(err, "failed to create withdrawal")
}

func (r *MongoWithdrawalRepo) GetByID(ctx context.Context, id string) (*models.Withdrawal, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	var w models.Withdrawal
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&w); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch withdrawal %s: %w", id, err)
	}
	return &w, nil
}

func (r *MongoWithdrawalRepo) list(ctx context.Context, filter bson.M) ([]models.Withdrawal, error) {
	ctx, cancel := repository.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "requestDate", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query withdrawals: %w", err)
	}
	out := []models.Withdrawal{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode withdrawals: %w", err)
	}
	return out, nil
}

func (r *MongoWithdrawalRepo) ListByUser(ctx context.Context, userID string) ([]models.Withdrawal, error) {
	return r.list(ctx, bson.M{"userId": userID})
}

func (r *MongoWithdrawalRepo) List(ctx context.Context, status string) ([]models.Withdrawal, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return r.list(ctx, filter)
}

func (r *MongoWithdrawalRepo) Transition(ctx context.Context, id, from, to, adminNotes, processedBy string, at time.Time) (bool, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":        to,
		"adminNotes":    adminNotes,
		"processedBy":   processedBy,
		"processedDate": at,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id, "status": from}, update)
	if err != nil {
		return false, fmt.Errorf("failed to update withdrawal %s: %w", id, err)
	}
	return res.ModifiedCount == 1, nil
}
