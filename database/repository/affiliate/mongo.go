package affiliateRepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"glowclinic/database/repository"
	"glowclinic/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoPreClaimCodeRepo implements PreClaimCodeRepository using MongoDB.
type MongoPreClaimCodeRepo struct {
	coll *mongo.Collection
}

func NewMongoPreClaimCodeRepo(db *mongo.Database) PreClaimCodeRepository {
	repo := &MongoPreClaimCodeRepo{coll: db.Collection("pre_claim_affiliate_codes")}
	if err := repo.ensureIndexes(); err != nil {
		zap.L().Warn("pre-claim codes: failed to create indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoPreClaimCodeRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "assignedEmail", Value: 1}, {Key: "status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoPreClaimCodeRepo) Create(ctx context.Context, code *models.PreClaimAffiliateCode) error {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, code)
	return repository.Wrap(err, "failed to create pre-claim code")
}

func (r *MongoPreClaimCodeRepo) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*models.PreClaimAffiliateCode, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	var code models.PreClaimAffiliateCode
	if err := r.coll.FindOne(ctx, filter, opts...).Decode(&code); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch pre-claim code: %w", err)
	}
	return &code, nil
}

func (r *MongoPreClaimCodeRepo) GetByID(ctx context.Context, id string) (*models.PreClaimAffiliateCode, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoPreClaimCodeRepo) GetByCode(ctx context.Context, code string) (*models.PreClaimAffiliateCode, error) {
	return r.findOne(ctx, bson.M{"code": code})
}

func (r *MongoPreClaimCodeRepo) FindAssignedUnclaimed(ctx context.Context, email string) (*models.PreClaimAffiliateCode, error) {
	filter := bson.M{"assignedEmail": strings.ToLower(email), "status": models.CodeUnclaimed}
	return r.findOne(ctx, filter, options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}

func (r *MongoPreClaimCodeRepo) List(ctx context.Context, status string) ([]models.PreClaimAffiliateCode, error) {
	ctx, cancel := repository.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list pre-claim codes: %w", err)
	}
	out := []models.PreClaimAffiliateCode{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode pre-claim codes: %w", err)
	}
	return out, nil
}

func (r *MongoPreClaimCodeRepo) conditionalUpdate(ctx context.Context, filter, set bson.M, op string) (bool, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	set["updatedAt"] = time.Now()
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *MongoPreClaimCodeRepo) Assign(ctx context.Context, id, email string) (bool, error) {
	filter := bson.M{"id": id, "status": models.CodeUnclaimed, "assignedEmail": nil}
	return r.conditionalUpdate(ctx, filter, bson.M{"assignedEmail": strings.ToLower(email)}, "failed to assign code")
}

func (r *MongoPreClaimCodeRepo) SetAssignedEmail(ctx context.Context, id, email string) (bool, error) {
	filter := bson.M{"id": id, "status": models.CodeUnclaimed}
	return r.conditionalUpdate(ctx, filter, bson.M{"assignedEmail": strings.ToLower(email)}, "failed to set assigned email")
}

func (r *MongoPreClaimCodeRepo) MarkClaimed(ctx context.Context, id, userID, email string, at time.Time) (bool, error) {
	filter := bson.M{"id": id, "status": models.CodeUnclaimed}
	return r.conditionalUpdate(ctx, filter, bson.M{
		"status":        models.CodeClaimed,
		"claimedBy":     userID,
		"claimedAt":     at,
		"assignedEmail": strings.ToLower(email),
	}, "failed to mark code claimed")
}

func (r *MongoPreClaimCodeRepo) UpdateClaimant(ctx context.Context, id, userID, email string, at time.Time) (bool, error) {
	filter := bson.M{"id": id, "status": models.CodeClaimed}
	return r.conditionalUpdate(ctx, filter, bson.M{
		"claimedBy":     userID,
		"claimedAt":     at,
		"assignedEmail": strings.ToLower(email),
	}, "failed to update claimant")
}

func (r *MongoPreClaimCodeRepo) Release(ctx context.Context, id, email string) (bool, error) {
	filter := bson.M{"id": id, "status": models.CodeClaimed}
	return r.conditionalUpdate(ctx, filter, bson.M{
		"status":        models.CodeUnclaimed,
		"claimedBy":     nil,
		"claimedAt":     nil,
		"assignedEmail": strings.ToLower(email),
	}, "failed to release code")
}

func (r *MongoPreClaimCodeRepo) DeleteUnclaimed(ctx context.Context, id string) (bool, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id, "status": models.CodeUnclaimed})
	if err != nil {
		return false, fmt.Errorf("failed to delete pre-claim code: %w", err)
	}
	return res.DeletedCount == 1, nil
}
