package userRepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"glowclinic/database/repository"
	"glowclinic/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MongoUserRepo implements UserRepository using MongoDB.
type MongoUserRepo struct {
	coll *mongo.Collection
}

// NewMongoUserRepo creates a new instance of UserRepository using MongoDB.
func NewMongoUserRepo(db *mongo.Database) UserRepository {
	repo := &MongoUserRepo{coll: db.Collection("users")}

	if err := repo.ensureIndexes(); err != nil {
		zap.L().Warn("users: failed to create indexes", zap.Error(err))
	}
	return repo
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *MongoUserRepo) findOne(ctx context.Context, filter bson.M, what string) (*models.User, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	var user models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch user by %s: %w", what, err)
	}
	return &user, nil
}

func (r *MongoUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"id": id}, "id")
}

func (r *MongoUserRepo) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"externalId": externalID}, "externalId")
}

func (r *MongoUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": normalizeEmail(email)}, "email")
}

func (r *MongoUserRepo) GetByAffiliateCode(ctx context.Context, code string) (*models.User, error) {
	if code == "" {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"affiliateCode": code}, "affiliateCode")
}

func (r *MongoUserRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	out := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	ctx, cancel := repository.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var u models.User
		if err := cursor.Decode(&u); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		out[u.ID] = &u
	}
	return out, cursor.Err()
}

func (r *MongoUserRepo) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	user.Email = normalizeEmail(user.Email)
	if user.AffiliateCodeHistory == nil {
		user.AffiliateCodeHistory = []string{}
	}
	_, err := r.coll.InsertOne(ctx, user)
	return repository.Wrap(err, "failed to create user")
}

func (r *MongoUserRepo) UpdateProfile(ctx context.Context, id, email, firstName, lastName string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"email":     normalizeEmail(email),
		"firstName": firstName,
		"lastName":  lastName,
		"updatedAt": time.Now(),
	}}, "failed to update user profile")
}

func (r *MongoUserRepo) updateByID(ctx context.Context, id string, update bson.M, op string) error {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return repository.Wrap(err, op)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: user %s not found", op, id)
	}
	return nil
}
