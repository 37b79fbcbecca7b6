package userRepo

import (
	"context"
	"fmt"
	"time"

	"glowclinic/database/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// userIndexes backs the lookups UserRepository performs. affiliateCode is sparse so
// users without a code do not collide; email is not unique because the identity
// provider owns it.
var userIndexes = []mongo.IndexModel{
	{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetName("users_id").SetUnique(true)},
	{Keys: bson.D{{Key: "externalId", Value: 1}}, Options: options.Index().SetName("users_external_id").SetUnique(true)},
	{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("users_email")},
	{Keys: bson.D{{Key: "affiliateCode", Value: 1}}, Options: options.Index().SetName("users_affiliate_code").SetUnique(true).SetSparse(true)},
}

func (r *MongoUserRepo) ensureIndexes() error {
	ctx, cancel := repository.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	names, err := r.coll.Indexes().CreateMany(ctx, userIndexes)
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	if len(names) != len(userIndexes) {
		return fmt.Errorf("created %d of %d user indexes", len(names), len(userIndexes))
	}
	return nil
}
