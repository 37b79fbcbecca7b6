package userRepo

import (
	"context"
	"time"

	"glowclinic/database/repository"

	"go.mongodb.org/mongo-driver/bson"
)

func (r *MongoUserRepo) SetAffiliateCode(ctx context.Context, id, code string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"affiliateCode": code,
		"updatedAt":     time.Now(),
	}}, "failed to set affiliate code")
}

func (r *MongoUserRepo) ChangeAffiliateCode(ctx context.Context, id, oldCode, newCode string, at time.Time) (bool, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	filter := bson.M{"id": id, "affiliateCode": oldCode}
	update := bson.M{
		"$set": bson.M{
			"affiliateCode":          newCode,
			"affiliateCodeUpdatedAt": at,
			"updatedAt":              at,
		},
		"$push": bson.M{"affiliateCodeHistory": oldCode},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, repository.Wrap(err, "failed to change affiliate code")
	}
	return res.ModifiedCount == 1, nil
}

func (r *MongoUserRepo) AddLoyaltyPoints(ctx context.Context, id string, points int) error {
	return r.updateByID(ctx, id, bson.M{
		"$inc": bson.M{"loyaltyPoints": points},
		"$set": bson.M{"updatedAt": time.Now()},
	}, "failed to add loyalty points")
}

func (r *MongoUserRepo) CreditReferral(ctx context.Context, id string, amount float64, points int) error {
	return r.updateByID(ctx, id, bson.M{
		"$inc": bson.M{
			"totalEarnings":  amount,
			"totalReferrals": 1,
			"points":         points,
		},
		"$set": bson.M{"updatedAt": time.Now()},
	}, "failed to credit referral")
}

// DeductEarnings guards the decrement with the balance check in the same filter, so two
// concurrent requests cannot overdraw.
func (r *MongoUserRepo) DeductEarnings(ctx context.Context, id string, amount float64) (bool, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	filter := bson.M{"id": id, "totalEarnings": bson.M{"$gte": amount}}
	update := bson.M{
		"$inc": bson.M{"totalEarnings": -amount},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, repository.Wrap(err, "failed to deduct earnings")
	}
	return res.ModifiedCount == 1, nil
}

func (r *MongoUserRepo) RefundEarnings(ctx context.Context, id string, amount float64) error {
	return r.updateByID(ctx, id, bson.M{
		"$inc": bson.M{"totalEarnings": amount},
		"$set": bson.M{"updatedAt": time.Now()},
	}, "failed to refund earnings")
}
