package reservationRepo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"glowclinic/database/repository"
	"glowclinic/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoReservationRepo implements ReservationRepository using MongoDB.
type MongoReservationRepo struct {
	coll *mongo.Collection
}

func NewMongoReservationRepo(db *mongo.Database) ReservationRepository {
	repo := &MongoReservationRepo{coll: db.Collection("reservations")}
	if err := repo.ensureIndexes(); err != nil {
		zap.L().Warn("reservations: failed to create indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoReservationRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "referrerId", Value: 1}}},
		{Keys: bson.D{{Key: "referredBy", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoReservationRepo) Create(ctx context.Context, reservation *models.Reservation) error {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, reservation)
	return repository.Wrap(err, "failed to create reservation")
}

func (r *MongoReservationRepo) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	var res models.Reservation
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&res); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch reservation %s: %w", id, err)
	}
	return &res, nil
}

func (r *MongoReservationRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Reservation, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	out := []models.Reservation{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}
	return out, nil
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

func (r *MongoReservationRepo) ListByUser(ctx context.Context, userID string) ([]models.Reservation, error) {
	ctx, cancel := repository.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return r.find(ctx, bson.M{"userId": userID}, options.Find().SetSort(newestFirst))
}

func (r *MongoReservationRepo) ListByReferrer(ctx context.Context, referrerID string) ([]models.Reservation, error) {
	ctx, cancel := repository.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return r.find(ctx, bson.M{"referrerId": referrerID}, options.Find().SetSort(newestFirst))
}

func (r *MongoReservationRepo) List(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, int64, error) {
	ctx, cancel := repository.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"patientName": pattern},
			bson.M{"patientEmail": pattern},
			bson.M{"patientPhone": pattern},
			bson.M{"referredBy": pattern},
		}
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	opts := options.Find().SetSort(newestFirst)
	if filter.PageSize > 0 {
		opts.SetLimit(int64(filter.PageSize))
		if filter.Page > 1 {
			opts.SetSkip(int64((filter.Page - 1) * filter.PageSize))
		}
	}
	items, err := r.find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *MongoReservationRepo) Update(ctx context.Context, res *models.Reservation) error {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"treatmentId":      res.TreatmentID,
		"patientName":      res.PatientName,
		"patientEmail":     res.PatientEmail,
		"patientPhone":     res.PatientPhone,
		"reservationDate":  res.ReservationDate,
		"reservationTime":  res.ReservationTime,
		"notes":            res.Notes,
		"referredBy":       res.ReferredBy,
		"referrerId":       res.ReferrerID,
		"originalPrice":    res.OriginalPrice,
		"finalPrice":       res.FinalPrice,
		"commissionAmount": res.CommissionAmount,
		"status":           res.Status,
		"completedAt":      res.CompletedAt,
		"updatedAt":        res.UpdatedAt,
	}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": res.ID}, update)
	if err != nil {
		return repository.Wrap(err, "failed to update reservation")
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("failed to update reservation: %s not found", res.ID)
	}
	return nil
}

func (r *MongoReservationRepo) MarkCommissionPaid(ctx context.Context, id string) (bool, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	filter := bson.M{
		"id":             id,
		"status":         models.ReservationCompleted,
		"commissionPaid": false,
		"referrerId":     bson.M{"$nin": bson.A{nil, ""}},
	}
	update := bson.M{"$set": bson.M{"commissionPaid": true, "updatedAt": time.Now()}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to mark commission paid: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *MongoReservationRepo) BackfillReferrer(ctx context.Context, code, referrerID string) (int64, error) {
	ctx, cancel := repository.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"referredBy": code, "referrerId": nil}
	update := bson.M{"$set": bson.M{"referrerId": referrerID, "updatedAt": time.Now()}}
	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to backfill referrer for %s: %w", code, err)
	}
	return res.ModifiedCount, nil
}

func (r *MongoReservationRepo) RepointReferrer(ctx context.Context, code string, referrerID *string) (int64, error) {
	ctx, cancel := repository.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"referrerId": referrerID, "updatedAt": time.Now()}}
	res, err := r.coll.UpdateMany(ctx, bson.M{"referredBy": code}, update)
	if err != nil {
		return 0, fmt.Errorf("failed to repoint referrer for %s: %w", code, err)
	}
	return res.ModifiedCount, nil
}

func (r *MongoReservationRepo) CountByReferralCodes(ctx context.Context, codes []string) (map[string]int64, error) {
	out := make(map[string]int64, len(codes))
	if len(codes) == 0 {
		return out, nil
	}
	ctx, cancel := repository.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"referredBy": bson.M{"$in": codes}}}},
		{{Key: "$group", Value: bson.M{"_id": "$referredBy", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count reservations per code: %w", err)
	}
	var rows []struct {
		Code  string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode reservation counts: %w", err)
	}
	for _, row := range rows {
		out[row.Code] = row.Count
	}
	return out, nil
}
