package treatmentRepo

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

// MongoTreatmentRepo implements TreatmentRepository over the
// treatment_categories and treatments collections.
type MongoTreatmentRepo struct {
	categories *mongo.Collection
	treatments *mongo.Collection
}

func NewMongoTreatmentRepo(db *mongo.Database) TreatmentRepository {
	repo := &MongoTreatmentRepo{
		categories: db.Collection("treatment_categories"),
		treatments: db.Collection("treatments"),
	}
	if err := repo.ensureIndexes(); err != nil {
		zap.L().Warn("treatments: failed to create indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoTreatmentRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	unique := options.Index().SetUnique(true)
	if _, err := r.categories.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
	}); err != nil {
		return fmt.Errorf("failed to create category indexes: %w", err)
	}
	if _, err := r.treatments.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "categoryId", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create treatment indexes: %w", err)
	}
	return nil
}

func (r *MongoTreatmentRepo) ListCategories(ctx context.Context) ([]models.TreatmentCategory, error) {
	ctx, cancel := repository.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "displayOrder", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := r.categories.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	categories := []models.TreatmentCategory{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return categories, nil
}

func (r *MongoTreatmentRepo) GetCategoryBySlug(ctx context.Context, slug string) (*models.TreatmentCategory, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	var category models.TreatmentCategory
	if err := r.categories.FindOne(ctx, bson.M{"slug": slug}).Decode(&category); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch category %s: %w", slug, err)
	}
	return &category, nil
}

func (r *MongoTreatmentRepo) ListTreatments(ctx context.Context, categoryID string) ([]models.Treatment, error) {
	ctx, cancel := repository.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if categoryID != "" {
		filter["categoryId"] = categoryID
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.treatments.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list treatments: %w", err)
	}
	treatments := []models.Treatment{}
	if err := cursor.All(ctx, &treatments); err != nil {
		return nil, fmt.Errorf("failed to decode treatments: %w", err)
	}
	return treatments, nil
}

func (r *MongoTreatmentRepo) findTreatment(ctx context.Context, filter bson.M) (*models.Treatment, error) {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	var t models.Treatment
	if err := r.treatments.FindOne(ctx, filter).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch treatment: %w", err)
	}
	return &t, nil
}

func (r *MongoTreatmentRepo) GetByID(ctx context.Context, id string) (*models.Treatment, error) {
	return r.findTreatment(ctx, bson.M{"id": id})
}

func (r *MongoTreatmentRepo) GetBySlug(ctx context.Context, slug string) (*models.Treatment, error) {
	return r.findTreatment(ctx, bson.M{"slug": slug})
}

func (r *MongoTreatmentRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*models.Treatment, error) {
	out := make(map[string]*models.Treatment, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	ctx, cancel := repository.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.treatments.Find(ctx, bson.M{"id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve treatments: %w", err)
	}
	var treatments []models.Treatment
	if err := cursor.All(ctx, &treatments); err != nil {
		return nil, fmt.Errorf("failed to decode treatments: %w", err)
	}
	for i := range treatments {
		out[treatments[i].ID] = &treatments[i]
	}
	return out, nil
}

func (r *MongoTreatmentRepo) UpsertCategory(ctx context.Context, category *models.TreatmentCategory) error {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"name":         category.Name,
			"description":  category.Description,
			"displayOrder": category.DisplayOrder,
		},
		"$setOnInsert": bson.M{"id": category.ID},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	if err := r.categories.FindOneAndUpdate(ctx, bson.M{"slug": category.Slug}, update, opts).Decode(category); err != nil {
		return repository.Wrap(err, "failed to upsert category "+category.Slug)
	}
	return nil
}

func (r *MongoTreatmentRepo) UpsertTreatment(ctx context.Context, treatment *models.Treatment) error {
	ctx, cancel := repository.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"categoryId":      treatment.CategoryID,
			"name":            treatment.Name,
			"description":     treatment.Description,
			"price":           treatment.Price,
			"durationMinutes": treatment.DurationMinutes,
			"benefits":        treatment.Benefits,
		},
		"$setOnInsert": bson.M{"id": treatment.ID},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	if err := r.treatments.FindOneAndUpdate(ctx, bson.M{"slug": treatment.Slug}, update, opts).Decode(treatment); err != nil {
		return repository.Wrap(err, "failed to upsert treatment "+treatment.Slug)
	}
	return nil
}
