package treatmentRepo

import (
	"context"

	"glowclinic/models"
)

// TreatmentRepository reads the treatment catalog. Lookups return (nil, nil) when
// nothing matches.
type TreatmentRepository interface {
	ListCategories(ctx context.Context) ([]models.TreatmentCategory, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.TreatmentCategory, error)
	// ListTreatments returns every treatment, or only those of categoryID when set.
	ListTreatments(ctx context.Context, categoryID string) ([]models.Treatment, error)
	GetByID(ctx context.Context, id string) (*models.Treatment, error)
	GetBySlug(ctx context.Context, slug string) (*models.Treatment, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.Treatment, error)

	// UpsertCategory and UpsertTreatment are keyed by slug and used by the seeder.
	UpsertCategory(ctx context.Context, category *models.TreatmentCategory) error
	UpsertTreatment(ctx context.Context, treatment *models.Treatment) error
}
