package database

import (
	"context"
	"fmt"

	treatmentRepo "glowclinic/database/repository/treatment"
	"glowclinic/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type seedTreatment struct {
	Name            string
	Slug            string
	Description     string
	Price           int64
	DurationMinutes int
	Benefits        []string
}

type seedCategory struct {
	Name        string
	Slug        string
	Description string
	Treatments  []seedTreatment
}

var defaultCatalog = []seedCategory{
	{
		Name:        "Facial",
		Slug:        "facial",
		Description: "Cleansing and rejuvenating facial treatments.",
		Treatments: []seedTreatment{
			{"Signature Glow Facial", "signature-glow-facial", "Deep cleanse, exfoliation and hydrating mask.", 350000, 60, []string{"Brighter skin", "Deep hydration"}},
			{"Acne Clear Facial", "acne-clear-facial", "Extraction and calming treatment for acne-prone skin.", 400000, 75, []string{"Fewer breakouts", "Calmer skin"}},
		},
	},
	{
		Name:        "Laser",
		Slug:        "laser",
		Description: "Laser treatments for pigmentation and rejuvenation.",
		Treatments: []seedTreatment{
			{"Pico Laser Toning", "pico-laser-toning", "Picosecond laser for pigmentation and uneven tone.", 1500000, 45, []string{"Even tone", "Reduced spots"}},
			{"Laser Hair Removal", "laser-hair-removal", "Long-lasting hair reduction per area.", 750000, 30, []string{"Smooth skin", "Less ingrown hair"}},
		},
	},
	{
		Name:        "Injectables",
		Slug:        "injectables",
		Description: "Doctor-administered injectable treatments.",
		Treatments: []seedTreatment{
			{"Skin Booster", "skin-booster", "Hyaluronic acid micro-injections for hydration.", 2500000, 45, []string{"Plump skin", "Fine line reduction"}},
			{"Botox Forehead", "botox-forehead", "Neuromodulator for forehead lines.", 500000, 30, []string{"Smoother forehead"}},
		},
	},
}

// SeedCatalog upserts the default categories and treatments by slug, so it is safe
// to run on every start.
func SeedCatalog(ctx context.Context, repo treatmentRepo.TreatmentRepository) error {
	treatments := 0
	for i, sc := range defaultCatalog {
		category := &models.TreatmentCategory{
			ID:           uuid.New().String(),
			Name:         sc.Name,
			Slug:         sc.Slug,
			Description:  sc.Description,
			DisplayOrder: i + 1,
		}
		if err := repo.UpsertCategory(ctx, category); err != nil {
			return fmt.Errorf("seed category %s: %w", sc.Slug, err)
		}
		for _, st := range sc.Treatments {
			t := &models.Treatment{
				ID:              uuid.New().String(),
				CategoryID:      category.ID,
				Name:            st.Name,
				Slug:            st.Slug,
				Description:     st.Description,
				Price:           st.Price,
				DurationMinutes: st.DurationMinutes,
				Benefits:        st.Benefits,
			}
			if err := repo.UpsertTreatment(ctx, t); err != nil {
				return fmt.Errorf("seed treatment %s: %w", st.Slug, err)
			}
			treatments++
		}
	}
	zap.L().Info("Treatment catalog seeded",
		zap.Int("categories", len(defaultCatalog)),
		zap.Int("treatments", treatments))
	return nil
}
