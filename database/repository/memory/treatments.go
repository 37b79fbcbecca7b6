package memory

import (
	"context"
	"sort"

	"glowclinic/models"
)

type treatmentStore struct{ s *Store }

func cloneTreatment(t *models.Treatment) *models.Treatment {
	c := *t
	c.Benefits = copyStrings(t.Benefits)
	c.Category = nil
	return &c
}

func (r *treatmentStore) ListCategories(_ context.Context) ([]models.TreatmentCategory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.TreatmentCategory, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *treatmentStore) GetCategoryBySlug(_ context.Context, slug string) (*models.TreatmentCategory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.categories {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *treatmentStore) ListTreatments(_ context.Context, categoryID string) ([]models.Treatment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Treatment{}
	for _, t := range r.s.treatments {
		if categoryID == "" || t.CategoryID == categoryID {
			out = append(out, *cloneTreatment(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *treatmentStore) GetByID(_ context.Context, id string) (*models.Treatment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if t, ok := r.s.treatments[id]; ok {
		return cloneTreatment(t), nil
	}
	return nil, nil
}

func (r *treatmentStore) GetBySlug(_ context.Context, slug string) (*models.Treatment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, t := range r.s.treatments {
		if t.Slug == slug {
			return cloneTreatment(t), nil
		}
	}
	return nil, nil
}

func (r *treatmentStore) GetByIDs(_ context.Context, ids []string) (map[string]*models.Treatment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]*models.Treatment, len(ids))
	for _, id := range ids {
		if t, ok := r.s.treatments[id]; ok {
			out[id] = cloneTreatment(t)
		}
	}
	return out, nil
}

func (r *treatmentStore) UpsertCategory(_ context.Context, category *models.TreatmentCategory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.categories {
		if c.Slug == category.Slug {
			category.ID = c.ID
			break
		}
	}
	cp := *category
	r.s.categories[cp.ID] = &cp
	return nil
}

func (r *treatmentStore) UpsertTreatment(_ context.Context, treatment *models.Treatment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.treatments {
		if t.Slug == treatment.Slug {
			treatment.ID = t.ID
			break
		}
	}
	r.s.treatments[treatment.ID] = cloneTreatment(treatment)
	return nil
}
