package catalog

import (
	"context"
	"time"

	treatmentRepo "glowclinic/database/repository/treatment"
	"glowclinic/models"
	"glowclinic/utils"

	"go.uber.org/zap"
)

const keyPrefix = "catalog:"

// CatalogService serves the read-only treatment catalog.
type CatalogService interface {
	ListCatalog(ctx context.Context) ([]models.CategoryWithTreatments, error)
	ListCategories(ctx context.Context) ([]models.TreatmentCategory, error)
	ListTreatments(ctx context.Context, categorySlug string) ([]models.Treatment, error)
	GetTreatmentBySlug(ctx context.Context, slug string) (*models.Treatment, error)
	InvalidateCache(ctx context.Context) error
}

// DefaultCatalogService reads through Cache when one is configured.
type DefaultCatalogService struct {
	Repo   treatmentRepo.TreatmentRepository
	Cache  Cache
	TTL    time.Duration
	Logger *zap.Logger
}

func (s *DefaultCatalogService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.L()
}

// cached fills dst from the cache, or from load on a miss. Cache failures are logged
// and never fail the request.
func (s *DefaultCatalogService) cached(ctx context.Context, key string, dst any, load func() (any, error)) error {
	if s.Cache != nil {
		hit, err := s.Cache.Get(ctx, keyPrefix+key, dst)
		if err != nil {
			s.logger().Warn("Catalog cache read failed", zap.String("key", key), zap.Error(err))
		} else if hit {
			return nil
		}
	}
	value, err := load()
	if err != nil {
		return err
	}
	if s.Cache != nil && s.TTL > 0 {
		if err := s.Cache.Set(ctx, keyPrefix+key, value, s.TTL); err != nil {
			s.logger().Warn("Catalog cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return assign(dst, value)
}

func (s *DefaultCatalogService) ListCategories(ctx context.Context) ([]models.TreatmentCategory, error) {
	var out []models.TreatmentCategory
	err := s.cached(ctx, "categories", &out, func() (any, error) {
		return s.Repo.ListCategories(ctx)
	})
	return out, err
}

func (s *DefaultCatalogService) ListCatalog(ctx context.Context) ([]models.CategoryWithTreatments, error) {
	var out []models.CategoryWithTreatments
	err := s.cached(ctx, "all", &out, func() (any, error) {
		categories, err := s.Repo.ListCategories(ctx)
		if err != nil {
			return nil, err
		}
		treatments, err := s.Repo.ListTreatments(ctx, "")
		if err != nil {
			return nil, err
		}
		byCategory := map[string][]models.Treatment{}
		for _, t := range treatments {
			byCategory[t.CategoryID] = append(byCategory[t.CategoryID], t)
		}
		result := make([]models.CategoryWithTreatments, 0, len(categories))
		for _, c := range categories {
			items := byCategory[c.ID]
			if items == nil {
				items = []models.Treatment{}
			}
			result = append(result, models.CategoryWithTreatments{TreatmentCategory: c, Treatments: items})
		}
		return result, nil
	})
	return out, err
}

func (s *DefaultCatalogService) ListTreatments(ctx context.Context, categorySlug string) ([]models.Treatment, error) {
	var out []models.Treatment
	err := s.cached(ctx, "treatments:"+categorySlug, &out, func() (any, error) {
		categoryID := ""
		if categorySlug != "" {
			category, err := s.Repo.GetCategoryBySlug(ctx, categorySlug)
			if err != nil {
				return nil, err
			}
			if category == nil {
				return nil, utils.NewNotFound("category not found")
			}
			categoryID = category.ID
		}
		treatments, err := s.Repo.ListTreatments(ctx, categoryID)
		if err != nil {
			return nil, err
		}
		return s.withCategories(ctx, treatments)
	})
	return out, err
}

func (s *DefaultCatalogService) GetTreatmentBySlug(ctx context.Context, slug string) (*models.Treatment, error) {
	var out models.Treatment
	err := s.cached(ctx, "treatment:"+slug, &out, func() (any, error) {
		t, err := s.Repo.GetBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, utils.NewNotFound("treatment not found")
		}
		joined, err := s.withCategories(ctx, []models.Treatment{*t})
		if err != nil {
			return nil, err
		}
		return joined[0], nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *DefaultCatalogService) withCategories(ctx context.Context, treatments []models.Treatment) ([]models.Treatment, error) {
	categories, err := s.Repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.TreatmentCategory, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}
	for i := range treatments {
		if c, ok := byID[treatments[i].CategoryID]; ok {
			c := c
			treatments[i].Category = &c
		}
	}
	return treatments, nil
}

func (s *DefaultCatalogService) InvalidateCache(ctx context.Context) error {
	if s.Cache == nil {
		return nil
	}
	return s.Cache.DeletePrefix(ctx, keyPrefix)
}
