package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"glowclinic/database/repository/memory"
	"glowclinic/models"
	"glowclinic/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mapCache mirrors RedisCache's JSON round trip in memory.
type mapCache struct {
	items   map[string][]byte
	hits    int
	failGet bool
}

func newMapCache() *mapCache { return &mapCache{items: map[string][]byte{}} }

func (c *mapCache) Get(_ context.Context, key string, dst any) (bool, error) {
	if c.failGet {
		return false, errors.New("connection refused")
	}
	raw, ok := c.items[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(raw, dst)
}

func (c *mapCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.items[key] = raw
	return nil
}

func (c *mapCache) DeletePrefix(_ context.Context, prefix string) error {
	for k := range c.items {
		if strings.HasPrefix(k, prefix) {
			delete(c.items, k)
		}
	}
	return nil
}

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	repo := store.Treatments()
	require.NoError(t, repo.UpsertCategory(ctx, &models.TreatmentCategory{ID: "c-facial", Name: "Facial", Slug: "facial", DisplayOrder: 1}))
	require.NoError(t, repo.UpsertCategory(ctx, &models.TreatmentCategory{ID: "c-laser", Name: "Laser", Slug: "laser", DisplayOrder: 2}))
	require.NoError(t, repo.UpsertCategory(ctx, &models.TreatmentCategory{ID: "c-body", Name: "Body", Slug: "body", DisplayOrder: 3}))
	require.NoError(t, repo.UpsertTreatment(ctx, &models.Treatment{ID: "t1", CategoryID: "c-facial", Name: "Glow Facial", Slug: "glow-facial", Price: 350000}))
	require.NoError(t, repo.UpsertTreatment(ctx, &models.Treatment{ID: "t2", CategoryID: "c-laser", Name: "Pico Laser", Slug: "pico-laser", Price: 1500000}))
	require.NoError(t, repo.UpsertTreatment(ctx, &models.Treatment{ID: "t3", CategoryID: "c-laser", Name: "Hair Removal", Slug: "hair-removal", Price: 750000}))
	return store
}

func TestListCatalogGroupsByCategory(t *testing.T) {
	svc := &DefaultCatalogService{Repo: seededStore(t).Treatments(), Logger: zap.NewNop()}

	catalog, err := svc.ListCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, catalog, 3)
	assert.Equal(t, "facial", catalog[0].Slug)
	assert.Len(t, catalog[0].Treatments, 1)
	assert.Len(t, catalog[1].Treatments, 2)
	assert.NotNil(t, catalog[2].Treatments)
	assert.Empty(t, catalog[2].Treatments)
}

func TestListTreatmentsByCategory(t *testing.T) {
	svc := &DefaultCatalogService{Repo: seededStore(t).Treatments(), Logger: zap.NewNop()}
	ctx := context.Background()

	all, err := svc.ListTreatments(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	laser, err := svc.ListTreatments(ctx, "laser")
	require.NoError(t, err)
	require.Len(t, laser, 2)
	for _, tr := range laser {
		require.NotNil(t, tr.Category)
		assert.Equal(t, "Laser", tr.Category.Name)
	}

	_, err = svc.ListTreatments(ctx, "dental")
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	tr, err := svc.GetTreatmentBySlug(ctx, "pico-laser")
	require.NoError(t, err)
	assert.Equal(t, int64(1500000), tr.Price)
	require.NotNil(t, tr.Category)
	assert.Equal(t, "laser", tr.Category.Slug)

	_, err = svc.GetTreatmentBySlug(ctx, "nope")
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestCatalogReadsThroughCache(t *testing.T) {
	store := seededStore(t)
	cache := newMapCache()
	svc := &DefaultCatalogService{Repo: store.Treatments(), Cache: cache, TTL: time.Minute, Logger: zap.NewNop()}
	ctx := context.Background()

	first, err := svc.ListTreatments(ctx, "laser")
	require.NoError(t, err)
	assert.Contains(t, cache.items, "catalog:treatments:laser")

	require.NoError(t, store.Treatments().UpsertTreatment(ctx, &models.Treatment{ID: "t4", CategoryID: "c-laser", Name: "Laser Toning", Slug: "laser-toning"}))

	second, err := svc.ListTreatments(ctx, "laser")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, len(first), len(second), "served from cache")

	require.NoError(t, svc.InvalidateCache(ctx))
	assert.Empty(t, cache.items)

	third, err := svc.ListTreatments(ctx, "laser")
	require.NoError(t, err)
	assert.Len(t, third, 3)
}

func TestCatalogSurvivesCacheFailure(t *testing.T) {
	cache := newMapCache()
	cache.failGet = true
	svc := &DefaultCatalogService{Repo: seededStore(t).Treatments(), Cache: cache, TTL: time.Minute, Logger: zap.NewNop()}

	categories, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, categories, 3)
}

func TestAssign(t *testing.T) {
	var out []string
	require.NoError(t, assign(&out, []string{"a"}))
	assert.Equal(t, []string{"a"}, out)

	assert.Error(t, assign(out, []string{"b"}))
	assert.Error(t, assign(&out, 42))
}
