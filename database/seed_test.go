package database

import (
	"context"
	"testing"

	"glowclinic/database/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCatalogIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := memory.New().Treatments()

	require.NoError(t, SeedCatalog(ctx, repo))
	require.NoError(t, SeedCatalog(ctx, repo))

	categories, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, len(defaultCatalog))
	assert.Equal(t, "facial", categories[0].Slug)

	treatments, err := repo.ListTreatments(ctx, "")
	require.NoError(t, err)
	assert.Len(t, treatments, 6)

	booster, err := repo.GetBySlug(ctx, "skin-booster")
	require.NoError(t, err)
	require.NotNil(t, booster)
	injectables, err := repo.GetCategoryBySlug(ctx, "injectables")
	require.NoError(t, err)
	assert.Equal(t, injectables.ID, booster.CategoryID)
}
