package authz

import (
	"context"
	"testing"

	"glowclinic/database/repository/memory"
	"glowclinic/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAdmin(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Users().Create(ctx, &models.User{ID: "u1", ExternalID: "user_flagged", Email: "a@example.com", AffiliateCode: "AA111", IsAdmin: true}))
	require.NoError(t, store.Users().Create(ctx, &models.User{ID: "u2", ExternalID: "user_plain", Email: "b@example.com", AffiliateCode: "BB222"}))

	policy := NewPolicy([]string{" user_listed ", ""}, store.Users())

	cases := map[string]bool{
		"user_listed":  true,
		"user_flagged": true,
		"user_plain":   false,
		"user_unknown": false,
		"":             false,
	}
	for subject, want := range cases {
		got, err := policy.IsAdmin(ctx, subject)
		require.NoError(t, err)
		assert.Equal(t, want, got, subject)
	}

	listOnly := NewPolicy([]string{"user_listed"}, nil)
	ok, err := listOnly.IsAdmin(ctx, "user_flagged")
	require.NoError(t, err)
	assert.False(t, ok)
}
