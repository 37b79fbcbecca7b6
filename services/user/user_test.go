package user

import (
	"context"
	"strings"
	"testing"
	"time"

	"glowclinic/database/repository/memory"
	"glowclinic/models"
	"glowclinic/services/affiliate"
	"glowclinic/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newUserService(t *testing.T) (*DefaultUserService, *memory.Store, *clock) {
	t.Helper()
	store := memory.New()
	clk := &clock{now: time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)}
	codes := &affiliate.DefaultCodeService{
		Codes:        store.PreClaimCodes(),
		Users:        store.Users(),
		Reservations: store.Reservations(),
		Logger:       zap.NewNop(),
		Now:          clk.Now,
	}
	return &DefaultUserService{
		Repo:         store.Users(),
		Transactions: store.Transactions(),
		Reservations: store.Reservations(),
		Codes:        codes,
		Loyalty:      affiliate.DefaultLoyaltyPolicy(),
		Logger:       zap.NewNop(),
		Now:          clk.Now,
	}, store, clk
}

func TestSyncUserCreatesThenRefreshes(t *testing.T) {
	svc, _, _ := newUserService(t)
	ctx := context.Background()

	first, err := svc.SyncUser(ctx, models.Identity{Subject: "user_2abc", Email: "Sari@Example.com", FirstName: "Sari"}, models.SyncUserRequest{LastName: "Dewi"})
	require.NoError(t, err)
	assert.Equal(t, "sari@example.com", first.Email)
	assert.Equal(t, "Dewi", first.LastName)
	assert.True(t, strings.HasPrefix(first.AffiliateCode, "SA"), first.AffiliateCode)
	assert.Empty(t, first.AffiliateCodeHistory)

	second, err := svc.SyncUser(ctx, models.Identity{Subject: "user_2abc", Email: "sari.dewi@example.com"}, models.SyncUserRequest{})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.AffiliateCode, second.AffiliateCode)
	assert.Equal(t, "sari.dewi@example.com", second.Email)
	assert.Equal(t, "Sari", second.FirstName)

	found, err := svc.GetBySubject(ctx, "user_2abc")
	require.NoError(t, err)
	assert.Equal(t, "sari.dewi@example.com", found.Email)

	_, err = svc.GetBySubject(ctx, "user_unknown")
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	_, err = svc.SyncUser(ctx, models.Identity{}, models.SyncUserRequest{})
	assert.True(t, utils.IsKind(err, utils.KindUnauthorized))
}

func TestSyncUserClaimsAssignedCode(t *testing.T) {
	svc, store, clk := newUserService(t)
	ctx := context.Background()
	require.NoError(t, store.PreClaimCodes().Create(ctx, &models.PreClaimAffiliateCode{
		ID: "c1", Code: "VIP777", Status: models.CodeUnclaimed, CreatedAt: clk.now, UpdatedAt: clk.now,
	}))
	_, err := svc.Codes.ClaimCode(ctx, "c1", "maya@example.com")
	require.NoError(t, err)

	u, err := svc.SyncUser(ctx, models.Identity{Subject: "user_maya", Email: "maya@example.com", FirstName: "Maya"}, models.SyncUserRequest{})
	require.NoError(t, err)
	assert.Equal(t, "VIP777", u.AffiliateCode)

	stored, err := store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "VIP777", stored.AffiliateCode)

	code, err := store.PreClaimCodes().GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.CodeClaimed, code.Status)
}

func TestSyncExistingUserIgnoresAssignedCode(t *testing.T) {
	svc, store, clk := newUserService(t)
	ctx := context.Background()
	identity := models.Identity{Subject: "user_ana", Email: "ana@example.com", FirstName: "Ana"}
	first, err := svc.SyncUser(ctx, identity, models.SyncUserRequest{})
	require.NoError(t, err)

	require.NoError(t, store.PreClaimCodes().Create(ctx, &models.PreClaimAffiliateCode{
		ID: "c1", Code: "VIP777", Status: models.CodeUnclaimed, CreatedAt: clk.now, UpdatedAt: clk.now,
	}))
	_, err = svc.Codes.AssignCode(ctx, "c1", "ana@example.com")
	require.NoError(t, err)

	again, err := svc.SyncUser(ctx, identity, models.SyncUserRequest{})
	require.NoError(t, err)
	assert.Equal(t, first.AffiliateCode, again.AffiliateCode)
	assert.Empty(t, again.AffiliateCodeHistory)

	code, err := store.PreClaimCodes().GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.CodeUnclaimed, code.Status)
	require.NotNil(t, code.AssignedEmail)
	assert.Equal(t, "ana@example.com", *code.AssignedEmail)
}

func TestProfileLoyaltyLevel(t *testing.T) {
	svc, _, _ := newUserService(t)
	p := svc.Profile(context.Background(), &models.User{ID: "u1", LoyaltyPoints: 1200})
	assert.Equal(t, affiliate.LevelSilver, p.LoyaltyLevel)
	assert.Equal(t, "u1", p.ID)
}

func TestUpdateAffiliateCode(t *testing.T) {
	svc, store, clk := newUserService(t)
	ctx := context.Background()

	u, err := svc.SyncUser(ctx, models.Identity{Subject: "user_a", Email: "a@example.com", FirstName: "Ayu"}, models.SyncUserRequest{})
	require.NoError(t, err)
	original := u.AffiliateCode
	_, err = svc.SyncUser(ctx, models.Identity{Subject: "user_b", Email: "b@example.com", FirstName: "Budi"}, models.SyncUserRequest{})
	require.NoError(t, err)
	b, err := svc.GetBySubject(ctx, "user_b")
	require.NoError(t, err)
	require.NoError(t, store.PreClaimCodes().Create(ctx, &models.PreClaimAffiliateCode{
		ID: "c1", Code: "PRECLM", Status: models.CodeUnclaimed, CreatedAt: clk.now,
	}))

	info, err := svc.GetAffiliateCodeInfo(ctx, u)
	require.NoError(t, err)
	assert.True(t, info.CanUpdate)
	assert.Equal(t, 90, info.UpdateIntervalDays)

	t.Run("rejects malformed codes", func(t *testing.T) {
		for _, code := range []string{"ab", "WAY2LONGCODE99", "BAD-CODE"} {
			_, err := svc.UpdateAffiliateCode(ctx, u, code)
			assert.True(t, utils.IsKind(err, utils.KindBadRequest), code)
		}
	})

	t.Run("rejects codes held elsewhere", func(t *testing.T) {
		_, err := svc.UpdateAffiliateCode(ctx, u, b.AffiliateCode)
		assert.True(t, utils.IsKind(err, utils.KindConflict))
		_, err = svc.UpdateAffiliateCode(ctx, u, "preclm")
		assert.True(t, utils.IsKind(err, utils.KindConflict))
	})

	info, err = svc.UpdateAffiliateCode(ctx, u, "ayuglow")
	require.NoError(t, err)
	assert.Equal(t, "AYUGLOW", info.AffiliateCode)
	assert.Equal(t, []string{original}, info.History)
	assert.False(t, info.CanUpdate)
	require.NotNil(t, info.NextUpdateAt)
	assert.Equal(t, clk.now.Add(DefaultCodeUpdateInterval), *info.NextUpdateAt)
	assert.Equal(t, "AYUGLOW", u.AffiliateCode)

	_, err = svc.UpdateAffiliateCode(ctx, u, "AYUNEW1")
	assert.True(t, utils.IsKind(err, utils.KindBadRequest), "second change inside the window")

	_, err = svc.UpdateAffiliateCode(ctx, u, "AYUGLOW")
	assert.True(t, utils.IsKind(err, utils.KindBadRequest), "same code")

	clk.now = clk.now.Add(91 * 24 * time.Hour)

	_, err = svc.UpdateAffiliateCode(ctx, u, original)
	assert.True(t, utils.IsKind(err, utils.KindBadRequest), "history reuse")

	info, err = svc.UpdateAffiliateCode(ctx, u, "AYUNEW1")
	require.NoError(t, err)
	assert.Equal(t, []string{original, "AYUGLOW"}, info.History)
}

func TestTransferPlaceholderCanUpdateImmediately(t *testing.T) {
	svc, store, clk := newUserService(t)
	ctx := context.Background()
	recent := clk.now.Add(-time.Hour)
	u := &models.User{
		ID:                     "u1",
		ExternalID:             "user_1",
		Email:                  "x@example.com",
		AffiliateCode:          affiliate.TempCode("u1"),
		AffiliateCodeUpdatedAt: &recent,
	}
	require.NoError(t, store.Users().Create(ctx, u))

	info, err := svc.GetAffiliateCodeInfo(ctx, u)
	require.NoError(t, err)
	assert.True(t, info.CanUpdate)

	info, err = svc.UpdateAffiliateCode(ctx, u, "FRESH1")
	require.NoError(t, err)
	assert.Equal(t, "FRESH1", info.AffiliateCode)
}
