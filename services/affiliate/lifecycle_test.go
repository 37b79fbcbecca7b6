package affiliate

import (
	"context"
	"testing"
	"time"

	"glowclinic/database/repository/memory"
	"glowclinic/models"
	"glowclinic/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newCodeService(t *testing.T) (*DefaultCodeService, *memory.Store) {
	t.Helper()
	store := memory.New()
	return &DefaultCodeService{
		Codes:        store.PreClaimCodes(),
		Users:        store.Users(),
		Reservations: store.Reservations(),
		Logger:       zap.NewNop(),
		Now:          func() time.Time { return fixedNow },
	}, store
}

func seedUser(t *testing.T, store *memory.Store, id, email, code string) *models.User {
	t.Helper()
	u := &models.User{
		ID:            id,
		ExternalID:    "ext_" + id,
		Email:         email,
		FirstName:     "Test",
		AffiliateCode: code,
		CreatedAt:     fixedNow,
		UpdatedAt:     fixedNow,
	}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}

func seedCode(t *testing.T, store *memory.Store, id, code string) {
	t.Helper()
	require.NoError(t, store.PreClaimCodes().Create(context.Background(), &models.PreClaimAffiliateCode{
		ID:        id,
		Code:      code,
		Status:    models.CodeUnclaimed,
		CreatedAt: fixedNow,
		UpdatedAt: fixedNow,
	}))
}

func seedReferral(t *testing.T, store *memory.Store, id, code string, referrerID *string) {
	t.Helper()
	require.NoError(t, store.Reservations().Create(context.Background(), &models.Reservation{
		ID:          id,
		UserID:      "customer",
		TreatmentID: "t1",
		ReferredBy:  &code,
		ReferrerID:  referrerID,
		Status:      models.ReservationPending,
		CreatedAt:   fixedNow,
	}))
}

func TestGenerateCodes(t *testing.T) {
	svc, store := newCodeService(t)
	ctx := context.Background()

	codes, err := svc.GenerateCodes(ctx, 5, "spring campaign", "admin_1")
	require.NoError(t, err)
	require.Len(t, codes, 5)

	seen := map[string]bool{}
	for _, c := range codes {
		assert.False(t, seen[c.Code], "duplicate code %s", c.Code)
		seen[c.Code] = true
		assert.Equal(t, models.CodeUnclaimed, c.Status)
		assert.Equal(t, "admin_1", c.CreatedBy)
	}

	listed, err := store.PreClaimCodes().List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, listed, 5)

	for _, n := range []int{0, 101} {
		_, err := svc.GenerateCodes(ctx, n, "", "admin_1")
		assert.True(t, utils.IsKind(err, utils.KindBadRequest), "count %d", n)
	}
}

func TestAssignCode(t *testing.T) {
	svc, _ := newCodeService(t)
	ctx := context.Background()
	codes, err := svc.GenerateCodes(ctx, 1, "", "admin")
	require.NoError(t, err)

	assigned, err := svc.AssignCode(ctx, codes[0].ID, "Dina@Example.com")
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedEmail)
	assert.Equal(t, "dina@example.com", *assigned.AssignedEmail)

	_, err = svc.AssignCode(ctx, codes[0].ID, "other@example.com")
	assert.True(t, utils.IsKind(err, utils.KindConflict))

	_, err = svc.AssignCode(ctx, "missing", "other@example.com")
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	_, err = svc.AssignCode(ctx, codes[0].ID, "not-an-email")
	assert.True(t, utils.IsKind(err, utils.KindBadRequest))
}

func TestClaimCodeDefersUntilSignIn(t *testing.T) {
	svc, store := newCodeService(t)
	ctx := context.Background()
	seedCode(t, store, "c1", "ABC123")

	result, err := svc.ClaimCode(ctx, "c1", "a@x.com")
	require.NoError(t, err)
	assert.True(t, result.Deferred)
	assert.Equal(t, models.CodeUnclaimed, result.Code.Status)
	require.NotNil(t, result.Code.AssignedEmail)
	assert.Equal(t, "a@x.com", *result.Code.AssignedEmail)

	// The user signs up later and the sync path finishes the claim.
	u := seedUser(t, store, "user-a", "a@x.com", "TEAAA")
	claimed, err := svc.ClaimAssignedCode(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, "ABC123", claimed)
	assert.Equal(t, "ABC123", u.AffiliateCode)

	code, err := store.PreClaimCodes().GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.CodeClaimed, code.Status)
	require.NotNil(t, code.ClaimedBy)
	assert.Equal(t, "user-a", *code.ClaimedBy)

	none, err := svc.ClaimAssignedCode(ctx, u)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestClaimCodeBackfillsReservations(t *testing.T) {
	svc, store := newCodeService(t)
	ctx := context.Background()
	seedCode(t, store, "c1", "ABC123")
	_, err := svc.AssignCode(ctx, "c1", "a@x.com")
	require.NoError(t, err)

	other := "someone-else"
	seedReferral(t, store, "r1", "ABC123", nil)
	seedReferral(t, store, "r2", "ABC123", nil)
	seedReferral(t, store, "r3", "ABC123", &other)
	seedReferral(t, store, "r4", "ZZZ999", nil)
	seedUser(t, store, "user-u", "a@x.com", "UXQ12")

	result, err := svc.ClaimCode(ctx, "c1", "a@x.com")
	require.NoError(t, err)
	assert.False(t, result.Deferred)
	assert.Equal(t, "user-u", result.UserID)
	assert.EqualValues(t, 2, result.ReservationsUpdated)
	assert.Equal(t, models.CodeClaimed, result.Code.Status)

	u, err := store.Users().GetByID(ctx, "user-u")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", u.AffiliateCode)

	for _, id := range []string{"r1", "r2"} {
		r, err := store.Reservations().GetByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, r.ReferrerID)
		assert.Equal(t, "user-u", *r.ReferrerID)
	}
	r3, _ := store.Reservations().GetByID(ctx, "r3")
	assert.Equal(t, other, *r3.ReferrerID)
	r4, _ := store.Reservations().GetByID(ctx, "r4")
	assert.Nil(t, r4.ReferrerID)

	_, err = svc.ClaimCode(ctx, "c1", "a@x.com")
	assert.True(t, utils.IsKind(err, utils.KindConflict))
}

func TestTransferCodeToUnregisteredEmail(t *testing.T) {
	svc, store := newCodeService(t)
	ctx := context.Background()
	seedCode(t, store, "c1", "ABC123")
	owner := seedUser(t, store, "owner-0123456789", "o@x.com", "OWN12")
	_, err := svc.ClaimCode(ctx, "c1", owner.Email)
	require.NoError(t, err)
	ownerID := owner.ID
	seedReferral(t, store, "r1", "ABC123", &ownerID)

	result, err := svc.TransferCode(ctx, "c1", "new@x.com")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, result.PreviousOwnerID)
	assert.Empty(t, result.NewOwnerID)
	assert.EqualValues(t, 1, result.ReservationsUpdated)
	assert.Equal(t, models.CodeUnclaimed, result.Code.Status)
	assert.Nil(t, result.Code.ClaimedBy)
	assert.Equal(t, "new@x.com", *result.Code.AssignedEmail)

	o, err := store.Users().GetByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "TEMP_owner-01", o.AffiliateCode)

	r, err := store.Reservations().GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Nil(t, r.ReferrerID)
	assert.Equal(t, "ABC123", *r.ReferredBy)
}

func TestTransferCodeToExistingUser(t *testing.T) {
	svc, store := newCodeService(t)
	ctx := context.Background()
	seedCode(t, store, "c1", "ABC123")
	owner := seedUser(t, store, "owner-1", "o@x.com", "OWN12")
	next := seedUser(t, store, "next-1", "n@x.com", "NEX12")
	_, err := svc.ClaimCode(ctx, "c1", owner.Email)
	require.NoError(t, err)
	ownerID := owner.ID
	seedReferral(t, store, "r1", "ABC123", &ownerID)

	result, err := svc.TransferCode(ctx, "c1", "n@x.com")
	require.NoError(t, err)
	assert.Equal(t, next.ID, result.NewOwnerID)
	assert.Equal(t, models.CodeClaimed, result.Code.Status)
	assert.Equal(t, next.ID, *result.Code.ClaimedBy)

	n, _ := store.Users().GetByID(ctx, next.ID)
	assert.Equal(t, "ABC123", n.AffiliateCode)
	o, _ := store.Users().GetByID(ctx, owner.ID)
	assert.True(t, IsTempCode(o.AffiliateCode))
	r, _ := store.Reservations().GetByID(ctx, "r1")
	assert.Equal(t, next.ID, *r.ReferrerID)

	_, err = svc.TransferCode(ctx, "c1", "n@x.com")
	assert.True(t, utils.IsKind(err, utils.KindBadRequest))
}

func TestCodeNeverReturnsToPreviousHolder(t *testing.T) {
	svc, store := newCodeService(t)
	ctx := context.Background()
	seedCode(t, store, "c1", "ABC234")
	u := seedUser(t, store, "user-u", "u@x.com", "UQQ12")

	_, err := svc.ClaimCode(ctx, "c1", u.Email)
	require.NoError(t, err)
	changed, err := store.Users().ChangeAffiliateCode(ctx, u.ID, "ABC234", "MYCODE", fixedNow)
	require.NoError(t, err)
	require.True(t, changed)

	_, err = svc.TransferCode(ctx, "c1", u.Email)
	assert.True(t, utils.IsKind(err, utils.KindConflict), "transfer back to previous holder")

	got, err := store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "MYCODE", got.AffiliateCode)
	assert.Equal(t, []string{"ABC234"}, got.AffiliateCodeHistory)

	_, err = svc.TransferCode(ctx, "c1", "gone@x.com")
	require.NoError(t, err)
	_, err = svc.ClaimCode(ctx, "c1", u.Email)
	assert.True(t, utils.IsKind(err, utils.KindConflict), "claim by previous holder")

	code, err := store.PreClaimCodes().GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.CodeUnclaimed, code.Status)
	got, err = store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "MYCODE", got.AffiliateCode)
}

func TestTransferRequiresClaimedCode(t *testing.T) {
	svc, store := newCodeService(t)
	seedCode(t, store, "c1", "ABC123")
	_, err := svc.TransferCode(context.Background(), "c1", "n@x.com")
	assert.True(t, utils.IsKind(err, utils.KindBadRequest))
}

func TestDeleteCode(t *testing.T) {
	svc, store := newCodeService(t)
	ctx := context.Background()
	seedCode(t, store, "free", "FREE22")
	seedCode(t, store, "used", "USED22")
	seedCode(t, store, "owned", "OWND22")
	seedReferral(t, store, "r1", "USED22", nil)
	seedUser(t, store, "u1", "u@x.com", "UUU12")
	_, err := svc.ClaimCode(ctx, "owned", "u@x.com")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCode(ctx, "free"))
	gone, _ := store.PreClaimCodes().GetByID(ctx, "free")
	assert.Nil(t, gone)

	err = svc.DeleteCode(ctx, "used")
	assert.True(t, utils.IsKind(err, utils.KindBadRequest))
	err = svc.DeleteCode(ctx, "owned")
	assert.True(t, utils.IsKind(err, utils.KindBadRequest))
	err = svc.DeleteCode(ctx, "free")
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestListCodesIncludesUsage(t *testing.T) {
	svc, store := newCodeService(t)
	ctx := context.Background()
	seedCode(t, store, "c1", "ABC123")
	seedCode(t, store, "c2", "XYZ789")
	seedReferral(t, store, "r1", "ABC123", nil)
	seedReferral(t, store, "r2", "ABC123", nil)
	seedUser(t, store, "u1", "u@x.com", "UUU12")
	_, err := svc.ClaimCode(ctx, "c2", "u@x.com")
	require.NoError(t, err)

	views, err := svc.ListCodes(ctx, "")
	require.NoError(t, err)
	require.Len(t, views, 2)
	byCode := map[string]models.PreClaimCodeView{}
	for _, v := range views {
		byCode[v.Code] = v
	}
	assert.EqualValues(t, 2, byCode["ABC123"].ReservationCount)
	assert.Equal(t, "u@x.com", byCode["XYZ789"].ClaimedByEmail)

	claimed, err := svc.ListCodes(ctx, models.CodeClaimed)
	require.NoError(t, err)
	assert.Len(t, claimed, 1)

	_, err = svc.ListCodes(ctx, "bogus")
	assert.True(t, utils.IsKind(err, utils.KindBadRequest))
}

func TestIsCodeAvailable(t *testing.T) {
	svc, store := newCodeService(t)
	ctx := context.Background()
	seedCode(t, store, "c1", "ABC123")
	seedUser(t, store, "u1", "u@x.com", "GLOW1")

	for code, want := range map[string]bool{"ABC123": false, "GLOW1": false, "FRESH1": true} {
		got, err := svc.IsCodeAvailable(ctx, code)
		require.NoError(t, err)
		assert.Equal(t, want, got, code)
	}
}
