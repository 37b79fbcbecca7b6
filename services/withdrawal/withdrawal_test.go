package withdrawal

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

func newWithdrawalService(t *testing.T, earnings float64) (*DefaultWithdrawalService, *memory.Store, *models.User) {
	t.Helper()
	store := memory.New()
	u := &models.User{ID: "aff", ExternalID: "user_aff", Email: "aff@example.com", AffiliateCode: "AFF01", TotalEarnings: earnings}
	require.NoError(t, store.Users().Create(context.Background(), u))
	now := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	return &DefaultWithdrawalService{
		Withdrawals:  store.Withdrawals(),
		BankAccounts: store.BankAccounts(),
		Users:        store.Users(),
		Logger:       zap.NewNop(),
		Now:          func() time.Time { return now },
	}, store, u
}

func bankRequest(amount float64) models.WithdrawalRequest {
	return models.WithdrawalRequest{
		Amount:            amount,
		AccountType:       " Bank ",
		BankName:          "BCA",
		AccountNumber:     "1234567890",
		AccountHolderName: "Ayu Lestari",
	}
}

func balance(t *testing.T, store *memory.Store, id string) float64 {
	t.Helper()
	u, err := store.Users().GetByID(context.Background(), id)
	require.NoError(t, err)
	return u.TotalEarnings
}

func TestRequestDeductsBalance(t *testing.T) {
	svc, store, u := newWithdrawalService(t, 100000)
	ctx := context.Background()

	w, err := svc.Request(ctx, u, bankRequest(30000.456))
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalPending, w.Status)
	assert.Equal(t, 30000.46, w.Amount)
	require.NotNil(t, w.BankAccount)
	assert.Equal(t, models.AccountTypeBank, w.BankAccount.Type)
	assert.InDelta(t, 69999.54, balance(t, store, "aff"), 0.001)
	assert.Equal(t, 69999.54, u.TotalEarnings)

	second, err := svc.Request(ctx, u, bankRequest(10000))
	require.NoError(t, err)
	assert.Equal(t, w.BankAccountID, second.BankAccountID, "same destination is reused")

	summary, err := svc.ListForUser(ctx, u)
	require.NoError(t, err)
	assert.Len(t, summary.Withdrawals, 2)
	assert.InDelta(t, 59999.54, summary.TotalEarnings, 0.001)
	for _, item := range summary.Withdrawals {
		require.NotNil(t, item.BankAccount)
	}
}

func TestRequestValidation(t *testing.T) {
	svc, store, u := newWithdrawalService(t, 5000)
	ctx := context.Background()

	_, err := svc.Request(ctx, u, bankRequest(5000.01))
	assert.True(t, utils.IsKind(err, utils.KindBadRequest))

	_, err = svc.Request(ctx, u, bankRequest(0))
	assert.True(t, utils.IsKind(err, utils.KindBadRequest))

	_, err = svc.Request(ctx, u, bankRequest(0.001))
	assert.True(t, utils.IsKind(err, utils.KindBadRequest))

	req := bankRequest(100)
	req.AccountType = "crypto"
	_, err = svc.Request(ctx, u, req)
	assert.True(t, utils.IsKind(err, utils.KindBadRequest))

	req = bankRequest(100)
	req.AccountHolderName = "  "
	_, err = svc.Request(ctx, u, req)
	assert.True(t, utils.IsKind(err, utils.KindBadRequest))

	assert.Equal(t, 5000.0, balance(t, store, "aff"))
}

func TestRequestUsesStoredBalance(t *testing.T) {
	svc, store, u := newWithdrawalService(t, 5000)
	stale := *u
	stale.TotalEarnings = 1_000_000

	_, err := svc.Request(context.Background(), &stale, bankRequest(8000))
	assert.True(t, utils.IsKind(err, utils.KindBadRequest))
	assert.Equal(t, 5000.0, balance(t, store, "aff"))
}

func TestRejectRefundsOnce(t *testing.T) {
	svc, store, u := newWithdrawalService(t, 50000)
	ctx := context.Background()
	w, err := svc.Request(ctx, u, bankRequest(20000))
	require.NoError(t, err)
	assert.Equal(t, 30000.0, balance(t, store, "aff"))

	rejected, err := svc.AdminUpdateStatus(ctx, models.WithdrawalStatusUpdate{ID: w.ID, Status: models.WithdrawalRejected, AdminNotes: "wrong account"}, "user_admin")
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalRejected, rejected.Status)
	require.NotNil(t, rejected.ProcessedBy)
	assert.Equal(t, "user_admin", *rejected.ProcessedBy)
	require.NotNil(t, rejected.ProcessedDate)
	assert.Equal(t, 50000.0, balance(t, store, "aff"))

	_, err = svc.AdminUpdateStatus(ctx, models.WithdrawalStatusUpdate{ID: w.ID, Status: models.WithdrawalRejected, AdminNotes: "noted"}, "user_admin")
	require.NoError(t, err)
	assert.Equal(t, 50000.0, balance(t, store, "aff"), "notes-only update must not refund again")

	_, err = svc.AdminUpdateStatus(ctx, models.WithdrawalStatusUpdate{ID: w.ID, Status: models.WithdrawalCompleted}, "user_admin")
	assert.True(t, utils.IsKind(err, utils.KindBadRequest))
}

func TestApproveThenComplete(t *testing.T) {
	svc, store, u := newWithdrawalService(t, 50000)
	ctx := context.Background()
	w, err := svc.Request(ctx, u, bankRequest(20000))
	require.NoError(t, err)

	_, err = svc.AdminUpdateStatus(ctx, models.WithdrawalStatusUpdate{ID: w.ID, Status: models.WithdrawalApproved}, "user_admin")
	require.NoError(t, err)
	assert.Equal(t, 30000.0, balance(t, store, "aff"))

	_, err = svc.AdminUpdateStatus(ctx, models.WithdrawalStatusUpdate{ID: w.ID, Status: models.WithdrawalRejected}, "user_admin")
	assert.True(t, utils.IsKind(err, utils.KindBadRequest), "approved withdrawals cannot be rejected")

	_, err = svc.AdminUpdateStatus(ctx, models.WithdrawalStatusUpdate{ID: w.ID, Status: models.WithdrawalPending}, "user_admin")
	assert.True(t, utils.IsKind(err, utils.KindBadRequest))

	done, err := svc.AdminUpdateStatus(ctx, models.WithdrawalStatusUpdate{ID: w.ID, Status: models.WithdrawalCompleted, AdminNotes: "paid"}, "user_admin")
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalCompleted, done.Status)
	assert.Equal(t, "paid", done.AdminNotes)
	assert.Equal(t, 30000.0, balance(t, store, "aff"))
}

func TestAdminUpdateStatusErrors(t *testing.T) {
	svc, _, _ := newWithdrawalService(t, 0)
	ctx := context.Background()

	_, err := svc.AdminUpdateStatus(ctx, models.WithdrawalStatusUpdate{ID: "x", Status: "paid"}, "user_admin")
	assert.True(t, utils.IsKind(err, utils.KindBadRequest))

	_, err = svc.AdminUpdateStatus(ctx, models.WithdrawalStatusUpdate{ID: "missing", Status: models.WithdrawalApproved}, "user_admin")
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	_, err = svc.AdminList(ctx, "paid")
	assert.True(t, utils.IsKind(err, utils.KindBadRequest))
}

func TestAdminListJoinsUsers(t *testing.T) {
	svc, _, u := newWithdrawalService(t, 50000)
	ctx := context.Background()
	_, err := svc.Request(ctx, u, bankRequest(1000))
	require.NoError(t, err)

	items, err := svc.AdminList(ctx, models.WithdrawalPending)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].User)
	assert.Equal(t, "aff@example.com", items[0].User.Email)
	require.NotNil(t, items[0].BankAccount)
	assert.Equal(t, "BCA", items[0].BankAccount.BankName)

	items, err = svc.AdminList(ctx, models.WithdrawalCompleted)
	require.NoError(t, err)
	assert.Empty(t, items)
}
