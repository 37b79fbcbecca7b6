package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"glowclinic/database/repository/memory"
	"glowclinic/handlers"
	"glowclinic/middleware"
	"glowclinic/models"
	"glowclinic/services/affiliate"
	"glowclinic/services/authz"
	"glowclinic/services/catalog"
	"glowclinic/services/reservation"
	"glowclinic/services/user"
	"glowclinic/services/withdrawal"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type tokenVerifier map[string]models.Identity

func (v tokenVerifier) Verify(token string) (*models.Identity, error) {
	identity, ok := v[token]
	if !ok {
		return nil, middleware.ErrInvalidSession
	}
	return &identity, nil
}

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	store := memory.New()
	logger := zap.NewNop()

	require.NoError(t, store.Treatments().UpsertCategory(ctx, &models.TreatmentCategory{ID: "cat-laser", Name: "Laser", Slug: "laser"}))
	require.NoError(t, store.Treatments().UpsertTreatment(ctx, &models.Treatment{
		ID: "t-pico", CategoryID: "cat-laser", Name: "Pico Laser", Slug: "pico-laser", Price: 500000,
	}))

	codes := &affiliate.DefaultCodeService{
		Codes:        store.PreClaimCodes(),
		Users:        store.Users(),
		Reservations: store.Reservations(),
		Logger:       logger,
	}
	users := &user.DefaultUserService{
		Repo:         store.Users(),
		Transactions: store.Transactions(),
		Reservations: store.Reservations(),
		Codes:        codes,
		Loyalty:      affiliate.DefaultLoyaltyPolicy(),
		Logger:       logger,
	}
	reservations := &reservation.DefaultReservationService{
		Reservations: store.Reservations(),
		Treatments:   store.Treatments(),
		Users:        store.Users(),
		Transactions: store.Transactions(),
		Codes:        store.PreClaimCodes(),
		Logger:       logger,
	}
	withdrawals := &withdrawal.DefaultWithdrawalService{
		Withdrawals:  store.Withdrawals(),
		BankAccounts: store.BankAccounts(),
		Users:        store.Users(),
		Logger:       logger,
	}

	hb := &handlers.HandlerBundle{
		Verifier: tokenVerifier{
			"tok-ref":   {Subject: "user_ref", Email: "rina@example.com", FirstName: "Rina"},
			"tok-cust":  {Subject: "user_cust", Email: "citra@example.com", FirstName: "Citra"},
			"tok-admin": {Subject: "user_admin", Email: "admin@example.com"},
		},
		Users:          users,
		Policy:         authz.NewPolicy([]string{"user_admin"}, store.Users()),
		Catalog:        handlers.NewCatalogHandler(&catalog.DefaultCatalogService{Repo: store.Treatments(), Logger: logger}),
		User:           handlers.NewUserHandler(users),
		Reservation:    handlers.NewReservationHandler(reservations),
		AffiliateCodes: handlers.NewAffiliateCodeHandler(codes),
		Withdrawal:     handlers.NewWithdrawalHandler(withdrawals),
		Health:         &handlers.HealthHandler{},
	}

	r := gin.New()
	RegisterRoutes(r, hb, []string{"http://localhost:3000"}, 1000)
	return r
}

func do(t *testing.T, r http.Handler, method, path, token string, body any, out any) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if out != nil && w.Code < 300 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w.Code
}

func TestReferralPayoutFlow(t *testing.T) {
	r := newTestServer(t)

	var catalogItems []models.Treatment
	require.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/api/treatments?category=laser", "", nil, &catalogItems))
	require.Len(t, catalogItems, 1)

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/api/user/me", "tok-ref", nil, nil), "not synced yet")

	var referrer models.UserProfile
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/user/sync", "tok-ref", nil, &referrer))
	require.NotEmpty(t, referrer.AffiliateCode)
	assert.Equal(t, "Bronze", referrer.LoyaltyLevel)

	var customer models.UserProfile
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/user/sync", "tok-cust", map[string]string{"lastName": "Putri"}, &customer))
	assert.Equal(t, "Putri", customer.LastName)

	var booked models.Reservation
	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/api/reservations", "tok-cust", models.CreateReservationRequest{
		TreatmentID:     "t-pico",
		PatientName:     "Citra Putri",
		PatientEmail:    "citra@example.com",
		PatientPhone:    "0812345678",
		ReservationDate: "2025-06-01",
		ReservationTime: "10:00",
		ReferredBy:      referrer.AffiliateCode,
	}, &booked))
	assert.Equal(t, 50000.0, booked.CommissionAmount)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/api/reservations", "tok-cust", map[string]string{"treatmentId": "t-pico"}, nil))

	update := models.ReservationStatusUpdate{ID: booked.ID, Status: models.ReservationCompleted}
	assert.Equal(t, http.StatusForbidden, do(t, r, http.MethodPatch, "/api/front-office/reservations", "tok-cust", update, nil))
	assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodPatch, "/api/front-office/reservations", "", update, nil))
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPatch, "/api/front-office/reservations", "tok-admin", update, nil))
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPatch, "/api/front-office/reservations", "tok-admin", update, nil))

	var info models.AffiliateCodeInfo
	require.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/api/user/affiliate-code", "tok-ref", nil, &info))
	assert.Equal(t, 50000.0, info.TotalEarnings)
	assert.Equal(t, 1, info.TotalReferrals)
	assert.Equal(t, 500, info.Points)

	var referrals []models.Reservation
	require.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/api/user/referrals", "tok-ref", nil, &referrals))
	assert.Len(t, referrals, 1)

	var requested models.Withdrawal
	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/api/withdrawals", "tok-ref", models.WithdrawalRequest{
		Amount: 20000, AccountType: "ewallet", BankName: "GoPay", AccountNumber: "0812", AccountHolderName: "Rina",
	}, &requested))

	var summary models.WithdrawalSummary
	require.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/api/withdrawals", "tok-ref", nil, &summary))
	assert.Equal(t, 30000.0, summary.TotalEarnings)

	var rejected models.Withdrawal
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPatch, "/api/front-office/withdrawals", "tok-admin",
		models.WithdrawalStatusUpdate{ID: requested.ID, Status: models.WithdrawalRejected, AdminNotes: "name mismatch"}, &rejected))
	require.NotNil(t, rejected.ProcessedBy)
	assert.Equal(t, "user_admin", *rejected.ProcessedBy)

	require.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/api/withdrawals", "tok-ref", nil, &summary))
	assert.Equal(t, 50000.0, summary.TotalEarnings)
}

func TestPreClaimCodeConsole(t *testing.T) {
	r := newTestServer(t)

	var generated []models.PreClaimAffiliateCode
	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/api/affiliate-codes", "tok-admin",
		map[string]any{"count": 2, "notes": "launch event"}, &generated))
	require.Len(t, generated, 2)
	assert.Equal(t, "user_admin", generated[0].CreatedBy)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/api/affiliate-codes?status=lost", "tok-admin", nil, nil))

	var claim models.ClaimResult
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/affiliate-codes/claim", "tok-admin",
		map[string]string{"codeId": generated[0].ID, "email": "rina@example.com"}, &claim))

	var referrer models.UserProfile
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/user/sync", "tok-ref", nil, &referrer))
	assert.Equal(t, generated[0].Code, referrer.AffiliateCode)

	var claimed []models.PreClaimCodeView
	require.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/api/affiliate-codes?status=claimed", "tok-admin", nil, &claimed))
	require.Len(t, claimed, 1)
	assert.Equal(t, generated[0].Code, claimed[0].Code)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodDelete, "/api/affiliate-codes?id="+generated[0].ID, "tok-admin", nil, nil))
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodDelete, "/api/affiliate-codes?id="+generated[1].ID, "tok-admin", nil, nil))
}
