package reservation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"glowclinic/models"
	"glowclinic/services/affiliate"
	"glowclinic/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

func validateSchedule(date, clock string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return utils.NewBadRequest("reservationDate must be YYYY-MM-DD")
	}
	if _, err := time.Parse(timeLayout, clock); err != nil {
		return utils.NewBadRequest("reservationTime must be HH:MM")
	}
	return nil
}

// referral is a resolved referral code. ReferrerID is nil while the code is an
// unclaimed pre-claim code.
type referral struct {
	Code       string
	ReferrerID *string
}

// resolveReferral looks a code up among user codes first, then among unclaimed
// pre-claim codes. bookingUserID is the customer the reservation belongs to.
func (s *DefaultReservationService) resolveReferral(ctx context.Context, raw, bookingUserID string) (*referral, error) {
	code := affiliate.NormalizeCode(raw)
	if code == "" || affiliate.IsTempCode(code) {
		return nil, utils.NewNotFound("affiliate code not found")
	}
	owner, err := s.Users.GetByAffiliateCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if owner != nil {
		if owner.ID == bookingUserID {
			return nil, utils.NewBadRequest("cannot use your own affiliate code")
		}
		id := owner.ID
		return &referral{Code: code, ReferrerID: &id}, nil
	}
	pre, err := s.Codes.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if pre != nil && pre.Status == models.CodeUnclaimed {
		return &referral{Code: code}, nil
	}
	return nil, utils.NewNotFound("affiliate code not found")
}

func (s *DefaultReservationService) Create(ctx context.Context, user *models.User, req models.CreateReservationRequest) (*models.Reservation, error) {
	if err := validateSchedule(req.ReservationDate, req.ReservationTime); err != nil {
		return nil, err
	}
	treatment, err := s.Treatments.GetByID(ctx, req.TreatmentID)
	if err != nil {
		return nil, err
	}
	if treatment == nil {
		return nil, utils.NewNotFound("treatment not found")
	}

	var ref *referral
	if strings.TrimSpace(req.ReferredBy) != "" {
		if ref, err = s.resolveReferral(ctx, req.ReferredBy, user.ID); err != nil {
			return nil, err
		}
	}

	price := float64(treatment.Price)
	now := s.now()
	r := &models.Reservation{
		ID:              uuid.New().String(),
		UserID:          user.ID,
		TreatmentID:     treatment.ID,
		PatientName:     strings.TrimSpace(req.PatientName),
		PatientEmail:    strings.ToLower(strings.TrimSpace(req.PatientEmail)),
		PatientPhone:    strings.TrimSpace(req.PatientPhone),
		ReservationDate: req.ReservationDate,
		ReservationTime: req.ReservationTime,
		Notes:           req.Notes,
		OriginalPrice:   price,
		FinalPrice:      price,
		Status:          models.ReservationPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if ref != nil {
		code := ref.Code
		r.ReferredBy = &code
		r.ReferrerID = ref.ReferrerID
		r.CommissionAmount = affiliate.CalculateCommission(price, s.rate())
	}
	if err := s.Reservations.Create(ctx, r); err != nil {
		return nil, err
	}

	points := affiliate.CalculateLoyaltyPoints(price)
	if points > 0 {
		if err := s.Users.AddLoyaltyPoints(ctx, user.ID, points); err != nil {
			return nil, err
		}
	}
	tx := &models.Transaction{
		ID:            uuid.New().String(),
		UserID:        user.ID,
		Type:          models.TransactionPointsEarned,
		Points:        points,
		Amount:        price,
		Description:   fmt.Sprintf("Loyalty points for %s", treatment.Name),
		ReservationID: r.ID,
		CreatedAt:     now,
	}
	if err := s.Transactions.Create(ctx, tx); err != nil {
		return nil, err
	}
	user.LoyaltyPoints += points

	s.logger().Info("Reservation created",
		zap.String("reservationId", r.ID),
		zap.String("userId", user.ID),
		zap.Bool("referred", ref != nil),
		zap.Int("loyaltyPoints", points))
	r.Treatment = treatment
	return r, nil
}

func (s *DefaultReservationService) ListForUser(ctx context.Context, user *models.User) ([]models.Reservation, error) {
	items, err := s.Reservations.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.joinTreatments(ctx, items, true); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *DefaultReservationService) joinTreatments(ctx context.Context, items []models.Reservation, withCategory bool) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, 0, len(items))
	for _, r := range items {
		ids = append(ids, r.TreatmentID)
	}
	treatments, err := s.Treatments.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	categories := map[string]*models.TreatmentCategory{}
	if withCategory {
		list, err := s.Treatments.ListCategories(ctx)
		if err != nil {
			return err
		}
		for i := range list {
			categories[list[i].ID] = &list[i]
		}
	}
	for i := range items {
		t, ok := treatments[items[i].TreatmentID]
		if !ok || t == nil {
			continue
		}
		joined := *t
		joined.Category = categories[t.CategoryID]
		items[i].Treatment = &joined
	}
	return nil
}

func (s *DefaultReservationService) joinUsers(ctx context.Context, items []models.Reservation) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, 0, len(items))
	for _, r := range items {
		ids = append(ids, r.UserID)
	}
	users, err := s.Users.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range items {
		if u, ok := users[items[i].UserID]; ok && u != nil {
			joined := *u
			items[i].User = &joined
		}
	}
	return nil
}
