package reservation

import (
	"context"
	"fmt"
	"strings"

	"glowclinic/models"
	"glowclinic/services/affiliate"
	"glowclinic/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func (s *DefaultReservationService) AdminList(ctx context.Context, filter models.ReservationFilter) (*models.ReservationPage, error) {
	if filter.Status != "" && !models.ValidReservationStatus(filter.Status) {
		return nil, utils.NewBadRequest("invalid status filter")
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = defaultPageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}
	filter.Search = strings.TrimSpace(filter.Search)

	items, total, err := s.Reservations.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := s.joinTreatments(ctx, items, false); err != nil {
		return nil, err
	}
	if err := s.joinUsers(ctx, items); err != nil {
		return nil, err
	}
	return &models.ReservationPage{Items: items, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (s *DefaultReservationService) load(ctx context.Context, id string) (*models.Reservation, error) {
	r, err := s.Reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, utils.NewNotFound("reservation not found")
	}
	return r, nil
}

// setFinalPrice changes the negotiated price and recomputes the commission. A paid
// referrer keeps the amount recorded on the commission transaction.
func (s *DefaultReservationService) setFinalPrice(r *models.Reservation, price float64) error {
	if price < 0 {
		return utils.NewBadRequest("finalPrice must not be negative")
	}
	r.FinalPrice = price
	s.recomputeCommission(r)
	return nil
}

func (s *DefaultReservationService) recomputeCommission(r *models.Reservation) {
	if r.HasReferral() {
		r.CommissionAmount = affiliate.CalculateCommission(r.FinalPrice, s.rate())
	} else {
		r.CommissionAmount = 0
	}
}

func (s *DefaultReservationService) applyReferral(ctx context.Context, r *models.Reservation, code string) error {
	if r.CommissionPaid {
		return utils.NewConflict("commission for this reservation has already been paid")
	}
	if strings.TrimSpace(code) == "" {
		r.ReferredBy = nil
		r.ReferrerID = nil
		s.recomputeCommission(r)
		return nil
	}
	ref, err := s.resolveReferral(ctx, code, r.UserID)
	if err != nil {
		return err
	}
	c := ref.Code
	r.ReferredBy = &c
	r.ReferrerID = ref.ReferrerID
	s.recomputeCommission(r)
	return nil
}

// save persists r. A reservation that ends up completed goes through complete so
// every front-office path pays out the same way.
func (s *DefaultReservationService) save(ctx context.Context, r *models.Reservation) (*models.Reservation, error) {
	r.UpdatedAt = s.now()
	if r.Status == models.ReservationCompleted {
		if err := s.complete(ctx, r); err != nil {
			return nil, err
		}
		return r, nil
	}
	if err := s.Reservations.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// complete stamps completedAt, persists the reservation and pays the referrer once.
// The commissionPaid flip is the idempotency guard: only the caller that performs
// it credits the referrer.
func (s *DefaultReservationService) complete(ctx context.Context, r *models.Reservation) error {
	now := s.now()
	r.Status = models.ReservationCompleted
	if r.CompletedAt == nil {
		r.CompletedAt = &now
	}
	if err := s.Reservations.Update(ctx, r); err != nil {
		return err
	}
	if r.CommissionPaid || !r.HasReferrer() {
		return nil
	}
	flipped, err := s.Reservations.MarkCommissionPaid(ctx, r.ID)
	if err != nil {
		return err
	}
	if !flipped {
		return nil
	}
	r.CommissionPaid = true

	referrerID := *r.ReferrerID
	points := affiliate.ReferralPoints(r.CommissionAmount)
	if err := s.Users.CreditReferral(ctx, referrerID, r.CommissionAmount, points); err != nil {
		s.logger().Error("Commission flagged paid but referrer credit failed",
			zap.String("reservationId", r.ID),
			zap.String("referrerId", referrerID),
			zap.Float64("commission", r.CommissionAmount),
			zap.Error(err))
		return err
	}
	tx := &models.Transaction{
		ID:            uuid.New().String(),
		UserID:        referrerID,
		Type:          models.TransactionCommission,
		Amount:        r.CommissionAmount,
		Points:        points,
		Description:   fmt.Sprintf("Referral commission for reservation %s", r.ID),
		ReservationID: r.ID,
		CreatedAt:     now,
	}
	if err := s.Transactions.Create(ctx, tx); err != nil {
		return err
	}
	s.logger().Info("Referral commission paid",
		zap.String("reservationId", r.ID),
		zap.String("referrerId", referrerID),
		zap.Float64("commission", r.CommissionAmount),
		zap.Int("points", points))
	return nil
}

// AdminUpdateStatus handles the PATCH console action.
func (s *DefaultReservationService) AdminUpdateStatus(ctx context.Context, update models.ReservationStatusUpdate) (*models.Reservation, error) {
	if update.Status != "" && !models.ValidReservationStatus(update.Status) {
		return nil, utils.NewBadRequest("invalid reservation status")
	}
	r, err := s.load(ctx, update.ID)
	if err != nil {
		return nil, err
	}
	if update.FinalPrice != nil {
		if err := s.setFinalPrice(r, *update.FinalPrice); err != nil {
			return nil, err
		}
	}
	if update.Status != "" {
		r.Status = update.Status
	}
	return s.save(ctx, r)
}

// AdminAddReferrer attaches a referral code after the fact.
func (s *DefaultReservationService) AdminAddReferrer(ctx context.Context, update models.ReservationReferrerUpdate) (*models.Reservation, error) {
	if strings.TrimSpace(update.AffiliateCode) == "" {
		return nil, utils.NewBadRequest("affiliateCode is required")
	}
	r, err := s.load(ctx, update.ID)
	if err != nil {
		return nil, err
	}
	if err := s.applyReferral(ctx, r, update.AffiliateCode); err != nil {
		return nil, err
	}
	return s.save(ctx, r)
}

// AdminEdit applies any subset of fields. Completing a reservation here pays out
// like the other front-office paths.
func (s *DefaultReservationService) AdminEdit(ctx context.Context, edit models.ReservationEdit) (*models.Reservation, error) {
	if edit.Status != nil && !models.ValidReservationStatus(*edit.Status) {
		return nil, utils.NewBadRequest("invalid reservation status")
	}
	r, err := s.load(ctx, edit.ID)
	if err != nil {
		return nil, err
	}

	if edit.PatientName != nil {
		r.PatientName = strings.TrimSpace(*edit.PatientName)
	}
	if edit.PatientEmail != nil {
		r.PatientEmail = strings.ToLower(strings.TrimSpace(*edit.PatientEmail))
	}
	if edit.PatientPhone != nil {
		r.PatientPhone = strings.TrimSpace(*edit.PatientPhone)
	}
	if edit.ReservationDate != nil {
		r.ReservationDate = *edit.ReservationDate
	}
	if edit.ReservationTime != nil {
		r.ReservationTime = *edit.ReservationTime
	}
	if edit.ReservationDate != nil || edit.ReservationTime != nil {
		if err := validateSchedule(r.ReservationDate, r.ReservationTime); err != nil {
			return nil, err
		}
	}
	if edit.Notes != nil {
		r.Notes = *edit.Notes
	}
	if edit.TreatmentID != nil && *edit.TreatmentID != r.TreatmentID {
		t, err := s.Treatments.GetByID(ctx, *edit.TreatmentID)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, utils.NewNotFound("treatment not found")
		}
		r.TreatmentID = t.ID
	}
	if edit.FinalPrice != nil {
		if err := s.setFinalPrice(r, *edit.FinalPrice); err != nil {
			return nil, err
		}
	}
	if edit.AffiliateCode != nil {
		current := ""
		if r.ReferredBy != nil {
			current = *r.ReferredBy
		}
		if affiliate.NormalizeCode(*edit.AffiliateCode) != current {
			if err := s.applyReferral(ctx, r, *edit.AffiliateCode); err != nil {
				return nil, err
			}
		}
	}
	if edit.Status != nil {
		r.Status = *edit.Status
	}
	return s.save(ctx, r)
}
