package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"glowclinic/database/repository"
	"glowclinic/models"
)

type reservationStore struct{ s *Store }

func cloneReservation(r *models.Reservation) models.Reservation {
	c := *r
	if r.ReferredBy != nil {
		c.ReferredBy = strPtr(*r.ReferredBy)
	}
	if r.ReferrerID != nil {
		c.ReferrerID = strPtr(*r.ReferrerID)
	}
	if r.CompletedAt != nil {
		at := *r.CompletedAt
		c.CompletedAt = &at
	}
	c.Treatment = nil
	c.User = nil
	return c
}

func (r *reservationStore) Create(_ context.Context, res *models.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reservations[res.ID]; ok {
		return fmt.Errorf("failed to create reservation: %w", repository.ErrDuplicate)
	}
	c := cloneReservation(res)
	r.s.reservations[res.ID] = &c
	return nil
}

func (r *reservationStore) GetByID(_ context.Context, id string) (*models.Reservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if res, ok := r.s.reservations[id]; ok {
		c := cloneReservation(res)
		return &c, nil
	}
	return nil, nil
}

func (r *reservationStore) filter(match func(*models.Reservation) bool) []models.Reservation {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Reservation{}
	for _, res := range r.s.reservations {
		if match(res) {
			out = append(out, cloneReservation(res))
		}
	}
	sortReservationsNewestFirst(out)
	return out
}

func (r *reservationStore) ListByUser(_ context.Context, userID string) ([]models.Reservation, error) {
	return r.filter(func(res *models.Reservation) bool { return res.UserID == userID }), nil
}

func (r *reservationStore) ListByReferrer(_ context.Context, referrerID string) ([]models.Reservation, error) {
	return r.filter(func(res *models.Reservation) bool {
		return res.ReferrerID != nil && *res.ReferrerID == referrerID
	}), nil
}

func (r *reservationStore) List(_ context.Context, f models.ReservationFilter) ([]models.Reservation, int64, error) {
	search := strings.ToLower(f.Search)
	items := r.filter(func(res *models.Reservation) bool {
		if f.Status != "" && res.Status != f.Status {
			return false
		}
		if search == "" {
			return true
		}
		fields := []string{res.PatientName, res.PatientEmail, res.PatientPhone}
		if res.ReferredBy != nil {
			fields = append(fields, *res.ReferredBy)
		}
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field), search) {
				return true
			}
		}
		return false
	})
	total := int64(len(items))
	if f.PageSize > 0 {
		start := 0
		if f.Page > 1 {
			start = (f.Page - 1) * f.PageSize
		}
		if start >= len(items) {
			return []models.Reservation{}, total, nil
		}
		end := start + f.PageSize
		if end > len(items) {
			end = len(items)
		}
		items = items[start:end]
	}
	return items, total, nil
}

func (r *reservationStore) Update(_ context.Context, res *models.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.reservations[res.ID]
	if !ok {
		return fmt.Errorf("failed to update reservation: %s not found", res.ID)
	}
	c := cloneReservation(res)
	c.CommissionPaid = existing.CommissionPaid
	c.UserID = existing.UserID
	c.CreatedAt = existing.CreatedAt
	r.s.reservations[res.ID] = &c
	return nil
}

func (r *reservationStore) MarkCommissionPaid(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.reservations[id]
	if !ok || res.CommissionPaid || res.Status != models.ReservationCompleted || !res.HasReferrer() {
		return false, nil
	}
	res.CommissionPaid = true
	res.UpdatedAt = time.Now()
	return true, nil
}

func (r *reservationStore) BackfillReferrer(_ context.Context, code, referrerID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, res := range r.s.reservations {
		if res.ReferredBy != nil && *res.ReferredBy == code && res.ReferrerID == nil {
			res.ReferrerID = strPtr(referrerID)
			res.UpdatedAt = time.Now()
			n++
		}
	}
	return n, nil
}

func (r *reservationStore) RepointReferrer(_ context.Context, code string, referrerID *string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, res := range r.s.reservations {
		if res.ReferredBy == nil || *res.ReferredBy != code {
			continue
		}
		if referrerID == nil {
			res.ReferrerID = nil
		} else {
			res.ReferrerID = strPtr(*referrerID)
		}
		res.UpdatedAt = time.Now()
		n++
	}
	return n, nil
}

func (r *reservationStore) CountByReferralCodes(_ context.Context, codes []string) (map[string]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	wanted := make(map[string]bool, len(codes))
	for _, c := range codes {
		wanted[c] = true
	}
	out := make(map[string]int64, len(codes))
	for _, res := range r.s.reservations {
		if res.ReferredBy != nil && wanted[*res.ReferredBy] {
			out[*res.ReferredBy]++
		}
	}
	return out, nil
}
