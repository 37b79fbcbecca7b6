package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"glowclinic/database/repository"
	"glowclinic/models"
)

type transactionStore struct{ s *Store }

func (r *transactionStore) Create(_ context.Context, tx *models.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.transactions {
		if existing.ID == tx.ID {
			return fmt.Errorf("failed to append transaction: %w", repository.ErrDuplicate)
		}
	}
	r.s.transactions = append(r.s.transactions, *tx)
	return nil
}

func (r *transactionStore) list(match func(*models.Transaction) bool) []models.Transaction {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Transaction{}
	for i := range r.s.transactions {
		if match(&r.s.transactions[i]) {
			out = append(out, r.s.transactions[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *transactionStore) ListByUser(_ context.Context, userID string) ([]models.Transaction, error) {
	return r.list(func(tx *models.Transaction) bool { return tx.UserID == userID }), nil
}

func (r *transactionStore) ListByReservation(_ context.Context, reservationID string) ([]models.Transaction, error) {
	return r.list(func(tx *models.Transaction) bool { return tx.ReservationID == reservationID }), nil
}

type codeStore struct{ s *Store }

func cloneCode(c *models.PreClaimAffiliateCode) *models.PreClaimAffiliateCode {
	out := *c
	if c.AssignedEmail != nil {
		out.AssignedEmail = strPtr(*c.AssignedEmail)
	}
	if c.ClaimedBy != nil {
		out.ClaimedBy = strPtr(*c.ClaimedBy)
	}
	if c.ClaimedAt != nil {
		at := *c.ClaimedAt
		out.ClaimedAt = &at
	}
	return &out
}

func (r *codeStore) Create(_ context.Context, code *models.PreClaimAffiliateCode) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.codes {
		if c.ID == code.ID || c.Code == code.Code {
			return fmt.Errorf("failed to create pre-claim code: %w", repository.ErrDuplicate)
		}
	}
	r.s.codes[code.ID] = cloneCode(code)
	return nil
}

func (r *codeStore) GetByID(_ context.Context, id string) (*models.PreClaimAffiliateCode, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if c, ok := r.s.codes[id]; ok {
		return cloneCode(c), nil
	}
	return nil, nil
}

func (r *codeStore) GetByCode(_ context.Context, code string) (*models.PreClaimAffiliateCode, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.codes {
		if c.Code == code {
			return cloneCode(c), nil
		}
	}
	return nil, nil
}

func (r *codeStore) FindAssignedUnclaimed(_ context.Context, email string) (*models.PreClaimAffiliateCode, error) {
	email = normalizeEmail(email)
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var oldest *models.PreClaimAffiliateCode
	for _, c := range r.s.codes {
		if c.Status != models.CodeUnclaimed || c.AssignedEmail == nil || *c.AssignedEmail != email {
			continue
		}
		if oldest == nil || c.CreatedAt.Before(oldest.CreatedAt) {
			oldest = c
		}
	}
	if oldest == nil {
		return nil, nil
	}
	return cloneCode(oldest), nil
}

func (r *codeStore) List(_ context.Context, status string) ([]models.PreClaimAffiliateCode, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.PreClaimAffiliateCode{}
	for _, c := range r.s.codes {
		if status == "" || c.Status == status {
			out = append(out, *cloneCode(c))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *codeStore) update(id string, guard func(*models.PreClaimAffiliateCode) bool, apply func(*models.PreClaimAffiliateCode)) bool {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.codes[id]
	if !ok || !guard(c) {
		return false
	}
	apply(c)
	c.UpdatedAt = time.Now()
	return true
}

func isUnclaimed(c *models.PreClaimAffiliateCode) bool { return c.Status == models.CodeUnclaimed }
func isClaimed(c *models.PreClaimAffiliateCode) bool { return c.Status == models.CodeClaimed }

func (r *codeStore) Assign(_ context.Context, id, email string) (bool, error) {
	return r.update(id, func(c *models.PreClaimAffiliateCode) bool {
		return isUnclaimed(c) && c.AssignedEmail == nil
	}, func(c *models.PreClaimAffiliateCode) {
		c.AssignedEmail = strPtr(normalizeEmail(email))
	}), nil
}

func (r *codeStore) SetAssignedEmail(_ context.Context, id, email string) (bool, error) {
	return r.update(id, isUnclaimed, func(c *models.PreClaimAffiliateCode) {
		c.AssignedEmail = strPtr(normalizeEmail(email))
	}), nil
}

func (r *codeStore) MarkClaimed(_ context.Context, id, userID, email string, at time.Time) (bool, error) {
	return r.update(id, isUnclaimed, func(c *models.PreClaimAffiliateCode) {
		c.Status = models.CodeClaimed
		c.ClaimedBy = strPtr(userID)
		c.ClaimedAt = &at
		c.AssignedEmail = strPtr(normalizeEmail(email))
	}), nil
}

func (r *codeStore) UpdateClaimant(_ context.Context, id, userID, email string, at time.Time) (bool, error) {
	return r.update(id, isClaimed, func(c *models.PreClaimAffiliateCode) {
		c.ClaimedBy = strPtr(userID)
		c.ClaimedAt = &at
		c.AssignedEmail = strPtr(normalizeEmail(email))
	}), nil
}

func (r *codeStore) Release(_ context.Context, id, email string) (bool, error) {
	return r.update(id, isClaimed, func(c *models.PreClaimAffiliateCode) {
		c.Status = models.CodeUnclaimed
		c.ClaimedBy = nil
		c.ClaimedAt = nil
		c.AssignedEmail = strPtr(normalizeEmail(email))
	}), nil
}

func (r *codeStore) DeleteUnclaimed(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.codes[id]
	if !ok || c.Status != models.CodeUnclaimed {
		return false, nil
	}
	delete(r.s.codes, id)
	return true, nil
}
