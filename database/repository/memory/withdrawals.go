package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"glowclinic/database/repository"
	"glowclinic/models"
)

type bankAccountStore struct{ s *Store }

func (r *bankAccountStore) FindOrCreate(_ context.Context, acct *models.BankAccount) (*models.BankAccount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if a.UserID == acct.UserID && a.Type == acct.Type && a.BankName == acct.BankName && a.AccountNumber == acct.AccountNumber {
			cp := *a
			return &cp, nil
		}
	}
	cp := *acct
	r.s.accounts[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *bankAccountStore) ListByUser(_ context.Context, userID string) ([]models.BankAccount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.BankAccount{}
	for _, a := range r.s.accounts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *bankAccountStore) GetByIDs(_ context.Context, ids []string) (map[string]*models.BankAccount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]*models.BankAccount, len(ids))
	for _, id := range ids {
		if a, ok := r.s.accounts[id]; ok {
			cp := *a
			out[id] = &cp
		}
	}
	return out, nil
}

type withdrawalStore struct{ s *Store }

func cloneWithdrawal(w *models.Withdrawal) models.Withdrawal {
	c := *w
	if w.ProcessedDate != nil {
		at := *w.ProcessedDate
		c.ProcessedDate = &at
	}
	if w.ProcessedBy != nil {
		c.ProcessedBy = strPtr(*w.ProcessedBy)
	}
	c.BankAccount = nil
	c.User = nil
	return c
}

func (r *withdrawalStore) Create(_ context.Context, w *models.Withdrawal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.withdrawals[w.ID]; ok {
		return fmt.Errorf("failed to create withdrawal: %w", repository.ErrDuplicate)
	}
	c := cloneWithdrawal(w)
	r.s.withdrawals[w.ID] = &c
	return nil
}

func (r *withdrawalStore) GetByID(_ context.Context, id string) (*models.Withdrawal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if w, ok := r.s.withdrawals[id]; ok {
		c := cloneWithdrawal(w)
		return &c, nil
	}
	return nil, nil
}

func (r *withdrawalStore) list(match func(*models.Withdrawal) bool) []models.Withdrawal {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Withdrawal{}
	for _, w := range r.s.withdrawals {
		if match(w) {
			out = append(out, cloneWithdrawal(w))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RequestDate.After(out[j].RequestDate) })
	return out
}

func (r *withdrawalStore) ListByUser(_ context.Context, userID string) ([]models.Withdrawal, error) {
	return r.list(func(w *models.Withdrawal) bool { return w.UserID == userID }), nil
}

func (r *withdrawalStore) List(_ context.Context, status string) ([]models.Withdrawal, error) {
	return r.list(func(w *models.Withdrawal) bool { return status == "" || w.Status == status }), nil
}

func (r *withdrawalStore) Transition(_ context.Context, id, from, to, adminNotes, processedBy string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.withdrawals[id]
	if !ok || w.Status != from {
		return false, nil
	}
	w.Status = to
	w.AdminNotes = adminNotes
	w.ProcessedBy = strPtr(processedBy)
	w.ProcessedDate = &at
	return true, nil
}
