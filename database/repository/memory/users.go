package memory

import (
	"context"
	"fmt"
	"time"

	"glowclinic/database/repository"
	"glowclinic/models"
)

type userStore struct{ s *Store }

func cloneUser(u *models.User) *models.User {
	c := *u
	c.AffiliateCodeHistory = copyStrings(u.AffiliateCodeHistory)
	return &c
}

func (r *userStore) find(match func(*models.User) bool) *models.User {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if match(u) {
			return cloneUser(u)
		}
	}
	return nil
}

func (r *userStore) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if u, ok := r.s.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, nil
}

func (r *userStore) GetByExternalID(_ context.Context, externalID string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ExternalID == externalID }), nil
}

func (r *userStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	email = normalizeEmail(email)
	return r.find(func(u *models.User) bool { return u.Email == email }), nil
}

func (r *userStore) GetByAffiliateCode(_ context.Context, code string) (*models.User, error) {
	if code == "" {
		return nil, nil
	}
	return r.find(func(u *models.User) bool { return u.AffiliateCode == code }), nil
}

func (r *userStore) GetByIDs(_ context.Context, ids []string) (map[string]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]*models.User, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out[id] = cloneUser(u)
		}
	}
	return out, nil
}

// codeTakenLocked reports whether another user already owns code. Caller holds the lock.
func (r *userStore) codeTakenLocked(code, exceptID string) bool {
	if code == "" {
		return false
	}
	for _, u := range r.s.users {
		if u.ID != exceptID && u.AffiliateCode == code {
			return true
		}
	}
	return false
}

func (r *userStore) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; ok {
		return fmt.Errorf("failed to create user: %w", repository.ErrDuplicate)
	}
	for _, u := range r.s.users {
		if u.ExternalID == user.ExternalID {
			return fmt.Errorf("failed to create user: %w", repository.ErrDuplicate)
		}
	}
	if r.codeTakenLocked(user.AffiliateCode, user.ID) {
		return fmt.Errorf("failed to create user: %w", repository.ErrDuplicate)
	}
	user.Email = normalizeEmail(user.Email)
	if user.AffiliateCodeHistory == nil {
		user.AffiliateCodeHistory = []string{}
	}
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

func (r *userStore) mutate(id, op string, fn func(*models.User) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return fmt.Errorf("%s: user %s not found", op, id)
	}
	if err := fn(u); err != nil {
		return err
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (r *userStore) UpdateProfile(_ context.Context, id, email, firstName, lastName string) error {
	return r.mutate(id, "failed to update user profile", func(u *models.User) error {
		u.Email = normalizeEmail(email)
		u.FirstName = firstName
		u.LastName = lastName
		return nil
	})
}

func (r *userStore) SetAffiliateCode(_ context.Context, id, code string) error {
	return r.mutate(id, "failed to set affiliate code", func(u *models.User) error {
		if r.codeTakenLocked(code, id) {
			return fmt.Errorf("failed to set affiliate code: %w", repository.ErrDuplicate)
		}
		u.AffiliateCode = code
		return nil
	})
}

func (r *userStore) ChangeAffiliateCode(_ context.Context, id, oldCode, newCode string, at time.Time) (bool, error) {
	changed := false
	err := r.mutate(id, "failed to change affiliate code", func(u *models.User) error {
		if u.AffiliateCode != oldCode {
			return nil
		}
		if r.codeTakenLocked(newCode, id) {
			return fmt.Errorf("failed to change affiliate code: %w", repository.ErrDuplicate)
		}
		u.AffiliateCodeHistory = append(u.AffiliateCodeHistory, oldCode)
		u.AffiliateCode = newCode
		u.AffiliateCodeUpdatedAt = &at
		changed = true
		return nil
	})
	return changed, err
}

func (r *userStore) AddLoyaltyPoints(_ context.Context, id string, points int) error {
	return r.mutate(id, "failed to add loyalty points", func(u *models.User) error {
		u.LoyaltyPoints += points
		return nil
	})
}

func (r *userStore) CreditReferral(_ context.Context, id string, amount float64, points int) error {
	return r.mutate(id, "failed to credit referral", func(u *models.User) error {
		u.TotalEarnings += amount
		u.TotalReferrals++
		u.Points += points
		return nil
	})
}

func (r *userStore) DeductEarnings(_ context.Context, id string, amount float64) (bool, error) {
	deducted := false
	err := r.mutate(id, "failed to deduct earnings", func(u *models.User) error {
		if u.TotalEarnings < amount {
			return nil
		}
		u.TotalEarnings -= amount
		deducted = true
		return nil
	})
	return deducted, err
}

func (r *userStore) RefundEarnings(_ context.Context, id string, amount float64) error {
	return r.mutate(id, "failed to refund earnings", func(u *models.User) error {
		u.TotalEarnings += amount
		return nil
	})
}
