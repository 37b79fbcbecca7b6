package user

import (
	"context"
	"errors"
	"strings"

	"glowclinic/database/repository"
	"glowclinic/models"
	"glowclinic/services/affiliate"
	"glowclinic/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxCreateAttempts = 3

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// SyncUser creates the local user on the first authenticated call and refreshes the
// profile afterwards. Token claims win over the request body.
func (s *DefaultUserService) SyncUser(ctx context.Context, identity models.Identity, req models.SyncUserRequest) (*models.User, error) {
	if identity.Subject == "" {
		return nil, utils.NewUnauthorized("missing session subject")
	}
	email := strings.ToLower(firstNonEmpty(identity.Email, req.Email))
	firstName := firstNonEmpty(identity.FirstName, req.FirstName)
	lastName := firstNonEmpty(identity.LastName, req.LastName)

	existing, err := s.Repo.GetByExternalID(ctx, identity.Subject)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.refresh(ctx, existing, email, firstName, lastName)
	}

	var created *models.User
	for attempt := 0; attempt < maxCreateAttempts && created == nil; attempt++ {
		code, err := affiliate.EnsureUniqueAffiliateCode(ctx, firstName, lastName, s.Codes.IsCodeAvailable)
		if err != nil {
			return nil, err
		}
		now := s.now()
		candidate := &models.User{
			ID:                   uuid.New().String(),
			ExternalID:           identity.Subject,
			Email:                email,
			FirstName:            firstName,
			LastName:             lastName,
			AffiliateCode:        code,
			AffiliateCodeHistory: []string{},
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		err = s.Repo.Create(ctx, candidate)
		if err == nil {
			created = candidate
			break
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, err
		}
		// Either a concurrent sync created the user or the code was taken meanwhile.
		winner, lookupErr := s.Repo.GetByExternalID(ctx, identity.Subject)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if winner != nil {
			return winner, nil
		}
	}
	if created == nil {
		return nil, errors.New("could not create user with a unique affiliate code")
	}
	s.logger().Info("User synced for the first time",
		zap.String("userId", created.ID),
		zap.String("affiliateCode", created.AffiliateCode))

	if err := s.claimAssigned(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *DefaultUserService) refresh(ctx context.Context, u *models.User, email, firstName, lastName string) (*models.User, error) {
	email = firstNonEmpty(email, u.Email)
	firstName = firstNonEmpty(firstName, u.FirstName)
	lastName = firstNonEmpty(lastName, u.LastName)
	if email != u.Email || firstName != u.FirstName || lastName != u.LastName {
		if err := s.Repo.UpdateProfile(ctx, u.ID, email, firstName, lastName); err != nil {
			return nil, err
		}
		u.Email, u.FirstName, u.LastName = email, firstName, lastName
	}
	return u, nil
}

// claimAssigned finishes a claim an admin deferred until this user's first sign-in. A
// conflicting claim is logged and skipped so sign-in still succeeds.
func (s *DefaultUserService) claimAssigned(ctx context.Context, u *models.User) error {
	code, err := s.Codes.ClaimAssignedCode(ctx, u)
	if err != nil {
		if utils.IsKind(err, utils.KindConflict) {
			s.logger().Warn("Skipped assigned affiliate code", zap.String("userId", u.ID), zap.Error(err))
			return nil
		}
		return err
	}
	if code != "" {
		u.AffiliateCode = code
	}
	return nil
}

func (s *DefaultUserService) GetBySubject(ctx context.Context, subject string) (*models.User, error) {
	u, err := s.Repo.GetByExternalID(ctx, subject)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, utils.NewNotFound("user not synced")
	}
	return u, nil
}

func (s *DefaultUserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, utils.NewNotFound("user not found")
	}
	return u, nil
}

func (s *DefaultUserService) Profile(_ context.Context, u *models.User) models.UserProfile {
	return models.UserProfile{User: *u, LoyaltyLevel: s.Loyalty.Level(u.LoyaltyPoints)}
}

func (s *DefaultUserService) ListTransactions(ctx context.Context, u *models.User) ([]models.Transaction, error) {
	return s.Transactions.ListByUser(ctx, u.ID)
}

func (s *DefaultUserService) ListReferrals(ctx context.Context, u *models.User) ([]models.Reservation, error) {
	return s.Reservations.ListByReferrer(ctx, u.ID)
}
