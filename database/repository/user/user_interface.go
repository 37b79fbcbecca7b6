package userRepo

import (
	"context"
	"time"

	"glowclinic/models"
)

// UserRepository defines methods for user data access. Lookups return (nil, nil) when
// no user matches.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByExternalID retrieves a user by identity-provider subject id.
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	// GetByEmail retrieves a user by email, case-insensitively.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByAffiliateCode retrieves the current owner of a code.
	GetByAffiliateCode(ctx context.Context, code string) (*models.User, error)
	// GetByIDs retrieves users keyed by id.
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
	// Create inserts a new user record.
	Create(ctx context.Context, user *models.User) error
	// UpdateProfile refreshes identity fields copied from the identity provider.
	UpdateProfile(ctx context.Context, id, email, firstName, lastName string) error

	// SetAffiliateCode overwrites the code without touching history.
	SetAffiliateCode(ctx context.Context, id, code string) error
	// ChangeAffiliateCode swaps oldCode for newCode only if oldCode is still current,
	// pushing oldCode onto the history. Returns false if the user changed underneath.
	ChangeAffiliateCode(ctx context.Context, id, oldCode, newCode string, at time.Time) (bool, error)

	// AddLoyaltyPoints increments loyaltyPoints.
	AddLoyaltyPoints(ctx context.Context, id string, points int) error
	// CreditReferral adds a paid commission to totalEarnings, points and totalReferrals.
	CreditReferral(ctx context.Context, id string, amount float64, points int) error
	// DeductEarnings subtracts amount only if totalEarnings covers it.
	DeductEarnings(ctx context.Context, id string, amount float64) (bool, error)
	// RefundEarnings adds amount back to totalEarnings.
	RefundEarnings(ctx context.Context, id string, amount float64) error
}
