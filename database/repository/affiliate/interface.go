package affiliateRepo

import (
	"context"
	"time"

	"glowclinic/models"
)

// PreClaimCodeRepository stores admin-issued affiliate codes. State changes are
// conditional on the current status and report whether they applied.
type PreClaimCodeRepository interface {
	// Create inserts a code; repository.ErrDuplicate when the code exists.
	Create(ctx context.Context, code *models.PreClaimAffiliateCode) error
	GetByID(ctx context.Context, id string) (*models.PreClaimAffiliateCode, error)
	GetByCode(ctx context.Context, code string) (*models.PreClaimAffiliateCode, error)
	// FindAssignedUnclaimed returns the oldest unclaimed code assigned to email.
	FindAssignedUnclaimed(ctx context.Context, email string) (*models.PreClaimAffiliateCode, error)
	// List returns codes newest first, optionally filtered by status.
	List(ctx context.Context, status string) ([]models.PreClaimAffiliateCode, error)

	// Assign sets assignedEmail on an unclaimed code that has none.
	Assign(ctx context.Context, id, email string) (bool, error)
	// SetAssignedEmail (re)assigns an unclaimed code.
	SetAssignedEmail(ctx context.Context, id, email string) (bool, error)
	// MarkClaimed moves an unclaimed code to claimed by userID.
	MarkClaimed(ctx context.Context, id, userID, email string, at time.Time) (bool, error)
	// UpdateClaimant hands a claimed code to another user.
	UpdateClaimant(ctx context.Context, id, userID, email string, at time.Time) (bool, error)
	// Release reverts a claimed code to unclaimed, assigned to email.
	Release(ctx context.Context, id, email string) (bool, error)
	// DeleteUnclaimed removes a code that is still unclaimed.
	DeleteUnclaimed(ctx context.Context, id string) (bool, error)
}
