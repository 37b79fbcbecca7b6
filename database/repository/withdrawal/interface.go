package withdrawalRepo

import (
	"context"
	"time"

	"glowclinic/models"
)

// BankAccountRepository stores payout destinations.
type BankAccountRepository interface {
	// FindOrCreate returns the account matching (userId, type, bankName, accountNumber),
	// inserting acct when none exists.
	FindOrCreate(ctx context.Context, acct *models.BankAccount) (*models.BankAccount, error)
	ListByUser(ctx context.Context, userID string) ([]models.BankAccount, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.BankAccount, error)
}

// WithdrawalRepository stores withdrawal requests.
type WithdrawalRepository interface {
	Create(ctx context.Context, w *models.Withdrawal) error
	// GetByID returns (nil, nil) when the withdrawal does not exist.
	GetByID(ctx context.Context, id string) (*models.Withdrawal, error)
	// ListByUser returns a user's withdrawals, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Withdrawal, error)
	// List returns all withdrawals newest first, optionally filtered by status.
	List(ctx context.Context, status string) ([]models.Withdrawal, error)
	// Transition moves a withdrawal from one status to another and stamps the processing
	// fields. It reports false when the withdrawal was no longer in from.
	Transition(ctx context.Context, id, from, to, adminNotes, processedBy string, at time.Time) (bool, error)
}
