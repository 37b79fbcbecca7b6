package transactionRepo

import (
	"context"

	"glowclinic/models"
)

// TransactionRepository is append-only: rows are inserted and read, never updated.
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	// ListByUser returns a user's ledger, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Transaction, error)
	// ListByReservation returns ledger rows that reference a reservation.
	ListByReservation(ctx context.Context, reservationID string) ([]models.Transaction, error)
}
