package reservationRepo

import (
	"context"

	"glowclinic/models"
)

// ReservationRepository persists reservations. commissionPaid is written only by
// MarkCommissionPaid; Update never touches it.
type ReservationRepository interface {
	Create(ctx context.Context, reservation *models.Reservation) error
	// GetByID returns (nil, nil) when the reservation does not exist.
	GetByID(ctx context.Context, id string) (*models.Reservation, error)
	// ListByUser returns a customer's reservations, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Reservation, error)
	// ListByReferrer returns reservations currently attributed to referrerID, newest first.
	ListByReferrer(ctx context.Context, referrerID string) ([]models.Reservation, error)
	// List pages through all reservations for the front office.
	List(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, int64, error)
	// Update overwrites the editable fields of an existing reservation.
	Update(ctx context.Context, reservation *models.Reservation) error

	// MarkCommissionPaid flips commissionPaid false->true for a completed reservation with
	// a referrer. It reports whether this call performed the flip.
	MarkCommissionPaid(ctx context.Context, id string) (bool, error)
	// BackfillReferrer points unattributed reservations that used code at referrerID.
	BackfillReferrer(ctx context.Context, code, referrerID string) (int64, error)
	// RepointReferrer sets referrerId on every reservation that used code; nil clears it.
	RepointReferrer(ctx context.Context, code string, referrerID *string) (int64, error)
	// CountByReferralCodes counts reservations per referredBy code.
	CountByReferralCodes(ctx context.Context, codes []string) (map[string]int64, error)
}
