package models

import "time"

const (
	TransactionPointsEarned = "points_earned"
	TransactionCommission   = "commission"
)

// Transaction is an append-only ledger row.
type Transaction struct {
	ID            string    `bson:"id" json:"id"`
	UserID        string    `bson:"userId" json:"userId"`
	Type          string    `bson:"type" json:"type"`
	Amount        float64   `bson:"amount" json:"amount"`
	Points        int       `bson:"points" json:"points"`
	Description   string    `bson:"description" json:"description"`
	ReservationID string    `bson:"reservationId,omitempty" json:"reservationId,omitempty"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
}
