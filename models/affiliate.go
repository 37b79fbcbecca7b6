package models

import "time"

const (
	CodeUnclaimed = "unclaimed"
	CodeClaimed   = "claimed"
)

// PreClaimAffiliateCode is an admin-issued code that is handed out before its owner
// has an account.
type PreClaimAffiliateCode struct {
	ID            string     `bson:"id" json:"id"`
	Code          string     `bson:"code" json:"code"`
	Status        string     `bson:"status" json:"status"`
	AssignedEmail *string    `bson:"assignedEmail" json:"assignedEmail"`
	ClaimedBy     *string    `bson:"claimedBy" json:"claimedBy"`
	ClaimedAt     *time.Time `bson:"claimedAt" json:"claimedAt"`
	Notes         string     `bson:"notes" json:"notes"`
	CreatedBy     string     `bson:"createdBy" json:"createdBy"`
	CreatedAt     time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// PreClaimCodeView adds derived fields for the admin listing.
type PreClaimCodeView struct {
	PreClaimAffiliateCode
	ReservationCount int64  `json:"reservationCount"`
	ClaimedByEmail   string `json:"claimedByEmail,omitempty"`
}

type GenerateCodesRequest struct {
	Count int    `json:"count" binding:"required,min=1,max=100"`
	Notes string `json:"notes"`
}

type AssignCodeRequest struct {
	CodeID string `json:"codeId" binding:"required"`
	Email  string `json:"email" binding:"required,email"`
}

type TransferCodeRequest struct {
	CodeID   string `json:"codeId" binding:"required"`
	NewEmail string `json:"newEmail" binding:"required,email"`
}

// ClaimResult tells the admin console whether the claim completed or was deferred
// until the email's owner signs in.
type ClaimResult struct {
	Code                PreClaimAffiliateCode `json:"code"`
	Deferred            bool                  `json:"deferred"`
	UserID              string                `json:"userId,omitempty"`
	ReservationsUpdated int64                 `json:"reservationsUpdated"`
}

type TransferResult struct {
	Code                PreClaimAffiliateCode `json:"code"`
	PreviousOwnerID     string                `json:"previousOwnerId,omitempty"`
	NewOwnerID          string                `json:"newOwnerId,omitempty"`
	ReservationsUpdated int64                 `json:"reservationsUpdated"`
}
