package models

import "time"

const (
	AccountTypeBank    = "bank"
	AccountTypeEWallet = "ewallet"
)

const (
	WithdrawalPending   = "pending"
	WithdrawalApproved  = "approved"
	WithdrawalRejected  = "rejected"
	WithdrawalCompleted = "completed"
)

// BankAccount is a payout destination, created on first use.
type BankAccount struct {
	ID                string    `bson:"id" json:"id"`
	UserID            string    `bson:"userId" json:"userId"`
	Type              string    `bson:"type" json:"type"`
	BankName          string    `bson:"bankName" json:"bankName"`
	AccountNumber     string    `bson:"accountNumber" json:"accountNumber"`
	AccountHolderName string    `bson:"accountHolderName" json:"accountHolderName"`
	CreatedAt         time.Time `bson:"createdAt" json:"createdAt"`
}

// Withdrawal moves affiliate earnings out of the portal. The amount leaves
// User.TotalEarnings when the request is made.
type Withdrawal struct {
	ID            string     `bson:"id" json:"id"`
	UserID        string     `bson:"userId" json:"userId"`
	BankAccountID string     `bson:"bankAccountId" json:"bankAccountId"`
	Amount        float64    `bson:"amount" json:"amount"`
	Status        string     `bson:"status" json:"status"`
	RequestDate   time.Time  `bson:"requestDate" json:"requestDate"`
	ProcessedDate *time.Time `bson:"processedDate" json:"processedDate"`
	ProcessedBy   *string    `bson:"processedBy" json:"processedBy"`
	AdminNotes    string     `bson:"adminNotes" json:"adminNotes"`

	BankAccount *BankAccount `bson:"-" json:"bankAccount,omitempty"`
	User        *User        `bson:"-" json:"user,omitempty"`
}

type WithdrawalRequest struct {
	Amount            float64 `json:"amount"`
	AccountType       string  `json:"accountType"`
	BankName          string  `json:"bankName"`
	AccountNumber     string  `json:"accountNumber"`
	AccountHolderName string  `json:"accountHolderName"`
}

type WithdrawalStatusUpdate struct {
	ID         string `json:"id" binding:"required"`
	Status     string `json:"status" binding:"required"`
	AdminNotes string `json:"adminNotes"`
}

type WithdrawalSummary struct {
	Withdrawals   []Withdrawal `json:"withdrawals"`
	TotalEarnings float64      `json:"totalEarnings"`
}
