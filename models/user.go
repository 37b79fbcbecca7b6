// models/user.go
package models

import "time"

// User is a portal customer, affiliate or admin. ExternalID is the identity
// provider's subject id; ID is ours.
type User struct {
	ID                     string     `bson:"id" json:"id"`
	ExternalID             string     `bson:"externalId" json:"externalId"`
	Email                  string     `bson:"email" json:"email"`
	FirstName              string     `bson:"firstName" json:"firstName"`
	LastName               string     `bson:"lastName" json:"lastName"`
	AffiliateCode          string     `bson:"affiliateCode,omitempty" json:"affiliateCode,omitempty"`
	AffiliateCodeHistory   []string   `bson:"affiliateCodeHistory" json:"affiliateCodeHistory"`
	AffiliateCodeUpdatedAt *time.Time `bson:"affiliateCodeUpdatedAt,omitempty" json:"affiliateCodeUpdatedAt,omitempty"`
	IsAdmin                bool       `bson:"isAdmin" json:"isAdmin"`
	LoyaltyPoints          int        `bson:"loyaltyPoints" json:"loyaltyPoints"`
	Points                 int        `bson:"points" json:"points"`
	TotalEarnings          float64    `bson:"totalEarnings" json:"totalEarnings"`
	TotalReferrals         int        `bson:"totalReferrals" json:"totalReferrals"`
	CreatedAt              time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt              time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// UserProfile is the self view returned by /user/me.
type UserProfile struct {
	User
	LoyaltyLevel string `json:"loyaltyLevel"`
}

// Identity is what a verified session token tells us about the caller.
type Identity struct {
	Subject   string `json:"subject"`
	SessionID string `json:"sessionId,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// SyncUserRequest carries profile fields the session token may not include.
type SyncUserRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// AffiliateCodeInfo backs GET /user/affiliate-code.
type AffiliateCodeInfo struct {
	AffiliateCode      string     `json:"affiliateCode"`
	History            []string   `json:"history"`
	LastUpdatedAt      *time.Time `json:"lastUpdatedAt,omitempty"`
	CanUpdate          bool       `json:"canUpdate"`
	NextUpdateAt       *time.Time `json:"nextUpdateAt,omitempty"`
	UpdateIntervalDays int        `json:"updateIntervalDays"`
	TotalReferrals     int        `json:"totalReferrals"`
	TotalEarnings      float64    `json:"totalEarnings"`
	Points             int        `json:"points"`
}

type UpdateAffiliateCodeRequest struct {
	AffiliateCode string `json:"affiliateCode" binding:"required"`
}
