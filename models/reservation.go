package models

import "time"

const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCompleted = "completed"
	ReservationCancelled = "cancelled"
)

// ValidReservationStatus reports whether s is a known reservation status.
func ValidReservationStatus(s string) bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationCompleted, ReservationCancelled:
		return true
	}
	return false
}

// Reservation is a booked treatment. ReferredBy is the code the customer typed and is
// kept as history; ReferrerID is whoever currently owns that code, or nil.
type Reservation struct {
	ID               string     `bson:"id" json:"id"`
	UserID           string     `bson:"userId" json:"userId"`
	TreatmentID      string     `bson:"treatmentId" json:"treatmentId"`
	PatientName      string     `bson:"patientName" json:"patientName"`
	PatientEmail     string     `bson:"patientEmail" json:"patientEmail"`
	PatientPhone     string     `bson:"patientPhone" json:"patientPhone"`
	ReservationDate  string     `bson:"reservationDate" json:"reservationDate"`
	ReservationTime  string     `bson:"reservationTime" json:"reservationTime"`
	Notes            string     `bson:"notes" json:"notes"`
	ReferredBy       *string    `bson:"referredBy" json:"referredBy"`
	ReferrerID       *string    `bson:"referrerId" json:"referrerId"`
	OriginalPrice    float64    `bson:"originalPrice" json:"originalPrice"`
	FinalPrice       float64    `bson:"finalPrice" json:"finalPrice"`
	CommissionAmount float64    `bson:"commissionAmount" json:"commissionAmount"`
	CommissionPaid   bool       `bson:"commissionPaid" json:"commissionPaid"`
	Status           string     `bson:"status" json:"status"`
	CompletedAt      *time.Time `bson:"completedAt" json:"completedAt"`
	CreatedAt        time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time  `bson:"updatedAt" json:"updatedAt"`

	Treatment *Treatment `bson:"-" json:"treatment,omitempty"`
	User      *User      `bson:"-" json:"user,omitempty"`
}

// HasReferral reports whether a referral code is attached.
func (r *Reservation) HasReferral() bool {
	return r.ReferredBy != nil && *r.ReferredBy != ""
}

// HasReferrer reports whether the referral currently resolves to a user.
func (r *Reservation) HasReferrer() bool {
	return r.ReferrerID != nil && *r.ReferrerID != ""
}

type CreateReservationRequest struct {
	TreatmentID     string `json:"treatmentId" binding:"required"`
	PatientName     string `json:"patientName" binding:"required"`
	PatientEmail    string `json:"patientEmail" binding:"required"`
	PatientPhone    string `json:"patientPhone" binding:"required"`
	ReservationDate string `json:"reservationDate" binding:"required"`
	ReservationTime string `json:"reservationTime" binding:"required"`
	Notes           string `json:"notes"`
	ReferredBy      string `json:"referredBy"`
}

// ReservationStatusUpdate is the PATCH body of the front-office console.
type ReservationStatusUpdate struct {
	ID         string   `json:"id" binding:"required"`
	Status     string   `json:"status"`
	FinalPrice *float64 `json:"finalPrice"`
}

// ReservationReferrerUpdate is the PUT body: attach a referral after the fact.
type ReservationReferrerUpdate struct {
	ID            string `json:"id" binding:"required"`
	AffiliateCode string `json:"affiliateCode" binding:"required"`
}

// ReservationEdit is the POST body; nil fields are left alone. An empty AffiliateCode
// removes the referral.
type ReservationEdit struct {
	ID              string   `json:"id" binding:"required"`
	PatientName     *string  `json:"patientName"`
	PatientEmail    *string  `json:"patientEmail"`
	PatientPhone    *string  `json:"patientPhone"`
	ReservationDate *string  `json:"reservationDate"`
	ReservationTime *string  `json:"reservationTime"`
	TreatmentID     *string  `json:"treatmentId"`
	Status          *string  `json:"status"`
	Notes           *string  `json:"notes"`
	FinalPrice      *float64 `json:"finalPrice"`
	AffiliateCode   *string  `json:"affiliateCode"`
}

// ReservationFilter narrows the admin listing.
type ReservationFilter struct {
	Status   string
	Search   string
	Page     int
	PageSize int
}

type ReservationPage struct {
	Items    []Reservation `json:"items"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
}
