package reservation

import (
	"context"
	"time"

	affiliateRepo "glowclinic/database/repository/affiliate"
	reservationRepo "glowclinic/database/repository/reservation"
	transactionRepo "glowclinic/database/repository/transaction"
	treatmentRepo "glowclinic/database/repository/treatment"
	userRepo "glowclinic/database/repository/user"
	"glowclinic/models"
	"glowclinic/services/affiliate"

	"go.uber.org/zap"
)

type ReservationService interface {
	// Customer-facing
	Create(ctx context.Context, user *models.User, req models.CreateReservationRequest) (*models.Reservation, error)
	ListForUser(ctx context.Context, user *models.User) ([]models.Reservation, error)

	// Front office
	AdminList(ctx context.Context, filter models.ReservationFilter) (*models.ReservationPage, error)
	AdminUpdateStatus(ctx context.Context, update models.ReservationStatusUpdate) (*models.Reservation, error)
	AdminAddReferrer(ctx context.Context, update models.ReservationReferrerUpdate) (*models.Reservation, error)
	AdminEdit(ctx context.Context, edit models.ReservationEdit) (*models.Reservation, error)
}

// DefaultReservationService is the production implementation.
type DefaultReservationService struct {
	Reservations reservationRepo.ReservationRepository
	Treatments   treatmentRepo.TreatmentRepository
	Users        userRepo.UserRepository
	Transactions transactionRepo.TransactionRepository
	Codes        affiliateRepo.PreClaimCodeRepository
	// CommissionRate defaults to affiliate.DefaultCommissionRate.
	CommissionRate float64
	Logger         *zap.Logger
	Now            func() time.Time
}

func (s *DefaultReservationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultReservationService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.L()
}

func (s *DefaultReservationService) rate() float64 {
	if s.CommissionRate > 0 {
		return s.CommissionRate
	}
	return affiliate.DefaultCommissionRate
}
