package user

import (
	"context"
	"time"

	reservationRepo "glowclinic/database/repository/reservation"
	transactionRepo "glowclinic/database/repository/transaction"
	userRepo "glowclinic/database/repository/user"
	"glowclinic/models"
	"glowclinic/services/affiliate"

	"go.uber.org/zap"
)

type UserService interface {
	// Identity sync
	SyncUser(ctx context.Context, identity models.Identity, req models.SyncUserRequest) (*models.User, error)
	GetBySubject(ctx context.Context, subject string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)

	// Self views
	Profile(ctx context.Context, user *models.User) models.UserProfile
	ListTransactions(ctx context.Context, user *models.User) ([]models.Transaction, error)
	ListReferrals(ctx context.Context, user *models.User) ([]models.Reservation, error)

	// Affiliate code self-service
	GetAffiliateCodeInfo(ctx context.Context, user *models.User) (*models.AffiliateCodeInfo, error)
	UpdateAffiliateCode(ctx context.Context, user *models.User, code string) (*models.AffiliateCodeInfo, error)
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo         userRepo.UserRepository
	Transactions transactionRepo.TransactionRepository
	Reservations reservationRepo.ReservationRepository
	Codes        affiliate.CodeService
	Loyalty      affiliate.LoyaltyPolicy
	// CodeUpdateInterval is the minimum time between self-service code changes.
	CodeUpdateInterval time.Duration
	Logger             *zap.Logger
	Now                func() time.Time
}

// DefaultCodeUpdateInterval is 90 days.
const DefaultCodeUpdateInterval = 90 * 24 * time.Hour

func (s *DefaultUserService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultUserService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.L()
}

func (s *DefaultUserService) interval() time.Duration {
	if s.CodeUpdateInterval > 0 {
		return s.CodeUpdateInterval
	}
	return DefaultCodeUpdateInterval
}
