package affiliate

import (
	"context"
	"time"

	affiliateRepo "glowclinic/database/repository/affiliate"
	reservationRepo "glowclinic/database/repository/reservation"
	userRepo "glowclinic/database/repository/user"
	"glowclinic/models"

	"go.uber.org/zap"
)

// CodeService manages admin-issued affiliate codes and their ownership.
type CodeService interface {
	ListCodes(ctx context.Context, status string) ([]models.PreClaimCodeView, error)
	GenerateCodes(ctx context.Context, count int, notes, createdBy string) ([]models.PreClaimAffiliateCode, error)
	AssignCode(ctx context.Context, codeID, email string) (*models.PreClaimAffiliateCode, error)
	ClaimCode(ctx context.Context, codeID, email string) (*models.ClaimResult, error)
	TransferCode(ctx context.Context, codeID, newEmail string) (*models.TransferResult, error)
	DeleteCode(ctx context.Context, codeID string) error

	// ClaimAssignedCode completes a deferred claim for a user who just signed in. It
	// returns the claimed code, or "" when nothing was assigned to the user's email.
	ClaimAssignedCode(ctx context.Context, user *models.User) (string, error)
	// IsCodeAvailable reports whether code is unused by users and by pre-claim codes.
	IsCodeAvailable(ctx context.Context, code string) (bool, error)
}

// DefaultCodeService is the production implementation.
type DefaultCodeService struct {
	Codes        affiliateRepo.PreClaimCodeRepository
	Users        userRepo.UserRepository
	Reservations reservationRepo.ReservationRepository
	Logger       *zap.Logger
	Now          func() time.Time
}

func (s *DefaultCodeService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultCodeService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.L()
}
