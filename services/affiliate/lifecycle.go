package affiliate

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"

	"glowclinic/database/repository"
	"glowclinic/models"
	"glowclinic/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxGenerateCount = 100

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", utils.NewBadRequest("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", utils.NewBadRequest("email is not valid")
	}
	return email, nil
}

func (s *DefaultCodeService) IsCodeAvailable(ctx context.Context, code string) (bool, error) {
	owner, err := s.Users.GetByAffiliateCode(ctx, code)
	if err != nil {
		return false, err
	}
	if owner != nil {
		return false, nil
	}
	existing, err := s.Codes.GetByCode(ctx, code)
	if err != nil {
		return false, err
	}
	return existing == nil, nil
}

func (s *DefaultCodeService) ListCodes(ctx context.Context, status string) ([]models.PreClaimCodeView, error) {
	if status != "" && status != models.CodeClaimed && status != models.CodeUnclaimed {
		return nil, utils.NewBadRequest("status must be claimed or unclaimed")
	}
	codes, err := s.Codes.List(ctx, status)
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, len(codes))
	var claimants []string
	for _, c := range codes {
		values = append(values, c.Code)
		if c.ClaimedBy != nil {
			claimants = append(claimants, *c.ClaimedBy)
		}
	}
	counts, err := s.Reservations.CountByReferralCodes(ctx, values)
	if err != nil {
		return nil, err
	}
	owners, err := s.Users.GetByIDs(ctx, claimants)
	if err != nil {
		return nil, err
	}

	views := make([]models.PreClaimCodeView, 0, len(codes))
	for _, c := range codes {
		view := models.PreClaimCodeView{PreClaimAffiliateCode: c, ReservationCount: counts[c.Code]}
		if c.ClaimedBy != nil {
			if u, ok := owners[*c.ClaimedBy]; ok {
				view.ClaimedByEmail = u.Email
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *DefaultCodeService) GenerateCodes(ctx context.Context, count int, notes, createdBy string) ([]models.PreClaimAffiliateCode, error) {
	if count < 1 || count > maxGenerateCount {
		return nil, utils.NewBadRequest(fmt.Sprintf("count must be between 1 and %d", maxGenerateCount))
	}

	out := make([]models.PreClaimAffiliateCode, 0, count)
	for len(out) < count {
		code, err := s.createUniqueCode(ctx, notes, createdBy)
		if err != nil {
			return out, err
		}
		out = append(out, *code)
	}
	s.logger().Info("Generated pre-claim codes", zap.Int("count", count), zap.String("createdBy", createdBy))
	return out, nil
}

func (s *DefaultCodeService) createUniqueCode(ctx context.Context, notes, createdBy string) (*models.PreClaimAffiliateCode, error) {
	for attempt := 0; attempt < MaxCodeAttempts; attempt++ {
		value := GeneratePreClaimCode()
		free, err := s.IsCodeAvailable(ctx, value)
		if err != nil {
			return nil, err
		}
		if !free {
			continue
		}
		now := s.now()
		code := &models.PreClaimAffiliateCode{
			ID:        uuid.New().String(),
			Code:      value,
			Status:    models.CodeUnclaimed,
			Notes:     notes,
			CreatedBy: createdBy,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.Codes.Create(ctx, code); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				continue
			}
			return nil, err
		}
		return code, nil
	}
	return nil, fmt.Errorf("could not generate a unique pre-claim code after %d attempts", MaxCodeAttempts)
}

func (s *DefaultCodeService) getCode(ctx context.Context, codeID string) (*models.PreClaimAffiliateCode, error) {
	if codeID == "" {
		return nil, utils.NewBadRequest("codeId is required")
	}
	code, err := s.Codes.GetByID(ctx, codeID)
	if err != nil {
		return nil, err
	}
	if code == nil {
		return nil, utils.NewNotFound("affiliate code not found")
	}
	return code, nil
}

func (s *DefaultCodeService) AssignCode(ctx context.Context, codeID, email string) (*models.PreClaimAffiliateCode, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	code, err := s.getCode(ctx, codeID)
	if err != nil {
		return nil, err
	}
	if code.Status == models.CodeClaimed {
		return nil, utils.NewConflict("code has already been claimed")
	}
	if code.AssignedEmail != nil {
		return nil, utils.NewConflict("code is already assigned to " + *code.AssignedEmail)
	}
	ok, err := s.Codes.Assign(ctx, code.ID, email)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, utils.NewConflict("code was modified by another request")
	}
	return s.Codes.GetByID(ctx, code.ID)
}

func (s *DefaultCodeService) ClaimCode(ctx context.Context, codeID, email string) (*models.ClaimResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	code, err := s.getCode(ctx, codeID)
	if err != nil {
		return nil, err
	}
	if code.Status == models.CodeClaimed {
		return nil, utils.NewConflict("code has already been claimed")
	}

	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// No account yet: remember the email and finish on the user's first sign-in.
		ok, err := s.Codes.SetAssignedEmail(ctx, code.ID, email)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, utils.NewConflict("code was modified by another request")
		}
		updated, err := s.Codes.GetByID(ctx, code.ID)
		if err != nil {
			return nil, err
		}
		return &models.ClaimResult{Code: *updated, Deferred: true}, nil
	}

	backfilled, err := s.claimForUser(ctx, code, user)
	if err != nil {
		return nil, err
	}
	updated, err := s.Codes.GetByID(ctx, code.ID)
	if err != nil {
		return nil, err
	}
	return &models.ClaimResult{Code: *updated, UserID: user.ID, ReservationsUpdated: backfilled}, nil
}

func (s *DefaultCodeService) ClaimAssignedCode(ctx context.Context, user *models.User) (string, error) {
	if user.Email == "" {
		return "", nil
	}
	code, err := s.Codes.FindAssignedUnclaimed(ctx, user.Email)
	if err != nil || code == nil {
		return "", err
	}
	if _, err := s.claimForUser(ctx, code, user); err != nil {
		return "", err
	}
	return code.Code, nil
}

// claimForUser flips the code to claimed first so two concurrent claims cannot both
// succeed, then moves the code onto the user and back-fills unattributed reservations.
func (s *DefaultCodeService) claimForUser(ctx context.Context, code *models.PreClaimAffiliateCode, user *models.User) (int64, error) {
	holder, err := s.Users.GetByAffiliateCode(ctx, code.Code)
	if err != nil {
		return 0, err
	}
	if holder != nil && holder.ID != user.ID {
		return 0, utils.NewConflict("code is already in use by another user")
	}
	if usedBefore(user, code.Code) {
		return 0, utils.NewConflict("user has used this affiliate code before")
	}

	ok, err := s.Codes.MarkClaimed(ctx, code.ID, user.ID, user.Email, s.now())
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, utils.NewConflict("code has already been claimed")
	}

	if user.AffiliateCode != code.Code {
		if err := s.Users.SetAffiliateCode(ctx, user.ID, code.Code); err != nil {
			if _, rbErr := s.Codes.Release(ctx, code.ID, user.Email); rbErr != nil {
				s.logger().Error("Failed to release code after claim failure",
					zap.String("code", code.Code), zap.Error(rbErr))
			}
			if errors.Is(err, repository.ErrDuplicate) {
				return 0, utils.NewConflict("code is already in use by another user")
			}
			return 0, err
		}
		user.AffiliateCode = code.Code
	}

	n, err := s.Reservations.BackfillReferrer(ctx, code.Code, user.ID)
	if err != nil {
		return 0, err
	}
	s.logger().Info("Affiliate code claimed",
		zap.String("code", code.Code),
		zap.String("userId", user.ID),
		zap.Int64("reservationsBackfilled", n))
	return n, nil
}

// usedBefore reports whether code sits in u's history. A code never returns to a
// user who moved away from it.
func usedBefore(u *models.User, code string) bool {
	return u.AffiliateCode != code && slices.Contains(u.AffiliateCodeHistory, code)
}

func (s *DefaultCodeService) TransferCode(ctx context.Context, codeID, newEmail string) (*models.TransferResult, error) {
	newEmail, err := normalizeEmail(newEmail)
	if err != nil {
		return nil, err
	}
	code, err := s.getCode(ctx, codeID)
	if err != nil {
		return nil, err
	}
	if code.Status != models.CodeClaimed {
		return nil, utils.NewBadRequest("only claimed codes can be transferred")
	}

	current, err := s.Users.GetByAffiliateCode(ctx, code.Code)
	if err != nil {
		return nil, err
	}
	newOwner, err := s.Users.GetByEmail(ctx, newEmail)
	if err != nil {
		return nil, err
	}
	if current != nil && newOwner != nil && current.ID == newOwner.ID {
		return nil, utils.NewBadRequest("code already belongs to this user")
	}
	if newOwner != nil && usedBefore(newOwner, code.Code) {
		return nil, utils.NewConflict("user has used this affiliate code before")
	}

	result := &models.TransferResult{}
	if current != nil {
		if err := s.Users.SetAffiliateCode(ctx, current.ID, TempCode(current.ID)); err != nil {
			return nil, err
		}
		result.PreviousOwnerID = current.ID
	}

	if newOwner == nil {
		n, err := s.Reservations.RepointReferrer(ctx, code.Code, nil)
		if err != nil {
			return nil, err
		}
		ok, err := s.Codes.Release(ctx, code.ID, newEmail)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, utils.NewConflict("code was modified by another request")
		}
		result.ReservationsUpdated = n
	} else {
		if err := s.Users.SetAffiliateCode(ctx, newOwner.ID, code.Code); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, utils.NewConflict("code is already in use by another user")
			}
			return nil, err
		}
		n, err := s.Reservations.RepointReferrer(ctx, code.Code, &newOwner.ID)
		if err != nil {
			return nil, err
		}
		ok, err := s.Codes.UpdateClaimant(ctx, code.ID, newOwner.ID, newOwner.Email, s.now())
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, utils.NewConflict("code was modified by another request")
		}
		result.NewOwnerID = newOwner.ID
		result.ReservationsUpdated = n
	}

	updated, err := s.Codes.GetByID(ctx, code.ID)
	if err != nil {
		return nil, err
	}
	result.Code = *updated

	s.logger().Info("Affiliate code transferred",
		zap.String("code", code.Code),
		zap.String("from", result.PreviousOwnerID),
		zap.String("to", newEmail),
		zap.Int64("reservationsUpdated", result.ReservationsUpdated))
	return result, nil
}

func (s *DefaultCodeService) DeleteCode(ctx context.Context, codeID string) error {
	code, err := s.getCode(ctx, codeID)
	if err != nil {
		return err
	}
	if code.Status != models.CodeUnclaimed {
		return utils.NewBadRequest("claimed codes cannot be deleted")
	}
	counts, err := s.Reservations.CountByReferralCodes(ctx, []string{code.Code})
	if err != nil {
		return err
	}
	if counts[code.Code] > 0 {
		return utils.NewBadRequest("code has reservations and cannot be deleted")
	}
	ok, err := s.Codes.DeleteUnclaimed(ctx, code.ID)
	if err != nil {
		return err
	}
	if !ok {
		return utils.NewConflict("code was modified by another request")
	}
	return nil
}
