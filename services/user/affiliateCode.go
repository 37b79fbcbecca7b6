package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"glowclinic/database/repository"
	"glowclinic/models"
	"glowclinic/services/affiliate"
	"glowclinic/utils"

	"go.uber.org/zap"
)

// nextUpdateAt returns when the user may change their code again, or nil if they may
// do so now. Users left with a transfer placeholder may always pick a new code.
func (s *DefaultUserService) nextUpdateAt(u *models.User) *time.Time {
	if u.AffiliateCodeUpdatedAt == nil || affiliate.IsTempCode(u.AffiliateCode) {
		return nil
	}
	next := u.AffiliateCodeUpdatedAt.Add(s.interval())
	if !s.now().Before(next) {
		return nil
	}
	return &next
}

func (s *DefaultUserService) codeInfo(u *models.User) *models.AffiliateCodeInfo {
	next := s.nextUpdateAt(u)
	history := u.AffiliateCodeHistory
	if history == nil {
		history = []string{}
	}
	return &models.AffiliateCodeInfo{
		AffiliateCode:      u.AffiliateCode,
		History:            history,
		LastUpdatedAt:      u.AffiliateCodeUpdatedAt,
		CanUpdate:          next == nil,
		NextUpdateAt:       next,
		UpdateIntervalDays: int(s.interval() / (24 * time.Hour)),
		TotalReferrals:     u.TotalReferrals,
		TotalEarnings:      u.TotalEarnings,
		Points:             u.Points,
	}
}

func (s *DefaultUserService) GetAffiliateCodeInfo(_ context.Context, u *models.User) (*models.AffiliateCodeInfo, error) {
	return s.codeInfo(u), nil
}

func (s *DefaultUserService) UpdateAffiliateCode(ctx context.Context, u *models.User, code string) (*models.AffiliateCodeInfo, error) {
	code = affiliate.NormalizeCode(code)
	if !affiliate.ValidCustomCode(code) {
		return nil, utils.NewBadRequest("affiliate code must be 4 to 12 letters or digits")
	}
	if code == u.AffiliateCode {
		return nil, utils.NewBadRequest("new affiliate code must differ from the current one")
	}
	if next := s.nextUpdateAt(u); next != nil {
		return nil, utils.NewBadRequest(fmt.Sprintf(
			"affiliate code can only be changed once every %d days; next change allowed after %s",
			int(s.interval()/(24*time.Hour)), next.Format("2006-01-02")))
	}
	for _, old := range u.AffiliateCodeHistory {
		if old == code {
			return nil, utils.NewBadRequest("you have used this affiliate code before")
		}
	}
	free, err := s.Codes.IsCodeAvailable(ctx, code)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, utils.NewConflict("affiliate code is already in use")
	}

	now := s.now()
	if u.AffiliateCode == "" {
		err = s.Repo.SetAffiliateCode(ctx, u.ID, code)
	} else {
		var changed bool
		changed, err = s.Repo.ChangeAffiliateCode(ctx, u.ID, u.AffiliateCode, code, now)
		if err == nil && !changed {
			return nil, utils.NewConflict("affiliate code changed by another request, reload and try again")
		}
	}
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, utils.NewConflict("affiliate code is already in use")
		}
		return nil, err
	}

	s.logger().Info("Affiliate code changed",
		zap.String("userId", u.ID),
		zap.String("from", u.AffiliateCode),
		zap.String("to", code))

	updated, err := s.Repo.GetByID(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, utils.NewNotFound("user not found")
	}
	*u = *updated
	return s.codeInfo(u), nil
}
