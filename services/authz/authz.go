package authz

import (
	"context"
	"strings"

	userRepo "glowclinic/database/repository/user"
)

// AuthorizationPolicy is the single admin capability check.
type AuthorizationPolicy interface {
	IsAdmin(ctx context.Context, subjectID string) (bool, error)
}

// DefaultPolicy grants admin to subjects on the configured allow-list and to synced
// users flagged isAdmin.
type DefaultPolicy struct {
	allow map[string]struct{}
	Users userRepo.UserRepository
}

func NewPolicy(adminSubjectIDs []string, users userRepo.UserRepository) *DefaultPolicy {
	allow := make(map[string]struct{}, len(adminSubjectIDs))
	for _, id := range adminSubjectIDs {
		if id = strings.TrimSpace(id); id != "" {
			allow[id] = struct{}{}
		}
	}
	return &DefaultPolicy{allow: allow, Users: users}
}

func (p *DefaultPolicy) IsAdmin(ctx context.Context, subjectID string) (bool, error) {
	if subjectID == "" {
		return false, nil
	}
	if _, ok := p.allow[subjectID]; ok {
		return true, nil
	}
	if p.Users == nil {
		return false, nil
	}
	u, err := p.Users.GetByExternalID(ctx, subjectID)
	if err != nil {
		return false, err
	}
	return u != nil && u.IsAdmin, nil
}
