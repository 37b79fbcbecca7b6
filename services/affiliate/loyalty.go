package affiliate

import "sort"

const (
	LevelBronze   = "Bronze"
	LevelSilver   = "Silver"
	LevelGold     = "Gold"
	LevelPlatinum = "Platinum"
)

// LoyaltyTier is the minimum points needed for a level.
type LoyaltyTier struct {
	Name      string `json:"name"`
	MinPoints int    `json:"minPoints"`
}

// LoyaltyPolicy maps loyalty points to a level name. Tiers are kept sorted by
// descending threshold; points below every tier fall back to Bronze.
type LoyaltyPolicy struct {
	tiers []LoyaltyTier
}

// NewLoyaltyPolicy builds a policy from the Silver, Gold and Platinum thresholds.
func NewLoyaltyPolicy(silver, gold, platinum int) LoyaltyPolicy {
	return NewLoyaltyPolicyFromTiers([]LoyaltyTier{
		{Name: LevelPlatinum, MinPoints: platinum},
		{Name: LevelGold, MinPoints: gold},
		{Name: LevelSilver, MinPoints: silver},
	})
}

func NewLoyaltyPolicyFromTiers(tiers []LoyaltyTier) LoyaltyPolicy {
	sorted := make([]LoyaltyTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MinPoints > sorted[j].MinPoints })
	return LoyaltyPolicy{tiers: sorted}
}

// DefaultLoyaltyPolicy uses Silver at 1000, Gold at 5000 and Platinum at 10000.
func DefaultLoyaltyPolicy() LoyaltyPolicy {
	return NewLoyaltyPolicy(1000, 5000, 10000)
}

// Level returns the highest tier whose threshold points reaches.
func (p LoyaltyPolicy) Level(points int) string {
	for _, t := range p.tiers {
		if points >= t.MinPoints {
			return t.Name
		}
	}
	return LevelBronze
}

func (p LoyaltyPolicy) Tiers() []LoyaltyTier {
	out := make([]LoyaltyTier, len(p.tiers))
	copy(out, p.tiers)
	return out
}
