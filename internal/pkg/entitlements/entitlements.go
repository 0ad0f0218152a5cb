package entitlements

import "strings"

type Tier string

const (
	TierFree          Tier = "free"
	TierPaid          Tier = "paid"
	TierInstitutional Tier = "institutional"
)

// Normalize maps a stored tier string onto a known Tier, defaulting to free.
func Normalize(tier string) Tier {
	switch Tier(strings.ToLower(tier)) {
	case TierPaid:
		return TierPaid
	case TierInstitutional:
		return TierInstitutional
	default:
		return TierFree
	}
}

// CanUseCareerTools reports whether the paid feature set (resume analysis,
// roadmaps, job matching) is available on the given tier.
func CanUseCareerTools(tier Tier) bool {
	return tier == TierPaid || tier == TierInstitutional
}

// RoadmapLimit returns how many AI career roadmaps a user may keep per tier.
func RoadmapLimit(tier Tier) int {
	switch tier {
	case TierInstitutional:
		return 10
	case TierPaid:
		return 5
	default:
		return 1
	}
}

// JobAlertLimit returns how many saved job alerts a user may have per tier.
func JobAlertLimit(tier Tier) int {
	switch tier {
	case TierInstitutional, TierPaid:
		return 20
	default:
		return 3
	}
}
