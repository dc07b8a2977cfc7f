package rules

// Tier is the warning/suspension band for a qualifying-yellow count.
type Tier string

// Status tiers, highest first.
const (
	TierTriggered73 Tier = "suspension-triggered-7.3"
	TierWarning73   Tier = "warning-near-7.3"
	TierTriggered72 Tier = "suspension-triggered-7.2"
	TierWarning72   Tier = "warning-near-7.2"
	TierTriggered71 Tier = "suspension-triggered-7.1"
	TierWarning71   Tier = "warning-near-7.1"
	TierClean       Tier = "clean"
)

// Status is the classification of a yellow count.
type Status struct {
	Tier               Tier `json:"tier"`
	NextThresholdDelta int  `json:"next_threshold_delta"`
}

// ClassifyYellowCount maps a qualifying-yellow count to its tier and the
// number of further yellows until the next threshold. Negative counts are
// treated as zero.
func ClassifyYellowCount(count int) Status {
	if count < 0 {
		count = 0
	}
	return Status{Tier: tierFor(count), NextThresholdDelta: YellowsUntilNext(count)}
}

func tierFor(count int) Tier {
	switch {
	case count >= 7:
		return TierTriggered73
	case count == 6:
		return TierWarning73
	case count >= 5:
		return TierTriggered72
	case count == 4:
		return TierWarning72
	case count >= 3:
		return TierTriggered71
	case count == 2:
		return TierWarning71
	default:
		return TierClean
	}
}

// YellowsUntilNext counts yellows until the next band change. From seven
// onward every yellow triggers, so the answer is always one.
func YellowsUntilNext(count int) int {
	switch {
	case count < 2:
		return 2 - count
	case count < 3:
		return 3 - count
	case count < 5:
		return 5 - count
	case count < 7:
		return 7 - count
	default:
		return 1
	}
}

// Triggered reports whether the tier marks a reached threshold.
func (t Tier) Triggered() bool {
	return t == TierTriggered71 || t == TierTriggered72 || t == TierTriggered73
}
