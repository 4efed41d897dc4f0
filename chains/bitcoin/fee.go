package bitcoin

import (
	"fmt"
	"strings"
)

// FeePriority selects how quickly a payment should confirm.
type FeePriority string

const (
	PrioritySlow   FeePriority = "slow"
	PriorityMedium FeePriority = "medium"
	PriorityFast   FeePriority = "fast"
)

// ParsePriority accepts slow, medium or fast. Empty means medium.
func ParsePriority(s string) (FeePriority, error) {
	switch p := FeePriority(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PriorityMedium, nil
	case PrioritySlow, PriorityMedium, PriorityFast:
		return p, nil
	default:
		return "", fmt.Errorf("unknown fee priority %q", s)
	}
}

// TargetBlocks is the confirmation target used when asking for an estimate.
func (p FeePriority) TargetBlocks() int64 {
	switch p {
	case PrioritySlow:
		return 144
	case PriorityFast:
		return 1
	default:
		return 6
	}
}
