package types

import "strings"

// StateBucket is the coarse lifecycle category derived from an issue's
// free-text state. Upstream trackers allow arbitrary workflow state
// names, so the engine buckets them by keyword rather than exact match.
type StateBucket string

const (
	BucketOpen       StateBucket = "open"
	BucketInProgress StateBucket = "in_progress"
	BucketBlocked    StateBucket = "blocked"
	BucketPaused     StateBucket = "paused"
	BucketDone       StateBucket = "done"
)

// inactiveStates are states excluded from full-corpus duplicate scans.
var inactiveStates = map[string]bool{
	"done":      true,
	"completed": true,
	"canceled":  true,
	"cancelled": true,
	"archived":  true,
}

// Bucket categorizes a free-text state into a StateBucket.
//
// Precedence: done-like states win, then blocked, then paused, then
// in-progress, then everything else is open. "blocked" must be checked
// before "in progress" because states like "Blocked in progress" exist
// in the wild.
func Bucket(state string) StateBucket {
	s := strings.ToLower(strings.TrimSpace(state))
	switch {
	case inactiveStates[s] || strings.Contains(s, "done") || strings.Contains(s, "complete") ||
		strings.Contains(s, "cancel") || strings.Contains(s, "archiv"):
		return BucketDone
	case strings.Contains(s, "block"):
		return BucketBlocked
	case strings.Contains(s, "hold") || strings.Contains(s, "pause") || strings.Contains(s, "wait"):
		return BucketPaused
	case strings.Contains(s, "progress") || strings.Contains(s, "started") || strings.Contains(s, "active") ||
		strings.Contains(s, "doing") || strings.Contains(s, "review"):
		return BucketInProgress
	default:
		return BucketOpen
	}
}

// IsInactive reports whether a state is in the fixed inactive set used
// by the duplicate scanner's active-only pre-filter.
func IsInactive(state string) bool {
	return inactiveStates[strings.ToLower(strings.TrimSpace(state))]
}

// StateRank assigns each lifecycle state a numeric rank used by the
// duplicate merge-suggestion heuristic. Higher rank means further along;
// the lower-rank issue is the suggested merge source.
func StateRank(state string) int {
	switch strings.ToLower(strings.TrimSpace(state)) {
	case "in progress", "in_progress", "in-progress":
		return 5
	case "started":
		return 4
	case "active":
		return 3
	case "todo", "to do":
		return 2
	case "backlog":
		return 1
	default:
		return 0
	}
}
