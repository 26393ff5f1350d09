// Package analyzer derives rule-based urgency signals from a single
// issue snapshot: stagnation, blocking, a 1-10 priority, and a list of
// human-readable insights.
//
// Analysis is a pure function of the snapshot and the supplied clock
// time. It never fails: any sub-check that cannot be evaluated defaults
// to the safe answer (not stagnant, not blocked, priority 5).
package analyzer

import (
	"fmt"
	"strings"
	"time"

	"github.com/issuepilot/issuepilot/internal/types"
)

// StagnationDays is the minimum number of days without an update before
// an active issue is considered stagnant.
const StagnationDays = 3

// AgeBoostDays is the age after which an issue gets a +1 priority boost.
const AgeBoostDays = 7

// holdLabels mark an issue as intentionally parked; their presence
// suppresses the stagnation signal.
var holdLabels = []string{"on hold", "waiting", "paused"}

// pausedKeywords in the title or description also suppress stagnation.
var pausedKeywords = []string{
	"paused",
	"on hold",
	"waiting for",
	"blocked on external",
	"pending approval",
}

// blockedKeywords in the title or description mark an issue as blocked.
var blockedKeywords = []string{
	"blocked",
	"blocker",
	"dependency",
	"waiting on",
	"needs",
	"requires",
}

// Analyze produces the urgency signal for one issue at the given time.
func Analyze(issue *types.IssueSnapshot, now time.Time) *types.AnalysisResult {
	if issue == nil {
		result, _ := types.NewAnalysisResult(5, false, false, []string{"no immediate concerns"})
		return result
	}

	stagnant, stagnantDays := checkStagnation(issue, now)
	blocked := checkBlocking(issue)
	priority := computePriority(issue, now, stagnant, blocked)
	insights := buildInsights(issue, priority, stagnant, stagnantDays, blocked)

	result, err := types.NewAnalysisResult(priority, stagnant, blocked, insights)
	if err != nil {
		// Should be unreachable: priority is clamped and insights are
		// never empty. Default to the neutral signal rather than panic.
		result, _ = types.NewAnalysisResult(5, false, false, []string{"no immediate concerns"})
	}
	return result
}

// checkStagnation reports whether the issue is stagnant and, if so, how
// many days it has gone without an update.
//
// An issue is stagnant iff it is in an in-progress-like state, carries
// no hold label, has no paused keyword in its text, and has not been
// updated for at least StagnationDays. A missing UpdatedAt timestamp
// reads as "not stagnant", not as infinitely old.
func checkStagnation(issue *types.IssueSnapshot, now time.Time) (bool, int) {
	if types.Bucket(issue.State) != types.BucketInProgress {
		return false, 0
	}
	if issue.UpdatedAt == nil {
		return false, 0
	}
	for _, hold := range holdLabels {
		if issue.HasLabel(hold) {
			return false, 0
		}
	}
	text := strings.ToLower(issue.SearchText())
	for _, kw := range pausedKeywords {
		if strings.Contains(text, kw) {
			return false, 0
		}
	}

	days := int(now.Sub(*issue.UpdatedAt).Hours() / 24)
	if days < StagnationDays {
		return false, 0
	}
	return true, days
}

// checkBlocking reports whether the issue looks blocked: a "blocked"
// label, a blocked keyword in its text, or an explicit blocks relation.
func checkBlocking(issue *types.IssueSnapshot) bool {
	if issue.HasLabel("blocked") {
		return true
	}
	text := strings.ToLower(issue.SearchText())
	for _, kw := range blockedKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	for _, rel := range issue.Relations {
		if strings.EqualFold(rel.Type, "blocks") {
			return true
		}
	}
	return false
}

// computePriority derives the 1-10 priority.
//
// Starting from a base of 5, priority labels apply in label iteration
// order: critical/P0, high/P1 and medium/P2 raise via max, while
// low/P3 lowers via min. The asymmetry is deliberate: a later
// high-priority label can always raise the value, but low-priority
// labels only cap it downward when nothing has raised it.
func computePriority(issue *types.IssueSnapshot, now time.Time, stagnant, blocked bool) int {
	priority := 5

	for _, label := range issue.Labels {
		switch {
		case containsAny(label, "critical", "p0"):
			priority = max(priority, 10)
		case containsAny(label, "high", "p1"):
			priority = max(priority, 8)
		case containsAny(label, "medium", "p2"):
			priority = max(priority, 5)
		case containsAny(label, "low", "p3"):
			priority = min(priority, 3)
		}
	}

	if now.Sub(issue.CreatedAt).Hours() > AgeBoostDays*24 {
		priority++
	}
	if stagnant {
		priority += 2
	}
	if blocked {
		priority += 3
	}
	if types.Bucket(issue.State) == types.BucketInProgress {
		priority++
	}

	if priority > 10 {
		priority = 10
	}
	if priority < 1 {
		priority = 1
	}
	return priority
}

// buildInsights emits the ordered, human-readable insight strings.
// At least one string is always present.
func buildInsights(issue *types.IssueSnapshot, priority int, stagnant bool, stagnantDays int, blocked bool) []string {
	var insights []string

	if stagnant {
		insights = append(insights, fmt.Sprintf("no activity for %d days", stagnantDays))
	}
	if blocked {
		insights = append(insights, "appears blocked - investigate dependencies")
	}
	if priority >= 8 {
		insights = append(insights, "high priority - recommend immediate action")
	}
	if strings.EqualFold(strings.TrimSpace(issue.State), "backlog") && priority >= 7 {
		insights = append(insights, "high priority but still in backlog - consider moving to in progress")
	}

	if len(insights) == 0 {
		insights = append(insights, "no immediate concerns")
	}
	return insights
}

func containsAny(label string, substrs ...string) bool {
	label = strings.ToLower(label)
	for _, s := range substrs {
		if strings.Contains(label, s) {
			return true
		}
	}
	return false
}
