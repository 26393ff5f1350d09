package analyzer

import (
	"strings"
	"testing"
	"time"

	"github.com/issuepilot/issuepilot/internal/types"
)

func daysAgo(now time.Time, days int) *time.Time {
	t := now.Add(-time.Duration(days) * 24 * time.Hour)
	return &t
}

func TestAnalyzePriorityAlwaysInRange(t *testing.T) {
	now := time.Now()
	issues := []*types.IssueSnapshot{
		{ID: "a", Title: "Blocked critical needs everything", State: "In Progress",
			Labels: []string{"P0", "blocked"}, CreatedAt: now.Add(-30 * 24 * time.Hour), UpdatedAt: daysAgo(now, 10)},
		{ID: "b", Title: "Tiny cleanup", State: "Backlog", Labels: []string{"low"}, CreatedAt: now},
		{ID: "c", Title: "Plain task", State: "Todo", CreatedAt: now},
		nil,
	}
	for _, issue := range issues {
		result := Analyze(issue, now)
		if result.Priority < 1 || result.Priority > 10 {
			t.Errorf("priority %d out of range for %+v", result.Priority, issue)
		}
		if len(result.Insights) == 0 {
			t.Errorf("expected at least one insight for %+v", issue)
		}
	}
}

// Scenario from the briefing pipeline: a stale P0 in progress.
func TestAnalyzeStaleUrgentInProgress(t *testing.T) {
	now := time.Now()
	issue := &types.IssueSnapshot{
		ID:        "ENG-10",
		Title:     "Checkout fails for returning customers",
		State:     "In Progress",
		Labels:    []string{"P0"},
		CreatedAt: now.Add(-10 * 24 * time.Hour),
		UpdatedAt: daysAgo(now, 5),
	}

	result := Analyze(issue, now)

	if !result.IsStagnant {
		t.Error("expected stagnant: in progress, 5 days idle, no hold markers")
	}
	if result.Priority != 10 {
		t.Errorf("expected priority 10 (P0 floor dominates), got %d", result.Priority)
	}
	if result.IsBlocked {
		t.Error("expected not blocked: no blocking keywords or labels")
	}
}

func TestStagnation(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		issue types.IssueSnapshot
		want  bool
	}{
		{
			name: "idle in progress is stagnant",
			issue: types.IssueSnapshot{
				ID: "a", Title: "Work", State: "In Progress",
				CreatedAt: now, UpdatedAt: daysAgo(now, 4),
			},
			want: true,
		},
		{
			name: "recently updated is not stagnant",
			issue: types.IssueSnapshot{
				ID: "a", Title: "Work", State: "In Progress",
				CreatedAt: now, UpdatedAt: daysAgo(now, 1),
			},
			want: false,
		},
		{
			name: "backlog issue is never stagnant",
			issue: types.IssueSnapshot{
				ID: "a", Title: "Work", State: "Backlog",
				CreatedAt: now, UpdatedAt: daysAgo(now, 30),
			},
			want: false,
		},
		{
			name: "hold label suppresses stagnation",
			issue: types.IssueSnapshot{
				ID: "a", Title: "Work", State: "In Progress", Labels: []string{"On Hold"},
				CreatedAt: now, UpdatedAt: daysAgo(now, 10),
			},
			want: false,
		},
		{
			name: "paused keyword suppresses stagnation",
			issue: types.IssueSnapshot{
				ID: "a", Title: "Work", Description: "Pending approval from legal",
				State: "In Progress", CreatedAt: now, UpdatedAt: daysAgo(now, 10),
			},
			want: false,
		},
		{
			name: "missing updated_at reads as not stagnant",
			issue: types.IssueSnapshot{
				ID: "a", Title: "Work", State: "In Progress", CreatedAt: now,
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Analyze(&tt.issue, now)
			if result.IsStagnant != tt.want {
				t.Errorf("IsStagnant = %v, want %v", result.IsStagnant, tt.want)
			}
		})
	}
}

func TestBlocking(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		issue types.IssueSnapshot
		want  bool
	}{
		{
			name:  "blocked label",
			issue: types.IssueSnapshot{ID: "a", Title: "Work", Labels: []string{"blocked-on-infra"}, CreatedAt: now},
			want:  true,
		},
		{
			name:  "blocker keyword in title",
			issue: types.IssueSnapshot{ID: "a", Title: "Release blocker: crash on boot", CreatedAt: now},
			want:  true,
		},
		{
			name:  "waiting on keyword in description",
			issue: types.IssueSnapshot{ID: "a", Title: "Migrate DB", Description: "waiting on ops", CreatedAt: now},
			want:  true,
		},
		{
			name: "blocks relation",
			issue: types.IssueSnapshot{
				ID: "a", Title: "Work", CreatedAt: now,
				Relations: []types.Relation{{Type: "blocks", IssueID: "ENG-9"}},
			},
			want: true,
		},
		{
			name:  "clean issue",
			issue: types.IssueSnapshot{ID: "a", Title: "Polish docs page", CreatedAt: now},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Analyze(&tt.issue, now)
			if result.IsBlocked != tt.want {
				t.Errorf("IsBlocked = %v, want %v", result.IsBlocked, tt.want)
			}
		})
	}
}

func TestPriorityLabelAsymmetry(t *testing.T) {
	now := time.Now()

	// Low label caps downward only while nothing has raised the value:
	// once a later critical label raises it, low cannot pull it back.
	lowThenCritical := &types.IssueSnapshot{
		ID: "a", Title: "Work", State: "Todo",
		Labels: []string{"low", "critical"}, CreatedAt: now,
	}
	if got := Analyze(lowThenCritical, now).Priority; got != 10 {
		t.Errorf("low then critical: got %d, want 10", got)
	}

	// Min/max apply repeatedly in label iteration order, so a low label
	// that comes after critical does pull the running value down.
	criticalThenLow := &types.IssueSnapshot{
		ID: "a", Title: "Work", State: "Todo",
		Labels: []string{"critical", "low"}, CreatedAt: now,
	}
	if got := Analyze(criticalThenLow, now).Priority; got != 3 {
		t.Errorf("critical then low: got %d, want 3 (min applies to running value)", got)
	}

	lowOnly := &types.IssueSnapshot{
		ID: "a", Title: "Work", State: "Todo",
		Labels: []string{"P3"}, CreatedAt: now,
	}
	if got := Analyze(lowOnly, now).Priority; got != 3 {
		t.Errorf("low only: got %d, want 3", got)
	}
}

func TestInsights(t *testing.T) {
	now := time.Now()

	neutral := Analyze(&types.IssueSnapshot{ID: "a", Title: "Tidy readme", State: "Todo", CreatedAt: now}, now)
	if len(neutral.Insights) != 1 || neutral.Insights[0] != "no immediate concerns" {
		t.Errorf("expected single neutral insight, got %v", neutral.Insights)
	}

	stale := Analyze(&types.IssueSnapshot{
		ID: "a", Title: "Work", State: "In Progress",
		CreatedAt: now.Add(-20 * 24 * time.Hour), UpdatedAt: daysAgo(now, 6),
	}, now)
	found := false
	for _, ins := range stale.Insights {
		if strings.Contains(ins, "no activity for 6 days") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected stagnation insight with day count, got %v", stale.Insights)
	}

	backlogUrgent := Analyze(&types.IssueSnapshot{
		ID: "a", Title: "Work", State: "Backlog", Labels: []string{"P1"}, CreatedAt: now,
	}, now)
	found = false
	for _, ins := range backlogUrgent.Insights {
		if strings.Contains(ins, "consider moving to in progress") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected backlog insight, got %v", backlogUrgent.Insights)
	}
}
