package types

import "fmt"

// AnalysisResult is the rule-based urgency signal for one issue.
// It is paired with the snapshot explicitly rather than attached to it,
// so snapshots stay immutable through the ranking pipeline.
type AnalysisResult struct {
	Priority   int      `json:"priority"` // 1 (lowest) .. 10 (highest)
	IsStagnant bool     `json:"is_stagnant"`
	IsBlocked  bool     `json:"is_blocked"`
	Insights   []string `json:"insights"`
}

// NewAnalysisResult constructs an AnalysisResult, rejecting out-of-range
// priorities. All analyzer output goes through this constructor.
func NewAnalysisResult(priority int, stagnant, blocked bool, insights []string) (*AnalysisResult, error) {
	if priority < 1 || priority > 10 {
		return nil, fmt.Errorf("priority must be between 1 and 10 (got %d)", priority)
	}
	if len(insights) == 0 {
		return nil, fmt.Errorf("at least one insight is required")
	}
	return &AnalysisResult{
		Priority:   priority,
		IsStagnant: stagnant,
		IsBlocked:  blocked,
		Insights:   insights,
	}, nil
}

// RankedIssue pairs a snapshot with its analysis and personalized score.
type RankedIssue struct {
	Issue        *IssueSnapshot  `json:"issue"`
	Analysis     *AnalysisResult `json:"analysis"`
	Personalized float64         `json:"personalized_priority"` // 0 .. 10
}
