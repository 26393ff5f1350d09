package types

import (
	"strings"
	"testing"
	"time"
)

func TestIssueSnapshotValidate(t *testing.T) {
	tests := []struct {
		name        string
		snapshot    IssueSnapshot
		expectError bool
		errorMsg    string
	}{
		{
			name: "valid snapshot",
			snapshot: IssueSnapshot{
				ID:        "ENG-1",
				Title:     "Fix login timeout",
				Priority:  2,
				CreatedAt: time.Now(),
			},
			expectError: false,
		},
		{
			name:        "missing id",
			snapshot:    IssueSnapshot{Title: "Fix login timeout"},
			expectError: true,
			errorMsg:    "id is required",
		},
		{
			name:        "missing title",
			snapshot:    IssueSnapshot{ID: "ENG-1"},
			expectError: true,
			errorMsg:    "title is required",
		},
		{
			name: "title too long",
			snapshot: IssueSnapshot{
				ID:    "ENG-1",
				Title: strings.Repeat("x", 501),
			},
			expectError: true,
			errorMsg:    "500 characters or less",
		},
		{
			name: "priority out of range",
			snapshot: IssueSnapshot{
				ID:       "ENG-1",
				Title:    "Fix login timeout",
				Priority: 9,
			},
			expectError: true,
			errorMsg:    "priority must be between 0 and 4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.snapshot.Validate()
			if tt.expectError {
				if err == nil {
					t.Errorf("expected error containing %q, got nil", tt.errorMsg)
				} else if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errorMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestEngagementRecordValidate(t *testing.T) {
	valid := EngagementRecord{
		UserID:           "u1",
		IssueID:          "ENG-1",
		Kind:             InteractionView,
		InteractionCount: 1,
		LastInteraction:  time.Now(),
		Score:            0.5,
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := valid
	bad.Score = 1.2
	if err := bad.Validate(); err == nil {
		t.Error("expected error for score > 1.0")
	}

	bad = valid
	bad.InteractionCount = 0
	if err := bad.Validate(); err == nil {
		t.Error("expected error for interaction_count < 1")
	}

	bad = valid
	bad.Kind = "click"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unknown interaction kind")
	}

	bad = valid
	bad.Context = strings.Repeat("c", MaxContextLength+1)
	if err := bad.Validate(); err == nil {
		t.Error("expected error for over-long context")
	}
}

func TestPreferenceRecordValidate(t *testing.T) {
	valid := PreferenceRecord{
		UserID:     "u1",
		Type:       PreferenceTopic,
		Key:        "backend",
		Score:      0.6,
		Confidence: 0.5,
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := valid
	bad.Score = -0.1
	if err := bad.Validate(); err == nil {
		t.Error("expected error for negative score")
	}

	bad = valid
	bad.Confidence = 1.5
	if err := bad.Validate(); err == nil {
		t.Error("expected error for confidence > 1.0")
	}

	bad = valid
	bad.Type = "color"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for invalid preference type")
	}
}

func TestDuplicatePairOrdering(t *testing.T) {
	ok := DuplicatePair{IssueA: "ENG-1", IssueB: "ENG-2", Similarity: 0.9, Suggestion: "merge"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reversed := DuplicatePair{IssueA: "ENG-2", IssueB: "ENG-1", Similarity: 0.9}
	if err := reversed.Validate(); err == nil {
		t.Error("expected error for reversed pair ordering")
	}

	selfPair := DuplicatePair{IssueA: "ENG-1", IssueB: "ENG-1", Similarity: 0.9}
	if err := selfPair.Validate(); err == nil {
		t.Error("expected error for self pair")
	}

	zeroSim := DuplicatePair{IssueA: "ENG-1", IssueB: "ENG-2", Similarity: 0.0}
	if err := zeroSim.Validate(); err == nil {
		t.Error("expected error for zero similarity")
	}
}

func TestNewAnalysisResultRange(t *testing.T) {
	for _, p := range []int{0, 11, -3} {
		if _, err := NewAnalysisResult(p, false, false, []string{"x"}); err == nil {
			t.Errorf("expected error for priority %d", p)
		}
	}
	r, err := NewAnalysisResult(10, true, false, []string{"x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Priority != 10 || !r.IsStagnant {
		t.Errorf("unexpected result: %+v", r)
	}

	if _, err := NewAnalysisResult(5, false, false, nil); err == nil {
		t.Error("expected error for empty insights")
	}
}

func TestBucket(t *testing.T) {
	tests := []struct {
		state string
		want  StateBucket
	}{
		{"In Progress", BucketInProgress},
		{"started", BucketInProgress},
		{"In Review", BucketInProgress},
		{"Blocked", BucketBlocked},
		{"On Hold", BucketPaused},
		{"Waiting for QA", BucketPaused},
		{"Done", BucketDone},
		{"Cancelled", BucketDone},
		{"Archived", BucketDone},
		{"Todo", BucketOpen},
		{"Backlog", BucketOpen},
		{"", BucketOpen},
	}

	for _, tt := range tests {
		if got := Bucket(tt.state); got != tt.want {
			t.Errorf("Bucket(%q) = %s, want %s", tt.state, got, tt.want)
		}
	}
}

func TestStateRank(t *testing.T) {
	ranks := []struct {
		state string
		want  int
	}{
		{"In Progress", 5},
		{"in_progress", 5},
		{"started", 4},
		{"active", 3},
		{"todo", 2},
		{"backlog", 1},
		{"done", 0},
		{"anything else", 0},
	}
	for _, tt := range ranks {
		if got := StateRank(tt.state); got != tt.want {
			t.Errorf("StateRank(%q) = %d, want %d", tt.state, got, tt.want)
		}
	}
}

func TestFeedbackEventIssueID(t *testing.T) {
	e := FeedbackEvent{UserID: "u1", Kind: FeedbackPositive}
	if got := e.IssueID(); got != "" {
		t.Errorf("expected empty issue id, got %q", got)
	}
	e.Metadata = map[string]string{"issue_id": "ENG-7"}
	if got := e.IssueID(); got != "ENG-7" {
		t.Errorf("expected ENG-7, got %q", got)
	}
}
