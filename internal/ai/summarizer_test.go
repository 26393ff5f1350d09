package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/issuepilot/issuepilot/internal/briefing"
	"github.com/issuepilot/issuepilot/internal/types"
)

func TestGetDefaultModel(t *testing.T) {
	assert.Equal(t, ModelHaiku, GetDefaultModel())

	t.Setenv("ISSUEPILOT_MODEL", "claude-test-model")
	assert.Equal(t, "claude-test-model", GetDefaultModel())
}

func TestNewSummarizerRequiresAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	_, err := NewSummarizer(&Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
}

func TestBuildSummaryPrompt(t *testing.T) {
	analysis, err := types.NewAnalysisResult(10, true, false, []string{"no activity for 5 days"})
	require.NoError(t, err)

	b := &briefing.Briefing{
		UserID:      "alice",
		GeneratedAt: time.Now().UTC(),
		Items: []*types.RankedIssue{
			{
				Issue: &types.IssueSnapshot{
					ID: "ENG-1", Title: "Production outage", State: "In Progress",
				},
				Analysis:     analysis,
				Personalized: 10.0,
			},
		},
		Duplicates: []types.DuplicatePair{
			{IssueA: "ENG-2", IssueB: "ENG-3", Similarity: 0.92, Suggestion: "merge ENG-3 into ENG-2"},
		},
	}

	prompt := buildSummaryPrompt(b)
	assert.Contains(t, prompt, "ENG-1")
	assert.Contains(t, prompt, "Production outage")
	assert.Contains(t, prompt, "no activity for 5 days")
	assert.Contains(t, prompt, "merge ENG-3 into ENG-2")
}

func TestBuildSummaryPromptCapsItems(t *testing.T) {
	b := &briefing.Briefing{UserID: "alice"}
	for i := 0; i < 30; i++ {
		b.Items = append(b.Items, &types.RankedIssue{
			Issue: &types.IssueSnapshot{ID: "ENG-25", Title: "Overflow item", State: "Todo"},
		})
	}
	prompt := buildSummaryPrompt(b)
	assert.LessOrEqual(t, len(prompt), 2000)
}
