// Package ai holds the Anthropic adapter that renders a ranked briefing
// into short natural-language prose. The briefing pipeline treats it as
// optional; everything else works without an API key.
package ai

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/issuepilot/issuepilot/internal/briefing"
)

// Model constants. Summarization is a simple task, so the cheaper model
// is the default.
//
// Environment variable overrides:
// - ISSUEPILOT_MODEL: Override the summarization model
const (
	// ModelSonnet is the high-end model for complex reasoning tasks
	ModelSonnet = "claude-sonnet-4-5-20250929"

	// ModelHaiku is the cost-efficient model for simple tasks
	ModelHaiku = "claude-3-5-haiku-20241022"
)

// GetDefaultModel returns the summarization model, checking ISSUEPILOT_MODEL first
func GetDefaultModel() string {
	if model := os.Getenv("ISSUEPILOT_MODEL"); model != "" {
		return model
	}
	return ModelHaiku
}

// Summarizer renders briefings into prose via the Anthropic API.
type Summarizer struct {
	client *anthropic.Client
	model  string
}

// Compile-time check that Summarizer satisfies the briefing contract
var _ briefing.Summarizer = (*Summarizer)(nil)

// Config holds summarizer configuration
type Config struct {
	APIKey string // Anthropic API key (if empty, reads from ANTHROPIC_API_KEY env var)
	Model  string // Model to use (default: claude-3-5-haiku-20241022)
}

// NewSummarizer creates a new briefing summarizer
func NewSummarizer(cfg *Config) (*Summarizer, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
	}

	model := cfg.Model
	if model == "" {
		model = GetDefaultModel()
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Summarizer{client: &client, model: model}, nil
}

// Summarize turns a briefing into a few sentences of prose.
func (s *Summarizer) Summarize(ctx context.Context, b *briefing.Briefing) (string, error) {
	prompt := buildSummaryPrompt(b)

	resp, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	summary := strings.TrimSpace(text.String())
	if summary == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return summary, nil
}

// buildSummaryPrompt flattens the briefing into a compact prompt. Only
// the top items are included to keep token usage predictable.
func buildSummaryPrompt(b *briefing.Briefing) string {
	const maxItems = 10

	var sb strings.Builder
	sb.WriteString("You are summarizing a prioritized issue briefing for a developer.\n")
	sb.WriteString("Write 2-4 sentences: what needs attention first and why, plus any duplicates worth merging.\n")
	sb.WriteString("Do not list every issue. No markdown headers.\n\n")
	sb.WriteString("Ranked issues (highest personalized priority first):\n")

	items := b.Items
	if len(items) > maxItems {
		items = items[:maxItems]
	}
	for _, item := range items {
		if item == nil || item.Issue == nil {
			continue
		}
		fmt.Fprintf(&sb, "- [%s] %s (priority %.1f, state %s)\n",
			item.Issue.ID, item.Issue.Title, item.Personalized, item.Issue.State)
		if item.Analysis != nil {
			for _, insight := range item.Analysis.Insights {
				fmt.Fprintf(&sb, "  insight: %s\n", insight)
			}
		}
	}

	if len(b.Duplicates) > 0 {
		sb.WriteString("\nLikely duplicates:\n")
		for _, p := range b.Duplicates {
			fmt.Fprintf(&sb, "- %s / %s (similarity %.2f): %s\n", p.IssueA, p.IssueB, p.Similarity, p.Suggestion)
		}
	}

	return sb.String()
}
