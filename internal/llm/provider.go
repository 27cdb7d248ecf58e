package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkravets/datalift/internal/model"
)

// Provider generates a narrative summary of a completed pipeline run.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Summarize generates operator-readable Markdown from the run report.
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is configured and reachable.
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest is the input for narrative generation.
type SummarizeRequest struct {
	Report    model.RunReport
	Prompt    string // optional custom prompt; default built from the report
	Model     string
	MaxTokens int
}

// SummarizeResponse is the generated narrative.
type SummarizeResponse struct {
	Summary    string
	Model      string
	TokensUsed int
}

// Config holds provider configuration.
type Config struct {
	Provider  string // "openai", "ollama", ""
	Model     string
	APIKey    string
	BaseURL   string // custom endpoint, required for ollama
	MaxTokens int
}

// ConfigFromModel converts the pipeline configuration.
func ConfigFromModel(cfg model.LLMConfig) Config {
	return Config{
		Provider:  cfg.Provider,
		Model:     cfg.Model,
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		MaxTokens: cfg.MaxTokens,
	}
}

// BuildPrompt constructs the default summarization prompt. The prompt carries
// the report's own numbers so the narrative cannot drift from the accounting.
func BuildPrompt(report model.RunReport) string {
	var b strings.Builder

	b.WriteString("You are summarizing a data-load run report for an operator.\n")
	b.WriteString("Rules: state only facts present below, do not invent numbers, ")
	b.WriteString("and call out any failed chunks or validation findings first.\n\n")

	fmt.Fprintf(&b, "Profile: %s\nInput: %s\n", report.Profile, report.Input)

	if lr := report.Load; lr != nil {
		fmt.Fprintf(&b, "\nLoad into table %q:\n", lr.Table)
		fmt.Fprintf(&b, "- rows attempted: %d\n", lr.TotalRows())
		fmt.Fprintf(&b, "- rows succeeded: %d\n", lr.SucceededRows())
		fmt.Fprintf(&b, "- rows failed: %d\n", lr.FailedRows())
		for _, o := range lr.Outcomes {
			fmt.Fprintf(&b, "- chunk %d: %d rows, %d attempts, %s", o.Index, o.Rows, o.Attempts, o.Status)
			if o.Err != "" {
				fmt.Fprintf(&b, " (%s)", o.Err)
			}
			b.WriteString("\n")
		}
	}

	if vr := report.Validation; vr != nil {
		fmt.Fprintf(&b, "\nValidation: %d reference rows vs %d persisted rows\n", vr.ReferenceRows, vr.PersistedRows)
		if vr.Clean() {
			b.WriteString("- no mismatches\n")
		}
		for _, m := range vr.Mismatches {
			if m.Column != "" {
				fmt.Fprintf(&b, "- %s [%s]: %s\n", m.Check, m.Column, m.Message)
			} else {
				fmt.Fprintf(&b, "- %s: %s\n", m.Check, m.Message)
			}
		}
	}

	b.WriteString("\nWrite 3-6 sentences of Markdown.\n")
	return b.String()
}
