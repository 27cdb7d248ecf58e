package llm

import (
	"context"
	"fmt"

	"github.com/mkravets/datalift/internal/model"
)

// Summarizer wraps a provider and produces the optional run narrative. A
// summarization failure is warned about by the caller, never escalated: the
// run's own reports stand on their own.
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer creates a summarizer for the configured provider. An empty
// provider name means summaries are disabled.
func NewSummarizer(config Config) (*Summarizer, error) {
	switch config.Provider {
	case "":
		return nil, fmt.Errorf("no LLM provider configured")
	case "openai", "ollama":
		p, err := NewOpenAIProvider(config)
		if err != nil {
			return nil, err
		}
		return &Summarizer{provider: p, config: config}, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (want openai or ollama)", config.Provider)
	}
}

// GenerateSummary produces the narrative for a completed run.
func (s *Summarizer) GenerateSummary(ctx context.Context, report model.RunReport) (*model.Summary, error) {
	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Report:    report,
		Model:     s.config.Model,
		MaxTokens: s.config.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generate summary: %w", err)
	}

	return &model.Summary{
		Provider:  s.provider.Name(),
		Model:     resp.Model,
		SummaryMD: resp.Summary,
	}, nil
}
