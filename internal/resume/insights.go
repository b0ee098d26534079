package resume

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/ai"
)

const (
	summaryUnavailable      = "summary not available"
	improvementsUnavailable = "improvement suggestions not available"
)

// Summarize returns a short professional summary of the résumé.
func (e *Extractor) Summarize(ctx context.Context, text string) string {
	answer, err := e.analyzer.Generate(ctx, ai.TaskSummary, render(summaryPrompt, map[string]string{"RESUME_TEXT": text}))
	if err != nil {
		e.log.Warn("resume summary failed", zap.Error(err))
		return summaryUnavailable
	}

	if answer = strings.TrimSpace(answer); answer == "" {
		return summaryUnavailable
	}
	return answer
}

// SuggestImprovements returns résumé improvement suggestions tailored to the industry.
func (e *Extractor) SuggestImprovements(ctx context.Context, text string, domain Domain) string {
	prompt := render(improvementsPrompt, map[string]string{
		"INDUSTRY":    domain.Industry,
		"RESUME_TEXT": text,
	})

	answer, err := e.analyzer.Generate(ctx, ai.TaskImprovements, prompt)
	if err != nil {
		e.log.Warn("resume improvements failed", zap.Error(err))
		return improvementsUnavailable
	}

	if answer = strings.TrimSpace(answer); answer == "" {
		return improvementsUnavailable
	}
	return answer
}
