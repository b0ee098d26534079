package gemini

import (
	"context"

	"github.com/spigell/resume-matcher/internal/ai"
)

const (
	systemClassify   = "You are a precise résumé classifier. Answer only in the requested format."
	systemStructured = "You extract structured data from résumés. Return only the requested JSON without commentary."
	systemScore      = "You are a recruiter assessing how well a job posting fits a candidate."
	systemProse      = "You are a professional résumé reviewer. Be concise and specific."
)

type generator interface {
	GenerateContent(ctx context.Context, system, message string, maxOutputTokens int32) (string, error)
	Model() string
}

// Analyzer implements ai.Analyzer on top of a Gemini Generator.
type Analyzer struct {
	generator generator
}

var _ ai.Analyzer = (*Analyzer)(nil)

// NewAnalyzer wraps generator into the semantic analysis capability.
func NewAnalyzer(generator generator) *Analyzer {
	return &Analyzer{generator: generator}
}

func (a *Analyzer) Classify(ctx context.Context, prompt string) (string, error) {
	return a.generator.GenerateContent(ctx, systemClassify, prompt, ai.TokensFor(ai.TaskClassify))
}

func (a *Analyzer) ExtractStructured(ctx context.Context, task ai.Task, prompt string) (string, error) {
	return a.generator.GenerateContent(ctx, systemStructured, prompt, ai.TokensFor(task))
}

func (a *Analyzer) Score(ctx context.Context, prompt string) (string, error) {
	return a.generator.GenerateContent(ctx, systemScore, prompt, ai.TokensFor(ai.TaskScore))
}

func (a *Analyzer) Generate(ctx context.Context, task ai.Task, prompt string) (string, error) {
	return a.generator.GenerateContent(ctx, systemProse, prompt, ai.TokensFor(task))
}

// Model returns the underlying model name.
func (a *Analyzer) Model() string {
	return a.generator.Model()
}
