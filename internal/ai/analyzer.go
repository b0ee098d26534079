// Package ai defines the semantic analysis capability consumed by the matching pipeline.
//
// The service behind it is treated as an untrusted, loosely structured text source:
// callers receive raw answers and are responsible for parsing them defensively.
package ai

import "context"

// Task identifies the kind of analysis requested so providers can size their output.
type Task string

const (
	TaskClassify     Task = "classify"
	TaskJobHistory   Task = "job_history"
	TaskAttributes   Task = "attributes"
	TaskScore        Task = "score"
	TaskSummary      Task = "summary"
	TaskImprovements Task = "improvements"
)

// MaxOutputTokens is the default output budget per task.
var MaxOutputTokens = map[Task]int32{
	TaskClassify:     300,
	TaskJobHistory:   1000,
	TaskAttributes:   1500,
	TaskScore:        800,
	TaskSummary:      800,
	TaskImprovements: 1000,
}

// TokensFor returns the output budget for task, falling back to the score budget.
func TokensFor(task Task) int32 {
	if n, ok := MaxOutputTokens[task]; ok {
		return n
	}
	return MaxOutputTokens[TaskScore]
}

// Analyzer is the semantic analysis service. Every method sends a free-text
// prompt and returns the service's free-text answer.
type Analyzer interface {
	// Classify answers short classification questions.
	Classify(ctx context.Context, prompt string) (string, error)
	// ExtractStructured asks for structured data (JSON) for the given task.
	ExtractStructured(ctx context.Context, task Task, prompt string) (string, error)
	// Score asks for a match score with its rationale.
	Score(ctx context.Context, prompt string) (string, error)
	// Generate asks for free prose such as summaries or suggestions.
	Generate(ctx context.Context, task Task, prompt string) (string, error)
}
