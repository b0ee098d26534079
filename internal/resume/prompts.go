package resume

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/classify.md
	classifyPrompt string
	//go:embed prompts/job_history.md
	jobHistoryPrompt string
	//go:embed prompts/attributes.md
	attributesPrompt string
	//go:embed prompts/summary.md
	summaryPrompt string
	//go:embed prompts/improvements.md
	improvementsPrompt string
)

// render substitutes {{KEY}} placeholders in template.
func render(template string, values map[string]string) string {
	prompt := template
	for key, value := range values {
		prompt = strings.ReplaceAll(prompt, "{{"+key+"}}", value)
	}
	return prompt
}

func categoryList() string {
	names := make([]string, 0, len(Categories))
	for _, c := range Categories {
		names = append(names, "- "+string(c))
	}
	return strings.Join(names, "\n")
}
