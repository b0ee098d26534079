package resume

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/utils"
)

const defaultMaxLogLength = 200

// Options tunes an Extractor.
type Options struct {
	// Insights enables the summary and improvement suggestions in Extract.
	Insights     bool
	MaxLogLength int
}

// Extractor builds résumé profiles through the semantic analysis service.
type Extractor struct {
	analyzer  ai.Analyzer
	insights  bool
	maxLogLen int
	log       *zap.Logger
}

// NewExtractor creates an Extractor backed by analyzer.
func NewExtractor(analyzer ai.Analyzer, log *zap.Logger, opts Options) *Extractor {
	maxLogLen := opts.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	return &Extractor{
		analyzer:  analyzer,
		insights:  opts.Insights,
		maxLogLen: maxLogLen,
		log:       logger.WithStage(log, "extract"),
	}
}

// Extract runs every extraction step over text. The only error is ErrEmptyResume.
func (e *Extractor) Extract(ctx context.Context, text string) (*Profile, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyResume
	}

	profile := &Profile{}
	profile.Domain = e.ClassifyDomain(ctx, text)
	profile.JobHistory = e.ExtractJobHistory(ctx, text)
	profile.Attributes = e.ExtractAttributes(ctx, text, profile.Domain, profile.JobHistory)
	profile.Contact = ExtractContact(text)

	if e.insights {
		profile.Summary = e.Summarize(ctx, text)
		profile.Improvements = e.SuggestImprovements(ctx, text, profile.Domain)
	}

	e.log.Info("resume profile extracted",
		zap.String("domain_type", string(profile.Domain.Type)),
		zap.String("industry", profile.Domain.Industry),
		zap.Int("job_titles", len(profile.JobHistory)),
	)

	return profile, nil
}

// ClassifyDomain asks for a "domain_type|industry" answer. It never fails:
// service errors yield UnknownDomain.
func (e *Extractor) ClassifyDomain(ctx context.Context, text string) Domain {
	answer, err := e.analyzer.Classify(ctx, render(classifyPrompt, map[string]string{"RESUME_TEXT": text}))
	if err != nil {
		e.log.Warn("domain classification failed", zap.Error(err))
		return UnknownDomain()
	}

	e.log.Debug("domain classification answer", zap.String("answer", utils.TruncateForLog(utils.OneLine(answer), e.maxLogLen)))

	return parseDomain(answer)
}

func parseDomain(answer string) Domain {
	line := strings.TrimSpace(answer)
	for _, l := range strings.Split(answer, "\n") {
		if strings.Contains(l, "|") {
			line = strings.TrimSpace(l)
			break
		}
	}

	parts := strings.SplitN(line, "|", 2)
	if len(parts) < 2 {
		return Domain{Type: keywordDomainType(answer), Industry: GeneralIndustry}
	}

	industry := strings.ToLower(strings.Trim(strings.TrimSpace(parts[1]), "`*\"'."))
	if industry == "" {
		industry = GeneralIndustry
	}

	return Domain{Type: normalizeDomainType(parts[0], answer), Industry: industry}
}

func normalizeDomainType(field, answer string) DomainType {
	normalized := strings.ToLower(strings.Trim(strings.TrimSpace(field), "`*\"'"))
	switch {
	case strings.HasPrefix(normalized, "non"):
		return DomainNonTechnical
	case strings.Contains(normalized, "technical"):
		return DomainTechnical
	default:
		return keywordDomainType(answer)
	}
}

// keywordDomainType is the heuristic for answers without a usable type field.
func keywordDomainType(answer string) DomainType {
	if strings.Contains(strings.ToLower(answer), "technical") {
		return DomainTechnical
	}
	return DomainNonTechnical
}

// ExtractJobHistory returns the structured job history, or UnparsedJobHistory
// when the answer cannot be interpreted or the service fails.
func (e *Extractor) ExtractJobHistory(ctx context.Context, text string) []JobTitleRecord {
	answer, err := e.analyzer.ExtractStructured(ctx, ai.TaskJobHistory, render(jobHistoryPrompt, map[string]string{"RESUME_TEXT": text}))
	if err != nil {
		e.log.Warn("job history extraction failed", zap.Error(err))
		return UnparsedJobHistory()
	}

	return parseJobHistory(e.log, answer)
}

func parseJobHistory(log *zap.Logger, answer string) []JobTitleRecord {
	return parseChain(log, answer, []strategy[[]JobTitleRecord]{
		{name: "fenced_json", parse: fenced(parseJobHistoryJSON)},
		{name: "raw_json", parse: parseJobHistoryJSON},
	}, UnparsedJobHistory)
}

// ExtractAttributes returns all eight categories. Categories the service did
// not provide are empty.
func (e *Extractor) ExtractAttributes(ctx context.Context, text string, domain Domain, history []JobTitleRecord) Attributes {
	prompt := render(attributesPrompt, map[string]string{
		"DOMAIN_TYPE": string(domain.Type),
		"INDUSTRY":    domain.Industry,
		"JOB_HISTORY": DescribeHistory(history),
		"CATEGORIES":  categoryList(),
		"RESUME_TEXT": text,
	})

	answer, err := e.analyzer.ExtractStructured(ctx, ai.TaskAttributes, prompt)
	if err != nil {
		e.log.Warn("attribute extraction failed", zap.Error(err))
		return NewAttributes()
	}

	return parseAttributes(e.log, answer)
}

func parseAttributes(log *zap.Logger, answer string) Attributes {
	return parseChain(log, answer, []strategy[Attributes]{
		{name: "fenced_json", parse: fenced(parseAttributesJSON)},
		{name: "raw_json", parse: parseAttributesJSON},
		{name: "labels", parse: parseAttributesText},
	}, NewAttributes).Complete()
}
