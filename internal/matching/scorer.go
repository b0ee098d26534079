// Package matching scores job postings against a résumé profile and ranks them.
package matching

import (
	"context"
	_ "embed"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/listing"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/resume"
	"github.com/spigell/resume-matcher/internal/utils"
)

const (
	// DefaultScore is used when the answer has no readable score. It is a
	// legitimate "uncertain" value, not an error marker.
	DefaultScore = 50

	noFactors      = "no specific factors identified"
	analysisFailed = "could not analyze match details"
	scoreLogLength = 200
)

//go:embed prompts/score.md
var scorePrompt string

var (
	scoreMarkerRe   = regexp.MustCompile(`(?i)match\s+score[*\s]*:[*\s]*`)
	scoreValueRe    = regexp.MustCompile(`^(\d+)`)
	factorsMarkerRe = regexp.MustCompile(`(?i)key\s+match\s+factors[*\s]*:[*\t ]*`)
	bulletRe        = regexp.MustCompile(`^(?:[•\-*–]|\d+[.)])\s*`)
)

// ScoredPosting is a posting with its match score and rationale.
type ScoredPosting struct {
	Posting listing.JobPosting `json:"posting"`
	Score   int                `json:"score"`
	Factors []string           `json:"factors"`
}

// Scorer asks the semantic analysis service to score postings.
type Scorer struct {
	analyzer ai.Analyzer
	log      *zap.Logger
}

func NewScorer(analyzer ai.Analyzer, log *zap.Logger) *Scorer {
	return &Scorer{analyzer: analyzer, log: logger.WithStage(log, "score")}
}

// ScorePosting never fails: service errors and answers without a score
// marker yield DefaultScore with a single "could not analyze" factor.
func (s *Scorer) ScorePosting(ctx context.Context, profile *resume.Profile, posting *listing.JobPosting) ScoredPosting {
	answer, err := s.analyzer.Score(ctx, buildScorePrompt(profile, posting))
	if err != nil {
		s.log.Warn("scoring failed", zap.String("posting", posting.Key().String()), zap.Error(err))
		return failedScore(posting)
	}

	score, factors, ok := parseScore(answer)
	if !ok {
		s.log.Warn("score answer without score marker",
			zap.String("posting", posting.Key().String()),
			zap.String("answer", utils.TruncateForLog(utils.OneLine(answer), scoreLogLength)),
		)
		return failedScore(posting)
	}

	s.log.Debug("posting scored", zap.String("posting", posting.Key().String()), zap.Int("score", score))

	return ScoredPosting{Posting: *posting, Score: score, Factors: factors}
}

func failedScore(posting *listing.JobPosting) ScoredPosting {
	return ScoredPosting{Posting: *posting, Score: DefaultScore, Factors: []string{analysisFailed}}
}

func buildScorePrompt(profile *resume.Profile, posting *listing.JobPosting) string {
	if profile == nil {
		profile = &resume.Profile{Domain: resume.UnknownDomain()}
	}

	replacer := strings.NewReplacer(
		"{{JOB_HISTORY}}", resume.DescribeHistory(profile.JobHistory),
		"{{ATTRIBUTES}}", profile.Attributes.Describe(),
		"{{DOMAIN_TYPE}}", string(profile.Domain.Type),
		"{{INDUSTRY}}", profile.Domain.Industry,
		"{{POSTING}}", posting.Describe(),
	)
	return replacer.Replace(scorePrompt)
}

// parseScore reads the score and factors. ok is false when the answer has
// no score marker at all.
func parseScore(answer string) (int, []string, bool) {
	loc := scoreMarkerRe.FindStringIndex(answer)
	if loc == nil {
		return 0, nil, false
	}

	score := DefaultScore
	if m := scoreValueRe.FindStringSubmatch(answer[loc[1]:]); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			score = clamp(v)
		}
	}

	return score, parseFactors(answer), true
}

// parseFactors collects bullet lines after the factors marker up to the next
// blank line.
func parseFactors(answer string) []string {
	loc := factorsMarkerRe.FindStringIndex(answer)
	if loc == nil {
		return []string{noFactors}
	}

	section := strings.TrimLeft(answer[loc[1]:], " \t\r\n")
	var factors []string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if !bulletRe.MatchString(line) {
			continue
		}
		if factor := strings.TrimSpace(bulletRe.ReplaceAllString(line, "")); factor != "" {
			factors = append(factors, factor)
		}
	}

	if len(factors) == 0 {
		return []string{noFactors}
	}
	return factors
}

func clamp(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
