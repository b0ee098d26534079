// Package pipeline wires the extraction, search, retrieval, filtering and
// ranking stages into a single run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/filtering"
	"github.com/spigell/resume-matcher/internal/listing"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/resume"
	"github.com/spigell/resume-matcher/internal/search"
)

// Status summarizes how far a run got.
type Status string

const (
	StatusOK          Status = "ok"
	StatusEmptyResume Status = "empty_resume"
	StatusNoTerms     Status = "no_terms"
	StatusNoPostings  Status = "no_postings"
)

// Result is the outcome of a run. It is always returned, even when a
// precondition stops the run early.
type Result struct {
	RunID    string                `json:"run_id"`
	Profile  *resume.Profile       `json:"profile,omitempty"`
	Terms    []string              `json:"terms"`
	Location string                `json:"location"`
	Ranked   matching.RankedResult `json:"ranked"`
	Status   Status                `json:"status"`
	Message  string                `json:"message,omitempty"`
	Filters  []filtering.Status    `json:"-"`
	Postings *listing.Postings     `json:"-"`
}

// Extractor builds a résumé profile.
type Extractor interface {
	Extract(ctx context.Context, text string) (*resume.Profile, error)
}

// Retriever collects postings for search terms.
type Retriever interface {
	FetchPostings(ctx context.Context, terms []string, location string, domain resume.Domain, maxPerTerm int) *listing.Postings
}

// Ranker scores and orders postings.
type Ranker interface {
	Rank(ctx context.Context, postings *listing.Postings, profile *resume.Profile) matching.RankedResult
}

// Options configure the optional parts of a run.
type Options struct {
	MaxPerTerm   int
	MinimumScore int
	Filters      []filtering.Filter
	FilterConfig *filtering.Config
}

type Pipeline struct {
	extractor Extractor
	retriever Retriever
	ranker    Ranker
	opts      Options
	log       *zap.Logger
}

func New(extractor Extractor, retriever Retriever, ranker Ranker, log *zap.Logger, opts Options) *Pipeline {
	if opts.FilterConfig == nil {
		opts.FilterConfig = &filtering.Config{}
	}
	return &Pipeline{
		extractor: extractor,
		retriever: retriever,
		ranker:    ranker,
		opts:      opts,
		log:       logger.OrNop(log),
	}
}

// Run executes every stage in order. Stage failures degrade into the
// documented fallbacks; only preconditions end a run early.
func (p *Pipeline) Run(ctx context.Context, text, location string) *Result {
	result := &Result{
		RunID:    uuid.NewString(),
		Location: strings.TrimSpace(location),
		Terms:    []string{},
		Ranked:   matching.RankedResult{Items: []matching.ScoredPosting{}},
	}
	log := logger.WithRun(p.log, result.RunID)

	log.Info("extracting resume profile")
	profile, err := p.extractor.Extract(ctx, text)
	if err != nil {
		// Extract is total apart from the empty résumé precondition.
		result.Status = StatusEmptyResume
		result.Message = "The resume is empty. Provide a resume with some text."
		if !errors.Is(err, resume.ErrEmptyResume) {
			result.Message = fmt.Sprintf("Could not read the resume: %v", err)
		}
		log.Warn("no resume profile, skipping search", zap.Error(err))
		return result
	}
	result.Profile = profile

	result.Terms = search.GenerateTerms(profile.JobHistory, profile.Attributes, profile.Domain)
	log.Info("search terms generated", zap.Strings("terms", result.Terms))
	if len(result.Terms) == 0 {
		result.Status = StatusNoTerms
		result.Message = noMatchesMessage(result.Location)
		return result
	}

	postings := p.retriever.FetchPostings(ctx, result.Terms, result.Location, profile.Domain, p.opts.MaxPerTerm)
	postings = p.filter(ctx, log, postings)
	result.Postings = postings
	result.Filters = filtering.Describe(p.opts.Filters)

	if postings.Len() == 0 {
		result.Status = StatusNoPostings
		result.Message = noMatchesMessage(result.Location)
		log.Warn("no postings found", zap.String("location", result.Location))
		return result
	}

	ranked := p.ranker.Rank(ctx, postings, profile)
	if p.opts.MinimumScore > 0 {
		ranked = ranked.AtLeast(p.opts.MinimumScore)
	}
	result.Ranked = ranked
	result.Status = StatusOK

	log.Info("run completed", zap.Int("postings", postings.Len()), zap.Int("ranked", ranked.Len()))

	return result
}

// filter applies the configured filters. A failing step stops the chain and
// the postings left by earlier steps are kept.
func (p *Pipeline) filter(ctx context.Context, log *zap.Logger, postings *listing.Postings) *listing.Postings {
	if len(p.opts.Filters) == 0 {
		return postings
	}

	filtered, err := filtering.Run(ctx, p.opts.FilterConfig, filtering.Deps{Logger: log}, p.opts.Filters, postings)
	if err != nil {
		log.Warn("filtering failed, skipping remaining filters", zap.Error(err))
		return postings
	}
	return filtered
}

func noMatchesMessage(location string) string {
	if location == "" {
		return "No job matches found. Try a different location or update your resume."
	}
	return fmt.Sprintf("No job matches found in %s. Try a different location or update your resume.", location)
}
