package listing

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/resume"
	"github.com/spigell/resume-matcher/internal/utils"
)

const (
	DefaultMaxPerTerm = 6
	defaultPacing     = time.Second
	defaultDetailRate = 2.0
)

// RetrieverOptions tunes a Retriever. Zero values select the defaults.
type RetrieverOptions struct {
	// Pacing is the courtesy delay between per-term searches. Negative disables it.
	Pacing time.Duration
	// DetailRate limits posting page fetches per second.
	DetailRate float64
}

// Retriever collects postings for a set of search terms.
type Retriever struct {
	source  Source
	parser  Parser
	pacing  time.Duration
	limiter *rate.Limiter
	log     *zap.Logger
}

func NewRetriever(source Source, parser Parser, log *zap.Logger, opts RetrieverOptions) *Retriever {
	pacing := opts.Pacing
	if pacing < 0 {
		pacing = 0
	} else if pacing == 0 {
		pacing = defaultPacing
	}

	detailRate := opts.DetailRate
	if detailRate <= 0 {
		detailRate = defaultDetailRate
	}

	return &Retriever{
		source:  source,
		parser:  parser,
		pacing:  pacing,
		limiter: rate.NewLimiter(rate.Limit(detailRate), 1),
		log:     logger.WithFields(logger.WithStage(log, "retrieve"), zap.String("source", source.Name())),
	}
}

// FetchPostings searches every term in location and returns the distinct
// postings in discovery order. A failing term is logged and skipped; a
// failing detail fetch leaves DescriptionNotAvailable in place.
func (r *Retriever) FetchPostings(ctx context.Context, terms []string, location string, domain resume.Domain, maxPerTerm int) *Postings {
	if maxPerTerm <= 0 {
		maxPerTerm = DefaultMaxPerTerm
	}

	postings := &Postings{}

	for i, term := range terms {
		if i > 0 {
			if err := utils.WaitFor(ctx, r.pacing); err != nil {
				r.log.Warn("retrieval interrupted", zap.Error(err))
				break
			}
		}

		query := buildQuery(term, domain)
		cards, err := r.search(ctx, query, location, maxPerTerm)
		if err != nil {
			r.log.Warn("search term failed, skipping", zap.String("query", query), zap.Error(err))
			continue
		}

		added := 0
		for _, card := range cards {
			card.SearchTerm = term
			if !postings.Add(card) {
				continue
			}
			card.Description = r.description(ctx, card.URL)
			added++
		}

		r.log.Info("search term processed",
			zap.String("query", query),
			zap.Int("found", len(cards)),
			zap.Int("added", added),
		)
	}

	return postings
}

// buildQuery prefixes the industry for non-technical résumés unless the term
// already mentions it.
func buildQuery(term string, domain resume.Domain) string {
	term = strings.TrimSpace(term)
	if !domain.HasSpecificIndustry() {
		return term
	}
	if strings.Contains(strings.ToLower(term), strings.ToLower(domain.Industry)) {
		return term
	}
	return domain.Industry + " " + term
}

func (r *Retriever) search(ctx context.Context, query, location string, limit int) ([]*JobPosting, error) {
	body, err := r.source.Search(ctx, query, location)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return r.parser.ParseCards(body, limit)
}

func (r *Retriever) description(ctx context.Context, link string) string {
	if err := r.limiter.Wait(ctx); err != nil {
		return DescriptionNotAvailable
	}

	body, err := r.source.Detail(ctx, link)
	if err != nil {
		r.log.Debug("posting page fetch failed", zap.String("url", link), zap.Error(err))
		return DescriptionNotAvailable
	}
	defer body.Close()

	text, err := r.parser.ParseDescription(body)
	if err != nil || strings.TrimSpace(text) == "" {
		return DescriptionNotAvailable
	}
	return text
}
