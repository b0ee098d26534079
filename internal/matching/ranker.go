package matching

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-matcher/internal/listing"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/resume"
)

// RankedResult holds scored postings ordered by descending score. Postings
// with equal scores keep their discovery order.
type RankedResult struct {
	Items []ScoredPosting `json:"items"`
}

func (r RankedResult) Len() int {
	return len(r.Items)
}

// AtLeast returns the postings scoring minScore or more, keeping the order.
func (r RankedResult) AtLeast(minScore int) RankedResult {
	items := make([]ScoredPosting, 0, len(r.Items))
	for _, item := range r.Items {
		if item.Score >= minScore {
			items = append(items, item)
		}
	}
	return RankedResult{Items: items}
}

// Postings returns the ranked postings in rank order.
func (r RankedResult) Postings() *listing.Postings {
	postings := &listing.Postings{}
	for i := range r.Items {
		posting := r.Items[i].Posting
		postings.Items = append(postings.Items, &posting)
	}
	return postings
}

// SortByScore sorts items by descending score, stable on ties.
func SortByScore(items []ScoredPosting) {
	slices.SortStableFunc(items, func(a, b ScoredPosting) int {
		return b.Score - a.Score
	})
}

// RankerOptions tunes a Ranker.
type RankerOptions struct {
	// Concurrency bounds parallel scoring calls. Values below 1 mean sequential.
	Concurrency int
	// Progress, when set, is called after every scored posting.
	Progress func(done, total int)
}

// Ranker scores every posting and orders the results.
type Ranker struct {
	scorer      *Scorer
	concurrency int
	progress    func(done, total int)
	log         *zap.Logger
}

func NewRanker(scorer *Scorer, log *zap.Logger, opts RankerOptions) *Ranker {
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	return &Ranker{
		scorer:      scorer,
		concurrency: concurrency,
		progress:    opts.Progress,
		log:         logger.WithStage(log, "rank"),
	}
}

// Rank scores postings independently and sorts them. Empty input yields an
// empty result. The order depends only on scores and input order.
func (r *Ranker) Rank(ctx context.Context, postings *listing.Postings, profile *resume.Profile) RankedResult {
	total := postings.Len()
	if total == 0 {
		return RankedResult{Items: []ScoredPosting{}}
	}

	items := make([]ScoredPosting, total)

	var (
		mu   sync.Mutex
		done int
	)
	report := func() {
		mu.Lock()
		defer mu.Unlock()
		done++
		if r.progress != nil {
			r.progress(done, total)
		}
	}

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, posting := range postings.Items {
		g.Go(func() error {
			items[i] = r.scorer.ScorePosting(ctx, profile, posting)
			report()
			return nil
		})
	}
	// Scoring is total, so Wait has no error to report.
	_ = g.Wait()

	SortByScore(items)

	r.log.Info("postings ranked", zap.Int("total", total), zap.Int("concurrency", r.concurrency))

	return RankedResult{Items: items}
}
