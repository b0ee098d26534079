package matching

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/ai/aitest"
	"github.com/spigell/resume-matcher/internal/listing"
	"github.com/spigell/resume-matcher/internal/resume"
)

func testProfile() *resume.Profile {
	attrs := resume.NewAttributes()
	attrs[resume.ProfessionalSkills] = []string{"Go", "Kubernetes"}
	return &resume.Profile{
		Domain:     resume.Domain{Type: resume.DomainTechnical, Industry: "software development"},
		JobHistory: []resume.JobTitleRecord{{Title: "Backend Engineer", IsCurrent: true, Industry: "software development", Level: resume.LevelMid}},
		Attributes: attrs,
	}
}

func posting(title, company string) *listing.JobPosting {
	return &listing.JobPosting{Title: title, Company: company, Location: "Berlin", Description: "Build things", URL: "https://example.com/" + title}
}

func TestScorePosting(t *testing.T) {
	cases := []struct {
		name    string
		answer  string
		err     error
		score   int
		factors []string
	}{
		{
			name:    "well formed",
			answer:  "Match Score: 85\nKey Match Factors:\n• Same title\n• Go experience\n• Same industry\n\nExtra notes",
			score:   85,
			factors: []string{"Same title", "Go experience", "Same industry"},
		},
		{
			name:    "markdown and dashes",
			answer:  "**Match Score:** 72/100\n\n**Key Match Factors:**\n- Strong Go\n* Kubernetes\n1. Industry fit",
			score:   72,
			factors: []string{"Strong Go", "Kubernetes", "Industry fit"},
		},
		{
			name:    "fewer factors",
			answer:  "Match Score: 40\nKey Match Factors:\n• Only one",
			score:   40,
			factors: []string{"Only one"},
		},
		{
			name:    "no factors section",
			answer:  "Match Score: 90",
			score:   90,
			factors: []string{"no specific factors identified"},
		},
		{
			name:    "unreadable score",
			answer:  "Match Score: high\nKey Match Factors:\n• Good fit",
			score:   50,
			factors: []string{"Good fit"},
		},
		{
			name:    "clamped",
			answer:  "Match Score: 250\nKey Match Factors:\n• Overexcited",
			score:   100,
			factors: []string{"Overexcited"},
		},
		{
			name:    "no score marker",
			answer:  "This candidate looks like a decent fit overall.",
			score:   50,
			factors: []string{"could not analyze match details"},
		},
		{
			name:    "service failure",
			err:     errors.New("deadline exceeded"),
			score:   50,
			factors: []string{"could not analyze match details"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &aitest.Stub{Replies: map[ai.Task]aitest.Reply{ai.TaskScore: {Text: tc.answer, Err: tc.err}}}
			p := posting("Backend Engineer", "Acme")

			got := NewScorer(stub, zap.NewNop()).ScorePosting(context.Background(), testProfile(), p)

			assert.Equal(t, tc.score, got.Score)
			assert.Equal(t, tc.factors, got.Factors)
			assert.Equal(t, *p, got.Posting)
		})
	}
}

func TestScorePromptEmbedsProfileAndPosting(t *testing.T) {
	stub := &aitest.Stub{}

	NewScorer(stub, nil).ScorePosting(context.Background(), testProfile(), posting("Platform Engineer", "Globex"))

	calls := stub.Calls()
	require.Len(t, calls, 1)
	prompt := calls[0].Prompt
	assert.Contains(t, prompt, "Backend Engineer (Current, software development, Mid)")
	assert.Contains(t, prompt, "Professional Skills:\n- Go\n- Kubernetes")
	assert.Contains(t, prompt, "Title: Platform Engineer\nCompany: Globex")
	assert.Contains(t, prompt, "past job titles and industry alignment")
	assert.NotContains(t, prompt, "{{")
}

func TestScorePromptToleratesNilProfile(t *testing.T) {
	prompt := buildScorePrompt(nil, posting("Nurse", "Clinic"))

	assert.Contains(t, prompt, "Candidate domain: unknown, industry: general")
}

// scoreByTitle answers with the score encoded in the posting title ("Job 70").
func scoreByTitle(prompt string) (string, error) {
	for _, line := range strings.Split(prompt, "\n") {
		if title, ok := strings.CutPrefix(line, "Title: Job "); ok {
			if title == "fail" {
				return "", errors.New("unavailable")
			}
			return "Match Score: " + title + "\nKey Match Factors:\n• ok", nil
		}
	}
	return "", errors.New("no title")
}

func rankInput(titles ...string) *listing.Postings {
	postings := &listing.Postings{}
	for i, title := range titles {
		postings.Items = append(postings.Items, posting("Job "+title, string(rune('A'+i))))
	}
	return postings
}

func companies(result RankedResult) string {
	var b strings.Builder
	for _, item := range result.Items {
		b.WriteString(item.Posting.Company)
	}
	return b.String()
}

func TestRankSortsStablyByScore(t *testing.T) {
	for _, concurrency := range []int{1, 4} {
		stub := &aitest.Stub{ScoreFunc: scoreByTitle}
		ranker := NewRanker(NewScorer(stub, nil), nil, RankerOptions{Concurrency: concurrency})

		result := ranker.Rank(context.Background(), rankInput("60", "90", "fail", "60", "75", "50"), testProfile())

		require.Equal(t, 6, result.Len(), "concurrency %d", concurrency)
		assert.Equal(t, "BEADCF", companies(result), "concurrency %d", concurrency)
		assert.Equal(t, []string{"could not analyze match details"}, result.Items[4].Factors)
	}
}

func TestRankIsIdempotent(t *testing.T) {
	stub := &aitest.Stub{ScoreFunc: scoreByTitle}
	ranker := NewRanker(NewScorer(stub, nil), nil, RankerOptions{})

	result := ranker.Rank(context.Background(), rankInput("10", "80", "80", "30", "10"), testProfile())

	resorted := append([]ScoredPosting(nil), result.Items...)
	SortByScore(resorted)
	assert.Equal(t, result.Items, resorted)
}

func TestRankEmptyInput(t *testing.T) {
	stub := &aitest.Stub{}
	ranker := NewRanker(NewScorer(stub, nil), nil, RankerOptions{})

	for _, input := range []*listing.Postings{nil, {}} {
		result := ranker.Rank(context.Background(), input, testProfile())
		assert.NotNil(t, result.Items)
		assert.Zero(t, result.Len())
	}
	assert.Empty(t, stub.Calls())
}

func TestRankReportsMonotonicProgress(t *testing.T) {
	var (
		mu    sync.Mutex
		seen  []int
		total int
	)
	stub := &aitest.Stub{ScoreFunc: scoreByTitle}
	ranker := NewRanker(NewScorer(stub, nil), nil, RankerOptions{
		Concurrency: 3,
		Progress: func(done, n int) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, done)
			total = n
		},
	})

	ranker.Rank(context.Background(), rankInput("1", "2", "3", "4", "5"), testProfile())

	assert.Equal(t, []int{1, 2, 3, 4, 5}, seen)
	assert.Equal(t, 5, total)
}

func TestRankedResultHelpers(t *testing.T) {
	result := RankedResult{Items: []ScoredPosting{
		{Posting: *posting("A", "Acme"), Score: 90},
		{Posting: *posting("B", "Globex"), Score: 50},
		{Posting: *posting("C", "Initech"), Score: 20},
	}}

	filtered := result.AtLeast(50)
	assert.Equal(t, 2, filtered.Len())
	assert.Equal(t, 3, result.Len())

	postings := result.Postings()
	require.Equal(t, 3, postings.Len())
	assert.Equal(t, "Globex", postings.Items[1].Company)
}
