package listing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/resume"
)

func card(title, company, location, link string) string {
	return fmt.Sprintf(`<div class="base-card">
  <a class="base-card__full-link" href="%s"></a>
  <h3 class="base-search-card__title">
    %s
  </h3>
  <h4 class="base-search-card__subtitle"><a>%s</a></h4>
  <span class="job-search-card__location">%s</span>
</div>`, link, title, company, location)
}

func searchPage(cards ...string) string {
	return "<html><body><ul>" + strings.Join(cards, "\n") + "</ul></body></html>"
}

type board struct {
	mu       sync.Mutex
	searches map[string]string
	failing  map[string]int
	details  map[string]string
	agents   []string
	queries  []string
}

func (b *board) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.agents = append(b.agents, r.UserAgent())

	if r.URL.Path == linkedInSearchPath {
		keywords := r.URL.Query().Get("keywords")
		b.queries = append(b.queries, keywords+"|"+r.URL.Query().Get("location"))
		if status, ok := b.failing[keywords]; ok {
			w.WriteHeader(status)
			return
		}
		fmt.Fprint(w, b.searches[keywords])
		return
	}

	page, ok := b.details[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	fmt.Fprint(w, page)
}

func newTestLinkedIn(t *testing.T, b *board) *LinkedIn {
	t.Helper()
	server := httptest.NewServer(b)
	t.Cleanup(server.Close)

	source := NewLinkedIn(zap.NewNop(), "test-agent", time.Second)
	source.BaseURL = server.URL
	return source
}

func TestLinkedInParseCards(t *testing.T) {
	source := NewLinkedIn(nil, "", 0)
	page := searchPage(
		card("Backend Engineer", "Acme", "Berlin, Germany", "https://example.com/jobs/view/1"),
		card("", "NoTitle Inc", "Remote", "https://example.com/jobs/view/2"),
		card("Platform Engineer", "Globex", "", "https://example.com/jobs/view/3"),
		card("SRE", "Initech", "Paris", "https://example.com/jobs/view/4"),
	)

	postings, err := source.ParseCards(strings.NewReader(page), 2)
	require.NoError(t, err)

	require.Len(t, postings, 2)
	assert.Equal(t, &JobPosting{Title: "Backend Engineer", Company: "Acme", Location: "Berlin, Germany", URL: "https://example.com/jobs/view/1"}, postings[0])
	assert.Equal(t, "Platform Engineer", postings[1].Title)
	assert.Empty(t, postings[1].Location)

	all, err := source.ParseCards(strings.NewReader(page), 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLinkedInParseDescription(t *testing.T) {
	source := NewLinkedIn(nil, "", 0)

	text, err := source.ParseDescription(strings.NewReader(`<div class="description__text"><p>Build <strong>APIs</strong> in Go.</p></div>`))
	require.NoError(t, err)
	assert.Contains(t, text, "Build")
	assert.Contains(t, text, "APIs")
	assert.NotContains(t, text, "<p>")

	text, err = source.ParseDescription(strings.NewReader(`<section class="show-more-less-html">Care for patients</section>`))
	require.NoError(t, err)
	assert.Equal(t, "Care for patients", text)

	text, err = source.ParseDescription(strings.NewReader(`<div class="other">nothing</div>`))
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestLinkedInSearchSendsQueryAndUserAgent(t *testing.T) {
	b := &board{searches: map[string]string{"go developer": searchPage()}}
	source := newTestLinkedIn(t, b)

	body, err := source.Search(context.Background(), "go developer", "Berlin")
	require.NoError(t, err)
	body.Close()

	assert.Equal(t, []string{"go developer|Berlin"}, b.queries)
	assert.Equal(t, []string{"test-agent"}, b.agents)
}

func TestLinkedInNon2xxIsFetchError(t *testing.T) {
	b := &board{failing: map[string]int{"broken": http.StatusTooManyRequests}}
	source := newTestLinkedIn(t, b)

	_, err := source.Search(context.Background(), "broken", "")

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusTooManyRequests, fetchErr.Status)

	_, err = source.Detail(context.Background(), "/jobs/view/missing")
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusNotFound, fetchErr.Status)
}

func TestLinkedInNetworkErrorIsFetchError(t *testing.T) {
	source := NewLinkedIn(nil, "", time.Second)
	source.BaseURL = "http://127.0.0.1:1"

	_, err := source.Search(context.Background(), "anything", "")

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Zero(t, fetchErr.Status)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestRetrieverWithLinkedIn(t *testing.T) {
	b := &board{
		searches: map[string]string{
			"Backend Engineer": searchPage(
				card("Backend Engineer", "Acme", "Berlin", "/jobs/view/1"),
				card("Go Developer", "Globex", "Berlin", "/jobs/view/2"),
			),
			"Platform Engineer": searchPage(
				card("Backend Engineer", "Acme", "Berlin", "/jobs/view/1?ref=other"),
				card("Platform Engineer", "Initech", "Berlin", "/jobs/view/3"),
			),
		},
		failing: map[string]int{"SRE": http.StatusInternalServerError},
		details: map[string]string{
			"/jobs/view/1": `<div class="description__text">Design services</div>`,
			"/jobs/view/3": `<html><body>no description here</body></html>`,
		},
	}
	source := newTestLinkedIn(t, b)
	retriever := NewRetriever(source, source, zap.NewNop(), RetrieverOptions{Pacing: -1, DetailRate: 1000})

	postings := retriever.FetchPostings(context.Background(),
		[]string{"Backend Engineer", "SRE", "Platform Engineer"}, "Berlin",
		resume.Domain{Type: resume.DomainTechnical, Industry: "software"}, 5)

	require.Equal(t, 3, postings.Len())

	titles := make([]string, 0, postings.Len())
	for _, p := range postings.Items {
		titles = append(titles, p.Title+"@"+p.Company)
	}
	assert.Equal(t, []string{"Backend Engineer@Acme", "Go Developer@Globex", "Platform Engineer@Initech"}, titles)

	assert.Equal(t, "Design services", postings.Items[0].Description)
	assert.Equal(t, "Backend Engineer", postings.Items[0].SearchTerm)
	assert.Equal(t, DescriptionNotAvailable, postings.Items[1].Description)
	assert.Equal(t, DescriptionNotAvailable, postings.Items[2].Description)
	assert.Equal(t, "Platform Engineer", postings.Items[2].SearchTerm)
}
