package listing

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/resume-matcher/internal/resume"
)

// memorySource returns up to three postings per query, titled after the query.
type memorySource struct {
	queries []string
	details []string
	fail    map[string]error
}

func (m *memorySource) Name() string { return "memory" }

func (m *memorySource) Search(_ context.Context, query, _ string) (io.ReadCloser, error) {
	m.queries = append(m.queries, query)
	if err := m.fail[query]; err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader(query)), nil
}

func (m *memorySource) Detail(_ context.Context, url string) (io.ReadCloser, error) {
	m.details = append(m.details, url)
	return io.NopCloser(strings.NewReader("details of " + url)), nil
}

func (m *memorySource) ParseCards(r io.Reader, limit int) ([]*JobPosting, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	query := string(data)
	if strings.HasSuffix(query, "unparsable") {
		return nil, errors.New("not html")
	}

	var postings []*JobPosting
	for i := 0; i < 3 && (limit <= 0 || i < limit); i++ {
		postings = append(postings, &JobPosting{Title: query, Company: string(rune('A' + i)), URL: query + "/" + string(rune('a'+i))})
	}
	return postings, nil
}

func (m *memorySource) ParseDescription(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	return string(data), err
}

func TestBuildQuery(t *testing.T) {
	healthcare := resume.Domain{Type: resume.DomainNonTechnical, Industry: "healthcare"}

	assert.Equal(t, "healthcare Nurse", buildQuery("Nurse", healthcare))
	assert.Equal(t, "Healthcare Nurse", buildQuery("Healthcare Nurse", healthcare))
	assert.Equal(t, "Nurse", buildQuery(" Nurse ", resume.Domain{Type: resume.DomainNonTechnical, Industry: resume.GeneralIndustry}))
	assert.Equal(t, "Go Developer", buildQuery("Go Developer", resume.Domain{Type: resume.DomainTechnical, Industry: "fintech"}))
}

func TestFetchPostingsCapsAndSkipsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	source := &memorySource{fail: map[string]error{"healthcare broken": errors.New("connection reset")}}
	retriever := NewRetriever(source, source, zap.New(core), RetrieverOptions{Pacing: -1, DetailRate: 1000})

	postings := retriever.FetchPostings(context.Background(),
		[]string{"Nurse", "broken", "unparsable", "Healthcare Manager"}, "Boston",
		resume.Domain{Type: resume.DomainNonTechnical, Industry: "healthcare"}, 2)

	assert.Equal(t, []string{"healthcare Nurse", "healthcare broken", "healthcare unparsable", "Healthcare Manager"}, source.queries)
	require.Equal(t, 4, postings.Len())
	assert.Equal(t, "healthcare Nurse", postings.Items[0].Title)
	assert.Equal(t, "Nurse", postings.Items[0].SearchTerm)
	assert.Equal(t, "details of healthcare Nurse/a", postings.Items[0].Description)
	assert.Equal(t, "Healthcare Manager", postings.Items[3].Title)
	assert.Equal(t, 2, logs.FilterMessage("search term failed, skipping").Len())
}

func TestFetchPostingsSkipsDetailsOfDuplicates(t *testing.T) {
	source := &memorySource{}
	retriever := NewRetriever(source, source, nil, RetrieverOptions{Pacing: -1, DetailRate: 1000})

	postings := retriever.FetchPostings(context.Background(), []string{"Analyst", " Analyst "}, "", resume.UnknownDomain(), 2)

	assert.Equal(t, []string{"Analyst", "Analyst"}, source.queries)
	require.Equal(t, 2, postings.Len())
	assert.Equal(t, []string{"Analyst/a", "Analyst/b"}, source.details)
	for _, p := range postings.Items {
		assert.Equal(t, "Analyst", p.SearchTerm)
	}
}

func TestFetchPostingsDefaultsMaxPerTerm(t *testing.T) {
	source := &memorySource{}
	retriever := NewRetriever(source, source, nil, RetrieverOptions{Pacing: -1, DetailRate: 1000})

	postings := retriever.FetchPostings(context.Background(), []string{"Analyst"}, "", resume.UnknownDomain(), 0)

	assert.Equal(t, 3, postings.Len())
}

func TestFetchPostingsStopsOnCancelledContext(t *testing.T) {
	source := &memorySource{}
	retriever := NewRetriever(source, source, nil, RetrieverOptions{DetailRate: 1000})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	postings := retriever.FetchPostings(ctx, []string{"One", "Two"}, "", resume.UnknownDomain(), 1)

	assert.Equal(t, []string{"One"}, source.queries)
	require.Equal(t, 1, postings.Len())
	assert.Equal(t, DescriptionNotAvailable, postings.Items[0].Description)
}

func TestFetchPostingsEmptyTerms(t *testing.T) {
	source := &memorySource{}
	retriever := NewRetriever(source, source, nil, RetrieverOptions{})

	postings := retriever.FetchPostings(context.Background(), nil, "Berlin", resume.UnknownDomain(), 3)

	assert.Zero(t, postings.Len())
	assert.Empty(t, source.queries)
}
