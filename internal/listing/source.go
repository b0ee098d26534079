package listing

import (
	"context"
	"fmt"
	"io"
)

// Source fetches raw documents from a job listing provider.
type Source interface {
	Name() string
	// Search returns the result document for query in location.
	Search(ctx context.Context, query, location string) (io.ReadCloser, error)
	// Detail returns the posting page at url.
	Detail(ctx context.Context, url string) (io.ReadCloser, error)
}

// Parser locates postings and descriptions in documents returned by a Source.
type Parser interface {
	// ParseCards returns at most limit postings found in a search document.
	// Description and SearchTerm are left empty.
	ParseCards(r io.Reader, limit int) ([]*JobPosting, error)
	// ParseDescription returns the description region of a posting page, or
	// an empty string when the page has none.
	ParseDescription(r io.Reader) (string, error)
}

// FetchError describes a failed request to a listing source.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: bad status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
