// Package listing retrieves job postings from a listing source.
package listing

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// DescriptionNotAvailable replaces descriptions that could not be fetched.
const DescriptionNotAvailable = "description not available"

// JobPosting is a single job opening.
type JobPosting struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	URL         string `json:"url"`
	// SearchTerm is the query that discovered the posting.
	SearchTerm string `json:"search_term"`
}

// Key is the identity of a posting across search terms.
type Key struct {
	Title   string
	Company string
}

func (k Key) String() string {
	return k.Title + " @ " + k.Company
}

// Key returns the (title, company) identity of the posting.
func (p *JobPosting) Key() Key {
	return Key{Title: p.Title, Company: p.Company}
}

type Postings struct {
	Items []*JobPosting
}

func (p *Postings) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Items)
}

// Add appends posting unless one with the same key is already present.
func (p *Postings) Add(posting *JobPosting) bool {
	key := posting.Key()
	for _, existing := range p.Items {
		if existing.Key() == key {
			return false
		}
	}
	p.Items = append(p.Items, posting)
	return true
}

// Exclude removes postings matched by drop, keeping the order of the rest.
// It returns the removed postings' keys.
func (p *Postings) Exclude(drop func(*JobPosting) bool) []string {
	var removed []string
	kept := p.Items[:0]
	for _, posting := range p.Items {
		if drop(posting) {
			removed = append(removed, posting.Key().String())
			continue
		}
		kept = append(kept, posting)
	}
	p.Items = kept
	return removed
}

func (p *Postings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportByCompany groups postings by company name.
func (p *Postings) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, posting := range p.Items {
		company := strings.TrimSpace(posting.Company)
		if company == "" {
			company = "unknown company"
		}
		report[company] = append(report[company], map[string]string{
			"title":       posting.Title,
			"url":         posting.URL,
			"location":    posting.Location,
			"search term": posting.SearchTerm,
		})
	}
	return report
}

// ToExcluded converts postings into exclude file records stamped with now.
func (p *Postings) ToExcluded(now time.Time) *ExcludedPostings {
	excluded := &ExcludedPostings{}
	for _, posting := range p.Items {
		excluded.Items = append(excluded.Items, &ExcludedPosting{
			Title:      posting.Title,
			Company:    posting.Company,
			URL:        posting.URL,
			ExcludedAt: now.UTC(),
		})
	}
	return excluded
}

// Describe renders the posting for prompts and reports.
func (p *JobPosting) Describe() string {
	return fmt.Sprintf("Title: %s\nCompany: %s\nLocation: %s\nDescription: %s",
		p.Title, p.Company, p.Location, p.Description)
}
