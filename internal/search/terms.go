// Package search derives listing search queries from a résumé profile.
package search

import (
	"strings"

	"github.com/spigell/resume-matcher/internal/resume"
)

const (
	// MaxTerms caps the number of generated search terms.
	MaxTerms = 4

	maxTitleTerms   = 2
	maxRelatedTerms = 3

	entryLevelTerm  = "entry level"
	experiencedTerm = "experienced"
)

// GenerateTerms builds up to MaxTerms distinct search queries. It is pure:
// identical inputs always produce the same terms in the same order.
//
// Priority: current titles, then past titles up to two, then related job
// titles up to three, then "<industry> <first title>" for non-technical
// résumés with a specific industry. With nothing found it falls back to
// "entry level" or "experienced" based on the experience level.
func GenerateTerms(history []resume.JobTitleRecord, attrs resume.Attributes, domain resume.Domain) []string {
	terms := newTermSet()

	for _, r := range history {
		if r.IsCurrent && terms.len() < maxTitleTerms {
			terms.add(r.Title)
		}
	}
	for _, r := range history {
		if !r.IsCurrent && terms.len() < maxTitleTerms {
			terms.add(r.Title)
		}
	}

	for _, title := range attrs[resume.RelatedJobTitles] {
		if terms.len() >= maxRelatedTerms {
			break
		}
		terms.add(title)
	}

	// Without a usable title the industry alone is still a query.
	if domain.HasSpecificIndustry() {
		terms.add(strings.TrimSpace(domain.Industry + " " + firstTitle(history)))
	}

	if terms.len() == 0 {
		level := strings.ToLower(strings.Join(attrs[resume.ExperienceLevel], " "))
		if strings.Contains(level, "entry") {
			terms.add(entryLevelTerm)
		} else {
			terms.add(experiencedTerm)
		}
	}

	return terms.first(MaxTerms)
}

func firstTitle(history []resume.JobTitleRecord) string {
	for _, r := range history {
		if usableTitle(r.Title) {
			return strings.TrimSpace(r.Title)
		}
	}
	return ""
}

// usableTitle rejects blanks and the extraction sentinel.
func usableTitle(title string) bool {
	title = strings.TrimSpace(title)
	return title != "" && !strings.EqualFold(title, resume.UnparsedJobHistory()[0].Title)
}

// termSet keeps insertion order and drops repeats.
type termSet struct {
	seen  map[string]struct{}
	items []string
}

func newTermSet() *termSet {
	return &termSet{seen: map[string]struct{}{}}
}

func (s *termSet) add(term string) {
	term = strings.Join(strings.Fields(term), " ")
	if !usableTitle(term) {
		return
	}
	if _, ok := s.seen[term]; ok {
		return
	}
	s.seen[term] = struct{}{}
	s.items = append(s.items, term)
}

func (s *termSet) len() int {
	return len(s.items)
}

func (s *termSet) first(n int) []string {
	if len(s.items) > n {
		return append([]string(nil), s.items[:n]...)
	}
	return append([]string(nil), s.items...)
}
