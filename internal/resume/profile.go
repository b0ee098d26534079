// Package resume turns raw résumé text into a structured profile using the
// semantic analysis service. Every exported extraction is total: service and
// parse failures degrade to documented fallback values instead of errors.
package resume

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResume is returned when the résumé text is empty after trimming.
var ErrEmptyResume = errors.New("resume text is empty")

// DomainType is the coarse résumé classification.
type DomainType string

const (
	DomainTechnical    DomainType = "technical"
	DomainNonTechnical DomainType = "non-technical"
	DomainUnknown      DomainType = "unknown"
)

// GeneralIndustry is used whenever the industry cannot be determined.
const GeneralIndustry = "general"

// Domain is the résumé classification with its lower-cased industry.
type Domain struct {
	Type     DomainType `json:"type"`
	Industry string     `json:"industry"`
}

// UnknownDomain is returned when classification is impossible.
func UnknownDomain() Domain {
	return Domain{Type: DomainUnknown, Industry: GeneralIndustry}
}

// HasSpecificIndustry reports whether d is non-technical with a known industry.
// Search terms and listing queries get industry context only in that case.
func (d Domain) HasSpecificIndustry() bool {
	return d.Type == DomainNonTechnical && d.Industry != "" && d.Industry != GeneralIndustry
}

// Level is the seniority of a single role.
type Level string

const (
	LevelJunior    Level = "Junior"
	LevelMid       Level = "Mid"
	LevelSenior    Level = "Senior"
	LevelExecutive Level = "Executive"
	LevelUnknown   Level = "unknown"
)

// ParseLevel maps free text onto a known Level, case-insensitively.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "junior":
		return LevelJunior
	case "mid", "middle", "mid-level":
		return LevelMid
	case "senior":
		return LevelSenior
	case "executive":
		return LevelExecutive
	default:
		return LevelUnknown
	}
}

// JobTitleRecord is one role from the candidate's history, as best extracted.
type JobTitleRecord struct {
	Title     string `json:"title"`
	IsCurrent bool   `json:"current"`
	Industry  string `json:"industry"`
	Level     Level  `json:"level"`
}

const (
	unparsedJobTitles = "could not parse job titles"
	unknownValue      = "unknown"
)

// UnparsedJobHistory is the single-record history returned when extraction fails.
func UnparsedJobHistory() []JobTitleRecord {
	return []JobTitleRecord{{
		Title:     unparsedJobTitles,
		IsCurrent: false,
		Industry:  unknownValue,
		Level:     LevelUnknown,
	}}
}

// Describe renders the record as "Title (Current, industry, level)".
func (r JobTitleRecord) Describe() string {
	status := "Past"
	if r.IsCurrent {
		status = "Current"
	}
	return fmt.Sprintf("%s (%s, %s, %s)", r.Title, status, r.Industry, r.Level)
}

// DescribeHistory renders one "- record" line per role.
func DescribeHistory(history []JobTitleRecord) string {
	lines := make([]string, 0, len(history))
	for _, r := range history {
		lines = append(lines, "- "+r.Describe())
	}
	return strings.Join(lines, "\n")
}

// Category is one of the fixed attribute groups extracted from a résumé.
type Category string

const (
	ProfessionalSkills  Category = "Professional Skills"
	ExperienceLevel     Category = "Experience Level"
	CoreExpertiseAreas  Category = "Core Expertise Areas"
	Industries          Category = "Industries"
	EducationBackground Category = "Education Background"
	KeyAchievements     Category = "Key Achievements"
	YearsOfExperience   Category = "Years of Experience"
	RelatedJobTitles    Category = "Related Job Titles"
)

// Categories lists every attribute category in presentation order.
var Categories = []Category{
	ProfessionalSkills,
	ExperienceLevel,
	CoreExpertiseAreas,
	Industries,
	EducationBackground,
	KeyAchievements,
	YearsOfExperience,
	RelatedJobTitles,
}

// Attributes maps every category to its ordered values. Use NewAttributes or
// Complete so that all categories are present.
type Attributes map[Category][]string

// NewAttributes returns attributes with every category set to an empty slice.
func NewAttributes() Attributes {
	attrs := make(Attributes, len(Categories))
	for _, c := range Categories {
		attrs[c] = []string{}
	}
	return attrs
}

// Complete returns a copy of a containing every category exactly once.
func (a Attributes) Complete() Attributes {
	out := NewAttributes()
	for _, c := range Categories {
		if values, ok := a[c]; ok && values != nil {
			out[c] = append([]string{}, values...)
		}
	}
	return out
}

// Describe renders non-empty categories as "Category:\n- value" blocks.
func (a Attributes) Describe() string {
	blocks := make([]string, 0, len(Categories))
	for _, c := range Categories {
		values := a[c]
		if len(values) == 0 {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("%s:\n- %s", c, strings.Join(values, "\n- ")))
	}
	return strings.Join(blocks, "\n")
}

// Profile is the structured representation of a résumé.
type Profile struct {
	Domain       Domain           `json:"domain"`
	JobHistory   []JobTitleRecord `json:"job_history"`
	Attributes   Attributes       `json:"attributes"`
	Contact      Contact          `json:"contact"`
	Summary      string           `json:"summary,omitempty"`
	Improvements string           `json:"improvements,omitempty"`
}
