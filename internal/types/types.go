package types

import (
	"time"
)

// PersonalInfo holds the contact block of a resume. All fields are optional;
// scoring only looks at non-emptiness.
type PersonalInfo struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Title    string `json:"title"`
}

// Experience represents a single work history entry
type Experience struct {
	ID           string   `json:"id"`
	Company      string   `json:"company"`
	Position     string   `json:"position"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	Current      bool     `json:"current"`
	Description  string   `json:"description"`
	Achievements []string `json:"achievements"`
}

// Education represents a single education entry
type Education struct {
	ID          string `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	GPA         string `json:"gpa,omitempty"`
}

// Project represents a portfolio project entry
type Project struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	URL          string   `json:"url,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
}

// Certification represents a professional certification entry
type Certification struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Issuer string `json:"issuer,omitempty"`
	Date   string `json:"date,omitempty"`
}

// Language represents a spoken language entry
type Language struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

// Link represents a professional profile link. Type identifies the platform,
// e.g. "GitHub" or "LinkedIn".
type Link struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

// ResumeContent is the editable subset of a resume: everything a version
// snapshot captures and a restore writes back.
type ResumeContent struct {
	PersonalInfo   PersonalInfo    `json:"personalInfo"`
	Summary        string          `json:"summary"`
	Skills         []string        `json:"skills"`
	Experience     []Experience    `json:"experience"`
	Education      []Education     `json:"education"`
	Projects       []Project       `json:"projects"`
	Certifications []Certification `json:"certifications"`
	Languages      []Language      `json:"languages"`
	Links          []Link          `json:"links"`
}

// ResumeVersion is an immutable snapshot of a resume's editable content.
// Data must never alias the live resume's containers.
type ResumeVersion struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Label     string        `json:"label"`
	Data      ResumeContent `json:"data"`
}

// Resume is the root entity the scorer, suggestion generator and version
// history operate on.
type Resume struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	ResumeContent

	Versions     []ResumeVersion `json:"versions"`
	ATSScore     int             `json:"atsScore"`
	LastModified time.Time       `json:"lastModified"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// SuggestionType categorizes a suggestion
type SuggestionType string

const (
	SuggestionImprovement SuggestionType = "improvement"
	SuggestionKeyword     SuggestionType = "keyword"
	SuggestionFormat      SuggestionType = "format"
	SuggestionContent     SuggestionType = "content"
)

// SuggestionImpact grades the expected effect of applying a suggestion
type SuggestionImpact string

const (
	ImpactHigh   SuggestionImpact = "high"
	ImpactMedium SuggestionImpact = "medium"
	ImpactLow    SuggestionImpact = "low"
)

// Suggestion is a value object describing one improvement a user could make.
// Keywords is populated only for keyword-type suggestions.
type Suggestion struct {
	Type        SuggestionType   `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Impact      SuggestionImpact `json:"impact"`
	Keywords    []string         `json:"keywords,omitempty"`
}

// SuggestInput is the payload sent to an external suggestion provider
type SuggestInput struct {
	Resume Resume `json:"resume"`
}

// SuggestOutput is the wire contract of a suggestion provider response.
// Fallback true means the provider itself degraded to static suggestions.
type SuggestOutput struct {
	Suggestions []Suggestion `json:"suggestions"`
	Fallback    bool         `json:"fallback"`
	Provider    string       `json:"provider,omitempty"`
	Cached      bool         `json:"cached,omitempty"`
}

// ScoreBonus is one line of a score explanation
type ScoreBonus struct {
	Rule   string `json:"rule"`
	Points int    `json:"points"`
	Max    int    `json:"max"`
	Detail string `json:"detail,omitempty"`
}

// ScoreReport is the scorer's itemized output
type ScoreReport struct {
	Score    int          `json:"score"`
	Baseline int          `json:"baseline"`
	Bonuses  []ScoreBonus `json:"bonuses"`
}

// Normalize applies the defaults-at-construction policy: every optional
// collection becomes an empty collection so downstream logic never needs
// presence checks. Safe to call on resumes deserialized from older payloads
// that predate optional sections or version history.
func (r *Resume) Normalize() {
	r.ResumeContent.Normalize()
	if r.Versions == nil {
		r.Versions = []ResumeVersion{}
	}
	for i := range r.Versions {
		r.Versions[i].Data.Normalize()
	}
}

// Normalize replaces nil collections with empty ones, including the nested
// achievement lists.
func (c *ResumeContent) Normalize() {
	if c.Skills == nil {
		c.Skills = []string{}
	}
	if c.Experience == nil {
		c.Experience = []Experience{}
	}
	for i := range c.Experience {
		if c.Experience[i].Achievements == nil {
			c.Experience[i].Achievements = []string{}
		}
	}
	if c.Education == nil {
		c.Education = []Education{}
	}
	if c.Projects == nil {
		c.Projects = []Project{}
	}
	for i := range c.Projects {
		if c.Projects[i].Technologies == nil {
			c.Projects[i].Technologies = []string{}
		}
	}
	if c.Certifications == nil {
		c.Certifications = []Certification{}
	}
	if c.Languages == nil {
		c.Languages = []Language{}
	}
	if c.Links == nil {
		c.Links = []Link{}
	}
}

// Clone returns a deep copy of the editable content. No slice or nested
// structure is shared with the receiver, so mutating one side never leaks
// into the other.
func (c ResumeContent) Clone() ResumeContent {
	out := c
	out.Skills = append([]string{}, c.Skills...)
	out.Experience = make([]Experience, len(c.Experience))
	for i, exp := range c.Experience {
		out.Experience[i] = exp
		out.Experience[i].Achievements = append([]string{}, exp.Achievements...)
	}
	out.Education = append([]Education{}, c.Education...)
	out.Projects = make([]Project, len(c.Projects))
	for i, p := range c.Projects {
		out.Projects[i] = p
		out.Projects[i].Technologies = append([]string{}, p.Technologies...)
	}
	out.Certifications = append([]Certification{}, c.Certifications...)
	out.Languages = append([]Language{}, c.Languages...)
	out.Links = append([]Link{}, c.Links...)
	return out
}
