package suggest

import (
	"reflect"
	"slices"
	"strings"
	"testing"

	"resumeforge/internal/types"
)

func emptyResume() *types.Resume {
	r := &types.Resume{}
	r.Normalize()
	return r
}

func completeResume() *types.Resume {
	r := emptyResume()
	r.PersonalInfo = types.PersonalInfo{
		FullName: "Jane Doe", Email: "jane@example.com",
		Phone: "555-0100", Title: "Engineer",
	}
	r.Summary = strings.Repeat("Engineer with broad platform experience. ", 3)
	r.Skills = []string{"React", "TypeScript", "Node.js", "JavaScript", "Python", "AWS", "SQL", "Java", "Docker"}
	r.Experience = []types.Experience{
		{
			ID: "e1", Company: "Acme", Position: "Engineer",
			Achievements: []string{"Improved latency by 30%", "Onboarded 200 users", "Cut infra spend by 15%"},
		},
	}
	r.Projects = []types.Project{{ID: "p1", Name: "resumeforge"}}
	r.Certifications = []types.Certification{{ID: "c1", Name: "AWS SAA"}}
	r.Links = []types.Link{{ID: "k1", Type: "GitHub"}, {ID: "k2", Type: "LinkedIn"}}
	return r
}

func titles(suggestions []types.Suggestion) []string {
	out := make([]string, len(suggestions))
	for i, s := range suggestions {
		out[i] = s.Title
	}
	return out
}

func TestGenerateDeterminism(t *testing.T) {
	r := emptyResume()
	r.Summary = "short"
	r.Skills = []string{"React"}

	first := Generate(r)
	second := Generate(r)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Expected element-wise identical suggestion lists across calls")
	}
}

func TestGeneratePerfectResumeOnlyFormatSuggestion(t *testing.T) {
	suggestions := Generate(completeResume())
	if len(suggestions) != 1 {
		t.Fatalf("Expected only the unconditional format suggestion, got %v", titles(suggestions))
	}
	s := suggestions[0]
	if s.Type != types.SuggestionFormat || s.Title != "Optimize section order" || s.Impact != types.ImpactLow {
		t.Errorf("Unexpected unconditional suggestion: %+v", s)
	}
}

func TestGenerateOrderingInvariant(t *testing.T) {
	// Empty resume triggers both the format suggestion and the
	// empty-experience suggestion; experience must come last.
	suggestions := Generate(emptyResume())

	got := titles(suggestions)
	formatIdx := slices.Index(got, "Optimize section order")
	expIdx := slices.Index(got, "Add work experience")
	if formatIdx == -1 || expIdx == -1 {
		t.Fatalf("Expected both format and experience suggestions, got %v", got)
	}
	if formatIdx > expIdx {
		t.Errorf("Format suggestion must precede the experience suggestion: %v", got)
	}
	if expIdx != len(got)-1 {
		t.Errorf("Experience suggestion must be last, got position %d of %d", expIdx, len(got))
	}
}

func TestGenerateEmptyResumeChecks(t *testing.T) {
	got := titles(Generate(emptyResume()))
	expected := []string{
		"Add contact information",
		"Add a professional summary",
		"Add in-demand keywords",
		"Add more achievements",
		"Quantify your achievements",
		"Add relevant projects",
		"Add professional certifications",
		"Add professional links",
		"Optimize section order",
		"Add work experience",
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Unexpected suggestion order.\nExpected: %v\nGot:      %v", expected, got)
	}
}

func TestGenerateSummaryChecks(t *testing.T) {
	tests := []struct {
		name          string
		summary       string
		expectedTitle string
		expectedType  types.SuggestionType
	}{
		{"empty summary", "", "Add a professional summary", types.SuggestionContent},
		{"whitespace only", "   \n ", "Add a professional summary", types.SuggestionContent},
		{"short summary", "I write software.", "Expand your professional summary", types.SuggestionImprovement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := emptyResume()
			r.Summary = tt.summary
			got := Generate(r)
			idx := slices.Index(titles(got), tt.expectedTitle)
			if idx == -1 {
				t.Fatalf("Expected %q in %v", tt.expectedTitle, titles(got))
			}
			if got[idx].Type != tt.expectedType {
				t.Errorf("Expected type %s, got %s", tt.expectedType, got[idx].Type)
			}
		})
	}

	t.Run("long summary emits neither", func(t *testing.T) {
		r := emptyResume()
		r.Summary = strings.Repeat("x", 61)
		got := titles(Generate(r))
		if slices.Contains(got, "Add a professional summary") || slices.Contains(got, "Expand your professional summary") {
			t.Errorf("Expected no summary suggestion for long summary, got %v", got)
		}
	})
}

func TestGenerateKeywordSuggestion(t *testing.T) {
	r := emptyResume()
	r.Skills = []string{"React", "TypeScript"}

	got := Generate(r)
	idx := slices.Index(titles(got), "Add in-demand keywords")
	if idx == -1 {
		t.Fatalf("Expected keyword suggestion, got %v", titles(got))
	}
	s := got[idx]
	if s.Type != types.SuggestionKeyword {
		t.Errorf("Expected keyword type, got %s", s.Type)
	}
	if len(s.Keywords) == 0 || len(s.Keywords) > 5 {
		t.Errorf("Expected 1-5 carried keywords, got %v", s.Keywords)
	}
	if slices.Contains(s.Keywords, "react") || slices.Contains(s.Keywords, "typescript") {
		t.Errorf("Covered keywords must not be suggested: %v", s.Keywords)
	}
	for _, kw := range s.Keywords {
		if !strings.Contains(s.Description, kw) {
			t.Errorf("Description should list keyword %q: %s", kw, s.Description)
		}
	}
}

func TestMissingKeywords(t *testing.T) {
	tests := []struct {
		name    string
		skills  []string
		absent  []string
		present []string
	}{
		{
			name:    "no skills misses everything",
			skills:  nil,
			present: []string{"react", "typescript", "node", "node.js", "javascript", "python", "aws", "sql", "java", "docker"},
		},
		{
			name:    "node.js covers both node keywords",
			skills:  []string{"Node.js"},
			absent:  []string{"node", "node.js"},
			present: []string{"react", "python"},
		},
		{
			name:   "case-insensitive match",
			skills: []string{"PYTHON", "Aws"},
			absent: []string{"python", "aws"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			missing := MissingKeywords(tt.skills)
			for _, kw := range tt.absent {
				if slices.Contains(missing, kw) {
					t.Errorf("Keyword %q should be covered by %v", kw, tt.skills)
				}
			}
			for _, kw := range tt.present {
				if !slices.Contains(missing, kw) {
					t.Errorf("Keyword %q should be missing given %v", kw, tt.skills)
				}
			}
		})
	}
}

func TestGenerateLinkChecks(t *testing.T) {
	t.Run("no links", func(t *testing.T) {
		got := titles(Generate(emptyResume()))
		if !slices.Contains(got, "Add professional links") {
			t.Errorf("Expected links suggestion, got %v", got)
		}
	})

	t.Run("links without github or linkedin", func(t *testing.T) {
		r := emptyResume()
		r.Links = []types.Link{{ID: "k1", Type: "Website", URL: "https://example.com"}}
		got := titles(Generate(r))
		if slices.Contains(got, "Add professional links") {
			t.Errorf("Links exist, generic link suggestion should not fire: %v", got)
		}
		if !slices.Contains(got, "Add LinkedIn and GitHub profiles") {
			t.Errorf("Expected profile-specific suggestion, got %v", got)
		}
	})

	t.Run("github link satisfies the check", func(t *testing.T) {
		r := emptyResume()
		r.Links = []types.Link{{ID: "k1", Type: "GitHub", URL: "https://github.com/jane"}}
		got := titles(Generate(r))
		if slices.Contains(got, "Add professional links") || slices.Contains(got, "Add LinkedIn and GitHub profiles") {
			t.Errorf("No link suggestion expected, got %v", got)
		}
	})
}

func BenchmarkGenerate(b *testing.B) {
	r := completeResume()
	for b.Loop() {
		Generate(r)
	}
}
