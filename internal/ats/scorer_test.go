package ats

import (
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

func TestComputeScoreEmptyResumeBaseline(t *testing.T) {
	score := ComputeScore(emptyResume())
	if score != Baseline {
		t.Errorf("Expected empty resume to score the baseline %d, got %d", Baseline, score)
	}
}

func TestComputeScoreBounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *types.Resume)
	}{
		{
			name:   "empty resume",
			mutate: func(r *types.Resume) {},
		},
		{
			name: "fully loaded resume",
			mutate: func(r *types.Resume) {
				r.PersonalInfo = types.PersonalInfo{
					FullName: "Jane Doe", Email: "jane@example.com",
					Phone: "555-0100", Location: "Berlin", Title: "Engineer",
				}
				r.Summary = strings.Repeat("Experienced engineer shipping product. ", 4)
				r.Skills = []string{"React", "TypeScript", "Node.js", "Python", "AWS", "SQL", "Java", "Docker", "Go", "Kubernetes"}
				r.Experience = []types.Experience{
					{
						ID: "e1", Company: "Acme", Position: "Engineer",
						Description:  "Built javascript services",
						Achievements: []string{"Improved latency by 30%", "Onboarded 200 users", "Cut costs by 15%", "Shipped 4 releases"},
					},
				}
				r.Projects = []types.Project{{ID: "p1", Name: "resume builder"}}
				r.Certifications = []types.Certification{{ID: "c1", Name: "AWS SAA"}}
				r.Languages = []types.Language{{ID: "l1", Name: "English"}, {ID: "l2", Name: "German"}, {ID: "l3", Name: "French"}}
				r.Links = []types.Link{{ID: "k1", Type: "GitHub"}, {ID: "k2", Type: "LinkedIn"}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := emptyResume()
			tt.mutate(r)
			score := ComputeScore(r)
			if score < MinScore || score > MaxScore {
				t.Errorf("Score %d outside [%d, %d]", score, MinScore, MaxScore)
			}
		})
	}
}

func TestComputeScoreReferenceScenario(t *testing.T) {
	r := emptyResume()
	r.PersonalInfo = types.PersonalInfo{
		FullName: "Jane Doe",
		Email:    "jane@x.com",
		Phone:    "555-1111",
		Title:    "Engineer",
		Location: "",
	}
	r.Summary = strings.Repeat("x", 80)
	r.Skills = []string{"React", "TypeScript", "AWS"}
	r.Experience = []types.Experience{
		{ID: "e1", Company: "Acme", Position: "Engineer", Achievements: []string{"Improved latency by 30%"}},
	}

	// contact 10 + summary 8 + skills 6 + quantified 5 + keywords 6 on top
	// of the 50 baseline
	if score := ComputeScore(r); score != 85 {
		t.Errorf("Expected reference scenario to score 85, got %d", score)
	}
}

func TestComputeScoreMonotonicity(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *types.Resume)
	}{
		{
			name: "adding a certification",
			mutate: func(r *types.Resume) {
				r.Certifications = append(r.Certifications, types.Certification{ID: "c1", Name: "CKA"})
			},
		},
		{
			name: "adding a quantified achievement",
			mutate: func(r *types.Resume) {
				r.Experience[0].Achievements = append(r.Experience[0].Achievements, "Improved X by 20%")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := emptyResume()
			r.Summary = "Shipping software for a decade"
			r.Experience = []types.Experience{{ID: "e1", Company: "Acme", Achievements: []string{}}}
			before := ComputeScore(r)
			tt.mutate(r)
			after := ComputeScore(r)
			if after < before {
				t.Errorf("Score decreased from %d to %d after %s", before, after, tt.name)
			}
		})
	}
}

func TestMatchedKeywordsSubstringSemantics(t *testing.T) {
	r := emptyResume()
	r.Skills = []string{"Node.js"}

	matched := MatchedKeywords(r)
	if !slices.Contains(matched, "node") {
		t.Errorf("Expected 'node' to match against skill 'Node.js', matched: %v", matched)
	}
	if !slices.Contains(matched, "node.js") {
		t.Errorf("Expected 'node.js' to match against skill 'Node.js', matched: %v", matched)
	}
	if len(matched) != 2 {
		t.Errorf("Expected exactly 2 matches for 'Node.js', got %v", matched)
	}
}

func TestIsQuantified(t *testing.T) {
	tests := []struct {
		name        string
		achievement string
		expected    bool
	}{
		{"percent figure", "Improved latency by 30%", true},
		{"user count", "Onboarded 200 users", true},
		{"people count", "Managed 12 people", true},
		{"bare number", "Shipped 4 releases", true},
		{"no number", "Improved the deployment process", false},
		{"empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsQuantified(tt.achievement); got != tt.expected {
				t.Errorf("IsQuantified(%q) = %v, expected %v", tt.achievement, got, tt.expected)
			}
		})
	}
}

func TestDependencyKeyStability(t *testing.T) {
	r := emptyResume()
	r.Summary = "A summary"
	key1 := DependencyKey(r)

	// Unrelated field changes must not change the key
	r.Name = "My Resume Copy"
	r.ATSScore = 99
	if key2 := DependencyKey(r); key2 != key1 {
		t.Errorf("Dependency key changed after unrelated field edits")
	}

	// Scored field changes must change the key
	r.Skills = append(r.Skills, "Go")
	if key3 := DependencyKey(r); key3 == key1 {
		t.Errorf("Dependency key unchanged after scored field edit")
	}
}

func TestMemoAvoidsRecompute(t *testing.T) {
	r := emptyResume()
	r.Skills = []string{"React"}

	var m Memo
	first := m.Score(r)
	r.Name = "renamed"
	second := m.Score(r)
	if first != second {
		t.Errorf("Memoized score changed without a scored-field edit: %d vs %d", first, second)
	}

	r.Certifications = append(r.Certifications, types.Certification{ID: "c1", Name: "CKA"})
	third := m.Score(r)
	if third <= second {
		t.Errorf("Expected score to increase after adding certification, got %d -> %d", second, third)
	}
}

func BenchmarkComputeScore(b *testing.B) {
	r := emptyResume()
	r.Summary = strings.Repeat("Experienced engineer shipping product. ", 4)
	r.Skills = []string{"React", "TypeScript", "Node.js", "Python", "AWS"}
	r.Experience = []types.Experience{
		{ID: "e1", Description: "Built javascript services", Achievements: []string{"Improved latency by 30%", "Onboarded 200 users"}},
	}

	for b.Loop() {
		ComputeScore(r)
	}
}
