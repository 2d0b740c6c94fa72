package ats

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"resumeforge/internal/types"
)

// Scoring model constants. The score starts at the baseline and accrues
// capped bonuses per rule, then clamps to [MinScore, MaxScore].
const (
	Baseline = 50
	MinScore = 10
	MaxScore = 95
)

// Keywords is the fixed keyword set used for coverage scoring and for the
// missing-keyword suggestion. Matching is lowercase substring containment:
// "node.js" and "node" can both match the same text.
var Keywords = []string{
	"react", "typescript", "node", "node.js", "javascript",
	"python", "aws", "sql", "java", "docker",
}

// quantifiedPattern matches achievement text that carries a number: a percent
// figure, a count of people/users/customers/sales, or any standalone digit
// sequence.
var quantifiedPattern = regexp.MustCompile(`\d+%|%\d+|\d+\s*(?:people|users|customers|sales)|\b\d+\b`)

// IsQuantified reports whether an achievement string contains a measurable
// figure.
func IsQuantified(achievement string) bool {
	return quantifiedPattern.MatchString(achievement)
}

// ComputeScore derives the ATS compatibility score for a resume. Pure: the
// caller is responsible for persisting the result onto resume.ATSScore.
func ComputeScore(r *types.Resume) int {
	return Explain(r).Score
}

// Explain computes the score with an itemized bonus table, for display and
// for the score endpoint.
func Explain(r *types.Resume) types.ScoreReport {
	report := types.ScoreReport{Baseline: Baseline}

	add := func(rule string, points, max int, detail string) {
		if points > max {
			points = max
		}
		report.Bonuses = append(report.Bonuses, types.ScoreBonus{
			Rule:   rule,
			Points: points,
			Max:    max,
			Detail: detail,
		})
	}

	contact := contactFieldCount(r.PersonalInfo)
	add("contact", contact*3, 10, fmt.Sprintf("%d of 4 contact fields filled", contact))

	summaryPoints := 0
	if len(strings.TrimSpace(r.Summary)) > 60 {
		summaryPoints = 8
	}
	add("summary", summaryPoints, 8, "summary longer than 60 characters")

	add("skills", len(r.Skills)*2, 15, fmt.Sprintf("%d skills listed", len(r.Skills)))

	quantified := CountQuantifiedAchievements(r.Experience)
	add("quantified_achievements", quantified*5, 15, fmt.Sprintf("%d quantified achievements", quantified))

	matched := MatchedKeywords(r)
	add("keywords", len(matched)*2, 10, strings.Join(matched, ", "))

	projectPoints := 0
	if len(r.Projects) > 0 {
		projectPoints = 5
	}
	add("projects", projectPoints, 5, fmt.Sprintf("%d projects", len(r.Projects)))

	certPoints := 0
	if len(r.Certifications) > 0 {
		certPoints = 10
	}
	add("certifications", certPoints, 10, fmt.Sprintf("%d certifications", len(r.Certifications)))

	add("languages", len(r.Languages)*2, 5, fmt.Sprintf("%d languages", len(r.Languages)))

	linkPoints := 0
	if hasLinkType(r.Links, "GitHub") {
		linkPoints += 5
	}
	if hasLinkType(r.Links, "LinkedIn") {
		linkPoints += 3
	}
	add("links", linkPoints, 8, "GitHub and LinkedIn profiles")

	total := Baseline
	for _, b := range report.Bonuses {
		total += b.Points
	}
	if total < MinScore {
		total = MinScore
	}
	if total > MaxScore {
		total = MaxScore
	}
	report.Score = total
	return report
}

// CountQuantifiedAchievements counts achievement strings across all
// experience entries that match the quantification pattern.
func CountQuantifiedAchievements(experience []types.Experience) int {
	count := 0
	for _, exp := range experience {
		for _, a := range exp.Achievements {
			if IsQuantified(a) {
				count++
			}
		}
	}
	return count
}

// MatchedKeywords returns the keywords from the fixed set found anywhere in
// the resume's summary, experience text, or skills. Substring containment on
// the lowercased concatenation, so overlapping keywords each count.
func MatchedKeywords(r *types.Resume) []string {
	var b strings.Builder
	b.WriteString(r.Summary)
	for _, exp := range r.Experience {
		b.WriteString(" ")
		b.WriteString(exp.Description)
		for _, a := range exp.Achievements {
			b.WriteString(" ")
			b.WriteString(a)
		}
	}
	for _, s := range r.Skills {
		b.WriteString(" ")
		b.WriteString(s)
	}
	haystack := strings.ToLower(b.String())

	matched := make([]string, 0, len(Keywords))
	for _, kw := range Keywords {
		if strings.Contains(haystack, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}

func contactFieldCount(info types.PersonalInfo) int {
	count := 0
	for _, field := range []string{info.FullName, info.Email, info.Phone, info.Title} {
		if strings.TrimSpace(field) != "" {
			count++
		}
	}
	return count
}

func hasLinkType(links []types.Link, linkType string) bool {
	for _, l := range links {
		if l.Type == linkType {
			return true
		}
	}
	return false
}

// DependencyKey produces a stable digest of the fields the score depends on.
// Callers can memoize on it so that edits to unrelated fields (resume name,
// template choice) do not trigger recomputation.
func DependencyKey(r *types.Resume) string {
	payload := struct {
		PersonalInfo   types.PersonalInfo    `json:"personalInfo"`
		Summary        string                `json:"summary"`
		Skills         []string              `json:"skills"`
		Experience     []types.Experience    `json:"experience"`
		Projects       []types.Project       `json:"projects"`
		Certifications []types.Certification `json:"certifications"`
		Languages      []types.Language      `json:"languages"`
		Links          []types.Link          `json:"links"`
	}{
		PersonalInfo:   r.PersonalInfo,
		Summary:        r.Summary,
		Skills:         r.Skills,
		Experience:     r.Experience,
		Projects:       r.Projects,
		Certifications: r.Certifications,
		Languages:      r.Languages,
		Links:          r.Links,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		// Marshal of plain structs cannot fail in practice; fall back to an
		// always-miss key rather than panicking.
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Memo caches the last computed score keyed by dependency digest. Not
// goroutine-safe; intended for a single editing session.
type Memo struct {
	key   string
	score int
}

// Score returns the memoized score when the dependency key is unchanged,
// recomputing otherwise.
func (m *Memo) Score(r *types.Resume) int {
	key := DependencyKey(r)
	if key != "" && key == m.key {
		return m.score
	}
	m.key = key
	m.score = ComputeScore(r)
	return m.score
}
