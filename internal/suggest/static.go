package suggest

import (
	"fmt"
	"strings"

	"resumeforge/internal/ats"
	"resumeforge/internal/types"
)

// maxSuggestedKeywords caps how many missing keywords a single keyword
// suggestion carries.
const maxSuggestedKeywords = 5

// Generate builds the static suggestion list for a resume. Deterministic and
// order-stable: the same resume always yields the same list. Checks run in a
// fixed order; the "Optimize section order" format suggestion is always
// emitted, and the empty-experience suggestion, when it applies, comes last.
func Generate(r *types.Resume) []types.Suggestion {
	suggestions := make([]types.Suggestion, 0, 10)

	if strings.TrimSpace(r.PersonalInfo.Email) == "" || strings.TrimSpace(r.PersonalInfo.Phone) == "" {
		suggestions = append(suggestions, types.Suggestion{
			Type:        types.SuggestionImprovement,
			Title:       "Add contact information",
			Description: "Include both an email address and a phone number so recruiters can reach you.",
			Impact:      types.ImpactHigh,
		})
	}

	trimmedSummary := strings.TrimSpace(r.Summary)
	if trimmedSummary == "" {
		suggestions = append(suggestions, types.Suggestion{
			Type:        types.SuggestionContent,
			Title:       "Add a professional summary",
			Description: "A short summary at the top helps screeners understand your profile at a glance.",
			Impact:      types.ImpactHigh,
		})
	} else if len(trimmedSummary) < 60 {
		suggestions = append(suggestions, types.Suggestion{
			Type:        types.SuggestionImprovement,
			Title:       "Expand your professional summary",
			Description: "Your summary is very short. Aim for two or three sentences covering role, experience and strengths.",
			Impact:      types.ImpactMedium,
		})
	}

	if missing := MissingKeywords(r.Skills); len(missing) > 0 {
		picked := missing
		if len(picked) > maxSuggestedKeywords {
			picked = picked[:maxSuggestedKeywords]
		}
		suggestions = append(suggestions, types.Suggestion{
			Type:        types.SuggestionKeyword,
			Title:       "Add in-demand keywords",
			Description: fmt.Sprintf("Consider adding these skills if you have them: %s.", strings.Join(picked, ", ")),
			Impact:      types.ImpactMedium,
			Keywords:    picked,
		})
	}

	experienceCount := len(r.Experience)
	achievementCount := 0
	for _, exp := range r.Experience {
		achievementCount += len(exp.Achievements)
	}
	if achievementCount < max(3, experienceCount*2) {
		suggestions = append(suggestions, types.Suggestion{
			Type:        types.SuggestionImprovement,
			Title:       "Add more achievements",
			Description: "List concrete achievements under each role instead of only responsibilities.",
			Impact:      types.ImpactHigh,
		})
	}

	if ats.CountQuantifiedAchievements(r.Experience) < max(2, experienceCount) {
		suggestions = append(suggestions, types.Suggestion{
			Type:        types.SuggestionContent,
			Title:       "Quantify your achievements",
			Description: "Add numbers to your achievements: percentages, user counts, revenue. Screeners and recruiters weight measurable impact.",
			Impact:      types.ImpactHigh,
		})
	}

	if len(r.Projects) == 0 {
		suggestions = append(suggestions, types.Suggestion{
			Type:        types.SuggestionContent,
			Title:       "Add relevant projects",
			Description: "A projects section demonstrates hands-on skills, especially for technical roles.",
			Impact:      types.ImpactMedium,
		})
	}

	if len(r.Certifications) == 0 {
		suggestions = append(suggestions, types.Suggestion{
			Type:        types.SuggestionImprovement,
			Title:       "Add professional certifications",
			Description: "Certifications are easy keyword matches for automated screening.",
			Impact:      types.ImpactLow,
		})
	}

	if len(r.Links) == 0 {
		suggestions = append(suggestions, types.Suggestion{
			Type:        types.SuggestionImprovement,
			Title:       "Add professional links",
			Description: "Link your GitHub and LinkedIn profiles so reviewers can see your work.",
			Impact:      types.ImpactMedium,
		})
	} else if !hasLinkType(r.Links, "GitHub") && !hasLinkType(r.Links, "LinkedIn") {
		suggestions = append(suggestions, types.Suggestion{
			Type:        types.SuggestionImprovement,
			Title:       "Add LinkedIn and GitHub profiles",
			Description: "Recruiters expect LinkedIn and, for technical roles, GitHub links.",
			Impact:      types.ImpactMedium,
		})
	}

	// Always emitted, regardless of resume state
	suggestions = append(suggestions, types.Suggestion{
		Type:        types.SuggestionFormat,
		Title:       "Optimize section order",
		Description: "Place your skills section near the top so keyword scanners find it early.",
		Impact:      types.ImpactLow,
	})

	// Kept after the format suggestion so it is the last item when it applies
	if len(r.Experience) == 0 {
		suggestions = append(suggestions, types.Suggestion{
			Type:        types.SuggestionContent,
			Title:       "Add work experience",
			Description: "Add at least one work experience entry, including internships or freelance work.",
			Impact:      types.ImpactHigh,
		})
	}

	return suggestions
}

// MissingKeywords returns the fixed keyword set minus the keywords already
// covered by the given skills, compared case-insensitively by containment.
// Order follows the keyword set, so output is deterministic.
func MissingKeywords(skills []string) []string {
	lowered := make([]string, len(skills))
	for i, s := range skills {
		lowered[i] = strings.ToLower(s)
	}

	missing := make([]string, 0, len(ats.Keywords))
	for _, kw := range ats.Keywords {
		found := false
		for _, skill := range lowered {
			if strings.Contains(skill, kw) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, kw)
		}
	}
	return missing
}

func hasLinkType(links []types.Link, linkType string) bool {
	for _, l := range links {
		if l.Type == linkType {
			return true
		}
	}
	return false
}
