package suggest

import (
	"slices"
	"strings"
	"time"

	"resumeforge/internal/types"
)

// ApplyAction tells the caller what an application did, or what interactive
// step it needs to drive next.
type ApplyAction string

const (
	// ActionSkillsUpdated means keywords were added to the skill list
	ActionSkillsUpdated ApplyAction = "skills_updated"
	// ActionAchievementAdded means a placeholder achievement was appended to
	// the first experience entry
	ActionAchievementAdded ApplyAction = "achievement_added"
	// ActionEditSummary means the caller should open a summary editing step
	// seeded with the current summary
	ActionEditSummary ApplyAction = "edit_summary"
	// ActionDismissed means the suggestion required no resume change
	ActionDismissed ApplyAction = "dismissed"
	// ActionNone means the suggestion could not be applied (for example an
	// achievement suggestion on a resume with no experience entries)
	ActionNone ApplyAction = "none"
)

// placeholderAchievement is appended when an achievement-related suggestion
// is applied; the user is expected to edit it afterwards.
const placeholderAchievement = "Achieved [measurable result] by [action taken]"

// ApplyResult reports the outcome of applying one suggestion
type ApplyResult struct {
	Action      ApplyAction
	Mutated     bool
	SeedSummary string
	AddedSkills []string
}

// Apply dispatches a suggestion onto the resume. For keyword suggestions,
// chosen selects which of the suggestion's keywords to add; nil means all of
// them. Skill de-duplication is exact-match, consistent with skills not being
// case-normalized anywhere else in the model. Callers should re-score and
// regenerate suggestions after any mutating application.
func Apply(r *types.Resume, s types.Suggestion, chosen []string, now time.Time) ApplyResult {
	switch s.Type {
	case types.SuggestionKeyword:
		toAdd := chosen
		if toAdd == nil {
			toAdd = s.Keywords
		}
		added := make([]string, 0, len(toAdd))
		for _, kw := range toAdd {
			if kw == "" || slices.Contains(r.Skills, kw) {
				continue
			}
			r.Skills = append(r.Skills, kw)
			added = append(added, kw)
		}
		if len(added) == 0 {
			return ApplyResult{Action: ActionDismissed}
		}
		r.LastModified = now
		return ApplyResult{Action: ActionSkillsUpdated, Mutated: true, AddedSkills: added}

	case types.SuggestionImprovement, types.SuggestionContent:
		title := strings.ToLower(s.Title)
		switch {
		case strings.Contains(title, "achievement"):
			if len(r.Experience) == 0 {
				return ApplyResult{Action: ActionNone}
			}
			r.Experience[0].Achievements = append(r.Experience[0].Achievements, placeholderAchievement)
			r.LastModified = now
			return ApplyResult{Action: ActionAchievementAdded, Mutated: true}
		case strings.Contains(title, "summary"):
			return ApplyResult{Action: ActionEditSummary, SeedSummary: r.Summary}
		default:
			return ApplyResult{Action: ActionDismissed}
		}

	default: // format suggestions carry no mutation
		return ApplyResult{Action: ActionDismissed}
	}
}

// Key derives a stable content key for a suggestion: type, title and a prefix
// of the description. Used to make sure a suggestion that reappears verbatim
// across regenerations is never auto-applied twice.
func Key(s types.Suggestion) string {
	desc := s.Description
	if len(desc) > 40 {
		desc = desc[:40]
	}
	return string(s.Type) + "|" + s.Title + "|" + desc
}

// AppliedTracker remembers which suggestions have been auto-applied by
// content key.
type AppliedTracker struct {
	seen map[string]bool
}

// NewAppliedTracker creates an empty tracker
func NewAppliedTracker() *AppliedTracker {
	return &AppliedTracker{seen: make(map[string]bool)}
}

// MarkApplied records a suggestion as applied and reports whether it was
// newly recorded. A false return means the suggestion was applied before and
// must be skipped.
func (t *AppliedTracker) MarkApplied(s types.Suggestion) bool {
	key := Key(s)
	if t.seen[key] {
		return false
	}
	t.seen[key] = true
	return true
}

// Applied reports whether a suggestion has been applied already
func (t *AppliedTracker) Applied(s types.Suggestion) bool {
	return t.seen[Key(s)]
}
