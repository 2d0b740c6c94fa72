package history

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"resumeforge/internal/errors"
	"resumeforge/internal/types"
)

func testManager(opts ...Option) *Manager {
	return NewManager(errors.NewLogger(slog.LevelError), opts...)
}

func testResume() *types.Resume {
	r := &types.Resume{ID: "r1", Name: "Test"}
	r.Summary = "Original summary"
	r.Skills = []string{"Go"}
	r.Experience = []types.Experience{
		{ID: "e1", Company: "Acme", Achievements: []string{"Shipped v1"}},
	}
	r.Normalize()
	return r
}

func TestSaveVersionDeepCopy(t *testing.T) {
	m := testManager()
	r := testResume()

	id := m.SaveVersion(r, "before edits")
	if id == "" {
		t.Fatalf("Expected a version id")
	}

	// Mutate every level of the live content after the snapshot
	r.Summary = "Changed"
	r.Skills[0] = "Rust"
	r.Experience[0].Achievements[0] = "Rewritten"

	v, ok := m.FindVersion(r, id)
	if !ok {
		t.Fatalf("Saved version not found")
	}
	if v.Label != "before edits" {
		t.Errorf("Expected label %q, got %q", "before edits", v.Label)
	}
	if v.Data.Summary != "Original summary" {
		t.Errorf("Snapshot summary mutated: %q", v.Data.Summary)
	}
	if v.Data.Skills[0] != "Go" {
		t.Errorf("Snapshot skills mutated: %v", v.Data.Skills)
	}
	if v.Data.Experience[0].Achievements[0] != "Shipped v1" {
		t.Errorf("Snapshot achievements mutated: %v", v.Data.Experience[0].Achievements)
	}
}

func TestSaveVersionDefaultLabel(t *testing.T) {
	m := testManager()
	r := testResume()

	id := m.SaveVersion(r, "")
	v, _ := m.FindVersion(r, id)
	if v.Label != DefaultLabel {
		t.Errorf("Expected default label %q, got %q", DefaultLabel, v.Label)
	}
}

func TestSaveVersionRetention(t *testing.T) {
	m := testManager()
	r := testResume()

	ids := make([]string, 0, DefaultMaxVersions+3)
	for i := 0; i < DefaultMaxVersions+3; i++ {
		r.Summary = fmt.Sprintf("revision %d", i)
		ids = append(ids, m.SaveVersion(r, fmt.Sprintf("v%d", i)))
	}

	if len(r.Versions) != DefaultMaxVersions {
		t.Fatalf("Expected %d retained versions, got %d", DefaultMaxVersions, len(r.Versions))
	}
	// Oldest three dropped, newest kept
	for _, dropped := range ids[:3] {
		if _, ok := m.FindVersion(r, dropped); ok {
			t.Errorf("Version %s should have been evicted", dropped)
		}
	}
	if _, ok := m.FindVersion(r, ids[len(ids)-1]); !ok {
		t.Errorf("Newest version must be retained")
	}
	if r.Versions[0].Label != "v3" {
		t.Errorf("Expected oldest retained version v3, got %s", r.Versions[0].Label)
	}
}

func TestSaveVersionCustomLimit(t *testing.T) {
	m := testManager(WithMaxVersions(2))
	r := testResume()

	m.SaveVersion(r, "a")
	m.SaveVersion(r, "b")
	m.SaveVersion(r, "c")

	if len(r.Versions) != 2 {
		t.Fatalf("Expected 2 retained versions, got %d", len(r.Versions))
	}
	if r.Versions[0].Label != "b" || r.Versions[1].Label != "c" {
		t.Errorf("Expected [b c], got [%s %s]", r.Versions[0].Label, r.Versions[1].Label)
	}
}

func TestRestoreVersion(t *testing.T) {
	m := testManager()
	r := testResume()

	id := m.SaveVersion(r, "checkpoint")
	r.Summary = "Edited after save"
	r.Skills = append(r.Skills, "Rust")

	if !m.RestoreVersion(r, id) {
		t.Fatalf("Expected restore to succeed")
	}
	if r.Summary != "Original summary" {
		t.Errorf("Expected restored summary, got %q", r.Summary)
	}
	if len(r.Skills) != 1 || r.Skills[0] != "Go" {
		t.Errorf("Expected restored skills, got %v", r.Skills)
	}
	// Restore is non-destructive: the snapshot stays available
	if _, ok := m.FindVersion(r, id); !ok {
		t.Errorf("Restored version must remain in the list")
	}

	// The restored content is a copy; editing it must not corrupt the snapshot
	r.Experience[0].Achievements[0] = "Edited again"
	v, _ := m.FindVersion(r, id)
	if v.Data.Experience[0].Achievements[0] != "Shipped v1" {
		t.Errorf("Snapshot mutated through restored content: %v", v.Data.Experience[0].Achievements)
	}
}

func TestRestoreVersionUnknownIDIsNoOp(t *testing.T) {
	m := testManager()
	r := testResume()
	m.SaveVersion(r, "checkpoint")

	r.Summary = "Current state"
	before := len(r.Versions)

	if m.RestoreVersion(r, "no-such-version") {
		t.Fatalf("Expected restore of unknown id to fail")
	}
	if r.Summary != "Current state" {
		t.Errorf("Resume must be untouched on unknown id, got %q", r.Summary)
	}
	if len(r.Versions) != before {
		t.Errorf("Version list must be untouched on unknown id")
	}
}

func TestListNewestFirst(t *testing.T) {
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	m := testManager(WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}))
	r := testResume()

	m.SaveVersion(r, "first")
	m.SaveVersion(r, "second")
	m.SaveVersion(r, "third")

	listed := m.List(r)
	if len(listed) != 3 {
		t.Fatalf("Expected 3 versions, got %d", len(listed))
	}
	if listed[0].Label != "third" || listed[2].Label != "first" {
		t.Errorf("Expected newest-first ordering, got [%s %s %s]",
			listed[0].Label, listed[1].Label, listed[2].Label)
	}
	if !listed[0].Timestamp.After(listed[2].Timestamp) {
		t.Errorf("Timestamps should decrease down the list")
	}

	// Internal order is untouched
	if r.Versions[0].Label != "first" {
		t.Errorf("List must not reorder the stored versions")
	}
}
