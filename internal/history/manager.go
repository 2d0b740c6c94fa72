// Package history manages resume version snapshots: saving, listing and
// restoring, with a bounded retention window.
package history

import (
	"time"

	"github.com/google/uuid"

	"resumeforge/internal/errors"
	"resumeforge/internal/types"
)

// DefaultMaxVersions is the retention window applied when no explicit limit
// is configured.
const DefaultMaxVersions = 10

// DefaultLabel is used when a snapshot is saved without a label
const DefaultLabel = "Manual Save"

// Manager saves and restores resume snapshots. It is not safe for concurrent
// use; callers serialize access the same way they serialize resume edits.
type Manager struct {
	maxVersions int
	logger      *errors.Logger
	now         func() time.Time
	newID       func() string
}

// Option configures a Manager
type Option func(*Manager)

// WithMaxVersions overrides the retention window. Values below 1 are ignored.
func WithMaxVersions(n int) Option {
	return func(m *Manager) {
		if n >= 1 {
			m.maxVersions = n
		}
	}
}

// WithClock overrides the timestamp source, used in tests
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithIDGenerator overrides version id generation, used in tests
func WithIDGenerator(gen func() string) Option {
	return func(m *Manager) {
		m.newID = gen
	}
}

// NewManager creates a version history manager
func NewManager(logger *errors.Logger, opts ...Option) *Manager {
	m := &Manager{
		maxVersions: DefaultMaxVersions,
		logger:      logger,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MaxVersions returns the configured retention window
func (m *Manager) MaxVersions() int {
	return m.maxVersions
}

// SaveVersion snapshots the resume's current content and appends it to the
// version list. The snapshot is a deep copy: later edits to the resume never
// leak into it. When the list exceeds the retention window the oldest
// versions are dropped. Returns the new version's id.
func (m *Manager) SaveVersion(r *types.Resume, label string) string {
	if label == "" {
		label = DefaultLabel
	}

	version := types.ResumeVersion{
		ID:        m.newID(),
		Timestamp: m.now(),
		Label:     label,
		Data:      r.ResumeContent.Clone(),
	}
	r.Versions = append(r.Versions, version)

	if excess := len(r.Versions) - m.maxVersions; excess > 0 {
		r.Versions = r.Versions[excess:]
	}

	r.LastModified = version.Timestamp

	m.logger.Debug("version saved",
		"resume_id", r.ID,
		"version_id", version.ID,
		"label", label,
		"versions", len(r.Versions))
	return version.ID
}

// RestoreVersion replaces the resume's current content with a deep copy of
// the named snapshot. The snapshot itself stays in the version list, so a
// restore can be restored away from again. An unknown version id is a logged
// no-op: the resume is left untouched and no error is returned.
func (m *Manager) RestoreVersion(r *types.Resume, versionID string) bool {
	for _, v := range r.Versions {
		if v.ID != versionID {
			continue
		}
		r.ResumeContent = v.Data.Clone()
		r.LastModified = m.now()
		m.logger.Info("version restored",
			"resume_id", r.ID,
			"version_id", versionID,
			"label", v.Label)
		return true
	}

	m.logger.Warn("version not found, resume unchanged",
		"resume_id", r.ID,
		"version_id", versionID)
	return false
}

// FindVersion returns the named snapshot without restoring it
func (m *Manager) FindVersion(r *types.Resume, versionID string) (types.ResumeVersion, bool) {
	for _, v := range r.Versions {
		if v.ID == versionID {
			return v, true
		}
	}
	return types.ResumeVersion{}, false
}

// List returns the resume's versions newest-first. The returned slice is a
// fresh copy of the metadata; snapshot contents are shared, so callers must
// not mutate them.
func (m *Manager) List(r *types.Resume) []types.ResumeVersion {
	out := make([]types.ResumeVersion, len(r.Versions))
	for i, v := range r.Versions {
		out[len(r.Versions)-1-i] = v
	}
	return out
}
