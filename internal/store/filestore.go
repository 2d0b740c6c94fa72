package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"
	"resumeforge/internal/types"
)

// FileStore persists a collection of resumes as a single JSON document on
// disk. Reads are served from an in-memory map; writes are flushed to disk
// after a short debounce window so rapid edits collapse into one save.
type FileStore struct {
	path         string
	saveDebounce time.Duration
	logger       *errors.Logger

	mu      sync.Mutex
	resumes map[string]*types.Resume
	timer   *time.Timer
	closed  bool
}

// fileDocument is the on-disk layout. Versioned so the format can evolve.
type fileDocument struct {
	Version int             `json:"version"`
	SavedAt time.Time       `json:"savedAt"`
	Resumes []*types.Resume `json:"resumes"`
}

const documentVersion = 1

// NewFileStore opens (or creates) the store at the configured path and loads
// any existing resumes into memory.
func NewFileStore(cfg config.StoreConfig, logger *errors.Logger) (*FileStore, error) {
	fs := &FileStore{
		path:         cfg.Path,
		saveDebounce: cfg.SaveDebounce,
		logger:       logger,
		resumes:      make(map[string]*types.Resume),
	}

	if err := fs.load(); err != nil {
		return nil, err
	}

	return fs, nil
}

func (fs *FileStore) load() error {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			fs.logger.Debug("Store file does not exist yet, starting empty", "path", fs.path)
			return nil
		}
		return errors.NewStoreError(errors.ErrCodeStoreReadFailed,
			fmt.Sprintf("Cannot read store file: %s", fs.path), err)
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreReadFailed,
			fmt.Sprintf("Store file is not valid JSON: %s", fs.path), err)
	}

	for _, r := range doc.Resumes {
		if r == nil || r.ID == "" {
			continue
		}
		r.Normalize()
		fs.resumes[r.ID] = r
	}

	fs.logger.Debug("Loaded resume store", "path", fs.path, "resumes", len(fs.resumes))
	return nil
}

// Get returns a deep copy of the resume with the given ID.
func (fs *FileStore) Get(id string) (*types.Resume, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	r, ok := fs.resumes[id]
	if !ok {
		return nil, errors.NewStoreError(errors.ErrCodeResumeNotFound,
			fmt.Sprintf("Resume not found: %s", id), nil)
	}
	return cloneResume(r), nil
}

// Put stores a deep copy of the resume and schedules a save. A resume without
// an ID is assigned one; CreatedAt is set on first insert.
func (fs *FileStore) Put(r *types.Resume) (*types.Resume, error) {
	if r == nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Resume must not be nil", nil)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.closed {
		return nil, errors.NewStoreError(errors.ErrCodeStoreWriteFailed,
			"Store is closed", nil)
	}

	stored := cloneResume(r)
	stored.Normalize()

	now := time.Now()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
		stored.CreatedAt = now
	} else if existing, ok := fs.resumes[stored.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.LastModified = now

	fs.resumes[stored.ID] = stored
	fs.scheduleSaveLocked()

	return cloneResume(stored), nil
}

// Delete removes the resume with the given ID and schedules a save.
func (fs *FileStore) Delete(id string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, ok := fs.resumes[id]; !ok {
		return errors.NewStoreError(errors.ErrCodeResumeNotFound,
			fmt.Sprintf("Resume not found: %s", id), nil)
	}

	delete(fs.resumes, id)
	fs.scheduleSaveLocked()
	return nil
}

// List returns deep copies of all stored resumes, most recently modified
// first.
func (fs *FileStore) List() []*types.Resume {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	out := make([]*types.Resume, 0, len(fs.resumes))
	for _, r := range fs.resumes {
		out = append(out, cloneResume(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastModified.Equal(out[j].LastModified) {
			return out[i].LastModified.After(out[j].LastModified)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Flush writes the current state to disk immediately, cancelling any pending
// debounced save.
func (fs *FileStore) Flush() error {
	fs.mu.Lock()
	if fs.timer != nil {
		fs.timer.Stop()
		fs.timer = nil
	}
	doc := fs.snapshotLocked()
	fs.mu.Unlock()

	return fs.write(doc)
}

// Close flushes pending changes and marks the store closed. Safe to call more
// than once.
func (fs *FileStore) Close() error {
	fs.mu.Lock()
	if fs.closed {
		fs.mu.Unlock()
		return nil
	}
	fs.closed = true
	if fs.timer != nil {
		fs.timer.Stop()
		fs.timer = nil
	}
	doc := fs.snapshotLocked()
	fs.mu.Unlock()

	return fs.write(doc)
}

// scheduleSaveLocked arms the debounce timer. Callers must hold fs.mu.
func (fs *FileStore) scheduleSaveLocked() {
	if fs.saveDebounce <= 0 {
		doc := fs.snapshotLocked()
		go fs.saveAsync(doc)
		return
	}

	if fs.timer != nil {
		fs.timer.Stop()
	}
	fs.timer = time.AfterFunc(fs.saveDebounce, func() {
		fs.mu.Lock()
		if fs.closed {
			fs.mu.Unlock()
			return
		}
		fs.timer = nil
		doc := fs.snapshotLocked()
		fs.mu.Unlock()

		fs.saveAsync(doc)
	})
}

// saveAsync persists a snapshot, logging failures instead of returning them.
// Debounced saves are best effort; Flush and Close surface errors.
func (fs *FileStore) saveAsync(doc fileDocument) {
	if err := fs.write(doc); err != nil {
		fs.logger.LogError(err, "Debounced save failed", "path", fs.path)
	}
}

func (fs *FileStore) snapshotLocked() fileDocument {
	resumes := make([]*types.Resume, 0, len(fs.resumes))
	for _, r := range fs.resumes {
		resumes = append(resumes, cloneResume(r))
	}
	sort.Slice(resumes, func(i, j int) bool { return resumes[i].ID < resumes[j].ID })
	return fileDocument{
		Version: documentVersion,
		SavedAt: time.Now(),
		Resumes: resumes,
	}
}

// write serializes the snapshot and replaces the store file atomically via a
// temp file rename.
func (fs *FileStore) write(doc fileDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreWriteFailed,
			"Cannot serialize resume store", err)
	}

	dir := filepath.Dir(fs.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.NewStoreError(errors.ErrCodeStoreWriteFailed,
				fmt.Sprintf("Cannot create store directory: %s", dir), err)
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(fs.path)+".tmp-*")
	if err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreWriteFailed,
			fmt.Sprintf("Cannot create temp file in: %s", dir), err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.NewStoreError(errors.ErrCodeStoreWriteFailed,
			fmt.Sprintf("Cannot write store file: %s", fs.path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.NewStoreError(errors.ErrCodeStoreWriteFailed,
			fmt.Sprintf("Cannot write store file: %s", fs.path), err)
	}

	if err := os.Rename(tmpName, fs.path); err != nil {
		os.Remove(tmpName)
		return errors.NewStoreError(errors.ErrCodeStoreWriteFailed,
			fmt.Sprintf("Cannot replace store file: %s", fs.path), err)
	}

	fs.logger.Debug("Resume store saved", "path", fs.path, "resumes", len(doc.Resumes))
	return nil
}

func cloneResume(r *types.Resume) *types.Resume {
	out := *r
	out.ResumeContent = r.ResumeContent.Clone()
	if r.Versions != nil {
		out.Versions = make([]types.ResumeVersion, len(r.Versions))
		for i, v := range r.Versions {
			out.Versions[i] = v
			out.Versions[i].Data = v.Data.Clone()
		}
	}
	return &out
}
