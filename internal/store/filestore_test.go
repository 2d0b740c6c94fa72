package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"
	"resumeforge/internal/types"
)

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "resumes.json")
	logger, err := errors.New("error")
	if err != nil {
		t.Fatalf("creating logger: %v", err)
	}

	fs, err := NewFileStore(config.StoreConfig{Path: path, SaveDebounce: 0}, logger)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { fs.Close() })

	return fs, path
}

func testResume(name string) *types.Resume {
	return &types.Resume{
		Name: name,
		ResumeContent: types.ResumeContent{
			PersonalInfo: types.PersonalInfo{
				FullName: "Jane Doe",
				Email:    "jane@example.com",
			},
			Summary: "Engineer with a decade of experience building backend systems.",
			Skills:  []string{"Go", "PostgreSQL"},
		},
	}
}

func TestPutAssignsIDAndTimestamps(t *testing.T) {
	fs, _ := newTestStore(t)

	stored, err := fs.Put(testResume("primary"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if stored.ID == "" {
		t.Error("expected generated ID")
	}
	if stored.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if stored.LastModified.IsZero() {
		t.Error("expected LastModified to be set")
	}
}

func TestPutPreservesCreatedAtOnUpdate(t *testing.T) {
	fs, _ := newTestStore(t)

	first, err := fs.Put(testResume("primary"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	updated := *first
	updated.Summary = "Updated summary text that is long enough to stand alone."
	updated.CreatedAt = time.Time{}

	second, err := fs.Put(&updated)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt changed on update: %v != %v", second.CreatedAt, first.CreatedAt)
	}
	if second.Summary != updated.Summary {
		t.Errorf("Summary not updated: %q", second.Summary)
	}
}

func TestGetReturnsIsolatedCopy(t *testing.T) {
	fs, _ := newTestStore(t)

	stored, err := fs.Put(testResume("primary"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := fs.Get(stored.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	got.Skills[0] = "MUTATED"
	got.Summary = "mutated"

	again, err := fs.Get(stored.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if again.Skills[0] == "MUTATED" || again.Summary == "mutated" {
		t.Error("mutation of returned copy leaked into the store")
	}
}

func TestGetUnknownID(t *testing.T) {
	fs, _ := newTestStore(t)

	_, err := fs.Get("no-such-id")
	if err == nil {
		t.Fatal("expected error for unknown ID")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeResumeNotFound {
		t.Errorf("expected code %s, got %s", errors.ErrCodeResumeNotFound, appErr.Code)
	}
}

func TestDelete(t *testing.T) {
	fs, _ := newTestStore(t)

	stored, err := fs.Put(testResume("primary"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if err := fs.Delete(stored.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := fs.Get(stored.ID); err == nil {
		t.Error("expected Get to fail after Delete")
	}
	if err := fs.Delete(stored.ID); err == nil {
		t.Error("expected second Delete to fail")
	}
}

func TestListNewestFirst(t *testing.T) {
	fs, _ := newTestStore(t)

	a, err := fs.Put(testResume("first"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	b, err := fs.Put(testResume("second"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	list := fs.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 resumes, got %d", len(list))
	}
	if list[0].ID != b.ID || list[1].ID != a.ID {
		t.Errorf("expected newest first, got [%s, %s]", list[0].Name, list[1].Name)
	}
}

func TestFlushAndReload(t *testing.T) {
	fs, path := newTestStore(t)

	stored, err := fs.Put(testResume("persisted"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := fs.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	logger, _ := errors.New("error")
	reopened, err := NewFileStore(config.StoreConfig{Path: path, SaveDebounce: 0}, logger)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(stored.ID)
	if err != nil {
		t.Fatalf("Get after reload failed: %v", err)
	}
	if got.Name != "persisted" {
		t.Errorf("expected name %q, got %q", "persisted", got.Name)
	}
	if !reflect.DeepEqual(got.Skills, stored.Skills) {
		t.Errorf("skills not preserved: %v", got.Skills)
	}
}

func TestDebouncedSaveCollapses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resumes.json")
	logger, _ := errors.New("error")

	fs, err := NewFileStore(config.StoreConfig{Path: path, SaveDebounce: 50 * time.Millisecond}, logger)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	defer fs.Close()

	for range 5 {
		if _, err := fs.Put(testResume("burst")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	// Before the debounce window elapses nothing should be on disk.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected no file before debounce elapsed")
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		if _, err := os.Stat(path); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("debounced save never happened")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resumes.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("writing corrupt file: %v", err)
	}

	logger, _ := errors.New("error")
	_, err := NewFileStore(config.StoreConfig{Path: path, SaveDebounce: 0}, logger)
	if err == nil {
		t.Fatal("expected error for corrupt store file")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeStoreReadFailed {
		t.Errorf("expected code %s, got %s", errors.ErrCodeStoreReadFailed, appErr.Code)
	}
}
