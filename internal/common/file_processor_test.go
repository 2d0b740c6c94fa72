package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resumeforge/internal/errors"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}

func TestLoadResume(t *testing.T) {
	logger, err := errors.New("error")
	if err != nil {
		t.Fatalf("creating logger: %v", err)
	}
	fp := NewFileProcessor(logger)

	t.Run("valid document", func(t *testing.T) {
		path := writeTempFile(t, "resume.json", `{
			"id": "r1",
			"name": "Primary",
			"personalInfo": {"fullName": "Jane Doe", "email": "jane@example.com"},
			"summary": "Backend engineer."
		}`)

		resume, err := fp.LoadResume(path)
		if err != nil {
			t.Fatalf("LoadResume failed: %v", err)
		}
		if resume.PersonalInfo.FullName != "Jane Doe" {
			t.Errorf("unexpected name: %q", resume.PersonalInfo.FullName)
		}
		// Optional sections must come back as empty collections.
		if resume.Skills == nil || resume.Experience == nil || resume.Versions == nil {
			t.Error("expected normalized empty collections")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := fp.LoadResume(filepath.Join(t.TempDir(), "absent.json"))
		if err == nil {
			t.Fatal("expected error for missing file")
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		path := writeTempFile(t, "resume.json", "{broken")
		_, err := fp.LoadResume(path)
		if err == nil {
			t.Fatal("expected error for invalid JSON")
		}
		appErr, ok := err.(*errors.AppError)
		if !ok {
			t.Fatalf("expected *AppError, got %T", err)
		}
		if appErr.Code != errors.ErrCodeInvalidFormat {
			t.Errorf("expected code %s, got %s", errors.ErrCodeInvalidFormat, appErr.Code)
		}
	})

	t.Run("oversized file", func(t *testing.T) {
		path := writeTempFile(t, "resume.json", `{"id": "r1", "name": "Primary"}`)
		limited := NewFileProcessorWithLimit(logger, 8)
		_, err := limited.LoadResume(path)
		if err == nil {
			t.Fatal("expected error for file over the size limit")
		}
		if !strings.Contains(err.Error(), "Invalid file") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("directory path", func(t *testing.T) {
		_, err := fp.LoadResume(t.TempDir())
		if err == nil {
			t.Fatal("expected error for directory path")
		}
		if !strings.Contains(err.Error(), "Invalid file") {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestWriteResumeRoundTrip(t *testing.T) {
	logger, _ := errors.New("error")
	fp := NewFileProcessor(logger)

	path := writeTempFile(t, "resume.json", `{"id": "r1", "name": "Primary", "summary": "First draft."}`)

	resume, err := fp.LoadResume(path)
	if err != nil {
		t.Fatalf("LoadResume failed: %v", err)
	}
	resume.Summary = "Second draft."

	out := filepath.Join(filepath.Dir(path), "out", "resume.json")
	if err := fp.WriteResume(out, resume); err != nil {
		t.Fatalf("WriteResume failed: %v", err)
	}

	reloaded, err := fp.LoadResume(out)
	if err != nil {
		t.Fatalf("LoadResume after write failed: %v", err)
	}
	if reloaded.Summary != "Second draft." {
		t.Errorf("summary not preserved: %q", reloaded.Summary)
	}
}
