package common

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"resumeforge/internal/errors"
	"resumeforge/internal/types"
)

// FileProcessor handles reading and writing resume documents
type FileProcessor struct {
	logger      *errors.Logger
	maxFileSize int64
}

// NewFileProcessor creates a new file processor instance
func NewFileProcessor(logger *errors.Logger) *FileProcessor {
	return &FileProcessor{logger: logger}
}

// NewFileProcessorWithLimit creates a file processor that rejects input
// files larger than maxFileSize bytes. A limit of zero means no limit.
func NewFileProcessorWithLimit(logger *errors.Logger, maxFileSize int64) *FileProcessor {
	return &FileProcessor{logger: logger, maxFileSize: maxFileSize}
}

// LoadResume reads and parses a resume JSON document, applying defaults for
// any missing optional sections.
func (fp *FileProcessor) LoadResume(filename string) (*types.Resume, error) {
	if err := validateInputFile(filename, fp.maxFileSize); err != nil {
		return nil, errors.NewValidationError("INVALID_INPUT_FILE",
			fmt.Sprintf("Invalid file %s", filename), err)
	}

	if !isResumeFile(filename) {
		if fp.logger != nil {
			fp.logger.Warn("File does not have a .json extension", "filename", filename)
		} else {
			fmt.Fprintf(os.Stderr, "Warning: %s does not have a .json extension\n", filename)
		}
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}

	var resume types.Resume
	if err := json.Unmarshal(data, &resume); err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("File is not a valid resume document: %s", filename), err)
	}
	resume.Normalize()

	return &resume, nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		err := os.MkdirAll(dir, 0750)
		if err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	err := os.WriteFile(filename, []byte(content), 0600)
	if err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	return nil
}

// WriteResume serializes a resume back to disk as indented JSON.
func (fp *FileProcessor) WriteResume(filename string, resume *types.Resume) error {
	data, err := json.MarshalIndent(resume, "", "  ")
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeInvalidFormat,
			"Cannot serialize resume", err)
	}
	return fp.WriteFile(filename, string(data)+"\n")
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return errors.NewValidationError("INVALID_OUTPUT_FILE",
					fmt.Sprintf("Cannot create directory for output file: %s", filename), err)
			}
		}
	}

	return nil
}

// validateInputFile checks if a file exists, is readable and is within the
// size limit
func validateInputFile(filename string, maxFileSize int64) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", filename)
		}
		return fmt.Errorf("cannot access file %s: %w", filename, err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filename)
	}

	if maxFileSize > 0 && info.Size() > maxFileSize {
		return fmt.Errorf("file exceeds maximum size of %d bytes: %s", maxFileSize, filename)
	}

	return nil
}

// isResumeFile checks for the extensions resume documents are stored under
func isResumeFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return slices.Contains([]string{".json"}, ext)
}
