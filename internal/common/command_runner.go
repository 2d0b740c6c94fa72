package common

import (
	"context"
	"fmt"
	"os"

	"resumeforge/internal/ai"
	"resumeforge/internal/errors"
	"resumeforge/internal/types"
)

// ResumeOperationFunc is the signature shared by commands that take a resume
// and produce a result, optionally reporting provider token usage.
type ResumeOperationFunc[Output any] func(context.Context, *types.Resume) (Output, *ai.TokenUsage, error)

// LogDetailsFunc logs the start of an operation.
type LogDetailsFunc func(resume *types.Resume, cfg CommandConfig)

// RunResumeCommand encapsulates the common logic for resume-file CLI commands:
// load and normalize the document, run the operation, report token usage when
// a provider was involved, and hand the result to the output formatter.
func RunResumeCommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	resumePath string,
	operation ResumeOperationFunc[Output],
	logDetails LogDetailsFunc,
) error {
	fileProcessor := NewFileProcessorWithLimit(logger, cmdConfig.MaxFileSize)
	outputHandler := NewOutputHandler(logger)

	resume, err := fileProcessor.LoadResume(resumePath)
	if err != nil {
		return err
	}

	if logDetails != nil {
		logDetails(resume, cmdConfig)
	}

	result, tokenUsage, err := operation(ctx, resume)
	if err != nil {
		return err
	}

	// Report token usage
	if tokenUsage != nil {
		if logger != nil {
			logger.Info("Provider token usage", "input_tokens", tokenUsage.InputTokens, "output_tokens", tokenUsage.OutputTokens, "total_tokens", tokenUsage.TotalTokens)
		} else {
			fmt.Fprintf(os.Stderr, "Provider token usage: input=%d, output=%d, total=%d\n", tokenUsage.InputTokens, tokenUsage.OutputTokens, tokenUsage.TotalTokens)
		}
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}
