package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"resumeforge/internal/ai"
	"resumeforge/internal/ats"
	"resumeforge/internal/common"
	"resumeforge/internal/config"
	"resumeforge/internal/errors"
	"resumeforge/internal/types"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [resume-file]",
	Short: "Generate improvement suggestions for a resume",
	Long: `Generate improvement suggestions for a resume document.

By default suggestions come from the deterministic rule engine. With --ai the
configured provider is consulted instead, falling back to the rule engine when
the provider is unavailable. With --watch the file is re-analyzed on every
save, applying the configured debounce so rapid edits collapse into one
analysis.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if suggestCmdConfig.OutputFormat == "" {
			suggestCmdConfig.OutputFormat = cfg.App.DefaultFormat
		}
		suggestCmdConfig.MaxFileSize = cfg.App.MaxFileSize
		return common.ValidateOutputFormat(suggestCmdConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runSuggest,
}

var (
	suggestCmdConfig common.CommandConfig
	suggestUseAI     bool
	suggestWatch     bool
)

func init() {
	suggestCmd.Flags().StringVarP(&suggestCmdConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	suggestCmd.Flags().StringVar(&suggestCmdConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	suggestCmd.Flags().BoolVar(&suggestUseAI, "ai", false, "Use the configured suggestion provider instead of the rule engine")
	suggestCmd.Flags().BoolVarP(&suggestWatch, "watch", "w", false, "Re-analyze the resume whenever the file changes")

	_ = suggestCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runSuggest(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	suggestConfig := cfg.Suggest
	if !suggestUseAI {
		// Without --ai the rule engine answers directly.
		suggestConfig.Provider = config.ProviderStatic
	}

	service, err := ai.NewService(&suggestConfig, logger)
	if err != nil {
		return fmt.Errorf("failed to create suggestion service: %w", err)
	}
	defer func() {
		if err := service.Close(); err != nil {
			logger.Warn("Failed to close suggestion service", "error", err)
		}
	}()

	orchestrator := ai.NewOrchestrator(service, &suggestConfig, logger)
	defer orchestrator.Close()

	if suggestWatch {
		return runSuggestWatch(cmd.Context(), args[0], orchestrator, logger)
	}

	suggestOperation := func(ctx context.Context, resume *types.Resume) (types.SuggestOutput, *ai.TokenUsage, error) {
		// Synchronous analysis: provider failures are absorbed into a
		// fallback result, so only log the error alongside it.
		output, err := orchestrator.Analyze(ctx, resume)
		if err != nil {
			logger.LogError(err, "Provider failed, serving rule-based fallback",
				"provider", service.ProviderName())
		}
		return output, nil, nil
	}

	logDetails := func(resume *types.Resume, cfg common.CommandConfig) {
		logger.Info("Generating suggestions",
			"resume", resume.Name,
			"provider", service.ProviderName(),
			"output_format", cfg.OutputFormat)
	}

	err = common.RunResumeCommand(
		cmd.Context(),
		logger,
		suggestCmdConfig,
		args[0],
		suggestOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to generate suggestions: %w", err)
	}
	return nil
}

// runSuggestWatch re-analyzes the resume on every file change until the
// context is canceled. Debounce and stale-result handling live in the
// orchestrator; the watcher only feeds it fresh documents.
func runSuggestWatch(ctx context.Context, resumePath string, orchestrator *ai.Orchestrator, logger *errors.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logger.Warn("Failed to close file watcher", "error", err)
		}
	}()

	// Watch the directory rather than the file: editors replace files on
	// save, which drops a direct file watch.
	dir := filepath.Dir(resumePath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	orchestrator.SetOnUpdate(func(output types.SuggestOutput, loading bool) {
		if loading {
			return
		}
		fmt.Print(describeSuggestions(output))
	})

	// Score memoization survives across reloads, so saves that only touch
	// fields the score ignores cost nothing.
	var scoreMemo ats.Memo

	// Analyze the current contents before waiting for changes.
	updateFromFile(orchestrator, &scoreMemo, logger, resumePath)

	fmt.Printf("Watching %s for changes (Ctrl+C to stop)\n", resumePath)

	target := filepath.Clean(resumePath)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("Resume file changed", "path", resumePath, "op", event.Op.String())
			updateFromFile(orchestrator, &scoreMemo, logger, resumePath)
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.LogError(watchErr, "File watcher error", "path", resumePath)
		}
	}
}

// updateFromFile loads the resume, reports its score and feeds it to the
// orchestrator.
func updateFromFile(orchestrator *ai.Orchestrator, scoreMemo *ats.Memo, logger *errors.Logger, resumePath string) {
	fileProcessor := common.NewFileProcessor(logger)
	resume, err := fileProcessor.LoadResume(resumePath)
	if err != nil {
		logger.LogError(err, "Failed to reload resume", "path", resumePath)
		return
	}
	fmt.Printf("ATS score: %d\n", scoreMemo.Score(resume))
	orchestrator.Update(resume)
}

// describeSuggestions renders a short console line per suggestion for watch mode.
func describeSuggestions(output types.SuggestOutput) string {
	source := output.Provider
	if source == "" {
		source = "static"
	}
	if output.Fallback {
		source += " (fallback)"
	}
	header := fmt.Sprintf("%d suggestions from %s:\n", len(output.Suggestions), source)
	body := ""
	for i, s := range output.Suggestions {
		body += fmt.Sprintf("  %d. [%s/%s] %s\n", i+1, s.Type, s.Impact, s.Title)
	}
	return header + body
}
