package cli

import (
	"context"
	"fmt"

	"resumeforge/internal/ai"
	"resumeforge/internal/ats"
	"resumeforge/internal/common"
	"resumeforge/internal/types"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score [resume-file]",
	Short: "Compute the ATS compatibility score for a resume",
	Long: `Compute the ATS compatibility score for a resume document.
The score starts from a baseline of 50 and earns capped bonuses for contact
details, summary quality, skill keywords, quantified achievements, and
supporting sections. The report itemizes every bonus earned.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if scoreConfig.OutputFormat == "" {
			scoreConfig.OutputFormat = cfg.App.DefaultFormat
		}
		scoreConfig.MaxFileSize = cfg.App.MaxFileSize
		// Validate format against supported formats
		return common.ValidateOutputFormat(scoreConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runScore,
}

var scoreConfig common.CommandConfig

func init() {
	scoreCmd.Flags().StringVarP(&scoreConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	scoreCmd.Flags().StringVar(&scoreConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = scoreCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runScore(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	scoreOperation := func(ctx context.Context, resume *types.Resume) (types.ScoreReport, *ai.TokenUsage, error) {
		return ats.Explain(resume), nil, nil
	}

	logDetails := func(resume *types.Resume, cfg common.CommandConfig) {
		logger.Info("Computing ATS score",
			"resume", resume.Name,
			"experience_entries", len(resume.Experience),
			"output_format", cfg.OutputFormat)
	}

	err := common.RunResumeCommand(
		cmd.Context(),
		logger,
		scoreConfig,
		args[0],
		scoreOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to score resume: %w", err)
	}
	return nil
}
