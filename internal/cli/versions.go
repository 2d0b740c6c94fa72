package cli

import (
	"fmt"

	"resumeforge/internal/ats"
	"resumeforge/internal/common"
	"resumeforge/internal/history"

	"github.com/spf13/cobra"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "Manage resume version snapshots",
	Long: `Manage version snapshots stored inside a resume document.

Snapshots capture the editable content of the resume. The history keeps the
most recent snapshots up to the configured limit, dropping the oldest when the
limit is exceeded. Restoring copies a snapshot back into the resume without
consuming it.`,
}

var versionsListCmd = &cobra.Command{
	Use:   "list [resume-file]",
	Short: "List version snapshots, newest first",
	Args:  cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if versionsCmdConfig.OutputFormat == "" {
			versionsCmdConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(versionsCmdConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runVersionsList,
}

var versionsSaveCmd = &cobra.Command{
	Use:   "save [resume-file]",
	Short: "Save a snapshot of the resume's current content",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersionsSave,
}

var versionsRestoreCmd = &cobra.Command{
	Use:   "restore [resume-file] [version-id]",
	Short: "Restore the resume content from a snapshot",
	Args:  cobra.ExactArgs(2),
	RunE:  runVersionsRestore,
}

var (
	versionsCmdConfig common.CommandConfig
	versionsSaveLabel string
)

func init() {
	versionsListCmd.Flags().StringVarP(&versionsCmdConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	versionsListCmd.Flags().StringVar(&versionsCmdConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	versionsSaveCmd.Flags().StringVarP(&versionsSaveLabel, "label", "l", "", "Label for the snapshot (default: Manual Save)")

	versionsCmd.AddCommand(versionsListCmd)
	versionsCmd.AddCommand(versionsSaveCmd)
	versionsCmd.AddCommand(versionsRestoreCmd)
}

func newHistoryManager(cmd *cobra.Command) *history.Manager {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	return history.NewManager(logger, history.WithMaxVersions(cfg.History.MaxVersions))
}

func runVersionsList(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	fileProcessor := common.NewFileProcessor(logger)
	resume, err := fileProcessor.LoadResume(args[0])
	if err != nil {
		return err
	}

	manager := newHistoryManager(cmd)
	versions := manager.List(resume)

	outputHandler := common.NewOutputHandler(logger)
	return outputHandler.HandleOutput(versions, versionsCmdConfig)
}

func runVersionsSave(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	fileProcessor := common.NewFileProcessor(logger)
	resume, err := fileProcessor.LoadResume(args[0])
	if err != nil {
		return err
	}

	manager := newHistoryManager(cmd)
	versionID := manager.SaveVersion(resume, versionsSaveLabel)

	if err := fileProcessor.WriteResume(args[0], resume); err != nil {
		return err
	}

	logger.Info("Version saved",
		"resume", resume.Name,
		"version_id", versionID,
		"versions", len(resume.Versions))
	fmt.Printf("Saved version %s (%d of %d kept)\n", versionID, len(resume.Versions), manager.MaxVersions())
	return nil
}

func runVersionsRestore(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	fileProcessor := common.NewFileProcessor(logger)
	resume, err := fileProcessor.LoadResume(args[0])
	if err != nil {
		return err
	}

	manager := newHistoryManager(cmd)
	versionID := args[1]
	if !manager.RestoreVersion(resume, versionID) {
		return fmt.Errorf("version %q not found in %s", versionID, args[0])
	}

	// Restored content changes the score.
	resume.ATSScore = ats.ComputeScore(resume)

	if err := fileProcessor.WriteResume(args[0], resume); err != nil {
		return err
	}

	logger.Info("Version restored",
		"resume", resume.Name,
		"version_id", versionID,
		"ats_score", resume.ATSScore)
	fmt.Printf("Restored version %s (score %d)\n", versionID, resume.ATSScore)
	return nil
}
