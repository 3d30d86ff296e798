package cmd

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/rguichard/jtriage/internal/logger"
	"github.com/rguichard/jtriage/internal/thread"
	"github.com/rguichard/jtriage/utils"
)

var (
	threadFormat     string
	threadReportsDir string
)

var threadCmd = &cobra.Command{
	Use:   "thread",
	Short: "Analyze thread dumps",
}

var threadValidateCmd = &cobra.Command{
	Use:               "validate [thread-dump-file]",
	Short:             "Check that a thread dump is in jstack format",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: utils.CompleteFilesByExtension([]string{".txt", ".log", ".dump"}, false),
	RunE: func(cmd *cobra.Command, args []string) error {
		lines, err := readLines(args[0])
		if err != nil {
			return err
		}

		dump, err := thread.Parse(lines)
		var formatErr *thread.FormatError
		if errors.As(err, &formatErr) {
			fmt.Printf("❌ %s: %v\n", args[0], formatErr)
			exitCode = 1
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Printf("✅ %s: %d threads\n", args[0], len(dump.Threads))
		return nil
	},
}

var threadAnalyzeCmd = &cobra.Command{
	Use:               "analyze [thread-dump-file]",
	Short:             "Run heuristic triage on a jstack thread dump",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: utils.CompleteFilesByExtension([]string{".txt", ".log", ".dump"}, false),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if !slices.Contains([]string{"txt", "md"}, threadFormat) {
			return fmt.Errorf("invalid format: %s (valid: txt, md)", threadFormat)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		dumpFile := args[0]

		lines, err := readLines(dumpFile)
		if err != nil {
			return err
		}

		dump, err := thread.Parse(lines)
		if err != nil {
			return err
		}
		logger.L().WithField("threads", len(dump.Threads)).Debug("parsed thread dump")

		findings := thread.Analyze(dump, cfg.ThreadThresholds())

		report, err := thread.GenerateReport(findings, threadFormat)
		if err != nil {
			return err
		}
		fmt.Println(report)

		dir := cfg.Reports.Dir
		if cmd.Flags().Changed("reports-dir") {
			dir = threadReportsDir
		}
		if dir != "" {
			if err := writeReports(dir, dumpFile, func(format string) (string, error) {
				return thread.GenerateReport(findings, format)
			}); err != nil {
				logger.L().WithError(err).Warn("could not write report files")
			}
		}

		exitCode = thread.ExitCode(findings)
		recordRun("thread", dumpFile, findings.Summary, thread.OverallSeverity(findings).String(), exitCode)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(threadCmd)
	threadCmd.AddCommand(threadValidateCmd)
	threadCmd.AddCommand(threadAnalyzeCmd)

	threadAnalyzeCmd.Flags().StringVarP(&threadFormat, "format", "f", "txt", "Report format (txt, md)")
	threadAnalyzeCmd.Flags().StringVar(&threadReportsDir, "reports-dir", "", "Directory for report files (overrides config)")
}
