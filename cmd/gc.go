package cmd

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/rguichard/jtriage/internal/gc"
	"github.com/rguichard/jtriage/internal/gc/tui"
	"github.com/rguichard/jtriage/internal/logger"
	"github.com/rguichard/jtriage/utils"
)

var (
	gcOutput     string
	gcFormat     string
	gcTailWindow float64
	gcDebug      bool
	gcReportsDir string

	gcGrowthThreshold    float64
	gcDeltaThreshold     int
	gcOccupancyThreshold float64
	gcPauseThreshold     float64
	gcGapThreshold       float64
)

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Analyze GC logs",
}

var gcValidateCmd = &cobra.Command{
	Use:               "validate [gc-log-file]",
	Short:             "Check that a GC log is in a supported format",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: utils.CompleteFilesByExtension([]string{".log"}, true),
	RunE: func(cmd *cobra.Command, args []string) error {
		lines, err := readLines(args[0])
		if err != nil {
			return err
		}

		events, err := gc.Parse(lines)
		var formatErr *gc.FormatError
		if errors.As(err, &formatErr) {
			fmt.Printf("❌ %s: %v\n", args[0], formatErr)
			exitCode = 1
			return nil
		}
		if err != nil {
			return err
		}

		meta := gc.ScanMetadata(lines)
		fmt.Printf("✅ %s: %d usable GC cycles", args[0], len(events))
		if meta.Collector != "" {
			fmt.Printf(" (%s)", meta.Collector)
		}
		if meta.HasHeapMax() {
			fmt.Printf(", max heap %s", utils.MemorySize(meta.HeapMaxMB)*utils.MB)
		}
		fmt.Println()
		return nil
	},
}

var gcAnalyzeCmd = &cobra.Command{
	Use:               "analyze [gc-log-file]",
	Short:             "Run heuristic triage on a GC log",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: utils.CompleteFilesByExtension([]string{".log"}, true),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if !slices.Contains([]string{"cli", "tui"}, gcOutput) {
			return fmt.Errorf("invalid output: %s (valid: cli, tui)", gcOutput)
		}
		if !slices.Contains([]string{"txt", "md"}, gcFormat) {
			return fmt.Errorf("invalid format: %s (valid: txt, md)", gcFormat)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		logFile := args[0]

		lines, err := readLines(logFile)
		if err != nil {
			return err
		}

		meta := gc.ScanMetadata(lines)
		events, err := gc.Parse(lines)
		if err != nil {
			return err
		}
		logger.L().WithField("events", len(events)).Debug("parsed GC log")

		var tail *float64
		if cmd.Flags().Changed("tail-window") {
			tail = &gcTailWindow
		}

		thr := cfg.GCThresholds()
		if cmd.Flags().Changed("growth-threshold") {
			thr.GrowthRegionsPerMin = gcGrowthThreshold
		}
		if cmd.Flags().Changed("delta-threshold") {
			thr.DeltaRegions = gcDeltaThreshold
		}
		if cmd.Flags().Changed("occupancy-threshold") {
			thr.OccupancyPct = gcOccupancyThreshold
		}
		if cmd.Flags().Changed("pause-threshold") {
			thr.PauseMS = gcPauseThreshold
		}
		if cmd.Flags().Changed("gap-threshold") {
			thr.GapSeconds = gcGapThreshold
		}

		findings, err := gc.Analyze(events, tail, thr, meta)
		if err != nil {
			return err
		}

		if gcOutput == "tui" {
			exitCode = gc.ExitCode(findings)
			recordRun("gc", logFile, findings.Summary, gc.OverallSeverity(findings).String(), exitCode)
			return tui.StartTUI(findings)
		}

		report, err := gc.GenerateReport(findings, gcFormat, gcDebug)
		if err != nil {
			return err
		}
		fmt.Println(report)

		dir := cfg.Reports.Dir
		if cmd.Flags().Changed("reports-dir") {
			dir = gcReportsDir
		}
		if dir != "" {
			if err := writeReports(dir, logFile, func(format string) (string, error) {
				return gc.GenerateReport(findings, format, gcDebug)
			}); err != nil {
				logger.L().WithError(err).Warn("could not write report files")
			}
		}

		exitCode = gc.ExitCode(findings)
		recordRun("gc", logFile, findings.Summary, gc.OverallSeverity(findings).String(), exitCode)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(gcCmd)

	gcCmd.AddCommand(gcValidateCmd)
	gcCmd.AddCommand(gcAnalyzeCmd)

	gcAnalyzeCmd.Flags().StringVarP(&gcOutput, "output", "o", "cli", "Output mode (cli, tui)")
	gcAnalyzeCmd.Flags().StringVarP(&gcFormat, "format", "f", "txt", "Report format (txt, md)")
	gcAnalyzeCmd.Flags().Float64Var(&gcTailWindow, "tail-window", 0, "Analyze only the last N minutes of the log")
	gcAnalyzeCmd.Flags().BoolVar(&gcDebug, "debug", false, "Append parsed-event dump and chart to the report")
	gcAnalyzeCmd.Flags().StringVar(&gcReportsDir, "reports-dir", "", "Directory for report files (overrides config)")
	gcAnalyzeCmd.Flags().Float64Var(&gcGrowthThreshold, "growth-threshold", 0, "Old-gen growth threshold, regions/min (overrides config)")
	gcAnalyzeCmd.Flags().IntVar(&gcDeltaThreshold, "delta-threshold", 0, "Old-gen net growth threshold, regions (overrides config)")
	gcAnalyzeCmd.Flags().Float64Var(&gcOccupancyThreshold, "occupancy-threshold", 0, "Heap occupancy threshold, percent (overrides config)")
	gcAnalyzeCmd.Flags().Float64Var(&gcPauseThreshold, "pause-threshold", 0, "Slow STW pause threshold, ms (overrides config)")
	gcAnalyzeCmd.Flags().Float64Var(&gcGapThreshold, "gap-threshold", 0, "GC starvation gap threshold, seconds (overrides config)")

	gcAnalyzeCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"cli", "tui"}, cobra.ShellCompDirectiveNoFileComp
	})
	gcAnalyzeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"txt", "md"}, cobra.ShellCompDirectiveNoFileComp
	})
}
