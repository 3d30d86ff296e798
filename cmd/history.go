package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rguichard/jtriage/internal/history"
	"github.com/rguichard/jtriage/utils"
)

var (
	historyLimit int
	historyInput string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage past triage runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show past triage runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil || store == nil {
			return err
		}
		defer store.Close()

		var runs []history.Run
		if historyInput != "" {
			runs, err = store.ForInput(historyInput, historyLimit)
		} else {
			runs, err = store.Recent(historyLimit)
		}
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No recorded runs yet.")
			return nil
		}

		for _, run := range runs {
			icon := utils.GetSeverityIcon(run.Severity)
			fmt.Printf("%s %-14s %-6s %-40s %s\n",
				icon,
				humanize.Time(run.CreatedAt),
				run.Tool,
				utils.TruncateString(run.InputPath, 40),
				run.Summary,
			)
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil || store == nil {
			return err
		}
		defer store.Close()

		n, err := store.Clear()
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d recorded runs.\n", n)
		return nil
	},
}

// openHistory returns nil without error when history is disabled.
func openHistory() (*history.Store, error) {
	if !cfg.History.Enabled {
		fmt.Println("Run history is disabled (history.enabled: false)")
		return nil, nil
	}
	return history.Open(cfg.History.Path)
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)

	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to show")
	historyListCmd.Flags().StringVar(&historyInput, "input", "", "Only show runs for this input file")
}
