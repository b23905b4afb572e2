package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	runsShowVerdicts bool
	runsShowJSON     bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Browse the run history",
	RunE:  runRunsList,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Remove a run from the history",
	Long:  `Removes a run and its stored verdicts. Report files on disk are kept.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsDelete,
}

func init() {
	runsShowCmd.Flags().BoolVar(&runsShowVerdicts, "verdicts", false, "print the run's verdicts as JSON lines")
	runsShowCmd.Flags().BoolVar(&runsShowJSON, "json", false, "output the summary as JSON")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsDeleteCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("run history not configured")
	}

	runs, err := historyService.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	st := stylesFor(cmd.OutOrStdout())
	cmd.Println(st.Title.Render("Runs"))
	cmd.Println()
	for i := range runs {
		r := &runs[i]
		m := r.Summary.Metrics
		cmd.Printf("  %s  %s  rows %d, TAK %d, NIE %d, no invoice %d\n",
			st.Label.Render(r.ID),
			r.StartedAt.Local().Format(time.DateTime),
			m.Total, m.Consistent, m.Inconsistent, m.Unmatched)
		cmd.Printf("      %s\n", st.Muted.Render(r.OutputDir))
	}
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("run history not configured")
	}
	ctx := commandContext(cmd)

	run, err := historyService.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	if runsShowVerdicts {
		verdicts, err := historyService.Verdicts(ctx, run.ID)
		if err != nil {
			return fmt.Errorf("failed to get verdicts: %w", err)
		}
		out := bufio.NewWriter(cmd.OutOrStdout())
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		for i := range verdicts {
			if err := enc.Encode(&verdicts[i]); err != nil {
				return fmt.Errorf("failed to encode verdict: %w", err)
			}
		}
		return out.Flush()
	}

	if runsShowJSON {
		return outputJSON(cmd, run.Summary)
	}

	st := stylesFor(cmd.OutOrStdout())
	cmd.Printf("%s %s\n", st.Label.Render("Run:"), run.ID)
	cmd.Printf("%s %s\n", st.Label.Render("Started:"), run.StartedAt.Local().Format(time.DateTime))
	cmd.Printf("%s %s\n", st.Label.Render("Duration:"), run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	cmd.Printf("%s %s\n", st.Label.Render("Population:"), run.Input.PopulationPath)
	cmd.Printf("%s %s\n", st.Label.Render("Index:"), run.Input.IndexPath)
	if run.Input.OverridesPath != "" {
		cmd.Printf("%s %s\n", st.Label.Render("Overrides:"), run.Input.OverridesPath)
	}
	cmd.Printf("%s %s\n", st.Label.Render("Output:"), run.OutputDir)
	cmd.Printf("%s tolerance %s, weight_fname %.2f, min_seller_pct %d, date window %d days\n",
		st.Label.Render("Settings:"),
		run.Settings.Matching.AmountTolerance, run.Settings.TieBreak.WeightFilename,
		run.Settings.TieBreak.MinSellerPct, run.Settings.Matching.DateWindowDays)
	cmd.Println()
	printSummary(cmd, &run.Summary)
	return nil
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("run history not configured")
	}
	if err := historyService.Delete(commandContext(cmd), args[0]); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	cmd.Printf("Run %s removed from history.\n", args[0])
	return nil
}
