package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/audytor/internal/core/domain"
)

var (
	summaryTopN int
	summaryJSON bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary <verdicts.jsonl | run directory>",
	Short: "Re-aggregate an existing verdict log",
	Long: `Reads a verdict log written by a previous run and prints its summary
without matching again.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().IntVarP(&summaryTopN, "top-n", "n", domain.DefaultTopMismatches, "number of ranked mismatches")
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "output the summary as JSON")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	if auditService == nil {
		return errors.New("audit service not configured")
	}

	summary, err := auditService.Summarize(commandContext(cmd), args[0], summaryTopN)
	if err != nil {
		return fmt.Errorf("summary failed: %w", err)
	}

	if summaryJSON {
		return outputJSON(cmd, summary)
	}
	printSummary(cmd, summary)
	return nil
}
