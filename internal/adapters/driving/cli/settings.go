package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/audytor/internal/core/domain"
	"github.com/custodia-labs/audytor/internal/core/services"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage audit settings",
	Long: `View and change the audit settings stored in the config file.

Environment variables named AUDYTOR_<KEY> (dots become underscores, e.g.
AUDYTOR_MATCHING_AMOUNT_TOLERANCE) override stored values.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a stored setting. Keys:
  matching.amount_tolerance  largest net difference still matching (0.01)
  matching.date_window_days  days of date difference still matching (0)
  tiebreak.weight_fname      filename share of the tie-break score (0.3)
  tiebreak.min_seller_pct    minimum seller similarity when tie-breaking (0)
  run.workers                matching workers, 0 for one per CPU (0)
  report.top_n               ranked mismatches in the summary (50)`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Restore a setting to its default",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsUnset,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsUnsetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	st := stylesFor(cmd.OutOrStdout())
	cmd.Println(st.Title.Render("Current Settings"))
	cmd.Println()
	for _, key := range settingsService.Keys() {
		cmd.Printf("  %-27s %s\n", key, settingValue(settings, key))
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	key, value := args[0], args[1]

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("%s set to %s\n", key, value)
	return nil
}

func runSettingsUnset(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	key := args[0]

	if err := settingsService.Unset(key); err != nil {
		return fmt.Errorf("failed to unset %s: %w", key, err)
	}
	defaults := settingsService.GetDefaults()
	cmd.Printf("%s reset to %s\n", key, settingValue(&defaults, key))
	return nil
}

// settingValue renders one setting for display.
func settingValue(s *domain.AuditSettings, key string) string {
	switch key {
	case services.KeyAmountTolerance:
		return s.Matching.AmountTolerance.String()
	case services.KeyDateWindowDays:
		return fmt.Sprint(s.Matching.DateWindowDays)
	case services.KeyWeightFilename:
		return fmt.Sprint(s.TieBreak.WeightFilename)
	case services.KeyMinSellerPct:
		return fmt.Sprint(s.TieBreak.MinSellerPct)
	case services.KeyWorkers:
		if s.Run.Workers == 0 {
			return "0 (one per CPU)"
		}
		return fmt.Sprint(s.Run.Workers)
	case services.KeyTopN:
		return fmt.Sprint(s.Report.TopN)
	default:
		return ""
	}
}
