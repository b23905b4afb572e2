// Package cli implements the audytor command line.
package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/audytor/internal/core/ports/driving"
	"github.com/custodia-labs/audytor/internal/logger"
)

// version is set at build time.
var version = "dev"

var verbose bool

// Services wired by main.
var (
	auditService    driving.AuditService
	historyService  driving.RunHistoryService
	settingsService driving.SettingsService
)

var rootCmd = &cobra.Command{
	Use:   "audytor",
	Short: "Reconcile a ledger population against extracted invoices",
	Long: `Audytor matches every row of a ledger export (the population) against
the invoice index written by an extractor and decides, per row, whether the
document number, date and net amount agree (TAK) or not (NIE).

Each run writes a verdict log (verdicts.jsonl) and a summary
(verdicts_summary.json) and is recorded in the run history.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// ServiceConfig holds the services the commands use.
type ServiceConfig struct {
	AuditService      driving.AuditService
	RunHistoryService driving.RunHistoryService
	SettingsService   driving.SettingsService
}

// SetServices sets the services for the commands.
func SetServices(config *ServiceConfig) {
	if config == nil {
		config = &ServiceConfig{}
	}
	auditService = config.AuditService
	historyService = config.RunHistoryService
	settingsService = config.SettingsService
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command. An interrupt cancels the running audit.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// commandContext returns the command's context, or a background context
// when the command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
