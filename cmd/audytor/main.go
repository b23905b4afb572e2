// Command audytor reconciles a ledger population against an invoice index.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/audytor/internal/adapters/driven/config/file"
	"github.com/custodia-labs/audytor/internal/adapters/driven/inventory"
	"github.com/custodia-labs/audytor/internal/adapters/driven/report"
	"github.com/custodia-labs/audytor/internal/adapters/driven/sources/csvsource"
	"github.com/custodia-labs/audytor/internal/adapters/driven/sources/xlsxsource"
	"github.com/custodia-labs/audytor/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/audytor/internal/adapters/driving/cli"
	"github.com/custodia-labs/audytor/internal/core/ports/driven"
	"github.com/custodia-labs/audytor/internal/core/services"
	"github.com/custodia-labs/audytor/internal/logger"
	"github.com/custodia-labs/audytor/internal/normalisers/invoice"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	if strings.EqualFold(os.Getenv("AUDYTOR_LOG_FORMAT"), "json") {
		logger.SetJSON(true)
	}

	configStore, err := file.NewConfigStore(os.Getenv("AUDYTOR_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("failed to open config: %w", err)
	}

	var runStore driven.RunStore
	store, err := sqlite.NewStore(os.Getenv("AUDYTOR_DATA_DIR"))
	if err != nil {
		logger.Warn("Run history disabled: %v", err)
	} else {
		defer store.Close()
		logger.Debug("Run history at %s", store.Path())
		runStore = store.RunStore()
	}

	auditService := services.NewAuditService(
		csvsource.NewIndexReader(),
		xlsxsource.NewPopulationReader(csvsource.NewPopulationReader()),
		csvsource.NewOverrideReader(),
		inventory.NewScanner(),
		invoice.New(invoice.LocaleAuto),
		report.NewWriter(),
		report.NewReader(),
		runStore,
	)

	cli.SetServices(&cli.ServiceConfig{
		AuditService:      auditService,
		RunHistoryService: services.NewRunHistoryService(runStore),
		SettingsService:   services.NewSettingsService(configStore),
	})
	cli.SetVersion(version)

	return cli.Execute()
}
