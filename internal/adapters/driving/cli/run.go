package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/audytor/internal/core/domain"
)

// runOptions holds the flags shared by run and watch.
type runOptions struct {
	population   string
	index        string
	overrides    string
	invoiceRoot  string
	outputDir    string
	tolerance    string
	weightFname  float64
	minSellerPct int
	dateWindow   int
	workers      int
	topN         int
	json         bool
}

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Audit a population against the invoice index",
	Long: `Matches every population row against the invoice index and writes
verdicts.jsonl and verdicts_summary.json into the output directory
(runs/<timestamp> by default).

Settings come from the config file and AUDYTOR_* environment variables;
flags given here override both for this run only.`,
	Example: `  audytor run -p populacja.xlsx -i index.csv
  audytor run -p populacja.xlsx -i index.csv --overrides overrides.csv --pdf-root faktury/
  audytor run -p populacja.csv -i index.csv --min-seller-pct 80 -o out/`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	addRunFlags(runCmd, &runOpts)
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(cmd *cobra.Command, o *runOptions) {
	f := cmd.Flags()
	f.StringVarP(&o.population, "population", "p", "", "population workbook (.xlsx) or CSV export")
	f.StringVarP(&o.index, "index", "i", "", "invoice index CSV written by the extractor")
	f.StringVar(&o.overrides, "overrides", "", "CSV of manual row-to-invoice assignments")
	f.StringVar(&o.invoiceRoot, "pdf-root", "", "invoice directory to inventory against the index")
	f.StringVarP(&o.outputDir, "out", "o", "", "output directory (default runs/<timestamp>)")
	f.StringVar(&o.tolerance, "tolerance", "", "amount tolerance, e.g. 0.01")
	f.Float64Var(&o.weightFname, "weight-fname", 0, "filename share of the tie-break score (0-1)")
	f.IntVar(&o.minSellerPct, "min-seller-pct", 0, "minimum seller similarity for tie-break candidates (0-100)")
	f.IntVar(&o.dateWindow, "date-window", 0, "days of date difference still treated as a match")
	f.IntVar(&o.workers, "workers", 0, "matching workers (0 = one per CPU)")
	f.IntVar(&o.topN, "top-n", 0, "number of ranked mismatches in the summary")
	f.BoolVar(&o.json, "json", false, "print the summary as JSON")
	_ = cmd.MarkFlagRequired("population")
	_ = cmd.MarkFlagRequired("index")
}

func (o *runOptions) input() domain.RunInput {
	return domain.RunInput{
		PopulationPath: o.population,
		IndexPath:      o.index,
		OverridesPath:  o.overrides,
		InvoiceRoot:    o.invoiceRoot,
	}
}

// settings returns the configured settings with changed flags applied.
func (o *runOptions) settings(cmd *cobra.Command) (domain.AuditSettings, error) {
	settings := domain.DefaultAuditSettings()
	if settingsService != nil {
		stored, err := settingsService.Get()
		if err != nil {
			return settings, fmt.Errorf("failed to get settings: %w", err)
		}
		settings = *stored
	}

	f := cmd.Flags()
	if f.Changed("tolerance") {
		d, err := decimal.NewFromString(o.tolerance)
		if err != nil {
			return settings, fmt.Errorf("%w: --tolerance %q is not a decimal", domain.ErrInvalidSettings, o.tolerance)
		}
		settings.Matching.AmountTolerance = d
	}
	if f.Changed("weight-fname") {
		settings.TieBreak.WeightFilename = o.weightFname
	}
	if f.Changed("min-seller-pct") {
		settings.TieBreak.MinSellerPct = o.minSellerPct
	}
	if f.Changed("date-window") {
		settings.Matching.DateWindowDays = o.dateWindow
	}
	if f.Changed("workers") {
		settings.Run.Workers = o.workers
	}
	if f.Changed("top-n") {
		settings.Report.TopN = o.topN
	}

	if settingsService != nil {
		if err := settingsService.Validate(&settings); err != nil {
			return settings, err
		}
	}
	return settings, nil
}

func runRun(cmd *cobra.Command, _ []string) error {
	if auditService == nil {
		return errors.New("audit service not configured")
	}
	settings, err := runOpts.settings(cmd)
	if err != nil {
		return err
	}

	run, result, err := auditService.Run(commandContext(cmd), runOpts.input(), settings, runOpts.outputDir)
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	if runOpts.json {
		return outputJSON(cmd, result.Summary)
	}
	printSummary(cmd, &result.Summary)
	cmd.Println()
	st := stylesFor(cmd.OutOrStdout())
	cmd.Printf("%s %s\n", st.Label.Render("Output:"), run.OutputDir)
	cmd.Printf("%s %s\n", st.Label.Render("Run ID:"), run.ID)
	return nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// printSummary writes the human-readable run summary.
func printSummary(cmd *cobra.Command, s *domain.Summary) {
	st := stylesFor(cmd.OutOrStdout())
	m := s.Metrics

	cmd.Println(st.Title.Render("Audit summary"))
	cmd.Println()
	cmd.Printf("  Rows:          %d\n", m.Total)
	cmd.Printf("  Consistent:    %s\n", st.Success.Render(fmt.Sprint(m.Consistent)))
	cmd.Printf("  Inconsistent:  %s\n", st.Error.Render(fmt.Sprint(m.Inconsistent)))
	cmd.Printf("  No invoice:    %s\n", st.Warning.Render(fmt.Sprint(m.Unmatched)))
	cmd.Printf("  Field mismatches: numer %d, data %d, netto %d\n",
		m.FieldMismatches.Number, m.FieldMismatches.Date, m.FieldMismatches.Amount)

	if len(m.Sections) > 1 {
		cmd.Println()
		cmd.Println(st.Label.Render("Sections"))
		names := make([]string, 0, len(m.Sections))
		for name := range m.Sections {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sec := m.Sections[name]
			cmd.Printf("  %-10s rows %d, TAK %d, NIE %d, no invoice %d\n",
				name, sec.Rows, sec.Consistent, sec.Inconsistent, sec.Unmatched)
		}
	}

	if s.Inventory != nil {
		cmd.Println()
		cmd.Println(st.Label.Render("Invoice directory"))
		cmd.Printf("  %s: %d files, %d missing from the index\n",
			s.Inventory.Root, s.Inventory.Files, len(s.Inventory.MissingFromIndex))
	}

	if len(s.GlobalNotes) > 0 {
		cmd.Println()
		cmd.Println(st.Label.Render("Notes"))
		for _, n := range s.GlobalNotes {
			cmd.Printf("  - %s\n", st.Warning.Render(n))
		}
	}

	if len(s.TopMismatches) > 0 {
		cmd.Println()
		cmd.Println(st.Label.Render("Top mismatches"))
		for i, mm := range s.TopMismatches {
			cmd.Printf("  [%d] %s/%s %s severity %.3f confidence %.3f\n",
				i+1, mm.Section, mm.Position, mm.Criterion, mm.Severity, mm.Confidence)
			if mm.Note != "" {
				cmd.Printf("      %s\n", st.Muted.Render(mm.Note))
			}
		}
	}
}
