package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/audytor/internal/core/domain"
	"github.com/custodia-labs/audytor/internal/core/ports/driven"
	"github.com/custodia-labs/audytor/internal/core/ports/driving"
	"github.com/custodia-labs/audytor/internal/logger"
)

// Ensure AuditService implements the interface.
var _ driving.AuditService = (*AuditService)(nil)

// AuditService runs the reconciliation pipeline:
// load, index, match, tie-break, verdict, aggregate.
type AuditService struct {
	invoices   driven.InvoiceSource
	population driven.PopulationSource
	overrides  driven.OverrideSource
	inventory  driven.InvoiceInventory
	normaliser driven.RecordNormaliser
	reports    driven.ReportWriter
	verdictLog driven.VerdictLogReader
	runs       driven.RunStore

	now func() time.Time
}

// NewAuditService creates a new audit service.
// overrides, inventory and runs are optional - if nil, override files are
// rejected, the invoice directory is not inventoried and history is not kept.
func NewAuditService(
	invoices driven.InvoiceSource,
	population driven.PopulationSource,
	overrides driven.OverrideSource,
	inventory driven.InvoiceInventory,
	normaliser driven.RecordNormaliser,
	reports driven.ReportWriter,
	verdictLog driven.VerdictLogReader,
	runs driven.RunStore,
) *AuditService {
	return &AuditService{
		invoices:   invoices,
		population: population,
		overrides:  overrides,
		inventory:  inventory,
		normaliser: normaliser,
		reports:    reports,
		verdictLog: verdictLog,
		runs:       runs,
		now:        time.Now,
	}
}

// Audit runs the matching pipeline without writing anything.
func (s *AuditService) Audit(
	ctx context.Context,
	input domain.RunInput,
	settings domain.AuditSettings,
) (*domain.RunResult, error) {
	if input.PopulationPath == "" || input.IndexPath == "" {
		return nil, fmt.Errorf("%w: population and index paths are required", domain.ErrInvalidInput)
	}

	// Load all inputs first: schema errors abort before any matching.
	logger.Section("Loading inputs")
	pop, err := s.population.LoadPopulation(ctx, input.PopulationPath)
	if err != nil {
		return nil, fmt.Errorf("load population: %w", err)
	}
	records, err := s.invoices.LoadInvoices(ctx, input.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("load invoice index: %w", err)
	}
	overrides, err := s.loadOverrides(ctx, input.OverridesPath)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logger.Fields{
		"rows":      len(pop.Rows),
		"sections":  len(pop.Sections),
		"invoices":  len(records),
		"overrides": len(overrides),
	}).Info("inputs loaded")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Section("Indexing")
	index := BuildIndex(records, s.normaliser)
	if dups := index.Duplicates(); len(dups) > 0 {
		logger.Debug("%d invoice numbers are shared by several files", len(dups))
	}

	logger.Section("Matching")
	verdicts, err := s.matchAll(ctx, pop.Rows, index, overrides, settings)
	if err != nil {
		return nil, err
	}

	logger.Section("Aggregating")
	summary := Summarize(verdicts, settings.Report.TopN)
	if input.InvoiceRoot != "" {
		inv, err := s.scanInventory(ctx, input.InvoiceRoot, index)
		if err != nil {
			return nil, err
		}
		summary.Inventory = inv
		if len(inv.MissingFromIndex) > 0 {
			summary.GlobalNotes = append(summary.GlobalNotes,
				fmt.Sprintf("%d invoice files are missing from the index", len(inv.MissingFromIndex)))
		}
	}

	logger.WithFields(logger.Fields{
		"consistent":   summary.Metrics.Consistent,
		"inconsistent": summary.Metrics.Inconsistent,
		"unmatched":    summary.Metrics.Unmatched,
	}).Info("audit complete")

	return &domain.RunResult{Verdicts: verdicts, Summary: summary}, nil
}

// Run audits the input, writes the reports and records the run.
// Nothing is written when the audit fails.
func (s *AuditService) Run(
	ctx context.Context,
	input domain.RunInput,
	settings domain.AuditSettings,
	outputDir string,
) (*domain.Run, *domain.RunResult, error) {
	if s.reports == nil {
		return nil, nil, errors.New("report writer not configured")
	}

	run := &domain.Run{
		ID:        uuid.New().String(),
		Input:     input,
		Settings:  settings,
		StartedAt: s.now(),
	}
	if outputDir == "" {
		outputDir = DefaultOutputDir(run.StartedAt)
	}
	run.OutputDir = outputDir

	result, err := s.Audit(ctx, input, settings)
	if err != nil {
		return nil, nil, err
	}

	if err := s.reports.WriteReport(ctx, outputDir, result); err != nil {
		return nil, nil, fmt.Errorf("write report: %w", err)
	}
	run.Summary = result.Summary
	run.FinishedAt = s.now()

	if s.runs != nil {
		if err := s.runs.SaveRun(ctx, run, result.Verdicts); err != nil {
			// Reports are already on disk; a history failure is not fatal.
			logger.Warn("Failed to record run %s: %v", run.ID, err)
		}
	}
	return run, result, nil
}

// Summarize re-aggregates an existing verdict log.
func (s *AuditService) Summarize(ctx context.Context, verdictLogPath string, topN int) (*domain.Summary, error) {
	if s.verdictLog == nil {
		return nil, errors.New("verdict log reader not configured")
	}
	verdicts, err := s.verdictLog.ReadVerdicts(ctx, verdictLogPath)
	if err != nil {
		return nil, fmt.Errorf("read verdicts: %w", err)
	}
	summary := Summarize(verdicts, topN)
	return &summary, nil
}

// matchAll reconciles every row on a bounded worker pool. Each row writes
// only its own slot, so the output keeps population order.
func (s *AuditService) matchAll(
	ctx context.Context,
	rows []domain.PopulationRow,
	index *Index,
	overrides domain.Overrides,
	settings domain.AuditSettings,
) ([]domain.Verdict, error) {
	matcher := NewMatcher(index, s.normaliser, overrides, settings.Matching)
	verdicts := make([]domain.Verdict, len(rows))

	workers := settings.Run.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range rows {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			verdicts[i] = Reconcile(matcher, rows[i], settings.TieBreak)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("match rows: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("match rows: %w", err)
	}
	return verdicts, nil
}

// Reconcile produces the verdict for one population row.
func Reconcile(m *Matcher, row domain.PopulationRow, settings domain.TieBreakSettings) domain.Verdict {
	outcome := m.Match(row)
	if len(outcome.Candidates) == 0 {
		return BuildVerdict(outcome, nil, TieBreakResult{})
	}
	selected, tb := BreakTie(outcome.Row, outcome.Candidates, settings)
	return BuildVerdict(outcome, &selected, tb)
}

func (s *AuditService) loadOverrides(ctx context.Context, p string) (domain.Overrides, error) {
	if p == "" {
		return nil, nil
	}
	if s.overrides == nil {
		return nil, errors.New("override source not configured")
	}
	list, err := s.overrides.LoadOverrides(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}
	out := make(domain.Overrides, len(list))
	for _, o := range list {
		if prev, dup := out[o.RowID]; dup && prev != o.InvoiceID {
			logger.Warn("Override for %s given twice, using %s", o.RowID, o.InvoiceID)
		}
		out[o.RowID] = o.InvoiceID
	}
	return out, nil
}

func (s *AuditService) scanInventory(ctx context.Context, root string, index *Index) (*domain.Inventory, error) {
	if s.inventory == nil {
		return nil, errors.New("invoice inventory not configured")
	}
	files, err := s.inventory.Scan(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("scan invoice directory: %w", err)
	}
	inv := &domain.Inventory{Root: root, Files: len(files), MissingFromIndex: []string{}}
	for _, f := range files {
		if !index.HasFile(path.Base(f)) {
			inv.MissingFromIndex = append(inv.MissingFromIndex, f)
		}
	}
	return inv, nil
}

// DefaultOutputDir names a run's output folder after its start time.
func DefaultOutputDir(started time.Time) string {
	return filepath.Join(domain.DefaultOutputRootFolder, started.Format("20060102_150405"))
}
