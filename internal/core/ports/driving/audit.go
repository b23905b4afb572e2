package driving

import (
	"context"

	"github.com/custodia-labs/audytor/internal/core/domain"
)

// AuditService reconciles a population against an invoice index.
type AuditService interface {
	// Audit runs the matching pipeline and returns the verdicts and summary.
	// Nothing is written. A schema failure aborts before any matching.
	Audit(ctx context.Context, input domain.RunInput, settings domain.AuditSettings) (*domain.RunResult, error)

	// Run audits the input, writes the verdict log and summary into
	// outputDir, and records the run in history when a store is configured.
	Run(
		ctx context.Context,
		input domain.RunInput,
		settings domain.AuditSettings,
		outputDir string,
	) (*domain.Run, *domain.RunResult, error)

	// Summarize re-aggregates an existing verdict log without re-matching.
	Summarize(ctx context.Context, verdictLogPath string, topN int) (*domain.Summary, error)
}

// RunHistoryService exposes recorded runs.
type RunHistoryService interface {
	// List returns all recorded runs, newest first.
	List(ctx context.Context) ([]domain.Run, error)

	// Get retrieves a run by ID.
	Get(ctx context.Context, id string) (*domain.Run, error)

	// Verdicts returns a run's verdicts in population order.
	Verdicts(ctx context.Context, id string) ([]domain.Verdict, error)

	// Delete removes a run from history.
	Delete(ctx context.Context, id string) error
}
