package driven

import (
	"context"

	"github.com/custodia-labs/audytor/internal/core/domain"
)

// ReportWriter persists a run's verdict log and summary.
// Implementations must not leave partial output behind on failure.
type ReportWriter interface {
	// WriteReport writes the verdicts and summary into dir.
	WriteReport(ctx context.Context, dir string, result *domain.RunResult) error
}

// VerdictLogReader reads a previously written verdict log.
type VerdictLogReader interface {
	// ReadVerdicts returns the verdicts stored at path, in file order.
	ReadVerdicts(ctx context.Context, path string) ([]domain.Verdict, error)
}
