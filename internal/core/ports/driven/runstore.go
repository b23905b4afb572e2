package driven

import (
	"context"

	"github.com/custodia-labs/audytor/internal/core/domain"
)

// RunStore persists audit run history.
// Backed by SQLite for metadata storage.
type RunStore interface {
	// SaveRun stores a run together with its verdicts.
	SaveRun(ctx context.Context, run *domain.Run, verdicts []domain.Verdict) error

	// GetRun retrieves a run by ID.
	GetRun(ctx context.Context, id string) (*domain.Run, error)

	// ListRuns returns all runs, newest first.
	ListRuns(ctx context.Context) ([]domain.Run, error)

	// GetVerdicts returns a run's verdicts in population order.
	GetVerdicts(ctx context.Context, runID string) ([]domain.Verdict, error)

	// DeleteRun removes a run and its verdicts.
	DeleteRun(ctx context.Context, id string) error
}
