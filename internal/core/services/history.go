package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/audytor/internal/core/domain"
	"github.com/custodia-labs/audytor/internal/core/ports/driven"
	"github.com/custodia-labs/audytor/internal/core/ports/driving"
)

// Ensure RunHistoryService implements the interface.
var _ driving.RunHistoryService = (*RunHistoryService)(nil)

// errNoHistory is returned when no run store is configured.
var errNoHistory = errors.New("run history not configured")

// RunHistoryService exposes recorded audit runs.
type RunHistoryService struct {
	runs driven.RunStore
}

// NewRunHistoryService creates a run history service.
func NewRunHistoryService(runs driven.RunStore) *RunHistoryService {
	return &RunHistoryService{runs: runs}
}

// List returns all recorded runs, newest first.
func (s *RunHistoryService) List(ctx context.Context) ([]domain.Run, error) {
	if s.runs == nil {
		return nil, errNoHistory
	}
	runs, err := s.runs.ListRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Get retrieves a run by ID.
func (s *RunHistoryService) Get(ctx context.Context, id string) (*domain.Run, error) {
	if s.runs == nil {
		return nil, errNoHistory
	}
	if id == "" {
		return nil, fmt.Errorf("%w: run id is required", domain.ErrInvalidInput)
	}
	return s.runs.GetRun(ctx, id)
}

// Verdicts returns a run's verdicts in population order.
func (s *RunHistoryService) Verdicts(ctx context.Context, id string) ([]domain.Verdict, error) {
	if s.runs == nil {
		return nil, errNoHistory
	}
	if id == "" {
		return nil, fmt.Errorf("%w: run id is required", domain.ErrInvalidInput)
	}
	return s.runs.GetVerdicts(ctx, id)
}

// Delete removes a run and its verdicts.
func (s *RunHistoryService) Delete(ctx context.Context, id string) error {
	if s.runs == nil {
		return errNoHistory
	}
	if id == "" {
		return fmt.Errorf("%w: run id is required", domain.ErrInvalidInput)
	}
	return s.runs.DeleteRun(ctx, id)
}
