package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/audytor/internal/core/domain"
	"github.com/custodia-labs/audytor/internal/core/ports/driven"
)

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// SaveRun stores a run together with its verdicts in one transaction.
func (s *runStore) SaveRun(ctx context.Context, run *domain.Run, verdicts []domain.Verdict) error {
	settingsJSON, err := json.Marshal(run.Settings)
	if err != nil {
		return fmt.Errorf("marshalling settings: %w", err)
	}
	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("marshalling summary: %w", err)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	m := run.Summary.Metrics
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, population_path, index_path, overrides_path, invoice_root, output_dir,
			settings, summary, total, consistent, inconsistent, unmatched, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			output_dir = excluded.output_dir,
			settings = excluded.settings,
			summary = excluded.summary,
			total = excluded.total,
			consistent = excluded.consistent,
			inconsistent = excluded.inconsistent,
			unmatched = excluded.unmatched,
			finished_at = excluded.finished_at
	`, run.ID, run.Input.PopulationPath, run.Input.IndexPath, run.Input.OverridesPath, run.Input.InvoiceRoot,
		run.OutputDir, string(settingsJSON), string(summaryJSON),
		m.Total, m.Consistent, m.Inconsistent, m.Unmatched,
		run.StartedAt.UTC(), nullTime(run.FinishedAt))
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM verdicts WHERE run_id = ?", run.ID); err != nil {
		return fmt.Errorf("clearing verdicts: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO verdicts (run_id, seq, section, position, zgodnosc, state, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing verdict insert: %w", err)
	}
	defer stmt.Close()

	for i := range verdicts {
		v := &verdicts[i]
		payload, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshalling verdict %s: %w", v.RowID(), err)
		}
		if _, err := stmt.ExecContext(ctx, run.ID, i, v.Section, v.Position,
			string(v.Zgodnosc), string(v.State), string(payload)); err != nil {
			return fmt.Errorf("saving verdict %s: %w", v.RowID(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *runStore) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	row := s.store.db.QueryRowContext(ctx, runColumns+" WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return run, err
}

// ListRuns returns all runs, newest first.
func (s *runStore) ListRuns(ctx context.Context) ([]domain.Run, error) {
	rows, err := s.store.db.QueryContext(ctx, runColumns+" ORDER BY started_at DESC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetVerdicts returns a run's verdicts in population order.
func (s *runStore) GetVerdicts(ctx context.Context, runID string) ([]domain.Verdict, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.store.db.QueryContext(ctx,
		"SELECT payload FROM verdicts WHERE run_id = ? ORDER BY seq", runID)
	if err != nil {
		return nil, fmt.Errorf("querying verdicts: %w", err)
	}
	defer rows.Close()

	verdicts := []domain.Verdict{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning verdict: %w", err)
		}
		var v domain.Verdict
		if err := json.Unmarshal([]byte(payload), &v); err != nil {
			return nil, fmt.Errorf("unmarshaling verdict: %w", err)
		}
		verdicts = append(verdicts, v)
	}
	return verdicts, rows.Err()
}

// DeleteRun removes a run and, by cascade, its verdicts.
func (s *runStore) DeleteRun(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	return nil
}

const runColumns = `
	SELECT id, population_path, index_path, overrides_path, invoice_root, output_dir,
		settings, summary, started_at, finished_at
	FROM runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.Run, error) {
	var run domain.Run
	var settingsJSON, summaryJSON string
	var startedAt, finishedAt sql.NullTime
	if err := row.Scan(&run.ID, &run.Input.PopulationPath, &run.Input.IndexPath,
		&run.Input.OverridesPath, &run.Input.InvoiceRoot, &run.OutputDir,
		&settingsJSON, &summaryJSON, &startedAt, &finishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	if err := json.Unmarshal([]byte(settingsJSON), &run.Settings); err != nil {
		return nil, fmt.Errorf("unmarshaling settings: %w", err)
	}
	if err := json.Unmarshal([]byte(summaryJSON), &run.Summary); err != nil {
		return nil, fmt.Errorf("unmarshaling summary: %w", err)
	}
	if startedAt.Valid {
		run.StartedAt = startedAt.Time
	}
	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time
	}
	return &run, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
