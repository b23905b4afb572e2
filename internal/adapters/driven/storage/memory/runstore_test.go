package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/audytor/internal/core/domain"
)

func TestRunStore_SaveAndGet(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()
	run := &domain.Run{ID: "run-1", OutputDir: "runs/1", StartedAt: time.Now()}
	verdicts := []domain.Verdict{
		{Section: domain.SectionCosts, Position: "1", Zgodnosc: domain.ConsistencyYes},
		{Section: domain.SectionCosts, Position: "2", Zgodnosc: domain.ConsistencyNo},
	}

	require.NoError(t, store.SaveRun(ctx, run, verdicts))

	got, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "runs/1", got.OutputDir)

	gotVerdicts, err := store.GetVerdicts(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, gotVerdicts, 2)
	assert.Equal(t, "1", gotVerdicts[0].Position)
	assert.Equal(t, "2", gotVerdicts[1].Position)
}

func TestRunStore_GetRun_NotFound(t *testing.T) {
	store := NewRunStore()

	_, err := store.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.GetVerdicts(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunStore_ListRuns_NewestFirst(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()
	base := time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveRun(ctx, &domain.Run{ID: "old", StartedAt: base}, nil))
	require.NoError(t, store.SaveRun(ctx, &domain.Run{ID: "new", StartedAt: base.Add(time.Hour)}, nil))

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "old", runs[1].ID)
}

func TestRunStore_DeleteRun(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()
	require.NoError(t, store.SaveRun(ctx, &domain.Run{ID: "run-1"}, nil))

	require.NoError(t, store.DeleteRun(ctx, "run-1"))

	_, err := store.GetRun(ctx, "run-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunStore_SaveRun_CopiesVerdicts(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()
	verdicts := []domain.Verdict{{Position: "1"}}
	require.NoError(t, store.SaveRun(ctx, &domain.Run{ID: "run-1"}, verdicts))

	verdicts[0].Position = "changed"

	got, err := store.GetVerdicts(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "1", got[0].Position)
}
