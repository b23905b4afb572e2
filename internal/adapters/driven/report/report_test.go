package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/audytor/internal/core/domain"
)

func sampleResult() *domain.RunResult {
	path := "faktury/f1.pdf"
	return &domain.RunResult{
		Verdicts: []domain.Verdict{
			{
				Section:   domain.SectionCosts,
				Position:  "1",
				PopNumber: "FV/001/12/2024",
				Match: domain.MatchInfo{
					Status:     domain.MatchFound,
					Criterion:  domain.CriterionNumber,
					Confidence: 0.75,
				},
				PDF:        domain.PDFRef{Path: &path},
				Comparison: domain.Comparison{Number: domain.ConsistencyYes, Date: domain.ConsistencyYes, Net: domain.ConsistencyNo},
				Zgodnosc:   domain.ConsistencyNo,
				State:      domain.StateMatchedInconsistent,
				Details:    []domain.FieldComparison{},
				Note:       "mismatch: netto & <vat>",
			},
			{
				Section:    domain.SectionCosts,
				Position:   "2",
				Match:      domain.MatchInfo{Status: domain.MatchNotFound, Criterion: domain.CriterionNone},
				Comparison: domain.Comparison{Number: domain.ConsistencyNo, Date: domain.ConsistencyNo, Net: domain.ConsistencyNo},
				Zgodnosc:   domain.ConsistencyNo,
				State:      domain.StateUnmatched,
				Details:    []domain.FieldComparison{},
			},
		},
		Summary: domain.Summary{
			Metrics:       domain.Metrics{Total: 2, Inconsistent: 1, Unmatched: 1},
			GlobalNotes:   []string{"1 rows have no matching invoice"},
			TopMismatches: []domain.Mismatch{},
		},
	}
}

func TestWriter_WriteReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runs", "20241231_120000")

	err := NewWriter().WriteReport(context.Background(), dir, sampleResult())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, VerdictsFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"pozycja_id":"1"`)
	assert.Contains(t, lines[0], `& <vat>`, "HTML characters are not escaped")
	assert.Contains(t, lines[1], `"stan":"UNMATCHED"`)

	summary, err := os.ReadFile(filepath.Join(dir, SummaryFile))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "\n  \"metryki\": {")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no staging files left behind")
}

func TestWriter_Deterministic(t *testing.T) {
	root := t.TempDir()
	w := NewWriter()
	require.NoError(t, w.WriteReport(context.Background(), filepath.Join(root, "a"), sampleResult()))
	require.NoError(t, w.WriteReport(context.Background(), filepath.Join(root, "b"), sampleResult()))

	for _, name := range []string{VerdictsFile, SummaryFile} {
		a, err := os.ReadFile(filepath.Join(root, "a", name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(root, "b", name))
		require.NoError(t, err)
		assert.Equal(t, a, b, name)
	}
}

func TestWriter_NilResult(t *testing.T) {
	dir := t.TempDir()

	err := NewWriter().WriteReport(context.Background(), dir, nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestWriter_CancelledWritesNothing(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewWriter().WriteReport(ctx, dir, sampleResult())

	assert.ErrorIs(t, err, context.Canceled)
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

// failSummaryMove makes the staged summary fail to move into place.
func failSummaryMove(t *testing.T, dir string) {
	t.Helper()
	target := filepath.Join(dir, SummaryFile)
	rename = func(oldpath, newpath string) error {
		if newpath == target && strings.HasSuffix(oldpath, ".tmp") {
			return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: os.ErrPermission}
		}
		return os.Rename(oldpath, newpath)
	}
	t.Cleanup(func() { rename = os.Rename })
}

func TestWriter_FailedSummaryMoveRestoresPreviousRun(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter()
	require.NoError(t, w.WriteReport(context.Background(), dir, sampleResult()))
	prevVerdicts, err := os.ReadFile(filepath.Join(dir, VerdictsFile))
	require.NoError(t, err)
	prevSummary, err := os.ReadFile(filepath.Join(dir, SummaryFile))
	require.NoError(t, err)

	next := sampleResult()
	next.Verdicts = next.Verdicts[:1]
	next.Summary.Metrics = domain.Metrics{Total: 1, Inconsistent: 1}
	failSummaryMove(t, dir)

	err = w.WriteReport(context.Background(), dir, next)

	require.Error(t, err)
	assert.Contains(t, err.Error(), SummaryFile)
	verdicts, err := os.ReadFile(filepath.Join(dir, VerdictsFile))
	require.NoError(t, err)
	assert.Equal(t, prevVerdicts, verdicts)
	summary, err := os.ReadFile(filepath.Join(dir, SummaryFile))
	require.NoError(t, err)
	assert.Equal(t, prevSummary, summary)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no staging or backup files left behind")
}

func TestWriter_FailedSummaryMoveLeavesEmptyDir(t *testing.T) {
	dir := t.TempDir()
	failSummaryMove(t, dir)

	err := NewWriter().WriteReport(context.Background(), dir, sampleResult())

	require.Error(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "a verdict log without its summary is removed")
}

func TestReader_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := sampleResult()
	require.NoError(t, NewWriter().WriteReport(context.Background(), dir, want))

	got, err := NewReader().ReadVerdicts(context.Background(), filepath.Join(dir, VerdictsFile))
	require.NoError(t, err)
	assert.Equal(t, want.Verdicts, got)

	fromDir, err := NewReader().ReadVerdicts(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, got, fromDir)
}

func TestReader_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewReader().ReadVerdicts(context.Background(), filepath.Join(dir, "missing.jsonl"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	bad := filepath.Join(dir, "bad.jsonl")
	require.NoError(t, os.WriteFile(bad, []byte("{\"sekcja\":\"Koszty\"}\n\nnot json\n"), 0644))
	_, err = NewReader().ReadVerdicts(context.Background(), bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "line 3")
}

func TestReader_EmptyLog(t *testing.T) {
	p := filepath.Join(t.TempDir(), VerdictsFile)
	require.NoError(t, os.WriteFile(p, nil, 0644))

	got, err := NewReader().ReadVerdicts(context.Background(), p)

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
