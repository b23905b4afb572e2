package xlsxsource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/audytor/internal/core/domain"
)

var header = []any{"LP", "DATA DOKUMENTU", "NUMER DOKUMENTU", "WARTOŚĆ NETTO DOKUMENTU", "ZAŁĄCZNIK", "KONTRAHENT"}

// writeWorkbook saves a workbook with the given sheets. The first sheet
// replaces the default Sheet1.
func writeWorkbook(t *testing.T, sheets map[string][][]any, order ...string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "populacja.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestPopulationReader_KnownSheets(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"Notatki": {{"ignored"}},
		"Koszty": {
			header,
			{1, "2024-12-05", "FV/001/12/2024", "999,99", "f1_pln.pdf", "ACME"},
			{2, "2024/12/20", "2024-12-AC-77", "300,00", "f2.pdf", "Beta"},
		},
		"przychody": {
			header,
			{1, "2024-11-02", "S/1/2024", "50.00", "s1.pdf", ""},
		},
	}, "Notatki", "przychody", "Koszty")

	pop, err := NewPopulationReader(nil).LoadPopulation(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, []string{domain.SectionCosts, domain.SectionRevenues}, pop.Sections)
	require.Len(t, pop.Rows, 3)
	assert.Equal(t, domain.RowID{Section: domain.SectionCosts, Position: "1"}, pop.Rows[0].ID)
	assert.Equal(t, "FV/001/12/2024", pop.Rows[0].Number)
	assert.Equal(t, "999,99", pop.Rows[0].Net)
	assert.Equal(t, "ACME", pop.Rows[0].Counterparty)
	assert.Equal(t, domain.RowID{Section: domain.SectionRevenues, Position: "1"}, pop.Rows[2].ID)
}

func TestPopulationReader_FallsBackToFirstSheet(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"Dane": {
			{"DATA DOKUMENTU", "NUMER DOKUMENTU", "WARTOŚĆ NETTO DOKUMENTU", "ZAŁĄCZNIK"},
			{"2024-12-05", "FV1", "10,00", ""},
		},
		"Inne": {{"x"}},
	}, "Dane", "Inne")

	pop, err := NewPopulationReader(nil).LoadPopulation(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, []string{domain.SectionCosts}, pop.Sections)
	require.Len(t, pop.Rows, 1)
	assert.Equal(t, "1", pop.Rows[0].ID.Position, "row number used without LP")
}

func TestPopulationReader_NumericCellsAreRaw(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"Koszty": {
			header[1:5],
			{45631, "FV1", 999.99, "f1.pdf"},
		},
	}, "Koszty")

	pop, err := NewPopulationReader(nil).LoadPopulation(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, pop.Rows, 1)
	assert.Equal(t, "45631", pop.Rows[0].Date)
	assert.Equal(t, "999.99", pop.Rows[0].Net)
	assert.True(t, pop.Rows[0].NetNumeric)
}

func TestPopulationReader_NumericNetKeepsDecimalPoint(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"Koszty": {
			header[1:5],
			{"2024-12-05", "FV1", 1.234, "f1.pdf"},
			{"2024-12-05", "FV2", "1.234", "f2.pdf"},
		},
	}, "Koszty")

	pop, err := NewPopulationReader(nil).LoadPopulation(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, pop.Rows, 2)
	assert.Equal(t, "1.234", pop.Rows[0].Net)
	assert.True(t, pop.Rows[0].NetNumeric)
	assert.Equal(t, "1.234", pop.Rows[1].Net)
	assert.False(t, pop.Rows[1].NetNumeric, "text cells keep locale detection")
}

func TestPopulationReader_SheetWithoutHeader(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"Koszty": {
			header,
			{1, "2024-12-05", "FV1", "10,00", "f1.pdf", ""},
		},
		"Przychody": nil,
	}, "Koszty", "Przychody")

	_, err := NewPopulationReader(nil).LoadPopulation(context.Background(), path)

	require.ErrorIs(t, err, domain.ErrSchema)
	var schemaErr *domain.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "Przychody", schemaErr.Sheet)
	assert.Equal(t, domain.ColumnDocumentDate, schemaErr.Column)
}

func TestPopulationReader_MissingColumn(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"Koszty": {
			{"DATA DOKUMENTU", "NUMER DOKUMENTU", "WARTOŚĆ NETTO DOKUMENTU"},
			{"2024-12-05", "FV1", "1"},
		},
	}, "Koszty")

	_, err := NewPopulationReader(nil).LoadPopulation(context.Background(), path)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSchema)
	var schemaErr *domain.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "Koszty", schemaErr.Sheet)
	assert.Equal(t, domain.ColumnAttachment, schemaErr.Column)
	assert.Contains(t, err.Error(), domain.ColumnAttachment)
}

type stubSource struct {
	called string
}

func (s *stubSource) LoadPopulation(_ context.Context, path string) (*domain.Population, error) {
	s.called = path
	return &domain.Population{Source: path}, nil
}

func TestPopulationReader_DelegatesOtherFormats(t *testing.T) {
	stub := &stubSource{}
	path := filepath.Join(t.TempDir(), "populacja.csv")

	pop, err := NewPopulationReader(stub).LoadPopulation(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, path, stub.called)
	assert.Equal(t, path, pop.Source)
}

func TestPopulationReader_UnsupportedWithoutFallback(t *testing.T) {
	_, err := NewPopulationReader(nil).LoadPopulation(context.Background(), "populacja.ods")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPopulationReader_NotAWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0600))

	_, err := NewPopulationReader(nil).LoadPopulation(context.Background(), path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("open workbook %s", path))
}

func TestSelectSheets(t *testing.T) {
	got := selectSheets([]string{"PRZYCHODY", "koszty"})

	require.Len(t, got, 2)
	assert.Equal(t, sheet{name: "koszty", section: domain.SectionCosts}, got[0])
	assert.Equal(t, sheet{name: "PRZYCHODY", section: domain.SectionRevenues}, got[1])
	assert.Empty(t, selectSheets(nil))
}
