package csvsource

import (
	"context"
	"fmt"

	"github.com/custodia-labs/audytor/internal/core/domain"
	"github.com/custodia-labs/audytor/internal/core/ports/driven"
)

// Ensure OverrideReader implements the interface.
var _ driven.OverrideSource = (*OverrideReader)(nil)

var (
	colRowID   = []string{"pozycja_id", "row_id", "lp"}
	colTarget  = []string{"sciezka_pdf", "source_path", "invoice_id"}
	colSection = []string{"sekcja", "section"}
)

// OverrideReader reads manual row-to-invoice assignments.
// A row ID of the form "Section/Position" names its section; a bare
// position belongs to the sekcja column's section, or Koszty.
type OverrideReader struct{}

// NewOverrideReader creates a new override reader.
func NewOverrideReader() *OverrideReader {
	return &OverrideReader{}
}

// LoadOverrides reads the assignments at path.
func (r *OverrideReader) LoadOverrides(ctx context.Context, path string) ([]domain.Override, error) {
	t, err := readTable(ctx, path)
	if err != nil {
		return nil, err
	}
	cols := indexHeader(t.header)
	for _, aliases := range [][]string{colRowID, colTarget} {
		if cols.find(aliases...) < 0 {
			return nil, &domain.SchemaError{Source: path, Column: aliases[0]}
		}
	}
	rowCol, targetCol, sectionCol := cols.find(colRowID...), cols.find(colTarget...), cols.find(colSection...)

	var out []domain.Override
	for i, rec := range t.rows {
		if blank(rec) {
			continue
		}
		section := value(rec, sectionCol)
		if section == "" {
			section = domain.SectionCosts
		}
		id, err := domain.ParseRowID(value(rec, rowCol), section)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, t.lines[i], err)
		}
		target := value(rec, targetCol)
		if target == "" {
			return nil, fmt.Errorf("%s line %d: %w: empty invoice reference", path, t.lines[i], domain.ErrInvalidInput)
		}
		out = append(out, domain.Override{RowID: id, InvoiceID: target})
	}
	return out, nil
}
