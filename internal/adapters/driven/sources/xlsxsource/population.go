// Package xlsxsource reads population ledgers from Excel workbooks.
package xlsxsource

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/audytor/internal/adapters/driven/sources"
	"github.com/custodia-labs/audytor/internal/core/domain"
	"github.com/custodia-labs/audytor/internal/core/ports/driven"
	"github.com/custodia-labs/audytor/internal/logger"
	"github.com/custodia-labs/audytor/internal/normalisers/invoice"
)

// Ensure PopulationReader implements the interface.
var _ driven.PopulationSource = (*PopulationReader)(nil)

// PopulationReader reads scenario sheets from a population workbook.
// Sheets named after known sections are read in section order. A workbook
// without any of them is read from its first sheet as Koszty.
type PopulationReader struct {
	// other reads files that are not workbooks, e.g. CSV exports.
	other driven.PopulationSource
}

// NewPopulationReader creates a workbook reader. other handles files without
// an .xlsx/.xlsm extension and may be nil.
func NewPopulationReader(other driven.PopulationSource) *PopulationReader {
	return &PopulationReader{other: other}
}

// LoadPopulation reads every row of every scenario sheet at path.
func (r *PopulationReader) LoadPopulation(ctx context.Context, path string) (*domain.Population, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
	default:
		if r.other == nil {
			return nil, fmt.Errorf("%w: unsupported population file %s", domain.ErrInvalidInput, path)
		}
		return r.other.LoadPopulation(ctx, path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := selectSheets(f.GetSheetList())
	if len(sheets) == 0 {
		return nil, &domain.SchemaError{Source: path, Sheet: domain.SectionCosts, Column: domain.ColumnDocumentNumber}
	}

	pop := &domain.Population{Source: path}
	for _, s := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := r.readSheet(f, path, s)
		if err != nil {
			return nil, err
		}
		logger.Debug("Read %d rows from sheet %q", len(rows), s.name)
		pop.Sections = append(pop.Sections, s.section)
		pop.Rows = append(pop.Rows, rows...)
	}
	return pop, nil
}

// sheet pairs a workbook sheet with the section its rows belong to.
type sheet struct {
	name    string
	section string
}

// selectSheets picks known section sheets, matched case- and
// accent-insensitively, falling back to the first sheet.
func selectSheets(names []string) []sheet {
	byKey := make(map[string]string, len(names))
	for _, n := range names {
		byKey[invoice.Header(n)] = n
	}
	var out []sheet
	for _, section := range domain.KnownSections {
		if name, ok := byKey[invoice.Header(section)]; ok {
			out = append(out, sheet{name: name, section: section})
		}
	}
	if len(out) == 0 && len(names) > 0 {
		out = append(out, sheet{name: names[0], section: domain.SectionCosts})
	}
	return out
}

func (r *PopulationReader) readSheet(f *excelize.File, path string, s sheet) ([]domain.PopulationRow, error) {
	// Raw values keep dates as serial numbers and amounts unformatted.
	rows, err := f.GetRows(s.name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q of %s: %w", s.name, path, err)
	}

	// Skip leading blank rows to the header.
	start := 0
	for start < len(rows) && sources.IsBlank(rows[start]) {
		start++
	}
	if start == len(rows) {
		// A sheet without a header lacks every required column.
		return nil, &domain.SchemaError{Source: path, Sheet: s.name, Column: domain.RequiredPopulationColumns[0]}
	}

	cols, err := sources.MatchPopulationHeader(rows[start], path, s.name)
	if err != nil {
		return nil, err
	}

	var out []domain.PopulationRow
	for i, cells := range rows[start+1:] {
		row, ok := sources.PopulationRow(cells, cols, s.section, i+1)
		if !ok {
			continue
		}
		if row.Net != "" {
			// Sheet rows are 1-based and rows[0] is row 1.
			ref, err := excelize.CoordinatesToCellName(cols.Net+1, start+i+2)
			if err != nil {
				return nil, fmt.Errorf("read sheet %q of %s: %w", s.name, path, err)
			}
			if row.Net, row.NetNumeric, err = numericCell(f, s.name, ref, row.Net); err != nil {
				return nil, fmt.Errorf("read sheet %q of %s: %w", s.name, path, err)
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// numericCell reports whether ref holds a number and, if so, returns its
// value in plain decimal notation.
func numericCell(f *excelize.File, sheetName, ref, value string) (string, bool, error) {
	typ, err := f.GetCellType(sheetName, ref)
	if err != nil {
		return "", false, err
	}
	if typ != excelize.CellTypeNumber && typ != excelize.CellTypeUnset {
		return value, false, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return value, false, nil
	}
	return d.String(), true, nil
}
