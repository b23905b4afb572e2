// Package sources holds the input adapters that read the extractor index,
// the population ledger and manual overrides. Format-specific readers live
// in subpackages; this package holds the column matching they share.
package sources

import (
	"strconv"
	"strings"

	"github.com/custodia-labs/audytor/internal/core/domain"
	"github.com/custodia-labs/audytor/internal/normalisers/invoice"
)

// PopulationColumns holds header positions of a population sheet.
// Optional columns are -1 when absent.
type PopulationColumns struct {
	Date         int
	Number       int
	Net          int
	Attachment   int
	Position     int
	Counterparty int
	Currency     int
}

// MatchPopulationHeader locates population columns in a header row.
// Headers match case- and accent-insensitively. The first missing required
// column is reported as a *domain.SchemaError.
func MatchPopulationHeader(header []string, source, sheet string) (PopulationColumns, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		key := invoice.Header(h)
		if _, seen := pos[key]; !seen && key != "" {
			pos[key] = i
		}
	}
	find := func(name string) int {
		if i, ok := pos[invoice.Header(name)]; ok {
			return i
		}
		return -1
	}

	for _, name := range domain.RequiredPopulationColumns {
		if find(name) < 0 {
			return PopulationColumns{}, &domain.SchemaError{Source: source, Sheet: sheet, Column: name}
		}
	}

	return PopulationColumns{
		Date:         find(domain.ColumnDocumentDate),
		Number:       find(domain.ColumnDocumentNumber),
		Net:          find(domain.ColumnNetValue),
		Attachment:   find(domain.ColumnAttachment),
		Position:     find(domain.ColumnPosition),
		Counterparty: find(domain.ColumnCounterparty),
		Currency:     find(domain.ColumnCurrency),
	}, nil
}

// PopulationRow builds a row from data cells. rowNum is the 1-based data
// row number, used as the position when the sheet has no LP value.
// Rows whose cells are all blank are skipped.
func PopulationRow(cells []string, cols PopulationColumns, section string, rowNum int) (domain.PopulationRow, bool) {
	if IsBlank(cells) {
		return domain.PopulationRow{}, false
	}
	position := cell(cells, cols.Position)
	if position == "" {
		position = strconv.Itoa(rowNum)
	}
	return domain.PopulationRow{
		ID:           domain.RowID{Section: section, Position: position},
		Number:       cell(cells, cols.Number),
		Date:         cell(cells, cols.Date),
		Net:          cell(cells, cols.Net),
		Attachment:   cell(cells, cols.Attachment),
		Counterparty: cell(cells, cols.Counterparty),
		Currency:     cell(cells, cols.Currency),
	}, true
}

// cell returns the trimmed value at i, or empty when out of range.
func cell(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

// IsBlank reports whether every cell is empty or whitespace.
func IsBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
