package domain

import (
	"fmt"
	"strings"
)

// Population sections as named by the ledger export's sheets.
const (
	SectionCosts    = "Koszty"
	SectionRevenues = "Przychody"
)

// KnownSections lists the scenario sheets read from a population workbook,
// in output order.
var KnownSections = []string{SectionCosts, SectionRevenues}

// Population column headers.
const (
	ColumnDocumentDate   = "DATA DOKUMENTU"
	ColumnDocumentNumber = "NUMER DOKUMENTU"
	ColumnNetValue       = "WARTOŚĆ NETTO DOKUMENTU"
	ColumnAttachment     = "ZAŁĄCZNIK"
	ColumnPosition       = "LP"
	ColumnCounterparty   = "KONTRAHENT"
	ColumnCurrency       = "WALUTA"
)

// RequiredPopulationColumns must be present in every population sheet.
var RequiredPopulationColumns = []string{
	ColumnDocumentDate,
	ColumnDocumentNumber,
	ColumnNetValue,
	ColumnAttachment,
}

// RowID identifies a population row within its section.
type RowID struct {
	Section  string
	Position string
}

// String renders the row ID as "section/position".
func (r RowID) String() string {
	return r.Section + "/" + r.Position
}

// ParseRowID parses "section/position". A bare position belongs to
// defaultSection.
func ParseRowID(s, defaultSection string) (RowID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RowID{}, fmt.Errorf("%w: empty row id", ErrInvalidInput)
	}
	if i := strings.LastIndex(s, "/"); i >= 0 {
		section, pos := strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])
		if section == "" || pos == "" {
			return RowID{}, fmt.Errorf("%w: malformed row id %q", ErrInvalidInput, s)
		}
		return RowID{Section: section, Position: pos}, nil
	}
	return RowID{Section: defaultSection, Position: s}, nil
}

// PopulationRow is one ledger entry to be audited.
type PopulationRow struct {
	// ID identifies the row.
	ID RowID

	// Number is the raw document number.
	Number string

	// Date is the raw document date.
	Date string

	// Net is the raw net value.
	Net string

	// NetNumeric is set when Net came from a numeric spreadsheet cell and
	// so uses '.' as the decimal separator without grouping.
	NetNumeric bool

	// Attachment is the raw attachment reference.
	Attachment string

	// Counterparty is the optional seller or buyer name.
	Counterparty string

	// Currency is the optional currency code.
	Currency string
}

// Population is an ordered set of rows across sections.
type Population struct {
	// Source is the file the rows were read from.
	Source string

	// Sections lists the section names in read order.
	Sections []string

	// Rows holds every row, grouped by section in read order.
	Rows []PopulationRow
}

// Override forces a population row to a specific invoice.
type Override struct {
	RowID     RowID
	InvoiceID string
}

// Overrides maps row IDs to forced invoice IDs.
type Overrides map[RowID]string

// NormalizedRow is a PopulationRow in comparable form.
type NormalizedRow struct {
	// Row is the source row.
	Row PopulationRow

	// Number is the canonical document number.
	Number CanonicalNumber

	// Date is the parsed document date.
	Date DateResult

	// Net is the parsed net value.
	Net AmountResult

	// Attachment is the canonical attachment reference.
	Attachment CanonicalNumber

	// Counterparty is the folded counterparty name.
	Counterparty string

	// Currency is the ISO currency code, empty when unknown.
	Currency string
}
