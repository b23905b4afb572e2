package invoice

import (
	"path/filepath"
	"strings"

	"github.com/custodia-labs/audytor/internal/core/domain"
	"github.com/custodia-labs/audytor/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.RecordNormaliser = (*Normaliser)(nil)

// Normaliser converts extractor records and ledger rows to comparable form.
// It holds no state and is safe for concurrent use.
type Normaliser struct {
	locale Locale
}

// New creates a normaliser that reads amounts with the given locale hint.
func New(locale Locale) *Normaliser {
	return &Normaliser{locale: locale}
}

// NormaliseInvoice converts an extracted invoice record.
func (n *Normaliser) NormaliseInvoice(rec domain.InvoiceRecord) domain.NormalizedInvoice {
	filename := rec.SourceFilename
	if filename == "" {
		filename = filepath.Base(rec.SourcePath)
	}
	return domain.NormalizedInvoice{
		Record:   rec,
		Number:   Number(rec.Number),
		Date:     Date(rec.Date),
		Net:      Amount(rec.Net, n.locale),
		Currency: Currency(rec.Currency),
		Seller:   Party(rec.Seller),
		FileStem: Number(stem(filepath.Base(filename))),
	}
}

// NormaliseRow converts a population row. Amounts from numeric cells are
// always read with a '.' decimal separator.
func (n *Normaliser) NormaliseRow(row domain.PopulationRow) domain.NormalizedRow {
	locale := n.locale
	if row.NetNumeric {
		locale = LocaleDot
	}
	return domain.NormalizedRow{
		Row:          row,
		Number:       Number(row.Number),
		Date:         Date(row.Date),
		Net:          Amount(row.Net, locale),
		Attachment:   Number(stem(row.Attachment)),
		Counterparty: Party(row.Counterparty),
		Currency:     Currency(row.Currency),
	}
}

// stem drops a file extension made of two to four letters.
func stem(name string) string {
	ext := filepath.Ext(name)
	if len(ext) < 3 || len(ext) > 5 {
		return name
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return name
		}
	}
	return strings.TrimSuffix(name, ext)
}
