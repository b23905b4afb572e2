package services

import (
	"path"

	"github.com/custodia-labs/audytor/internal/core/domain"
	"github.com/custodia-labs/audytor/internal/normalisers/invoice"
)

var testNormaliser = invoice.New(invoice.LocaleAuto)

func invoiceRecord(sourcePath, number, date, net string) domain.InvoiceRecord {
	return domain.InvoiceRecord{
		ID:             sourcePath,
		SourcePath:     sourcePath,
		SourceFilename: path.Base(sourcePath),
		Number:         number,
		Date:           date,
		Net:            net,
	}
}

func withSeller(rec domain.InvoiceRecord, seller string) domain.InvoiceRecord {
	rec.Seller = seller
	return rec
}

func costRow(position, date, number, net string) domain.PopulationRow {
	return domain.PopulationRow{
		ID:     domain.RowID{Section: domain.SectionCosts, Position: position},
		Date:   date,
		Number: number,
		Net:    net,
	}
}

func newTestIndex(records ...domain.InvoiceRecord) *Index {
	return BuildIndex(records, testNormaliser)
}

func newTestMatcher(index *Index, overrides domain.Overrides) *Matcher {
	return NewMatcher(index, testNormaliser, overrides, domain.DefaultAuditSettings().Matching)
}

// duplicatePair is two files carrying the same invoice number and amount.
func duplicatePair() []domain.InvoiceRecord {
	return []domain.InvoiceRecord{
		invoiceRecord("faktury/grudzien/FV_001_12_2024.pdf", "FV/001/12/2024", "2024-12-05", "1000.00"),
		invoiceRecord("faktury/skany/scan_0001.pdf", "fv-001-12-2024", "2024-12-05", "1 000,00"),
	}
}

func candidatePaths(cands []domain.MatchCandidate) []string {
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.Invoice.Record.SourcePath)
	}
	return out
}
