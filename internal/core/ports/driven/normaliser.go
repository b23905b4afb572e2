package driven

import "github.com/custodia-labs/audytor/internal/core/domain"

// RecordNormaliser converts raw extractor and ledger values to comparable form.
// Implementations must be pure and safe for concurrent use.
type RecordNormaliser interface {
	// NormaliseInvoice converts an extracted invoice record.
	NormaliseInvoice(rec domain.InvoiceRecord) domain.NormalizedInvoice

	// NormaliseRow converts a population row.
	NormaliseRow(row domain.PopulationRow) domain.NormalizedRow
}
