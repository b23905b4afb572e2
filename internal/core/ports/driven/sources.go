package driven

import (
	"context"

	"github.com/custodia-labs/audytor/internal/core/domain"
)

// InvoiceSource loads the external extractor's output.
// Backed by the tabular index file written by the extractor.
type InvoiceSource interface {
	// LoadInvoices reads every invoice record at path.
	// A missing required column yields a *domain.SchemaError.
	LoadInvoices(ctx context.Context, path string) ([]domain.InvoiceRecord, error)
}

// PopulationSource loads the ledger export being audited.
type PopulationSource interface {
	// LoadPopulation reads every row of every scenario sheet at path.
	// A missing required column yields a *domain.SchemaError.
	LoadPopulation(ctx context.Context, path string) (*domain.Population, error)
}

// OverrideSource loads manual row-to-invoice assignments.
type OverrideSource interface {
	// LoadOverrides reads the assignments at path.
	LoadOverrides(ctx context.Context, path string) ([]domain.Override, error)
}

// InvoiceInventory lists invoice files on disk.
type InvoiceInventory interface {
	// Scan returns the paths of invoice files under root, sorted.
	Scan(ctx context.Context, root string) ([]string, error)
}
