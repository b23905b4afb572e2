package csvsource

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/audytor/internal/core/domain"
	"github.com/custodia-labs/audytor/internal/core/ports/driven"
)

// Ensure IndexReader implements the interface.
var _ driven.InvoiceSource = (*IndexReader)(nil)

// Index column names with accepted aliases, canonical name first.
var (
	colSourcePath     = []string{"source_path", "path", "sciezka"}
	colSourceFilename = []string{"source_filename", "filename", "plik"}
	colInvoiceID      = []string{"invoice_id", "numer", "nr"}
	colIssueDate      = []string{"issue_date", "data"}
	colTotalNet       = []string{"total_net", "netto"}
	colTotalVAT       = []string{"total_vat", "vat"}
	colTotalGross     = []string{"total_gross", "brutto"}
	colCurrency       = []string{"currency", "waluta"}
	colSeller         = []string{"seller_guess", "seller", "sprzedawca"}
	colBuyer          = []string{"buyer", "nabywca"}
	colError          = []string{"error", "blad"}
)

// requiredIndexColumns must be present in every invoice index.
var requiredIndexColumns = [][]string{colSourcePath, colInvoiceID, colIssueDate, colTotalNet}

// IndexReader reads the extractor's invoice index CSV.
type IndexReader struct{}

// NewIndexReader creates a new index reader.
func NewIndexReader() *IndexReader {
	return &IndexReader{}
}

// LoadInvoices reads every invoice record in the index at path.
func (r *IndexReader) LoadInvoices(ctx context.Context, path string) ([]domain.InvoiceRecord, error) {
	t, err := readTable(ctx, path)
	if err != nil {
		return nil, err
	}
	cols := indexHeader(t.header)
	for _, aliases := range requiredIndexColumns {
		if cols.find(aliases...) < 0 {
			return nil, &domain.SchemaError{Source: path, Column: aliases[0]}
		}
	}

	var (
		pathCol  = cols.find(colSourcePath...)
		nameCol  = cols.find(colSourceFilename...)
		idCol    = cols.find(colInvoiceID...)
		dateCol  = cols.find(colIssueDate...)
		netCol   = cols.find(colTotalNet...)
		vatCol   = cols.find(colTotalVAT...)
		grossCol = cols.find(colTotalGross...)
		curCol   = cols.find(colCurrency...)
		sellCol  = cols.find(colSeller...)
		buyCol   = cols.find(colBuyer...)
		errCol   = cols.find(colError...)
	)

	records := make([]domain.InvoiceRecord, 0, len(t.rows))
	for i, rec := range t.rows {
		if blank(rec) {
			continue
		}
		sourcePath := value(rec, pathCol)
		filename := value(rec, nameCol)
		if filename == "" && sourcePath != "" {
			filename = baseName(sourcePath)
		}
		id := sourcePath
		if id == "" {
			id = fmt.Sprintf("%s#%d", filepath.Base(path), t.lines[i])
		}
		records = append(records, domain.InvoiceRecord{
			ID:             id,
			SourcePath:     sourcePath,
			SourceFilename: filename,
			Number:         value(rec, idCol),
			Date:           value(rec, dateCol),
			Seller:         value(rec, sellCol),
			Buyer:          value(rec, buyCol),
			Currency:       value(rec, curCol),
			Net:            value(rec, netCol),
			VAT:            value(rec, vatCol),
			Gross:          value(rec, grossCol),
			ExtractError:   value(rec, errCol),
		})
	}
	return records, nil
}

// baseName handles both slash styles, since extractor output may come from
// another operating system.
func baseName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}
