package services

import (
	"path/filepath"
	"sort"
	"time"

	"github.com/custodia-labs/audytor/internal/core/domain"
	"github.com/custodia-labs/audytor/internal/core/ports/driven"
)

// Index is a read-only lookup structure over normalised invoices.
// It is built once per run and is safe for concurrent readers.
type Index struct {
	invoices   []*domain.NormalizedInvoice
	byID       map[string]*domain.NormalizedInvoice
	byFilename map[string][]*domain.NormalizedInvoice
	byNumber   map[domain.CanonicalNumber][]*domain.NormalizedInvoice
	byDate     []*domain.NormalizedInvoice
}

// BuildIndex normalises every record once and indexes the results.
// Records sharing a canonical number are all kept, ordered by source path.
func BuildIndex(records []domain.InvoiceRecord, normaliser driven.RecordNormaliser) *Index {
	idx := &Index{
		invoices:   make([]*domain.NormalizedInvoice, 0, len(records)),
		byID:       make(map[string]*domain.NormalizedInvoice, len(records)),
		byFilename: make(map[string][]*domain.NormalizedInvoice, len(records)),
		byNumber:   make(map[domain.CanonicalNumber][]*domain.NormalizedInvoice, len(records)),
	}

	for i := range records {
		inv := normaliser.NormaliseInvoice(records[i])
		idx.invoices = append(idx.invoices, &inv)
	}
	sort.SliceStable(idx.invoices, func(i, j int) bool {
		return idx.invoices[i].Record.SourcePath < idx.invoices[j].Record.SourcePath
	})

	for _, inv := range idx.invoices {
		// First record wins when the extractor emits the same path twice.
		if _, exists := idx.byID[inv.ID()]; !exists {
			idx.byID[inv.ID()] = inv
		}
		if name := filenameOf(inv); name != "" {
			idx.byFilename[name] = append(idx.byFilename[name], inv)
		}
		if !inv.Number.IsEmpty() {
			idx.byNumber[inv.Number] = append(idx.byNumber[inv.Number], inv)
		}
		if inv.Date.OK {
			idx.byDate = append(idx.byDate, inv)
		}
	}

	sort.SliceStable(idx.byDate, func(i, j int) bool {
		return idx.byDate[i].Date.Value.Before(idx.byDate[j].Date.Value)
	})

	return idx
}

// Len returns the number of indexed invoices.
func (x *Index) Len() int {
	return len(x.invoices)
}

// All returns every invoice ordered by source path.
// The returned slice must not be modified.
func (x *Index) All() []*domain.NormalizedInvoice {
	return x.invoices
}

// Get returns the invoice with the given ID.
func (x *Index) Get(id string) (*domain.NormalizedInvoice, bool) {
	inv, ok := x.byID[id]
	return inv, ok
}

// Resolve finds an invoice by ID, falling back to its file name when
// exactly one indexed invoice has that name.
func (x *Index) Resolve(ref string) (*domain.NormalizedInvoice, bool) {
	if inv, ok := x.byID[ref]; ok {
		return inv, true
	}
	if hits := x.byFilename[filepath.Base(ref)]; len(hits) == 1 {
		return hits[0], true
	}
	return nil, false
}

// LookupByNumber returns every invoice with the canonical number.
// The returned slice must not be modified.
func (x *Index) LookupByNumber(number domain.CanonicalNumber) []*domain.NormalizedInvoice {
	if number.IsEmpty() {
		return nil
	}
	return x.byNumber[number]
}

// InDateWindow returns invoices issued within [from, to], ordered by date
// then source path. Invoices without a parsed date are never returned.
// The returned slice must not be modified.
func (x *Index) InDateWindow(from, to time.Time) []*domain.NormalizedInvoice {
	if to.Before(from) {
		return nil
	}
	lo := sort.Search(len(x.byDate), func(i int) bool {
		return !x.byDate[i].Date.Value.Before(from)
	})
	hi := sort.Search(len(x.byDate), func(i int) bool {
		return x.byDate[i].Date.Value.After(to)
	})
	if lo >= hi {
		return nil
	}
	return x.byDate[lo:hi:hi]
}

// Duplicates lists canonical numbers shared by more than one invoice, sorted.
func (x *Index) Duplicates() []domain.CanonicalNumber {
	var dups []domain.CanonicalNumber
	for number, invs := range x.byNumber {
		if len(invs) > 1 {
			dups = append(dups, number)
		}
	}
	sort.Slice(dups, func(i, j int) bool { return dups[i] < dups[j] })
	return dups
}

// HasFile returns true if an indexed invoice has the given file name.
func (x *Index) HasFile(name string) bool {
	return len(x.byFilename[name]) > 0
}

func filenameOf(inv *domain.NormalizedInvoice) string {
	if inv.Record.SourceFilename != "" {
		return inv.Record.SourceFilename
	}
	if inv.Record.SourcePath != "" {
		return filepath.Base(inv.Record.SourcePath)
	}
	return ""
}
