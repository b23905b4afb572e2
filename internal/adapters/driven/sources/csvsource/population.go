package csvsource

import (
	"context"

	"github.com/custodia-labs/audytor/internal/adapters/driven/sources"
	"github.com/custodia-labs/audytor/internal/core/domain"
	"github.com/custodia-labs/audytor/internal/core/ports/driven"
)

// Ensure PopulationReader implements the interface.
var _ driven.PopulationSource = (*PopulationReader)(nil)

// PopulationReader reads a single-section population export.
// Every row belongs to the Koszty section.
type PopulationReader struct {
	section string
}

// NewPopulationReader creates a new CSV population reader.
func NewPopulationReader() *PopulationReader {
	return &PopulationReader{section: domain.SectionCosts}
}

// LoadPopulation reads every row of the file at path.
func (r *PopulationReader) LoadPopulation(ctx context.Context, path string) (*domain.Population, error) {
	t, err := readTable(ctx, path)
	if err != nil {
		return nil, err
	}
	cols, err := sources.MatchPopulationHeader(t.header, path, "")
	if err != nil {
		return nil, err
	}

	pop := &domain.Population{Source: path, Sections: []string{r.section}}
	n := 0
	for _, rec := range t.rows {
		n++
		if row, ok := sources.PopulationRow(rec, cols, r.section, n); ok {
			pop.Rows = append(pop.Rows, row)
		}
	}
	return pop, nil
}
