package services

import (
	"sort"
	"time"

	"github.com/custodia-labs/audytor/internal/core/domain"
	"github.com/custodia-labs/audytor/internal/core/ports/driven"
)

// Primary score weights. They sum to 1.
const (
	weightNumber = 0.5
	weightDate   = 0.25
	weightAmount = 0.25
)

const day = 24 * time.Hour

// MatchOutcome is the result of matching one population row.
type MatchOutcome struct {
	// Row is the normalised population row.
	Row domain.NormalizedRow

	// Candidates are ordered by score descending, then source path.
	Candidates []domain.MatchCandidate

	// Criterion is the rule that produced the candidates.
	Criterion domain.Criterion

	// Flags are data-quality markers found while matching.
	Flags []domain.Flag

	// OverrideTarget is the requested invoice when an override applied.
	OverrideTarget string
}

// Matcher retrieves and scores candidate invoices for population rows.
// It only reads shared state and is safe for concurrent use.
type Matcher struct {
	index      *Index
	normaliser driven.RecordNormaliser
	overrides  domain.Overrides
	settings   domain.MatchingSettings
}

// NewMatcher creates a matcher over a built index.
// Overrides may be nil.
func NewMatcher(
	index *Index,
	normaliser driven.RecordNormaliser,
	overrides domain.Overrides,
	settings domain.MatchingSettings,
) *Matcher {
	return &Matcher{
		index:      index,
		normaliser: normaliser,
		overrides:  overrides,
		settings:   settings,
	}
}

// Match normalises the row and returns its scored candidates.
// Zero candidates is a valid outcome.
func (m *Matcher) Match(row domain.PopulationRow) MatchOutcome {
	nr := m.normaliser.NormaliseRow(row)
	out := MatchOutcome{
		Row:       nr,
		Criterion: domain.CriterionNone,
		Flags:     rowFlags(nr),
	}

	if target, ok := m.overrides[row.ID]; ok {
		out.OverrideTarget = target
		inv, found := m.index.Resolve(target)
		if !found {
			out.Flags = append(out.Flags, domain.FlagOverrideUnknownInvoice)
			return out
		}
		c := m.score(nr, inv)
		c.Score = 1
		out.Criterion = domain.CriterionOverride
		out.Candidates = []domain.MatchCandidate{c}
		return out
	}

	if hits := m.index.LookupByNumber(nr.Number); len(hits) > 0 {
		out.Criterion = domain.CriterionNumber
		out.Candidates = m.scoreAll(nr, hits)
	} else if found := m.fallback(nr); len(found) > 0 {
		out.Criterion = domain.CriterionDateAmount
		out.Candidates = found
	}

	if hasDuplicateNumbers(out.Candidates) {
		out.Flags = append(out.Flags, domain.FlagDuplicateCandidates)
	}
	return out
}

// fallback scans the row's date window for invoices within the amount
// tolerance. Rows without a parsed date or amount have no fallback.
func (m *Matcher) fallback(nr domain.NormalizedRow) []domain.MatchCandidate {
	if !nr.Date.OK || !nr.Net.OK {
		return nil
	}
	window := time.Duration(m.settings.DateWindowDays) * day
	var hits []*domain.NormalizedInvoice
	for _, inv := range m.index.InDateWindow(nr.Date.Value.Add(-window), nr.Date.Value.Add(window)) {
		if m.amountMatches(nr, inv) {
			hits = append(hits, inv)
		}
	}
	return m.scoreAll(nr, hits)
}

func (m *Matcher) scoreAll(nr domain.NormalizedRow, invs []*domain.NormalizedInvoice) []domain.MatchCandidate {
	if len(invs) == 0 {
		return nil
	}
	cands := make([]domain.MatchCandidate, 0, len(invs))
	for _, inv := range invs {
		cands = append(cands, m.score(nr, inv))
	}
	sortCandidates(cands)
	return cands
}

func (m *Matcher) score(nr domain.NormalizedRow, inv *domain.NormalizedInvoice) domain.MatchCandidate {
	flags := domain.FieldFlags{
		Number: !nr.Number.IsEmpty() && nr.Number == inv.Number,
		Date:   m.dateMatches(nr.Date, inv.Date),
		Amount: m.amountMatches(nr, inv),
	}
	var score float64
	if flags.Number {
		score += weightNumber
	}
	if flags.Date {
		score += weightDate
	}
	if flags.Amount {
		score += weightAmount
	}
	return domain.MatchCandidate{
		RowID:    nr.Row.ID,
		Invoice:  inv,
		Flags:    flags,
		Score:    score,
		Eligible: true,
	}
}

func (m *Matcher) dateMatches(a, b domain.DateResult) bool {
	if !a.OK || !b.OK {
		return false
	}
	diff := a.Value.Sub(b.Value)
	if diff < 0 {
		diff = -diff
	}
	return diff <= time.Duration(m.settings.DateWindowDays)*day
}

// amountMatches compares net amounts. Equal amounts match; otherwise the
// difference must be strictly below the tolerance, so a gap of one full
// tolerance unit is a mismatch. Amounts in two different known currencies
// never match.
func (m *Matcher) amountMatches(nr domain.NormalizedRow, inv *domain.NormalizedInvoice) bool {
	if !nr.Net.OK || !inv.Net.OK {
		return false
	}
	if currencyConflict(nr.Currency, inv.Currency) {
		return false
	}
	diff := nr.Net.Value.Sub(inv.Net.Value).Abs()
	return diff.IsZero() || diff.LessThan(m.settings.AmountTolerance)
}

func currencyConflict(a, b string) bool {
	return a != "" && b != "" && a != b
}

func rowFlags(nr domain.NormalizedRow) []domain.Flag {
	var flags []domain.Flag
	if nr.Number.IsEmpty() {
		flags = append(flags, domain.FlagPopNumberEmpty)
	}
	if !nr.Date.OK {
		flags = append(flags, domain.FlagPopDateUnparseable)
	} else if nr.Date.Ambiguous {
		flags = append(flags, domain.FlagPopDateAmbiguous)
	}
	if !nr.Net.OK {
		flags = append(flags, domain.FlagPopAmountUnparseable)
	}
	return flags
}

func hasDuplicateNumbers(cands []domain.MatchCandidate) bool {
	seen := make(map[domain.CanonicalNumber]struct{}, len(cands))
	for _, c := range cands {
		if c.Invoice.Number.IsEmpty() {
			continue
		}
		if _, ok := seen[c.Invoice.Number]; ok {
			return true
		}
		seen[c.Invoice.Number] = struct{}{}
	}
	return false
}

// sortCandidates orders by score descending, then source path ascending.
func sortCandidates(cands []domain.MatchCandidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return cands[i].Invoice.Record.SourcePath < cands[j].Invoice.Record.SourcePath
	})
}
