package services

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/audytor/internal/core/domain"
)

// Severity weights per mismatched field, matching the primary score.
var fieldWeights = map[string]float64{
	domain.FieldNumber: weightNumber,
	domain.FieldDate:   weightDate,
	domain.FieldAmount: weightAmount,
}

// globalNotes maps data-quality flags to summary notes, in output order.
var globalNotes = []struct {
	flag domain.Flag
	text string
}{
	{domain.FlagPopNumberEmpty, "%d rows had an empty document number"},
	{domain.FlagPopDateUnparseable, "%d rows had unparsable dates"},
	{domain.FlagPopDateAmbiguous, "%d rows had ambiguous dates read as day-month-year"},
	{domain.FlagPopAmountUnparseable, "%d rows had unparsable net amounts"},
	{domain.FlagInvoiceDateUnparseable, "%d matched invoices had unparsable dates"},
	{domain.FlagInvoiceDateAmbiguous, "%d matched invoices had ambiguous dates read as day-month-year"},
	{domain.FlagInvoiceAmountUnparseable, "%d matched invoices had unparsable net amounts"},
	{domain.FlagInvoiceExtractError, "%d matched invoices carried extractor errors"},
	{domain.FlagDuplicateCandidates, "%d rows matched duplicate invoice numbers"},
	{domain.FlagOverrideUnknownInvoice, "%d overrides pointed at invoices missing from the index"},
	{domain.FlagTieBreakNoEligible, "%d tie-breaks had no candidate above the seller similarity minimum"},
	{domain.FlagCurrencyMismatch, "%d rows were matched to an invoice in another currency"},
}

// Summarize reduces a verdict list to metrics, notes and the topN most
// severe mismatches. It never re-matches.
func Summarize(verdicts []domain.Verdict, topN int) domain.Summary {
	m := domain.Metrics{
		Total:    len(verdicts),
		Sections: make(map[string]domain.SectionMetrics),
	}
	flagCounts := make(map[domain.Flag]int)
	var mismatches []domain.Mismatch

	for i := range verdicts {
		v := &verdicts[i]
		sec := m.Sections[v.Section]
		sec.Rows++

		switch v.State {
		case domain.StateMatchedConsistent:
			m.Consistent++
			sec.Consistent++
		case domain.StateMatchedInconsistent:
			m.Inconsistent++
			sec.Inconsistent++
			for _, f := range v.MismatchedFields() {
				switch f {
				case domain.FieldNumber:
					m.FieldMismatches.Number++
				case domain.FieldDate:
					m.FieldMismatches.Date++
				case domain.FieldAmount:
					m.FieldMismatches.Amount++
				}
			}
		default:
			m.Unmatched++
			sec.Unmatched++
		}
		m.Sections[v.Section] = sec

		for _, f := range v.Flags {
			flagCounts[f]++
		}
		if v.HasFlag(domain.FlagPopNumberEmpty) {
			m.ParseFailures.Number++
		}
		if v.HasFlag(domain.FlagPopDateUnparseable) {
			m.ParseFailures.Date++
		}
		if v.HasFlag(domain.FlagPopAmountUnparseable) {
			m.ParseFailures.Amount++
		}

		if v.Zgodnosc == domain.ConsistencyNo {
			mismatches = append(mismatches, domain.Mismatch{
				Section:    v.Section,
				Position:   v.Position,
				State:      v.State,
				Criterion:  v.Match.Criterion,
				Confidence: v.Match.Confidence,
				Severity:   Severity(v),
				Fields:     v.MismatchedFields(),
				Note:       v.Note,
			})
		}
	}

	notes := []string{}
	if m.Unmatched > 0 {
		notes = append(notes, fmt.Sprintf("%d rows have no matching invoice", m.Unmatched))
	}
	for _, n := range globalNotes {
		if c := flagCounts[n.flag]; c > 0 {
			notes = append(notes, fmt.Sprintf(n.text, c))
		}
	}

	// Stable sort keeps row order among equal severities.
	sort.SliceStable(mismatches, func(i, j int) bool {
		return mismatches[i].Severity > mismatches[j].Severity
	})
	if topN < 0 {
		topN = 0
	}
	if len(mismatches) > topN {
		mismatches = mismatches[:topN]
	}
	if mismatches == nil {
		mismatches = []domain.Mismatch{}
	}

	return domain.Summary{
		Metrics:       m,
		GlobalNotes:   notes,
		TopMismatches: mismatches,
	}
}

// Severity ranks a mismatch for triage. Unmatched rows score 1. Matched
// rows score the weights of their mismatched fields plus the relative
// amount deviation (capped at 1), scaled by 0.5 + 0.5·confidence.
func Severity(v *domain.Verdict) float64 {
	if v.State == domain.StateUnmatched {
		return 1
	}
	var base float64
	for _, f := range v.MismatchedFields() {
		base += fieldWeights[f]
		if f == domain.FieldAmount {
			base += amountDeviation(v)
		}
	}
	return round3(base * (0.5 + 0.5*v.Match.Confidence))
}

// amountDeviation is |pdf - pop| / |pop|, capped at 1. Unparsed or zero
// population amounts count as full deviation.
func amountDeviation(v *domain.Verdict) float64 {
	for _, d := range v.Details {
		if d.Field != domain.FieldAmount {
			continue
		}
		pop, err := decimal.NewFromString(d.Population)
		if err != nil || pop.IsZero() {
			return 1
		}
		pdf, err := decimal.NewFromString(d.Invoice)
		if err != nil {
			return 1
		}
		dev, _ := pdf.Sub(pop).Abs().Div(pop.Abs()).Float64()
		return min(dev, 1)
	}
	return 1
}
