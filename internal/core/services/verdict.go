package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/custodia-labs/audytor/internal/core/domain"
)

// ambiguousDatePenalty scales confidence when either date relied on the
// day-month-year default.
const ambiguousDatePenalty = 0.9

const noteUnmatched = "no invoice found"

// BuildVerdict turns a match outcome and its selected candidate into the
// row's verdict. selected is nil when there were no candidates.
func BuildVerdict(outcome MatchOutcome, selected *domain.MatchCandidate, tb TieBreakResult) domain.Verdict {
	row := outcome.Row
	v := domain.Verdict{
		Section:   row.Row.ID.Section,
		Position:  row.Row.ID.Position,
		PopNumber: row.Row.Number,
		PopDate:   row.Row.Date,
		PopNet:    row.Row.Net,
	}
	flags := newFlagSet(outcome.Flags)

	if selected == nil {
		v.Match = domain.MatchInfo{Status: domain.MatchNotFound, Criterion: domain.CriterionNone}
		v.Comparison = domain.Comparison{
			Number: domain.ConsistencyNo,
			Date:   domain.ConsistencyNo,
			Net:    domain.ConsistencyNo,
		}
		v.Zgodnosc = domain.ConsistencyNo
		v.State = domain.StateUnmatched
		v.Details = unmatchedDetails(row)
		v.Flags = flags.list()
		if outcome.OverrideTarget != "" {
			v.Note = noteUnmatched + "; override target not in index: " + outcome.OverrideTarget
		} else {
			v.Note = noteUnmatched
		}
		return v
	}

	inv := selected.Invoice
	flags.addInvoice(inv)
	if currencyConflict(row.Currency, inv.Currency) {
		flags.add(domain.FlagCurrencyMismatch)
	}
	if tb.NoEligible {
		flags.add(domain.FlagTieBreakNoEligible)
	}

	criterion := outcome.Criterion
	if tb.Applied {
		switch tb.Signal {
		case SignalSeller:
			criterion = criterion.WithSeller()
		case SignalFilename:
			criterion = criterion.WithFilename()
		}
	}

	v.Match = domain.MatchInfo{
		Status:     domain.MatchFound,
		Criterion:  criterion,
		Confidence: confidence(outcome, selected, tb),
	}
	v.PDF = domain.PDFRef{
		Filename: optional(filenameOf(inv)),
		Path:     optional(inv.Record.SourcePath),
	}
	v.Extracted = domain.Extracted{
		Number: optional(inv.Record.Number),
		Date:   optional(dateText(inv.Date, inv.Record.Date)),
		Net:    optional(amountText(inv.Net, inv.Record.Net)),
	}
	v.Comparison = domain.Comparison{
		Number: domain.FromBool(selected.Flags.Number),
		Date:   domain.FromBool(selected.Flags.Date),
		Net:    domain.FromBool(selected.Flags.Amount),
	}
	v.Details = matchedDetails(row, selected)
	v.Alternatives = alternatives(outcome.Candidates, selected)
	v.Flags = flags.list()

	var notes []string
	if selected.Flags.All() {
		v.Zgodnosc = domain.ConsistencyYes
		v.State = domain.StateMatchedConsistent
	} else {
		v.Zgodnosc = domain.ConsistencyNo
		v.State = domain.StateMatchedInconsistent
		notes = append(notes, "mismatch: "+strings.Join(v.MismatchedFields(), ", "))
	}
	if tb.Applied {
		notes = append(notes, fmt.Sprintf("tie-break among %d candidates", len(tb.Tied)))
	}
	if tb.NoEligible {
		notes = append(notes, "no candidate met the seller similarity minimum")
	}
	v.Note = strings.Join(notes, "; ")
	return v
}

// confidence is the primary score, scaled down by the secondary score when
// tie-broken and by a fixed penalty for ambiguous dates, to three decimals.
func confidence(outcome MatchOutcome, selected *domain.MatchCandidate, tb TieBreakResult) float64 {
	if outcome.Criterion == domain.CriterionOverride {
		return 1
	}
	c := selected.Score
	if tb.Applied {
		c *= 0.5 + 0.5*selected.Secondary/100
	}
	if outcome.Row.Date.Ambiguous || selected.Invoice.Date.Ambiguous {
		c *= ambiguousDatePenalty
	}
	return round3(c)
}

func matchedDetails(row domain.NormalizedRow, c *domain.MatchCandidate) []domain.FieldComparison {
	inv := c.Invoice
	number := domain.FieldComparison{
		Field:      domain.FieldNumber,
		Population: row.Row.Number,
		Invoice:    inv.Record.Number,
		Match:      domain.FromBool(c.Flags.Number),
	}
	date := domain.FieldComparison{
		Field:      domain.FieldDate,
		Population: dateText(row.Date, row.Row.Date),
		Invoice:    dateText(inv.Date, inv.Record.Date),
		Match:      domain.FromBool(c.Flags.Date),
	}
	if row.Date.OK && inv.Date.OK && !c.Flags.Date {
		days := int(math.Round(inv.Date.Value.Sub(row.Date.Value).Hours() / 24))
		date.Difference = strconv.Itoa(days)
	}
	amount := domain.FieldComparison{
		Field:      domain.FieldAmount,
		Population: amountText(row.Net, row.Row.Net),
		Invoice:    amountText(inv.Net, inv.Record.Net),
		Match:      domain.FromBool(c.Flags.Amount),
	}
	if row.Net.OK && inv.Net.OK && !c.Flags.Amount {
		amount.Difference = inv.Net.Value.Sub(row.Net.Value).Abs().StringFixed(2)
	}
	return []domain.FieldComparison{number, date, amount}
}

func unmatchedDetails(row domain.NormalizedRow) []domain.FieldComparison {
	return []domain.FieldComparison{
		{Field: domain.FieldNumber, Population: row.Row.Number, Match: domain.ConsistencyNo},
		{Field: domain.FieldDate, Population: dateText(row.Date, row.Row.Date), Match: domain.ConsistencyNo},
		{Field: domain.FieldAmount, Population: amountText(row.Net, row.Row.Net), Match: domain.ConsistencyNo},
	}
}

func alternatives(cands []domain.MatchCandidate, selected *domain.MatchCandidate) []string {
	var alts []string
	for i := range cands {
		if cands[i].Invoice == selected.Invoice {
			continue
		}
		alts = append(alts, cands[i].Invoice.Record.SourcePath)
	}
	return alts
}

// dateText renders a parsed date canonically and falls back to the raw value.
func dateText(d domain.DateResult, raw string) string {
	if d.OK {
		return d.String()
	}
	return raw
}

// amountText renders a parsed amount canonically and falls back to the raw value.
func amountText(a domain.AmountResult, raw string) string {
	if a.OK {
		return a.String()
	}
	return raw
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

// flagSet keeps flags unique in insertion order.
type flagSet struct {
	flags []domain.Flag
}

func newFlagSet(initial []domain.Flag) *flagSet {
	s := &flagSet{}
	for _, f := range initial {
		s.add(f)
	}
	return s
}

func (s *flagSet) add(f domain.Flag) {
	for _, x := range s.flags {
		if x == f {
			return
		}
	}
	s.flags = append(s.flags, f)
}

func (s *flagSet) addInvoice(inv *domain.NormalizedInvoice) {
	if !inv.Date.OK {
		s.add(domain.FlagInvoiceDateUnparseable)
	} else if inv.Date.Ambiguous {
		s.add(domain.FlagInvoiceDateAmbiguous)
	}
	if !inv.Net.OK {
		s.add(domain.FlagInvoiceAmountUnparseable)
	}
	if inv.Record.ExtractError != "" {
		s.add(domain.FlagInvoiceExtractError)
	}
}

func (s *flagSet) list() []domain.Flag {
	return s.flags
}
