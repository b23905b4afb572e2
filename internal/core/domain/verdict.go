package domain

// Consistency is the TAK/NIE determination.
type Consistency string

// Consistency values.
const (
	ConsistencyYes Consistency = "TAK"
	ConsistencyNo  Consistency = "NIE"
)

// FromBool maps true to TAK and false to NIE.
func FromBool(ok bool) Consistency {
	if ok {
		return ConsistencyYes
	}
	return ConsistencyNo
}

// VerdictState is the terminal state of a row.
type VerdictState string

// Verdict states.
const (
	StateUnmatched           VerdictState = "UNMATCHED"
	StateMatchedConsistent   VerdictState = "MATCHED_CONSISTENT"
	StateMatchedInconsistent VerdictState = "MATCHED_INCONSISTENT"
)

// MatchStatus is whether any invoice was selected.
type MatchStatus string

// Match statuses.
const (
	MatchFound    MatchStatus = "znaleziono"
	MatchNotFound MatchStatus = "brak"
)

// Flag is a data-quality marker attached to a verdict.
type Flag string

// Data-quality flags.
const (
	FlagPopNumberEmpty           Flag = "pop_number_empty"
	FlagPopDateUnparseable       Flag = "pop_date_unparseable"
	FlagPopDateAmbiguous         Flag = "pop_date_ambiguous"
	FlagPopAmountUnparseable     Flag = "pop_amount_unparseable"
	FlagInvoiceDateUnparseable   Flag = "invoice_date_unparseable"
	FlagInvoiceDateAmbiguous     Flag = "invoice_date_ambiguous"
	FlagInvoiceAmountUnparseable Flag = "invoice_amount_unparseable"
	FlagInvoiceExtractError      Flag = "invoice_extract_error"
	FlagDuplicateCandidates      Flag = "duplicate_candidates"
	FlagOverrideUnknownInvoice   Flag = "override_unknown_invoice"
	FlagTieBreakNoEligible       Flag = "tiebreak_no_eligible"
	FlagCurrencyMismatch         Flag = "currency_mismatch"
)

// Compared field names.
const (
	FieldNumber = "numer"
	FieldDate   = "data"
	FieldAmount = "netto"
)

// MatchInfo describes how the invoice was selected.
type MatchInfo struct {
	Status     MatchStatus `json:"status"`
	Criterion  Criterion   `json:"kryterium"`
	Confidence float64     `json:"confidence"`
}

// PDFRef points at the selected invoice file.
type PDFRef struct {
	Filename *string `json:"plik_oryg"`
	Path     *string `json:"sciezka"`
}

// Extracted holds the invoice values the row was compared against.
type Extracted struct {
	Number *string `json:"numer_pdf"`
	Date   *string `json:"data_pdf"`
	Net    *string `json:"netto_pdf"`
}

// Comparison holds the per-field TAK/NIE flags.
type Comparison struct {
	Number Consistency `json:"numer"`
	Date   Consistency `json:"data"`
	Net    Consistency `json:"netto"`
}

// FieldComparison explains one field's comparison for a reviewer.
type FieldComparison struct {
	Field      string      `json:"pole"`
	Population string      `json:"pop"`
	Invoice    string      `json:"pdf"`
	Match      Consistency `json:"zgodne"`
	Difference string      `json:"roznica,omitempty"`
}

// Verdict is the per-row determination. It is never mutated once built.
type Verdict struct {
	Section      string            `json:"sekcja"`
	Position     string            `json:"pozycja_id"`
	PopNumber    string            `json:"numer_pop"`
	PopDate      string            `json:"data_pop"`
	PopNet       string            `json:"netto_pop"`
	Match        MatchInfo         `json:"dopasowanie"`
	PDF          PDFRef            `json:"pdf"`
	Extracted    Extracted         `json:"wyciagniete"`
	Comparison   Comparison        `json:"porownanie"`
	Zgodnosc     Consistency       `json:"zgodnosc"`
	State        VerdictState      `json:"stan"`
	Details      []FieldComparison `json:"szczegoly"`
	Alternatives []string          `json:"alternatywy,omitempty"`
	Flags        []Flag            `json:"flagi,omitempty"`
	Note         string            `json:"uwagi,omitempty"`
}

// RowID returns the population row this verdict belongs to.
func (v *Verdict) RowID() RowID {
	return RowID{Section: v.Section, Position: v.Position}
}

// HasFlag returns true if the verdict carries the flag.
func (v *Verdict) HasFlag(f Flag) bool {
	for _, x := range v.Flags {
		if x == f {
			return true
		}
	}
	return false
}

// MismatchedFields lists the compared fields that disagree.
func (v *Verdict) MismatchedFields() []string {
	var out []string
	if v.Comparison.Number == ConsistencyNo {
		out = append(out, FieldNumber)
	}
	if v.Comparison.Date == ConsistencyNo {
		out = append(out, FieldDate)
	}
	if v.Comparison.Net == ConsistencyNo {
		out = append(out, FieldAmount)
	}
	return out
}
