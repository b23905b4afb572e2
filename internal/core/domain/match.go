package domain

// FieldFlags records which compared fields agree.
type FieldFlags struct {
	Number bool
	Date   bool
	Amount bool
}

// All returns true if number, date and amount all agree.
func (f FieldFlags) All() bool {
	return f.Number && f.Date && f.Amount
}

// Criterion names the rule that selected an invoice for a row.
type Criterion string

// Match criteria. Suffixes record which tie-break signal dominated.
const (
	CriterionOverride   Criterion = "override"
	CriterionNumber     Criterion = "numer"
	CriterionDateAmount Criterion = "data+netto"
	CriterionNone       Criterion = "brak"

	suffixFilename = "+fname"
	suffixSeller   = "+seller"
)

// WithFilename returns the criterion marked as decided by filename similarity.
func (c Criterion) WithFilename() Criterion {
	return c + suffixFilename
}

// WithSeller returns the criterion marked as decided by seller similarity.
func (c Criterion) WithSeller() Criterion {
	return c + suffixSeller
}

// String returns the string representation.
func (c Criterion) String() string {
	return string(c)
}

// MatchCandidate pairs a population row with one invoice.
// Candidates live only for the duration of one matching pass.
type MatchCandidate struct {
	// RowID is the population row being matched.
	RowID RowID

	// Invoice is the candidate invoice.
	Invoice *NormalizedInvoice

	// Flags records the per-field agreement.
	Flags FieldFlags

	// Score is the primary weighted score in [0,1].
	Score float64

	// Secondary is the tie-break score in [0,100]; zero unless tie-broken.
	Secondary float64

	// FilenameSimilarity and SellerSimilarity are in [0,100].
	FilenameSimilarity int
	SellerSimilarity   int

	// Eligible is false when seller similarity fell below the minimum.
	Eligible bool
}

// InvoiceID returns the candidate invoice's ID.
func (c *MatchCandidate) InvoiceID() string {
	if c.Invoice == nil {
		return ""
	}
	return c.Invoice.ID()
}
