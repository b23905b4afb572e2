package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceRecord is one row of the external extractor's output.
// All values are raw strings exactly as extracted.
type InvoiceRecord struct {
	// ID identifies the invoice. It is the source path.
	ID string

	// SourcePath is the path of the invoice file.
	SourcePath string

	// SourceFilename is the base name of the invoice file.
	SourceFilename string

	// Number is the raw invoice number.
	Number string

	// Date is the raw issue date.
	Date string

	// Seller is the raw seller name.
	Seller string

	// Buyer is the raw buyer name.
	Buyer string

	// Currency is the raw currency code or symbol.
	Currency string

	// Net, VAT and Gross are the raw monetary amounts.
	Net   string
	VAT   string
	Gross string

	// ExtractError carries the extractor's failure message, if any.
	ExtractError string
}

// CanonicalNumber is an identifier after separator and case folding.
type CanonicalNumber string

// IsEmpty returns true if nothing survived normalisation.
func (n CanonicalNumber) IsEmpty() bool {
	return n == ""
}

// String returns the string representation.
func (n CanonicalNumber) String() string {
	return string(n)
}

// DateResult is a tagged date parse result.
// When OK is false, Reason explains why and Value is the zero time.
type DateResult struct {
	// Value is a calendar date at midnight UTC.
	Value time.Time

	// OK is true when the input was parsed.
	OK bool

	// Ambiguous is true when day and month could be swapped
	// and the day-month-year policy was applied.
	Ambiguous bool

	// Reason describes the parse failure.
	Reason string
}

// Equal reports whether both results parsed to the same calendar date.
func (d DateResult) Equal(other DateResult) bool {
	return d.OK && other.OK && d.Value.Equal(other.Value)
}

// String renders the date as YYYY-MM-DD, or empty when unparsed.
func (d DateResult) String() string {
	if !d.OK {
		return ""
	}
	return d.Value.Format(DateLayout)
}

// DateLayout is the canonical date rendering.
const DateLayout = "2006-01-02"

// AmountResult is a tagged amount parse result.
type AmountResult struct {
	// Value is the exact decimal amount.
	Value decimal.Decimal

	// OK is true when the input was parsed.
	OK bool

	// Reason describes the parse failure.
	Reason string
}

// String renders the amount with two decimal places, or empty when unparsed.
func (a AmountResult) String() string {
	if !a.OK {
		return ""
	}
	return a.Value.StringFixed(2)
}

// NormalizedInvoice is an InvoiceRecord in comparable form.
type NormalizedInvoice struct {
	// Record is the source record.
	Record InvoiceRecord

	// Number is the canonical invoice number.
	Number CanonicalNumber

	// Date is the parsed issue date.
	Date DateResult

	// Net is the parsed net amount.
	Net AmountResult

	// Currency is the ISO currency code, empty when unknown.
	Currency string

	// Seller is the folded seller name.
	Seller string

	// FileStem is the canonical form of the file name without extension.
	FileStem CanonicalNumber
}

// ID returns the invoice identifier.
func (n *NormalizedInvoice) ID() string {
	return n.Record.ID
}
