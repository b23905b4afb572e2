package domain

import "github.com/shopspring/decimal"

// Default audit settings.
const (
	DefaultAmountTolerance  = "0.01"
	DefaultWeightFilename   = 0.3
	DefaultMinSellerPct     = 0
	DefaultDateWindowDays   = 0
	DefaultTopMismatches    = 50
	DefaultWorkers          = 0 // zero means one worker per CPU
	MaxTieBreakWeight       = 1.0
	MaxSellerSimilarityPct  = 100
	MaxDateWindowDays       = 366
	DefaultOutputRootFolder = "runs"
)

// MatchingSettings controls candidate scoring.
type MatchingSettings struct {
	// AmountTolerance is the largest absolute net difference still
	// considered a match, in currency units.
	AmountTolerance decimal.Decimal

	// DateWindowDays widens the fallback date-window scan.
	// Zero means the fallback only considers invoices issued on the row's date.
	DateWindowDays int `validate:"gte=0,lte=366"`
}

// TieBreakSettings controls the secondary scoring pass.
type TieBreakSettings struct {
	// WeightFilename is the share of filename similarity in the
	// secondary score; the rest is seller similarity.
	WeightFilename float64 `validate:"gte=0,lte=1"`

	// MinSellerPct is the seller similarity below which a tied
	// candidate is ineligible.
	MinSellerPct int `validate:"gte=0,lte=100"`
}

// RunSettings controls execution of an audit run.
type RunSettings struct {
	// Workers bounds the matching worker pool. Zero uses runtime.NumCPU.
	Workers int `validate:"gte=0"`
}

// ReportSettings controls the summary.
type ReportSettings struct {
	// TopN bounds the ranked mismatch list.
	TopN int `validate:"gte=0"`
}

// AuditSettings holds all audit configuration consumed by the core.
type AuditSettings struct {
	Matching MatchingSettings
	TieBreak TieBreakSettings
	Run      RunSettings
	Report   ReportSettings
}

// DefaultAuditSettings returns settings with the documented defaults.
func DefaultAuditSettings() AuditSettings {
	return AuditSettings{
		Matching: MatchingSettings{
			AmountTolerance: decimal.RequireFromString(DefaultAmountTolerance),
			DateWindowDays:  DefaultDateWindowDays,
		},
		TieBreak: TieBreakSettings{
			WeightFilename: DefaultWeightFilename,
			MinSellerPct:   DefaultMinSellerPct,
		},
		Run: RunSettings{
			Workers: DefaultWorkers,
		},
		Report: ReportSettings{
			TopN: DefaultTopMismatches,
		},
	}
}
