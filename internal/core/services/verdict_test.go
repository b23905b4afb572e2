package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/audytor/internal/core/domain"
)

func reconcileOne(t *testing.T, index *Index, overrides domain.Overrides, row domain.PopulationRow) domain.Verdict {
	t.Helper()
	return Reconcile(newTestMatcher(index, overrides), row, domain.DefaultAuditSettings().TieBreak)
}

func TestVerdict_AmountMismatchAgainstDuplicates(t *testing.T) {
	v := reconcileOne(t, newTestIndex(duplicatePair()...), nil,
		costRow("1", "2024-12-05", "FV/001/12/2024", "999,99"))

	assert.Equal(t, domain.ConsistencyNo, v.Zgodnosc)
	assert.Equal(t, domain.StateMatchedInconsistent, v.State)
	assert.Equal(t, domain.Comparison{
		Number: domain.ConsistencyYes,
		Date:   domain.ConsistencyYes,
		Net:    domain.ConsistencyNo,
	}, v.Comparison)
	assert.Equal(t, domain.MatchFound, v.Match.Status)
	assert.Equal(t, domain.Criterion("numer+fname"), v.Match.Criterion)
	assert.Contains(t, v.Flags, domain.FlagDuplicateCandidates)
	assert.Equal(t, []string{"faktury/skany/scan_0001.pdf"}, v.Alternatives)
	require.NotNil(t, v.PDF.Path)
	assert.Equal(t, "faktury/grudzien/FV_001_12_2024.pdf", *v.PDF.Path)
	assert.Contains(t, v.Note, "mismatch: netto")
	assert.Contains(t, v.Note, "tie-break among 2 candidates")

	require.Len(t, v.Details, 3)
	assert.Equal(t, domain.FieldComparison{
		Field:      domain.FieldAmount,
		Population: "999.99",
		Invoice:    "1000.00",
		Match:      domain.ConsistencyNo,
		Difference: "0.01",
	}, v.Details[2])
}

func TestVerdict_GapOfOneToleranceUnitIsInconsistent(t *testing.T) {
	index := newTestIndex(
		invoiceRecord("faktury/f1_pln.pdf", "FV/001/12/2024", "2024-12-05", "1000.00"),
		invoiceRecord("faktury/f4_dup_pln.pdf", "FV_001_12_2024", "2024-12-05", "1000.00"),
	)
	row := costRow("1", "2024-12-05", "FV/001/12/2024", "999,99")
	row.Attachment = "f1_pln.pdf"

	v := reconcileOne(t, index, nil, row)

	assert.Equal(t, domain.ConsistencyNo, v.Zgodnosc)
	assert.Equal(t, domain.StateMatchedInconsistent, v.State)
	assert.Equal(t, domain.ConsistencyNo, v.Comparison.Net)
	assert.Less(t, v.Match.Confidence, 1.0)
	require.Len(t, v.Details, 3)
	assert.Equal(t, "0.01", v.Details[2].Difference)
}

func TestVerdict_AllFieldsAgree(t *testing.T) {
	index := newTestIndex(invoiceRecord("f/2024_12_AC_77.pdf", "2024/12/AC-77", "2024-12-20", "300.00"))

	v := reconcileOne(t, index, nil, costRow("7", "2024/12/20", "2024-12-AC-77", "300,00"))

	assert.Equal(t, domain.ConsistencyYes, v.Zgodnosc)
	assert.Equal(t, domain.StateMatchedConsistent, v.State)
	assert.Equal(t, domain.CriterionNumber, v.Match.Criterion)
	assert.InDelta(t, 1.0, v.Match.Confidence, 1e-9)
	assert.Empty(t, v.Flags)
	assert.Empty(t, v.Alternatives)
	assert.Empty(t, v.Note)
	require.NotNil(t, v.Extracted.Number)
	assert.Equal(t, "2024/12/AC-77", *v.Extracted.Number)
	require.NotNil(t, v.Extracted.Date)
	assert.Equal(t, "2024-12-20", *v.Extracted.Date)
	require.NotNil(t, v.Extracted.Net)
	assert.Equal(t, "300.00", *v.Extracted.Net)
	require.NotNil(t, v.PDF.Filename)
	assert.Equal(t, "2024_12_AC_77.pdf", *v.PDF.Filename)
	assert.Equal(t, "7", v.Position)
	assert.Equal(t, domain.SectionCosts, v.Section)
}

func TestVerdict_Unmatched(t *testing.T) {
	v := reconcileOne(t, newTestIndex(), nil, costRow("3", "2024-12-05", "FV/404", "12,50"))

	assert.Equal(t, domain.StateUnmatched, v.State)
	assert.Equal(t, domain.ConsistencyNo, v.Zgodnosc)
	assert.Equal(t, domain.MatchInfo{Status: domain.MatchNotFound, Criterion: domain.CriterionNone}, v.Match)
	assert.Equal(t, domain.Comparison{
		Number: domain.ConsistencyNo,
		Date:   domain.ConsistencyNo,
		Net:    domain.ConsistencyNo,
	}, v.Comparison)
	assert.Nil(t, v.PDF.Path)
	assert.Nil(t, v.Extracted.Net)
	assert.Equal(t, "no invoice found", v.Note)
	require.Len(t, v.Details, 3)
	assert.Equal(t, "12.50", v.Details[2].Population)
	assert.Empty(t, v.Details[2].Invoice)
}

func TestVerdict_OverrideUnknownTarget(t *testing.T) {
	overrides := domain.Overrides{{Section: domain.SectionCosts, Position: "3"}: "missing.pdf"}

	v := reconcileOne(t, newTestIndex(duplicatePair()...), overrides,
		costRow("3", "2024-12-05", "FV/001/12/2024", "1000,00"))

	assert.Equal(t, domain.StateUnmatched, v.State)
	assert.Contains(t, v.Flags, domain.FlagOverrideUnknownInvoice)
	assert.Equal(t, "no invoice found; override target not in index: missing.pdf", v.Note)
}

func TestVerdict_OverrideHasFullConfidence(t *testing.T) {
	overrides := domain.Overrides{{Section: domain.SectionCosts, Position: "1"}: "faktury/skany/scan_0001.pdf"}

	v := reconcileOne(t, newTestIndex(duplicatePair()...), overrides,
		costRow("1", "05/12/2024", "FV/001/12/2024", "999,99"))

	assert.Equal(t, domain.CriterionOverride, v.Match.Criterion)
	assert.InDelta(t, 1.0, v.Match.Confidence, 1e-9)
	assert.Equal(t, domain.ConsistencyNo, v.Comparison.Net)
	assert.Empty(t, v.Alternatives)
}

func TestVerdict_AmbiguousDateLowersConfidence(t *testing.T) {
	index := newTestIndex(invoiceRecord("a.pdf", "FV1", "2024-12-05", "10.00"))

	v := reconcileOne(t, index, nil, costRow("1", "05/12/2024", "FV1", "10,00"))

	assert.Equal(t, domain.ConsistencyYes, v.Zgodnosc)
	assert.InDelta(t, 0.9, v.Match.Confidence, 1e-9)
	assert.Equal(t, []domain.Flag{domain.FlagPopDateAmbiguous}, v.Flags)
}

func TestVerdict_TieBreakConfidence(t *testing.T) {
	row, cands := sellerTie(t, "Acme Trading")
	outcome := MatchOutcome{Row: row, Candidates: cands, Criterion: domain.CriterionNumber}
	winner, tb := BreakTie(row, cands, domain.DefaultAuditSettings().TieBreak)

	v := BuildVerdict(outcome, &winner, tb)

	assert.Equal(t, domain.Criterion("numer+seller"), v.Match.Criterion)
	assert.InDelta(t, 0.5+0.5*winner.Secondary/100, v.Match.Confidence, 0.001)
	assert.Less(t, v.Match.Confidence, 1.0)
}

func TestVerdict_NoEligibleFlag(t *testing.T) {
	row, cands := sellerTie(t, "Zeta Logistics")
	outcome := MatchOutcome{Row: row, Candidates: cands, Criterion: domain.CriterionNumber}
	winner, tb := BreakTie(row, cands, domain.TieBreakSettings{WeightFilename: 0.3, MinSellerPct: 100})

	v := BuildVerdict(outcome, &winner, tb)

	assert.Contains(t, v.Flags, domain.FlagTieBreakNoEligible)
	assert.Contains(t, v.Note, "no candidate met the seller similarity minimum")
}

func TestVerdict_InvoiceFlagsAndDateDifference(t *testing.T) {
	rec := invoiceRecord("a.pdf", "FV1", "2024-12-08", "n/a")
	rec.ExtractError = "ocr timeout"
	rec.Currency = "EUR"
	row := costRow("1", "2024-12-05", "FV1", "10,00")
	row.Currency = "PLN"

	v := reconcileOne(t, newTestIndex(rec), nil, row)

	assert.Equal(t, []domain.Flag{
		domain.FlagInvoiceAmountUnparseable,
		domain.FlagInvoiceExtractError,
		domain.FlagCurrencyMismatch,
	}, v.Flags)
	assert.Equal(t, "3", v.Details[1].Difference)
	assert.Empty(t, v.Details[2].Difference)
	assert.Equal(t, "n/a", v.Details[2].Invoice)
	assert.Equal(t, "mismatch: data, netto", v.Note)
}

func TestVerdict_Deterministic(t *testing.T) {
	index := newTestIndex(duplicatePair()...)
	row := costRow("1", "2024-12-05", "FV/001/12/2024", "999,99")

	first := reconcileOne(t, index, nil, row)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, reconcileOne(t, index, nil, row))
	}
}
