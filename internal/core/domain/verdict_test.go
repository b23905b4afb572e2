package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFromBool(t *testing.T) {
	assert.Equal(t, ConsistencyYes, FromBool(true))
	assert.Equal(t, ConsistencyNo, FromBool(false))
}

func TestVerdict_MismatchedFields(t *testing.T) {
	v := Verdict{Comparison: Comparison{Number: ConsistencyYes, Date: ConsistencyNo, Net: ConsistencyNo}}
	assert.Equal(t, []string{FieldDate, FieldAmount}, v.MismatchedFields())

	ok := Verdict{Comparison: Comparison{Number: ConsistencyYes, Date: ConsistencyYes, Net: ConsistencyYes}}
	assert.Empty(t, ok.MismatchedFields())
}

func TestVerdict_HasFlag(t *testing.T) {
	v := Verdict{Flags: []Flag{FlagPopDateAmbiguous}}
	assert.True(t, v.HasFlag(FlagPopDateAmbiguous))
	assert.False(t, v.HasFlag(FlagDuplicateCandidates))
}

func TestVerdict_RowID(t *testing.T) {
	v := Verdict{Section: SectionRevenues, Position: "9"}
	assert.Equal(t, RowID{Section: SectionRevenues, Position: "9"}, v.RowID())
}

func TestFieldFlags_All(t *testing.T) {
	assert.True(t, FieldFlags{Number: true, Date: true, Amount: true}.All())
	assert.False(t, FieldFlags{Number: true, Date: true}.All())
}

func TestCriterion_Suffixes(t *testing.T) {
	assert.Equal(t, Criterion("numer+fname"), CriterionNumber.WithFilename())
	assert.Equal(t, Criterion("data+netto+seller"), CriterionDateAmount.WithSeller())
}

func TestDateResult(t *testing.T) {
	a := DateResult{Value: time.Date(2024, 12, 5, 0, 0, 0, 0, time.UTC), OK: true}
	b := DateResult{Value: time.Date(2024, 12, 5, 0, 0, 0, 0, time.UTC), OK: true}
	bad := DateResult{Reason: "empty"}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(bad))
	assert.False(t, bad.Equal(bad))
	assert.Equal(t, "2024-12-05", a.String())
	assert.Equal(t, "", bad.String())
}

func TestAmountResult_String(t *testing.T) {
	a := AmountResult{Value: decimal.RequireFromString("1000"), OK: true}
	assert.Equal(t, "1000.00", a.String())
	assert.Equal(t, "", AmountResult{}.String())
}
