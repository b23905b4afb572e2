package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDate_Formats(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"iso", "2024-12-05", "2024-12-05"},
		{"iso with slashes", "2024/12/20", "2024-12-20"},
		{"iso with dots", "2024.12.20", "2024-12-20"},
		{"european dots", "05.12.2024", "2024-12-05"},
		{"european dashes", "20-12-2024", "2024-12-20"},
		{"day above twelve with slashes", "20/12/2024", "2024-12-20"},
		{"month first when second above twelve", "12/20/2024", "2024-12-20"},
		{"with time", "2024-12-05 00:00:00", "2024-12-05"},
		{"iso datetime", "2024-12-05T13:45:00", "2024-12-05"},
		{"compact", "20241205", "2024-12-05"},
		{"excel serial", "45631", "2024-12-05"},
		{"polish year marker", "05.12.2024 r.", "2024-12-05"},
		{"single digit fields", "5.1.2024", "2024-01-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Date(tt.input)
			assert.True(t, res.OK, "reason: %s", res.Reason)
			assert.Equal(t, tt.expected, res.String())
		})
	}
}

func TestDate_AmbiguousIsDayFirst(t *testing.T) {
	res := Date("01/02/2024")

	assert.True(t, res.OK)
	assert.True(t, res.Ambiguous)
	assert.Equal(t, "2024-02-01", res.String())
}

func TestDate_SameDayAndMonthNotAmbiguous(t *testing.T) {
	res := Date("05/05/2024")

	assert.True(t, res.OK)
	assert.False(t, res.Ambiguous)
}

func TestDate_UnambiguousFormsNotFlagged(t *testing.T) {
	for _, in := range []string{"2024-01-02", "13.01.2024", "01/13/2024"} {
		res := Date(in)
		assert.True(t, res.OK, in)
		assert.False(t, res.Ambiguous, in)
	}
}

func TestDate_NotParseable(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"yesterday",
		"2024-13-01",
		"31.02.2024",
		"32/13/2024",
		"24-12-05",
		"123",
		"99999",
	}

	for _, in := range inputs {
		res := Date(in)
		assert.False(t, res.OK, "input %q", in)
		assert.NotEmpty(t, res.Reason, "input %q", in)
		assert.Equal(t, "", res.String())
	}
}

func TestDate_Deterministic(t *testing.T) {
	assert.Equal(t, Date("01/02/2024"), Date("01/02/2024"))
}
