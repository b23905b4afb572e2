package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRowID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected RowID
	}{
		{"section and position", "Koszty/3", RowID{Section: "Koszty", Position: "3"}},
		{"bare position uses default", "7", RowID{Section: "Koszty", Position: "7"}},
		{"surrounding whitespace", "  Przychody/12 ", RowID{Section: "Przychody", Position: "12"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseRowID(tt.input, SectionCosts)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, id)
		})
	}
}

func TestParseRowID_Invalid(t *testing.T) {
	for _, input := range []string{"", "   ", "/3", "Koszty/"} {
		_, err := ParseRowID(input, SectionCosts)
		assert.True(t, errors.Is(err, ErrInvalidInput), "input %q", input)
	}
}

func TestRowID_String(t *testing.T) {
	id := RowID{Section: "Koszty", Position: "4"}
	assert.Equal(t, "Koszty/4", id.String())

	parsed, err := ParseRowID(id.String(), SectionRevenues)
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}
