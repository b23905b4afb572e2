package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/audytor/internal/core/domain"
)

func TestNormaliseRow_NumericCellUsesDecimalPoint(t *testing.T) {
	n := New(LocaleAuto)

	numeric := n.NormaliseRow(domain.PopulationRow{Net: "1.234", NetNumeric: true})
	text := n.NormaliseRow(domain.PopulationRow{Net: "1.234"})

	require.True(t, numeric.Net.OK)
	assert.Equal(t, "1.234", numeric.Net.Value.String())
	require.True(t, text.Net.OK)
	assert.Equal(t, "1234", text.Net.Value.String())
}

func TestNormaliseRow_AttachmentStem(t *testing.T) {
	n := New(LocaleAuto)

	row := n.NormaliseRow(domain.PopulationRow{Attachment: "FV_001_12_2024.pdf"})

	assert.Equal(t, Number("FV_001_12_2024"), row.Attachment)
}
