package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrNotParseable", ErrNotParseable},
		{"ErrSchema", ErrSchema},
		{"ErrInvalidSettings", ErrInvalidSettings},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestSchemaError_IsErrSchema(t *testing.T) {
	err := fmt.Errorf("load population: %w", &SchemaError{
		Source: "pop.xlsx",
		Sheet:  "Koszty",
		Column: "ZAŁĄCZNIK",
	})

	assert.True(t, errors.Is(err, ErrSchema))
	assert.False(t, errors.Is(err, ErrNotFound))

	var schemaErr *SchemaError
	assert.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "ZAŁĄCZNIK", schemaErr.Column)
}

func TestSchemaError_Message(t *testing.T) {
	withSheet := &SchemaError{Source: "pop.xlsx", Sheet: "Koszty", Column: "NUMER DOKUMENTU"}
	assert.Contains(t, withSheet.Error(), `"NUMER DOKUMENTU"`)
	assert.Contains(t, withSheet.Error(), `sheet "Koszty"`)

	csvErr := &SchemaError{Source: "index.csv", Column: "source_path"}
	assert.NotContains(t, csvErr.Error(), "sheet")
	assert.Contains(t, csvErr.Error(), "index.csv")
}
