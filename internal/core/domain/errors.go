package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotParseable indicates a field value could not be normalised.
	// It is recorded on the affected row, never returned from a run.
	ErrNotParseable = errors.New("not parseable")

	// ErrSchema indicates an input file lacks a required column or sheet.
	// A schema failure aborts the run before any matching happens.
	ErrSchema = errors.New("schema error")

	// ErrInvalidSettings indicates the audit configuration is out of range.
	ErrInvalidSettings = errors.New("invalid settings")
)

// SchemaError names the input, sheet and column that failed validation.
type SchemaError struct {
	// Source is the file the column was expected in.
	Source string

	// Sheet is the workbook sheet, empty for CSV inputs.
	Sheet string

	// Column is the missing column header.
	Column string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("%s: missing required column %q in sheet %q of %s", ErrSchema, e.Column, e.Sheet, e.Source)
	}
	return fmt.Sprintf("%s: missing required column %q in %s", ErrSchema, e.Column, e.Source)
}

// Unwrap lets errors.Is match ErrSchema.
func (e *SchemaError) Unwrap() error {
	return ErrSchema
}
