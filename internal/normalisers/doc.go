// Package normalisers turns raw extracted values into comparable forms.
//
// The invoice subpackage canonicalises invoice numbers, dates, monetary
// amounts and party names. Every function is pure: the same input always
// yields the same output, and malformed input yields a tagged result
// instead of an error.
package normalisers
