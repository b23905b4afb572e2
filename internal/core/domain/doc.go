// Package domain defines the core business entities for the audit engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types:
//
//   - InvoiceRecord: A structured invoice produced by the external extractor
//   - NormalizedInvoice: An invoice with comparable number, date and amount
//   - PopulationRow: A ledger entry to be audited
//   - MatchCandidate: An ephemeral row/invoice pairing with its scores
//   - Verdict: The durable, per-row consistency determination
//   - Summary: Aggregate metrics over a verdict set
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library, github.com/shopspring/decimal
//   - Cannot Import: Any internal/ package
package domain
