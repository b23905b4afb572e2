// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - InvoiceSource: Loads the extractor's invoice index
//   - PopulationSource: Loads the ledger export
//   - RecordNormaliser: Canonicalises numbers, dates and amounts
//   - ReportWriter: Writes the verdict log and summary
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - OverrideSource: Without it, override files are rejected.
//   - InvoiceInventory: Without it, the invoice directory is not inventoried.
//   - RunStore: Without it, run history is not recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
