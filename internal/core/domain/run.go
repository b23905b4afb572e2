package domain

import "time"

// RunInput names the files one audit run reads.
type RunInput struct {
	// PopulationPath is the ledger export workbook (or CSV).
	PopulationPath string

	// IndexPath is the extractor's invoice index CSV.
	IndexPath string

	// OverridesPath is the optional manual assignment CSV.
	OverridesPath string

	// InvoiceRoot is the optional invoice directory to inventory.
	InvoiceRoot string
}

// RunResult is the complete output of one audit run.
type RunResult struct {
	// Verdicts holds one verdict per population row, in population order.
	Verdicts []Verdict

	// Summary aggregates the verdicts.
	Summary Summary
}

// Run is a recorded audit run.
type Run struct {
	// ID is the unique identifier for the run.
	ID string

	// Input lists the files the run read.
	Input RunInput

	// OutputDir is where the verdict log and summary were written.
	OutputDir string

	// Settings are the effective settings.
	Settings AuditSettings

	// Summary is the run's aggregate report.
	Summary Summary

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time
	FinishedAt time.Time
}
