package domain

// FieldCounts counts mismatches per compared field.
type FieldCounts struct {
	Number int `json:"numer"`
	Date   int `json:"data"`
	Amount int `json:"netto"`
}

// ParseCounts counts rows whose population values could not be normalised.
type ParseCounts struct {
	Number int `json:"numer"`
	Date   int `json:"data"`
	Amount int `json:"netto"`
}

// SectionMetrics holds per-section counts.
type SectionMetrics struct {
	Rows         int `json:"liczba_pozycji"`
	Consistent   int `json:"zgodne"`
	Inconsistent int `json:"niezgodne"`
	Unmatched    int `json:"braki_pdf"`
}

// Metrics holds the aggregate counts of a verdict set.
type Metrics struct {
	Total           int                       `json:"liczba_pozycji"`
	Consistent      int                       `json:"zgodne"`
	Inconsistent    int                       `json:"niezgodne"`
	Unmatched       int                       `json:"brak_dopasowania"`
	Sections        map[string]SectionMetrics `json:"sekcje"`
	FieldMismatches FieldCounts               `json:"niezgodnosci"`
	ParseFailures   ParseCounts               `json:"bledy_parsowania"`
}

// Mismatch is one entry in the ranked triage list.
type Mismatch struct {
	Section    string       `json:"sekcja"`
	Position   string       `json:"pozycja_id"`
	State      VerdictState `json:"stan"`
	Criterion  Criterion    `json:"kryterium"`
	Confidence float64      `json:"confidence"`
	Severity   float64      `json:"waga"`
	Fields     []string     `json:"pola"`
	Note       string       `json:"uwagi,omitempty"`
}

// Inventory describes the invoice directory relative to the extractor index.
type Inventory struct {
	// Root is the scanned directory.
	Root string `json:"katalog"`

	// Files counts invoice files found on disk.
	Files int `json:"liczba_pdf"`

	// MissingFromIndex lists files on disk the extractor did not index.
	MissingFromIndex []string `json:"brak_w_indeksie"`
}

// Summary is the aggregate report of one run.
type Summary struct {
	Metrics       Metrics    `json:"metryki"`
	GlobalNotes   []string   `json:"uwagi_globalne"`
	TopMismatches []Mismatch `json:"top_niezgodnosci"`
	Inventory     *Inventory `json:"inwentarz,omitempty"`
}
