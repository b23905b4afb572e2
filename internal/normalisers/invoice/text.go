package invoice

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/audytor/internal/core/domain"
)

// letters without a Unicode decomposition to an ASCII base.
var foldReplacer = strings.NewReplacer(
	"ł", "l", "Ł", "L",
	"ø", "o", "Ø", "O",
	"đ", "d", "Đ", "D",
	"ß", "ss",
)

// Fold strips diacritics, so "ZAŁĄCZNIK" becomes "ZALACZNIK".
func Fold(s string) string {
	// Transformers carry state; build one per call so Fold is safe
	// for concurrent use.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, foldReplacer.Replace(s))
	if err != nil {
		return s
	}
	return out
}

// Text lowercases, folds diacritics, turns punctuation into spaces and
// collapses whitespace.
func Text(s string) string {
	folded := strings.ToLower(Fold(s))
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Header normalises a column header for comparison.
func Header(s string) string {
	return strings.ToUpper(Text(s))
}

// legalForms are trailing token sequences dropped from party names.
var legalForms = [][]string{
	{"spolka", "z", "ograniczona", "odpowiedzialnoscia"},
	{"spolka", "akcyjna"},
	{"spolka", "jawna"},
	{"spolka", "komandytowa"},
	{"sp", "z", "o", "o"},
	{"sp", "z", "oo"},
	{"sp", "j"},
	{"sp", "k"},
	{"s", "a"},
	{"sa"},
	{"ltd"},
	{"llc"},
	{"inc"},
	{"gmbh"},
}

// Party folds a seller or buyer name and drops a trailing legal form.
func Party(s string) string {
	tokens := strings.Fields(Text(s))
	for changed := true; changed; {
		changed = false
		for _, form := range legalForms {
			if len(tokens) > len(form) && hasSuffix(tokens, form) {
				tokens = tokens[:len(tokens)-len(form)]
				changed = true
			}
		}
	}
	return strings.Join(tokens, " ")
}

func hasSuffix(tokens, suffix []string) bool {
	off := len(tokens) - len(suffix)
	for i, s := range suffix {
		if tokens[off+i] != s {
			return false
		}
	}
	return true
}

// Number canonicalises an invoice or document number: diacritics folded,
// every character other than a letter or digit dropped, uppercased.
// "FV/001/12/2024", "FV_001_12_2024" and "fv-001-12-2024" all become
// "FV001122024".
func Number(raw string) domain.CanonicalNumber {
	folded := Fold(raw)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(unicode.ToUpper(r))
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return domain.CanonicalNumber(b.String())
}

// Currency maps a currency code or symbol to its ISO code.
// Unknown input yields an empty string.
func Currency(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	switch s {
	case "":
		return ""
	case "ZŁ", "ZL", "PLN":
		return "PLN"
	case "€", "EUR", "EURO":
		return "EUR"
	case "$", "USD", "US$":
		return "USD"
	case "£", "GBP":
		return "GBP"
	}
	if len(s) == 3 && strings.IndexFunc(s, func(r rune) bool { return r < 'A' || r > 'Z' }) < 0 {
		return s
	}
	return ""
}
