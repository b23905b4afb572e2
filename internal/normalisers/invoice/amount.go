package invoice

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/audytor/internal/core/domain"
)

// Locale hints which character separates the fraction.
type Locale int

const (
	// LocaleAuto decides from the digits after the last separator.
	LocaleAuto Locale = iota

	// LocaleComma treats ',' as the decimal separator ("1.234,56").
	LocaleComma

	// LocaleDot treats '.' as the decimal separator ("1,234.56").
	LocaleDot
)

// Amount parses a monetary amount into an exact decimal.
//
// Whitespace, currency codes and symbols are ignored. With LocaleAuto the
// last ',' or '.' is the decimal separator when it is followed by exactly
// two digits, by any group other than three digits, or when the amount
// mixes both separator kinds; every other separator groups thousands. So
// "1000,00", "1000.00" and "1 000,00" are all 1000.00 and "1.000" is 1000.
// A leading '-' or surrounding parentheses make the amount negative.
func Amount(raw string, hint Locale) domain.AmountResult {
	s, neg, ok := cleanAmount(raw)
	if !ok {
		return notAmount("unexpected characters: " + strings.TrimSpace(raw))
	}
	if s == "" {
		return notAmount("empty")
	}

	intPart, frac := splitAmount(s, hint)
	intPart = strings.NewReplacer(".", "", ",", "").Replace(intPart)
	if intPart == "" {
		intPart = "0"
	}
	if !allDigits(intPart) || !allDigits(frac) {
		return notAmount("malformed number: " + strings.TrimSpace(raw))
	}

	num := intPart
	if frac != "" {
		num += "." + frac
	}
	if neg {
		num = "-" + num
	}
	d, err := decimal.NewFromString(num)
	if err != nil {
		return notAmount(err.Error())
	}
	return domain.AmountResult{Value: d, OK: true}
}

// cleanAmount drops spacing and currency markers and extracts the sign.
func cleanAmount(raw string) (s string, neg, ok bool) {
	t := strings.TrimSpace(raw)
	if strings.HasPrefix(t, "(") && strings.HasSuffix(t, ")") {
		neg = true
		t = t[1 : len(t)-1]
	}

	var b strings.Builder
	for _, r := range t {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',':
			b.WriteRune(r)
		case r == '-' || r == '−':
			if b.Len() > 0 {
				return "", false, false
			}
			neg = !neg
		case r == '+' && b.Len() == 0:
		case unicode.IsSpace(r), r == '\'':
		case unicode.IsLetter(r), unicode.Is(unicode.Sc, r):
		default:
			return "", false, false
		}
	}
	return b.String(), neg, true
}

// splitAmount separates the integer digits from the fraction digits.
func splitAmount(s string, hint Locale) (intPart, frac string) {
	var dec int
	switch hint {
	case LocaleComma:
		dec = strings.LastIndexByte(s, ',')
	case LocaleDot:
		dec = strings.LastIndexByte(s, '.')
	default:
		dec = strings.LastIndexAny(s, ".,")
		if dec >= 0 {
			tail := s[dec+1:]
			mixed := strings.ContainsRune(s[:dec], otherSeparator(s[dec]))
			if len(tail) == 3 && !mixed {
				dec = -1
			}
		}
	}
	if dec < 0 {
		return s, ""
	}
	return s[:dec], s[dec+1:]
}

func otherSeparator(c byte) rune {
	if c == '.' {
		return ','
	}
	return '.'
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func notAmount(reason string) domain.AmountResult {
	return domain.AmountResult{Reason: reason}
}
