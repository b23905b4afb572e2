package invoice

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/audytor/internal/core/domain"
)

var (
	datePattern    = regexp.MustCompile(`^(\d{1,4})[./\-](\d{1,2})[./\-](\d{1,4})$`)
	compactPattern = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})$`)
	serialPattern  = regexp.MustCompile(`^\d{5}(\.0+)?$`)
)

// Excel serial day numbers count from 1899-12-30.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// Serial numbers outside this range are not plausible document dates.
const (
	minExcelSerial = 20000 // 1954-10-03
	maxExcelSerial = 80000 // 2119-01-10
)

// Date parses a document date.
//
// Accepted forms are YYYY-MM-DD, YYYY/MM/DD, YYYY.MM.DD, DD.MM.YYYY,
// DD-MM-YYYY, DD/MM/YYYY, YYYYMMDD and Excel serial day numbers, with an
// optional trailing time of day. Field widths decide the order: a four
// digit first group is a year; otherwise a first group above 12 is a day
// and a second group above 12 is a day. When both groups could be a month
// the date is read as day-month-year and marked Ambiguous.
func Date(raw string) domain.DateResult {
	s := stripTime(strings.TrimSpace(raw))
	s = strings.TrimSpace(strings.TrimSuffix(s, "r."))
	if s == "" {
		return notDate("empty")
	}

	if serialPattern.MatchString(s) {
		n, _ := strconv.ParseFloat(s, 64)
		if n < minExcelSerial || n > maxExcelSerial {
			return notDate("serial out of range: " + s)
		}
		return domain.DateResult{Value: excelEpoch.AddDate(0, 0, int(n)), OK: true}
	}

	if m := compactPattern.FindStringSubmatch(s); m != nil {
		return civil(atoi(m[1]), atoi(m[2]), atoi(m[3]), false, s)
	}

	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return notDate("unrecognised format: " + s)
	}
	a, b, c := m[1], m[2], m[3]

	switch {
	case len(a) == 4 && len(c) <= 2:
		return civil(atoi(a), atoi(b), atoi(c), false, s)
	case len(c) == 4 && len(a) <= 2:
		first, second, year := atoi(a), atoi(b), atoi(c)
		switch {
		case first > 12 && second <= 12:
			return civil(year, second, first, false, s)
		case second > 12 && first <= 12:
			return civil(year, first, second, false, s)
		case first > 12 && second > 12:
			return notDate("no month field: " + s)
		default:
			return civil(year, second, first, first != second, s)
		}
	default:
		return notDate("unrecognised field widths: " + s)
	}
}

// stripTime drops a trailing "HH:MM[:SS]" part joined by a space or "T".
func stripTime(s string) string {
	if i := strings.IndexAny(s, " T"); i > 0 && strings.Contains(s[i+1:], ":") {
		return s[:i]
	}
	return s
}

func civil(year, month, day int, ambiguous bool, src string) domain.DateResult {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return notDate("field out of range: " + src)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return notDate("no such calendar day: " + src)
	}
	return domain.DateResult{Value: t, OK: true, Ambiguous: ambiguous}
}

func notDate(reason string) domain.DateResult {
	return domain.DateResult{Reason: reason}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
