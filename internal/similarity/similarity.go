// Package similarity provides edit-distance based string similarity ratios
// on a 0..100 scale.
package similarity

import (
	"math"
	"sort"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// ratioOptions weighs a substitution as a deletion plus an insertion, so the
// ratio is the share of both strings that survives the edit.
var ratioOptions = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 2,
	Matches: levenshtein.IdenticalRunes,
}

// Ratio returns the normalised Levenshtein similarity of a and b.
// Two empty strings score 0.
func Ratio(a, b string) int {
	if a == "" && b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	r := levenshtein.RatioForStrings([]rune(a), []rune(b), ratioOptions)
	return int(math.Round(r * 100))
}

// TokenSetRatio compares the word sets of a and b, ignoring order and
// repeated words. Words shared by both sides count in full, so a name that
// is a subset of the other scores 100.
func TokenSetRatio(a, b string) int {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var common, onlyA, onlyB []string
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			common = append(common, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range tb {
		if _, ok := ta[tok]; !ok {
			onlyB = append(onlyB, tok)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(common, " ")
	withA := join(base, onlyA)
	withB := join(base, onlyB)

	best := Ratio(withA, withB)
	if base != "" {
		best = max(best, Ratio(base, withA), Ratio(base, withB))
	}
	return best
}

// Contains reports whether needle occurs in haystack. An empty needle
// never matches.
func Contains(haystack, needle string) bool {
	return needle != "" && strings.Contains(haystack, needle)
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func join(base string, rest []string) string {
	if len(rest) == 0 {
		return base
	}
	if base == "" {
		return strings.Join(rest, " ")
	}
	return base + " " + strings.Join(rest, " ")
}
