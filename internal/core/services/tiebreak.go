package services

import (
	"github.com/custodia-labs/audytor/internal/core/domain"
	"github.com/custodia-labs/audytor/internal/similarity"
)

// Signal names the secondary signal that decided a tie-break.
type Signal int

// Tie-break signals.
const (
	SignalNone Signal = iota
	SignalFilename
	SignalSeller
)

// TieBreakResult describes a tie-break pass.
type TieBreakResult struct {
	// Applied is true when two or more candidates shared the top score.
	Applied bool

	// Signal is the dominating signal of the winner.
	Signal Signal

	// NoEligible is true when every tied candidate fell below the
	// minimum seller similarity and the whole set was reconsidered.
	NoEligible bool

	// Tied holds the tied candidates with secondary scores filled in.
	Tied []domain.MatchCandidate
}

// BreakTie selects one candidate from a list ordered by primary score.
// Secondary scoring runs only when two or more candidates share the top
// score; otherwise the first candidate is returned unchanged.
// candidates must not be empty.
func BreakTie(
	row domain.NormalizedRow,
	candidates []domain.MatchCandidate,
	settings domain.TieBreakSettings,
) (domain.MatchCandidate, TieBreakResult) {
	top := candidates[0].Score
	n := 1
	for n < len(candidates) && candidates[n].Score == top {
		n++
	}
	if n < 2 {
		return candidates[0], TieBreakResult{}
	}

	w := settings.WeightFilename
	tied := make([]domain.MatchCandidate, n)
	copy(tied, candidates[:n])

	eligible := 0
	for i := range tied {
		c := &tied[i]
		c.FilenameSimilarity = FilenameSimilarity(row, c.Invoice)
		c.SellerSimilarity = SellerSimilarity(row, c.Invoice)
		c.Secondary = w*float64(c.FilenameSimilarity) + (1-w)*float64(c.SellerSimilarity)
		c.Eligible = c.SellerSimilarity >= settings.MinSellerPct
		if c.Eligible {
			eligible++
		}
	}

	result := TieBreakResult{Applied: true, Tied: tied}
	if eligible == 0 {
		result.NoEligible = true
	}

	best := -1
	for i := range tied {
		if !tied[i].Eligible && !result.NoEligible {
			continue
		}
		// Candidates arrive path-ordered within a score, so strict
		// comparison keeps the smallest path on equal secondary.
		if best < 0 || tied[i].Secondary > tied[best].Secondary {
			best = i
		}
	}

	winner := tied[best]
	if (1-w)*float64(winner.SellerSimilarity) > w*float64(winner.FilenameSimilarity) {
		result.Signal = SignalSeller
	} else {
		result.Signal = SignalFilename
	}
	return winner, result
}

// FilenameSimilarity scores how well an invoice's file name refers to the
// row. A file stem containing the row's attachment or number scores 100.
func FilenameSimilarity(row domain.NormalizedRow, inv *domain.NormalizedInvoice) int {
	stem := inv.FileStem.String()
	attachment, number := row.Attachment.String(), row.Number.String()
	if similarity.Contains(stem, attachment) || similarity.Contains(stem, number) {
		return 100
	}
	best := 0
	if attachment != "" {
		best = similarity.Ratio(attachment, stem)
	}
	if number != "" {
		best = max(best, similarity.Ratio(number, stem))
	}
	return best
}

// SellerSimilarity compares the row's counterparty with the invoice seller.
// Either side missing scores 0.
func SellerSimilarity(row domain.NormalizedRow, inv *domain.NormalizedInvoice) int {
	if row.Counterparty == "" || inv.Seller == "" {
		return 0
	}
	return similarity.TokenSetRatio(row.Counterparty, inv.Seller)
}
