package services

import (
	"regexp"
	"sort"
	"strings"
)

var (
	reRefNonAllowed = regexp.MustCompile(`[^A-Z0-9\-/\s.]`)
	reRefSpaces     = regexp.MustCompile(`\s+`)
)

// normalizeRef uppercases a reference string and strips everything that is
// not useful for comparison (punctuation, quotes, repeated whitespace).
func normalizeRef(input string) string {
	s := strings.ToUpper(input)
	s = reRefNonAllowed.ReplaceAllString(s, " ")
	s = reRefSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func tokenizeRef(input string) []string {
	parts := strings.Split(normalizeRef(input), " ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(p) >= 2 {
			out = append(out, p)
		}
	}
	return out
}

// diceCoefficient computes bigram similarity between two strings in [0,1].
func diceCoefficient(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	pairs := func(s string) []string {
		r := []rune(s)
		if len(r) < 2 {
			return nil
		}
		out := make([]string, 0, len(r)-1)
		for i := 0; i < len(r)-1; i++ {
			out = append(out, string(r[i:i+2]))
		}
		return out
	}

	aPairs := pairs(a)
	bPairs := pairs(b)
	if len(aPairs) == 0 || len(bPairs) == 0 {
		return 0
	}

	bCount := map[string]int{}
	for _, p := range bPairs {
		bCount[p]++
	}
	inter := 0
	for _, p := range aPairs {
		if bCount[p] > 0 {
			inter++
			bCount[p]--
		}
	}

	return float64(2*inter) / float64(len(aPairs)+len(bPairs))
}

// scoreReference blends bigram similarity with token overlap. Both inputs
// are normalized first; the result is always in [0,1].
func scoreReference(query, candidate string) float64 {
	q := normalizeRef(query)
	c := normalizeRef(candidate)
	dice := diceCoefficient(q, c)

	queryTokens := tokenizeRef(query)
	candidateTokens := tokenizeRef(candidate)
	if len(queryTokens) == 0 || len(candidateTokens) == 0 {
		return dice
	}

	set := map[string]struct{}{}
	for _, t := range candidateTokens {
		set[t] = struct{}{}
	}
	overlap := 0
	for _, t := range queryTokens {
		if _, ok := set[t]; ok {
			overlap++
		}
	}
	tokenScore := float64(overlap) / float64(len(queryTokens))
	return 0.65*dice + 0.35*tokenScore
}

// sortCandidates orders match candidates deterministically: score
// descending, then ticket id, then quote number, then invoice number.
func sortCandidates(out []MatchCandidate) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].MatchScore != out[j].MatchScore {
			return out[i].MatchScore > out[j].MatchScore
		}
		if out[i].TicketID != out[j].TicketID {
			return out[i].TicketID < out[j].TicketID
		}
		if out[i].QuoteNumber != out[j].QuoteNumber {
			return out[i].QuoteNumber < out[j].QuoteNumber
		}
		return out[i].InvoiceNumber < out[j].InvoiceNumber
	})
}
