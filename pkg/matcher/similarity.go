package matcher

// Similarity scores two canonicalized names with the Sørensen–Dice
// coefficient over character bigrams. Returns a value in [0, 1];
// identical non-empty strings score 1.
//
// Dice over bigrams tolerates the word reordering and abbreviation the
// registrars introduce better than edit distance does, and it needs no
// tuning parameters of its own.
func Similarity(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}
	if len(a) < 2 || len(b) < 2 {
		return 0
	}

	bigramsA := bigrams(a)
	bigramsB := bigrams(b)

	var overlap int
	for bg, count := range bigramsA {
		if other, ok := bigramsB[bg]; ok {
			overlap += min(count, other)
		}
	}

	totalA := len(a) - 1
	totalB := len(b) - 1
	return 2 * float64(overlap) / float64(totalA+totalB)
}

// bigrams returns the multiset of character bigrams in s.
func bigrams(s string) map[string]int {
	out := make(map[string]int, len(s))
	for i := 0; i+2 <= len(s); i++ {
		out[s[i:i+2]]++
	}
	return out
}
