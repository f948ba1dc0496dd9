package search

import "unicode"

// Scorer rates a subsequence match. matches holds rune indices into
// text of each query rune, in order.
type Scorer interface {
	Score(query, text, lower []rune, matches []int) int
}

// DefaultScorer is the literal trigger scorer.
type DefaultScorer struct{}

// Score implements Scorer.
func (DefaultScorer) Score(query, text, lower []rune, matches []int) int {
	if len(matches) == 0 {
		return 0
	}
	score := 100

	for i := 1; i < len(matches); i++ {
		if matches[i] == matches[i-1]+1 {
			score += 20
		}
	}
	for _, idx := range matches {
		if wordStart(text, idx) {
			score += 15
		}
	}
	if matches[0] == 0 {
		score += 25
	} else {
		score -= matches[0]
	}
	if gap := matches[len(matches)-1] - matches[0] - len(matches) + 1; gap > 0 {
		score -= gap * 2
	}
	if n := len(lower); n < 20 {
		score += 20 - n
	}
	if hasPrefix(lower, query) {
		score += 50
	}
	if len(lower) == len(query) && hasPrefix(lower, query) {
		score += 100
	}
	return max(score, 1)
}

// subsequence finds the leftmost positions of query in lower. It
// returns nil when some rune is missing.
func subsequence(query, lower []rune) []int {
	if len(query) == 0 {
		return nil
	}
	matches := make([]int, 0, len(query))
	qi := 0
	for i := 0; i < len(lower) && qi < len(query); i++ {
		if lower[i] == query[qi] {
			matches = append(matches, i)
			qi++
		}
	}
	if qi != len(query) {
		return nil
	}
	return matches
}

func hasPrefix(s, prefix []rune) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i, r := range prefix {
		if s[i] != r {
			return false
		}
	}
	return true
}

func wordStart(runes []rune, idx int) bool {
	if idx == 0 {
		return true
	}
	if idx >= len(runes) {
		return false
	}
	prev, cur := runes[idx-1], runes[idx]
	if unicode.IsSpace(prev) || unicode.IsPunct(prev) {
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(cur)
}
