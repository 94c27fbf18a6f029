// Package match scores how likely an incoming CSV row and an existing
// roster record describe the same person. It provides the low-level
// similarity primitives and the tiered best-match search built on them.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Fold prepares a name for comparison: trim, lowercase, and strip
// diacritics by NFD-decomposing and dropping combining marks, so
// "José" and "jose" compare equal.
func Fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Levenshtein returns the classic edit distance between a and b,
// case-insensitively and with diacritics folded.
func Levenshtein(a, b string) int {
	ra := []rune(Fold(a))
	rb := []rune(Fold(b))
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min3(cur[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// NameSimilarity maps edit distance into [0,1]:
// 1 - distance/max(len). Two empty strings are identical (1); an empty
// string against anything else is fully dissimilar (0). The result is
// symmetric and depends only on the two inputs.
func NameSimilarity(a, b string) float64 {
	fa := Fold(a)
	fb := Fold(b)
	la := len([]rune(fa))
	lb := len([]rune(fb))
	if la == 0 && lb == 0 {
		return 1
	}
	if la == 0 || lb == 0 {
		return 0
	}
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	return 1 - float64(Levenshtein(fa, fb))/float64(maxLen)
}

// NormalizePhone reduces a phone value to its digits, keeping only the
// last ten so leading country codes do not defeat comparison. A value
// with no digits normalizes to empty.
func NormalizePhone(s string) string {
	var digits []byte
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits = append(digits, s[i])
		}
	}
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return string(digits)
}

// PhonesEqual reports an exact match of two normalized phone numbers.
// Empty values never match anything.
func PhonesEqual(a, b string) bool {
	na := NormalizePhone(a)
	nb := NormalizePhone(b)
	return na != "" && na == nb
}

// EmailsEqual compares emails case-insensitively after trimming.
// Empty values never match anything.
func EmailsEqual(a, b string) bool {
	ea := strings.ToLower(strings.TrimSpace(a))
	eb := strings.ToLower(strings.TrimSpace(b))
	return ea != "" && ea == eb
}
